// Package handler exposes the back-office services as JSON over HTTP.
package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stormhead-org/backoffice/internal/lib"
	"github.com/stormhead-org/backoffice/internal/services"
)

const (
	maxBodyBytes   = 2 << 20
	maxUploadBytes = 32 << 20
)

type Handlers struct {
	log          *zap.Logger
	boards       services.BoardService
	posts        services.PostService
	todos        services.TodoService
	shop         services.ShopService
	tokens       services.TokenService
	PostComments *CommentHandler
	TodoComments *CommentHandler
}

func New(
	log *zap.Logger,
	boards services.BoardService,
	posts services.PostService,
	todos services.TodoService,
	shop services.ShopService,
	tokens services.TokenService,
	postComments services.CommentService,
	todoComments services.CommentService,
) *Handlers {
	h := &Handlers{
		log:    log,
		boards: boards,
		posts:  posts,
		todos:  todos,
		shop:   shop,
		tokens: tokens,
	}
	h.PostComments = NewCommentHandler(log, postComments, postOwner(posts))
	h.TodoComments = NewCommentHandler(log, todoComments, todoOwner(todos))
	return h
}

// decode reads a JSON body, rejecting unknown fields.
func decode(w http.ResponseWriter, r *http.Request, value any) error {
	decoder := sonic.ConfigStd.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(value); err != nil {
		return fmt.Errorf("%w: malformed request body", lib.ErrInvalidArgument)
	}
	return nil
}

func uidParam(r *http.Request) (uuid.UUID, error) {
	uid, err := uuid.Parse(chi.URLParam(r, "uid"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed uid", lib.ErrInvalidArgument)
	}
	return uid, nil
}

// parseListQuery reads the shared listing parameters. Field filters are
// passed as f.<column>=value.
func parseListQuery(r *http.Request) (lib.ListQuery, error) {
	values := r.URL.Query()

	query := lib.ListQuery{
		Query:  values.Get("q"),
		Sort:   values.Get("sort"),
		Order:  lib.ParseOrder(values.Get("order"), ""),
		Cursor: values.Get("cursor"),
	}
	if raw := values.Get("order"); raw != "" && query.Order == "" {
		return query, fmt.Errorf("%w: unknown order %q", lib.ErrInvalidArgument, raw)
	}
	if raw := values.Get("limit"); raw != "" {
		query.Limit = lib.ParseLimit(raw)
	}

	var err error
	if query.IsUse, err = parseBool(values.Get("is_use"), "is_use"); err != nil {
		return query, err
	}
	if query.IsVisible, err = parseBool(values.Get("is_visible"), "is_visible"); err != nil {
		return query, err
	}

	if field := values.Get("date_field"); field != "" {
		dateRange := &lib.DateRange{Field: field}
		if dateRange.Gte, err = parseTime(values.Get("date_gte"), "date_gte"); err != nil {
			return query, err
		}
		if dateRange.Lte, err = parseTime(values.Get("date_lte"), "date_lte"); err != nil {
			return query, err
		}
		query.DateRange = dateRange
	}

	for key, value := range values {
		column, ok := strings.CutPrefix(key, "f.")
		if !ok || len(value) == 0 {
			continue
		}
		if query.Filters == nil {
			query.Filters = make(map[string]string)
		}
		query.Filters[column] = value[0]
	}

	return query, nil
}

func parseBool(raw string, name string) (*bool, error) {
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a boolean", lib.ErrInvalidArgument, name)
	}
	return &value, nil
}

func parseTime(raw string, name string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an RFC 3339 timestamp", lib.ErrInvalidArgument, name)
	}
	value = value.UTC()
	return &value, nil
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(h.log, w, r, err)
}

func writeError(log *zap.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if !lib.IsClientError(err) {
		log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	lib.WriteError(w, r, err)
}
