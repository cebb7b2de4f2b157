package http

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stormhead-org/backoffice/internal/http/handler"
	"github.com/stormhead-org/backoffice/internal/jwt"
	"github.com/stormhead-org/backoffice/internal/metrics"
	"github.com/stormhead-org/backoffice/internal/middleware"
	"github.com/stormhead-org/backoffice/internal/orm"
	"github.com/stormhead-org/backoffice/internal/orm/ormtest"
	"github.com/stormhead-org/backoffice/internal/services"
	boardpkg "github.com/stormhead-org/backoffice/internal/services/board"
	commentpkg "github.com/stormhead-org/backoffice/internal/services/comment"
	postpkg "github.com/stormhead-org/backoffice/internal/services/post"
	shoppkg "github.com/stormhead-org/backoffice/internal/services/shop"
	todopkg "github.com/stormhead-org/backoffice/internal/services/todo"
	tokenpkg "github.com/stormhead-org/backoffice/internal/services/token"
)

type server struct {
	handler  http.Handler
	apiToken string
	bearer   string
	other    string
}

func newServer(t *testing.T) *server {
	t.Helper()

	db, _ := ormtest.Open(t)
	log := zap.NewNop()

	registry := prometheus.NewRegistry()
	m, err := metrics.NewMetrics(registry)
	require.NoError(t, err)

	tokens := tokenpkg.NewTokenService(db, log, m)
	handlers := handler.New(
		log,
		boardpkg.NewBoardService(db, log, m),
		postpkg.NewPostService(db, log, nil, m),
		todopkg.NewTodoService(db, log, m),
		shoppkg.NewShopService(db, log, m),
		tokens,
		commentpkg.NewCommentService(db, log, orm.PostThread, nil, m),
		commentpkg.NewCommentService(db, log, orm.TodoThread, nil, m),
	)

	signer := jwt.NewJWT("secret")
	_, plain, err := tokens.CreateToken(context.Background(), services.CreateTokenInput{Name: "test"})
	require.NoError(t, err)

	viewer := ormtest.User(t, db, "viewer")
	bearer, err := signer.GenerateAccessToken(viewer.ID, time.Hour)
	require.NoError(t, err)
	other := ormtest.User(t, db, "other")
	otherBearer, err := signer.GenerateAccessToken(other.ID, time.Hour)
	require.NoError(t, err)

	return &server{
		handler: NewRouter(handlers, Options{
			Logger:   log,
			Limiter:  middleware.NewRateLimiter(1000, 1000),
			Parser:   signer,
			Tokens:   tokens,
			Gatherer: registry,
		}),
		apiToken: plain,
		bearer:   bearer,
		other:    otherBearer,
	}
}

type call struct {
	method string
	path   string
	body   any
	bearer string
	token  string
}

func (s *server) do(t *testing.T, c call, out any) int {
	t.Helper()

	var body bytes.Buffer
	if c.body != nil {
		raw, err := sonic.Marshal(c.body)
		require.NoError(t, err)
		body.Write(raw)
	}

	request := httptest.NewRequest(c.method, c.path, &body)
	request.Header.Set("Content-Type", "application/json")
	if c.bearer != "" {
		request.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	if c.token != "" {
		request.Header.Set(middleware.APITokenHeader, c.token)
	}

	recorder := httptest.NewRecorder()
	s.handler.ServeHTTP(recorder, request)

	if out != nil && recorder.Body.Len() > 0 {
		require.NoError(t, sonic.Unmarshal(recorder.Body.Bytes(), out), recorder.Body.String())
	}
	return recorder.Code
}

type created struct {
	ID  int64  `json:"id"`
	UID string `json:"uid"`
}

type commentItem struct {
	ID         int64 `json:"id"`
	LikeCount  int64 `json:"likeCount"`
	ReplyCount int64 `json:"replyCount"`
	IsLiked    bool  `json:"isLiked"`
	IsMine     bool  `json:"isMine"`
}

type commentPage struct {
	Items         []commentItem `json:"items"`
	NextCursor    string        `json:"nextCursor"`
	TotalAll      int64         `json:"totalAll"`
	TotalFiltered int64         `json:"totalFiltered"`
}

func (s *server) seedPost(t *testing.T) created {
	t.Helper()

	var board created
	code := s.do(t, call{method: http.MethodPost, path: "/api/v1/boards", token: s.apiToken, body: map[string]any{
		"slug": "general", "name": "General", "isUse": true, "isVisible": true,
	}}, &board)
	require.Equal(t, http.StatusCreated, code)

	var post created
	code = s.do(t, call{method: http.MethodPost, path: "/api/v1/posts", bearer: s.bearer, body: map[string]any{
		"boardUid":  board.UID,
		"title":     "hello",
		"content":   map[string]any{"type": "text", "text": "hi"},
		"isUse":     true,
		"isVisible": true,
	}}, &post)
	require.Equal(t, http.StatusCreated, code)
	return post
}

func TestAdminRoutesRequireToken(t *testing.T) {
	s := newServer(t)

	body := map[string]any{"slug": "general", "name": "General"}
	assert.Equal(t, http.StatusUnauthorized, s.do(t, call{method: http.MethodPost, path: "/api/v1/boards", body: body}, nil))
	assert.Equal(t, http.StatusUnauthorized, s.do(t, call{method: http.MethodPost, path: "/api/v1/boards", token: "bo_bad.token", body: body}, nil))
	assert.Equal(t, http.StatusCreated, s.do(t, call{method: http.MethodPost, path: "/api/v1/boards", token: s.apiToken, body: body}, nil))
	assert.Equal(t, http.StatusConflict, s.do(t, call{method: http.MethodPost, path: "/api/v1/boards", token: s.apiToken, body: body}, nil))

	assert.Equal(t, http.StatusUnauthorized, s.do(t, call{method: http.MethodGet, path: "/api/v1/tokens"}, nil))
	assert.Equal(t, http.StatusOK, s.do(t, call{method: http.MethodGet, path: "/api/v1/tokens", token: s.apiToken}, nil))
}

func TestCommentThreadOverHTTP(t *testing.T) {
	s := newServer(t)
	post := s.seedPost(t)
	comments := fmt.Sprintf("/api/v1/posts/%s/comments", post.UID)

	var root created
	code := s.do(t, call{method: http.MethodPost, path: comments, bearer: s.bearer, body: map[string]any{"content": "root"}}, &root)
	require.Equal(t, http.StatusCreated, code)

	code = s.do(t, call{method: http.MethodPost, path: comments, bearer: s.other, body: map[string]any{"content": "reply", "parentId": root.ID}}, nil)
	require.Equal(t, http.StatusCreated, code)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, call{method: http.MethodPost, path: comments, body: map[string]any{"content": "anon"}}, nil))

	var liked services.LikeOutcome
	code = s.do(t, call{method: http.MethodPost, path: "/api/v1/post-comments/" + root.UID + "/like", bearer: s.other}, &liked)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, liked.Liked)
	assert.Equal(t, int64(1), liked.LikeCount)

	var page commentPage
	code = s.do(t, call{method: http.MethodGet, path: comments, bearer: s.other}, &page)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Items[0].ReplyCount)
	assert.Equal(t, int64(1), page.Items[0].LikeCount)
	assert.True(t, page.Items[0].IsLiked)
	assert.False(t, page.Items[0].IsMine)
	assert.Equal(t, int64(2), page.TotalAll)
	assert.Equal(t, int64(1), page.TotalFiltered)

	var replies commentPage
	code = s.do(t, call{method: http.MethodGet, path: fmt.Sprintf("%s?parent=%d", comments, root.ID)}, &replies)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, replies.Items, 1)

	var outcome services.DeleteOutcome
	code = s.do(t, call{method: http.MethodDelete, path: "/api/v1/post-comments/" + root.UID, bearer: s.bearer}, &outcome)
	assert.Equal(t, http.StatusConflict, code)
	assert.True(t, outcome.BlockedDueToReplies)

	code = s.do(t, call{method: http.MethodDelete, path: "/api/v1/post-comments/" + root.UID, bearer: s.other}, &outcome)
	assert.Equal(t, http.StatusForbidden, code)

	code = s.do(t, call{method: http.MethodPatch, path: "/api/v1/post-comments/" + root.UID, bearer: s.other, body: map[string]any{"content": "hijack"}}, nil)
	assert.Equal(t, http.StatusNotFound, code)

	var edited created
	code = s.do(t, call{method: http.MethodPatch, path: "/api/v1/post-comments/" + root.UID, bearer: s.bearer, body: map[string]any{"content": "edited"}}, &edited)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, root.UID, edited.UID)
}

func TestBulkDeleteOverHTTP(t *testing.T) {
	s := newServer(t)
	post := s.seedPost(t)
	comments := fmt.Sprintf("/api/v1/posts/%s/comments", post.UID)

	var root created
	require.Equal(t, http.StatusCreated, s.do(t, call{method: http.MethodPost, path: comments, bearer: s.bearer, body: map[string]any{"content": "root"}}, &root))

	body := map[string]any{"uids": []string{root.UID}}
	assert.Equal(t, http.StatusUnauthorized, s.do(t, call{method: http.MethodPost, path: "/api/v1/post-comments/bulk-delete", bearer: s.bearer, body: body}, nil))

	var outcome services.BulkDeleteOutcome
	code := s.do(t, call{method: http.MethodPost, path: "/api/v1/post-comments/bulk-delete", token: s.apiToken, body: body}, &outcome)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, outcome.Deleted)
	assert.Empty(t, outcome.Blocked)

	assert.Equal(t, http.StatusBadRequest, s.do(t, call{method: http.MethodPost, path: "/api/v1/post-comments/bulk-delete", token: s.apiToken, body: map[string]any{"uids": []string{}}}, nil))
}

func TestListQueryErrors(t *testing.T) {
	s := newServer(t)
	post := s.seedPost(t)

	for _, path := range []string{
		"/api/v1/boards?sort=nope",
		"/api/v1/boards?order=sideways",
		"/api/v1/boards?is_use=maybe",
		"/api/v1/boards?date_field=created_at&date_gte=yesterday",
		"/api/v1/boards?f.secret=x",
		"/api/v1/boards?cursor=%25%25",
		"/api/v1/posts?board=not-a-uuid",
		"/api/v1/posts/" + post.UID + "/comments?parent=x",
		"/api/v1/posts/" + post.UID + "/comments?sort=loudest",
	} {
		assert.Equal(t, http.StatusBadRequest, s.do(t, call{method: http.MethodGet, path: path}, nil), path)
	}

	assert.Equal(t, http.StatusNotFound, s.do(t, call{method: http.MethodGet, path: "/api/v1/boards/6f1c0e8e-4a53-4c45-9d3b-6a1f7e1b2c3d"}, nil))
	assert.Equal(t, http.StatusBadRequest, s.do(t, call{method: http.MethodGet, path: "/api/v1/boards/nope"}, nil))
}

func TestBoardListingFilters(t *testing.T) {
	s := newServer(t)

	for i, slug := range []string{"news", "events", "jobs"} {
		code := s.do(t, call{method: http.MethodPost, path: "/api/v1/boards", token: s.apiToken, body: map[string]any{
			"slug": slug, "name": slug, "sortOrder": i, "isUse": true, "isVisible": slug != "jobs",
		}}, nil)
		require.Equal(t, http.StatusCreated, code)
	}

	var page struct {
		Items []struct {
			Slug string `json:"slug"`
		} `json:"items"`
		TotalAll      int64 `json:"totalAll"`
		TotalFiltered int64 `json:"totalFiltered"`
	}
	code := s.do(t, call{method: http.MethodGet, path: "/api/v1/boards?f.slug=ew&limit=1"}, &page)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(2), page.TotalAll)
	assert.Equal(t, int64(1), page.TotalFiltered)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "news", page.Items[0].Slug)

	code = s.do(t, call{method: http.MethodGet, path: "/api/v1/boards?is_visible=false"}, &page)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "jobs", page.Items[0].Slug)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t)
	s.seedPost(t)
	require.Equal(t, http.StatusOK, s.do(t, call{method: http.MethodGet, path: "/api/v1/posts"}, nil))

	request := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	recorder := httptest.NewRecorder()
	s.handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `backoffice_list_duration_seconds_count{entity="post"} 1`)
}

func TestUploadPostFileWithoutStorage(t *testing.T) {
	s := newServer(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "photo.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	request := httptest.NewRequest(http.MethodPost, "/api/v1/post-files", &body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	request.Header.Set("Authorization", "Bearer "+s.bearer)
	recorder := httptest.NewRecorder()
	s.handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)

	assert.Equal(t, http.StatusBadRequest, s.do(t, call{method: http.MethodPost, path: "/api/v1/post-files", bearer: s.bearer}, nil))
	assert.Equal(t, http.StatusUnauthorized, s.do(t, call{method: http.MethodPost, path: "/api/v1/post-files"}, nil))
}
