package lib

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ParseOrder accepts "asc"/"desc" in any case and falls back otherwise.
func ParseOrder(raw string, fallback Order) Order {
	switch Order(strings.ToLower(strings.TrimSpace(raw))) {
	case OrderAsc:
		return OrderAsc
	case OrderDesc:
		return OrderDesc
	}
	return fallback
}

// ClampLimit maps an unset limit to DefaultLimit and clamps the rest to [1, MaxLimit].
func ClampLimit(limit int) int {
	switch {
	case limit == 0:
		return DefaultLimit
	case limit < 1:
		return 1
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// ParseLimit parses a raw limit; non-numeric input yields DefaultLimit.
func ParseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultLimit
	}
	return ClampLimit(n)
}

// SortField maps a sort key to its column and a typed accessor for the
// value stored in cursors. The column must hold a total order once combined
// with the tie-breaker.
type SortField[T any] struct {
	Column string
	Kind   Kind
	Value  func(T) any
}

// Keyset describes how an entity T is listed.
type Keyset[T any] struct {
	Sorts        map[string]SortField[T]
	DefaultSort  string
	DefaultOrder Order

	// TieBreakerColumn defaults to "id".
	TieBreakerColumn string
	TieBreaker       func(T) int64

	// SearchColumns are OR-matched by ListQuery.Query.
	SearchColumns []string
	// FilterColumns are the columns accepted in ListQuery.Filters.
	FilterColumns []string
	// DateColumns are the columns accepted in ListQuery.DateRange.
	DateColumns []string

	// UseColumn and VisibleColumn, when set, become part of the base filter
	// and default to true.
	UseColumn     string
	VisibleColumn string
}

type DateRange struct {
	Field string
	Gte   *time.Time
	Lte   *time.Time
}

type ListQuery struct {
	Query     string
	Filters   map[string]string
	DateRange *DateRange
	IsUse     *bool
	IsVisible *bool
	Sort      string
	Order     Order
	Limit     int
	Cursor    string
}

// Projection lists the relations loaded alongside each page row.
type Projection struct {
	Preloads []string
}

type Scope func(*gorm.DB) *gorm.DB

type ListRequest struct {
	Query ListQuery
	// From selects the table when it differs from the model's own.
	From Scope
	// Base is part of both counters.
	Base Scope
	// Filter only narrows TotalFiltered and the page.
	Filter     Scope
	Projection Projection
}

type ListResult[T any] struct {
	Items         []T    `json:"items"`
	NextCursor    string `json:"nextCursor,omitempty"`
	TotalAll      int64  `json:"totalAll"`
	TotalFiltered int64  `json:"totalFiltered"`
}

// List runs a keyset-paginated listing of T. The page is ordered by the sort
// column and then by the tie-breaker, both in the requested direction, so a
// cursor resumes exactly after the last returned row even when many rows
// share the sort value. The page and both counters are fetched concurrently,
// so db must not be a transaction.
func List[T any](ctx context.Context, db *gorm.DB, keyset Keyset[T], request ListRequest) (*ListResult[T], error) {
	query := request.Query

	sortKey := query.Sort
	if sortKey == "" {
		sortKey = keyset.DefaultSort
	}
	sortField, ok := keyset.Sorts[sortKey]
	if !ok {
		return nil, fmt.Errorf("%w: unknown sort %q", ErrInvalidArgument, sortKey)
	}

	order := query.Order
	if order == "" {
		order = keyset.DefaultOrder
	}
	if order == "" {
		order = OrderDesc
	}
	if order != OrderAsc && order != OrderDesc {
		return nil, fmt.Errorf("%w: unknown order %q", ErrInvalidArgument, order)
	}
	desc := order == OrderDesc

	tieBreaker := keyset.TieBreakerColumn
	if tieBreaker == "" {
		tieBreaker = "id"
	}

	limit := ClampLimit(query.Limit)

	filter, err := keyset.filterScope(query)
	if err != nil {
		return nil, err
	}

	var after Scope
	if query.Cursor != "" {
		cursor, err := DecodeCursor(query.Cursor)
		if err != nil {
			return nil, err
		}
		if cursor.Kind != sortField.Kind {
			return nil, fmt.Errorf("%w: cursor does not match sort %q", ErrMalformedCursor, sortKey)
		}

		op := ">"
		if desc {
			op = "<"
		}
		predicate := fmt.Sprintf(
			"((%s %s ?) OR (%s = ? AND %s %s ?))",
			sortField.Column, op, sortField.Column, tieBreaker, op,
		)
		after = func(tx *gorm.DB) *gorm.DB {
			return tx.Where(predicate, cursor.SortValue, cursor.SortValue, cursor.TieBreakerID)
		}
	}

	base := func(tx *gorm.DB) *gorm.DB {
		tx = tx.Model(new(T))
		if request.From != nil {
			tx = request.From(tx)
		}
		if keyset.UseColumn != "" {
			tx = tx.Where(clause.Eq{Column: clause.Column{Name: keyset.UseColumn}, Value: boolOr(query.IsUse, true)})
		}
		if keyset.VisibleColumn != "" {
			tx = tx.Where(clause.Eq{Column: clause.Column{Name: keyset.VisibleColumn}, Value: boolOr(query.IsVisible, true)})
		}
		if request.Base != nil {
			tx = request.Base(tx)
		}
		return tx
	}
	full := func(tx *gorm.DB) *gorm.DB {
		tx = filter(base(tx))
		if request.Filter != nil {
			tx = request.Filter(tx)
		}
		return tx
	}

	var (
		items         []T
		totalAll      int64
		totalFiltered int64
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		tx := full(db.WithContext(groupCtx))
		if after != nil {
			tx = after(tx)
		}
		for _, preload := range request.Projection.Preloads {
			tx = tx.Preload(preload)
		}
		return tx.
			Order(clause.OrderByColumn{Column: clause.Column{Name: sortField.Column}, Desc: desc}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: tieBreaker}, Desc: desc}).
			Limit(limit + 1).
			Find(&items).Error
	})
	group.Go(func() error {
		return base(db.WithContext(groupCtx)).Count(&totalAll).Error
	})
	group.Go(func() error {
		return full(db.WithContext(groupCtx)).Count(&totalFiltered).Error
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}
	if items == nil {
		items = []T{}
	}

	result := &ListResult[T]{
		Items:         items,
		TotalAll:      totalAll,
		TotalFiltered: totalFiltered,
	}
	if hasMore {
		last := items[len(items)-1]
		next, err := EncodeCursor(sortField.Value(last), keyset.TieBreaker(last))
		if err != nil {
			return nil, err
		}
		result.NextCursor = next
	}

	return result, nil
}

// filterScope builds the user-supplied part of the full filter: free text
// OR-matched across the search columns, otherwise the AND of the individual
// field filters, plus the date range.
func (k Keyset[T]) filterScope(query ListQuery) (Scope, error) {
	var (
		conditions []string
		args       []any
	)

	text := strings.TrimSpace(query.Query)
	if text != "" && len(k.SearchColumns) > 0 {
		pattern := containsPattern(text)
		parts := make([]string, 0, len(k.SearchColumns))
		for _, column := range k.SearchColumns {
			parts = append(parts, fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '\\'", column))
			args = append(args, pattern)
		}
		conditions = append(conditions, "("+strings.Join(parts, " OR ")+")")
	} else {
		columns := make([]string, 0, len(query.Filters))
		for column := range query.Filters {
			columns = append(columns, column)
		}
		sort.Strings(columns)

		for _, column := range columns {
			if !slices.Contains(k.FilterColumns, column) {
				return nil, fmt.Errorf("%w: unknown filter %q", ErrInvalidArgument, column)
			}
			value := strings.TrimSpace(query.Filters[column])
			if value == "" {
				continue
			}
			conditions = append(conditions, fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '\\'", column))
			args = append(args, containsPattern(value))
		}
	}

	if dr := query.DateRange; dr != nil && dr.Field != "" {
		if !slices.Contains(k.DateColumns, dr.Field) {
			return nil, fmt.Errorf("%w: unknown date field %q", ErrInvalidArgument, dr.Field)
		}
		if dr.Gte != nil {
			conditions = append(conditions, dr.Field+" >= ?")
			args = append(args, *dr.Gte)
		}
		if dr.Lte != nil {
			conditions = append(conditions, dr.Field+" <= ?")
			args = append(args, *dr.Lte)
		}
	}

	return func(tx *gorm.DB) *gorm.DB {
		if len(conditions) == 0 {
			return tx
		}
		return tx.Where(strings.Join(conditions, " AND "), args...)
	}, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches text literally anywhere in a lowercased column.
func containsPattern(text string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
