package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageParams is the caller-supplied paging and sorting request.
type PageParams struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Page is PageParams resolved against a whitelist of sortable columns.
type Page struct {
	Number  int
	Limit   int
	Offset  int
	OrderBy string
}

// Paginate resolves params to offset/limit and a safe ORDER BY clause.
// sortable maps API field names to SQL columns; unknown fields fall back to
// "createdAt" and the sort order defaults to descending.
func Paginate(p PageParams, sortable map[string]string) Page {
	page := p.Page
	if page < 1 {
		page = DefaultPage
	}
	limit := p.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	column, ok := sortable[p.SortBy]
	if !ok {
		column = sortable["createdAt"]
	}
	direction := "DESC"
	if strings.EqualFold(p.SortOrder, "asc") {
		direction = "ASC"
	}

	return Page{
		Number:  page,
		Limit:   limit,
		Offset:  (page - 1) * limit,
		OrderBy: column + " " + direction,
	}
}

type OffsetPage[T any] struct {
	Items      []T
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

func newOffsetPage[T any](items []T, page Page, total int) *OffsetPage[T] {
	totalPages := total / page.Limit
	if total%page.Limit != 0 {
		totalPages++
	}
	if items == nil {
		items = []T{}
	}
	return &OffsetPage[T]{
		Items:      items,
		Page:       page.Number,
		Limit:      page.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// filter accumulates WHERE conditions with positional arguments.
type filter struct {
	conds []string
	args  []any
}

// arg registers a value and returns its placeholder.
func (f *filter) arg(v any) string {
	f.args = append(f.args, v)
	return fmt.Sprintf("$%d", len(f.args))
}

func (f *filter) where(cond string) {
	f.conds = append(f.conds, cond)
}

func (f *filter) eq(column string, v any) {
	f.where(column + " = " + f.arg(v))
}

// search adds a case-insensitive substring match over any of columns.
func (f *filter) search(term string, columns ...string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}
	ph := f.arg("%" + term + "%")
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = c + " ILIKE " + ph
	}
	f.where("(" + strings.Join(parts, " OR ") + ")")
}

func (f *filter) clause() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

type rowScanner interface {
	Scan(dest ...any) error
}

// listAndCount runs the page query and the total count concurrently. It
// takes *sql.DB because a transaction cannot serve two queries at once.
func listAndCount[T any](ctx context.Context, db *sql.DB, columns, from string, f *filter, page Page, scan func(rowScanner) (T, error)) (*OffsetPage[T], error) {
	where := f.clause()

	var (
		items []T
		total int
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT %d OFFSET %d",
			columns, from, where, page.OrderBy, page.Limit, page.Offset)

		rows, err := db.QueryContext(gctx, query, f.args...)
		if err != nil {
			return fmt.Errorf("list: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			item, err := scan(rows)
			if err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			items = append(items, item)
		}
		return rows.Err()
	})

	g.Go(func() error {
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", from, where)
		if err := db.QueryRowContext(gctx, query, f.args...).Scan(&total); err != nil {
			return fmt.Errorf("count: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return newOffsetPage(items, page, total), nil
}

// expectOne turns a zero-row update into notFound.
func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
