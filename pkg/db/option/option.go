package option

import (
	"fmt"
	"strings"
	"time"

	"github.com/sentrakoop/sentra/pkg/db/pagination"
	"gorm.io/gorm"
)

// Option mutates a gorm statement before execution.
type Option interface {
	Apply(stmt *gorm.DB) *gorm.DB
}

type sortBy struct {
	clause string
}

func (o sortBy) Apply(stmt *gorm.DB) *gorm.DB {
	if o.clause == "" {
		return stmt
	}
	return stmt.Order(o.clause)
}

// WithSortBy orders the query by a pre-validated clause.
func WithSortBy(clause string) Option {
	return sortBy{clause: clause}
}

type paginate struct {
	page pagination.Pagination
}

func (o paginate) Apply(stmt *gorm.DB) *gorm.DB {
	size := o.page.PageSize
	if size <= 0 {
		size = 10
	}
	if size > 250 {
		size = 250
	}

	if o.page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(o.page.PageToken)
		if err == nil && cursor.CreatedAt != "" {
			if at, perr := time.Parse(time.RFC3339Nano, cursor.CreatedAt); perr == nil {
				stmt = stmt.Where(
					"created_at < ? OR (created_at = ? AND id < ?)",
					at, at, cursor.ID,
				)
			}
		}
	}

	// One extra row so the caller can tell whether another page exists.
	return stmt.Limit(size + 1)
}

// ApplyPagination seeks past the cursor encoded in the page token and
// over-fetches by one row. Rows must be ordered created_at desc, id desc
// for the cursor comparison to hold.
func ApplyPagination(page pagination.Pagination) Option {
	return paginate{page: page}
}

// WithQuerySortBy builds an ORDER BY clause from user-supplied sort and
// order values, restricted to an allow-list of columns.
func WithQuerySortBy(field, order string, allowed map[string]bool) string {
	field = strings.ToLower(strings.TrimSpace(field))
	if field == "" || !allowed[field] {
		return ""
	}

	direction := "ASC"
	if strings.EqualFold(strings.TrimSpace(order), "desc") {
		direction = "DESC"
	}

	return fmt.Sprintf("%s %s", field, direction)
}
