package option

import (
	"github.com/orbitcrm/orbitcrm/pkg/db/pagination"
	"gorm.io/gorm"
)

// Option mutates a gorm statement. Repositories chain these so list queries
// stay declarative.
type Option interface {
	Apply(*gorm.DB) *gorm.DB
}

type optionFunc func(*gorm.DB) *gorm.DB

func (f optionFunc) Apply(stmt *gorm.DB) *gorm.DB { return f(stmt) }

// ApplyPagination applies cursor pagination: fetch one row past the page size
// so the caller can detect a next page.
func ApplyPagination(page pagination.Pagination) Option {
	return optionFunc(func(stmt *gorm.DB) *gorm.DB {
		size := page.PageSize
		if size <= 0 {
			size = 10
		}
		if page.PageToken != "" {
			if cursor, err := pagination.DecodeCursor(page.PageToken); err == nil && cursor != nil {
				if cursor.CreatedAt != "" && cursor.ID != "" {
					stmt = stmt.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
				}
			}
		}
		return stmt.Limit(size + 1)
	})
}

// WithSortBy whitelists sortable columns; unknown columns fall back to id.
func WithSortBy(column, direction string, allowed map[string]bool) Option {
	return optionFunc(func(stmt *gorm.DB) *gorm.DB {
		if column == "" || !allowed[column] {
			column = "id"
		}
		if direction != "asc" && direction != "desc" {
			direction = "asc"
		}
		return stmt.Order(column + " " + direction)
	})
}
