package taskpages

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/extrahand/taskpages/articles"
	"github.com/extrahand/taskpages/categories"
)

// Migrate creates the taskpages tables when they do not exist. It is
// idempotent, so hosts can run it on every start.
func Migrate(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*categories.CategoryPage)(nil),
		(*articles.Article)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("taskpages: create table for %T: %w", model, err)
		}
	}
	return nil
}
