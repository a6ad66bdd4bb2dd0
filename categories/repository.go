package categories

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/extrahand/taskpages/domain"
)

// Repository is the version store for category pages. Update is a
// compare-and-swap keyed on (id, updatedAt); CreateOrUpdateShadow and
// PromoteShadow are single transactional operations so concurrent editors
// never produce competing shadows or duplicate published records.
type Repository interface {
	Create(ctx context.Context, record *CategoryPage) (*CategoryPage, error)
	GetByID(ctx context.Context, id uuid.UUID) (*CategoryPage, error)
	GetBySlug(ctx context.Context, slug string) (*CategoryPage, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*CategoryPage, error)
	GetShadowOf(ctx context.Context, originalID uuid.UUID) (*CategoryPage, error)
	Update(ctx context.Context, record *CategoryPage, baseUpdatedAt time.Time) (*CategoryPage, error)
	CreateOrUpdateShadow(ctx context.Context, originalID uuid.UUID, build func(existing *CategoryPage) (*CategoryPage, error)) (*CategoryPage, error)
	PromoteShadow(ctx context.Context, shadowID uuid.UUID, now time.Time) (*CategoryPage, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*CategoryPage, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]*CategoryPage, error)
}

// NewCategoryPageRepository builds the generic bun repository for
// CategoryPage records.
func NewCategoryPageRepository(db *bun.DB) repository.Repository[*CategoryPage] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*CategoryPage]{
		NewRecord: func() *CategoryPage { return &CategoryPage{} },
		GetID: func(c *CategoryPage) uuid.UUID {
			return c.ID
		},
		SetID: func(c *CategoryPage, id uuid.UUID) {
			c.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(c *CategoryPage) string {
			return c.Slug
		},
	})
}
