package articles

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/extrahand/taskpages/domain"
)

// Repository is the version store for articles. Update is a compare-and-swap
// keyed on (id, updatedAt); the shadow operations run as single transactions
// so concurrent editors never produce competing shadows.
type Repository interface {
	Create(ctx context.Context, record *Article) (*Article, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Article, error)
	GetBySlug(ctx context.Context, slug string) (*Article, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*Article, error)
	GetShadowOf(ctx context.Context, originalID uuid.UUID) (*Article, error)
	Update(ctx context.Context, record *Article, baseUpdatedAt time.Time) (*Article, error)
	CreateOrUpdateShadow(ctx context.Context, originalID uuid.UUID, build func(existing *Article) (*Article, error)) (*Article, error)
	PromoteShadow(ctx context.Context, shadowID uuid.UUID, now time.Time) (*Article, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*Article, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]*Article, error)
}

// NewArticleRepository builds the generic bun repository for Article records.
func NewArticleRepository(db *bun.DB) repository.Repository[*Article] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Article]{
		NewRecord: func() *Article { return &Article{} },
		GetID: func(a *Article) uuid.UUID {
			return a.ID
		},
		SetID: func(a *Article, id uuid.UUID) {
			a.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(a *Article) string {
			return a.Slug
		},
	})
}
