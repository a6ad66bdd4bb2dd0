package articles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/extrahand/taskpages/domain"
)

// BunArticleRepository persists articles through bun. Plain CRUD goes through
// the generic go-repository-bun repository; the CAS update, the view counter,
// and the shadow transactions run as custom queries.
type BunArticleRepository struct {
	db   *bun.DB
	repo repository.Repository[*Article]
}

// NewBunArticleRepository constructs the repository without caching.
func NewBunArticleRepository(db *bun.DB) *BunArticleRepository {
	return NewBunArticleRepositoryWithCache(db, nil, nil)
}

// NewBunArticleRepositoryWithCache constructs the repository with an optional
// read-through cache for the generic lookups.
func NewBunArticleRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunArticleRepository {
	base := NewArticleRepository(db)
	wrapped := wrapWithCache(base, cacheService, keySerializer)
	return &BunArticleRepository{db: db, repo: wrapped}
}

// Create inserts a record, enforcing slug uniqueness for non-shadows.
func (r *BunArticleRepository) Create(ctx context.Context, record *Article) (*Article, error) {
	if !record.IsShadow() {
		exists, err := r.db.NewSelect().
			Model((*Article)(nil)).
			Where("?TableAlias.slug = ?", record.Slug).
			Where("?TableAlias.original_article_id IS NULL").
			Exists(ctx)
		if err != nil {
			return nil, fmt.Errorf("article repository error: %w", err)
		}
		if exists {
			return nil, &SlugConflictError{Slug: record.Slug}
		}
	}
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("article repository error: %w", err)
	}
	return created, nil
}

// GetByID retrieves a record by identifier.
func (r *BunArticleRepository) GetByID(ctx context.Context, id uuid.UUID) (*Article, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "article", id.String())
	}
	return result, nil
}

// GetBySlug returns the non-shadow record at slug.
func (r *BunArticleRepository) GetBySlug(ctx context.Context, slug string) (*Article, error) {
	record := new(Article)
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.slug = ?", slug).
		Where("?TableAlias.original_article_id IS NULL").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapScanError(err, "article", slug)
	}
	return record, nil
}

// GetPublishedBySlug returns the published record at slug.
func (r *BunArticleRepository) GetPublishedBySlug(ctx context.Context, slug string) (*Article, error) {
	record := new(Article)
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.slug = ?", slug).
		Where("?TableAlias.status = ?", domain.StatusPublished).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapScanError(err, "article", slug)
	}
	return record, nil
}

// GetShadowOf returns the shadow draft pointing at originalID.
func (r *BunArticleRepository) GetShadowOf(ctx context.Context, originalID uuid.UUID) (*Article, error) {
	record := new(Article)
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.original_article_id = ?", originalID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapScanError(err, "article shadow", originalID.String())
	}
	return record, nil
}

// Update replaces a record iff the stored updated_at still matches the
// caller's base version.
func (r *BunArticleRepository) Update(ctx context.Context, record *Article, baseUpdatedAt time.Time) (*Article, error) {
	res, err := r.db.NewUpdate().
		Model(record).
		WherePK().
		Where("?TableAlias.updated_at = ?", baseUpdatedAt).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("article repository error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("article repository error: %w", err)
	}
	if affected == 0 {
		current, getErr := r.GetByID(ctx, record.ID)
		if getErr != nil {
			return nil, getErr
		}
		return nil, &StaleWriteError{ID: record.ID, BaseUpdatedAt: baseUpdatedAt, UpdatedAt: current.UpdatedAt}
	}
	return record, nil
}

// CreateOrUpdateShadow upserts the shadow of originalID inside one
// transaction.
func (r *BunArticleRepository) CreateOrUpdateShadow(ctx context.Context, originalID uuid.UUID, build func(existing *Article) (*Article, error)) (*Article, error) {
	var result *Article
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		original := new(Article)
		err := tx.NewSelect().
			Model(original).
			Where("?TableAlias.id = ?", originalID).
			Scan(ctx)
		if err != nil {
			return mapScanError(err, "article", originalID.String())
		}

		existing := new(Article)
		err = tx.NewSelect().
			Model(existing).
			Where("?TableAlias.original_article_id = ?", originalID).
			Limit(1).
			Scan(ctx)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			existing = nil
		case err != nil:
			return fmt.Errorf("select shadow: %w", err)
		}

		shadow, err := build(existing)
		if err != nil {
			return err
		}

		if existing == nil {
			if _, err := tx.NewInsert().Model(shadow).Exec(ctx); err != nil {
				return fmt.Errorf("insert shadow: %w", err)
			}
		} else {
			if _, err := tx.NewUpdate().Model(shadow).WherePK().Exec(ctx); err != nil {
				return fmt.Errorf("update shadow: %w", err)
			}
		}
		result = shadow
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PromoteShadow atomically swaps the shadow in for its published original in
// a single transaction. The original's view counter carries over.
func (r *BunArticleRepository) PromoteShadow(ctx context.Context, shadowID uuid.UUID, now time.Time) (*Article, error) {
	var promoted *Article
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		shadow := new(Article)
		err := tx.NewSelect().
			Model(shadow).
			Where("?TableAlias.id = ?", shadowID).
			Scan(ctx)
		if err != nil {
			return mapScanError(err, "article", shadowID.String())
		}
		if !shadow.IsShadow() {
			return ErrNotShadow
		}

		originalID := *shadow.OriginalArticleID
		original := new(Article)
		err = tx.NewSelect().
			Model(original).
			Where("?TableAlias.id = ?", originalID).
			Scan(ctx)
		if err != nil {
			return mapScanError(err, "article", originalID.String())
		}

		if _, err := tx.NewDelete().
			Model((*Article)(nil)).
			Where("?TableAlias.id = ?", originalID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete original: %w", err)
		}

		shadow.OriginalArticleID = nil
		shadow.Status = domain.StatusPublished
		shadow.Views = original.Views
		shadow.UpdatedAt = now
		if _, err := tx.NewUpdate().Model(shadow).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("promote shadow: %w", err)
		}
		promoted = shadow
		return nil
	})
	if err != nil {
		return nil, err
	}
	return promoted, nil
}

// IncrementViews bumps the view counter without touching updated_at.
func (r *BunArticleRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewUpdate().
		Model((*Article)(nil)).
		Set("views = views + 1").
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("article repository error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("article repository error: %w", err)
	}
	if affected == 0 {
		return &NotFoundError{Resource: "article", Key: id.String()}
	}
	return nil
}

// Delete removes a record by id.
func (r *BunArticleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Article{ID: id}); err != nil {
		return mapRepositoryError(err, "article", id.String())
	}
	return nil
}

// List returns every record.
func (r *BunArticleRepository) List(ctx context.Context) ([]*Article, error) {
	records, _, err := r.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("article repository error: %w", err)
	}
	return records, nil
}

// ListByStatus returns records in the given status.
func (r *BunArticleRepository) ListByStatus(ctx context.Context, status domain.Status) ([]*Article, error) {
	var records []*Article
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.status = ?", status).
		Order("updated_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("article repository error: %w", err)
	}
	return records, nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func mapScanError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}

var _ Repository = (*BunArticleRepository)(nil)
