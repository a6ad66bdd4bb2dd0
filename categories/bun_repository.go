package categories

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

// BunCategoryRepository persists category pages through bun. The generic
// go-repository-bun repository covers plain CRUD; the CAS update and the
// shadow/promote transactions run as custom queries.
type BunCategoryRepository struct {
	db   *bun.DB
	repo repository.Repository[*CategoryPage]
}

// NewBunCategoryRepository constructs the repository without caching.
func NewBunCategoryRepository(db *bun.DB) *BunCategoryRepository {
	return NewBunCategoryRepositoryWithCache(db, nil, nil)
}

// NewBunCategoryRepositoryWithCache constructs the repository with an
// optional read-through cache for the generic lookups.
func NewBunCategoryRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunCategoryRepository {
	base := NewCategoryPageRepository(db)
	wrapped := wrapWithCache(base, cacheService, keySerializer)
	return &BunCategoryRepository{db: db, repo: wrapped}
}

// Create inserts a record, enforcing slug uniqueness for non-shadows.
func (r *BunCategoryRepository) Create(ctx context.Context, record *CategoryPage) (*CategoryPage, error) {
	if !record.IsShadow() {
		exists, err := r.db.NewSelect().
			Model((*CategoryPage)(nil)).
			Where("?TableAlias.slug = ?", record.Slug).
			Where("?TableAlias.original_category_id IS NULL").
			Exists(ctx)
		if err != nil {
			return nil, fmt.Errorf("category repository error: %w", err)
		}
		if exists {
			return nil, &SlugConflictError{Slug: record.Slug}
		}
	}
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("category repository error: %w", err)
	}
	return created, nil
}

// GetByID retrieves a record by identifier.
func (r *BunCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*CategoryPage, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "category", id.String())
	}
	return result, nil
}

// GetBySlug returns the non-shadow record at slug.
func (r *BunCategoryRepository) GetBySlug(ctx context.Context, slug string) (*CategoryPage, error) {
	record := new(CategoryPage)
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.slug = ?", slug).
		Where("?TableAlias.original_category_id IS NULL").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapScanError(err, "category", slug)
	}
	return record, nil
}

// GetPublishedBySlug returns the published record at slug.
func (r *BunCategoryRepository) GetPublishedBySlug(ctx context.Context, slug string) (*CategoryPage, error) {
	record := new(CategoryPage)
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.slug = ?", slug).
		Where("?TableAlias.status = ?", domain.StatusPublished).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapScanError(err, "category", slug)
	}
	return record, nil
}

// GetShadowOf returns the shadow draft pointing at originalID.
func (r *BunCategoryRepository) GetShadowOf(ctx context.Context, originalID uuid.UUID) (*CategoryPage, error) {
	record := new(CategoryPage)
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.original_category_id = ?", originalID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapScanError(err, "category shadow", originalID.String())
	}
	return record, nil
}

// Update replaces a record iff the stored updated_at still matches the
// caller's base version.
func (r *BunCategoryRepository) Update(ctx context.Context, record *CategoryPage, baseUpdatedAt time.Time) (*CategoryPage, error) {
	res, err := r.db.NewUpdate().
		Model(record).
		WherePK().
		Where("?TableAlias.updated_at = ?", baseUpdatedAt).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("category repository error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("category repository error: %w", err)
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
// transaction so two concurrent edits cannot produce competing shadows.
func (r *BunCategoryRepository) CreateOrUpdateShadow(ctx context.Context, originalID uuid.UUID, build func(existing *CategoryPage) (*CategoryPage, error)) (*CategoryPage, error) {
	var result *CategoryPage
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		original := new(CategoryPage)
		err := tx.NewSelect().
			Model(original).
			Where("?TableAlias.id = ?", originalID).
			Scan(ctx)
		if err != nil {
			return mapScanError(err, "category", originalID.String())
		}

		existing := new(CategoryPage)
		err = tx.NewSelect().
			Model(existing).
			Where("?TableAlias.original_category_id = ?", originalID).
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

// PromoteShadow atomically swaps the shadow in for its published original:
// the original row is deleted and the shadow becomes the published record
// at the same slug, in a single transaction.
func (r *BunCategoryRepository) PromoteShadow(ctx context.Context, shadowID uuid.UUID, now time.Time) (*CategoryPage, error) {
	var promoted *CategoryPage
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		shadow := new(CategoryPage)
		err := tx.NewSelect().
			Model(shadow).
			Where("?TableAlias.id = ?", shadowID).
			Scan(ctx)
		if err != nil {
			return mapScanError(err, "category", shadowID.String())
		}
		if !shadow.IsShadow() {
			return ErrNotShadow
		}

		originalID := *shadow.OriginalCategoryID
		if _, err := tx.NewDelete().
			Model((*CategoryPage)(nil)).
			Where("?TableAlias.id = ?", originalID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete original: %w", err)
		}

		shadow.OriginalCategoryID = nil
		shadow.Status = domain.StatusPublished
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

// Delete removes a record by id.
func (r *BunCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &CategoryPage{ID: id}); err != nil {
		return mapRepositoryError(err, "category", id.String())
	}
	return nil
}

// List returns every record.
func (r *BunCategoryRepository) List(ctx context.Context) ([]*CategoryPage, error) {
	records, _, err := r.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("category repository error: %w", err)
	}
	return records, nil
}

// ListByStatus returns records in the given status.
func (r *BunCategoryRepository) ListByStatus(ctx context.Context, status domain.Status) ([]*CategoryPage, error) {
	var records []*CategoryPage
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.status = ?", status).
		Order("updated_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("category repository error: %w", err)
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

var _ Repository = (*BunCategoryRepository)(nil)
