package categories

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/extrahand/taskpages/domain"
)

// MemoryCategoryRepository is an in-memory version store for scaffolding
// and tests. All operations run under one lock, so the shadow and promote
// read-modify-writes are trivially transactional.
type MemoryCategoryRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*CategoryPage
	// slugIndex tracks non-shadow records only; shadows share their
	// original's slug.
	slugIndex map[string]uuid.UUID
}

// NewMemoryCategoryRepository creates an empty in-memory repository.
func NewMemoryCategoryRepository() *MemoryCategoryRepository {
	return &MemoryCategoryRepository{
		records:   make(map[uuid.UUID]*CategoryPage),
		slugIndex: make(map[string]uuid.UUID),
	}
}

// Create inserts a record, enforcing slug uniqueness for non-shadows.
func (m *MemoryCategoryRepository) Create(_ context.Context, record *CategoryPage) (*CategoryPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !record.IsShadow() {
		if _, exists := m.slugIndex[record.Slug]; exists {
			return nil, &SlugConflictError{Slug: record.Slug}
		}
	}

	copied := cloneCategory(record)
	m.records[copied.ID] = copied
	if !copied.IsShadow() {
		m.slugIndex[copied.Slug] = copied.ID
	}
	return cloneCategory(copied), nil
}

// GetByID retrieves a record by identifier.
func (m *MemoryCategoryRepository) GetByID(_ context.Context, id uuid.UUID) (*CategoryPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, &NotFoundError{Resource: "category", Key: id.String()}
	}
	return cloneCategory(rec), nil
}

// GetBySlug returns the non-shadow record at slug, regardless of status.
func (m *MemoryCategoryRepository) GetBySlug(_ context.Context, slug string) (*CategoryPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.slugIndex[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "category", Key: slug}
	}
	return cloneCategory(m.records[id]), nil
}

// GetPublishedBySlug returns the published record at slug.
func (m *MemoryCategoryRepository) GetPublishedBySlug(_ context.Context, slug string) (*CategoryPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rec := range m.records {
		if rec.Slug == slug && rec.Status == domain.StatusPublished {
			return cloneCategory(rec), nil
		}
	}
	return nil, &NotFoundError{Resource: "category", Key: slug}
}

// GetShadowOf returns the shadow draft pointing at originalID.
func (m *MemoryCategoryRepository) GetShadowOf(_ context.Context, originalID uuid.UUID) (*CategoryPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if shadow := m.findShadowOf(originalID); shadow != nil {
		return cloneCategory(shadow), nil
	}
	return nil, &NotFoundError{Resource: "category shadow", Key: originalID.String()}
}

// Update replaces a record iff the caller's base version matches.
func (m *MemoryCategoryRepository) Update(_ context.Context, record *CategoryPage, baseUpdatedAt time.Time) (*CategoryPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.records[record.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "category", Key: record.ID.String()}
	}
	if !current.UpdatedAt.Equal(baseUpdatedAt) {
		return nil, &StaleWriteError{ID: record.ID, BaseUpdatedAt: baseUpdatedAt, UpdatedAt: current.UpdatedAt}
	}
	if !record.IsShadow() && record.Slug != current.Slug {
		if _, exists := m.slugIndex[record.Slug]; exists {
			return nil, &SlugConflictError{Slug: record.Slug}
		}
		delete(m.slugIndex, current.Slug)
		m.slugIndex[record.Slug] = record.ID
	}

	copied := cloneCategory(record)
	m.records[copied.ID] = copied
	return cloneCategory(copied), nil
}

// CreateOrUpdateShadow runs one locked read-modify-write for the shadow of
// originalID. build receives the existing shadow, or nil when none exists,
// and returns the record to store.
func (m *MemoryCategoryRepository) CreateOrUpdateShadow(_ context.Context, originalID uuid.UUID, build func(existing *CategoryPage) (*CategoryPage, error)) (*CategoryPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[originalID]; !ok {
		return nil, &NotFoundError{Resource: "category", Key: originalID.String()}
	}

	var existing *CategoryPage
	if shadow := m.findShadowOf(originalID); shadow != nil {
		existing = cloneCategory(shadow)
	}

	shadow, err := build(existing)
	if err != nil {
		return nil, err
	}
	copied := cloneCategory(shadow)
	m.records[copied.ID] = copied
	return cloneCategory(copied), nil
}

// PromoteShadow atomically replaces the original published record with its
// shadow: the original is removed and the shadow becomes the published
// record at the same slug.
func (m *MemoryCategoryRepository) PromoteShadow(_ context.Context, shadowID uuid.UUID, now time.Time) (*CategoryPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	shadow, ok := m.records[shadowID]
	if !ok {
		return nil, &NotFoundError{Resource: "category", Key: shadowID.String()}
	}
	if !shadow.IsShadow() {
		return nil, ErrNotShadow
	}

	originalID := *shadow.OriginalCategoryID
	original, ok := m.records[originalID]
	if !ok {
		return nil, &NotFoundError{Resource: "category", Key: originalID.String()}
	}

	delete(m.records, originalID)
	delete(m.slugIndex, original.Slug)

	promoted := cloneCategory(shadow)
	promoted.OriginalCategoryID = nil
	promoted.Status = domain.StatusPublished
	promoted.UpdatedAt = now

	m.records[promoted.ID] = promoted
	m.slugIndex[promoted.Slug] = promoted.ID
	return cloneCategory(promoted), nil
}

// Delete removes a record. Deleting a shadow leaves its original intact.
func (m *MemoryCategoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return &NotFoundError{Resource: "category", Key: id.String()}
	}
	delete(m.records, id)
	if !rec.IsShadow() {
		delete(m.slugIndex, rec.Slug)
	}
	return nil
}

// List returns every record.
func (m *MemoryCategoryRepository) List(_ context.Context) ([]*CategoryPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*CategoryPage, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, cloneCategory(rec))
	}
	return out, nil
}

// ListByStatus returns records in the given status.
func (m *MemoryCategoryRepository) ListByStatus(_ context.Context, status domain.Status) ([]*CategoryPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*CategoryPage, 0)
	for _, rec := range m.records {
		if rec.Status == status {
			out = append(out, cloneCategory(rec))
		}
	}
	return out, nil
}

func (m *MemoryCategoryRepository) findShadowOf(originalID uuid.UUID) *CategoryPage {
	for _, rec := range m.records {
		if rec.OriginalCategoryID != nil && *rec.OriginalCategoryID == originalID {
			return rec
		}
	}
	return nil
}

var _ Repository = (*MemoryCategoryRepository)(nil)
