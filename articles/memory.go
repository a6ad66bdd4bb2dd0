package articles

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/extrahand/taskpages/domain"
)

// MemoryArticleRepository is an in-memory version store for scaffolding and
// tests. All operations run under one lock.
type MemoryArticleRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Article
	// slugIndex tracks non-shadow records only.
	slugIndex map[string]uuid.UUID
}

// NewMemoryArticleRepository creates an empty in-memory repository.
func NewMemoryArticleRepository() *MemoryArticleRepository {
	return &MemoryArticleRepository{
		records:   make(map[uuid.UUID]*Article),
		slugIndex: make(map[string]uuid.UUID),
	}
}

// Create inserts a record, enforcing slug uniqueness for non-shadows.
func (m *MemoryArticleRepository) Create(_ context.Context, record *Article) (*Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !record.IsShadow() {
		if _, exists := m.slugIndex[record.Slug]; exists {
			return nil, &SlugConflictError{Slug: record.Slug}
		}
	}

	copied := cloneArticle(record)
	m.records[copied.ID] = copied
	if !copied.IsShadow() {
		m.slugIndex[copied.Slug] = copied.ID
	}
	return cloneArticle(copied), nil
}

// GetByID retrieves a record by identifier.
func (m *MemoryArticleRepository) GetByID(_ context.Context, id uuid.UUID) (*Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, &NotFoundError{Resource: "article", Key: id.String()}
	}
	return cloneArticle(rec), nil
}

// GetBySlug returns the non-shadow record at slug, regardless of status.
func (m *MemoryArticleRepository) GetBySlug(_ context.Context, slug string) (*Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.slugIndex[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "article", Key: slug}
	}
	return cloneArticle(m.records[id]), nil
}

// GetPublishedBySlug returns the published record at slug.
func (m *MemoryArticleRepository) GetPublishedBySlug(_ context.Context, slug string) (*Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rec := range m.records {
		if rec.Slug == slug && rec.Status == domain.StatusPublished {
			return cloneArticle(rec), nil
		}
	}
	return nil, &NotFoundError{Resource: "article", Key: slug}
}

// GetShadowOf returns the shadow draft pointing at originalID.
func (m *MemoryArticleRepository) GetShadowOf(_ context.Context, originalID uuid.UUID) (*Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if shadow := m.findShadowOf(originalID); shadow != nil {
		return cloneArticle(shadow), nil
	}
	return nil, &NotFoundError{Resource: "article shadow", Key: originalID.String()}
}

// Update replaces a record iff the caller's base version matches.
func (m *MemoryArticleRepository) Update(_ context.Context, record *Article, baseUpdatedAt time.Time) (*Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.records[record.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "article", Key: record.ID.String()}
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

	copied := cloneArticle(record)
	m.records[copied.ID] = copied
	return cloneArticle(copied), nil
}

// CreateOrUpdateShadow runs one locked read-modify-write for the shadow of
// originalID.
func (m *MemoryArticleRepository) CreateOrUpdateShadow(_ context.Context, originalID uuid.UUID, build func(existing *Article) (*Article, error)) (*Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[originalID]; !ok {
		return nil, &NotFoundError{Resource: "article", Key: originalID.String()}
	}

	var existing *Article
	if shadow := m.findShadowOf(originalID); shadow != nil {
		existing = cloneArticle(shadow)
	}

	shadow, err := build(existing)
	if err != nil {
		return nil, err
	}
	copied := cloneArticle(shadow)
	m.records[copied.ID] = copied
	return cloneArticle(copied), nil
}

// PromoteShadow atomically replaces the original published article with its
// shadow.
func (m *MemoryArticleRepository) PromoteShadow(_ context.Context, shadowID uuid.UUID, now time.Time) (*Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	shadow, ok := m.records[shadowID]
	if !ok {
		return nil, &NotFoundError{Resource: "article", Key: shadowID.String()}
	}
	if !shadow.IsShadow() {
		return nil, ErrNotShadow
	}

	originalID := *shadow.OriginalArticleID
	original, ok := m.records[originalID]
	if !ok {
		return nil, &NotFoundError{Resource: "article", Key: originalID.String()}
	}

	delete(m.records, originalID)
	delete(m.slugIndex, original.Slug)

	promoted := cloneArticle(shadow)
	promoted.OriginalArticleID = nil
	promoted.Status = domain.StatusPublished
	promoted.Views = original.Views
	promoted.UpdatedAt = now

	m.records[promoted.ID] = promoted
	m.slugIndex[promoted.Slug] = promoted.ID
	return cloneArticle(promoted), nil
}

// IncrementViews bumps the view counter without touching UpdatedAt, so reads
// never invalidate an editor's base version.
func (m *MemoryArticleRepository) IncrementViews(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return &NotFoundError{Resource: "article", Key: id.String()}
	}
	rec.Views++
	return nil
}

// Delete removes a record. Deleting a shadow leaves its original intact.
func (m *MemoryArticleRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return &NotFoundError{Resource: "article", Key: id.String()}
	}
	delete(m.records, id)
	if !rec.IsShadow() {
		delete(m.slugIndex, rec.Slug)
	}
	return nil
}

// List returns every record.
func (m *MemoryArticleRepository) List(_ context.Context) ([]*Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Article, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, cloneArticle(rec))
	}
	return out, nil
}

// ListByStatus returns records in the given status.
func (m *MemoryArticleRepository) ListByStatus(_ context.Context, status domain.Status) ([]*Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Article, 0)
	for _, rec := range m.records {
		if rec.Status == status {
			out = append(out, cloneArticle(rec))
		}
	}
	return out, nil
}

func (m *MemoryArticleRepository) findShadowOf(originalID uuid.UUID) *Article {
	for _, rec := range m.records {
		if rec.OriginalArticleID != nil && *rec.OriginalArticleID == originalID {
			return rec
		}
	}
	return nil
}

var _ Repository = (*MemoryArticleRepository)(nil)
