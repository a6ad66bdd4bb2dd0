package categories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/extrahand/taskpages/domain"
	"github.com/extrahand/taskpages/fields"
)

func seedCategory(t *testing.T, repo *MemoryCategoryRepository, slug string, status domain.Status) *CategoryPage {
	t.Helper()
	record := &CategoryPage{
		ID:        uuid.New(),
		Name:      slug,
		Slug:      slug,
		Status:    status,
		CreatedAt: time.Unix(1700000000, 0).UTC(),
		UpdatedAt: time.Unix(1700000000, 0).UTC(),
	}
	if _, err := repo.Create(context.Background(), record); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	return record
}

func TestMemoryRepositorySlugUniqueness(t *testing.T) {
	repo := NewMemoryCategoryRepository()
	seedCategory(t, repo, "accountant-tasks", domain.StatusDraft)

	dup := &CategoryPage{ID: uuid.New(), Slug: "accountant-tasks", Status: domain.StatusDraft}
	if _, err := repo.Create(context.Background(), dup); !errors.Is(err, ErrSlugConflict) {
		t.Fatalf("expected ErrSlugConflict, got %v", err)
	}

	// Shadows share the original slug without conflicting.
	original := seedCategory(t, repo, "plumber-tasks", domain.StatusPublished)
	shadow := &CategoryPage{
		ID:                 uuid.New(),
		Slug:               "plumber-tasks",
		Status:             domain.StatusDraft,
		OriginalCategoryID: &original.ID,
	}
	if _, err := repo.Create(context.Background(), shadow); err != nil {
		t.Fatalf("expected shadow create to succeed, got %v", err)
	}
}

func TestMemoryRepositoryCompareAndSwap(t *testing.T) {
	repo := NewMemoryCategoryRepository()
	ctx := context.Background()
	record := seedCategory(t, repo, "accountant-tasks", domain.StatusDraft)

	base := record.UpdatedAt
	record.Name = "Accountant Tasks"
	record.UpdatedAt = base.Add(time.Second)
	if _, err := repo.Update(ctx, record, base); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	record.Name = "Stale"
	if _, err := repo.Update(ctx, record, base); !errors.Is(err, ErrStaleWrite) {
		t.Fatalf("expected ErrStaleWrite, got %v", err)
	}

	stored, err := repo.GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if stored.Name != "Accountant Tasks" {
		t.Fatalf("expected stale write to be discarded, got %q", stored.Name)
	}
}

func TestMemoryRepositoryShadowUpsert(t *testing.T) {
	repo := NewMemoryCategoryRepository()
	ctx := context.Background()
	original := seedCategory(t, repo, "accountant-tasks", domain.StatusPublished)

	build := func(title string) func(existing *CategoryPage) (*CategoryPage, error) {
		return func(existing *CategoryPage) (*CategoryPage, error) {
			if existing != nil {
				existing.Name = title
				return existing, nil
			}
			return &CategoryPage{
				ID:                 uuid.New(),
				Name:               title,
				Slug:               original.Slug,
				Status:             domain.StatusDraft,
				OriginalCategoryID: &original.ID,
			}, nil
		}
	}

	first, err := repo.CreateOrUpdateShadow(ctx, original.ID, build("first"))
	if err != nil {
		t.Fatalf("CreateOrUpdateShadow returned error: %v", err)
	}
	second, err := repo.CreateOrUpdateShadow(ctx, original.ID, build("second"))
	if err != nil {
		t.Fatalf("second CreateOrUpdateShadow returned error: %v", err)
	}
	if first.ID != second.ID {
		t.Fatal("expected a single shadow per original")
	}
	if second.Name != "second" {
		t.Fatalf("expected build to see the existing shadow, got %q", second.Name)
	}

	found, err := repo.GetShadowOf(ctx, original.ID)
	if err != nil {
		t.Fatalf("GetShadowOf returned error: %v", err)
	}
	if found.ID != first.ID {
		t.Fatalf("unexpected shadow %s", found.ID)
	}
}

func TestMemoryRepositoryPromoteShadow(t *testing.T) {
	repo := NewMemoryCategoryRepository()
	ctx := context.Background()
	original := seedCategory(t, repo, "accountant-tasks", domain.StatusPublished)

	shadow := &CategoryPage{
		ID:                 uuid.New(),
		Name:               "Accountant Tasks",
		Slug:               original.Slug,
		Status:             domain.StatusApproved,
		OriginalCategoryID: &original.ID,
	}
	if _, err := repo.Create(ctx, shadow); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	now := time.Unix(1700001000, 0).UTC()
	promoted, err := repo.PromoteShadow(ctx, shadow.ID, now)
	if err != nil {
		t.Fatalf("PromoteShadow returned error: %v", err)
	}
	if promoted.Status != domain.StatusPublished {
		t.Fatalf("expected published, got %s", promoted.Status)
	}
	if promoted.OriginalCategoryID != nil {
		t.Fatal("expected shadow linkage cleared")
	}
	if !promoted.UpdatedAt.Equal(now) {
		t.Fatalf("expected UpdatedAt stamped, got %v", promoted.UpdatedAt)
	}

	if _, err := repo.GetByID(ctx, original.ID); !IsNotFound(err) {
		t.Fatalf("expected original removed, got %v", err)
	}
	bySlug, err := repo.GetBySlug(ctx, original.Slug)
	if err != nil {
		t.Fatalf("GetBySlug returned error: %v", err)
	}
	if bySlug.ID != shadow.ID {
		t.Fatalf("expected slug to resolve to the promoted record, got %s", bySlug.ID)
	}

	// Promoting a non-shadow is refused.
	if _, err := repo.PromoteShadow(ctx, shadow.ID, now); !errors.Is(err, ErrNotShadow) {
		t.Fatalf("expected ErrNotShadow, got %v", err)
	}
}

func TestMemoryRepositoryIsolatesStructuredFields(t *testing.T) {
	repo := NewMemoryCategoryRepository()
	record := seedCategory(t, repo, "accountant-tasks", domain.StatusPublished)

	record.Fields = fields.NewMap()
	record.Fields.Set("questions", fields.Derived([]any{
		map[string]any{"subtitle": "What does it pay?", "description": "It depends."},
	}))
	updated, err := repo.Update(context.Background(), record, record.UpdatedAt)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	value, _ := updated.Fields.Get("questions")
	item := value.Data.([]any)[0].(map[string]any)
	item["subtitle"] = "mutated"

	stored, err := repo.GetByID(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	storedValue, _ := stored.Fields.Get("questions")
	storedItem := storedValue.Data.([]any)[0].(map[string]any)
	if storedItem["subtitle"] != "What does it pay?" {
		t.Fatalf("expected stored payload untouched, got %v", storedItem["subtitle"])
	}
}

func TestMemoryRepositoryListByStatus(t *testing.T) {
	repo := NewMemoryCategoryRepository()
	ctx := context.Background()
	seedCategory(t, repo, "a", domain.StatusDraft)
	seedCategory(t, repo, "b", domain.StatusPendingApproval)
	seedCategory(t, repo, "c", domain.StatusPendingApproval)

	pending, err := repo.ListByStatus(ctx, domain.StatusPendingApproval)
	if err != nil {
		t.Fatalf("ListByStatus returned error: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected two pending records, got %d", len(pending))
	}
}
