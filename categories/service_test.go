package categories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/extrahand/taskpages/domain"
	"github.com/extrahand/taskpages/lifecycle"
)

func newTestService(t *testing.T) (Service, *MemoryCategoryRepository) {
	t.Helper()
	repo := NewMemoryCategoryRepository()
	var tick int64
	clock := func() time.Time {
		tick++
		return time.Unix(1700000000, 0).Add(time.Duration(tick) * time.Second).UTC()
	}
	svc := NewService(repo, WithClock(clock))
	return svc, repo
}

func mustCreate(t *testing.T, svc Service, name string) *CategoryPage {
	t.Helper()
	record, err := svc.Create(context.Background(), CreateCategoryRequest{
		Name:      name,
		CreatedBy: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Create(%q) returned error: %v", name, err)
	}
	return record
}

func mustPublish(t *testing.T, svc Service, id uuid.UUID) *CategoryPage {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.SubmitForApproval(ctx, TransitionRequest{ID: id}); err != nil {
		t.Fatalf("SubmitForApproval returned error: %v", err)
	}
	if _, err := svc.Approve(ctx, ReviewRequest{ID: id, ReviewerID: uuid.New()}); err != nil {
		t.Fatalf("Approve returned error: %v", err)
	}
	published, err := svc.Publish(ctx, TransitionRequest{ID: id})
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	return published
}

func TestCreateDerivesSlugAndFields(t *testing.T) {
	svc, _ := newTestService(t)

	record := mustCreate(t, svc, "Accountant Tasks")

	if record.Status != domain.StatusDraft {
		t.Fatalf("expected draft, got %s", record.Status)
	}
	if record.Slug != "accountant-tasks" {
		t.Fatalf("expected slug accountant-tasks, got %q", record.Slug)
	}
	if record.SlugProvenance != domain.ProvenanceDerived {
		t.Fatalf("expected derived slug provenance, got %s", record.SlugProvenance)
	}
	hero, ok := record.Fields.Get("heroTitle")
	if !ok {
		t.Fatal("expected heroTitle to be derived")
	}
	if got, _ := hero.String(); got != "Accountant tasks near you" {
		t.Fatalf("unexpected heroTitle %q", got)
	}
	if record.OriginalCategoryID != nil {
		t.Fatal("expected fresh category to not be a shadow")
	}
}

func TestCreateRejectsDuplicateSlug(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, "Accountant Tasks")

	_, err := svc.Create(context.Background(), CreateCategoryRequest{Name: "Accountant Tasks"})
	if !errors.Is(err, ErrSlugConflict) {
		t.Fatalf("expected ErrSlugConflict, got %v", err)
	}
	var conflict *SlugConflictError
	if !errors.As(err, &conflict) || conflict.Slug != "accountant-tasks" {
		t.Fatalf("unexpected conflict detail %v", err)
	}
}

func TestCreateRequiresName(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateCategoryRequest{Name: "  "})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCreateSubcategoryRequiresBothNames(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateSubcategory(context.Background(), CreateSubcategoryRequest{CategoryName: "Accountant Tasks"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := verr.Fields["subcategory_name"]; !ok {
		t.Fatalf("expected subcategory_name to be flagged, got %v", verr.Fields)
	}
}

func TestPublishedEditRoutesToShadowDraft(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	created := mustCreate(t, svc, "Accountant Tasks")
	published := mustPublish(t, svc, created.ID)

	custom := "Custom title"
	shadow, err := svc.Update(ctx, UpdateCategoryRequest{
		ID:            published.ID,
		BaseUpdatedAt: published.UpdatedAt,
		FieldValues:   map[string]any{"heroTitle": custom},
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if shadow.ID == published.ID {
		t.Fatal("expected the edit to land in a new shadow record")
	}
	if shadow.Status != domain.StatusDraft {
		t.Fatalf("expected shadow draft, got %s", shadow.Status)
	}
	if shadow.OriginalCategoryID == nil || *shadow.OriginalCategoryID != published.ID {
		t.Fatalf("expected shadow to link the published record, got %v", shadow.OriginalCategoryID)
	}
	hero, _ := shadow.Fields.Get("heroTitle")
	if got, _ := hero.String(); got != custom {
		t.Fatalf("unexpected shadow heroTitle %q", got)
	}
	if !hero.IsOverridden() {
		t.Fatal("expected edited field to be OVERRIDDEN")
	}

	// The live record is untouched.
	live, err := repo.GetPublishedBySlug(ctx, "accountant-tasks")
	if err != nil {
		t.Fatalf("GetPublishedBySlug returned error: %v", err)
	}
	liveHero, _ := live.Fields.Get("heroTitle")
	if got, _ := liveHero.String(); got != "Accountant tasks near you" {
		t.Fatalf("expected published record unchanged, got %q", got)
	}
}

func TestConcurrentPublishedEditsShareOneShadow(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	created := mustCreate(t, svc, "Accountant Tasks")
	published := mustPublish(t, svc, created.ID)

	first, err := svc.Update(ctx, UpdateCategoryRequest{
		ID:            published.ID,
		BaseUpdatedAt: published.UpdatedAt,
		FieldValues:   map[string]any{"heroTitle": "First edit"},
	})
	if err != nil {
		t.Fatalf("first Update returned error: %v", err)
	}
	second, err := svc.Update(ctx, UpdateCategoryRequest{
		ID:            published.ID,
		BaseUpdatedAt: published.UpdatedAt,
		FieldValues:   map[string]any{"disclaimer": "Second edit"},
	})
	if err != nil {
		t.Fatalf("second Update returned error: %v", err)
	}
	if first.ID != second.ID {
		t.Fatal("expected both edits to land in the same shadow")
	}

	all, _ := repo.List(ctx)
	shadows := 0
	for _, rec := range all {
		if rec.IsShadow() {
			shadows++
		}
	}
	if shadows != 1 {
		t.Fatalf("expected exactly one shadow, got %d", shadows)
	}
}

func TestPublishShadowReplacesOriginalAtomically(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	created := mustCreate(t, svc, "Accountant Tasks")
	published := mustPublish(t, svc, created.ID)

	shadow, err := svc.Update(ctx, UpdateCategoryRequest{
		ID:            published.ID,
		BaseUpdatedAt: published.UpdatedAt,
		FieldValues:   map[string]any{"heroTitle": "Custom title"},
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	promoted := mustPublish(t, svc, shadow.ID)

	if promoted.Status != domain.StatusPublished {
		t.Fatalf("expected published, got %s", promoted.Status)
	}
	if promoted.OriginalCategoryID != nil {
		t.Fatal("expected shadow linkage to be cleared")
	}
	hero, _ := promoted.Fields.Get("heroTitle")
	if got, _ := hero.String(); got != "Custom title" {
		t.Fatalf("unexpected heroTitle %q", got)
	}

	// Exactly one record remains at the slug and it is published.
	if _, err := svc.Get(ctx, published.ID); !IsNotFound(err) {
		t.Fatalf("expected original to be gone, got %v", err)
	}
	live, err := svc.GetBySlug(ctx, "accountant-tasks")
	if err != nil {
		t.Fatalf("GetBySlug returned error: %v", err)
	}
	if live.ID != promoted.ID || live.Status != domain.StatusPublished {
		t.Fatalf("unexpected live record %+v", live)
	}
	all, _ := repo.List(ctx)
	if len(all) != 1 {
		t.Fatalf("expected one record after promote, got %d", len(all))
	}
}

func TestRenameRecomputesDerivedAndSubstitutesOverrides(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created := mustCreate(t, svc, "Accountant Tasks")

	custom := "Best accounting help in town"
	edited, err := svc.Update(ctx, UpdateCategoryRequest{
		ID:            created.ID,
		BaseUpdatedAt: created.UpdatedAt,
		FieldValues:   map[string]any{"heroDescription": custom},
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	newName := "Plumber Tasks"
	renamed, err := svc.Update(ctx, UpdateCategoryRequest{
		ID:            created.ID,
		BaseUpdatedAt: edited.UpdatedAt,
		Name:          &newName,
	})
	if err != nil {
		t.Fatalf("rename returned error: %v", err)
	}

	if renamed.Slug != "plumber-tasks" {
		t.Fatalf("expected slug to follow the name, got %q", renamed.Slug)
	}
	hero, _ := renamed.Fields.Get("heroTitle")
	if got, _ := hero.String(); got != "Plumber tasks near you" {
		t.Fatalf("expected derived field recompute, got %q", got)
	}
	desc, _ := renamed.Fields.Get("heroDescription")
	if got, _ := desc.String(); got != "Best Plumber help in town" {
		t.Fatalf("expected targeted substitution in override, got %q", got)
	}
	if !desc.IsOverridden() {
		t.Fatal("expected override provenance to survive rename")
	}
}

func TestExplicitSlugOverrideSurvivesRename(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created := mustCreate(t, svc, "Accountant Tasks")
	slug := "money-helpers"
	pinned, err := svc.Update(ctx, UpdateCategoryRequest{
		ID:            created.ID,
		BaseUpdatedAt: created.UpdatedAt,
		Slug:          &slug,
	})
	if err != nil {
		t.Fatalf("slug override returned error: %v", err)
	}
	if pinned.Slug != slug || pinned.SlugProvenance != domain.ProvenanceOverridden {
		t.Fatalf("expected pinned slug, got %q (%s)", pinned.Slug, pinned.SlugProvenance)
	}

	newName := "Plumber Tasks"
	renamed, err := svc.Update(ctx, UpdateCategoryRequest{
		ID:            created.ID,
		BaseUpdatedAt: pinned.UpdatedAt,
		Name:          &newName,
	})
	if err != nil {
		t.Fatalf("rename returned error: %v", err)
	}
	if renamed.Slug != slug {
		t.Fatalf("expected overridden slug to survive rename, got %q", renamed.Slug)
	}
}

func TestStaleUpdateFails(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created := mustCreate(t, svc, "Accountant Tasks")
	name := "Plumber Tasks"
	if _, err := svc.Update(ctx, UpdateCategoryRequest{
		ID:            created.ID,
		BaseUpdatedAt: created.UpdatedAt,
		Name:          &name,
	}); err != nil {
		t.Fatalf("first update returned error: %v", err)
	}

	other := "Gardener Tasks"
	_, err := svc.Update(ctx, UpdateCategoryRequest{
		ID:            created.ID,
		BaseUpdatedAt: created.UpdatedAt,
		Name:          &other,
	})
	if !errors.Is(err, ErrStaleWrite) {
		t.Fatalf("expected ErrStaleWrite, got %v", err)
	}
	var stale *StaleWriteError
	if !errors.As(err, &stale) || stale.ID != created.ID {
		t.Fatalf("unexpected stale detail %v", err)
	}
}

func TestRejectRequiresNotes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created := mustCreate(t, svc, "Accountant Tasks")
	if _, err := svc.SubmitForApproval(ctx, TransitionRequest{ID: created.ID}); err != nil {
		t.Fatalf("SubmitForApproval returned error: %v", err)
	}

	if _, err := svc.Reject(ctx, ReviewRequest{ID: created.ID, ReviewerID: uuid.New()}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty notes, got %v", err)
	}

	rejected, err := svc.Reject(ctx, ReviewRequest{ID: created.ID, ReviewerID: uuid.New(), Notes: "needs better copy"})
	if err != nil {
		t.Fatalf("Reject returned error: %v", err)
	}
	if rejected.Status != domain.StatusRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
	if rejected.ReviewNotes == nil || *rejected.ReviewNotes != "needs better copy" {
		t.Fatalf("expected review notes to be stored, got %v", rejected.ReviewNotes)
	}

	// Resubmission clears the notes.
	resubmitted, err := svc.SubmitForApproval(ctx, TransitionRequest{ID: created.ID})
	if err != nil {
		t.Fatalf("resubmit returned error: %v", err)
	}
	if resubmitted.ReviewNotes != nil {
		t.Fatalf("expected notes cleared on resubmission, got %v", resubmitted.ReviewNotes)
	}
}

func TestIllegalTransitionsSurface(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created := mustCreate(t, svc, "Accountant Tasks")

	if _, err := svc.Publish(ctx, TransitionRequest{ID: created.ID}); !errors.Is(err, lifecycle.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition for draft publish, got %v", err)
	}
	if _, err := svc.Approve(ctx, ReviewRequest{ID: created.ID, ReviewerID: uuid.New()}); !errors.Is(err, lifecycle.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition for draft approve, got %v", err)
	}
}

func TestUnpublishKeepsContent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created := mustCreate(t, svc, "Accountant Tasks")
	published := mustPublish(t, svc, created.ID)

	unpublished, err := svc.Unpublish(ctx, TransitionRequest{ID: published.ID})
	if err != nil {
		t.Fatalf("Unpublish returned error: %v", err)
	}
	if unpublished.Status != domain.StatusApproved {
		t.Fatalf("expected approved after unpublish, got %s", unpublished.Status)
	}
	hero, _ := unpublished.Fields.Get("heroTitle")
	if got, _ := hero.String(); got != "Accountant tasks near you" {
		t.Fatalf("expected content to survive unpublish, got %q", got)
	}
}

func TestDeleteShadowLeavesOriginal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created := mustCreate(t, svc, "Accountant Tasks")
	published := mustPublish(t, svc, created.ID)

	shadow, err := svc.Update(ctx, UpdateCategoryRequest{
		ID:            published.ID,
		BaseUpdatedAt: published.UpdatedAt,
		FieldValues:   map[string]any{"heroTitle": "Custom"},
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if err := svc.Delete(ctx, shadow.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	live, err := svc.GetPublishedBySlug(ctx, "accountant-tasks")
	if err != nil {
		t.Fatalf("expected original to survive, got %v", err)
	}
	if live.ID != published.ID {
		t.Fatalf("unexpected surviving record %s", live.ID)
	}
}

func TestCreateSubcategory(t *testing.T) {
	svc, _ := newTestService(t)

	record, err := svc.CreateSubcategory(context.Background(), CreateSubcategoryRequest{
		CategoryName:    "Accountant Tasks",
		SubcategoryName: "Financial Modelling",
		CreatedBy:       uuid.New(),
	})
	if err != nil {
		t.Fatalf("CreateSubcategory returned error: %v", err)
	}

	if record.Slug != "accountant-tasks/financial-modelling" {
		t.Fatalf("unexpected slug %q", record.Slug)
	}
	if record.CategorySlug == nil || *record.CategorySlug != "accountant-tasks" {
		t.Fatalf("unexpected category backlink %v", record.CategorySlug)
	}
	if !record.IsSubcategory() {
		t.Fatal("expected a subcategory record")
	}
	hero, _ := record.Fields.Get("heroTitle")
	if got, _ := hero.String(); got != "Financial Modelling tasks near you" {
		t.Fatalf("unexpected heroTitle %q", got)
	}
}

func TestGetBySlugValidatesWireFormat(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.GetBySlug(context.Background(), "Not A Slug"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	_, err := svc.GetBySlug(context.Background(), "missing-slug")
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListPending(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first := mustCreate(t, svc, "Accountant Tasks")
	mustCreate(t, svc, "Plumber Tasks")
	if _, err := svc.SubmitForApproval(ctx, TransitionRequest{ID: first.ID}); err != nil {
		t.Fatalf("SubmitForApproval returned error: %v", err)
	}

	pending, err := svc.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending returned error: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != first.ID {
		t.Fatalf("unexpected pending set %v", pending)
	}

	all, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll returned error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected two records, got %d", len(all))
	}
}
