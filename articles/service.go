package articles

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/extrahand/taskpages/domain"
	"github.com/extrahand/taskpages/internal/logging"
	"github.com/extrahand/taskpages/lifecycle"
	"github.com/extrahand/taskpages/pkg/interfaces"
	"github.com/extrahand/taskpages/slugs"
)

// Service exposes the article editorial use-cases. Articles follow the same
// lifecycle as category pages; markdown rendering happens on every write so
// RenderedHTML always matches Content.
type Service interface {
	Create(ctx context.Context, req CreateArticleRequest) (*Article, error)
	ImportMarkdown(ctx context.Context, req ImportMarkdownRequest) (*Article, error)
	Update(ctx context.Context, req UpdateArticleRequest) (*Article, error)
	SubmitForApproval(ctx context.Context, req TransitionRequest) (*Article, error)
	Approve(ctx context.Context, req ReviewRequest) (*Article, error)
	Reject(ctx context.Context, req ReviewRequest) (*Article, error)
	Publish(ctx context.Context, req TransitionRequest) (*Article, error)
	Unpublish(ctx context.Context, req TransitionRequest) (*Article, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*Article, error)
	GetBySlug(ctx context.Context, slug string) (*Article, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*Article, error)
	RecordView(ctx context.Context, slug string) (*Article, error)
	ListPending(ctx context.Context) ([]*Article, error)
	ListAll(ctx context.Context) ([]*Article, error)
}

// CreateArticleRequest captures the information to create an article.
type CreateArticleRequest struct {
	Title       string
	Slug        string // optional explicit slug override
	Description string
	Category    string
	Content     string
	CreatedBy   uuid.UUID
}

// ImportMarkdownRequest creates an article from a markdown document with a
// front matter block.
type ImportMarkdownRequest struct {
	Source    []byte
	CreatedBy uuid.UUID
}

// UpdateArticleRequest mutates an article. BaseUpdatedAt is the version the
// editor based the edit on; a mismatch fails with StaleWriteError.
type UpdateArticleRequest struct {
	ID            uuid.UUID
	BaseUpdatedAt time.Time
	Title         *string
	Slug          *string
	Description   *string
	Category      *string
	Content       *string
	UpdatedBy     uuid.UUID
}

// TransitionRequest moves an article through the lifecycle. BaseUpdatedAt is
// optional; when zero the loaded version is used.
type TransitionRequest struct {
	ID            uuid.UUID
	BaseUpdatedAt time.Time
	ActorID       uuid.UUID
}

// ReviewRequest approves or rejects a pending article.
type ReviewRequest struct {
	ID            uuid.UUID
	BaseUpdatedAt time.Time
	ReviewerID    uuid.UUID
	Notes         string
}

// IDGenerator produces identifiers for new records.
type IDGenerator func() uuid.UUID

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderer replaces the markdown renderer.
func WithRenderer(renderer *Renderer) ServiceOption {
	return func(s *service) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

// WithSlugGenerator replaces the slug generator.
func WithSlugGenerator(generator *slugs.Generator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.slugs = generator
		}
	}
}

// WithLifecycle replaces the editorial state machine.
func WithLifecycle(machine *lifecycle.Machine) ServiceOption {
	return func(s *service) {
		if machine != nil {
			s.machine = machine
		}
	}
}

type service struct {
	repo     Repository
	machine  *lifecycle.Machine
	renderer *Renderer
	slugs    *slugs.Generator
	logger   interfaces.Logger
	now      func() time.Time
	id       IDGenerator
}

// NewService constructs an article service backed by the supplied store.
func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:     repo,
		machine:  lifecycle.New(),
		renderer: NewRenderer(),
		slugs:    slugs.NewGenerator(),
		logger:   logging.NoOp(),
		now:      time.Now,
		id:       uuid.New,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Create registers a new article in DRAFT.
func (s *service) Create(ctx context.Context, req CreateArticleRequest) (*Article, error) {
	errs := validation.Errors{
		"title": validation.Validate(strings.TrimSpace(req.Title), validation.Required),
	}
	if err := errs.Filter(); err != nil {
		return nil, &ValidationError{Fields: err.(validation.Errors)}
	}

	record := &Article{
		ID:          s.id(),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Content:     req.Content,
		Status:      domain.StatusDraft,
		CreatedBy:   req.CreatedBy,
	}

	if explicit := strings.TrimSpace(req.Slug); explicit != "" {
		if !slugs.IsValid(explicit) {
			return nil, validationError("slug", validation.NewError("validation_slug", ErrSlugInvalid.Error()))
		}
		record.Slug = explicit
	} else {
		derived, err := s.slugs.Slugify(record.Title)
		if err != nil {
			return nil, validationError("title", validation.NewError("validation_title", err.Error()))
		}
		record.Slug = derived
	}

	rendered, err := s.renderer.Render(record.Content)
	if err != nil {
		return nil, err
	}
	record.RenderedHTML = rendered

	now := s.now()
	record.CreatedAt = now
	record.UpdatedAt = now

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Info("articles.create", "id", created.ID.String(), "slug", created.Slug)
	return created, nil
}

// ImportMarkdown creates an article from a markdown document. The front
// matter supplies title, slug, description, and category; the body becomes
// the article content.
func (s *service) ImportMarkdown(ctx context.Context, req ImportMarkdownRequest) (*Article, error) {
	meta, body, err := ParseDocument(req.Source)
	if err != nil {
		return nil, validationError("source", validation.NewError("validation_markdown", err.Error()))
	}
	return s.Create(ctx, CreateArticleRequest{
		Title:       meta.Title,
		Slug:        meta.Slug,
		Description: meta.Description,
		Category:    meta.Category,
		Content:     body,
		CreatedBy:   req.CreatedBy,
	})
}

// Update mutates an article, re-rendering the HTML when the content changes.
// Edits against a PUBLISHED article are routed into its shadow draft.
func (s *service) Update(ctx context.Context, req UpdateArticleRequest) (*Article, error) {
	if req.ID == uuid.Nil {
		return nil, ErrArticleIDRequired
	}
	if req.BaseUpdatedAt.IsZero() {
		return nil, ErrBaseVersionRequired
	}

	record, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if !record.UpdatedAt.Equal(req.BaseUpdatedAt) {
		return nil, &StaleWriteError{ID: record.ID, BaseUpdatedAt: req.BaseUpdatedAt, UpdatedAt: record.UpdatedAt}
	}
	if _, err := s.machine.Next(record.Status, lifecycle.OpEdit); err != nil {
		return nil, err
	}

	now := s.now()

	if s.machine.IsShadowEdit(record.Status) {
		shadow, err := s.repo.CreateOrUpdateShadow(ctx, record.ID, func(existing *Article) (*Article, error) {
			target := existing
			if target == nil {
				target = cloneArticle(record)
				target.ID = s.id()
				target.Status = domain.StatusDraft
				target.OriginalArticleID = &record.ID
				target.ReviewNotes = nil
				target.ReviewedBy = nil
				target.ReviewedAt = nil
				target.CreatedBy = req.UpdatedBy
				target.CreatedAt = now
			}
			if err := s.applyEdit(target, req); err != nil {
				return nil, err
			}
			target.UpdatedAt = now
			return target, nil
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info("articles.update_shadow", "id", shadow.ID.String(), "original_id", record.ID.String())
		return shadow, nil
	}

	if err := s.applyEdit(record, req); err != nil {
		return nil, err
	}
	record.UpdatedAt = now

	updated, err := s.repo.Update(ctx, record, req.BaseUpdatedAt)
	if err != nil {
		return nil, err
	}
	s.logger.Info("articles.update", "id", updated.ID.String(), "slug", updated.Slug)
	return updated, nil
}

func (s *service) applyEdit(target *Article, req UpdateArticleRequest) error {
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return validationError("title", validation.NewError("validation_required", "cannot be blank"))
		}
		target.Title = title
	}
	if req.Slug != nil {
		explicit := strings.TrimSpace(*req.Slug)
		if !slugs.IsValid(explicit) {
			return validationError("slug", validation.NewError("validation_slug", ErrSlugInvalid.Error()))
		}
		target.Slug = explicit
	}
	if req.Description != nil {
		target.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		target.Category = strings.TrimSpace(*req.Category)
	}
	if req.Content != nil {
		target.Content = *req.Content
		rendered, err := s.renderer.Render(target.Content)
		if err != nil {
			return err
		}
		target.RenderedHTML = rendered
	}
	return nil
}

// SubmitForApproval moves a draft or rejected article into review.
func (s *service) SubmitForApproval(ctx context.Context, req TransitionRequest) (*Article, error) {
	return s.transition(ctx, req, lifecycle.OpSubmit, func(record *Article) error {
		record.ReviewNotes = nil
		return nil
	})
}

// Approve marks a pending article approved and records the reviewer.
func (s *service) Approve(ctx context.Context, req ReviewRequest) (*Article, error) {
	return s.transition(ctx, TransitionRequest{ID: req.ID, BaseUpdatedAt: req.BaseUpdatedAt, ActorID: req.ReviewerID}, lifecycle.OpApprove, func(record *Article) error {
		now := s.now()
		record.ReviewedBy = &req.ReviewerID
		record.ReviewedAt = &now
		if notes := strings.TrimSpace(req.Notes); notes != "" {
			record.ReviewNotes = &notes
		}
		return nil
	})
}

// Reject returns a pending article to the writer; notes are mandatory.
func (s *service) Reject(ctx context.Context, req ReviewRequest) (*Article, error) {
	notes := strings.TrimSpace(req.Notes)
	if notes == "" {
		return nil, validationError("review_notes", validation.NewError("validation_required", ErrReviewNotesRequired.Error()))
	}
	return s.transition(ctx, TransitionRequest{ID: req.ID, BaseUpdatedAt: req.BaseUpdatedAt, ActorID: req.ReviewerID}, lifecycle.OpReject, func(record *Article) error {
		now := s.now()
		record.ReviewNotes = &notes
		record.ReviewedBy = &req.ReviewerID
		record.ReviewedAt = &now
		return nil
	})
}

// Publish makes an approved article live. Publishing a shadow atomically
// replaces the original published article.
func (s *service) Publish(ctx context.Context, req TransitionRequest) (*Article, error) {
	if req.ID == uuid.Nil {
		return nil, ErrArticleIDRequired
	}
	record, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if !req.BaseUpdatedAt.IsZero() && !record.UpdatedAt.Equal(req.BaseUpdatedAt) {
		return nil, &StaleWriteError{ID: record.ID, BaseUpdatedAt: req.BaseUpdatedAt, UpdatedAt: record.UpdatedAt}
	}
	if _, err := s.machine.Next(record.Status, lifecycle.OpPublish); err != nil {
		return nil, err
	}

	now := s.now()
	if record.IsShadow() {
		promoted, err := s.repo.PromoteShadow(ctx, record.ID, now)
		if err != nil {
			return nil, err
		}
		s.logger.Info("articles.publish_shadow", "id", promoted.ID.String(), "slug", promoted.Slug)
		return promoted, nil
	}

	record.Status = domain.StatusPublished
	base := record.UpdatedAt
	record.UpdatedAt = now
	updated, err := s.repo.Update(ctx, record, base)
	if err != nil {
		return nil, err
	}
	s.logger.Info("articles.publish", "id", updated.ID.String(), "slug", updated.Slug)
	return updated, nil
}

// Unpublish takes a live article down to APPROVED.
func (s *service) Unpublish(ctx context.Context, req TransitionRequest) (*Article, error) {
	return s.transition(ctx, req, lifecycle.OpUnpublish, nil)
}

// Delete removes an article. Deleting a shadow leaves its original intact.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrArticleIDRequired
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("articles.delete", "id", id.String())
	return nil
}

// Get fetches an article by identifier.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*Article, error) {
	return s.repo.GetByID(ctx, id)
}

// GetBySlug fetches the non-shadow article at slug.
func (s *service) GetBySlug(ctx context.Context, slug string) (*Article, error) {
	if !slugs.IsValid(slug) {
		return nil, validationError("slug", validation.NewError("validation_slug", ErrSlugInvalid.Error()))
	}
	return s.repo.GetBySlug(ctx, slug)
}

// GetPublishedBySlug fetches the live article at slug.
func (s *service) GetPublishedBySlug(ctx context.Context, slug string) (*Article, error) {
	if !slugs.IsValid(slug) {
		return nil, validationError("slug", validation.NewError("validation_slug", ErrSlugInvalid.Error()))
	}
	return s.repo.GetPublishedBySlug(ctx, slug)
}

// RecordView fetches the live article at slug and bumps its view counter.
// The counter is not part of the CAS version, so reads never conflict with
// concurrent edits.
func (s *service) RecordView(ctx context.Context, slug string) (*Article, error) {
	record, err := s.GetPublishedBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.repo.IncrementViews(ctx, record.ID); err != nil {
		return nil, err
	}
	record.Views++
	return record, nil
}

// ListPending returns every article waiting for review.
func (s *service) ListPending(ctx context.Context) ([]*Article, error) {
	return s.repo.ListByStatus(ctx, domain.StatusPendingApproval)
}

// ListAll returns every article.
func (s *service) ListAll(ctx context.Context) ([]*Article, error) {
	return s.repo.List(ctx)
}

func (s *service) transition(ctx context.Context, req TransitionRequest, op lifecycle.Op, mutate func(*Article) error) (*Article, error) {
	if req.ID == uuid.Nil {
		return nil, ErrArticleIDRequired
	}
	record, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if !req.BaseUpdatedAt.IsZero() && !record.UpdatedAt.Equal(req.BaseUpdatedAt) {
		return nil, &StaleWriteError{ID: record.ID, BaseUpdatedAt: req.BaseUpdatedAt, UpdatedAt: record.UpdatedAt}
	}

	next, err := s.machine.Next(record.Status, op)
	if err != nil {
		return nil, err
	}
	record.Status = next
	if mutate != nil {
		if err := mutate(record); err != nil {
			return nil, err
		}
	}

	base := record.UpdatedAt
	record.UpdatedAt = s.now()
	updated, err := s.repo.Update(ctx, record, base)
	if err != nil {
		return nil, err
	}
	s.logger.Info("articles.transition", "op", string(op), "id", updated.ID.String(), "status", string(updated.Status))
	return updated, nil
}
