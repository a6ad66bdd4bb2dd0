package categories

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/extrahand/taskpages/derive"
	"github.com/extrahand/taskpages/domain"
	"github.com/extrahand/taskpages/fields"
	"github.com/extrahand/taskpages/internal/logging"
	"github.com/extrahand/taskpages/lifecycle"
	"github.com/extrahand/taskpages/pkg/interfaces"
	"github.com/extrahand/taskpages/slugs"
)

// Service exposes the category page editorial use-cases.
type Service interface {
	Create(ctx context.Context, req CreateCategoryRequest) (*CategoryPage, error)
	CreateSubcategory(ctx context.Context, req CreateSubcategoryRequest) (*CategoryPage, error)
	Update(ctx context.Context, req UpdateCategoryRequest) (*CategoryPage, error)
	SubmitForApproval(ctx context.Context, req TransitionRequest) (*CategoryPage, error)
	Approve(ctx context.Context, req ReviewRequest) (*CategoryPage, error)
	Reject(ctx context.Context, req ReviewRequest) (*CategoryPage, error)
	Publish(ctx context.Context, req TransitionRequest) (*CategoryPage, error)
	Unpublish(ctx context.Context, req TransitionRequest) (*CategoryPage, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*CategoryPage, error)
	GetBySlug(ctx context.Context, slug string) (*CategoryPage, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*CategoryPage, error)
	ListPending(ctx context.Context) ([]*CategoryPage, error)
	ListAll(ctx context.Context) ([]*CategoryPage, error)
}

// CreateCategoryRequest captures the information to create a top-level
// category page.
type CreateCategoryRequest struct {
	Name           string
	Location       string
	Slug           string // optional explicit slug override
	FieldOverrides map[string]any
	CreatedBy      uuid.UUID
}

// CreateSubcategoryRequest creates a page nested under a parent category.
type CreateSubcategoryRequest struct {
	CategoryName    string
	SubcategoryName string
	Location        string
	FieldOverrides  map[string]any
	CreatedBy       uuid.UUID
}

// UpdateCategoryRequest mutates a page. BaseUpdatedAt is the version the
// editor based the edit on; a mismatch fails with StaleWriteError.
type UpdateCategoryRequest struct {
	ID              uuid.UUID
	BaseUpdatedAt   time.Time
	Name            *string
	SubcategoryName *string
	Location        *string
	Slug            *string // explicit slug override; flips slug provenance
	FieldValues     map[string]any
	UpdatedBy       uuid.UUID
}

// TransitionRequest moves a page through the lifecycle. BaseUpdatedAt is
// optional; when zero the loaded version is used.
type TransitionRequest struct {
	ID            uuid.UUID
	BaseUpdatedAt time.Time
	ActorID       uuid.UUID
}

// ReviewRequest approves or rejects a pending page.
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

// WithDerivationEngine replaces the field derivation engine.
func WithDerivationEngine(engine *derive.Engine) ServiceOption {
	return func(s *service) {
		if engine != nil {
			s.engine = engine
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

// WithResolver replaces the subcategory resolver.
func WithResolver(resolver *slugs.Resolver) ServiceOption {
	return func(s *service) {
		if resolver != nil {
			s.resolver = resolver
		}
	}
}

// WithURLResolver attaches a public URL resolver.
func WithURLResolver(resolver URLResolver) ServiceOption {
	return func(s *service) {
		if resolver != nil {
			s.urls = resolver
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

// WithDefaultLocation sets the location applied to new pages that do not
// carry one.
func WithDefaultLocation(location string) ServiceOption {
	return func(s *service) {
		s.defaultLocation = strings.TrimSpace(location)
	}
}

// service implements Service.
type service struct {
	repo     Repository
	machine  *lifecycle.Machine
	engine   *derive.Engine
	slugs    *slugs.Generator
	resolver *slugs.Resolver
	urls     URLResolver
	logger   interfaces.Logger
	now      func() time.Time
	id       IDGenerator

	defaultLocation string
}

// NewService constructs a category service backed by the supplied store.
func NewService(repo Repository, opts ...ServiceOption) Service {
	generator := slugs.NewGenerator()
	engine, err := derive.New(derive.DefaultSpec(), derive.DefaultSynonyms())
	if err != nil {
		// The default spec and synonyms are static and validated by tests.
		panic(err)
	}

	s := &service{
		repo:     repo,
		machine:  lifecycle.New(),
		engine:   engine,
		slugs:    generator,
		resolver: slugs.NewResolver(generator),
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

// Create registers a new top-level category page in DRAFT.
func (s *service) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryPage, error) {
	errs := validation.Errors{
		"name": validation.Validate(strings.TrimSpace(req.Name), validation.Required),
	}
	if err := errs.Filter(); err != nil {
		return nil, &ValidationError{Fields: err.(validation.Errors)}
	}

	resolution, err := s.resolver.Resolve(req.Name, "")
	if err != nil {
		return nil, validationError("name", validation.NewError("validation_name", err.Error()))
	}

	record := &CategoryPage{
		ID:             s.id(),
		Name:           strings.TrimSpace(req.Name),
		Slug:           resolution.Slug,
		Location:       s.location(req.Location),
		SlugProvenance: domain.ProvenanceDerived,
		Status:         domain.StatusDraft,
		CreatedBy:      req.CreatedBy,
	}
	if explicit := strings.TrimSpace(req.Slug); explicit != "" {
		if !slugs.IsValid(explicit) {
			return nil, validationError("slug", validation.NewError("validation_slug", ErrSlugInvalid.Error()))
		}
		record.Slug = explicit
		record.SlugProvenance = domain.ProvenanceOverridden
	}

	tmplCtx := s.templateContext(record)
	record.Fields = fields.NewMap()
	s.engine.Initialize(record.Fields, tmplCtx)
	for path, value := range req.FieldOverrides {
		s.engine.Override(record.Fields, path, value, tmplCtx)
	}
	if err := ValidateFields(record.Fields); err != nil {
		return nil, err
	}

	now := s.now()
	record.CreatedAt = now
	record.UpdatedAt = now

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Info("categories.create", "id", created.ID.String(), "slug", created.Slug)
	return s.decorate(created), nil
}

// CreateSubcategory registers a page nested under a parent category. The
// derivation runs with the parent as baseline and the subcategory name as
// substitution target.
func (s *service) CreateSubcategory(ctx context.Context, req CreateSubcategoryRequest) (*CategoryPage, error) {
	errs := validation.Errors{
		"category_name":    validation.Validate(strings.TrimSpace(req.CategoryName), validation.Required),
		"subcategory_name": validation.Validate(strings.TrimSpace(req.SubcategoryName), validation.Required),
	}
	if err := errs.Filter(); err != nil {
		return nil, &ValidationError{Fields: err.(validation.Errors)}
	}

	resolution, err := s.resolver.Resolve(req.CategoryName, req.SubcategoryName)
	if err != nil {
		return nil, validationError("subcategory_name", validation.NewError("validation_name", err.Error()))
	}

	subName := strings.TrimSpace(req.SubcategoryName)
	record := &CategoryPage{
		ID:              s.id(),
		Name:            strings.TrimSpace(req.CategoryName),
		SubcategoryName: &subName,
		Slug:            resolution.Slug,
		CategorySlug:    &resolution.CategorySlug,
		Location:        s.location(req.Location),
		SlugProvenance:  domain.ProvenanceDerived,
		Status:          domain.StatusDraft,
		CreatedBy:       req.CreatedBy,
	}

	parentCtx := derive.TemplateContext{
		Name:     record.Name,
		BaseName: s.slugs.BaseName(record.Name),
		Location: record.Location,
	}
	subCtx := s.templateContext(record)

	record.Fields = fields.NewMap()
	s.engine.Initialize(record.Fields, parentCtx)
	s.engine.ApplySubcategory(record.Fields, parentCtx, subCtx)
	for path, value := range req.FieldOverrides {
		s.engine.Override(record.Fields, path, value, subCtx)
	}
	if err := ValidateFields(record.Fields); err != nil {
		return nil, err
	}

	now := s.now()
	record.CreatedAt = now
	record.UpdatedAt = now

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Info("categories.create_subcategory", "id", created.ID.String(), "slug", created.Slug, "custom", resolution.IsCustom)
	return s.decorate(created), nil
}

// Update mutates a page, re-running derivation. Edits against a PUBLISHED
// page are routed into its shadow draft instead of the live record.
func (s *service) Update(ctx context.Context, req UpdateCategoryRequest) (*CategoryPage, error) {
	if req.ID == uuid.Nil {
		return nil, ErrCategoryIDRequired
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
		shadow, err := s.repo.CreateOrUpdateShadow(ctx, record.ID, func(existing *CategoryPage) (*CategoryPage, error) {
			target := existing
			if target == nil {
				target = cloneCategory(record)
				target.ID = s.id()
				target.Status = domain.StatusDraft
				target.OriginalCategoryID = &record.ID
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
		s.logger.Info("categories.update_shadow", "id", shadow.ID.String(), "original_id", record.ID.String())
		return s.decorate(shadow), nil
	}

	if err := s.applyEdit(record, req); err != nil {
		return nil, err
	}
	record.UpdatedAt = now

	updated, err := s.repo.Update(ctx, record, req.BaseUpdatedAt)
	if err != nil {
		return nil, err
	}
	s.logger.Info("categories.update", "id", updated.ID.String(), "slug", updated.Slug)
	return s.decorate(updated), nil
}

// applyEdit mutates target in place: name/location changes re-run slug and
// field derivation, explicit slug and field values become overrides.
func (s *service) applyEdit(target *CategoryPage, req UpdateCategoryRequest) error {
	oldCtx := s.templateContext(target)

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return validationError("name", validation.NewError("validation_required", "cannot be blank"))
		}
		target.Name = name
	}
	if req.SubcategoryName != nil {
		sub := strings.TrimSpace(*req.SubcategoryName)
		if sub == "" {
			target.SubcategoryName = nil
		} else {
			target.SubcategoryName = &sub
		}
	}
	if req.Location != nil {
		target.Location = strings.TrimSpace(*req.Location)
	}

	newCtx := s.templateContext(target)
	nameChanged := oldCtx.Name != newCtx.Name || oldCtx.Location != newCtx.Location

	switch {
	case req.Slug != nil:
		explicit := strings.TrimSpace(*req.Slug)
		if !slugs.IsValid(explicit) {
			return validationError("slug", validation.NewError("validation_slug", ErrSlugInvalid.Error()))
		}
		target.Slug = explicit
		target.SlugProvenance = domain.ProvenanceOverridden
	case nameChanged && target.SlugProvenance == domain.ProvenanceDerived:
		sub := ""
		if target.SubcategoryName != nil {
			sub = *target.SubcategoryName
		}
		resolution, err := s.resolver.Resolve(target.Name, sub)
		if err != nil {
			return validationError("name", validation.NewError("validation_name", err.Error()))
		}
		target.Slug = resolution.Slug
		if resolution.IsSubcategory {
			target.CategorySlug = &resolution.CategorySlug
		} else {
			target.CategorySlug = nil
		}
	}

	if target.Fields == nil {
		target.Fields = fields.NewMap()
	}
	if nameChanged {
		s.engine.ApplyNameChange(target.Fields, oldCtx, newCtx)
	}
	for path, value := range req.FieldValues {
		s.engine.Override(target.Fields, path, value, newCtx)
	}
	return ValidateFields(target.Fields)
}

// SubmitForApproval moves a draft or rejected page into review and clears
// prior review notes.
func (s *service) SubmitForApproval(ctx context.Context, req TransitionRequest) (*CategoryPage, error) {
	return s.transition(ctx, req, lifecycle.OpSubmit, func(record *CategoryPage) error {
		record.ReviewNotes = nil
		return nil
	})
}

// Approve marks a pending page approved and records the reviewer.
func (s *service) Approve(ctx context.Context, req ReviewRequest) (*CategoryPage, error) {
	return s.transition(ctx, TransitionRequest{ID: req.ID, BaseUpdatedAt: req.BaseUpdatedAt, ActorID: req.ReviewerID}, lifecycle.OpApprove, func(record *CategoryPage) error {
		now := s.now()
		record.ReviewedBy = &req.ReviewerID
		record.ReviewedAt = &now
		if notes := strings.TrimSpace(req.Notes); notes != "" {
			record.ReviewNotes = &notes
		}
		return nil
	})
}

// Reject returns a pending page to the writer; notes are mandatory.
func (s *service) Reject(ctx context.Context, req ReviewRequest) (*CategoryPage, error) {
	notes := strings.TrimSpace(req.Notes)
	if notes == "" {
		return nil, validationError("review_notes", validation.NewError("validation_required", ErrReviewNotesRequired.Error()))
	}
	return s.transition(ctx, TransitionRequest{ID: req.ID, BaseUpdatedAt: req.BaseUpdatedAt, ActorID: req.ReviewerID}, lifecycle.OpReject, func(record *CategoryPage) error {
		now := s.now()
		record.ReviewNotes = &notes
		record.ReviewedBy = &req.ReviewerID
		record.ReviewedAt = &now
		return nil
	})
}

// Publish makes an approved page live. Publishing a shadow atomically
// replaces the original published record.
func (s *service) Publish(ctx context.Context, req TransitionRequest) (*CategoryPage, error) {
	if req.ID == uuid.Nil {
		return nil, ErrCategoryIDRequired
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
		s.logger.Info("categories.publish_shadow", "id", promoted.ID.String(), "slug", promoted.Slug)
		return s.decorate(promoted), nil
	}

	record.Status = domain.StatusPublished
	base := record.UpdatedAt
	record.UpdatedAt = now
	updated, err := s.repo.Update(ctx, record, base)
	if err != nil {
		return nil, err
	}
	s.logger.Info("categories.publish", "id", updated.ID.String(), "slug", updated.Slug)
	return s.decorate(updated), nil
}

// Unpublish takes a live page down to APPROVED; content is kept.
func (s *service) Unpublish(ctx context.Context, req TransitionRequest) (*CategoryPage, error) {
	return s.transition(ctx, req, lifecycle.OpUnpublish, nil)
}

// Delete removes a page. Deleting a shadow leaves its original published
// record untouched.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrCategoryIDRequired
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("categories.delete", "id", id.String())
	return nil
}

// Get fetches a page by identifier.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*CategoryPage, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decorate(record), nil
}

// GetBySlug fetches the non-shadow page at slug.
func (s *service) GetBySlug(ctx context.Context, slug string) (*CategoryPage, error) {
	if !slugs.IsValid(slug) {
		return nil, validationError("slug", validation.NewError("validation_slug", ErrSlugInvalid.Error()))
	}
	record, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.decorate(record), nil
}

// GetPublishedBySlug fetches the live page at slug.
func (s *service) GetPublishedBySlug(ctx context.Context, slug string) (*CategoryPage, error) {
	if !slugs.IsValid(slug) {
		return nil, validationError("slug", validation.NewError("validation_slug", ErrSlugInvalid.Error()))
	}
	record, err := s.repo.GetPublishedBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.decorate(record), nil
}

// ListPending returns every page waiting for review.
func (s *service) ListPending(ctx context.Context) ([]*CategoryPage, error) {
	records, err := s.repo.ListByStatus(ctx, domain.StatusPendingApproval)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		s.decorate(record)
	}
	return records, nil
}

// ListAll returns every page.
func (s *service) ListAll(ctx context.Context) ([]*CategoryPage, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		s.decorate(record)
	}
	return records, nil
}

func (s *service) transition(ctx context.Context, req TransitionRequest, op lifecycle.Op, mutate func(*CategoryPage) error) (*CategoryPage, error) {
	if req.ID == uuid.Nil {
		return nil, ErrCategoryIDRequired
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
	s.logger.Info("categories.transition", "op", string(op), "id", updated.ID.String(), "status", string(updated.Status))
	return s.decorate(updated), nil
}

func (s *service) location(requested string) string {
	if loc := strings.TrimSpace(requested); loc != "" {
		return loc
	}
	return s.defaultLocation
}

func (s *service) templateContext(record *CategoryPage) derive.TemplateContext {
	name := record.Name
	if record.IsSubcategory() {
		name = *record.SubcategoryName
	}
	return derive.TemplateContext{
		Name:     name,
		BaseName: s.slugs.BaseName(name),
		Location: record.Location,
	}
}

func (s *service) decorate(record *CategoryPage) *CategoryPage {
	if record == nil {
		return nil
	}
	if s.urls != nil {
		if url, err := s.urls.PublicURL(record.Slug); err == nil {
			record.PublicURL = url
		} else {
			s.logger.Warn("categories.public_url", "slug", record.Slug, "error", err.Error())
		}
	}
	return record
}

// IsNotFound reports whether err represents a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
