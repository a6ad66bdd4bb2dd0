package categories

import (
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

var (
	ErrValidation          = errors.New("categories: validation failed")
	ErrNameRequired        = errors.New("categories: name is required")
	ErrCategoryIDRequired  = errors.New("categories: category id required")
	ErrBaseVersionRequired = errors.New("categories: base version required")
	ErrSlugInvalid         = errors.New("categories: slug contains invalid characters")
	ErrSlugConflict        = errors.New("categories: slug already exists")
	ErrStaleWrite          = errors.New("categories: base version mismatch")
	ErrNotFound            = errors.New("categories: not found")
	ErrReviewNotesRequired = errors.New("categories: review notes required")
	ErrNotShadow           = errors.New("categories: record is not a shadow draft")
)

// NotFoundError represents missing records from repository lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// SlugConflictError captures slug-namespace uniqueness violations.
type SlugConflictError struct {
	Slug string
}

func (e *SlugConflictError) Error() string {
	if e == nil || e.Slug == "" {
		return ErrSlugConflict.Error()
	}
	return fmt.Sprintf("%s: slug=%s", ErrSlugConflict.Error(), e.Slug)
}

func (e *SlugConflictError) Unwrap() error {
	return ErrSlugConflict
}

// StaleWriteError reports an optimistic-lock failure: the writer's base
// version no longer matches the stored record.
type StaleWriteError struct {
	ID            uuid.UUID
	BaseUpdatedAt time.Time
	UpdatedAt     time.Time
}

func (e *StaleWriteError) Error() string {
	if e == nil {
		return ErrStaleWrite.Error()
	}
	return fmt.Sprintf("%s: id=%s base=%s current=%s",
		ErrStaleWrite.Error(), e.ID, e.BaseUpdatedAt.Format(time.RFC3339Nano), e.UpdatedAt.Format(time.RFC3339Nano))
}

func (e *StaleWriteError) Unwrap() error {
	return ErrStaleWrite
}

// ValidationError carries per-field validation failures.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Fields.Error())
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func validationError(field string, err error) error {
	return &ValidationError{Fields: validation.Errors{field: err}}
}
