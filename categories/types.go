package categories

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/extrahand/taskpages/domain"
	"github.com/extrahand/taskpages/fields"
)

// CategoryPage is a marketplace category (or subcategory) page moving
// through the editorial lifecycle. A record with OriginalCategoryID set is
// a shadow draft staging changes against the published record it points at.
type CategoryPage struct {
	bun.BaseModel `bun:"table:task_categories,alias:tc" json:"-"`

	ID              uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name            string    `bun:"name,notnull" json:"name"`
	SubcategoryName *string   `bun:"subcategory_name" json:"subcategory_name,omitempty"`
	Slug            string    `bun:"slug,notnull" json:"slug"`
	CategorySlug    *string   `bun:"category_slug" json:"category_slug,omitempty"`
	Location        string    `bun:"location" json:"location,omitempty"`

	Fields         *fields.Map       `bun:"fields,type:jsonb" json:"fields"`
	SlugProvenance domain.Provenance `bun:"slug_provenance,notnull" json:"slug_provenance"`

	Status      domain.Status `bun:"status,notnull" json:"status"`
	ReviewNotes *string       `bun:"review_notes" json:"review_notes,omitempty"`
	ReviewedBy  *uuid.UUID    `bun:"reviewed_by,type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time    `bun:"reviewed_at" json:"reviewed_at,omitempty"`

	OriginalCategoryID *uuid.UUID `bun:"original_category_id,type:uuid" json:"original_category_id,omitempty"`

	CreatedBy uuid.UUID `bun:"created_by,type:uuid" json:"created_by"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`

	PublicURL string `bun:"-" json:"public_url,omitempty"`
}

// IsShadow reports whether the record stages changes for a published page.
func (c *CategoryPage) IsShadow() bool {
	return c != nil && c.OriginalCategoryID != nil
}

// IsSubcategory reports whether the record is nested under a parent
// category.
func (c *CategoryPage) IsSubcategory() bool {
	return c != nil && c.SubcategoryName != nil && *c.SubcategoryName != ""
}

func cloneCategory(src *CategoryPage) *CategoryPage {
	if src == nil {
		return nil
	}
	copied := *src
	copied.SubcategoryName = cloneStringPtr(src.SubcategoryName)
	copied.CategorySlug = cloneStringPtr(src.CategorySlug)
	copied.ReviewNotes = cloneStringPtr(src.ReviewNotes)
	copied.ReviewedBy = cloneUUIDPtr(src.ReviewedBy)
	copied.OriginalCategoryID = cloneUUIDPtr(src.OriginalCategoryID)
	if src.ReviewedAt != nil {
		at := *src.ReviewedAt
		copied.ReviewedAt = &at
	}
	copied.Fields = src.Fields.Clone()
	return &copied
}

func cloneStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}

func cloneUUIDPtr(src *uuid.UUID) *uuid.UUID {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}
