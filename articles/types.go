package articles

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/extrahand/taskpages/domain"
)

// Article is an editorial article attached to a task category. Articles move
// through the same lifecycle as category pages; edits against a PUBLISHED
// article land in a shadow draft linked through OriginalArticleID.
type Article struct {
	bun.BaseModel `bun:"table:articles,alias:ar"`

	ID          uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Title       string    `bun:"title,notnull" json:"title"`
	Slug        string    `bun:"slug,notnull" json:"slug"`
	Description string    `bun:"description" json:"description"`
	// Content is the markdown source; RenderedHTML is derived from it on
	// every write.
	Content      string        `bun:"content" json:"content"`
	RenderedHTML string        `bun:"rendered_html" json:"renderedHtml"`
	Category     string        `bun:"category" json:"category"`
	Status       domain.Status `bun:"status,notnull" json:"status"`

	ReviewNotes *string    `bun:"review_notes" json:"reviewNotes,omitempty"`
	ReviewedBy  *uuid.UUID `bun:"reviewed_by,type:uuid" json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time `bun:"reviewed_at" json:"reviewedAt,omitempty"`

	OriginalArticleID *uuid.UUID `bun:"original_article_id,type:uuid" json:"originalArticleId,omitempty"`

	Views     int64     `bun:"views,notnull,default:0" json:"views"`
	CreatedBy uuid.UUID `bun:"created_by,type:uuid" json:"createdBy"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// IsShadow reports whether the article is an unpublished copy of a live one.
func (a *Article) IsShadow() bool {
	return a.OriginalArticleID != nil
}

func cloneArticle(a *Article) *Article {
	if a == nil {
		return nil
	}
	copied := *a
	copied.ReviewNotes = cloneStringPtr(a.ReviewNotes)
	copied.ReviewedBy = cloneUUIDPtr(a.ReviewedBy)
	if a.ReviewedAt != nil {
		at := *a.ReviewedAt
		copied.ReviewedAt = &at
	}
	copied.OriginalArticleID = cloneUUIDPtr(a.OriginalArticleID)
	return &copied
}

func cloneStringPtr(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}

func cloneUUIDPtr(v *uuid.UUID) *uuid.UUID {
	if v == nil {
		return nil
	}
	id := *v
	return &id
}
