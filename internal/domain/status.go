package domain

// Status represents editorial lifecycle states for content entities
type Status string

const (
	// StatusDraft indicates content still under preparation
	StatusDraft Status = "draft"
	// StatusPendingApproval marks content submitted for review
	StatusPendingApproval Status = "pending_approval"
	// StatusApproved marks reviewed content cleared for publishing
	StatusApproved Status = "approved"
	// StatusRejected marks content returned to its writer with notes
	StatusRejected Status = "rejected"
	// StatusPublished identifies content available to consumers
	StatusPublished Status = "published"
)
