package domain

import internaldomain "github.com/extrahand/taskpages/internal/domain"

// Status represents lifecycle states for taskpages entities.
type Status = internaldomain.Status

// Provenance indicates whether a field value is derived or editor-overridden.
type Provenance = internaldomain.Provenance

const (
	// StatusDraft indicates content still under preparation.
	StatusDraft = internaldomain.StatusDraft
	// StatusPendingApproval marks content submitted for review.
	StatusPendingApproval = internaldomain.StatusPendingApproval
	// StatusApproved marks reviewed content cleared for publishing.
	StatusApproved = internaldomain.StatusApproved
	// StatusRejected marks content returned to its writer with notes.
	StatusRejected = internaldomain.StatusRejected
	// StatusPublished identifies content available to consumers.
	StatusPublished = internaldomain.StatusPublished

	// ProvenanceDerived marks a template-computed value.
	ProvenanceDerived = internaldomain.ProvenanceDerived
	// ProvenanceOverridden marks an editor-customized value.
	ProvenanceOverridden = internaldomain.ProvenanceOverridden
)
