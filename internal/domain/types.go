package domain

import "strings"

// Provenance records whether a field value was produced by the derivation
// engine or supplied by an editor.
type Provenance string

const (
	// ProvenanceDerived marks a value computed from the entity name by a template.
	ProvenanceDerived Provenance = "derived"
	// ProvenanceOverridden marks a value an editor customized. Once set it is
	// never automatically reset to derived.
	ProvenanceOverridden Provenance = "overridden"
)

// NormalizeStatus coerces arbitrary status strings into a known representation.
// Unknown or empty inputs default to draft.
func NormalizeStatus(input string) Status {
	status := Status(strings.ToLower(strings.TrimSpace(input)))
	switch status {
	case StatusDraft,
		StatusPendingApproval,
		StatusApproved,
		StatusRejected,
		StatusPublished:
		return status
	default:
		return StatusDraft
	}
}

// ValidStatus reports whether the input names a known lifecycle state.
func ValidStatus(input string) bool {
	switch Status(strings.ToLower(strings.TrimSpace(input))) {
	case StatusDraft, StatusPendingApproval, StatusApproved, StatusRejected, StatusPublished:
		return true
	default:
		return false
	}
}

// NormalizeProvenance coerces provenance strings, defaulting to derived.
func NormalizeProvenance(input string) Provenance {
	if Provenance(strings.ToLower(strings.TrimSpace(input))) == ProvenanceOverridden {
		return ProvenanceOverridden
	}
	return ProvenanceDerived
}
