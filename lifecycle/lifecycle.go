package lifecycle

import (
	"errors"
	"fmt"

	"github.com/extrahand/taskpages/internal/domain"
)

// Op is an editorial action that may move an entity between statuses.
type Op string

const (
	OpEdit      Op = "edit"
	OpSubmit    Op = "submit"
	OpApprove   Op = "approve"
	OpReject    Op = "reject"
	OpPublish   Op = "publish"
	OpUnpublish Op = "unpublish"
)

// ErrIllegalTransition indicates an operation attempted from a status that
// does not permit it.
var ErrIllegalTransition = errors.New("lifecycle: illegal transition")

// IllegalTransitionError reports the rejected operation and the status it
// was attempted from.
type IllegalTransitionError struct {
	From domain.Status
	Op   Op
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("lifecycle: cannot %s from %s", e.Op, e.From)
}

func (e *IllegalTransitionError) Unwrap() error {
	return ErrIllegalTransition
}

type transitionKey struct {
	from domain.Status
	op   Op
}

// Machine is the pure editorial state machine. It carries no entity state;
// shadow routing and persistence side effects belong to the service layer.
type Machine struct {
	transitions map[transitionKey]domain.Status
}

// New returns the machine with the standard editorial transition table.
func New() *Machine {
	m := &Machine{transitions: map[transitionKey]domain.Status{}}

	// edit keeps the entity in place for every pre-publish status. Editing
	// a published entity is legal but the write lands in a shadow draft.
	for _, status := range []domain.Status{
		domain.StatusDraft,
		domain.StatusRejected,
		domain.StatusPendingApproval,
		domain.StatusApproved,
	} {
		m.allow(status, OpEdit, status)
	}
	m.allow(domain.StatusPublished, OpEdit, domain.StatusDraft)

	m.allow(domain.StatusDraft, OpSubmit, domain.StatusPendingApproval)
	m.allow(domain.StatusRejected, OpSubmit, domain.StatusPendingApproval)
	m.allow(domain.StatusPendingApproval, OpApprove, domain.StatusApproved)
	m.allow(domain.StatusPendingApproval, OpReject, domain.StatusRejected)
	m.allow(domain.StatusApproved, OpPublish, domain.StatusPublished)
	m.allow(domain.StatusPublished, OpUnpublish, domain.StatusApproved)

	return m
}

func (m *Machine) allow(from domain.Status, op Op, to domain.Status) {
	m.transitions[transitionKey{from: from, op: op}] = to
}

// Next returns the status an operation moves an entity to.
func (m *Machine) Next(from domain.Status, op Op) (domain.Status, error) {
	to, ok := m.transitions[transitionKey{from: from, op: op}]
	if !ok {
		return "", &IllegalTransitionError{From: from, Op: op}
	}
	return to, nil
}

// Can reports whether an operation is legal from the given status.
func (m *Machine) Can(from domain.Status, op Op) bool {
	_, ok := m.transitions[transitionKey{from: from, op: op}]
	return ok
}

// IsShadowEdit reports whether an edit from this status must be routed
// into a shadow draft instead of the record itself.
func (m *Machine) IsShadowEdit(from domain.Status) bool {
	return from == domain.StatusPublished
}
