// Package approval tracks submitted request bundles through the
// researcher → admin → director approval chain.
//
// A researcher submits a bundle, which starts at [StatusPendingAdmin]. The
// admin approves it on to [StatusPendingDirector], and the director gives the
// final [StatusApproved]. Either reviewer may reject it while it is their turn.
//
// Key types:
//   - [Chain] - Ordered approval steps and the transitions they allow
//   - [Store] - YAML-file record store with at-most-once submission
//   - [Record] - One submitted bundle with its status history
package approval

import (
	"errors"
	"fmt"
)

// Status is the approval state of a submitted bundle.
type Status string

// Approval statuses.
const (
	StatusPendingAdmin    Status = "pending-admin"
	StatusPendingDirector Status = "pending-director"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPendingAdmin, StatusPendingDirector, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsFinal reports whether no further transition is possible.
func (s Status) IsFinal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Role is a participant in the approval chain.
type Role string

// Roles.
const (
	RoleResearcher Role = "researcher"
	RoleAdmin      Role = "admin"
	RoleDirector   Role = "director"
)

// ParseRole converts a string to a [Role].
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleResearcher, RoleAdmin, RoleDirector:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Sentinel errors for approval transitions.
var (
	// ErrUnknownRole is returned for role names outside the chain.
	ErrUnknownRole = errors.New("unknown role")

	// ErrUnknownStatus is returned for status values the chain does not know.
	ErrUnknownStatus = errors.New("unknown status value")

	// ErrNotYourTurn is returned when a role acts on a bundle that is waiting
	// for someone else.
	ErrNotYourTurn = errors.New("not this role's turn")

	// ErrAlreadyFinal is returned when acting on an approved or rejected bundle.
	ErrAlreadyFinal = errors.New("submission already decided")
)

// chainStep is one reviewer stage of the chain.
type chainStep struct {
	Role   Role
	Status Status
	Next   Status
}

// Chain holds the ordered reviewer stages.
//
// Use [NewChain] for the default admin → director chain.
type Chain struct {
	steps []chainStep
}

// NewChain returns the default chain: the admin reviews first, then the director.
func NewChain() *Chain {
	return &Chain{
		steps: []chainStep{
			{Role: RoleAdmin, Status: StatusPendingAdmin, Next: StatusPendingDirector},
			{Role: RoleDirector, Status: StatusPendingDirector, Next: StatusApproved},
		},
	}
}

// Initial returns the status a new submission starts in.
func (c *Chain) Initial() Status {
	return c.steps[0].Status
}

// AwaitingRole returns the role whose turn it is for status s.
// The second result is false for final statuses.
func (c *Chain) AwaitingRole(s Status) (Role, bool) {
	for _, st := range c.steps {
		if st.Status == s {
			return st.Role, true
		}
	}
	return "", false
}

func (c *Chain) stepFor(s Status, role Role) (chainStep, error) {
	if !s.IsValid() {
		return chainStep{}, fmt.Errorf("%w: %s", ErrUnknownStatus, s)
	}
	if s.IsFinal() {
		return chainStep{}, fmt.Errorf("%w: %s", ErrAlreadyFinal, s)
	}
	for _, st := range c.steps {
		if st.Status != s {
			continue
		}
		if st.Role != role {
			return chainStep{}, fmt.Errorf("%w: %s is waiting for %s", ErrNotYourTurn, s, st.Role)
		}
		return st, nil
	}
	return chainStep{}, fmt.Errorf("%w: %s", ErrUnknownStatus, s)
}

// Approve returns the status after role approves a bundle in status s.
func (c *Chain) Approve(s Status, role Role) (Status, error) {
	st, err := c.stepFor(s, role)
	if err != nil {
		return s, err
	}
	return st.Next, nil
}

// Reject returns the status after role rejects a bundle in status s.
func (c *Chain) Reject(s Status, role Role) (Status, error) {
	if _, err := c.stepFor(s, role); err != nil {
		return s, err
	}
	return StatusRejected, nil
}
