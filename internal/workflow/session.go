// Package workflow implements the request wizard engine.
//
// A [Session] walks one [registry.Path] step by step. It records which steps
// were completed or skipped, the form data captured for each document kind,
// and the answers given at decision steps. Navigation follows the rules in
// [Session.GoToNextStep] and [Session.GoToPreviousStep]; the finished bundle
// is read with [Session.BundleDocuments].
//
// Key types:
//   - [Session] - Mutable wizard state plus all navigation operations
//   - [StepState] - Per-step status (pending, completed, skipped)
//   - [Advance] - Description of what a navigation call did
//   - [BundleDocument] - One entry of the assembled bundle
//
// A Session is owned by a single caller and is not safe for concurrent use.
// Servers keep one Session per session key and serialize access themselves.
package workflow

import (
	"errors"
	"fmt"
	"math"

	"rscapproval/internal/registry"
)

// Sentinel errors for session operations.
var (
	// ErrNotInitialized is returned by operations that need a selected path.
	ErrNotInitialized = errors.New("workflow not initialized")

	// ErrUnknownOption is returned when a decision answer matches no option.
	ErrUnknownOption = errors.New("unknown decision option")

	// ErrUnknownTarget is returned when a jump option names a step that is not
	// in the current path. The session is left unchanged.
	ErrUnknownTarget = errors.New("unknown target step")

	// ErrUnknownDocument is returned when form data is saved under a kind the
	// session does not store as form data.
	ErrUnknownDocument = errors.New("unknown document kind")
)

// StepState is the navigation status of one step.
type StepState int

// Step states.
const (
	StatePending StepState = iota
	StateCompleted
	StateSkipped
)

// String returns the lowercase state name.
func (s StepState) String() string {
	switch s {
	case StateCompleted:
		return "completed"
	case StateSkipped:
		return "skipped"
	default:
		return "pending"
	}
}

// FormData is the captured content of one request form.
//
// The engine does not inspect it; validation belongs to the form collector.
type FormData map[string]any

// FileMeta describes one uploaded attachment.
type FileMeta struct {
	Name        string `yaml:"name" json:"name"`
	Size        int64  `yaml:"size,omitempty" json:"size,omitempty"`
	ContentType string `yaml:"content_type,omitempty" json:"content_type,omitempty"`
}

// Attachments holds the two optional attachment slots of the attachments step.
type Attachments struct {
	ExpenseForm  *FileMeta `yaml:"expense_form,omitempty" json:"expense_form,omitempty"`
	ScheduleForm *FileMeta `yaml:"schedule_form,omitempty" json:"schedule_form,omitempty"`
}

// formDocuments are the document kinds stored through SaveFormData.
var formDocuments = map[registry.DocumentKind]bool{
	registry.DocProject:    true,
	registry.DocLoan:       true,
	registry.DocCar:        true,
	registry.DocConference: true,
	registry.DocTravel:     true,
}

// Session is the mutable state of one wizard run.
//
// Use [NewSession] and then [Session.InitWorkflow]. The zero value is not
// usable because it has no registry.
type Session struct {
	reg *registry.Registry

	path   *registry.Path
	index  int
	states []StepState

	forms       map[registry.DocumentKind]FormData
	attachments *Attachments
	decisions   map[string]string
}

// NewSession creates an uninitialized session backed by reg.
func NewSession(reg *registry.Registry) *Session {
	return &Session{reg: reg}
}

// Registry returns the registry the session resolves paths and decisions in.
func (s *Session) Registry() *registry.Registry {
	return s.reg
}

// InitWorkflow selects a path and resets every collection.
//
// Returns [registry.ErrUnknownPath] if no such path exists, in which case the
// session is left as it was. Calling InitWorkflow again always starts from a
// clean slate.
func (s *Session) InitWorkflow(pathID string) error {
	p, err := s.reg.GetPath(pathID)
	if err != nil {
		return err
	}

	s.path = p
	s.index = 0
	s.states = make([]StepState, len(p.Steps))
	s.forms = make(map[registry.DocumentKind]FormData)
	s.attachments = nil
	s.decisions = make(map[string]string)
	return nil
}

// ResetWorkflow returns the session to the uninitialized state.
func (s *Session) ResetWorkflow() {
	s.path = nil
	s.index = 0
	s.states = nil
	s.forms = nil
	s.attachments = nil
	s.decisions = nil
}

// Initialized reports whether a path is selected.
func (s *Session) Initialized() bool {
	return s.path != nil
}

// Path returns the selected path, or nil before initialization.
func (s *Session) Path() *registry.Path {
	return s.path
}

// CurrentStepIndex returns the index of the current step in the path.
func (s *Session) CurrentStepIndex() int {
	return s.index
}

// CurrentStep returns the current step. The second result is false before
// initialization.
func (s *Session) CurrentStep() (*registry.Step, bool) {
	if s.path == nil {
		return nil, false
	}
	step := s.path.Steps[s.index]
	return &step, true
}

// StepState returns the state of the step with the given id.
// Unknown ids and uninitialized sessions report [StatePending].
func (s *Session) StepState(stepID string) StepState {
	if s.path == nil {
		return StatePending
	}
	idx := s.path.StepIndex(stepID)
	if idx < 0 {
		return StatePending
	}
	return s.states[idx]
}

// CompletedSteps returns the ids of completed steps in path order.
func (s *Session) CompletedSteps() []string {
	return s.stepsIn(StateCompleted)
}

// SkippedSteps returns the ids of skipped steps in path order.
func (s *Session) SkippedSteps() []string {
	return s.stepsIn(StateSkipped)
}

func (s *Session) stepsIn(state StepState) []string {
	ids := []string{}
	if s.path == nil {
		return ids
	}
	for i, st := range s.states {
		if st == state {
			ids = append(ids, s.path.Steps[i].ID)
		}
	}
	return ids
}

// SaveFormData stores the data captured for a form document, replacing any
// earlier value. Passing nil clears the entry.
func (s *Session) SaveFormData(kind registry.DocumentKind, data FormData) error {
	if s.path == nil {
		return ErrNotInitialized
	}
	if !formDocuments[kind] {
		return fmt.Errorf("%w: %s", ErrUnknownDocument, kind)
	}
	if data == nil {
		delete(s.forms, kind)
		return nil
	}
	s.forms[kind] = data
	return nil
}

// FormData returns the data stored for a document kind, or nil.
func (s *Session) FormData(kind registry.DocumentKind) FormData {
	return s.forms[kind]
}

// SaveAttachments stores the attachments step result, replacing any earlier value.
func (s *Session) SaveAttachments(a Attachments) error {
	if s.path == nil {
		return ErrNotInitialized
	}
	s.attachments = &a
	return nil
}

// Attachments returns the stored attachments, or nil if the step was not done.
func (s *Session) Attachments() *Attachments {
	return s.attachments
}

// SaveDecision records the answer given at a decision step.
func (s *Session) SaveDecision(decisionID, answer string) error {
	if s.path == nil {
		return ErrNotInitialized
	}
	s.decisions[decisionID] = answer
	return nil
}

// DecisionAnswer returns the recorded answer for a decision, if any.
func (s *Session) DecisionAnswer(decisionID string) (string, bool) {
	a, ok := s.decisions[decisionID]
	return a, ok
}

// Decisions returns a copy of all recorded decision answers.
func (s *Session) Decisions() map[string]string {
	out := make(map[string]string, len(s.decisions))
	for k, v := range s.decisions {
		out[k] = v
	}
	return out
}

// IsWorkflowComplete reports whether the current step is the preview step.
func (s *Session) IsWorkflowComplete() bool {
	step, ok := s.CurrentStep()
	return ok && step.Kind == registry.StepPreview
}

// Progress returns the completion percentage, rounded to the nearest integer.
//
// It is completed / (total - skipped). When every step is skipped the
// denominator is zero and Progress reports 0.
func (s *Session) Progress() int {
	if s.path == nil {
		return 0
	}
	completed := len(s.stepsIn(StateCompleted))
	remaining := len(s.path.Steps) - len(s.stepsIn(StateSkipped))
	if remaining <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(remaining)))
}

// Snapshot is a serializable view of a session.
type Snapshot struct {
	PathID         string            `yaml:"path_id" json:"path_id"`
	StepIndex      int               `yaml:"step_index" json:"step_index"`
	CurrentStep    *registry.Step    `yaml:"current_step,omitempty" json:"current_step,omitempty"`
	CompletedSteps []string          `yaml:"completed_steps" json:"completed_steps"`
	SkippedSteps   []string          `yaml:"skipped_steps" json:"skipped_steps"`
	Decisions      map[string]string `yaml:"decisions" json:"decisions"`
	Documents      []BundleDocument  `yaml:"documents" json:"documents"`
	Progress       int               `yaml:"progress" json:"progress"`
	Complete       bool              `yaml:"complete" json:"complete"`
}

// Snapshot captures the current session state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		StepIndex:      s.index,
		CompletedSteps: s.CompletedSteps(),
		SkippedSteps:   s.SkippedSteps(),
		Decisions:      s.Decisions(),
		Documents:      s.BundleDocuments(),
		Progress:       s.Progress(),
		Complete:       s.IsWorkflowComplete(),
	}
	if s.path != nil {
		snap.PathID = s.path.ID
		snap.CurrentStep, _ = s.CurrentStep()
	}
	return snap
}
