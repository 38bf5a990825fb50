package wizard

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"rscapproval/internal/registry"
	"rscapproval/internal/workflow"
)

var (
	// ErrNoAnswer is returned by [Script] when the answers file has no
	// value for a decision that the run reaches.
	ErrNoAnswer = errors.New("no scripted answer")

	// ErrMissingField is returned when a required form field is empty.
	ErrMissingField = errors.New("required field missing")
)

// Answers is the YAML layout of a scripted run.
//
//	submitter: somchai
//	decisions:
//	  car-decision: "yes"
//	  conference-decision: "no"
//	forms:
//	  project: {title: Soil survey, budget_code: R-12, amount: 50000}
//	attachments:
//	  expense_form: {name: expense.xlsx}
//	confirm: true
type Answers struct {
	Submitter   string                                  `yaml:"submitter"`
	Decisions   map[string]string                       `yaml:"decisions"`
	Forms       map[registry.FormKind]workflow.FormData `yaml:"forms"`
	Attachments workflow.Attachments                    `yaml:"attachments"`

	// Confirm answers the preview step. Nil means confirm.
	Confirm *bool `yaml:"confirm"`
}

// LoadAnswers reads an answers file.
func LoadAnswers(path string) (*Answers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers: %w", err)
	}

	var a Answers
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse answers: %w", err)
	}
	return &a, nil
}

// Script is a non-interactive [Collector] that replays an [Answers] file.
type Script struct {
	answers *Answers
}

// NewScript returns a Script collector for a.
func NewScript(a *Answers) *Script {
	if a == nil {
		a = &Answers{}
	}
	return &Script{answers: a}
}

// CollectForm returns the scripted form data, falling back to initial.
func (s *Script) CollectForm(ctx context.Context, kind registry.FormKind, fields []registry.Field, initial workflow.FormData) (workflow.FormData, error) {
	data, ok := s.answers.Forms[kind]
	if !ok {
		data = initial
	}
	if err := checkRequired(kind, fields, data); err != nil {
		return nil, err
	}
	return data, nil
}

// PickDecision returns the scripted answer for the decision.
func (s *Script) PickDecision(ctx context.Context, decision *registry.Decision) (string, error) {
	answer, ok := s.answers.Decisions[decision.ID]
	if !ok {
		return "", fmt.Errorf("%w for decision %q", ErrNoAnswer, decision.ID)
	}
	return answer, nil
}

// CollectAttachments returns the scripted attachments.
func (s *Script) CollectAttachments(ctx context.Context, initial *workflow.Attachments) (workflow.Attachments, error) {
	return s.answers.Attachments, nil
}

// ConfirmBundle confirms unless the script says otherwise. A script that
// declines would loop between preview and the previous step, so declining
// ends the run instead.
func (s *Script) ConfirmBundle(ctx context.Context, docs []workflow.BundleDocument) (bool, error) {
	if s.answers.Confirm != nil && !*s.answers.Confirm {
		return false, ErrExited
	}
	return true, nil
}

// checkRequired reports the first required field without a value.
func checkRequired(kind registry.FormKind, fields []registry.Field, data workflow.FormData) error {
	for _, f := range fields {
		if !f.Required {
			continue
		}
		v, ok := data[f.Name]
		if !ok || v == nil || v == "" {
			return fmt.Errorf("%w: %s.%s", ErrMissingField, kind, f.Name)
		}
	}
	return nil
}
