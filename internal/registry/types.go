// Package registry holds the static description of request paths and the
// decision questions embedded in them.
//
// A [Path] is an ordered list of [Step] definitions. Each step is one of four
// kinds: a form step bound to a [FormKind], a decision step bound to a
// [Decision], the single attachments step, or the terminal preview step.
// Decisions carry [Option] values, and each option holds exactly one
// navigation directive (skip to next, jump to a step, or redirect to another
// path).
//
// Key types:
//   - [Registry] - Read-only lookup of paths and decisions
//   - [Path] - One top-level request workflow (project, loan, car, conference)
//   - [Step] - One stage within a path
//   - [Decision] - A branching question embedded as a step
//
// The built-in configuration is returned by [Default]. A YAML file with the
// same shape can replace it via [LoadFile]; every load is checked by
// [Registry.Validate] so broken jump targets surface at startup rather than
// stranding a user on a decision step.
package registry

// FormKind identifies one of the request forms a form step can embed.
type FormKind string

// Form kinds.
const (
	FormProject    FormKind = "project"
	FormLoan       FormKind = "loan"
	FormCar        FormKind = "car"
	FormConference FormKind = "conference"
)

// FormKinds lists every form kind in declaration order.
var FormKinds = []FormKind{FormProject, FormLoan, FormCar, FormConference}

// IsValid reports whether k is a known form kind.
func (k FormKind) IsValid() bool {
	switch k {
	case FormProject, FormLoan, FormCar, FormConference:
		return true
	}
	return false
}

// DocumentKind identifies an entry in a session's bundle data.
//
// Every [FormKind] is also a document kind. Travel and attachments are
// document kinds with no form step of their own in the built-in paths.
type DocumentKind string

// Document kinds.
const (
	DocProject     DocumentKind = "project"
	DocLoan        DocumentKind = "loan"
	DocCar         DocumentKind = "car"
	DocConference  DocumentKind = "conference"
	DocTravel      DocumentKind = "travel"
	DocAttachments DocumentKind = "attachments"
)

// StepKind discriminates the four step variants.
type StepKind string

// Step kinds.
const (
	StepForm        StepKind = "form"
	StepDecision    StepKind = "decision"
	StepAttachments StepKind = "attachments"
	StepPreview     StepKind = "preview"
)

// Step is one stage within a [Path].
//
// Exactly one of Form or Decision is meaningful, selected by Kind.
type Step struct {
	// ID is stable and unique within its path (e.g., "car-decision").
	ID string `yaml:"id" json:"id"`

	// Label is the human-readable step title.
	Label string `yaml:"label" json:"label"`

	// Kind selects the step variant.
	Kind StepKind `yaml:"kind" json:"kind"`

	// Form is the embedded form for form steps.
	Form FormKind `yaml:"form,omitempty" json:"form,omitempty"`

	// Decision is the decision id for decision steps.
	Decision string `yaml:"decision,omitempty" json:"decision,omitempty"`

	// Optional steps can be bypassed by a skip-to-next option.
	Optional bool `yaml:"optional,omitempty" json:"optional,omitempty"`
}

// Option is one answer to a [Decision].
//
// Exactly one navigation directive should be set. SkipTo is the legacy
// spelling of NextStep and behaves identically.
type Option struct {
	Value      string `yaml:"value" json:"value"`
	Label      string `yaml:"label" json:"label"`
	SkipToNext bool   `yaml:"skip_to_next,omitempty" json:"skip_to_next,omitempty"`
	NextStep   string `yaml:"next_step,omitempty" json:"next_step,omitempty"`
	SkipTo     string `yaml:"skip_to,omitempty" json:"skip_to,omitempty"`
	RedirectTo string `yaml:"redirect_to,omitempty" json:"redirect_to,omitempty"`
}

// Target returns the jump target step id, preferring NextStep over SkipTo.
func (o Option) Target() string {
	if o.NextStep != "" {
		return o.NextStep
	}
	return o.SkipTo
}

// directives counts how many navigation directives the option carries.
func (o Option) directives() int {
	n := 0
	if o.SkipToNext {
		n++
	}
	if o.Target() != "" {
		n++
	}
	if o.RedirectTo != "" {
		n++
	}
	return n
}

// Decision is a branching question embedded in a path as a decision step.
type Decision struct {
	ID          string   `yaml:"id" json:"id"`
	Question    string   `yaml:"question" json:"question"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Options     []Option `yaml:"options" json:"options"`
}

// Option returns the option whose Value equals value.
func (d *Decision) Option(value string) (Option, bool) {
	for _, o := range d.Options {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}

// Path is a top-level request workflow.
type Path struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Steps       []Step `yaml:"steps" json:"steps"`

	// Documents is the canonical list of document kinds the path can produce.
	Documents []DocumentKind `yaml:"documents" json:"documents"`
}

// StepIndex returns the index of the step with the given id, or -1.
func (p *Path) StepIndex(id string) int {
	for i, s := range p.Steps {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Field describes one input of a request form.
//
// Form rendering is not part of the engine; fields exist so the terminal
// collector and the scripted collector can check required inputs before
// handing data to the session.
type Field struct {
	Name     string `yaml:"name" json:"name"`
	Label    string `yaml:"label" json:"label"`
	Required bool   `yaml:"required,omitempty" json:"required,omitempty"`
}
