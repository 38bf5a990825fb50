package registry

import (
	"errors"
	"fmt"
)

// Sentinel errors for registry lookups and validation.
var (
	// ErrUnknownPath is returned when no path matches the requested id.
	// Callers should send the user back to path selection.
	ErrUnknownPath = errors.New("unknown path")

	// ErrUnknownDecision is returned when no decision matches the requested id.
	// It indicates a configuration bug rather than a user error.
	ErrUnknownDecision = errors.New("unknown decision")

	// ErrInvalidRegistry wraps every configuration problem found by Validate.
	ErrInvalidRegistry = errors.New("invalid registry")
)

// Registry is a read-only lookup of paths, decisions and form fields.
//
// Create with [Default], [New], [LoadFile] or [LoadBytes]. A Registry is never
// mutated after construction and is safe to share between sessions.
type Registry struct {
	paths     []Path
	pathIndex map[string]int
	decisions map[string]Decision
	fields    map[FormKind][]Field
}

// New builds a [Registry] from explicit definitions and validates it.
func New(paths []Path, decisions []Decision, fields map[FormKind][]Field) (*Registry, error) {
	r := &Registry{
		paths:     make([]Path, 0, len(paths)),
		pathIndex: make(map[string]int, len(paths)),
		decisions: make(map[string]Decision, len(decisions)),
		fields:    make(map[FormKind][]Field, len(fields)),
	}

	for _, p := range paths {
		if _, dup := r.pathIndex[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate path id %q", ErrInvalidRegistry, p.ID)
		}
		r.pathIndex[p.ID] = len(r.paths)
		r.paths = append(r.paths, p)
	}
	for _, d := range decisions {
		if _, dup := r.decisions[d.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate decision id %q", ErrInvalidRegistry, d.ID)
		}
		r.decisions[d.ID] = d
	}
	for k, f := range fields {
		r.fields[k] = f
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// GetPath returns the path with the given id.
//
// Returns [ErrUnknownPath] on a miss.
func (r *Registry) GetPath(pathID string) (*Path, error) {
	idx, ok := r.pathIndex[pathID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPath, pathID)
	}
	p := r.paths[idx]
	return &p, nil
}

// GetDecision returns the decision registered under the given id.
//
// Decision steps use their decision id as the lookup key. Returns
// [ErrUnknownDecision] on a miss.
func (r *Registry) GetDecision(id string) (*Decision, error) {
	d, ok := r.decisions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDecision, id)
	}
	return &d, nil
}

// Paths returns all paths in declaration order.
func (r *Registry) Paths() []Path {
	out := make([]Path, len(r.paths))
	copy(out, r.paths)
	return out
}

// Fields returns the input fields of a form kind. Unknown kinds have none.
func (r *Registry) Fields(kind FormKind) []Field {
	return r.fields[kind]
}

// Validate checks the registry for configuration bugs.
//
// All problems are collected and returned together, each wrapped in
// [ErrInvalidRegistry].
func (r *Registry) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidRegistry}, args...)...))
	}

	for _, d := range r.decisions {
		if len(d.Options) == 0 {
			add("decision %q has no options", d.ID)
		}
		seen := make(map[string]bool)
		for _, o := range d.Options {
			if seen[o.Value] {
				add("decision %q has duplicate option %q", d.ID, o.Value)
			}
			seen[o.Value] = true
			if o.directives() != 1 {
				add("decision %q option %q must set exactly one navigation directive", d.ID, o.Value)
			}
			if o.RedirectTo != "" {
				if _, ok := r.pathIndex[o.RedirectTo]; !ok {
					add("decision %q option %q redirects to unknown path %q", d.ID, o.Value, o.RedirectTo)
				}
			}
		}
	}

	for _, p := range r.paths {
		if len(p.Steps) == 0 {
			add("path %q has no steps", p.ID)
			continue
		}

		ids := make(map[string]bool, len(p.Steps))
		attachments := 0
		for i, s := range p.Steps {
			if s.ID == "" {
				add("path %q step %d has no id", p.ID, i)
			}
			if ids[s.ID] {
				add("path %q has duplicate step id %q", p.ID, s.ID)
			}
			ids[s.ID] = true

			switch s.Kind {
			case StepForm:
				if !s.Form.IsValid() {
					add("path %q step %q has unknown form %q", p.ID, s.ID, s.Form)
				}
			case StepDecision:
				d, ok := r.decisions[s.Decision]
				if !ok {
					add("path %q step %q references unknown decision %q", p.ID, s.ID, s.Decision)
					continue
				}
				for _, o := range d.Options {
					target := o.Target()
					if target == "" {
						continue
					}
					switch idx := p.StepIndex(target); {
					case idx < 0:
						add("path %q decision %q option %q targets missing step %q", p.ID, d.ID, o.Value, target)
					case idx <= i:
						add("path %q decision %q option %q targets step %q at or before the decision", p.ID, d.ID, o.Value, target)
					}
				}
			case StepAttachments:
				attachments++
			case StepPreview:
				if i != len(p.Steps)-1 {
					add("path %q preview step %q is not last", p.ID, s.ID)
				}
			default:
				add("path %q step %q has unknown kind %q", p.ID, s.ID, s.Kind)
			}
		}

		if attachments != 1 {
			add("path %q must have exactly one attachments step, has %d", p.ID, attachments)
		}
		last := p.Steps[len(p.Steps)-1]
		if last.Kind != StepPreview || last.Optional {
			add("path %q must end with a required preview step", p.ID)
		}
	}

	return errors.Join(errs...)
}
