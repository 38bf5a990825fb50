package workflow

import (
	"fmt"

	"rscapproval/internal/registry"
)

// Advance describes the effect of one navigation call.
type Advance struct {
	// From and To are step indexes before and after the call.
	From int `json:"from"`
	To   int `json:"to"`

	// Skipped lists the step ids this call marked as skipped.
	Skipped []string `json:"skipped,omitempty"`

	// RedirectTo is set when the chosen option leaves this path. The index
	// is unchanged and the caller is expected to start the named path.
	RedirectTo string `json:"redirect_to,omitempty"`
}

// Moved reports whether the current step changed.
func (a Advance) Moved() bool {
	return a.From != a.To
}

// GoToNextStep completes the current step and moves forward.
//
// At a decision step with a non-empty answer the chosen option decides where
// to go:
//   - skip to next: following optional steps are skipped up to the first
//     required step
//   - next step (or legacy skip to): every step strictly between here and the
//     target is skipped and the target becomes current
//   - redirect: only the completion is recorded; [Advance.RedirectTo] names
//     the path the caller should start
//
// Otherwise the session moves to the next step, passing over optional steps
// that were already skipped. At the last step the call only records completion.
//
// An answer that matches no option returns [ErrUnknownOption], and a jump to
// a step missing from the path returns [ErrUnknownTarget]. Neither changes
// the session.
func (s *Session) GoToNextStep(answer string) (Advance, error) {
	if s.path == nil {
		return Advance{}, ErrNotInitialized
	}

	adv := Advance{From: s.index, To: s.index}
	step := s.path.Steps[s.index]

	if step.Kind == registry.StepDecision && answer != "" {
		d, err := s.reg.GetDecision(step.Decision)
		if err != nil {
			return adv, err
		}
		opt, ok := d.Option(answer)
		if !ok {
			return adv, fmt.Errorf("%w: %q for %s", ErrUnknownOption, answer, d.ID)
		}

		switch {
		case opt.SkipToNext:
			s.states[s.index] = StateCompleted
			adv.Skipped = s.skipOptionalFrom(s.index + 1)
			adv.To = s.index
			return adv, nil

		case opt.Target() != "":
			target := s.path.StepIndex(opt.Target())
			if target < 0 {
				return adv, fmt.Errorf("%w: %s in path %s", ErrUnknownTarget, opt.Target(), s.path.ID)
			}
			s.states[s.index] = StateCompleted
			for i := s.index + 1; i < target; i++ {
				s.states[i] = StateSkipped
				adv.Skipped = append(adv.Skipped, s.path.Steps[i].ID)
			}
			s.index = target
			adv.To = target
			return adv, nil

		default:
			s.states[s.index] = StateCompleted
			adv.RedirectTo = opt.RedirectTo
			return adv, nil
		}
	}

	s.states[s.index] = StateCompleted

	last := len(s.path.Steps) - 1
	if s.index == last {
		return adv, nil
	}

	pos := s.index + 1
	for pos < last && s.path.Steps[pos].Optional && s.states[pos] == StateSkipped {
		pos++
	}
	s.index = pos
	adv.To = pos
	return adv, nil
}

// skipOptionalFrom marks consecutive optional steps starting at pos as skipped
// and moves to the first required step after them.
func (s *Session) skipOptionalFrom(pos int) []string {
	var skipped []string
	for pos < len(s.path.Steps) && s.path.Steps[pos].Optional {
		s.states[pos] = StateSkipped
		skipped = append(skipped, s.path.Steps[pos].ID)
		pos++
	}
	if pos >= len(s.path.Steps) {
		pos = len(s.path.Steps) - 1
	}
	s.index = pos
	return skipped
}

// GoToPreviousStep moves back to the nearest earlier step that was not skipped.
//
// The step being left and the step being returned to both lose their
// completed state, so they count as pending until they are finished again.
// At the first step, or when every earlier step was skipped, the call is a
// no-op and the caller is expected to leave the workflow.
func (s *Session) GoToPreviousStep() (Advance, error) {
	if s.path == nil {
		return Advance{}, ErrNotInitialized
	}

	adv := Advance{From: s.index, To: s.index}
	if s.index == 0 {
		return adv, nil
	}

	pos := s.index - 1
	for pos >= 0 && s.states[pos] == StateSkipped {
		pos--
	}
	if pos < 0 {
		return adv, nil
	}

	if s.states[s.index] == StateCompleted {
		s.states[s.index] = StatePending
	}
	if s.states[pos] == StateCompleted {
		s.states[pos] = StatePending
	}
	s.index = pos
	adv.To = pos
	return adv, nil
}
