// Package wizard drives a workflow session from path selection to submission.
//
// The [Driver] plays the role of the workflow page: it initialises a
// [workflow.Session] on the chosen path, shows each step through injected
// collaborators, moves forward or back on their answers, and at the preview
// step hands the assembled bundle to a [Submitter].
//
// Key concepts:
//   - Collaborators are chosen by step kind: [FormCollector],
//     [DecisionPicker], [AttachmentCollector] and [Reviewer]
//   - Any collaborator may return [ErrBack] to go to the previous step
//   - Going back from the first step ends the run with [ErrExited]
//   - A redirect option restarts the run on another path, bounded by
//     [MaxRedirects]
//   - Progress can be tracked via [ProgressCallback]
package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"rscapproval/internal/approval"
	"rscapproval/internal/registry"
	"rscapproval/internal/workflow"
)

// MaxRedirects limits how many times a run may switch paths through redirect
// options. Registries where two paths redirect to each other would otherwise
// loop forever.
const MaxRedirects = 3

var (
	// ErrBack is returned by a collaborator to request the previous step.
	ErrBack = errors.New("back")

	// ErrExited is returned when the user leaves the wizard, either by going
	// back from the first step or by closing the input.
	ErrExited = errors.New("wizard exited")

	// ErrRedirectLoop is returned when a run exceeds [MaxRedirects].
	ErrRedirectLoop = errors.New("too many path redirects")
)

// FormCollector captures the data of one request form.
//
// initial holds previously saved data for the same form, or nil.
type FormCollector interface {
	CollectForm(ctx context.Context, kind registry.FormKind, fields []registry.Field, initial workflow.FormData) (workflow.FormData, error)
}

// DecisionPicker chooses an option value for a decision step.
type DecisionPicker interface {
	PickDecision(ctx context.Context, decision *registry.Decision) (string, error)
}

// AttachmentCollector captures the two optional attachment slots.
//
// initial holds previously saved attachments, or nil.
type AttachmentCollector interface {
	CollectAttachments(ctx context.Context, initial *workflow.Attachments) (workflow.Attachments, error)
}

// Reviewer shows the assembled bundle at the preview step and reports
// whether the user confirms it. Returning false goes back one step.
type Reviewer interface {
	ConfirmBundle(ctx context.Context, docs []workflow.BundleDocument) (bool, error)
}

// Collector combines every step collaborator. [Terminal] and [Script]
// implement it.
type Collector interface {
	FormCollector
	DecisionPicker
	AttachmentCollector
	Reviewer
}

// Submitter stores a confirmed bundle. created is false when the token was
// already submitted and the existing record is returned.
type Submitter interface {
	Submit(ctx context.Context, sub approval.Submission) (rec *approval.Record, created bool, err error)
}

// ProgressCallback is invoked before each step is shown.
//
// stepIndex is 1-based; progress is the session's completion percentage.
type ProgressCallback func(stepIndex, totalSteps int, step registry.Step, progress int)

// Result is the outcome of a completed run.
type Result struct {
	// PathID is the path the run finished on, which differs from the
	// requested path after a redirect.
	PathID    string
	Documents []workflow.BundleDocument

	// Record is nil when the driver has no submitter.
	Record  *approval.Record
	Created bool
}

// Driver runs wizard sessions.
//
// Use [NewDriver] to create an instance and [Driver.Run] for each run.
type Driver struct {
	reg              *registry.Registry
	collector        Collector
	submitter        Submitter
	logger           *slog.Logger
	progressCallback ProgressCallback
}

// NewDriver creates a Driver. A nil submitter makes runs stop after the
// preview is confirmed without storing anything. A nil logger discards logs.
func NewDriver(reg *registry.Registry, collector Collector, submitter Submitter, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Driver{
		reg:       reg,
		collector: collector,
		submitter: submitter,
		logger:    logger.With("component", "wizard"),
	}
}

// SetProgressCallback configures an optional progress callback.
func (d *Driver) SetProgressCallback(cb ProgressCallback) {
	d.progressCallback = cb
}

// Run walks the path with id pathID and submits the confirmed bundle on
// behalf of submitter.
//
// An unknown path returns [registry.ErrUnknownPath] before any step is shown.
// Run stops on the first collaborator or submitter error, except [ErrBack].
func (d *Driver) Run(ctx context.Context, pathID, submitter string) (*Result, error) {
	s := workflow.NewSession(d.reg)
	if err := s.InitWorkflow(pathID); err != nil {
		return nil, err
	}
	d.logger.Info("wizard started", "path", pathID)

	token := uuid.NewString()
	redirects := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		step, _ := s.CurrentStep()
		if d.progressCallback != nil {
			d.progressCallback(s.CurrentStepIndex()+1, len(s.Path().Steps), *step, s.Progress())
		}

		var (
			answer  string
			confirm bool
			err     error
		)
		switch step.Kind {
		case registry.StepForm:
			err = d.collectForm(ctx, s, step)
		case registry.StepDecision:
			answer, err = d.pickDecision(ctx, step)
		case registry.StepAttachments:
			err = d.collectAttachments(ctx, s)
		case registry.StepPreview:
			confirm, err = d.collector.ConfirmBundle(ctx, s.BundleDocuments())
			if err == nil && !confirm {
				err = ErrBack
			}
		default:
			return nil, fmt.Errorf("step %q has unsupported kind %q", step.ID, step.Kind)
		}

		if errors.Is(err, ErrBack) {
			if err := d.back(s); err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, err
		}

		adv, err := s.GoToNextStep(answer)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", step.ID, err)
		}
		if step.Kind == registry.StepDecision {
			if err := s.SaveDecision(step.Decision, answer); err != nil {
				return nil, err
			}
		}

		if adv.RedirectTo != "" {
			redirects++
			if redirects > MaxRedirects {
				return nil, fmt.Errorf("%w: last target %q", ErrRedirectLoop, adv.RedirectTo)
			}
			d.logger.Info("path redirect", "from", s.Path().ID, "to", adv.RedirectTo)
			if err := s.InitWorkflow(adv.RedirectTo); err != nil {
				return nil, err
			}
			continue
		}

		if step.Kind == registry.StepPreview && s.IsWorkflowComplete() {
			return d.finish(ctx, s, token, submitter)
		}
	}
}

func (d *Driver) collectForm(ctx context.Context, s *workflow.Session, step *registry.Step) error {
	doc := registry.DocumentKind(step.Form)
	data, err := d.collector.CollectForm(ctx, step.Form, d.reg.Fields(step.Form), s.FormData(doc))
	if err != nil {
		return err
	}
	return s.SaveFormData(doc, data)
}

func (d *Driver) pickDecision(ctx context.Context, step *registry.Step) (string, error) {
	dec, err := d.reg.GetDecision(step.Decision)
	if err != nil {
		return "", err
	}
	return d.collector.PickDecision(ctx, dec)
}

func (d *Driver) collectAttachments(ctx context.Context, s *workflow.Session) error {
	att, err := d.collector.CollectAttachments(ctx, s.Attachments())
	if err != nil {
		return err
	}
	return s.SaveAttachments(att)
}

// back moves to the previous step, or reports [ErrExited] when there is none.
func (d *Driver) back(s *workflow.Session) error {
	adv, err := s.GoToPreviousStep()
	if err != nil {
		return err
	}
	if !adv.Moved() {
		d.logger.Info("wizard exited", "path", s.Path().ID)
		return ErrExited
	}
	return nil
}

func (d *Driver) finish(ctx context.Context, s *workflow.Session, token, submitter string) (*Result, error) {
	res := &Result{
		PathID:    s.Path().ID,
		Documents: s.BundleDocuments(),
	}
	if d.submitter == nil {
		return res, nil
	}

	rec, created, err := d.submitter.Submit(ctx, approval.Submission{
		Token:     token,
		PathID:    res.PathID,
		Submitter: submitter,
		Documents: res.Documents,
	})
	if err != nil {
		return nil, fmt.Errorf("submit failed: %w", err)
	}

	d.logger.Info("bundle submitted", "path", res.PathID, "id", rec.ID, "created", created)
	res.Record = rec
	res.Created = created
	return res, nil
}

// StoreSubmitter adapts an [approval.Store] to [Submitter].
type StoreSubmitter struct {
	Store *approval.Store
}

// Submit implements [Submitter].
func (s StoreSubmitter) Submit(ctx context.Context, sub approval.Submission) (*approval.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	return s.Store.Submit(sub)
}
