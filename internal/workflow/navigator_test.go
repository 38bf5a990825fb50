package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rscapproval/internal/registry"
)

// jumpRegistry has one decision that jumps over three optional steps.
func jumpRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	paths := []registry.Path{{
		ID:   "jump",
		Name: "Jump",
		Steps: []registry.Step{
			{ID: "start", Kind: registry.StepForm, Form: registry.FormProject},
			{ID: "jump-decision", Kind: registry.StepDecision, Decision: "jump-decision"},
			{ID: "car-form", Kind: registry.StepForm, Form: registry.FormCar, Optional: true},
			{ID: "conference-form", Kind: registry.StepForm, Form: registry.FormConference, Optional: true},
			{ID: "loan-form", Kind: registry.StepForm, Form: registry.FormLoan, Optional: true},
			{ID: "attachments", Kind: registry.StepAttachments},
			{ID: "preview", Kind: registry.StepPreview},
		},
	}}
	decisions := []registry.Decision{{
		ID: "jump-decision",
		Options: []registry.Option{
			{Value: "jump", NextStep: "attachments"},
			{Value: "legacy", SkipTo: "loan-form"},
			{Value: "skip", SkipToNext: true},
			{Value: "stay", NextStep: "car-form"},
		},
	}}

	r, err := registry.New(paths, decisions, nil)
	require.NoError(t, err)
	return r
}

// Scenario A: "no" at car-decision skips the car form.
func TestGoToNextStep_CarDecisionNo(t *testing.T) {
	s := newTestSession(t, "project")
	_, err := s.GoToNextStep("")
	require.NoError(t, err)
	require.Equal(t, registry.StepCarDecision, currentID(t, s))

	adv, err := s.GoToNextStep("no")

	require.NoError(t, err)
	assert.Equal(t, []string{registry.StepCarForm}, adv.Skipped)
	assert.Equal(t, []string{registry.StepCarForm}, s.SkippedSteps())
	assert.Equal(t, registry.StepConferenceDecision, currentID(t, s))
	assert.Equal(t, 1, adv.From)
	assert.Equal(t, 3, adv.To)
}

// Scenario B: "yes" at car-decision jumps to the adjacent car form.
func TestGoToNextStep_CarDecisionYes(t *testing.T) {
	s := newTestSession(t, "project")
	_, err := s.GoToNextStep("")
	require.NoError(t, err)

	adv, err := s.GoToNextStep("yes")

	require.NoError(t, err)
	assert.Equal(t, registry.StepCarForm, currentID(t, s))
	assert.Empty(t, adv.Skipped)
	assert.Empty(t, s.SkippedSteps())
	assert.Contains(t, s.CompletedSteps(), registry.StepCarDecision)
}

// Scenario D: going back from loan-form lands on car-decision, not on the
// skipped step just before it.
func TestGoToPreviousStep_JumpsOverSkippedBlock(t *testing.T) {
	s := newTestSession(t, "loan")

	_, err := s.GoToNextStep("standalone")
	require.NoError(t, err)
	require.Equal(t, registry.StepCarDecision, currentID(t, s))

	adv, err := s.GoToNextStep("no")
	require.NoError(t, err)
	require.Equal(t, registry.StepLoanForm, currentID(t, s))
	require.Equal(t, []string{registry.StepCarForm, registry.StepConferenceForm}, adv.Skipped)

	back, err := s.GoToPreviousStep()

	require.NoError(t, err)
	assert.Equal(t, registry.StepCarDecision, currentID(t, s))
	assert.Equal(t, 4, back.From)
	assert.Equal(t, 1, back.To)
	assert.Equal(t, []string{registry.StepCarForm, registry.StepConferenceForm}, s.SkippedSteps())
}

// P2: every step strictly between a decision and its jump target is skipped
// and none of them is completed.
func TestGoToNextStep_JumpSkipsIntermediateSteps(t *testing.T) {
	s := NewSession(jumpRegistry(t))
	require.NoError(t, s.InitWorkflow("jump"))
	_, err := s.GoToNextStep("")
	require.NoError(t, err)

	adv, err := s.GoToNextStep("jump")

	require.NoError(t, err)
	between := []string{"car-form", "conference-form", "loan-form"}
	assert.Equal(t, between, adv.Skipped)
	assert.Equal(t, between, s.SkippedSteps())
	for _, id := range between {
		assert.NotContains(t, s.CompletedSteps(), id)
	}
	assert.Equal(t, "attachments", currentID(t, s))
}

func TestGoToNextStep_LegacySkipTo(t *testing.T) {
	s := NewSession(jumpRegistry(t))
	require.NoError(t, s.InitWorkflow("jump"))
	_, err := s.GoToNextStep("")
	require.NoError(t, err)

	_, err = s.GoToNextStep("legacy")

	require.NoError(t, err)
	assert.Equal(t, "loan-form", currentID(t, s))
	assert.Equal(t, []string{"car-form", "conference-form"}, s.SkippedSteps())
}

func TestGoToNextStep_SkipToNextPassesAllOptionalSteps(t *testing.T) {
	s := NewSession(jumpRegistry(t))
	require.NoError(t, s.InitWorkflow("jump"))
	_, err := s.GoToNextStep("")
	require.NoError(t, err)

	_, err = s.GoToNextStep("skip")

	require.NoError(t, err)
	assert.Equal(t, "attachments", currentID(t, s))
	assert.Equal(t, []string{"car-form", "conference-form", "loan-form"}, s.SkippedSteps())
}

// P2 also holds when a step that was completed earlier ends up between a
// decision and its new target: it becomes skipped, never both.
func TestGoToNextStep_ReanswerMovesCompletedStepToSkipped(t *testing.T) {
	s := newTestSession(t, "project")
	_, err := s.GoToNextStep("")
	require.NoError(t, err)
	_, err = s.GoToNextStep("yes")
	require.NoError(t, err)
	_, err = s.GoToNextStep("") // complete car-form
	require.NoError(t, err)
	require.Equal(t, registry.StepConferenceDecision, currentID(t, s))

	_, err = s.GoToPreviousStep()
	require.NoError(t, err)
	require.Equal(t, registry.StepCarForm, currentID(t, s))
	_, err = s.GoToPreviousStep()
	require.NoError(t, err)
	require.Equal(t, registry.StepCarDecision, currentID(t, s))

	_, err = s.GoToNextStep("no")
	require.NoError(t, err)

	assert.Equal(t, []string{registry.StepCarForm}, s.SkippedSteps())
	assert.NotContains(t, s.CompletedSteps(), registry.StepCarForm)
}

// P3: skipping again never duplicates a skipped step, and the default
// advance passes over optional steps that are already skipped.
func TestSkipIdempotence(t *testing.T) {
	s := newTestSession(t, "project")
	_, err := s.GoToNextStep("")
	require.NoError(t, err)
	_, err = s.GoToNextStep("no")
	require.NoError(t, err)

	_, err = s.GoToPreviousStep()
	require.NoError(t, err)
	require.Equal(t, registry.StepCarDecision, currentID(t, s))

	_, err = s.GoToNextStep("no")
	require.NoError(t, err)
	assert.Equal(t, []string{registry.StepCarForm}, s.SkippedSteps())

	_, err = s.GoToPreviousStep()
	require.NoError(t, err)
	adv, err := s.GoToNextStep("")
	require.NoError(t, err)
	assert.Empty(t, adv.Skipped)
	assert.Equal(t, registry.StepConferenceDecision, currentID(t, s))
	assert.Equal(t, []string{registry.StepCarForm}, s.SkippedSteps())
}

// P1: N plain advances followed by N backs restore the index and remove
// exactly the completions that were added.
func TestForwardBackSymmetry(t *testing.T) {
	for _, p := range registry.Default().Paths() {
		for n := 1; n < len(p.Steps); n++ {
			s := NewSession(registry.Default())
			require.NoError(t, s.InitWorkflow(p.ID))

			for i := 0; i < n; i++ {
				_, err := s.GoToNextStep("")
				require.NoError(t, err)
			}
			require.Equal(t, n, s.CurrentStepIndex(), "path %s after %d advances", p.ID, n)
			require.Len(t, s.CompletedSteps(), n)

			for i := 0; i < n; i++ {
				_, err := s.GoToPreviousStep()
				require.NoError(t, err)
			}

			assert.Equal(t, 0, s.CurrentStepIndex(), "path %s n=%d", p.ID, n)
			assert.Empty(t, s.CompletedSteps(), "path %s n=%d", p.ID, n)
			assert.Empty(t, s.SkippedSteps())
		}
	}
}

func TestGoToNextStep_Redirect(t *testing.T) {
	s := newTestSession(t, "loan")

	adv, err := s.GoToNextStep("project")

	require.NoError(t, err)
	assert.Equal(t, "project", adv.RedirectTo)
	assert.False(t, adv.Moved())
	assert.Equal(t, registry.StepLoanScopeDecision, currentID(t, s))
	assert.Equal(t, []string{registry.StepLoanScopeDecision}, s.CompletedSteps())
}

func TestGoToNextStep_UnknownOption(t *testing.T) {
	s := newTestSession(t, "project")
	_, err := s.GoToNextStep("")
	require.NoError(t, err)

	adv, err := s.GoToNextStep("maybe")

	assert.ErrorIs(t, err, ErrUnknownOption)
	assert.False(t, adv.Moved())
	assert.Equal(t, registry.StepCarDecision, currentID(t, s))
	assert.NotContains(t, s.CompletedSteps(), registry.StepCarDecision)
}

func TestGoToNextStep_DecisionWithoutAnswerAdvancesByDefault(t *testing.T) {
	s := newTestSession(t, "project")
	_, err := s.GoToNextStep("")
	require.NoError(t, err)

	_, err = s.GoToNextStep("")

	require.NoError(t, err)
	assert.Equal(t, registry.StepCarForm, currentID(t, s))
}

func TestGoToNextStep_AnswerIgnoredOnFormStep(t *testing.T) {
	s := newTestSession(t, "project")

	_, err := s.GoToNextStep("no")

	require.NoError(t, err)
	assert.Equal(t, registry.StepCarDecision, currentID(t, s))
	assert.Empty(t, s.SkippedSteps())
}

func TestGoToNextStep_TerminalStepStays(t *testing.T) {
	s := newTestSession(t, "car")
	for !s.IsWorkflowComplete() {
		_, err := s.GoToNextStep("")
		require.NoError(t, err)
	}
	last := s.CurrentStepIndex()

	for i := 0; i < 3; i++ {
		adv, err := s.GoToNextStep("")
		require.NoError(t, err)
		assert.False(t, adv.Moved())
	}

	assert.Equal(t, last, s.CurrentStepIndex())
	assert.Equal(t, len(s.Path().Steps)-1, last)
}

func TestGoToPreviousStep_AtStartIsNoop(t *testing.T) {
	s := newTestSession(t, "project")

	adv, err := s.GoToPreviousStep()

	require.NoError(t, err)
	assert.False(t, adv.Moved())
	assert.Equal(t, 0, s.CurrentStepIndex())
}

func TestGoToPreviousStep_AllowsReeditingData(t *testing.T) {
	s := newTestSession(t, "car")
	require.NoError(t, s.SaveFormData(registry.DocCar, FormData{"destination": "Chiang Mai"}))
	_, err := s.GoToNextStep("")
	require.NoError(t, err)

	_, err = s.GoToPreviousStep()
	require.NoError(t, err)
	require.Equal(t, registry.StepCarForm, currentID(t, s))
	assert.Equal(t, StatePending, s.StepState(registry.StepCarForm))

	require.NoError(t, s.SaveFormData(registry.DocCar, FormData{"destination": "Khon Kaen"}))
	_, err = s.GoToNextStep("")
	require.NoError(t, err)

	assert.Equal(t, "Khon Kaen", s.FormData(registry.DocCar)["destination"])
	assert.Equal(t, StateCompleted, s.StepState(registry.StepCarForm))
}

func TestAdvance_Moved(t *testing.T) {
	assert.True(t, Advance{From: 1, To: 3}.Moved())
	assert.False(t, Advance{From: 2, To: 2}.Moved())
}

// A registry built without validation can still carry a jump to a step the
// path does not have. The call must fail without touching the session.
func TestGoToNextStep_UnknownTargetIsNoop(t *testing.T) {
	s := NewSession(jumpRegistry(t))
	require.NoError(t, s.InitWorkflow("jump"))
	_, err := s.GoToNextStep("")
	require.NoError(t, err)
	require.Equal(t, "jump-decision", currentID(t, s))

	broken := *s.path
	broken.Steps = append([]registry.Step(nil), s.path.Steps...)
	broken.Steps[5].ID = "uploads"
	s.path = &broken

	adv, err := s.GoToNextStep("jump")

	require.ErrorIs(t, err, ErrUnknownTarget)
	assert.False(t, adv.Moved())
	assert.Equal(t, 1, s.CurrentStepIndex())
	assert.Equal(t, StatePending, s.StepState("jump-decision"))
	assert.Empty(t, s.SkippedSteps())
	assert.Equal(t, []string{"start"}, s.CompletedSteps())
}
