package wizard

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rscapproval/internal/output"
	"rscapproval/internal/registry"
	"rscapproval/internal/workflow"
)

func newTestTerminal(input string) (*Terminal, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewTerminal(strings.NewReader(input), output.NewPrinterWithWriter(buf)), buf
}

func TestTerminal_CollectForm(t *testing.T) {
	fields := []registry.Field{
		{Name: "title", Label: "Project title", Required: true},
		{Name: "period", Label: "Project period"},
	}

	term, out := newTestTerminal("\nSoil survey\n\n")

	data, err := term.CollectForm(context.Background(), registry.FormProject, fields, nil)

	require.NoError(t, err)
	assert.Equal(t, workflow.FormData{"title": "Soil survey"}, data)
	assert.Contains(t, out.String(), "Project title * is required")
}

func TestTerminal_CollectForm_KeepsInitial(t *testing.T) {
	fields := []registry.Field{{Name: "title", Required: true}, {Name: "amount"}}
	term, out := newTestTerminal("\n900\n")

	data, err := term.CollectForm(context.Background(), registry.FormProject, fields, workflow.FormData{"title": "Old"})

	require.NoError(t, err)
	assert.Equal(t, workflow.FormData{"title": "Old", "amount": "900"}, data)
	assert.Contains(t, out.String(), "[Old]")
}

func TestTerminal_CollectForm_Back(t *testing.T) {
	term, _ := newTestTerminal("<\n")

	_, err := term.CollectForm(context.Background(), registry.FormCar, []registry.Field{{Name: "destination"}}, nil)

	assert.ErrorIs(t, err, ErrBack)
}

func TestTerminal_EndOfInputExits(t *testing.T) {
	term, _ := newTestTerminal("")

	_, err := term.CollectForm(context.Background(), registry.FormCar, []registry.Field{{Name: "destination"}}, nil)

	assert.ErrorIs(t, err, ErrExited)
}

func TestTerminal_LastLineWithoutNewline(t *testing.T) {
	term, _ := newTestTerminal("Khon Kaen")

	data, err := term.CollectForm(context.Background(), registry.FormCar, []registry.Field{{Name: "destination"}}, nil)

	require.NoError(t, err)
	assert.Equal(t, "Khon Kaen", data["destination"])
}

func TestTerminal_PickDecision(t *testing.T) {
	dec, err := registry.Default().GetDecision(registry.StepCarDecision)
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "by number", input: "1\n", want: "yes"},
		{name: "by value", input: "no\n", want: "no"},
		{name: "retries invalid input", input: "7\nmaybe\n2\n", want: "no"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, out := newTestTerminal(tt.input)

			got, err := term.PickDecision(context.Background(), dec)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), dec.Question)
		})
	}
}

func TestTerminal_PickDecision_Back(t *testing.T) {
	dec, err := registry.Default().GetDecision(registry.StepLoanScopeDecision)
	require.NoError(t, err)
	term, _ := newTestTerminal("<\n")

	_, err = term.PickDecision(context.Background(), dec)

	assert.ErrorIs(t, err, ErrBack)
}

func TestTerminal_CollectAttachments(t *testing.T) {
	dir := t.TempDir()
	expense := filepath.Join(dir, "expense.pdf")
	require.NoError(t, os.WriteFile(expense, []byte("12345"), 0644))

	term, _ := newTestTerminal(expense + "\n\n")

	att, err := term.CollectAttachments(context.Background(), nil)

	require.NoError(t, err)
	require.NotNil(t, att.ExpenseForm)
	assert.Equal(t, "expense.pdf", att.ExpenseForm.Name)
	assert.Equal(t, int64(5), att.ExpenseForm.Size)
	assert.Equal(t, "application/pdf", att.ExpenseForm.ContentType)
	assert.Nil(t, att.ScheduleForm)
}

func TestTerminal_CollectAttachments_KeepAndRemove(t *testing.T) {
	initial := &workflow.Attachments{
		ExpenseForm:  &workflow.FileMeta{Name: "old-expense.pdf"},
		ScheduleForm: &workflow.FileMeta{Name: "old-schedule.pdf"},
	}
	term, _ := newTestTerminal("\n-\n")

	att, err := term.CollectAttachments(context.Background(), initial)

	require.NoError(t, err)
	require.NotNil(t, att.ExpenseForm)
	assert.Equal(t, "old-expense.pdf", att.ExpenseForm.Name)
	assert.Nil(t, att.ScheduleForm)
}

func TestTerminal_ConfirmBundle(t *testing.T) {
	docs := []workflow.BundleDocument{{Kind: workflow.BundleCar, Label: "Institutional vehicle request", Data: workflow.FormData{"destination": "Chiang Mai"}}}

	term, out := newTestTerminal("maybe\ny\n")
	ok, err := term.ConfirmBundle(context.Background(), docs)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "Institutional vehicle request")

	term, _ = newTestTerminal("n\n")
	ok, err = term.ConfirmBundle(context.Background(), docs)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTerminal_DrivesFullRun(t *testing.T) {
	// Car form fields, conference "no", loan "no", two blank attachments, confirm.
	input := strings.Join([]string{
		"Chiang Mai", "2026-04-02", "2026-04-05", "",
		"2",
		"2",
		"", "",
		"y",
	}, "\n") + "\n"

	term, _ := newTestTerminal(input)
	d := NewDriver(registry.Default(), term, nil, nil)

	res, err := d.Run(context.Background(), "car", "")

	require.NoError(t, err)
	require.Len(t, res.Documents, 1)
	assert.Equal(t, workflow.BundleCar, res.Documents[0].Kind)
}
