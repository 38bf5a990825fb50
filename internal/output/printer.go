// Package output renders terminal output for the rscapproval CLI.
//
// [Printer] wraps an io.Writer and a lipgloss renderer bound to it, so styles
// degrade to plain text when the writer is not a terminal (tests, pipes).
//
// Key types:
//   - [Printer] - Styled writer for headers, step lines, bundles and records
package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"rscapproval/internal/approval"
	"rscapproval/internal/registry"
	"rscapproval/internal/workflow"
)

// Printer writes styled output.
type Printer struct {
	w io.Writer

	header  lipgloss.Style
	step    lipgloss.Style
	muted   lipgloss.Style
	label   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	status  map[approval.Status]lipgloss.Style
}

// NewPrinter returns a Printer writing to stdout.
func NewPrinter() *Printer {
	return NewPrinterWithWriter(os.Stdout)
}

// NewPrinterWithWriter returns a Printer writing to w.
func NewPrinterWithWriter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w: w,
		header: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1),
		step:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		label:   r.NewStyle().Bold(true),
		success: r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		failure: r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		status: map[approval.Status]lipgloss.Style{
			approval.StatusPendingAdmin:    r.NewStyle().Foreground(lipgloss.Color("11")),
			approval.StatusPendingDirector: r.NewStyle().Foreground(lipgloss.Color("11")),
			approval.StatusApproved:        r.NewStyle().Foreground(lipgloss.Color("10")),
			approval.StatusRejected:        r.NewStyle().Foreground(lipgloss.Color("9")),
		},
	}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Header prints a boxed title.
func (p *Printer) Header(title string) {
	fmt.Fprintln(p.w, p.header.Render(title))
}

// Text prints a plain line.
func (p *Printer) Text(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Muted prints a dimmed line.
func (p *Printer) Muted(format string, args ...any) {
	fmt.Fprintln(p.w, p.muted.Render(fmt.Sprintf(format, args...)))
}

// Success prints a success banner.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.w, p.success.Render("✓ "+fmt.Sprintf(format, args...)))
}

// Failure prints a failure banner.
func (p *Printer) Failure(format string, args ...any) {
	fmt.Fprintln(p.w, p.failure.Render("✗ "+fmt.Sprintf(format, args...)))
}

// Prompt prints a question without a trailing newline.
func (p *Printer) Prompt(format string, args ...any) {
	fmt.Fprint(p.w, p.label.Render(fmt.Sprintf(format, args...))+" ")
}

// Paths lists the registered request paths.
func (p *Printer) Paths(paths []registry.Path) {
	for _, path := range paths {
		fmt.Fprintf(p.w, "%s  %s\n", p.label.Render(fmt.Sprintf("%-12s", path.ID)), path.Name)
		if path.Description != "" {
			fmt.Fprintln(p.w, p.muted.Render("              "+path.Description))
		}
	}
}

// StepStart prints the step line shown before each wizard page.
// stepIndex is 1-based.
func (p *Printer) StepStart(stepIndex, totalSteps int, step registry.Step, progress int) {
	title := step.Label
	if title == "" {
		title = step.ID
	}
	line := fmt.Sprintf("[%d/%d] %s", stepIndex, totalSteps, title)
	fmt.Fprintf(p.w, "%s %s\n", p.step.Render(line), p.muted.Render(fmt.Sprintf("(%d%%)", progress)))
}

// Bundle lists the documents of a bundle in order.
func (p *Printer) Bundle(docs []workflow.BundleDocument) {
	if len(docs) == 0 {
		p.Muted("No documents.")
		return
	}
	for i, doc := range docs {
		fmt.Fprintf(p.w, "%d. %s %s\n", i+1, p.label.Render(doc.Label), p.muted.Render("("+string(doc.Kind)+")"))
		for _, line := range describe(doc.Data) {
			fmt.Fprintln(p.w, "     "+line)
		}
	}
}

// describe flattens document data into sorted "key: value" lines.
func describe(data any) []string {
	switch d := data.(type) {
	case workflow.FormData:
		return describeMap(d)
	case map[string]any:
		return describeMap(d)
	case workflow.FileMeta:
		return []string{fmt.Sprintf("file: %s", d.Name)}
	case nil:
		return nil
	default:
		return []string{fmt.Sprint(d)}
	}
}

func describeMap(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %v", k, m[k]))
	}
	return lines
}

// StatusText returns s styled by its approval state.
func (p *Printer) StatusText(s approval.Status) string {
	if style, ok := p.status[s]; ok {
		return style.Render(string(s))
	}
	return string(s)
}

// Records prints one summary line per submission.
func (p *Printer) Records(records []approval.Record) {
	if len(records) == 0 {
		p.Muted("No submissions.")
		return
	}
	for _, r := range records {
		fmt.Fprintf(p.w, "%s  %-12s %-18s %s  %s\n",
			r.ID,
			r.PathID,
			p.StatusText(r.Status),
			r.SubmittedAt.Format("2006-01-02 15:04"),
			r.Submitter,
		)
	}
}

// Record prints a submission with its documents and history.
func (p *Printer) Record(r approval.Record) {
	p.Header("Submission " + r.ID)
	fmt.Fprintf(p.w, "%s %s\n", p.label.Render("Path:"), r.PathID)
	fmt.Fprintf(p.w, "%s %s\n", p.label.Render("Submitter:"), r.Submitter)
	fmt.Fprintf(p.w, "%s %s\n", p.label.Render("Status:"), p.StatusText(r.Status))
	fmt.Fprintf(p.w, "%s %s\n", p.label.Render("Submitted:"), r.SubmittedAt.Format("2006-01-02 15:04:05"))

	fmt.Fprintln(p.w)
	p.Bundle(r.Documents)

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.label.Render("History:"))
	for _, h := range r.History {
		parts := []string{h.At.Format("2006-01-02 15:04"), string(h.Role)}
		if h.Actor != "" {
			parts = append(parts, h.Actor)
		}
		line := strings.Join(parts, " ") + " → " + string(h.To)
		if h.Reason != "" {
			line += " (" + h.Reason + ")"
		}
		fmt.Fprintln(p.w, "  "+line)
	}
}
