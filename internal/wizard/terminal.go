package wizard

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"rscapproval/internal/output"
	"rscapproval/internal/registry"
	"rscapproval/internal/workflow"
)

// backInput is the line a user types to go to the previous step.
const backInput = "<"

// Terminal is an interactive [Collector] reading lines from an input stream.
//
// Every prompt accepts "<" to go back. End of input exits the wizard.
type Terminal struct {
	in      *bufio.Reader
	printer *output.Printer
}

// NewTerminal returns a Terminal reading from in and writing through printer.
func NewTerminal(in io.Reader, printer *output.Printer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), printer: printer}
}

// readLine reads one trimmed line. It returns [ErrBack] for "<" and
// [ErrExited] at end of input.
func (t *Terminal) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := t.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", ErrExited
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == backInput {
		return "", ErrBack
	}
	return line, nil
}

// CollectForm prompts for each field. A blank line keeps the initial value.
func (t *Terminal) CollectForm(ctx context.Context, kind registry.FormKind, fields []registry.Field, initial workflow.FormData) (workflow.FormData, error) {
	t.printer.Muted("Enter %s form details (\"<\" to go back, blank keeps the current value).", kind)

	data := workflow.FormData{}
	for _, f := range fields {
		current, hasCurrent := initial[f.Name]
		for {
			label := f.Label
			if label == "" {
				label = f.Name
			}
			if f.Required {
				label += " *"
			}
			if hasCurrent {
				t.printer.Prompt("%s [%v]:", label, current)
			} else {
				t.printer.Prompt("%s:", label)
			}

			line, err := t.readLine(ctx)
			if err != nil {
				return nil, err
			}
			switch {
			case line != "":
				data[f.Name] = line
			case hasCurrent:
				data[f.Name] = current
			case f.Required:
				t.printer.Failure("%s is required", label)
				continue
			}
			break
		}
	}
	return data, nil
}

// PickDecision lists the options and accepts either a number or a value.
func (t *Terminal) PickDecision(ctx context.Context, decision *registry.Decision) (string, error) {
	t.printer.Text("%s", decision.Question)
	if decision.Description != "" {
		t.printer.Muted("%s", decision.Description)
	}
	for i, o := range decision.Options {
		t.printer.Text("  %d) %s", i+1, o.Label)
	}

	for {
		t.printer.Prompt("Choose:")
		line, err := t.readLine(ctx)
		if err != nil {
			return "", err
		}
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(decision.Options) {
			return decision.Options[n-1].Value, nil
		}
		if _, ok := decision.Option(line); ok {
			return line, nil
		}
		t.printer.Failure("choose 1-%d", len(decision.Options))
	}
}

// CollectAttachments asks for the expense and schedule files by path.
// A blank line keeps the current file, "-" clears it.
func (t *Terminal) CollectAttachments(ctx context.Context, initial *workflow.Attachments) (workflow.Attachments, error) {
	var current workflow.Attachments
	if initial != nil {
		current = *initial
	}

	expense, err := t.askFile(ctx, "Expense estimate file", current.ExpenseForm)
	if err != nil {
		return workflow.Attachments{}, err
	}
	schedule, err := t.askFile(ctx, "Travel schedule file", current.ScheduleForm)
	if err != nil {
		return workflow.Attachments{}, err
	}
	return workflow.Attachments{ExpenseForm: expense, ScheduleForm: schedule}, nil
}

func (t *Terminal) askFile(ctx context.Context, label string, current *workflow.FileMeta) (*workflow.FileMeta, error) {
	if current != nil {
		t.printer.Prompt("%s [%s] (- to remove):", label, current.Name)
	} else {
		t.printer.Prompt("%s (optional):", label)
	}

	line, err := t.readLine(ctx)
	if err != nil {
		return nil, err
	}
	switch line {
	case "":
		return current, nil
	case "-":
		return nil, nil
	}
	return fileMeta(line), nil
}

// fileMeta describes the file at path, filling size and type when the file
// is readable.
func fileMeta(path string) *workflow.FileMeta {
	meta := &workflow.FileMeta{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
	}
	if info, err := os.Stat(path); err == nil {
		meta.Size = info.Size()
	}
	return meta
}

// ConfirmBundle shows the bundle and asks for confirmation.
func (t *Terminal) ConfirmBundle(ctx context.Context, docs []workflow.BundleDocument) (bool, error) {
	t.printer.Header("Bundle preview")
	t.printer.Bundle(docs)

	for {
		t.printer.Prompt("Submit this bundle? [y/n]:")
		line, err := t.readLine(ctx)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}
