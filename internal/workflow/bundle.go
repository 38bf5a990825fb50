package workflow

import "rscapproval/internal/registry"

// BundleKind identifies an entry of the assembled bundle.
type BundleKind string

// Bundle kinds, listed in bundle order.
const (
	BundleProject      BundleKind = "project"
	BundleCar          BundleKind = "car"
	BundleConference   BundleKind = "conference"
	BundleLoan         BundleKind = "loan"
	BundleExpenseForm  BundleKind = "expense-form"
	BundleScheduleForm BundleKind = "schedule-form"
)

// BundleDocument is one document of the final submission.
type BundleDocument struct {
	Kind  BundleKind `yaml:"kind" json:"kind"`
	Label string     `yaml:"label" json:"label"`
	Data  any        `yaml:"data" json:"data"`
}

// bundleForms is the regulatory document order for form documents.
var bundleForms = []struct {
	kind  BundleKind
	doc   registry.DocumentKind
	label string
}{
	{BundleProject, registry.DocProject, "Research project request"},
	{BundleCar, registry.DocCar, "Institutional vehicle request"},
	{BundleConference, registry.DocConference, "Conference attendance request"},
	{BundleLoan, registry.DocLoan, "Advance loan request"},
}

// Attachment labels.
const (
	expenseFormLabel  = "Expense estimate"
	scheduleFormLabel = "Travel schedule"
)

// BundleDocuments returns the documents filled so far in bundle order:
// project, car, conference, loan, expense attachment, schedule attachment.
//
// The order is fixed regardless of the order the forms were filled in.
// Kinds without data are left out.
func (s *Session) BundleDocuments() []BundleDocument {
	docs := []BundleDocument{}

	for _, f := range bundleForms {
		if data := s.forms[f.doc]; data != nil {
			docs = append(docs, BundleDocument{Kind: f.kind, Label: f.label, Data: data})
		}
	}

	if s.attachments != nil {
		if s.attachments.ExpenseForm != nil {
			docs = append(docs, BundleDocument{Kind: BundleExpenseForm, Label: expenseFormLabel, Data: *s.attachments.ExpenseForm})
		}
		if s.attachments.ScheduleForm != nil {
			docs = append(docs, BundleDocument{Kind: BundleScheduleForm, Label: scheduleFormLabel, Data: *s.attachments.ScheduleForm})
		}
	}

	return docs
}
