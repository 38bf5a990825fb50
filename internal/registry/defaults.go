package registry

// Step ids shared by the built-in paths.
const (
	StepProjectForm        = "project-form"
	StepLoanForm           = "loan-form"
	StepCarForm            = "car-form"
	StepConferenceForm     = "conference-form"
	StepCarDecision        = "car-decision"
	StepConferenceDecision = "conference-decision"
	StepLoanDecision       = "loan-decision"
	StepLoanScopeDecision  = "loan-scope-decision"
	StepAttachmentsID      = "attachments"
	StepPreviewID          = "preview"
)

// Default returns the built-in registry with the project, loan, car and
// conference paths.
//
// The built-in definitions always pass [Registry.Validate]; a failure here is
// a programming error and panics.
func Default() *Registry {
	r, err := New(defaultPaths(), defaultDecisions(), defaultFields())
	if err != nil {
		panic("registry: built-in configuration is invalid: " + err.Error())
	}
	return r
}

func formStep(id, label string, kind FormKind, optional bool) Step {
	return Step{ID: id, Label: label, Kind: StepForm, Form: kind, Optional: optional}
}

func decisionStep(id, label string) Step {
	return Step{ID: id, Label: label, Kind: StepDecision, Decision: id}
}

var (
	attachmentsStep = Step{ID: StepAttachmentsID, Label: "Supporting documents", Kind: StepAttachments}
	previewStep     = Step{ID: StepPreviewID, Label: "Review bundle", Kind: StepPreview}
)

func defaultPaths() []Path {
	return []Path{
		{
			ID:          "project",
			Name:        "Research project",
			Description: "Request project funding, with optional vehicle, conference and advance-loan documents.",
			Steps: []Step{
				formStep(StepProjectForm, "Project request", FormProject, false),
				decisionStep(StepCarDecision, "Vehicle use"),
				formStep(StepCarForm, "Vehicle request", FormCar, true),
				decisionStep(StepConferenceDecision, "Conference attendance"),
				formStep(StepConferenceForm, "Conference request", FormConference, true),
				decisionStep(StepLoanDecision, "Advance loan"),
				formStep(StepLoanForm, "Advance loan request", FormLoan, true),
				attachmentsStep,
				previewStep,
			},
			Documents: []DocumentKind{DocProject, DocCar, DocConference, DocLoan, DocAttachments},
		},
		{
			ID:          "loan",
			Name:        "Advance loan",
			Description: "Request an advance loan, optionally covering vehicle and conference costs.",
			Steps: []Step{
				decisionStep(StepLoanScopeDecision, "Loan scope"),
				decisionStep(StepCarDecision, "Vehicle use"),
				formStep(StepCarForm, "Vehicle request", FormCar, true),
				formStep(StepConferenceForm, "Conference request", FormConference, true),
				formStep(StepLoanForm, "Advance loan request", FormLoan, false),
				attachmentsStep,
				previewStep,
			},
			Documents: []DocumentKind{DocCar, DocConference, DocLoan, DocAttachments},
		},
		{
			ID:          "car",
			Name:        "Vehicle use",
			Description: "Request an institutional vehicle for official travel.",
			Steps: []Step{
				formStep(StepCarForm, "Vehicle request", FormCar, false),
				decisionStep(StepConferenceDecision, "Conference attendance"),
				formStep(StepConferenceForm, "Conference request", FormConference, true),
				decisionStep(StepLoanDecision, "Advance loan"),
				formStep(StepLoanForm, "Advance loan request", FormLoan, true),
				attachmentsStep,
				previewStep,
			},
			Documents: []DocumentKind{DocCar, DocConference, DocLoan, DocAttachments},
		},
		{
			ID:          "conference",
			Name:        "Conference attendance",
			Description: "Request approval to attend or present at a conference.",
			Steps: []Step{
				formStep(StepConferenceForm, "Conference request", FormConference, false),
				decisionStep(StepCarDecision, "Vehicle use"),
				formStep(StepCarForm, "Vehicle request", FormCar, true),
				decisionStep(StepLoanDecision, "Advance loan"),
				formStep(StepLoanForm, "Advance loan request", FormLoan, true),
				attachmentsStep,
				previewStep,
			},
			Documents: []DocumentKind{DocConference, DocCar, DocLoan, DocAttachments},
		},
	}
}

func yesNo(id, question, description, target string) Decision {
	return Decision{
		ID:          id,
		Question:    question,
		Description: description,
		Options: []Option{
			{Value: "yes", Label: "Yes", NextStep: target},
			{Value: "no", Label: "No", SkipToNext: true},
		},
	}
}

func defaultDecisions() []Decision {
	return []Decision{
		yesNo(StepCarDecision,
			"Will this request use an institutional vehicle?",
			"Vehicle use requires a separate vehicle request form.",
			StepCarForm),
		yesNo(StepConferenceDecision,
			"Does this request include conference attendance?",
			"Conference registration and presentation details go on the conference form.",
			StepConferenceForm),
		yesNo(StepLoanDecision,
			"Do you need an advance loan for these expenses?",
			"",
			StepLoanForm),
		{
			ID:          StepLoanScopeDecision,
			Question:    "Is this advance loan part of a research project?",
			Description: "Project loans are filed together with the project request.",
			Options: []Option{
				{Value: "project", Label: "Yes, start a project request", RedirectTo: "project"},
				{Value: "standalone", Label: "No, standalone loan", SkipToNext: true},
			},
		},
	}
}

func defaultFields() map[FormKind][]Field {
	return map[FormKind][]Field{
		FormProject: {
			{Name: "title", Label: "Project title", Required: true},
			{Name: "budget_code", Label: "Budget code", Required: true},
			{Name: "amount", Label: "Requested amount", Required: true},
			{Name: "period", Label: "Project period"},
		},
		FormLoan: {
			{Name: "amount", Label: "Loan amount", Required: true},
			{Name: "purpose", Label: "Purpose", Required: true},
			{Name: "repayment_date", Label: "Repayment date", Required: true},
		},
		FormCar: {
			{Name: "destination", Label: "Destination", Required: true},
			{Name: "departure", Label: "Departure date", Required: true},
			{Name: "return", Label: "Return date", Required: true},
			{Name: "passengers", Label: "Passengers"},
		},
		FormConference: {
			{Name: "name", Label: "Conference name", Required: true},
			{Name: "location", Label: "Location", Required: true},
			{Name: "dates", Label: "Dates", Required: true},
			{Name: "registration_fee", Label: "Registration fee"},
		},
	}
}
