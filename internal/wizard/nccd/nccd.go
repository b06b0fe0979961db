// Package nccd defines the NCCD report wizard, which collects the
// adjustments provided to a student one question at a time and submits
// them as a single report
package nccd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kode4food/learnable/internal/backend"
	"github.com/kode4food/learnable/internal/wizard"
	"github.com/kode4food/learnable/pkg/api"
	"github.com/kode4food/learnable/pkg/log"
)

type (
	// Wizard builds NCCD report flows against a backend
	Wizard struct {
		client *backend.Client
	}

	// Target selects the report a flow works on. A zero Student adds a
	// student selection step. A non-zero Report edits that report
	Target struct {
		Student api.EntityID
		Report  api.EntityID
	}

	report struct {
		client *backend.Client
		Target
	}
)

const (
	Kind = "nccd_report"

	StepStudent    wizard.StepKey = "student_selection"
	StepEvidence   wizard.StepKey = "evidence"
	StepAdjustment wizard.StepKey = "level_of_adjustment"
	StepCategory   wizard.StepKey = "disability_category"
	StepUnderDDA   wizard.StepKey = "under_dda"
	StepComments   wizard.StepKey = "additional_comments"
)

// Form fields recorded on the wizard's steps
const (
	FieldStudent      = "student"
	FieldHasEvidence  = "has_evidence"
	FieldEvidenceFile = "evidence_file"
	FieldAdjustment   = "level_of_adjustment"
	FieldCategory     = "disability_category"
	FieldUnderDDA     = "under_dda"
	FieldComments     = "additional_comments"
)

const (
	Yes = "Yes"
	No  = "No"

	MsgSelectStudent = "Please select a student."
)

var (
	// Adjustments are the accepted levels of adjustment
	Adjustments = []string{
		api.AdjustmentQDTP,
		api.AdjustmentSupplementary,
		api.AdjustmentSubstantial,
		api.AdjustmentExtensive,
	}

	// Categories are the accepted disability categories
	Categories = []string{
		api.CategoryCognitive,
		api.CategoryPhysical,
		api.CategorySocial,
		api.CategorySensory,
	}

	yesNo = oneOf([]string{Yes, No})
)

// New creates an NCCD report Wizard
func New(client *backend.Client) *Wizard {
	return &Wizard{client: client}
}

// NewFlow starts a report flow for t. When t names an existing report,
// its answers are loaded from the backend first
func (w *Wizard) NewFlow(
	ctx context.Context, t Target, opts ...wizard.Option,
) (*wizard.Flow, error) {
	r := &report{client: w.client, Target: t}
	if !t.Report.IsZero() {
		existing, err := w.client.GetNCCDReport(ctx, t.Report)
		if err != nil {
			return nil, err
		}
		if r.Student.IsZero() {
			r.Student = existing.Student
		}
		opts = append([]wizard.Option{
			wizard.WithAttachments(Answers(existing)),
		}, opts...)
	}
	return wizard.NewFlow(Kind, r.steps(), opts...)
}

// Answers converts a stored report into step values
func Answers(r *api.NCCDReport) map[wizard.StepKey]wizard.Values {
	return map[wizard.StepKey]wizard.Values{
		StepEvidence: {
			FieldHasEvidence: yesOrNo(r.HasEvidence),
		},
		StepAdjustment: {
			FieldAdjustment: r.LevelOfAdjustment,
		},
		StepCategory: {
			FieldCategory: r.DisabilityCategory,
		},
		StepUnderDDA: {
			FieldUnderDDA: yesOrNo(r.UnderDDA),
		},
		StepComments: {
			FieldComments: r.AdditionalComments,
		},
	}
}

func (r *report) steps() []*wizard.Step {
	var res []*wizard.Step
	if r.Student.IsZero() {
		res = append(res, &wizard.Step{
			Key:      StepStudent,
			Title:    "Select Student",
			Required: true,
			Rules:    wizard.Rules{FieldStudent: "required,notblank"},
			Messages: map[string]string{FieldStudent: MsgSelectStudent},
		})
	}
	return append(res,
		&wizard.Step{
			Key:      StepEvidence,
			Title:    "Do you have evidence?",
			Required: true,
			Rules:    wizard.Rules{FieldHasEvidence: yesNo},
		},
		&wizard.Step{
			Key:      StepAdjustment,
			Title:    "What is the level of adjustment?",
			Required: true,
			Rules:    wizard.Rules{FieldAdjustment: oneOf(Adjustments)},
		},
		&wizard.Step{
			Key:      StepCategory,
			Title:    "What is the category of disability?",
			Required: true,
			Rules:    wizard.Rules{FieldCategory: oneOf(Categories)},
		},
		&wizard.Step{
			Key:      StepUnderDDA,
			Title:    "Is it under the DDA 1992?",
			Required: true,
			Rules:    wizard.Rules{FieldUnderDDA: yesNo},
		},
		&wizard.Step{
			Key:      StepComments,
			Title:    "Additional Comments",
			Required: true,
			Commit:   r.submit,
		},
	)
}

func (r *report) submit(
	ctx context.Context, c *wizard.Context,
) (*wizard.Update, error) {
	student := r.Student
	if student.IsZero() {
		student = api.EntityID(c.Values(StepStudent).String(FieldStudent))
	}
	if student.IsZero() {
		return nil, api.Validation(MsgSelectStudent)
	}

	evidence := c.Values(StepEvidence)
	adjustment := c.Values(StepAdjustment)
	category := c.Values(StepCategory)
	sub := &backend.NCCDSubmission{
		Student:            student,
		HasEvidence:        evidence.Bool(FieldHasEvidence),
		Evidence:           evidence.File(FieldEvidenceFile),
		LevelOfAdjustment:  adjustment.String(FieldAdjustment),
		DisabilityCategory: category.String(FieldCategory),
		UnderDDA:           c.Values(StepUnderDDA).Bool(FieldUnderDDA),
		AdditionalComments: c.Values(StepComments).String(FieldComments),
		Status:             api.ReportApproved,
	}

	var res *api.NormalizedResponse
	var err error
	if r.Report.IsZero() {
		res, err = r.client.CreateNCCDReport(ctx, sub)
	} else {
		res, err = r.client.UpdateNCCDReport(ctx, r.Report, sub)
	}
	if err != nil {
		return nil, err
	}
	slog.Info("NCCD report submitted",
		log.EntityID(res.ID),
		slog.String("student", student.String()))
	return &wizard.Update{EntityID: res.ID}, nil
}

func oneOf(values []string) string {
	return "required,oneof=" + strings.Join(values, " ")
}

func yesOrNo(b bool) string {
	if b {
		return Yes
	}
	return No
}
