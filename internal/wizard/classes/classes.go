// Package classes defines the class setup wizard: create a class, enroll
// its students from a CSV roster, then attach a unit plan
package classes

import (
	"context"
	"log/slog"

	"github.com/kode4food/learnable/internal/backend"
	"github.com/kode4food/learnable/internal/wizard"
	"github.com/kode4food/learnable/pkg/api"
	"github.com/kode4food/learnable/pkg/log"
)

// Wizard builds class setup flows against a backend
type Wizard struct {
	client   *backend.Client
	fallback wizard.Fallback
}

const (
	Kind = "class_setup"

	StepCreateClass    wizard.StepKey = "create_class"
	StepAddStudents    wizard.StepKey = "add_students"
	StepUploadUnitPlan wizard.StepKey = "upload_unit_plan"

	// FallbackKey is the durable key holding the id of a class whose setup
	// has not finished
	FallbackKey = "temp_created_class_id"
)

// Form fields recorded on the wizard's steps
const (
	FieldClassName   = "class_name"
	FieldYearLevel   = "year_level"
	FieldFile        = "file"
	FieldDocument    = "document"
	FieldTitle       = "title"
	FieldDescription = "description"
)

const (
	MsgClassNameRequired = "Class name is required"
	MsgMissingServerID   = "Failed to get class ID from server response"
	MsgMissingClassID    = "Missing class ID. " +
		"Please go back and create a class first."

	// ConfirmPrompt is shown before discarding a created class
	ConfirmPrompt = "Are you sure you want to exit? " +
		"Your class has been created but setup is incomplete."

	// MsgCompleted is reported once setup finishes
	MsgCompleted = "Class setup completed successfully"
)

// New creates a class setup Wizard. The fallback holds the created class
// id until setup completes or is abandoned
func New(client *backend.Client, fallback wizard.Fallback) *Wizard {
	return &Wizard{
		client:   client,
		fallback: fallback,
	}
}

// WithFallback returns a copy of the Wizard that records the created
// class id under fb
func (w *Wizard) WithFallback(fb wizard.Fallback) *Wizard {
	res := *w
	res.fallback = fb
	return &res
}

// FlowFallbackKey names the fallback key of a single flow, for processes
// that run several class setups over one store
func FlowFallbackKey(id api.FlowID) string {
	return FallbackKey + ":" + string(id)
}

// NewFlow starts a class setup flow
func (w *Wizard) NewFlow(opts ...wizard.Option) (*wizard.Flow, error) {
	all := append([]wizard.Option{wizard.WithFallback(w.fallback)}, opts...)
	return wizard.NewFlow(Kind, w.Steps(), all...)
}

// Steps returns the wizard's step definitions
func (w *Wizard) Steps() []*wizard.Step {
	return []*wizard.Step{
		{
			Key:      StepCreateClass,
			Title:    "Create Class",
			Required: true,
			Rules: wizard.Rules{
				FieldClassName: "required,notblank",
			},
			Messages: map[string]string{
				FieldClassName: MsgClassNameRequired,
			},
			Commit: w.createClass,
		},
		{
			Key:    StepAddStudents,
			Title:  "Add Students",
			Commit: w.addStudents,
		},
		{
			Key:    StepUploadUnitPlan,
			Title:  "Upload Unit Plan",
			Commit: w.uploadUnitPlan,
		},
	}
}

func (w *Wizard) createClass(
	ctx context.Context, c *wizard.Context,
) (*wizard.Update, error) {
	if !c.EntityID.IsZero() {
		return &wizard.Update{EntityID: c.EntityID}, nil
	}
	if id := w.recovered(ctx); !id.IsZero() {
		slog.Info("Recovered class from fallback",
			log.EntityID(id))
		return &wizard.Update{EntityID: id}, nil
	}

	vals := c.Values(StepCreateClass)
	res, err := w.client.CreateClass(ctx, &backend.ClassRequest{
		ClassName: vals.String(FieldClassName),
		YearLevel: vals.String(FieldYearLevel),
	})
	if err != nil {
		return nil, err
	}
	if res.ID.IsZero() {
		return nil, &api.ErrorRecord{
			Kind:    api.ErrorUnknown,
			Message: MsgMissingServerID,
			Raw:     string(res.Raw),
		}
	}
	slog.Info("Class created",
		log.EntityID(res.ID))
	return &wizard.Update{EntityID: res.ID}, nil
}

func (w *Wizard) addStudents(
	ctx context.Context, c *wizard.Context,
) (*wizard.Update, error) {
	id, err := w.classID(ctx, c)
	if err != nil {
		return nil, err
	}
	file := c.Values(StepAddStudents).File(FieldFile)
	if file == nil {
		return &wizard.Update{EntityID: id}, nil
	}
	if err := CheckRoster(file); err != nil {
		return nil, err
	}
	if _, err := w.client.UploadStudentCSV(ctx, id, file); err != nil {
		return nil, err
	}
	return &wizard.Update{EntityID: id}, nil
}

func (w *Wizard) uploadUnitPlan(
	ctx context.Context, c *wizard.Context,
) (*wizard.Update, error) {
	id, err := w.classID(ctx, c)
	if err != nil {
		return nil, err
	}
	vals := c.Values(StepUploadUnitPlan)
	doc := vals.File(FieldDocument)
	if doc == nil {
		return &wizard.Update{EntityID: id}, nil
	}
	if !api.IsBinaryContent(doc.ContentType) {
		slog.Warn("Unit plan type may not be supported",
			slog.String("content_type", doc.ContentType))
	}
	_, err = w.client.UploadUnitPlan(ctx, &backend.UnitPlanUpload{
		ClassID:          id,
		Title:            vals.String(FieldTitle),
		Description:      vals.String(FieldDescription),
		Document:         doc,
		FromCreationFlow: true,
	})
	if err != nil {
		return nil, err
	}
	return &wizard.Update{EntityID: id}, nil
}

func (w *Wizard) classID(
	ctx context.Context, c *wizard.Context,
) (api.EntityID, error) {
	if !c.EntityID.IsZero() {
		return c.EntityID, nil
	}
	if id := w.recovered(ctx); !id.IsZero() {
		return id, nil
	}
	return "", api.Validation(MsgMissingClassID)
}

func (w *Wizard) recovered(ctx context.Context) api.EntityID {
	if w.fallback == nil {
		return ""
	}
	v, err := w.fallback.Get(ctx)
	if err != nil {
		slog.Warn("Failed to read class fallback",
			log.Error(err))
		return ""
	}
	return api.EntityID(v)
}
