package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kode4food/learnable/internal/store"
	"github.com/kode4food/learnable/internal/wizard"
	"github.com/kode4food/learnable/internal/wizard/classes"
	"github.com/kode4food/learnable/pkg/api"
)

type classCreateFlags struct {
	name        string
	yearLevel   string
	students    string
	unitPlan    string
	title       string
	description string
}

func newClassCommand(a *learnable) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "class",
		Short: "Manage classes",
	}
	cmd.AddCommand(newClassCreateCommand(a))
	return cmd
}

func newClassCreateCommand(a *learnable) *cobra.Command {
	flags := &classCreateFlags{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a class, enroll its students, and add a unit plan",
		Long: `Create a class and finish its setup in one pass.

The student roster is a CSV file with first_name and last_name columns,
optionally year_level, student_email, and disability_info. If a later step
fails after the class was created, declining to discard it keeps the class
id so that running the command again resumes the setup.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runClassCreate(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.name, "name", "", "Class name")
	cmd.Flags().StringVar(&flags.yearLevel, "year-level", "", "Year level")
	cmd.Flags().StringVar(&flags.students, "students", "",
		"CSV roster of students to enroll")
	cmd.Flags().StringVar(&flags.unitPlan, "unit-plan", "",
		"Unit plan document (PDF, DOC, DOCX)")
	cmd.Flags().StringVar(&flags.title, "title", "", "Unit plan title")
	cmd.Flags().StringVar(&flags.description, "description", "",
		"Unit plan description")
	return cmd
}

func (a *learnable) runClassCreate(
	ctx context.Context, flags *classCreateFlags,
) error {
	ans := answers{}
	if flags.name == "" {
		flags.name = a.prompt("Class name")
	}
	ans.set(classes.StepCreateClass, classes.FieldClassName, flags.name)
	ans.set(classes.StepCreateClass, classes.FieldYearLevel, flags.yearLevel)

	if flags.students != "" {
		f, err := a.readFile(flags.students)
		if err != nil {
			return err
		}
		ans.set(classes.StepAddStudents, classes.FieldFile, f)
	}
	if flags.unitPlan != "" {
		f, err := a.readFile(flags.unitPlan)
		if err != nil {
			return err
		}
		ans.set(classes.StepUploadUnitPlan, classes.FieldDocument, f)
		ans.set(classes.StepUploadUnitPlan, classes.FieldTitle, flags.title)
		ans.set(classes.StepUploadUnitPlan,
			classes.FieldDescription, flags.description)
	}

	fb := store.NewKey(a.store, classes.FallbackKey)
	w := classes.New(a.client, fb)
	f, err := w.NewFlow(
		wizard.WithConfirm(a.confirm(classes.ConfirmPrompt)),
		wizard.WithCompletion(func(_ context.Context, id api.EntityID) error {
			a.printf("%s (class %s)\n", classes.MsgCompleted, id)
			return nil
		}),
	)
	if err != nil {
		return err
	}
	return a.drive(ctx, f, ans)
}
