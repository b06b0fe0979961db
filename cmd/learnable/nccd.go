package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kode4food/learnable/internal/wizard"
	"github.com/kode4food/learnable/internal/wizard/nccd"
	"github.com/kode4food/learnable/pkg/api"
)

type nccdFlags struct {
	student      string
	evidence     string
	evidenceFile string
	level        string
	category     string
	underDDA     string
	comments     string
}

func newNCCDCommand(a *learnable) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nccd",
		Short: "Manage NCCD reports",
	}
	cmd.AddCommand(
		newNCCDCreateCommand(a),
		newNCCDEditCommand(a),
	)
	return cmd
}

func newNCCDCreateCommand(a *learnable) *cobra.Command {
	flags := &nccdFlags{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a new NCCD report for a student",
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := nccd.Target{Student: api.EntityID(flags.student)}
			return a.runNCCD(cmd.Context(), target, flags)
		},
	}
	addNCCDFlags(cmd, flags)
	return cmd
}

func newNCCDEditCommand(a *learnable) *cobra.Command {
	flags := &nccdFlags{}

	cmd := &cobra.Command{
		Use:   "edit REPORT_ID",
		Short: "Update an existing NCCD report",
		Long: `Update an existing NCCD report. Answers that are not given as
flags keep the report's current values.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := nccd.Target{
				Student: api.EntityID(flags.student),
				Report:  api.EntityID(args[0]),
			}
			return a.runNCCD(cmd.Context(), target, flags)
		},
	}
	addNCCDFlags(cmd, flags)
	return cmd
}

func addNCCDFlags(cmd *cobra.Command, flags *nccdFlags) {
	cmd.Flags().StringVar(&flags.student, "student", "", "Student id")
	cmd.Flags().StringVar(&flags.evidence, "evidence", "",
		"Whether evidence is available (Yes, No)")
	cmd.Flags().StringVar(&flags.evidenceFile, "evidence-file", "",
		"Evidence document to attach")
	cmd.Flags().StringVar(&flags.level, "level", "",
		"Level of adjustment ("+strings.Join(nccd.Adjustments, ", ")+")")
	cmd.Flags().StringVar(&flags.category, "category", "",
		"Disability category ("+strings.Join(nccd.Categories, ", ")+")")
	cmd.Flags().StringVar(&flags.underDDA, "dda", "",
		"Whether the adjustment falls under the DDA 1992 (Yes, No)")
	cmd.Flags().StringVar(&flags.comments, "comments", "",
		"Additional comments")
}

func (a *learnable) runNCCD(
	ctx context.Context, target nccd.Target, flags *nccdFlags,
) error {
	ans := answers{}
	ans.set(nccd.StepStudent, nccd.FieldStudent, flags.student)
	ans.set(nccd.StepEvidence, nccd.FieldHasEvidence, flags.evidence)
	ans.set(nccd.StepAdjustment, nccd.FieldAdjustment, flags.level)
	ans.set(nccd.StepCategory, nccd.FieldCategory, flags.category)
	ans.set(nccd.StepUnderDDA, nccd.FieldUnderDDA, flags.underDDA)
	ans.set(nccd.StepComments, nccd.FieldComments, flags.comments)
	if flags.evidenceFile != "" {
		f, err := a.readFile(flags.evidenceFile)
		if err != nil {
			return err
		}
		ans.set(nccd.StepEvidence, nccd.FieldEvidenceFile, f)
	}

	w := nccd.New(a.client)
	f, err := w.NewFlow(ctx, target,
		wizard.WithCompletion(func(_ context.Context, id api.EntityID) error {
			if id.IsZero() {
				a.println("NCCD report saved")
				return nil
			}
			a.printf("NCCD report %s saved\n", id)
			return nil
		}),
	)
	if err != nil {
		return err
	}
	return a.drive(ctx, f, ans)
}
