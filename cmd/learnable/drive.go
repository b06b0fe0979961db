package main

import (
	"context"
	"errors"

	"github.com/kode4food/learnable/internal/wizard"
	"github.com/kode4food/learnable/pkg/api"
)

// answers are the step values collected from flags before a flow runs
type answers map[wizard.StepKey]wizard.Values

const msgResume = "Setup was left open. Run the same command again to resume."

func (ans answers) set(key wizard.StepKey, field string, value any) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return
		}
	case *api.File:
		if v == nil {
			return
		}
	}
	if ans[key] == nil {
		ans[key] = wizard.Values{}
	}
	ans[key][field] = value
}

// drive walks a flow to completion. Steps with answers are committed, and
// optional steps without any are skipped. A failed step abandons the flow,
// subject to the flow's close confirmation
func (a *learnable) drive(
	ctx context.Context, f *wizard.Flow, ans answers,
) error {
	for {
		st := f.State()
		if st.Closed {
			return nil
		}
		step := st.Steps[st.StepIndex]

		vals := ans[st.StepKey]
		for field, v := range vals {
			if err := f.SetValue(st.StepKey, field, v); err != nil {
				return err
			}
		}

		var err error
		if len(vals) == 0 && st.CanSkip {
			err = f.Skip(ctx)
		} else {
			err = f.Advance(ctx)
		}
		if err != nil {
			return a.abandon(ctx, f, step, err)
		}
		a.printf("✓ %s\n", step.Title)
	}
}

func (a *learnable) abandon(
	ctx context.Context, f *wizard.Flow, step wizard.StepInfo, cause error,
) error {
	a.printf("✗ %s: %s\n", step.Title, message(cause))
	if err := f.Close(ctx); errors.Is(err, wizard.ErrCloseCancelled) {
		a.println(msgResume)
	}
	return cause
}

func message(err error) string {
	if rec := api.AsErrorRecord(err); rec != nil && rec.Message != "" {
		return rec.Message
	}
	return err.Error()
}
