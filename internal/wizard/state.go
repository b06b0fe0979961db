package wizard

import "github.com/kode4food/learnable/pkg/api"

type (
	// State is an immutable snapshot of a Flow for rendering
	State struct {
		FlowID      api.FlowID       `json:"flow_id"`
		Kind        string           `json:"kind"`
		StepKey     StepKey          `json:"step_key,omitempty"`
		Steps       []StepInfo       `json:"steps"`
		EntityID    api.EntityID     `json:"entity_id,omitempty"`
		Result      api.EntityID     `json:"result,omitempty"`
		LastError   *api.ErrorRecord `json:"last_error,omitempty"`
		FieldErrors FieldErrors      `json:"field_errors,omitempty"`
		Values      Values           `json:"values,omitempty"`
		StepIndex   int              `json:"step_index"`
		Busy        bool             `json:"busy"`
		Closed      bool             `json:"closed"`
		Completed   bool             `json:"completed"`
		CanContinue bool             `json:"can_continue"`
		CanBack     bool             `json:"can_back"`
		CanSkip     bool             `json:"can_skip"`
	}

	// StepInfo describes one step for rendering
	StepInfo struct {
		Key      StepKey `json:"key"`
		Title    string  `json:"title"`
		Required bool    `json:"required"`
	}
)

// State returns a snapshot of the flow. Field errors and gating are
// recomputed from the current values on every call
func (f *Flow) State() *State {
	f.mu.Lock()
	defer f.mu.Unlock()

	res := &State{
		FlowID:    f.id,
		Kind:      f.kind,
		Steps:     make([]StepInfo, len(f.steps)),
		EntityID:  f.ctx.EntityID,
		Result:    f.result,
		StepIndex: f.ctx.StepIndex,
		Busy:      f.busy,
		Closed:    f.closed,
		Completed: f.completed,
	}
	for i, s := range f.steps {
		res.Steps[i] = StepInfo{
			Key:      s.Key,
			Title:    s.Title,
			Required: s.Required,
		}
	}
	if f.closed {
		return res
	}

	step := f.current()
	values := f.ctx.Values(step.Key)
	res.StepKey = step.Key
	res.Values = values.Clone()
	res.FieldErrors = step.check(values)
	if f.ctx.LastError != nil {
		e := *f.ctx.LastError
		res.LastError = &e
	}
	res.CanContinue = !f.busy && res.FieldErrors == nil
	res.CanBack = !f.busy && f.ctx.StepIndex > 0
	res.CanSkip = !f.busy && !step.Required
	return res
}

// CanContinue reports whether the current step's values satisfy its rules
// and no commit is outstanding
func (f *Flow) CanContinue() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.busy {
		return false
	}
	step := f.current()
	return step.check(f.ctx.Values(step.Key)) == nil
}
