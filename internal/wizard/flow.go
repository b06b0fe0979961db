// Package wizard drives multi-step creation flows. A Flow walks an ordered
// list of Steps, committing each through a caller-supplied function that
// sees a private snapshot of the accumulated Context. A commit result is
// merged only on success, and a busy flag prevents a second commit from
// starting while one is outstanding
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kode4food/learnable/pkg/api"
)

type (
	// Flow is one running wizard
	Flow struct {
		id         api.FlowID
		kind       string
		steps      []*Step
		ctx        *Context
		fallback   Fallback
		complete   CompleteFunc
		confirm    ConfirmFunc
		hub        *Hub
		result     api.EntityID
		generation int
		busy       bool
		closed     bool
		completed  bool
		mu         sync.Mutex
	}

	// Step is the static description of one wizard step
	Step struct {
		Key      StepKey
		Title    string
		Rules    Rules
		Messages map[string]string
		Commit   CommitFunc
		Required bool
	}

	// StepKey identifies a step within a wizard
	StepKey string

	// CommitFunc performs the work of a step. It receives a snapshot of
	// the flow's Context and returns the Update to merge on success
	CommitFunc func(context.Context, *Context) (*Update, error)

	// CompleteFunc receives the entity id once the last step resolves
	CompleteFunc func(context.Context, api.EntityID) error

	// ConfirmFunc approves discarding a flow whose entity already exists
	ConfirmFunc func(context.Context) bool

	// Fallback is the durable single-key store that lets a flow recover
	// its entity id after the process that created it went away
	Fallback interface {
		Get(context.Context) (string, error)
		Set(context.Context, string) error
		Clear(context.Context) error
	}

	// Option configures a Flow
	Option func(*Flow)
)

var (
	ErrNoSteps        = errors.New("wizard has no steps")
	ErrDuplicateStep  = errors.New("duplicate step key")
	ErrUnknownStep    = errors.New("unknown step key")
	ErrBusy           = errors.New("a step is already in progress")
	ErrClosed         = errors.New("wizard is closed")
	ErrRequired       = errors.New("step is required and cannot be skipped")
	ErrAtFirstStep    = errors.New("already at the first step")
	ErrCloseCancelled = errors.New("close was not confirmed")
)

// NewFlow creates a Flow positioned at its first step
func NewFlow(kind string, steps []*Step, opts ...Option) (*Flow, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	seen := map[StepKey]bool{}
	for _, s := range steps {
		if seen[s.Key] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStep, s.Key)
		}
		seen[s.Key] = true
	}

	f := &Flow{
		id:      api.NewFlowID(),
		kind:    kind,
		steps:   steps,
		ctx:     newContext(),
		confirm: IsConfirmed,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// WithID replaces the generated flow id
func WithID(id api.FlowID) Option {
	return func(f *Flow) {
		f.id = id
	}
}

// WithFallback persists the entity id under a durable key while the flow
// is incomplete
func WithFallback(fb Fallback) Option {
	return func(f *Flow) {
		f.fallback = fb
	}
}

// WithCompletion registers the callback invoked when the last step
// resolves
func WithCompletion(fn CompleteFunc) Option {
	return func(f *Flow) {
		f.complete = fn
	}
}

// WithConfirm replaces the close confirmation. The default approves only
// contexts marked with Confirmed
func WithConfirm(fn ConfirmFunc) Option {
	return func(f *Flow) {
		f.confirm = fn
	}
}

// WithEvents publishes every transition on hub
func WithEvents(hub *Hub) Option {
	return func(f *Flow) {
		f.hub = hub
	}
}

// WithAttachments seeds step values, as when editing an existing entity
func WithAttachments(att map[StepKey]Values) Option {
	return func(f *Flow) {
		for k, v := range att {
			f.ctx.Attachments[k] = v.Clone()
		}
	}
}

// WithEntityID seeds the entity id, as when editing an existing entity
func WithEntityID(id api.EntityID) Option {
	return func(f *Flow) {
		f.ctx.EntityID = id
	}
}

// ID returns the flow's identifier
func (f *Flow) ID() api.FlowID {
	return f.id
}

// Kind returns the name of the wizard this flow runs
func (f *Flow) Kind() string {
	return f.kind
}

// Steps returns the flow's step definitions
func (f *Flow) Steps() []*Step {
	return f.steps
}

// Context returns a snapshot of the flow's accumulated context
func (f *Flow) Context() *Context {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ctx.Clone()
}

// SetValue records a form value on a step
func (f *Flow) SetValue(key StepKey, field string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}
	if f.stepIndex(key) < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownStep, key)
	}
	vals := f.ctx.Attachments[key]
	if vals == nil {
		vals = Values{}
		f.ctx.Attachments[key] = vals
	}
	if value == nil {
		delete(vals, field)
	} else {
		vals[field] = value
	}
	f.publish(EventValuesSet, key, nil)
	return nil
}

func (f *Flow) stepIndex(key StepKey) int {
	for i, s := range f.steps {
		if s.Key == key {
			return i
		}
	}
	return -1
}

func (f *Flow) current() *Step {
	return f.steps[f.ctx.StepIndex]
}

func (f *Flow) isLast() bool {
	return f.ctx.StepIndex == len(f.steps)-1
}
