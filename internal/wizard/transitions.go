package wizard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kode4food/learnable/pkg/api"
	"github.com/kode4food/learnable/pkg/log"
)

// completion runs after the flow's lock is released. The fallback is
// cleared only once the callback has accepted the result
type completion struct {
	flowID   api.FlowID
	id       api.EntityID
	fn       CompleteFunc
	fallback Fallback
}

// Advance validates the current step's values and commits the step. On
// success the commit's Update is merged and the flow moves to the next
// step, or completes after the last one. On failure the error is stored
// as the Context's LastError, the index is unchanged, and the error is
// returned. A result that arrives after the flow was closed is discarded
func (f *Flow) Advance(ctx context.Context) error {
	f.mu.Lock()
	if err := f.ready(); err != nil {
		f.mu.Unlock()
		return err
	}

	f.ctx.LastError = nil
	step := f.current()
	if fe := step.check(f.ctx.Values(step.Key)); fe != nil {
		rec := fe.Record()
		f.fail(step, rec)
		f.mu.Unlock()
		return rec
	}

	if step.Commit == nil {
		done := f.resolve(step, EventStepCommitted)
		f.mu.Unlock()
		return done.notify(ctx)
	}

	f.busy = true
	gen := f.generation
	snap := f.ctx.Clone()
	f.publish(EventStepStarted, step.Key, nil)
	f.mu.Unlock()

	upd, err := runCommit(ctx, step, snap)

	f.mu.Lock()
	if gen != f.generation {
		f.mu.Unlock()
		slog.Info("Discarded result of closed wizard",
			log.FlowID(f.id),
			log.StepKey(step.Key))
		return ErrClosed
	}
	f.busy = false
	if err != nil {
		rec := api.AsErrorRecord(err)
		f.fail(step, rec)
		f.mu.Unlock()
		return rec
	}

	f.ctx.merge(upd)
	if upd != nil && !upd.EntityID.IsZero() {
		f.persist(ctx, upd.EntityID)
	}
	done := f.resolve(step, EventStepCommitted)
	f.mu.Unlock()
	return done.notify(ctx)
}

// Skip moves past an optional step without committing it
func (f *Flow) Skip(ctx context.Context) error {
	f.mu.Lock()
	if err := f.ready(); err != nil {
		f.mu.Unlock()
		return err
	}
	step := f.current()
	if step.Required {
		f.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRequired, step.Key)
	}
	f.ctx.LastError = nil
	done := f.resolve(step, EventStepSkipped)
	f.mu.Unlock()
	return done.notify(ctx)
}

// Back returns to the previous step and clears the last error
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ready(); err != nil {
		return err
	}
	if f.ctx.StepIndex == 0 {
		return ErrAtFirstStep
	}
	f.ctx.StepIndex--
	f.ctx.LastError = nil
	f.publish(EventStepBack, f.current().Key, nil)
	return nil
}

// Close abandons the flow. When the entity was already created and steps
// remain, the confirm function must approve first. Closing clears the
// durable fallback and resets the Context. A commit still in flight is
// not cancelled, but its result will be discarded
func (f *Flow) Close(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	needsConfirm := !f.ctx.EntityID.IsZero() && !f.isLast()
	confirm := f.confirm
	f.mu.Unlock()

	if needsConfirm && (confirm == nil || !confirm(ctx)) {
		return ErrCloseCancelled
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.publish(EventFlowClosed, "", nil)
	f.reset(ctx)
	slog.Debug("Wizard closed",
		log.FlowID(f.id))
	return nil
}

func (f *Flow) ready() error {
	if f.closed {
		return ErrClosed
	}
	if f.busy {
		return ErrBusy
	}
	return nil
}

func (f *Flow) fail(step *Step, rec *api.ErrorRecord) {
	f.ctx.LastError = rec
	f.publish(EventStepFailed, step.Key, rec)
	slog.Debug("Wizard step failed",
		log.FlowID(f.id),
		log.StepKey(step.Key),
		log.ErrorKind(rec.Kind),
		log.Error(rec))
}

func (f *Flow) resolve(step *Step, typ EventType) *completion {
	f.publish(typ, step.Key, nil)
	if !f.isLast() {
		f.ctx.StepIndex++
		return nil
	}

	id := f.ctx.EntityID
	f.publish(EventFlowCompleted, "", nil)
	f.clear()
	f.result = id
	f.completed = true
	slog.Info("Wizard completed",
		log.FlowID(f.id),
		log.EntityID(id))
	return &completion{
		flowID:   f.id,
		id:       id,
		fn:       f.complete,
		fallback: f.fallback,
	}
}

func (f *Flow) reset(ctx context.Context) {
	clearFallback(ctx, f.id, f.fallback)
	f.clear()
}

func (f *Flow) clear() {
	f.ctx = newContext()
	f.closed = true
	f.busy = false
	f.generation++
}

func (f *Flow) persist(ctx context.Context, id api.EntityID) {
	if f.fallback == nil {
		return
	}
	if err := f.fallback.Set(ctx, id.String()); err != nil {
		slog.Warn("Failed to persist wizard fallback",
			log.FlowID(f.id),
			log.EntityID(id),
			log.Error(err))
	}
}

// notify hands the result to the completion callback. A callback error
// leaves the fallback in place so the created entity can still be found
func (c *completion) notify(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.fn != nil {
		if err := c.fn(ctx, c.id); err != nil {
			return err
		}
	}
	clearFallback(ctx, c.flowID, c.fallback)
	return nil
}

func clearFallback(ctx context.Context, id api.FlowID, fb Fallback) {
	if fb == nil {
		return
	}
	if err := fb.Clear(ctx); err != nil {
		slog.Warn("Failed to clear wizard fallback",
			log.FlowID(id),
			log.Error(err))
	}
}

func runCommit(
	ctx context.Context, step *Step, snap *Context,
) (upd *Update, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &api.ErrorRecord{
				Kind:    api.ErrorUnknown,
				Message: api.ErrorUnknown.DefaultMessage(),
				Raw:     fmt.Sprint(r),
			}
		}
	}()
	return step.Commit(ctx, snap)
}
