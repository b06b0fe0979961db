package wait

import (
	"testing"
	"time"

	"github.com/kode4food/caravan/topic"

	"github.com/kode4food/learnable/internal/wizard"
	"github.com/kode4food/learnable/pkg/api"
	"github.com/kode4food/learnable/pkg/util"
)

type (
	Wait struct {
		t        *testing.T
		consumer topic.Consumer[*wizard.Event]
		timeout  time.Duration
	}

	EventFilter func(*wizard.Event) bool
)

const DefaultTimeout = time.Second * 5

func On(t *testing.T, consumer topic.Consumer[*wizard.Event]) *Wait {
	return &Wait{
		t:        t,
		consumer: consumer,
		timeout:  DefaultTimeout,
	}
}

func (w *Wait) WithTimeout(timeout time.Duration) *Wait {
	res := *w
	res.timeout = timeout
	return &res
}

// ForEvents waits for matching events from the consumer and returns the
// last one matched
func (w *Wait) ForEvents(count int, filter EventFilter) *wizard.Event {
	w.t.Helper()

	deadline := time.NewTimer(w.timeout)
	defer deadline.Stop()

	var last *wizard.Event
	for seen := 0; seen < count; {
		select {
		case ev, ok := <-w.consumer.Receive():
			if !ok {
				w.t.Fatalf(
					"event consumer closed before receiving %d events", count,
				)
			}
			if !filter(ev) {
				continue
			}
			last = ev
			seen++
		case <-deadline.C:
			w.t.Fatalf("timeout waiting for %d events", count)
		}
	}
	return last
}

// ForEvent waits for a single matching event
func (w *Wait) ForEvent(filter EventFilter) *wizard.Event {
	w.t.Helper()
	return w.ForEvents(1, filter)
}

// And composes event filters and returns true when all match
func And(filters ...EventFilter) EventFilter {
	return func(ev *wizard.Event) bool {
		for _, filter := range filters {
			if !filter(ev) {
				return false
			}
		}
		return true
	}
}

// Type creates a filter for a single event type
func Type(eventType wizard.EventType) EventFilter {
	return Types(eventType)
}

// Types creates a filter for the given event types
func Types(eventTypes ...wizard.EventType) EventFilter {
	lookup := util.SetOf(eventTypes...)
	return func(ev *wizard.Event) bool {
		return ev != nil && lookup.Contains(ev.Type)
	}
}

// FlowIDs matches one event for each of the provided flow IDs
func FlowIDs(ids ...api.FlowID) EventFilter {
	expected := util.SetOf(ids...)
	return func(ev *wizard.Event) bool {
		if ev == nil || !expected.Contains(ev.FlowID) {
			return false
		}
		expected.Remove(ev.FlowID)
		return true
	}
}

// StepKeys matches one event for each of the provided step keys
func StepKeys(keys ...wizard.StepKey) EventFilter {
	expected := util.SetOf(keys...)
	return func(ev *wizard.Event) bool {
		if ev == nil || !expected.Contains(ev.StepKey) {
			return false
		}
		expected.Remove(ev.StepKey)
		return true
	}
}

// StepCommitted matches commit events for the provided step keys
func StepCommitted(keys ...wizard.StepKey) EventFilter {
	return And(Type(wizard.EventStepCommitted), StepKeys(keys...))
}

// StepFailed matches failure events for the provided step keys
func StepFailed(keys ...wizard.StepKey) EventFilter {
	return And(Type(wizard.EventStepFailed), StepKeys(keys...))
}

// FlowTerminal matches completion or close events for the provided flows
func FlowTerminal(ids ...api.FlowID) EventFilter {
	return And(
		Types(wizard.EventFlowCompleted, wizard.EventFlowClosed),
		FlowIDs(ids...),
	)
}

// FlowCompleted matches completion events for the provided flows
func FlowCompleted(ids ...api.FlowID) EventFilter {
	return And(Type(wizard.EventFlowCompleted), FlowIDs(ids...))
}
