package wizard

import (
	"sync"
	"time"

	"github.com/kode4food/caravan"
	"github.com/kode4food/caravan/message"
	"github.com/kode4food/caravan/topic"

	"github.com/kode4food/learnable/pkg/api"
)

type (
	// Hub fans wizard events out to any number of consumers
	Hub struct {
		topic  topic.Topic[*Event]
		prod   topic.Producer[*Event]
		mu     sync.RWMutex
		closed bool
	}

	// EventType names a wizard transition
	EventType string

	// Event describes one wizard transition
	Event struct {
		Type      EventType        `json:"type"`
		FlowID    api.FlowID       `json:"flow_id"`
		Kind      string           `json:"kind"`
		StepKey   StepKey          `json:"step_key,omitempty"`
		StepIndex int              `json:"step_index"`
		EntityID  api.EntityID     `json:"entity_id,omitempty"`
		Error     *api.ErrorRecord `json:"error,omitempty"`
		Timestamp int64            `json:"timestamp"`
	}
)

const (
	EventStepStarted   EventType = "step_started"
	EventStepCommitted EventType = "step_committed"
	EventStepFailed    EventType = "step_failed"
	EventStepSkipped   EventType = "step_skipped"
	EventStepBack      EventType = "step_back"
	EventValuesSet     EventType = "values_set"
	EventFlowCompleted EventType = "flow_completed"
	EventFlowClosed    EventType = "flow_closed"
)

// NewHub creates an event Hub
func NewHub() *Hub {
	t := caravan.NewTopic[*Event]()
	return &Hub{
		topic: t,
		prod:  t.NewProducer(),
	}
}

// NewConsumer returns a consumer that receives events published from now
// on. Consumers must be closed by the caller
func (h *Hub) NewConsumer() topic.Consumer[*Event] {
	return h.topic.NewConsumer()
}

// Publish sends an event to every consumer. Publishing on a closed Hub is
// a no-op
func (h *Hub) Publish(ev *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	message.Send(h.prod, ev)
}

// Close stops the Hub's producer
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.prod.Close()
}

func (f *Flow) publish(typ EventType, key StepKey, rec *api.ErrorRecord) {
	if f.hub == nil {
		return
	}
	f.hub.Publish(&Event{
		Type:      typ,
		FlowID:    f.id,
		Kind:      f.kind,
		StepKey:   key,
		StepIndex: f.ctx.StepIndex,
		EntityID:  f.ctx.EntityID,
		Error:     rec,
		Timestamp: time.Now().UnixMilli(),
	})
}
