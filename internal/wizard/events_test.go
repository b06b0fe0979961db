package wizard_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/learnable/internal/assert/wait"
	"github.com/kode4food/learnable/internal/wizard"
	"github.com/kode4food/learnable/pkg/api"
)

func TestHubEvents(t *testing.T) {
	hub := wizard.NewHub()
	defer hub.Close()
	cons := hub.NewConsumer()
	defer cons.Close()

	f, err := wizard.NewFlow("class_setup", []*wizard.Step{
		{
			Key:      "create",
			Required: true,
			Rules:    wizard.Rules{"name": "required"},
			Commit: func(
				context.Context, *wizard.Context,
			) (*wizard.Update, error) {
				return &wizard.Update{EntityID: "42"}, nil
			},
		},
		{Key: "finish"},
	}, wizard.WithEvents(hub), wizard.WithID("flow-9"))
	require.NoError(t, err)
	ctx := context.Background()
	w := wait.On(t, cons)

	_ = f.Advance(ctx)
	ev := w.ForEvent(wait.StepFailed("create"))
	assert.Equal(t, api.FlowID("flow-9"), ev.FlowID)
	assert.Equal(t, "class_setup", ev.Kind)
	assert.Equal(t, wizard.StepKey("create"), ev.StepKey)
	assert.Equal(t, api.ErrorValidation, ev.Error.Kind)

	require.NoError(t, f.SetValue("create", "name", "Math 9B"))
	w.ForEvent(wait.Type(wizard.EventValuesSet))

	require.NoError(t, f.Advance(ctx))
	ev = w.ForEvent(wait.Type(wizard.EventStepStarted))
	assert.Equal(t, 0, ev.StepIndex)
	ev = w.ForEvent(wait.StepCommitted("create"))
	assert.Equal(t, api.EntityID("42"), ev.EntityID)

	require.NoError(t, f.Advance(ctx))
	ev = w.ForEvent(wait.FlowCompleted("flow-9"))
	assert.Equal(t, api.EntityID("42"), ev.EntityID)
	assert.Equal(t, 1, ev.StepIndex)
}

func TestHubClosedPublishIsNoop(t *testing.T) {
	hub := wizard.NewHub()
	hub.Close()
	hub.Close()
	assert.NotPanics(t, func() {
		hub.Publish(&wizard.Event{Type: wizard.EventFlowClosed})
	})
}
