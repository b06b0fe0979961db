package wizard_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/learnable/internal/store"
	"github.com/kode4food/learnable/internal/wizard"
	"github.com/kode4food/learnable/pkg/api"
)

func newFallback() *store.Key {
	return store.NewKey(store.NewMemory(), "temp_created_class_id")
}

func threeSteps(commits *atomic.Int32) []*wizard.Step {
	commit := func(
		_ context.Context, c *wizard.Context,
	) (*wizard.Update, error) {
		commits.Add(1)
		return &wizard.Update{EntityID: "101"}, nil
	}
	return []*wizard.Step{
		{
			Key:      "create",
			Title:    "Create",
			Required: true,
			Rules:    wizard.Rules{"name": "required,notblank"},
			Commit:   commit,
		},
		{Key: "optional", Title: "Optional", Commit: commit},
		{Key: "last", Title: "Last", Commit: commit},
	}
}

func TestNewFlow(t *testing.T) {
	_, err := wizard.NewFlow("empty", nil)
	assert.ErrorIs(t, err, wizard.ErrNoSteps)

	_, err = wizard.NewFlow("dup", []*wizard.Step{{Key: "a"}, {Key: "a"}})
	assert.ErrorIs(t, err, wizard.ErrDuplicateStep)

	f, err := wizard.NewFlow("ok", []*wizard.Step{{Key: "a"}},
		wizard.WithID("flow-1"),
	)
	require.NoError(t, err)
	assert.Equal(t, api.FlowID("flow-1"), f.ID())
	assert.Equal(t, "ok", f.Kind())
	assert.Len(t, f.Steps(), 1)

	st := f.State()
	assert.Equal(t, 0, st.StepIndex)
	assert.Equal(t, wizard.StepKey("a"), st.StepKey)
	assert.False(t, st.Closed)
}

func TestAdvanceValidation(t *testing.T) {
	var commits atomic.Int32
	f, err := wizard.NewFlow("test", threeSteps(&commits))
	require.NoError(t, err)
	ctx := context.Background()

	err = f.Advance(ctx)
	rec := api.AsErrorRecord(err)
	require.NotNil(t, rec)
	assert.Equal(t, api.ErrorValidation, rec.Kind)
	assert.Equal(t, "This field is required", rec.Message)
	assert.Zero(t, commits.Load())

	st := f.State()
	assert.Equal(t, 0, st.StepIndex)
	assert.Equal(t, rec, st.LastError)
	assert.False(t, st.CanContinue)

	require.NoError(t, f.SetValue("create", "name", "   "))
	assert.False(t, f.CanContinue())
	assert.Equal(t, wizard.FieldErrors{
		"name": "This field cannot be blank",
	}, f.State().FieldErrors)

	require.NoError(t, f.SetValue("create", "name", "Math 9B"))
	assert.True(t, f.CanContinue())
	require.NoError(t, f.Advance(ctx))
	assert.Equal(t, int32(1), commits.Load())

	st = f.State()
	assert.Equal(t, 1, st.StepIndex)
	assert.Nil(t, st.LastError)
	assert.Equal(t, api.EntityID("101"), st.EntityID)
	assert.True(t, st.CanBack)
	assert.True(t, st.CanSkip)
}

func TestStepMessages(t *testing.T) {
	f, err := wizard.NewFlow("test", []*wizard.Step{{
		Key:      "pick",
		Rules:    wizard.Rules{"student": "required", "level": "oneof=A B"},
		Messages: map[string]string{"student": "Please select a student."},
	}})
	require.NoError(t, err)
	require.NoError(t, f.SetValue("pick", "level", "C"))

	assert.Equal(t, wizard.FieldErrors{
		"level":   "Please select one of: A B",
		"student": "Please select a student.",
	}, f.State().FieldErrors)

	err = f.Advance(context.Background())
	assert.Equal(t, "Please select one of: A B", api.AsErrorRecord(err).Message)
}

func TestChoiceAcceptsBooleans(t *testing.T) {
	f, err := wizard.NewFlow("nccd_report", []*wizard.Step{
		{
			Key:      "evidence",
			Required: true,
			Rules: wizard.Rules{
				"has_evidence": "required,oneof=Yes No",
			},
		},
		{Key: "comments"},
	})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, f.SetValue("evidence", "has_evidence", float64(2)))
	err = f.Advance(ctx)
	assert.Equal(t, api.ErrorValidation, api.KindOf(err))

	st := f.State()
	assert.Equal(t, wizard.StepKey("evidence"), st.StepKey)
	assert.False(t, st.CanContinue)

	require.NoError(t, f.SetValue("evidence", "has_evidence", false))
	assert.True(t, f.CanContinue())
	require.NoError(t, f.Advance(ctx))
	assert.Equal(t, wizard.StepKey("comments"), f.State().StepKey)

	require.NoError(t, f.Back())
	require.NoError(t, f.SetValue("evidence", "has_evidence", true))
	require.NoError(t, f.Advance(ctx))
	require.NoError(t, f.Advance(ctx))
	assert.True(t, f.State().Completed)
}

func TestGatingTracksValues(t *testing.T) {
	var commits atomic.Int32
	f, err := wizard.NewFlow("test", threeSteps(&commits))
	require.NoError(t, err)

	rules := f.Steps()[0].Rules
	for _, v := range []any{nil, "", " ", "x", "Math 9B", nil, "y"} {
		require.NoError(t, f.SetValue("create", "name", v))
		values := f.Context().Values("create")
		assert.Equal(t, rules.Check(values) == nil, f.CanContinue())
		assert.Equal(t, f.CanContinue(), f.State().CanContinue)
	}
}

func TestCommitFailureKeepsContext(t *testing.T) {
	calls := 0
	steps := []*wizard.Step{{
		Key: "upload",
		Commit: func(
			_ context.Context, c *wizard.Context,
		) (*wizard.Update, error) {
			calls++
			c.EntityID = "mutated"
			c.Attachments["upload"] = wizard.Values{"partial": true}
			if calls == 1 {
				return &wizard.Update{EntityID: "partial"},
					api.NewError(api.ErrorNetwork, api.MsgNetworkFailure)
			}
			return &wizard.Update{EntityID: "7"}, nil
		},
	}, {Key: "done"}}

	f, err := wizard.NewFlow("test", steps)
	require.NoError(t, err)
	ctx := context.Background()

	err = f.Advance(ctx)
	assert.Equal(t, api.ErrorNetwork, api.KindOf(err))
	c := f.Context()
	assert.Equal(t, 0, c.StepIndex)
	assert.True(t, c.EntityID.IsZero())
	assert.Empty(t, c.Values("upload"))
	assert.Equal(t, api.ErrorNetwork, c.LastError.Kind)

	require.NoError(t, f.Advance(ctx))
	c = f.Context()
	assert.Equal(t, 1, c.StepIndex)
	assert.Equal(t, api.EntityID("7"), c.EntityID)
	assert.Nil(t, c.LastError)
}

func TestCommitPanicBecomesError(t *testing.T) {
	f, err := wizard.NewFlow("test", []*wizard.Step{{
		Key: "boom",
		Commit: func(context.Context, *wizard.Context) (*wizard.Update, error) {
			panic("exploded")
		},
	}})
	require.NoError(t, err)

	err = f.Advance(context.Background())
	rec := api.AsErrorRecord(err)
	assert.Equal(t, api.ErrorUnknown, rec.Kind)
	assert.Equal(t, "exploded", rec.Raw)
	assert.False(t, f.State().Busy)
}

func TestBackAndSkip(t *testing.T) {
	var commits atomic.Int32
	f, err := wizard.NewFlow("test", threeSteps(&commits))
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, f.Back(), wizard.ErrAtFirstStep)
	assert.ErrorIs(t, f.Skip(ctx), wizard.ErrRequired)

	require.NoError(t, f.SetValue("create", "name", "Math 9B"))
	require.NoError(t, f.Advance(ctx))
	require.NoError(t, f.Skip(ctx))
	assert.Equal(t, 2, f.State().StepIndex)
	assert.Equal(t, int32(1), commits.Load())

	require.NoError(t, f.Back())
	require.NoError(t, f.Back())
	st := f.State()
	assert.Equal(t, 0, st.StepIndex)
	assert.Equal(t, "Math 9B", st.Values.String("name"))
	assert.Equal(t, api.EntityID("101"), st.EntityID)
}

func TestSetValueErrors(t *testing.T) {
	var commits atomic.Int32
	f, err := wizard.NewFlow("test", threeSteps(&commits))
	require.NoError(t, err)

	assert.ErrorIs(t, f.SetValue("nope", "x", "y"), wizard.ErrUnknownStep)
	require.NoError(t, f.Close(context.Background()))
	assert.ErrorIs(t, f.SetValue("create", "x", "y"), wizard.ErrClosed)
}

func TestCompletion(t *testing.T) {
	var commits atomic.Int32
	fb := newFallback()
	var completed []api.EntityID
	f, err := wizard.NewFlow("test", threeSteps(&commits),
		wizard.WithFallback(fb),
		wizard.WithCompletion(func(_ context.Context, id api.EntityID) error {
			completed = append(completed, id)
			return nil
		}),
	)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, f.SetValue("create", "name", "Math 9B"))
	require.NoError(t, f.Advance(ctx))
	v, err := fb.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "101", v)

	require.NoError(t, f.Skip(ctx))
	require.NoError(t, f.Skip(ctx))

	assert.Equal(t, []api.EntityID{"101"}, completed)
	v, err = fb.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, v)

	st := f.State()
	assert.True(t, st.Closed)
	assert.True(t, st.Completed)
	assert.Equal(t, api.EntityID("101"), st.Result)
	assert.True(t, st.EntityID.IsZero())
	assert.False(t, st.CanContinue)

	assert.ErrorIs(t, f.Advance(ctx), wizard.ErrClosed)
	assert.ErrorIs(t, f.Skip(ctx), wizard.ErrClosed)
	assert.ErrorIs(t, f.Back(), wizard.ErrClosed)
	assert.NoError(t, f.Close(ctx))
}

func TestCompletionErrorsAreReturned(t *testing.T) {
	boom := errors.New("navigation failed")
	f, err := wizard.NewFlow("test", []*wizard.Step{{Key: "only"}},
		wizard.WithCompletion(func(context.Context, api.EntityID) error {
			return boom
		}),
	)
	require.NoError(t, err)
	assert.ErrorIs(t, f.Advance(context.Background()), boom)
	assert.True(t, f.State().Closed)
}

func TestFallbackClearedAfterCompletion(t *testing.T) {
	ctx := context.Background()
	run := func(t *testing.T, result error) (string, string) {
		var commits atomic.Int32
		fb := newFallback()
		var seen string
		f, err := wizard.NewFlow("test", threeSteps(&commits),
			wizard.WithFallback(fb),
			wizard.WithCompletion(func(ctx context.Context, _ api.EntityID) error {
				seen, _ = fb.Get(ctx)
				return result
			}),
		)
		require.NoError(t, err)
		require.NoError(t, f.SetValue("create", "name", "Math 9B"))
		require.NoError(t, f.Advance(ctx))
		require.NoError(t, f.Skip(ctx))
		assert.ErrorIs(t, f.Skip(ctx), result)
		assert.True(t, f.State().Completed)

		left, err := fb.Get(ctx)
		require.NoError(t, err)
		return seen, left
	}

	t.Run("accepted", func(t *testing.T) {
		seen, left := run(t, nil)
		assert.Equal(t, "101", seen)
		assert.Empty(t, left)
	})

	t.Run("rejected", func(t *testing.T) {
		seen, left := run(t, errors.New("navigation failed"))
		assert.Equal(t, "101", seen)
		assert.Equal(t, "101", left)
	})
}

func TestCompletionPanicsPropagate(t *testing.T) {
	f, err := wizard.NewFlow("test", []*wizard.Step{{Key: "only"}},
		wizard.WithCompletion(func(context.Context, api.EntityID) error {
			panic("callback")
		}),
	)
	require.NoError(t, err)
	assert.PanicsWithValue(t, "callback", func() {
		_ = f.Advance(context.Background())
	})
	assert.True(t, f.State().Closed)
}

func TestCloseConfirmation(t *testing.T) {
	var commits atomic.Int32
	ctx := context.Background()

	t.Run("no entity closes without asking", func(t *testing.T) {
		asked := false
		f, err := wizard.NewFlow("test", threeSteps(&commits),
			wizard.WithConfirm(func(context.Context) bool {
				asked = true
				return false
			}),
		)
		require.NoError(t, err)
		require.NoError(t, f.Close(ctx))
		assert.False(t, asked)
		assert.True(t, f.State().Closed)
	})

	t.Run("entity requires confirmation", func(t *testing.T) {
		fb := newFallback()
		f, err := wizard.NewFlow("test", threeSteps(&commits),
			wizard.WithFallback(fb),
		)
		require.NoError(t, err)
		require.NoError(t, f.SetValue("create", "name", "Math 9B"))
		require.NoError(t, f.Advance(ctx))

		assert.ErrorIs(t, f.Close(ctx), wizard.ErrCloseCancelled)
		st := f.State()
		assert.False(t, st.Closed)
		assert.Equal(t, api.EntityID("101"), st.EntityID)

		require.NoError(t, f.Close(wizard.Confirmed(ctx)))
		st = f.State()
		assert.True(t, st.Closed)
		assert.False(t, st.Completed)
		assert.True(t, st.EntityID.IsZero())
		v, _ := fb.Get(ctx)
		assert.Empty(t, v)
	})

	t.Run("last step closes without asking", func(t *testing.T) {
		f, err := wizard.NewFlow("test", threeSteps(&commits),
			wizard.WithConfirm(func(context.Context) bool { return false }),
		)
		require.NoError(t, err)
		require.NoError(t, f.SetValue("create", "name", "Math 9B"))
		require.NoError(t, f.Advance(ctx))
		require.NoError(t, f.Skip(ctx))
		require.NoError(t, f.Close(ctx))
		assert.True(t, f.State().Closed)
	})
}

func TestBusyRejectsSecondCommit(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32
	f, err := wizard.NewFlow("test", []*wizard.Step{{
		Key: "slow",
		Commit: func(context.Context, *wizard.Context) (*wizard.Update, error) {
			calls.Add(1)
			close(started)
			<-release
			return &wizard.Update{EntityID: "1"}, nil
		},
	}, {Key: "next"}})
	require.NoError(t, err)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- f.Advance(ctx) }()
	<-started

	assert.True(t, f.State().Busy)
	assert.False(t, f.CanContinue())
	assert.ErrorIs(t, f.Advance(ctx), wizard.ErrBusy)
	assert.ErrorIs(t, f.Skip(ctx), wizard.ErrBusy)
	assert.ErrorIs(t, f.Back(), wizard.ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, f.State().StepIndex)
}

func TestConcurrentAdvanceCommitsOnce(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	f, err := wizard.NewFlow("test", []*wizard.Step{{
		Key: "slow",
		Commit: func(context.Context, *wizard.Context) (*wizard.Update, error) {
			calls.Add(1)
			<-release
			return nil, nil
		},
	}, {Key: "next"}})
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	var busy atomic.Int32
	for range workers {
		wg.Go(func() {
			if errors.Is(f.Advance(context.Background()), wizard.ErrBusy) {
				busy.Add(1)
			}
		})
	}
	assert.Eventually(t, func() bool {
		return busy.Load() == workers-1
	}, 5*time.Second, 10*time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, f.State().StepIndex)
}

func TestCloseDiscardsInFlightResult(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	fb := newFallback()
	completed := false
	f, err := wizard.NewFlow("test", []*wizard.Step{{
		Key: "create",
		Commit: func(context.Context, *wizard.Context) (*wizard.Update, error) {
			close(started)
			<-release
			return &wizard.Update{EntityID: "55"}, nil
		},
	}},
		wizard.WithFallback(fb),
		wizard.WithCompletion(func(context.Context, api.EntityID) error {
			completed = true
			return nil
		}),
	)
	require.NoError(t, err)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- f.Advance(ctx) }()
	<-started

	require.NoError(t, f.Close(ctx))
	close(release)
	assert.ErrorIs(t, <-done, wizard.ErrClosed)

	st := f.State()
	assert.True(t, st.Closed)
	assert.False(t, st.Completed)
	assert.True(t, st.Result.IsZero())
	assert.False(t, completed)
	v, _ := fb.Get(ctx)
	assert.Empty(t, v)
}

func TestRandomSequencesStayInBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	ctx := context.Background()

	for run := range 200 {
		var commits atomic.Int32
		steps := threeSteps(&commits)
		fail := rng.IntN(2) == 0
		steps[2].Commit = func(
			context.Context, *wizard.Context,
		) (*wizard.Update, error) {
			if fail && rng.IntN(3) == 0 {
				return nil, api.NewError(api.ErrorServerError, "try again")
			}
			return nil, nil
		}
		completions := 0
		f, err := wizard.NewFlow("test", steps,
			wizard.WithCompletion(func(context.Context, api.EntityID) error {
				completions++
				return nil
			}),
		)
		require.NoError(t, err)
		require.NoError(t, f.SetValue("create", "name", "n"))

		for range 30 {
			before := f.State()
			switch rng.IntN(3) {
			case 0:
				_ = f.Advance(ctx)
			case 1:
				_ = f.Skip(ctx)
			default:
				_ = f.Back()
			}
			st := f.State()
			if st.Closed {
				assert.False(t, before.Closed, "run %d", run)
				assert.Equal(t, 2, before.StepIndex, "run %d", run)
				assert.True(t, st.Completed, "run %d", run)
				break
			}
			assert.GreaterOrEqual(t, st.StepIndex, 0, "run %d", run)
			assert.Less(t, st.StepIndex, len(steps), "run %d", run)
		}
		assert.LessOrEqual(t, completions, 1, "run %d", run)
		assert.Equal(t, f.State().Completed, completions == 1, "run %d", run)
	}
}
