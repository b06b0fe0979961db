package assert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/learnable/internal/config"
	"github.com/kode4food/learnable/internal/wizard"
	"github.com/kode4food/learnable/pkg/api"
)

// Wrapper wraps testify assertions with LearnABLE-specific helpers
type Wrapper struct {
	*testing.T
	*assert.Assertions
}

// DefaultRetryInterval is the default polling interval for Eventually checks
const DefaultRetryInterval = 10 * time.Millisecond

// New creates a new test assertion wrapper
func New(t *testing.T) *Wrapper {
	return &Wrapper{
		T:          t,
		Assertions: assert.New(t),
	}
}

// AtStep asserts that a flow is open and positioned at the given step
func (w *Wrapper) AtStep(f *wizard.Flow, key wizard.StepKey) *wizard.State {
	w.Helper()
	st := f.State()
	w.False(st.Closed, "flow should be open")
	w.Equal(key, st.StepKey)
	return st
}

// Completed asserts that a flow finished with the given entity
func (w *Wrapper) Completed(f *wizard.Flow, id api.EntityID) {
	w.Helper()
	st := f.State()
	w.True(st.Completed, "flow should be completed")
	w.True(st.Closed, "completed flow should be closed")
	w.Equal(id, st.Result)
}

// ErrorKind asserts that err carries an ErrorRecord of the given kind and
// returns the record
func (w *Wrapper) ErrorKind(err error, kind api.ErrorKind) *api.ErrorRecord {
	w.Helper()
	rec := api.AsErrorRecord(err)
	if !w.NotNil(rec, "expected an error record, got %v", err) {
		return nil
	}
	w.Equal(kind, rec.Kind)
	return rec
}

// ConfigValid asserts that a configuration is valid
func (w *Wrapper) ConfigValid(cfg *config.Config) {
	w.Helper()
	w.NoError(cfg.Validate())
	w.True(cfg.APIPort > 0 && cfg.APIPort <= config.MaxTCPPort)
	w.True(cfg.MaxFlows > 0)
}

// ConfigInvalid asserts that a configuration is invalid
func (w *Wrapper) ConfigInvalid(cfg *config.Config, expected error) {
	w.Helper()
	w.ErrorIs(cfg.Validate(), expected)
}

// Eventually runs a condition repeatedly until it passes or times out
func (w *Wrapper) Eventually(
	condition func() bool, timeout time.Duration, msg string, args ...any,
) {
	w.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(DefaultRetryInterval)
	}
	w.Fail(msg, args...)
}
