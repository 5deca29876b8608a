package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	// idempotent
	require.NoError(t, Register(reg))

	IncStart("ai-vision")
	IncStart("ai-vision")
	IncStop("ai-vision")
	IncFailure("qr-reader")
	ObserveRunDuration("ai-vision", 1.5)
	RecordStateTransition("ai-vision", "idle", "starting")
	SetCurrentState("ai-vision", "running", true)

	assert.GreaterOrEqual(t, testutil.ToFloat64(taskStarts.WithLabelValues("ai-vision")), 2.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(taskStops.WithLabelValues("ai-vision")), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(taskFailures.WithLabelValues("qr-reader")), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(stateTransitions.WithLabelValues("ai-vision", "idle", "starting")), 1.0)
	assert.Equal(t, 1.0, testutil.ToFloat64(currentStates.WithLabelValues("ai-vision", "running")))
}

func TestHandlerServes(t *testing.T) {
	require.NotNil(t, Handler())
}
