package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndGauges(t *testing.T) {
	require.NoError(t, InitMetrics(""))
	t.Cleanup(func() { _ = Close() })

	Incr("annotation_created")
	Incr("annotation_created")
	SetGauge("sessions_active", 7)

	assert.Equal(t, int64(2), Value("annotation_created"))
	assert.Equal(t, int64(7), Value("sessions_active"))

	snap := Snapshot()
	assert.Equal(t, int64(2), snap["annotation_created"])
	snap["annotation_created"] = 100
	assert.Equal(t, int64(2), Value("annotation_created"), "snapshot must be a copy")

	_, err := Series("annotation_created", time.Now().Add(-time.Minute))
	assert.NoError(t, err)
}

func TestWithoutStorage(t *testing.T) {
	require.NoError(t, Close())
	Incr("orphan")
	assert.Equal(t, int64(1), Value("orphan"))
	points, err := Series("orphan", time.Now().Add(-time.Minute))
	assert.NoError(t, err)
	assert.Nil(t, points)
}
