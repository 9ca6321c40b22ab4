package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfilerReportsAfterInterval(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	start := time.Unix(1000, 0)
	clock := start
	p := NewProfiler("tick", logger)
	p.now = func() time.Time { return clock }
	p.lastTime = start
	p.SetExtra(func() []slog.Attr { return []slog.Attr{slog.Int("loaded", 7)} })

	clock = start.Add(500 * time.Millisecond)
	assert.False(t, p.Tick())
	assert.Empty(t, buf.String())

	clock = start.Add(1100 * time.Millisecond)
	require.True(t, p.Tick())
	out := buf.String()
	assert.Contains(t, out, "loop=tick")
	assert.Contains(t, out, "loaded=7")

	// counter resets after a report
	assert.False(t, p.Tick())
}
