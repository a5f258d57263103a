package reembed

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressReportsAtIntervals(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 25)

	tracker.Start()
	tracker.Update(10)
	assert.Empty(t, buf.String(), "below interval, no report yet")

	tracker.Update(30)
	assert.Contains(t, buf.String(), "30/100")

	tracker.Finish()
	assert.Contains(t, buf.String(), "100/100")
	assert.Contains(t, buf.String(), "100.0%")
}

func TestProgressIgnoresUpdatesBeforeStart(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 1)

	tracker.Update(5)
	tracker.Finish()
	assert.Empty(t, buf.String())
}

func TestProgressCapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 1)

	tracker.Start()
	tracker.Update(50)
	assert.Contains(t, buf.String(), "10/10")
	assert.False(t, strings.Contains(buf.String(), "50/10"))
}

func TestProgressElapsed(t *testing.T) {
	tracker := NewProgressTracker(&bytes.Buffer{}, 10, 1)
	assert.Zero(t, tracker.Elapsed())

	tracker.Start()
	assert.GreaterOrEqual(t, tracker.Elapsed().Nanoseconds(), int64(0))
}
