package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestTickReportsAfterInterval checks that Tick stays silent inside the
// update interval and emits exactly one stats line once it elapses.
func TestTickReportsAfterInterval(t *testing.T) {
	assert := assert.New(t)

	var lines []string
	p := NewProfiler(
		WithUpdateInterval(10*time.Millisecond),
		WithPrintf(func(format string, args ...any) {
			lines = append(lines, format)
		}),
	)

	assert.False(p.Tick())
	assert.Empty(lines)

	time.Sleep(15 * time.Millisecond)
	assert.True(p.Tick())
	assert.Len(lines, 1)
}

// TestOptionsIgnoreInvalidValues checks the option guards: a non-positive
// interval and a nil sink leave the defaults in place.
func TestOptionsIgnoreInvalidValues(t *testing.T) {
	assert := assert.New(t)

	p := NewProfiler(WithUpdateInterval(0), WithPrintf(nil))
	assert.Equal(time.Second, p.updateInterval)
	assert.NotNil(p.printf)
}
