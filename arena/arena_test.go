package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScratchRestoresPosition checks that nested
// pushes inside a scratch are fully undone once the scratch ends, restoring
// Position() to its pre-Begin value.
func TestScratchRestoresPosition(t *testing.T) {
	a := New(1 << 10)
	a.Push(64, 8)
	before := a.Position()

	s := Begin(a)
	a.Push(128, 16)
	a.Push(256, 8)
	s.End()

	assert.Equal(t, before, a.Position())
}

// TestNestedScratchesRestoreInOrder checks that strictly nested scratches
// each restore their own savepoint when ended innermost-first.
func TestNestedScratchesRestoreInOrder(t *testing.T) {
	assert := assert.New(t)

	a := New(1 << 10)
	outer := Begin(a)
	a.Push(32, 8)
	outerMid := a.Position()

	inner := Begin(a)
	a.Push(64, 8)
	inner.End()

	assert.Equal(outerMid, a.Position(), "inner scratch end must restore to its own savepoint")

	outer.End()
	assert.Equal(0, a.Position(), "outer scratch end must restore to the arena's start")
}

// TestScratchEndTwicePanics enforces the "ending a scratch more than once is
// a programming error" contract.
func TestScratchEndTwicePanics(t *testing.T) {
	a := New(1 << 10)
	s := Begin(a)
	s.End()

	assert.Panics(t, func() { s.End() })
}

// TestPushAcrossBlockBoundaryStaysStable verifies that a push forcing a new
// chained block still returns memory usable like any other push, and leaves
// the earlier block's bytes intact.
func TestPushAcrossBlockBoundaryStaysStable(t *testing.T) {
	require := require.New(t)

	a := New(64)
	first := a.Push(32, 8)
	for i := range first {
		first[i] = 0xAA
	}

	// Force a new block by requesting more than the remaining committed room
	// (New(64) still commits a defaultBlockSize first block).
	second := a.Push(defaultBlockSize, 8)
	for i := range second {
		second[i] = 0xBB
	}

	for i, b := range first {
		require.Equal(byte(0xAA), b, "first push corrupted at byte %d", i)
	}
	for i, b := range second {
		require.Equal(byte(0xBB), b, "second push wrong content at byte %d", i)
	}
}

// TestPopToRejectsFuturePosition ensures PopTo refuses to move the cursor
// forward, since that would silently resurrect released memory as if it
// were never popped.
func TestPopToRejectsFuturePosition(t *testing.T) {
	a := New(1 << 10)
	a.Push(16, 8)
	pos := a.Position()

	assert.Panics(t, func() { a.PopTo(pos + 100) })
}

// TestReleaseResetsPosition confirms Release returns the arena to its
// just-created state.
func TestReleaseResetsPosition(t *testing.T) {
	assert := assert.New(t)

	a := New(1 << 10)
	a.Push(64, 8)
	a.Push(64, 8)
	a.Release()

	assert.Equal(0, a.Position())
	// The arena must remain usable after Release.
	a.Push(16, 8)
	assert.Equal(16, a.Position())
}
