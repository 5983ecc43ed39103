package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestBufferWriteRejectsOverrun checks the bounds check runs before ever
// touching the queue, so this is safe to exercise with a nil queue.
func TestBufferWriteRejectsOverrun(t *testing.T) {
	b := &Buffer{SizeBytes: 16}
	assert.Error(t, b.Write(nil, 8, make([]byte, 16)), "write past buffer end must fail")
}

// TestBufferWriteRejectsOffsetPastEnd checks a zero-length write whose
// offset already lies past the buffer's end still fails the bounds check.
func TestBufferWriteRejectsOffsetPastEnd(t *testing.T) {
	b := &Buffer{SizeBytes: 16}
	assert.Error(t, b.Write(nil, 17, nil), "write starting past buffer end must fail")
}

// TestBufferReleaseNilBufIsNoop checks Release tolerates an already-released
// (or never-allocated) Buf.
func TestBufferReleaseNilBufIsNoop(t *testing.T) {
	b := &Buffer{}
	b.Release()
	assert.Nil(t, b.Buf)
}
