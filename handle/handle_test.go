package handle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestZeroHandleIsNotBound checks that the distinguished zero handle always
// reports "not bound" from Lookup rather than an arbitrary slot.
func TestZeroHandleIsNotBound(t *testing.T) {
	r := NewRegistry[int](1)
	v, ok := r.Lookup(Zero)
	assert.False(t, ok)
	assert.Zero(t, v)
}

// TestReleaseTwiceIsNoop checks that releasing a handle twice is a no-op
// and does not corrupt other handles.
func TestReleaseTwiceIsNoop(t *testing.T) {
	assert := assert.New(t)

	r := NewRegistry[string](1)
	h := r.Insert("a")
	other := r.Insert("b")

	r.Release(h)
	r.Release(h)

	_, ok := r.Lookup(h)
	assert.False(ok, "Lookup(h) after double release must fail")
	v, ok := r.Lookup(other)
	assert.True(ok)
	assert.Equal("b", v, "double-releasing h must not corrupt other handles")
}

// TestReleasedSlotReuseBumpsGeneration ensures a stale handle into a
// recycled slot is rejected even though the slot index matches.
func TestReleasedSlotReuseBumpsGeneration(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	r := NewRegistry[string](1)
	h1 := r.Insert("first")
	r.Release(h1)
	h2 := r.Insert("second")

	require.NotEqual(h1, h2, "recycled slot must mint a distinct handle")
	_, ok := r.Lookup(h1)
	assert.False(ok, "stale handle must not resolve after slot reuse")
	v, ok := r.Lookup(h2)
	assert.True(ok)
	assert.Equal("second", v)
}

// TestCrossRegistryHandleRejected verifies a handle minted by one registry's
// kind tag never resolves against a different registry, even with a
// matching slot index.
func TestCrossRegistryHandleRejected(t *testing.T) {
	textures := NewRegistry[int](1)
	buffers := NewRegistry[int](2)

	h := textures.Insert(42)
	_, ok := buffers.Lookup(h)
	assert.False(t, ok, "Lookup across registries of different kind must fail")
}

// TestHandlesListsOnlyLive confirms Handles() reflects releases.
func TestHandlesListsOnlyLive(t *testing.T) {
	r := NewRegistry[int](1)
	a := r.Insert(1)
	b := r.Insert(2)
	r.Release(a)

	assert.Equal(t, []Handle{b}, r.Handles())
}
