package passlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanso-gfx/kanso/handle"
)

// TestAppendInstanceOpensNewBatchOnOverflow checks the batching
// contract: once a batch's instance byte-count would exceed its capacity,
// the next AppendInstance opens a new batch in the same group rather than
// growing the full one.
func TestAppendInstanceOpensNewBatchOnOverflow(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var bl BatchList
	const stride = 96
	inst := make([]byte, stride)

	// Capacity for exactly two instances; the third must spill into a new batch.
	cap := stride * 2
	bl.AppendInstance(stride, cap, inst)
	bl.AppendInstance(stride, cap, inst)
	require.Len(bl.Batches(), 1, "2 instances fit one 2-instance-capacity batch")

	bl.AppendInstance(stride, cap, inst)
	batches := bl.Batches()
	require.Len(batches, 2, "a 3rd instance must overflow into a new batch")
	assert.Len(batches[0].Bytes, stride*2)
	assert.Len(batches[1].Bytes, stride)
}

// TestAppendInstancePreservesOrder checks instances within a batch and
// batches within a list stay in append order.
func TestAppendInstancePreservesOrder(t *testing.T) {
	require := require.New(t)

	var bl BatchList
	const stride = 4
	for i := byte(0); i < 3; i++ {
		bl.AppendInstance(stride, stride*3, []byte{i, i, i, i})
	}
	batches := bl.Batches()
	require.Len(batches, 1)
	require.Equal([]byte{0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2}, batches[0].Bytes)
}

// TestMesh3DGroupMapCoalescesSameKey checks groups sharing the same
// (vertex buffer, index buffer, albedo texture) resolve to one entry, per
// the hash-map-of-3D-batch-groups data model.
func TestMesh3DGroupMapCoalescesSameKey(t *testing.T) {
	assert := assert.New(t)

	m := NewMesh3DGroupMap()
	vb := handle.Handle{Lo: 1}
	ib := handle.Handle{Lo: 2}
	tex := handle.Handle{Lo: 3}

	g1 := m.GetOrCreate(vb, ib, tex)
	g2 := m.GetOrCreate(vb, ib, tex)
	assert.Same(g1, g2, "identical keys must coalesce into one group")

	other := handle.Handle{Lo: 4}
	g3 := m.GetOrCreate(vb, ib, other)
	assert.NotSame(g1, g3, "a different albedo texture must get its own group")
	assert.Len(m.Groups(), 2)
}

// TestMesh3DGroupMapPreservesCreationOrder checks Groups() iterates in
// first-creation order, matching the order batch groups were first touched.
func TestMesh3DGroupMapPreservesCreationOrder(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	m := NewMesh3DGroupMap()
	keys := []handle.Handle{{Lo: 1}, {Lo: 2}, {Lo: 3}}
	for _, k := range keys {
		m.GetOrCreate(k, handle.Zero, handle.Zero)
	}
	// Touch the first key again; order must not change.
	m.GetOrCreate(keys[0], handle.Zero, handle.Zero)

	groups := m.Groups()
	require.Len(groups, 3)
	for i, k := range keys {
		assert.Equal(k, groups[i].VertexBuffer, "Groups()[%d]", i)
	}
}

// TestPassListResetRetainsCapacity confirms Reset clears appended passes
// without discarding the backing slice, matching the per-frame reuse the
// frame pipeline relies on.
func TestPassListResetRetainsCapacity(t *testing.T) {
	assert := assert.New(t)

	pl := New()
	pl.AppendUI(nil)
	pl.AppendBlur(BlurParams{})
	pl.AppendMesh3D(Mesh3DParams{})
	assert.Len(pl.Passes(), 3)

	pl.Reset()
	assert.Empty(pl.Passes())

	pl.AppendUI(nil)
	assert.Len(pl.Passes(), 1)
}
