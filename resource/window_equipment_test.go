package resource

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

// TestAdvanceFrameWrapsModuloFramesInFlight checks the slot index cycles
// through FramesInFlight values instead of growing unbounded.
func TestAdvanceFrameWrapsModuloFramesInFlight(t *testing.T) {
	assert := assert.New(t)

	w := &WindowEquipment{}
	for i := 0; i < FramesInFlight*2; i++ {
		assert.Equal(i%FramesInFlight, w.CurrentFrame, "step %d", i)
		w.AdvanceFrame()
	}
}

// TestCurrentSlotTracksCurrentFrame checks CurrentSlot addresses the slot
// matching CurrentFrame, not a fixed slot.
func TestCurrentSlotTracksCurrentFrame(t *testing.T) {
	assert := assert.New(t)

	w := &WindowEquipment{}
	w.CurrentSlot().Begun = true
	w.AdvanceFrame()
	assert.False(w.CurrentSlot().Begun, "AdvanceFrame must move to a fresh slot")
	w.AdvanceFrame()
	assert.True(w.CurrentSlot().Begun, "slots must wrap back around after FramesInFlight advances")
}

// TestReleaseDrawBindGroupsToleratesNilEntries checks a slot holding a nil
// bind group (never populated this frame) does not panic on release.
func TestReleaseDrawBindGroupsToleratesNilEntries(t *testing.T) {
	slot := &FrameSlot{}
	slot.DrawBindGroups = append(slot.DrawBindGroups, (*wgpu.BindGroup)(nil))
	slot.ReleaseDrawBindGroups()
	assert.Empty(t, slot.DrawBindGroups)
}
