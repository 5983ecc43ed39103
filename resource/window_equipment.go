package resource

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// FramesInFlight is the number of per-frame-slot resource sets (command
// buffers, semaphores, fences, descriptor sets, uniform sub-ranges) the
// window equipment keeps double-buffered so consecutive frames do not
// contend.
const FramesInFlight = 2

// SwapchainState is the window equipment's lifecycle state machine.
// Transitions: Uninitialized -> Ready -> Rendering -> Presenting -> Ready;
// on OutOfDate/Suboptimal from either acquire or present, Ready/Presenting
// transition through Recreating back to Ready.
type SwapchainState int

const (
	SwapchainUninitialized SwapchainState = iota
	SwapchainReady
	SwapchainRendering
	SwapchainPresenting
	SwapchainRecreating
)

// FrameSlot holds the per-frame-slot resources the window equipment
// double-buffers across FramesInFlight slots: the global (group 0)
// descriptor set per pass kind, reused across the whole pass, plus the
// per-batch (group 1) descriptor sets accumulated while encoding. Uniform
// and instance data for a frame are staged into the core's per-slot
// transient buffer rings (see core.transientBuffer); this slot only tracks
// the bind groups built against those rings' writes. cogentcore/webgpu has
// no explicit semaphore/fence objects at this API layer (the queue's
// submission order and the surface's own presentation timing serve that
// role), so this slot only carries what the higher-level WebGPU API exposes
// a seam for.
type FrameSlot struct {
	// Begun records whether begin_frame successfully acquired a swapchain
	// image for this slot this frame. When false, submit and end_frame for
	// this frame MUST be no-ops per the acquire failure policy.
	Begun bool

	// DrawBindGroups holds every bind group created while encoding this
	// slot's passes: the blur pass writes one group-0 "globals" bind group
	// per pass, while the UI and 3D mesh passes each write one per batch
	// group (the channel swizzle varies per group) plus one group-1 draw
	// bind group per batch. All of it accumulates here and is
	// released in bulk the next time this slot is reused, once its prior
	// frame's GPU work is known complete.
	DrawBindGroups []*wgpu.BindGroup
}

// ReleaseDrawBindGroups releases and clears this slot's accumulated
// per-batch bind groups. Called at the start of WindowBeginFrame for this
// slot, before any new ones are created for the frame being begun.
func (s *FrameSlot) ReleaseDrawBindGroups() {
	for _, bg := range s.DrawBindGroups {
		if bg != nil {
			bg.Release()
		}
	}
	s.DrawBindGroups = s.DrawBindGroups[:0]
}

// WindowEquipment owns a surface and swapchain bound to a native window,
// plus the per-frame-slot resources needed to record and present frames
// against it.
type WindowEquipment struct {
	Surface *wgpu.Surface
	Device  *wgpu.Device
	Queue   *wgpu.Queue

	Config *wgpu.SurfaceConfiguration

	ColorFormat wgpu.TextureFormat
	WidthPx     uint32
	HeightPx    uint32
	DPIScale    float32

	// DepthTexture and DepthView back the 32-bit float depth attachment
	// shared by every render pass compatible with this swapchain.
	DepthTexture *wgpu.Texture
	DepthView    *wgpu.TextureView

	// BlurSourceTexture and BlurSourceView are the blur pass's sampled
	// scratch copy of the current color attachment, recreated alongside the
	// swapchain at the same size and format.
	BlurSourceTexture *wgpu.Texture
	BlurSourceView    *wgpu.TextureView

	// MSAATexture and MSAAView back the multisampled color target when
	// SampleCount > 1; nil at SampleCount == 1, where passes render directly
	// to the swapchain's surface texture view.
	MSAATexture *wgpu.Texture
	MSAAView    *wgpu.TextureView
	SampleCount uint32

	State SwapchainState

	Slots        [FramesInFlight]FrameSlot
	CurrentFrame int

	// currentSurfaceTexture and currentView are populated by BeginFrame and
	// consumed (and released) by EndFrame/Present.
	currentSurfaceTexture *wgpu.Texture
	currentView           *wgpu.TextureView
}

// CurrentSlot returns the FrameSlot for the window equipment's current frame index.
//
// Returns:
//   - *FrameSlot: the slot for CurrentFrame
func (w *WindowEquipment) CurrentSlot() *FrameSlot {
	return &w.Slots[w.CurrentFrame%FramesInFlight]
}

// AdvanceFrame moves CurrentFrame to the next slot modulo FramesInFlight.
// Called once per frame at the end of EndFrame.
func (w *WindowEquipment) AdvanceFrame() {
	w.CurrentFrame = (w.CurrentFrame + 1) % FramesInFlight
}

// BeginAcquire stores the surface texture and view acquired for the current
// frame. Called by the backend's begin_frame after a successful
// GetCurrentTexture/CreateView pair.
//
// Parameters:
//   - tex: the acquired surface texture
//   - view: the texture's view, used as the render pass color attachment
func (w *WindowEquipment) BeginAcquire(tex *wgpu.Texture, view *wgpu.TextureView) {
	w.currentSurfaceTexture = tex
	w.currentView = view
}

// AcquiredView returns the current frame's acquired surface texture view, or
// nil if no acquire has succeeded since the last EndAcquire.
//
// Returns:
//   - *wgpu.TextureView: the acquired view, or nil
func (w *WindowEquipment) AcquiredView() *wgpu.TextureView {
	return w.currentView
}

// CurrentColorTexture returns the current frame's acquired surface texture,
// or nil if no acquire has succeeded since the last EndAcquire. Used by the
// blur pass to copy the color attachment into its scratch texture.
//
// Returns:
//   - *wgpu.Texture: the acquired texture, or nil
func (w *WindowEquipment) CurrentColorTexture() *wgpu.Texture {
	return w.currentSurfaceTexture
}

// EndAcquire releases the current frame's acquired surface texture and view
// (if any) and clears them, so a stale reference cannot be reused next frame.
func (w *WindowEquipment) EndAcquire() {
	if w.currentView != nil {
		w.currentView.Release()
		w.currentView = nil
	}
	if w.currentSurfaceTexture != nil {
		w.currentSurfaceTexture.Release()
		w.currentSurfaceTexture = nil
	}
}
