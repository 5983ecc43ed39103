package core

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/kanso-gfx/kanso/arena"
	"github.com/kanso-gfx/kanso/handle"
	"github.com/kanso-gfx/kanso/renderer/pipeline"
	"github.com/kanso-gfx/kanso/resource"
)

const (
	textureHandleKind uint64 = iota + 1
	bufferHandleKind
	windowHandleKind
)

// Core owns the device/queue shared by every equipped window, the GPU
// resource registries, the three rendering pipelines, and the per-frame
// staging bookkeeping. It is not safe for concurrent use: every public
// method must be called from the single drawing thread.
type Core struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	logger      Logger
	presentMode PresentMode

	stagingBufferSize    uint64
	uniformBufferSize    uint64
	shaderAssetDir       string
	forceFallbackAdapter bool

	samplerNearest *wgpu.Sampler
	samplerLinear  *wgpu.Sampler

	whiteTexture handle.Handle

	textures *handle.Registry[*resource.Texture2D]
	buffers  *handle.Registry[*resource.Buffer]
	windows  *handle.Registry[*resource.WindowEquipment]

	// pipelinesReady is set once buildPipelines succeeds against the first
	// equipped window's surface format; pipelines are created lazily when
	// the first window is equipped.
	pipelinesReady bool
	colorFormat    wgpu.TextureFormat
	uiPipeline     pipeline.Pipeline
	blurPipeline   pipeline.Pipeline
	mesh3DPipeline pipeline.Pipeline

	// *GlobalLayout is group 0 (the per-pass "globals" uniform, plus, for
	// blur, its source texture and sampler since blur.wgsl has no group 1).
	// *TexLayout is group 1 (the per-draw instance storage + texture +
	// sampler); blur has none, since it draws a single fullscreen pass with
	// no per-batch draw calls.
	uiGlobalLayout     *wgpu.BindGroupLayout
	uiTexLayout        *wgpu.BindGroupLayout
	blurGlobalLayout   *wgpu.BindGroupLayout
	mesh3DGlobalLayout *wgpu.BindGroupLayout
	mesh3DTexLayout    *wgpu.BindGroupLayout

	// transient is the growable per-frame-slot instance storage buffer
	// pool, one per FramesInFlight slot, backing the passes' per-draw
	// instance data.
	transient [resource.FramesInFlight]*transientBuffer

	// uniformRing is the growable per-frame-slot uniform buffer pool. A UI
	// pass writes one GPUUIUniform per batch group (opacity and channel
	// swizzle both vary per group), and the 3D mesh pass writes one
	// GPUMesh3DUniform per batch group (the swizzle tracks the group's albedo
	// format), each appended to the active slot's ring
	// and bound at its returned offset.
	uniformRing [resource.FramesInFlight]*transientBuffer

	// frameArena backs CPU-side scratch during pass encoding (the per-group
	// uniform marshal buffers); released and reused every BeginFrame.
	frameArena *arena.Arena

	// frameIndex counts BeginFrame/EndFrame pairs and selects which
	// transient/uniform ring slot the current frame appends to. It is the
	// core's counter, not any window's: every window drawn within one
	// BeginFrame/EndFrame pair appends to the same slot, so one window's
	// writes cannot clobber regions another window's in-flight submit still
	// references.
	frameIndex int
}

// NewCore brings up the WebGPU instance, adapter, and device, creates the
// nearest/linear samplers, a 1x1 white texture, and the resource
// registries. Render pipelines are deferred to the first WindowEquip call.
//
// Returns:
//   - *Core: a ready-to-use core with no windows equipped yet
//   - error: a fatal init error; the core must not be used if non-nil
func NewCore(opts ...CoreOption) (*Core, error) {
	c := &Core{
		logger:            NopLogger{},
		presentMode:       PresentModeVSync,
		stagingBufferSize: defaultStagingBufferSize,
		uniformBufferSize: defaultUniformBufferSize,
		shaderAssetDir:    defaultShaderAssetDir,
		textures:          handle.NewRegistry[*resource.Texture2D](textureHandleKind),
		buffers:           handle.NewRegistry[*resource.Buffer](bufferHandleKind),
		windows:           handle.NewRegistry[*resource.WindowEquipment](windowHandleKind),
		frameArena:        arena.New(1 << 20),
	}
	for _, opt := range opts {
		opt(c)
	}

	// wgpu-native's instance/device handles are bound to the thread that
	// created them on some platforms (notably macOS/Metal).
	runtime.LockOSThread()

	c.instance = wgpu.CreateInstance(nil)

	adapter, err := c.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: c.forceFallbackAdapter,
	})
	if err != nil {
		return nil, fmt.Errorf("core: request adapter: %w", err)
	}
	c.adapter = adapter

	limits := wgpu.DefaultLimits()
	limits.MaxBindGroups = 4

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:          "kanso core device",
		RequiredLimits: &wgpu.RequiredLimits{Limits: limits},
	})
	if err != nil {
		return nil, fmt.Errorf("core: request device: %w", err)
	}
	c.device = device
	c.queue = device.GetQueue()

	if err := c.createSamplers(); err != nil {
		return nil, err
	}
	if err := c.createWhiteTexture(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Core) createSamplers() error {
	nearest, err := c.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:        "kanso nearest sampler",
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeNearest,
		MinFilter:    wgpu.FilterModeNearest,
		MipmapFilter: wgpu.MipmapFilterModeNearest,
		LodMaxClamp:  32,
	})
	if err != nil {
		return fmt.Errorf("core: create nearest sampler: %w", err)
	}
	c.samplerNearest = nearest

	linear, err := c.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:        "kanso linear sampler",
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeLinear,
		MipmapFilter: wgpu.MipmapFilterModeLinear,
		LodMaxClamp:  32,
	})
	if err != nil {
		return fmt.Errorf("core: create linear sampler: %w", err)
	}
	c.samplerLinear = linear
	return nil
}

func (c *Core) createWhiteTexture() error {
	h, err := c.textureAllocInternal(resource.KindStatic, 1, 1, resource.PixelFormatRGBA8, []byte{255, 255, 255, 255})
	if err != nil {
		return fmt.Errorf("core: create white texture: %w", err)
	}
	c.whiteTexture = h
	return nil
}

// WhiteTexture returns the core's built-in 1x1 white texture. Batch groups
// that want a solid fill without sampler traffic can reference it
// explicitly instead of relying on the invalid-handle fallback.
//
// Returns:
//   - handle.Handle: the white texture's handle
func (c *Core) WhiteTexture() handle.Handle {
	return c.whiteTexture
}

// Shutdown waits for the device to go idle, then destroys every window
// equipment, resource, sampler, and pipeline the core owns, in reverse
// order of creation. The core must not be used afterward.
func (c *Core) Shutdown() {
	c.waitIdle()

	for _, h := range c.windows.Handles() {
		c.WindowUnequip(h)
	}
	for _, h := range c.textures.Handles() {
		c.TextureRelease(h)
	}
	for _, h := range c.buffers.Handles() {
		c.BufferRelease(h)
	}

	for i := range c.transient {
		if c.transient[i] != nil {
			c.transient[i].release()
			c.transient[i] = nil
		}
	}
	for i := range c.uniformRing {
		if c.uniformRing[i] != nil {
			c.uniformRing[i].release()
			c.uniformRing[i] = nil
		}
	}

	if c.samplerNearest != nil {
		c.samplerNearest.Release()
		c.samplerNearest = nil
	}
	if c.samplerLinear != nil {
		c.samplerLinear.Release()
		c.samplerLinear = nil
	}
	for _, p := range []pipeline.Pipeline{c.mesh3DPipeline, c.blurPipeline, c.uiPipeline} {
		if p != nil && p.Pipeline() != nil {
			p.Pipeline().Release()
			p.SetRenderPipeline(nil)
		}
	}
	for _, l := range []*wgpu.BindGroupLayout{c.uiGlobalLayout, c.uiTexLayout, c.blurGlobalLayout, c.mesh3DGlobalLayout, c.mesh3DTexLayout} {
		if l != nil {
			l.Release()
		}
	}

	if c.queue != nil {
		c.queue.Release()
		c.queue = nil
	}
	if c.device != nil {
		c.device.Release()
		c.device = nil
	}
	if c.adapter != nil {
		c.adapter.Release()
		c.adapter = nil
	}
	if c.instance != nil {
		c.instance.Release()
		c.instance = nil
	}
}

// waitIdle blocks until every GPU operation submitted so far has
// completed. Required before freeing any resource whose last use may
// still be in flight.
func (c *Core) waitIdle() {
	if c.device == nil {
		return
	}
	c.device.Poll(true, nil)
}

// BeginFrame resets the core's per-frame CPU scratch arena and rewinds the
// current frame slot's transient instance and uniform rings. It does not
// touch any window equipment; call WindowBeginFrame for each window about
// to be drawn into this frame.
func (c *Core) BeginFrame() {
	c.frameArena.Release()
	slot := c.frameSlot()
	if c.transient[slot] != nil {
		c.transient[slot].reset()
	}
	if c.uniformRing[slot] != nil {
		c.uniformRing[slot].reset()
	}
}

// EndFrame is the matching bookend to BeginFrame: it advances the core's
// frame counter to the next transient-ring slot.
func (c *Core) EndFrame() {
	c.frameIndex++
}

// frameSlot returns the transient-ring slot index for the current frame.
func (c *Core) frameSlot() int {
	return c.frameIndex % resource.FramesInFlight
}
