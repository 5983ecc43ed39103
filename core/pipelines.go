package core

import (
	"fmt"
	"path/filepath"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/kanso-gfx/kanso/renderer/pipeline"
	"github.com/kanso-gfx/kanso/renderer/shader"
	"github.com/kanso-gfx/kanso/resource"
)

// buildPipelines lazily creates the UI rect, blur, and 3D mesh render
// pipelines against colorFormat, the format of the first window equipped.
// Every subsequently equipped window must share this format; a mismatch is
// a configuration error surfaced by WindowEquip, not handled here.
func (c *Core) buildPipelines(colorFormat wgpu.TextureFormat) error {
	if c.pipelinesReady {
		return nil
	}
	c.colorFormat = colorFormat

	uiPipeline, uiLayouts, err := c.registerRenderPipeline("ui_rect", "ui_rect.wgsl")
	if err != nil {
		return fmt.Errorf("core: build ui pipeline: %w", err)
	}
	c.uiPipeline = uiPipeline
	c.uiGlobalLayout = uiLayouts[0]
	c.uiTexLayout = uiLayouts[1]

	blurPipeline, blurLayouts, err := c.registerRenderPipeline("blur", "blur.wgsl")
	if err != nil {
		return fmt.Errorf("core: build blur pipeline: %w", err)
	}
	c.blurPipeline = blurPipeline
	c.blurGlobalLayout = blurLayouts[0]

	mesh3DPipeline, mesh3DLayouts, err := c.registerRenderPipeline("mesh3d", "mesh3d.wgsl")
	if err != nil {
		return fmt.Errorf("core: build mesh3d pipeline: %w", err)
	}
	c.mesh3DPipeline = mesh3DPipeline
	c.mesh3DGlobalLayout = mesh3DLayouts[0]
	c.mesh3DTexLayout = mesh3DLayouts[1]

	if err := c.buildSharedBuffers(); err != nil {
		return fmt.Errorf("core: build shared buffers: %w", err)
	}

	c.pipelinesReady = true
	return nil
}

// buildSharedBuffers creates the per-slot transient instance storage
// buffers and uniform rings, once pipelines (and therefore the device) are
// confirmed ready.
func (c *Core) buildSharedBuffers() error {
	for i := range c.transient {
		t, err := newTransientBuffer(c.device, "kanso transient instance buffer", wgpu.BufferUsageStorage, minTransientBufferSize)
		if err != nil {
			return fmt.Errorf("create transient buffer %d: %w", i, err)
		}
		c.transient[i] = t
	}
	for i := range c.uniformRing {
		t, err := newTransientBuffer(c.device, "kanso uniform ring", wgpu.BufferUsageUniform, c.uniformBufferSize/resource.FramesInFlight)
		if err != nil {
			return fmt.Errorf("create uniform ring %d: %w", i, err)
		}
		c.uniformRing[i] = t
	}
	return nil
}

// registerRenderPipeline loads a single WGSL source (used for both vertex
// and fragment stages, following the annotation-driven shader convention)
// and builds its per-group bind group layouts, pipeline layout, and render
// pipeline. Every group's layout is returned, not just the per-draw one:
// Core recreates each pass's group-0 "globals" bind group
// every frame at encode time, so that layout must stay alive past pipeline
// construction too.
//
// Returns:
//   - pipeline.Pipeline: the constructed pipeline
//   - map[int]*wgpu.BindGroupLayout: every group's bind group layout, keyed by group index, owned by the caller
func (c *Core) registerRenderPipeline(key, filename string) (pipeline.Pipeline, map[int]*wgpu.BindGroupLayout, error) {
	path := filepath.Join(c.shaderAssetDir, filename)
	vs := shader.NewShader(key+"_vs", shader.ShaderTypeVertex, path)
	fs := shader.NewShader(key+"_fs", shader.ShaderTypeFragment, path)

	vsModule, err := c.device.CreateShaderModule(vs.Module())
	if err != nil {
		return nil, nil, fmt.Errorf("create vertex shader module: %w", err)
	}
	fsModule, err := c.device.CreateShaderModule(fs.Module())
	if err != nil {
		return nil, nil, fmt.Errorf("create fragment shader module: %w", err)
	}

	merged := mergeBindGroupLayouts(vs.BindGroupLayoutDescriptors(), fs.BindGroupLayoutDescriptors())

	groupLayouts := make(map[int]*wgpu.BindGroupLayout, len(merged))
	bindGroupLayouts := make([]*wgpu.BindGroupLayout, 0, len(merged))
	for group := 0; group < len(merged); group++ {
		desc, ok := merged[group]
		if !ok {
			continue
		}
		l, err := c.device.CreateBindGroupLayout(&desc)
		if err != nil {
			return nil, nil, fmt.Errorf("create bind group layout %d: %w", group, err)
		}
		groupLayouts[group] = l
		bindGroupLayouts = append(bindGroupLayouts, l)
	}

	pipelineLayout, err := c.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            key + "_layout",
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create pipeline layout: %w", err)
	}

	var vertexBuffers []wgpu.VertexBufferLayout
	for _, layouts := range vs.VertexLayouts() {
		vertexBuffers = append(vertexBuffers, layouts...)
	}

	// mesh3d is the only pass with a real vertex buffer and depth testing;
	// ui_rect and blur synthesize their quad from vertex_index via a
	// triangle strip with no vertex buffer. All three declare a depth
	// attachment in their state (UI/blur with test and write off), since
	// every render pass of a frame targets the window's shared depth buffer
	// and WebGPU requires the pipeline's depth state to match the pass's
	// attachments.
	is3D := key == "mesh3d"
	topology := wgpu.PrimitiveTopologyTriangleStrip
	cullMode := wgpu.CullModeNone
	if is3D {
		topology = wgpu.PrimitiveTopologyTriangleList
		cullMode = wgpu.CullModeBack
	}

	opts := []pipeline.PipelineBuilderOption{
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithDepthTestEnabled(is3D),
		pipeline.WithDepthWriteEnabled(is3D),
		pipeline.WithBlendEnabled(true),
		pipeline.WithCullMode(cullMode),
		pipeline.WithTopology(topology),
		pipeline.WithFrontFace(wgpu.FrontFaceCCW),
	}
	if key == "ui_rect" {
		// The UI shader emits premultiplied alpha.
		opts = append(opts, pipeline.WithBlendState(&wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}))
	}
	p := pipeline.NewPipeline(key, opts...)

	desc := &wgpu.RenderPipelineDescriptor{
		Label:  key,
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vsModule,
			EntryPoint: vs.EntryPoint(),
			Buffers:    vertexBuffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fsModule,
			EntryPoint: fs.EntryPoint(),
			Targets: []wgpu.ColorTargetState{
				{
					Format:    c.colorFormat,
					WriteMask: p.WriteMask(),
					Blend:     p.BlendState(),
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
	depthCompare := wgpu.CompareFunctionAlways
	if p.DepthTestEnabled() {
		depthCompare = wgpu.CompareFunctionLess
	}
	desc.DepthStencil = &wgpu.DepthStencilState{
		Format:            wgpu.TextureFormatDepth32Float,
		DepthWriteEnabled: p.DepthWriteEnabled(),
		DepthCompare:      depthCompare,
		StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
	}

	renderPipeline, err := c.device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, nil, fmt.Errorf("create render pipeline: %w", err)
	}
	p.SetRenderPipeline(renderPipeline)

	vsModule.Release()
	fsModule.Release()
	pipelineLayout.Release()

	return p, groupLayouts, nil
}

// mergeBindGroupLayouts unions two shaders' per-group bind group layout
// descriptors (vertex and fragment stage declarations of the same group
// combine into one layout, per WebGPU's single-layout-per-group model).
func mergeBindGroupLayouts(a, b map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]wgpu.BindGroupLayoutDescriptor)
	for group, desc := range a {
		merged[group] = desc
	}
	for group, desc := range b {
		existing, ok := merged[group]
		if !ok {
			merged[group] = desc
			continue
		}
		entries := append([]wgpu.BindGroupLayoutEntry{}, existing.Entries...)
		for _, e := range desc.Entries {
			found := false
			for i := range entries {
				if entries[i].Binding == e.Binding {
					entries[i].Visibility |= e.Visibility
					found = true
					break
				}
			}
			if !found {
				entries = append(entries, e)
			}
		}
		existing.Entries = entries
		merged[group] = existing
	}
	return merged
}
