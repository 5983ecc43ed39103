// Package core implements the renderer's public surface: device and queue
// bring-up, window equipment (surface/swapchain) lifecycle, GPU resource
// allocation, and the three rendering passes (UI rect, blur, 3D mesh)
// described by the pass-list construction ABI in package passlist. It is
// the seam an embedding application drives once per frame: BeginFrame,
// zero or more WindowBeginFrame/WindowSubmit/WindowEndFrame triples (one
// per equipped window), EndFrame.
//
// Core owns exactly one device shared across every equipped window: the
// device is brought up once and equipping a window only adds a
// surface/swapchain per native window. Pipeline and shader construction
// live in renderer/pipeline and renderer/shader.
package core

import (
	"log"

	"github.com/kanso-gfx/kanso/common"
)

// Logger is the minimal injected logging service the core uses to report
// recoverable errors (descriptor-pool exhaustion, swapchain recreation,
// shader compile failures) without importing any particular logging
// library. A NopLogger is zero-cost, matching the "pure injected service"
// contract for logging and profiling.
type Logger interface {
	Printf(format string, args ...any)
}

// NopLogger discards every message. The zero value is ready to use.
type NopLogger struct{}

// Printf implements Logger by discarding format and args.
func (NopLogger) Printf(format string, args ...any) {}

// StdLogger routes core diagnostics to the standard library's log package.
type StdLogger struct{}

// Printf implements Logger via log.Printf.
func (StdLogger) Printf(format string, args ...any) {
	log.Printf(format, args...)
}

// PresentMode controls how a window equipment's swapchain presents frames.
type PresentMode int

const (
	// PresentModeVSync waits for vertical blank; eliminates tearing.
	PresentModeVSync PresentMode = iota
	// PresentModeImmediate presents without waiting for vertical blank.
	PresentModeImmediate
	// PresentModeMailbox replaces a queued-but-unpresented frame instead of
	// blocking, falling back to PresentModeImmediate when the surface's
	// capability query does not list mailbox support.
	PresentModeMailbox
)

// Default buffer sizes: 64 MiB staging, 16 MiB uniform.
const (
	defaultStagingBufferSize = 64 << 20
	defaultUniformBufferSize = 16 << 20

	// defaultShaderAssetDir is where the UI/blur/3D mesh WGSL sources are
	// read from, relative to the process's working directory.
	defaultShaderAssetDir = "renderer/assets/shaders"
)

// CoreOption configures a Core during NewCore.
type CoreOption func(*Core)

// WithPresentMode sets the present mode newly equipped windows configure
// their swapchain with.
func WithPresentMode(m PresentMode) CoreOption {
	return func(c *Core) { c.presentMode = m }
}

// WithLogger injects a Logger. Defaults to NopLogger.
func WithLogger(l Logger) CoreOption {
	return func(c *Core) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStagingBufferSize overrides the staging capacity for Static
// texture/buffer uploads; a single upload larger than this is rejected with
// the zero handle. A zero value leaves the 64 MiB default in place.
func WithStagingBufferSize(bytes uint64) CoreOption {
	return func(c *Core) { c.stagingBufferSize = common.Coalesce(bytes, c.stagingBufferSize) }
}

// WithUniformBufferSize overrides the shared per-frame-slot uniform buffer
// size. A zero value leaves the 16 MiB default in place.
func WithUniformBufferSize(bytes uint64) CoreOption {
	return func(c *Core) { c.uniformBufferSize = common.Coalesce(bytes, c.uniformBufferSize) }
}

// WithShaderAssetDir overrides the directory the UI/blur/3D mesh WGSL
// sources are read from. An empty string leaves the default
// "renderer/assets/shaders" in place.
func WithShaderAssetDir(dir string) CoreOption {
	return func(c *Core) { c.shaderAssetDir = common.Coalesce(dir, c.shaderAssetDir) }
}

// WithForceFallbackAdapter forces wgpu to select a software/fallback
// adapter instead of a hardware one. Useful for CI environments without
// a GPU.
func WithForceFallbackAdapter(force bool) CoreOption {
	return func(c *Core) { c.forceFallbackAdapter = force }
}

// Resolution of a Core-wide PresentMode to a concrete wgpu.PresentMode is
// per-window (Mailbox support is a per-surface capability query, not a
// fixed Core-wide setting) — see resolvePresentMode in window.go.
