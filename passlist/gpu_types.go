package passlist

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPURect2DInstanceSource is the canonical WGSL definition of the Rect2DInstance struct.
// Matches GPURect2DInstance layout exactly (96 bytes, std430 aligned).
//
//go:embed assets/rect2d_instance.wgsl
var GPURect2DInstanceSource string

// GPURect2DInstance is the GPU-aligned per-instance layout consumed by the UI rect pass.
// Matches the WGSL Rect2DInstance struct layout exactly (see GPURect2DInstanceSource).
// Size: 96 bytes (std430 aligned).
type GPURect2DInstance struct {
	Dst          [4]float32 // offset  0: destination rect (minX, minY, maxX, maxY)
	Src          [4]float32 // offset 16: source rect within the bound texture, normalized
	Colors       [4]uint32  // offset 32: four corner colors, packed RGBA8 one per corner
	CornerRadii  [4]float32 // offset 48: per-corner rounded-rect radius (TL, TR, BR, BL)
	EdgeParams   [4]float32 // offset 64: border_thickness, edge_softness, white_texture_override, is_font_texture
	_pad         [4]float32 // offset 80: reserved to the documented 96-byte instance stride
}

// Size returns the size of the GPURect2DInstance struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPURect2DInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPURect2DInstance struct into a byte buffer suitable for
// appending to the frame's transient instance buffer.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPURect2DInstance) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Dst[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.Src[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[32+i*4:], g.Colors[i])
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[48+i*4:], math.Float32bits(g.CornerRadii[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.EdgeParams[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[80+i*4:], math.Float32bits(g._pad[i]))
	}
	return buf
}

// GPUMesh3DInstanceSource is the canonical WGSL definition of the Mesh3DInstance struct.
// Matches GPUMesh3DInstance layout exactly (64 bytes, std430 aligned).
//
//go:embed assets/mesh3d_instance.wgsl
var GPUMesh3DInstanceSource string

// GPUMesh3DInstance is the GPU-aligned per-instance layout consumed by the 3D mesh pass.
// Matches the WGSL Mesh3DInstance struct layout exactly (see GPUMesh3DInstanceSource).
// Size: 64 bytes (one mat4x4<f32>, std430 aligned).
type GPUMesh3DInstance struct {
	Model [16]float32 // offset 0: column-major model matrix (mat4x4<f32>)
}

// Size returns the size of the GPUMesh3DInstance struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUMesh3DInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMesh3DInstance struct into a byte buffer suitable for
// appending to the frame's transient instance buffer.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUMesh3DInstance) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Model[i]))
	}
	return buf
}

// GPUUIUniformSource is the canonical WGSL definition of the UIUniform struct.
// Matches GPUUIUniform layout exactly (80 bytes, std430 aligned).
//
//go:embed assets/ui_uniform.wgsl
var GPUUIUniformSource string

// GPUUIUniform is the GPU-aligned per-frame uniform block for the UI rect pass.
// Matches the WGSL UIUniform struct layout exactly (see GPUUIUniformSource).
// Size: 80 bytes (std430 aligned).
type GPUUIUniform struct {
	ViewportSizeLogical [2]float32  // offset  0: logical (DPI-independent) viewport size
	Opacity             float32     // offset  8: global pass opacity multiplier
	_pad                float32     // offset 12: padding to vec4 boundary
	ChannelSwizzle      [16]float32 // offset 16: channel-swizzle matrix normalizing single/two-channel textures to RGBA
}

// Size returns the size of the GPUUIUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (g *GPUUIUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUUIUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUUIUniform) Marshal() []byte {
	return g.MarshalInto(make([]byte, g.Size()))
}

// MarshalInto serializes the uniform into buf, which must be at least Size()
// bytes; callers staging per-frame writes pass arena-backed scratch here
// instead of allocating per group.
//
// Returns:
//   - []byte: buf, for chaining
func (g *GPUUIUniform) MarshalInto(buf []byte) []byte {
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(g.ViewportSizeLogical[0]))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(g.ViewportSizeLogical[1]))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(g.Opacity))
	binary.LittleEndian.PutUint32(buf[12:], 0) // _pad
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.ChannelSwizzle[i]))
	}
	return buf[:g.Size()]
}

// GPUMesh3DUniformSource is the canonical WGSL definition of the Mesh3DUniform struct.
// Matches GPUMesh3DUniform layout exactly (192 bytes, std430 aligned).
//
//go:embed assets/mesh3d_uniform.wgsl
var GPUMesh3DUniformSource string

// GPUMesh3DUniform is the GPU-aligned uniform block for the 3D mesh pass,
// written once per batch group at a 256-byte-aligned offset within the
// frame's shared uniform sub-range. View and projection are pass-wide; the
// channel-swizzle matrix tracks the group's albedo format the same way the
// UI pass's uniform does.
// Matches the WGSL Mesh3DUniform struct layout exactly (see GPUMesh3DUniformSource).
// Size: 192 bytes (three mat4x4<f32>, std430 aligned).
type GPUMesh3DUniform struct {
	View           [16]float32 // offset   0: column-major view matrix
	Projection     [16]float32 // offset  64: column-major projection matrix
	ChannelSwizzle [16]float32 // offset 128: channel-swizzle matrix normalizing single/two-channel albedos to RGBA
}

// Size returns the size of the GPUMesh3DUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (192)
func (g *GPUMesh3DUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMesh3DUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUMesh3DUniform) Marshal() []byte {
	return g.MarshalInto(make([]byte, g.Size()))
}

// MarshalInto serializes the uniform into buf, which must be at least Size()
// bytes.
//
// Returns:
//   - []byte: buf, for chaining
func (g *GPUMesh3DUniform) MarshalInto(buf []byte) []byte {
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.View[i]))
	}
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.Projection[i]))
	}
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[128+i*4:], math.Float32bits(g.ChannelSwizzle[i]))
	}
	return buf[:g.Size()]
}

// GPUBlurParamsSource is the canonical WGSL definition of the BlurParams struct.
// Matches GPUBlurParams layout exactly (64 bytes, std430 aligned).
//
//go:embed assets/blur_params.wgsl
var GPUBlurParamsSource string

// GPUBlurParams is the GPU-aligned uniform for the blur pass fragment shader.
// Matches the WGSL BlurParams struct layout exactly (see GPUBlurParamsSource).
// Size: 64 bytes (std430 aligned).
type GPUBlurParams struct {
	TargetRect    [4]float32 // offset  0: target rect in framebuffer pixels
	ClipRect      [4]float32 // offset 16: clip rect in framebuffer pixels
	CornerRadii   [4]float32 // offset 32: per-corner rounded-rect SDF mask radius
	BlurRadiusPx  float32    // offset 48: blur radius in pixels
	_pad          [3]float32 // offset 52: padding to 64 bytes
}

// Size returns the size of the GPUBlurParams struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUBlurParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUBlurParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUBlurParams) Marshal() []byte {
	return g.MarshalInto(make([]byte, g.Size()))
}

// MarshalInto serializes the params into buf, which must be at least Size()
// bytes.
//
// Returns:
//   - []byte: buf, for chaining
func (g *GPUBlurParams) MarshalInto(buf []byte) []byte {
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.TargetRect[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.ClipRect[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[32+i*4:], math.Float32bits(g.CornerRadii[i]))
	}
	binary.LittleEndian.PutUint32(buf[48:], math.Float32bits(g.BlurRadiusPx))
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[52+i*4:], math.Float32bits(g._pad[i]))
	}
	return buf[:g.Size()]
}
