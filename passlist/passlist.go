// Package passlist implements the pass-list construction ABI: the
// application-facing data structure the renderer consumes once per frame to
// record UI rect, blur, and 3D mesh passes. The core interprets a pass
// list's contents only at encode time; construction is append-only and
// single-threaded, matching the renderer's serialized drawing-thread
// scheduling model.
//
// The native implementation arena-allocates every pass node and parameter
// struct so the whole list is freed in one pop_to when the frame ends. Go's
// garbage collector already reclaims small object graphs like this one for
// free; a pass list here is built from ordinary slices and is simply
// dropped (or its backing slices reused via reset) at frame end instead of
// being popped off a bump allocator. The renderer still uses an explicit
// arena — see package arena — for the per-frame encoding scratch this ABI
// doesn't own, released in one stroke at the next frame's start.
package passlist

import (
	"github.com/kanso-gfx/kanso/handle"
)

// SampleKind selects nearest or linear texture sampling for a batch group.
// is_font_texture on a Rect2DInstance overrides this to nearest regardless
// of the group's declared sample kind.
type SampleKind int

const (
	SampleNearest SampleKind = iota
	SampleLinear
)

// Topology enumerates the primitive topologies a 3D batch group may request.
// The 3D pipeline is created for Triangles; other topologies require either
// dynamic primitive-topology state (if the backend supports it) or an
// additional pipeline variant.
type Topology int

const (
	TopologyTriangles Topology = iota
	TopologyLines
	TopologyLineStrip
	TopologyPoints
)

// VertexFlags advertises which optional attributes are present in a 3D
// batch group's vertex buffer, beyond the mandatory position.
type VertexFlags uint32

const (
	VertexFlagTexcoord VertexFlags = 1 << iota
	VertexFlagNormal
	VertexFlagColor
)

// defaultBatchCapBytes is the capacity of a freshly opened batch when the
// caller does not specify one explicitly.
const defaultBatchCapBytes = 64 * 1024

// Batch is a byte buffer tagged with its in-flight element size. The pass
// list does not interpret a batch's contents except at encode time; once a
// batch reaches its capacity the caller (via BatchList.AppendInstance) opens
// a new batch in the same group rather than growing this one, matching the
// construction ABI's fixed-capacity batching contract.
type Batch struct {
	Bytes      []byte
	ByteCap    int
	ElemStride int
}

// Remaining reports how many more bytes of instance data b can accept
// before its capacity is exceeded.
//
// Returns:
//   - int: free byte capacity
func (b *Batch) Remaining() int {
	return b.ByteCap - len(b.Bytes)
}

// BatchList is an ordered list of Batch entries belonging to one batch group.
type BatchList struct {
	batches []*Batch
}

// Batches returns the batch list's batches in append order.
//
// Returns:
//   - []*Batch: the batches, in append order
func (bl *BatchList) Batches() []*Batch {
	return bl.batches
}

// AppendInstance appends one instance's bytes to the batch list's current
// batch, opening a fresh batch of capBytes capacity in the same group when
// the current batch lacks room, per the construction ABI's batching
// contract.
//
// Parameters:
//   - elemStride: the instance size in bytes (96 for Rect2DInstance, 64 for Mesh3DInstance)
//   - capBytes: the capacity of a freshly opened batch; defaultBatchCapBytes if <= 0
//   - data: the instance bytes to append, exactly elemStride bytes
func (bl *BatchList) AppendInstance(elemStride, capBytes int, data []byte) {
	if capBytes <= 0 {
		capBytes = defaultBatchCapBytes
	}
	var cur *Batch
	if n := len(bl.batches); n > 0 {
		cur = bl.batches[n-1]
	}
	if cur == nil || cur.Remaining() < len(data) {
		cur = &Batch{Bytes: make([]byte, 0, capBytes), ByteCap: capBytes, ElemStride: elemStride}
		bl.batches = append(bl.batches, cur)
	}
	cur.Bytes = append(cur.Bytes, data...)
}

// BatchGroup2D shares pipeline state (texture, sampler, clip, xform,
// transparency) across every batch it holds.
type BatchGroup2D struct {
	TextureHandle handle.Handle
	SampleKind    SampleKind
	Xform         [6]float32 // 2D affine transform (row-major 2x3)
	ClipRect      [4]float32
	Transparency  float32
	Batches       BatchList
}

// BatchGroup3D shares pipeline state (buffers, topology, vertex layout,
// albedo texture, group transform) across every instance batch it holds.
type BatchGroup3D struct {
	VertexBuffer  handle.Handle
	IndexBuffer   handle.Handle
	Topology      Topology
	VertexFlags   VertexFlags
	AlbedoTexture handle.Handle
	SampleKind    SampleKind
	// GroupXform is a column-major 4x4 transform applied to every instance
	// in the group, composed into the view matrix at encode time. The zero
	// value is treated as identity, so groups fresh from GetOrCreate need
	// no explicit initialization.
	GroupXform [16]float32
	Batches    BatchList
}

// groupKey3D identifies a 3D batch group by the resources its pipeline
// state shares: vertex buffer, index buffer, and albedo texture.
func groupKey3D(vb, ib, albedo handle.Handle) [3]handle.Handle {
	return [3]handle.Handle{vb, ib, albedo}
}

// Mesh3DGroupMap is an open-addressed, chained hash map of 3D batch groups
// keyed by (vertex_buffer, index_buffer, albedo_texture). Go's built-in
// map already provides open addressing with internal chaining on
// collision, so it is used directly rather than hand-rolling bucket
// chains; the contract is stable per-key group identity, with groups
// sharing a key always coalesced into one entry. A separate key list keeps
// Groups in first-creation order.
type Mesh3DGroupMap struct {
	groups map[[3]handle.Handle]*BatchGroup3D
	order  [][3]handle.Handle
}

// NewMesh3DGroupMap creates an empty Mesh3DGroupMap.
//
// Returns:
//   - *Mesh3DGroupMap: an empty group map
func NewMesh3DGroupMap() *Mesh3DGroupMap {
	return &Mesh3DGroupMap{groups: make(map[[3]handle.Handle]*BatchGroup3D)}
}

// GetOrCreate finds the 3D batch group for (vertexBuffer, indexBuffer,
// albedoTexture), creating one on miss.
//
// Parameters:
//   - vertexBuffer, indexBuffer, albedoTexture: the group's shared resources
//
// Returns:
//   - *BatchGroup3D: the existing or newly created group
func (m *Mesh3DGroupMap) GetOrCreate(vertexBuffer, indexBuffer, albedoTexture handle.Handle) *BatchGroup3D {
	key := groupKey3D(vertexBuffer, indexBuffer, albedoTexture)
	if g, ok := m.groups[key]; ok {
		return g
	}
	g := &BatchGroup3D{VertexBuffer: vertexBuffer, IndexBuffer: indexBuffer, AlbedoTexture: albedoTexture}
	m.groups[key] = g
	m.order = append(m.order, key)
	return g
}

// Groups returns every batch group in the map, in first-creation order, for
// the 3D pass encoder's "iterate every non-empty slot and chain" traversal.
//
// Returns:
//   - []*BatchGroup3D: every live group
func (m *Mesh3DGroupMap) Groups() []*BatchGroup3D {
	out := make([]*BatchGroup3D, 0, len(m.order))
	for _, key := range m.order {
		out = append(out, m.groups[key])
	}
	return out
}

// PassKind tags which variant of Pass.Params is populated.
type PassKind int

const (
	PassKindUI PassKind = iota
	PassKindBlur
	PassKindMesh3D
)

// UIParams is a pass's parameters when Kind == PassKindUI: an ordered list
// of 2D batch groups.
type UIParams struct {
	Groups []*BatchGroup2D
}

// BlurParams is a pass's parameters when Kind == PassKindBlur.
type BlurParams struct {
	TargetRect   [4]float32
	ClipRect     [4]float32
	BlurRadiusPx float32
	CornerRadii  [4]float32
}

// Mesh3DParams is a pass's parameters when Kind == PassKindMesh3D.
type Mesh3DParams struct {
	ViewportRect [4]float32
	ClipRect     [4]float32
	View         [16]float32 // column-major 4x4
	Projection   [16]float32 // column-major 4x4
	Groups       *Mesh3DGroupMap
}

// Pass is a tagged union of UI, Blur, or 3D parameters. Exactly one of
// UI, Blur, Mesh3D is non-nil, selected by Kind; the others are nil.
type Pass struct {
	Kind   PassKind
	UI     *UIParams
	Blur   *BlurParams
	Mesh3D *Mesh3DParams
}

// PassList is an ordered list of passes, built by appending in submission
// order. It is intentionally a thin slice wrapper: see the package doc for
// why this ABI does not need Go code to manually arena-allocate its node
// graph the way the native implementation does.
type PassList struct {
	passes []Pass
}

// New creates an empty PassList.
//
// Returns:
//   - *PassList: an empty pass list
func New() *PassList {
	return &PassList{}
}

// AppendUI appends a UI pass with the given batch groups, in submission order.
//
// Parameters:
//   - groups: the pass's 2D batch groups, in encode order
func (pl *PassList) AppendUI(groups []*BatchGroup2D) {
	pl.passes = append(pl.passes, Pass{Kind: PassKindUI, UI: &UIParams{Groups: groups}})
}

// AppendBlur appends a blur pass.
//
// Parameters:
//   - params: the pass's blur parameters
func (pl *PassList) AppendBlur(params BlurParams) {
	p := params
	pl.passes = append(pl.passes, Pass{Kind: PassKindBlur, Blur: &p})
}

// AppendMesh3D appends a 3D mesh pass.
//
// Parameters:
//   - params: the pass's 3D parameters, including its batch group map
func (pl *PassList) AppendMesh3D(params Mesh3DParams) {
	p := params
	pl.passes = append(pl.passes, Pass{Kind: PassKindMesh3D, Mesh3D: &p})
}

// Passes returns the pass list's passes in submission order. An invalid
// pass-list structure (for example, a missing current-frame flag upstream)
// is the renderer's concern at encode time, not this accessor's — Passes
// always returns exactly what was appended.
//
// Returns:
//   - []Pass: the passes, in append order
func (pl *PassList) Passes() []Pass {
	return pl.passes
}

// Reset clears the pass list for reuse on the next frame, retaining the
// underlying slice's capacity.
func (pl *PassList) Reset() {
	pl.passes = pl.passes[:0]
}
