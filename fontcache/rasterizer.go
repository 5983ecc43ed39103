package fontcache

import (
	"image"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/f32"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// GlyphRasterizer rasterizes one glyph to a tightly cropped RGBA image. It
// is a narrow seam so the style/run caching logic in this package stays
// independent of exactly how outlines get turned into pixels.
type GlyphRasterizer interface {
	// Rasterize returns RGBA pixels (4 bytes/px, alpha replicated into RGB
	// as white-on-transparent, matching the UI pass's is_font_texture
	// nearest-sampled path) for gid at sizePx, plus its pixel dimensions
	// and horizontal advance in pixels.
	Rasterize(font *sfnt.Font, gid sfnt.GlyphIndex, sizePx float32) (pixels []byte, width, height int, advance float32, err error)
}

// sfntRasterizer is the default GlyphRasterizer: it loads a glyph's outline
// segments at a fixed ppem via golang.org/x/image/font/sfnt and fills them
// with golang.org/x/image/vector (LoadGlyph for segments, a separate filler
// for pixels).
type sfntRasterizer struct {
	buf sfnt.Buffer
}

// NewSFNTRasterizer creates the default outline-filling GlyphRasterizer.
// A rasterizer is not safe for concurrent use: its sfnt.Buffer is reused
// across calls to avoid an allocation per glyph.
//
// Returns:
//   - GlyphRasterizer: a ready-to-use rasterizer
func NewSFNTRasterizer() GlyphRasterizer {
	return &sfntRasterizer{}
}

func (r *sfntRasterizer) Rasterize(font *sfnt.Font, gid sfnt.GlyphIndex, sizePx float32) ([]byte, int, int, float32, error) {
	ppem := fixed.Int26_6(sizePx * 64)

	advanceFixed, err := font.GlyphAdvance(&r.buf, gid, ppem, 0)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	advance := float32(advanceFixed) / 64

	segments, err := font.LoadGlyph(&r.buf, gid, ppem, nil)
	if err != nil {
		if err == sfnt.ErrNotFound {
			return nil, 0, 0, advance, nil
		}
		return nil, 0, 0, 0, err
	}
	if len(segments) == 0 {
		return nil, 0, 0, advance, nil
	}

	minX, minY, maxX, maxY := segmentBounds(segments)
	width := maxX.Ceil() - minX.Floor()
	height := maxY.Ceil() - minY.Floor()
	if width <= 0 || height <= 0 {
		return nil, 0, 0, advance, nil
	}

	originX := fixed.I(minX.Floor())
	originY := fixed.I(minY.Floor())
	ras := vector.NewRasterizer(width, height)
	for _, seg := range segments {
		p0 := offset(seg.Args[0], originX, originY)
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			ras.MoveTo(p0[0], p0[1])
		case sfnt.SegmentOpLineTo:
			ras.LineTo(p0[0], p0[1])
		case sfnt.SegmentOpQuadTo:
			p1 := offset(seg.Args[1], originX, originY)
			ras.QuadTo(p0[0], p0[1], p1[0], p1[1])
		case sfnt.SegmentOpCubeTo:
			p1 := offset(seg.Args[1], originX, originY)
			p2 := offset(seg.Args[2], originX, originY)
			ras.CubeTo(p0[0], p0[1], p1[0], p1[1], p2[0], p2[1])
		}
	}

	alpha := image.NewAlpha(image.Rect(0, 0, width, height))
	ras.Draw(alpha, alpha.Bounds(), image.Opaque, image.Point{})

	rgba := make([]byte, width*height*4)
	for i, a := range alpha.Pix {
		rgba[i*4+0] = 255
		rgba[i*4+1] = 255
		rgba[i*4+2] = 255
		rgba[i*4+3] = a
	}
	return rgba, width, height, advance, nil
}

func offset(p fixed.Point26_6, originX, originY fixed.Int26_6) f32.Vec2 {
	return f32.Vec2{
		float32(p.X-originX) / 64,
		float32(p.Y-originY) / 64,
	}
}

func segmentBounds(segs []sfnt.Segment) (minX, minY, maxX, maxY fixed.Int26_6) {
	first := true
	consider := func(p fixed.Point26_6) {
		if first {
			minX, maxX, minY, maxY = p.X, p.X, p.Y, p.Y
			first = false
			return
		}
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	for _, seg := range segs {
		n := 1
		switch seg.Op {
		case sfnt.SegmentOpQuadTo:
			n = 2
		case sfnt.SegmentOpCubeTo:
			n = 3
		}
		for i := 0; i < n; i++ {
			consider(seg.Args[i])
		}
	}
	return
}
