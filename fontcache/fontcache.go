// Package fontcache implements the two-level font run cache: a Style node
// keyed by (font tag, size, raster flags) that in turn caches Runs keyed by
// the exact UTF-8 string they lay out. A Run is a sequence of Pieces, one
// GPU texture per run in this implementation (promoting pieces into shared
// fontatlas sub-rects is a documented future direction, not implemented
// here).
//
// Shaping (cluster/cursor logic, bidi, script runs) is delegated to
// go-text/typesetting's HarfbuzzShaper. Rasterization of the shaped glyphs
// uses golang.org/x/image/font/sfnt plus golang.org/x/image/vector.
package fontcache

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/sfnt"
	gotextfixed "golang.org/x/image/math/fixed"

	"github.com/kanso-gfx/kanso/handle"
)

// RasterFlags is a bitset of rasterization options that, together with a
// font tag and a size, select a Style.
type RasterFlags uint32

const (
	RasterFlagSubpixel RasterFlags = 1 << iota
	RasterFlagHinted
)

// FontTag identifies a loaded font file by its path or, for in-memory
// fonts, by a caller-supplied identity string. Two Tags are equal exactly
// when their Key values match.
type FontTag struct {
	Key string
}

// styleKey is the two-level cache's first-level key.
type styleKey struct {
	tag   FontTag
	size  float32
	flags RasterFlags
}

// Piece is one rectangle in a run's source texture: a single-piece run in
// this implementation, since every Run allocates its own dedicated texture.
type Piece struct {
	Texture    handle.Handle
	SubrectXYWH [4]int
	OffsetXY    [2]float32
	Advance     float32
	DecodeW     int
	DecodeH     int
}

// Run is the cached layout of one styled string: a sequence of pieces plus
// the overall bounding metrics needed to place it.
type Run struct {
	Pieces  []Piece
	DimW    int
	DimH    int
	Ascent  float32
	Descent float32
}

// Style is the secondary cache key's resident node: the (font, size, raster
// flags) tuple's parsed face, its derived column width, and its run cache.
type Style struct {
	key FontTag

	sfntFont *sfnt.Font
	gotext   *font.Face

	size  float32
	flags RasterFlags

	// ColumnWidth is the mean advance of [0-9A-Za-z] at this style's size,
	// falling back to 0.6*size when none of those glyphs exist in the face.
	ColumnWidth float32

	mu   sync.Mutex
	runs map[string]*Run
}

// Cache is the font run cache: a Style map keyed by (font tag, size, raster
// flags), each owning its own Run map keyed by exact string.
type Cache struct {
	loader TextureLoader
	shaper sync.Pool // *shaping.HarfbuzzShaper

	mu     sync.Mutex
	faces  map[FontTag]*loadedFace
	styles map[styleKey]*Style
}

type loadedFace struct {
	sfntFont *sfnt.Font
	gotext   *font.Face
}

// TextureLoader allocates the GPU texture a newly rasterized Run is
// uploaded into. The cache calls this once per cache miss, never per glyph,
// since every Run in this implementation owns exactly one texture.
type TextureLoader interface {
	// LoadRunTexture uploads a tightly packed RGBA image and returns the
	// handle of the texture it now lives in.
	LoadRunTexture(pixels []byte, width, height int) (handle.Handle, error)
}

// New creates an empty font run cache.
//
// Parameters:
//   - loader: allocates the GPU texture backing each newly cached run
//
// Returns:
//   - *Cache: an empty cache
func New(loader TextureLoader) *Cache {
	return &Cache{
		loader: loader,
		faces:  make(map[FontTag]*loadedFace),
		styles: make(map[styleKey]*Style),
		shaper: sync.Pool{New: func() any { return &shaping.HarfbuzzShaper{} }},
	}
}

// LoadFace parses a TTF/OTF font file's bytes and registers it under tag,
// so later RunFromString calls naming tag can find it. Calling LoadFace
// again with the same tag replaces the registered face.
//
// Parameters:
//   - tag: the font's identity key
//   - data: the font file's raw bytes
//
// Returns:
//   - error: an error if data could not be parsed as a font
func (c *Cache) LoadFace(tag FontTag, data []byte) error {
	sf, err := sfnt.Parse(data)
	if err != nil {
		return fmt.Errorf("fontcache: parsing %q: %w", tag.Key, err)
	}
	gf, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("fontcache: parsing %q for shaping: %w", tag.Key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.faces[tag] = &loadedFace{sfntFont: sf, gotext: gf}
	return nil
}

// styleFor finds or creates the Style node for (tag, size, flags).
func (c *Cache) styleFor(tag FontTag, size float32, flags RasterFlags) (*Style, error) {
	key := styleKey{tag: tag, size: size, flags: flags}

	c.mu.Lock()
	if s, ok := c.styles[key]; ok {
		c.mu.Unlock()
		return s, nil
	}
	lf, ok := c.faces[tag]
	if !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("fontcache: no face loaded for tag %q", tag.Key)
	}
	c.mu.Unlock()

	style := &Style{
		key:         tag,
		sfntFont:    lf.sfntFont,
		gotext:      lf.gotext,
		size:        size,
		flags:       flags,
		ColumnWidth: columnWidth(lf.sfntFont, size),
		runs:        make(map[string]*Run),
	}

	c.mu.Lock()
	if existing, ok := c.styles[key]; ok {
		c.mu.Unlock()
		return existing, nil
	}
	c.styles[key] = style
	c.mu.Unlock()
	return style, nil
}

// columnWidth computes the mean advance of the ASCII alphanumeric glyphs
// present in font at size, falling back to 0.6*size if the face has none of
// them (e.g. a symbol font), per the style node's column-width derivation.
func columnWidth(f *sfnt.Font, size float32) float32 {
	const sample = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	ppem := gotextfixed.Int26_6(size * 64)
	var buf sfnt.Buffer
	var total float32
	var count int
	for _, r := range sample {
		gid, err := f.GlyphIndex(&buf, r)
		if err != nil || gid == 0 {
			continue
		}
		adv, err := f.GlyphAdvance(&buf, gid, ppem, 0)
		if err != nil {
			continue
		}
		total += float32(adv) / 64
		count++
	}
	if count == 0 {
		return 0.6 * size
	}
	return total / float32(count)
}

// RunFromString finds or rasterizes the Run laying out s in the style named
// by (tag, size, flags), creating the style and/or run on a cache miss.
// Calling RunFromString twice with identical arguments returns Run values
// denoting the same pieces (same texture handle, subrect, advance) as long
// as neither has been evicted.
//
// Parameters:
//   - tag: the font face's identity key, previously registered via LoadFace
//   - size: the requested font size in pixels
//   - flags: rasterization flags
//   - s: the exact UTF-8 string to lay out
//
// Returns:
//   - *Run: the cached or newly rasterized run
//   - error: an error if tag names no loaded face, or rasterization fails
func (c *Cache) RunFromString(tag FontTag, size float32, flags RasterFlags, s string) (*Run, error) {
	style, err := c.styleFor(tag, size, flags)
	if err != nil {
		return nil, err
	}

	style.mu.Lock()
	if run, ok := style.runs[s]; ok {
		style.mu.Unlock()
		return run, nil
	}
	style.mu.Unlock()

	run, err := c.rasterizeRun(style, s)
	if err != nil {
		return nil, err
	}

	style.mu.Lock()
	if existing, ok := style.runs[s]; ok {
		style.mu.Unlock()
		return existing, nil
	}
	style.runs[s] = run
	style.mu.Unlock()
	return run, nil
}

// rasterizeRun shapes s with go-text/typesetting and rasterizes every
// resulting glyph with golang.org/x/image/font/sfnt, packing all glyphs
// into one tightly cropped RGBA image uploaded as the run's single texture.
func (c *Cache) rasterizeRun(style *Style, s string) (*Run, error) {
	shaper := c.shaper.Get().(*shaping.HarfbuzzShaper)
	defer c.shaper.Put(shaper)

	runes := []rune(s)
	script := language.LookupScript(firstRune(runes))
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      style.gotext,
		Size:      gotextfixed.I(int(style.size)),
		Script:    script,
		Language:  language.NewLanguage("en"),
	}
	out := shaper.Shape(input)

	raster := NewSFNTRasterizer()
	type glyphBitmap struct {
		pixels  []byte
		w, h    int
		advance float32
		penX    float32
		ascent  float32
	}
	bitmaps := make([]glyphBitmap, 0, len(out.Glyphs))
	var penX float32
	var maxAscent, maxDescent float32

	for _, g := range out.Glyphs {
		pixels, w, h, advance, err := raster.Rasterize(style.sfntFont, sfnt.GlyphIndex(g.GlyphID), style.size)
		if err != nil {
			return nil, fmt.Errorf("fontcache: rasterizing glyph %d: %w", g.GlyphID, err)
		}
		ascent := float32(g.YBearing) / 64
		bitmaps = append(bitmaps, glyphBitmap{pixels: pixels, w: w, h: h, advance: advance, penX: penX, ascent: ascent})
		descent := ascent - float32(h)
		if ascent > maxAscent {
			maxAscent = ascent
		}
		if -descent > maxDescent {
			maxDescent = -descent
		}
		penX += advance
	}

	dimW := int(penX + 0.5)
	dimH := int(maxAscent + maxDescent + 0.5)
	if dimW <= 0 {
		dimW = 1
	}
	if dimH <= 0 {
		dimH = 1
	}

	composite := make([]byte, dimW*dimH*4)
	pieces := make([]Piece, 0, len(bitmaps))
	for _, b := range bitmaps {
		// the glyph's top row sits its own ascent above the shared baseline,
		// which lives maxAscent rows below the composite's top edge
		x0 := int(b.penX)
		y0 := int(maxAscent - b.ascent)
		blit(composite, dimW, dimH, b.pixels, b.w, b.h, x0, y0)
		pieces = append(pieces, Piece{
			SubrectXYWH: [4]int{x0, y0, b.w, b.h},
			OffsetXY:    [2]float32{b.penX, maxAscent - b.ascent},
			Advance:     b.advance,
			DecodeW:     b.w,
			DecodeH:     b.h,
		})
	}

	tex, err := c.loader.LoadRunTexture(composite, dimW, dimH)
	if err != nil {
		return nil, fmt.Errorf("fontcache: uploading run texture: %w", err)
	}
	for i := range pieces {
		pieces[i].Texture = tex
	}

	return &Run{Pieces: pieces, DimW: dimW, DimH: dimH, Ascent: maxAscent, Descent: maxDescent}, nil
}

// blit copies an RGBA glyph bitmap into a larger RGBA composite at (x0, y0),
// clipping to the composite's bounds.
func blit(dst []byte, dstW, dstH int, src []byte, srcW, srcH, x0, y0 int) {
	for y := 0; y < srcH; y++ {
		dy := y0 + y
		if dy < 0 || dy >= dstH {
			continue
		}
		for x := 0; x < srcW; x++ {
			dx := x0 + x
			if dx < 0 || dx >= dstW {
				continue
			}
			si := (y*srcW + x) * 4
			oi := (dy*dstW + dx) * 4
			dst[oi+0] = src[si+0]
			dst[oi+1] = src[si+1]
			dst[oi+2] = src[si+2]
			dst[oi+3] = src[si+3]
		}
	}
}

func firstRune(rs []rune) rune {
	if len(rs) == 0 {
		return ' '
	}
	return rs[0]
}
