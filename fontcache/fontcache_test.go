package fontcache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kanso-gfx/kanso/handle"
)

type nopLoader struct{}

func (nopLoader) LoadRunTexture(pixels []byte, width, height int) (handle.Handle, error) {
	return handle.Handle{Lo: 1}, nil
}

// TestRunFromStringUnknownTag checks a tag with no loaded face surfaces an
// error instead of rasterizing garbage or panicking.
func TestRunFromStringUnknownTag(t *testing.T) {
	c := New(nopLoader{})
	_, err := c.RunFromString(FontTag{Key: "never-loaded"}, 16, 0, "hello")
	assert.Error(t, err)
}

// TestLoadFaceRejectsGarbage checks malformed font bytes fail parse cleanly
// and leave the cache usable.
func TestLoadFaceRejectsGarbage(t *testing.T) {
	assert := assert.New(t)

	c := New(nopLoader{})
	tag := FontTag{Key: "bad"}
	assert.Error(c.LoadFace(tag, []byte("not a font")))
	_, err := c.RunFromString(tag, 16, 0, "hello")
	assert.Error(err, "a failed LoadFace must not register the tag")
}
