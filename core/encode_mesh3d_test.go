package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kanso-gfx/kanso/common"
)

// TestComposeGroupView checks the group-transform fold: a zero-value
// transform passes the view through untouched, and a set transform
// right-multiplies it so every instance in the group picks it up.
func TestComposeGroupView(t *testing.T) {
	assert := assert.New(t)

	var view [16]float32
	common.Identity(view[:])

	assert.Equal(view, composeGroupView(view, [16]float32{}), "zero transform must be identity")

	var tilt [16]float32
	common.BuildModelMatrix(tilt[:], 1, 2, 3, 0, 0, 0, 1, 1, 1)
	assert.Equal(tilt, composeGroupView(view, tilt), "identity view composed with a transform is that transform")

	var expected [16]float32
	common.Mul4(expected[:], tilt[:], tilt[:])
	assert.Equal(expected, composeGroupView(tilt, tilt))
}
