package fontatlas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAllocAndRelease reproduces the atlas pack-and-release scenario: four
// quadrant allocations on a 2048 root, release one 512 region, a 1024
// allocation must fail (no free 1024-aligned quadrant), and a subsequent
// 512 allocation must succeed by reusing the released region.
func TestAllocAndRelease(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	a := New(2048)

	r0, err := a.Alloc(1024)
	require.NoError(err)
	require.Equal(1024, r0.Dim)

	r1, err := a.Alloc(512)
	require.NoError(err)
	r2, err := a.Alloc(512)
	require.NoError(err)
	r3, err := a.Alloc(512)
	require.NoError(err)

	regions := []Region{r0, r1, r2, r3}
	for i := range regions {
		for j := range regions {
			if i == j {
				continue
			}
			assert.False(overlaps(regions[i], regions[j]), "regions %d and %d overlap: %+v, %+v", i, j, regions[i], regions[j])
		}
	}

	a.Release(r1)

	_, err = a.Alloc(1024)
	assert.Error(err, "Alloc(1024) after releasing only a 512 region must fail")

	r4, err := a.Alloc(512)
	require.NoError(err)
	assert.Equal(r1.X, r4.X, "Alloc(512) after release must reuse the released region")
	assert.Equal(r1.Y, r4.Y, "Alloc(512) after release must reuse the released region")
}

func overlaps(a, b Region) bool {
	return a.X < b.X+b.Dim && b.X < a.X+a.Dim && a.Y < b.Y+b.Dim && b.Y < a.Y+a.Dim
}

func TestAllocTooLarge(t *testing.T) {
	a := New(256)
	_, err := a.Alloc(512)
	assert.Error(t, err, "Alloc(512) on a 256 atlas must fail")
}

func TestAllocExhaustion(t *testing.T) {
	require := require.New(t)

	a := New(64)
	for i := 0; i < 4; i++ {
		_, err := a.Alloc(32)
		require.NoError(err, "Alloc(32) #%d", i)
	}
	_, err := a.Alloc(32)
	require.Error(err, "Alloc(32) on a fully packed atlas must fail")
}

// TestReleaseTwiceIsNoop checks that re-releasing a region (or releasing a
// zero-value Region) leaves ancestor bookkeeping intact: the quadrant is
// reusable exactly once, not double-counted free.
func TestReleaseTwiceIsNoop(t *testing.T) {
	require := require.New(t)

	a := New(64)
	var held []Region
	for i := 0; i < 4; i++ {
		r, err := a.Alloc(32)
		require.NoError(err)
		held = append(held, r)
	}

	a.Release(held[0])
	a.Release(held[0])
	a.Release(Region{})

	_, err := a.Alloc(32)
	require.NoError(err, "one released quadrant must be reusable")
	_, err = a.Alloc(32)
	require.Error(err, "a double release must not free more than one quadrant")
}
