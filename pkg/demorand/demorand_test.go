package demorand

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntDeterministic(t *testing.T) {
	for _, seed := range []string{"example.com", "geotest.ai", "a", ""} {
		first := Int(seed, 0, 100)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, Int(seed, 0, 100), "seed %q must be stable", seed)
		}
	}
}

func TestIntBounds(t *testing.T) {
	tests := []struct {
		min, max int
	}{
		{0, 100},
		{40, 95},
		{1, 1000},
		{-10, 10},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d..%d", tt.min, tt.max), func(t *testing.T) {
			for i := 0; i < 1000; i++ {
				v := Int(fmt.Sprintf("domain-%d.com", i), tt.min, tt.max)
				assert.GreaterOrEqual(t, v, tt.min)
				assert.LessOrEqual(t, v, tt.max)
			}
		})
	}
}

func TestIntDegenerateInputs(t *testing.T) {
	assert.NotPanics(t, func() { Int("", 0, 100) })

	// Inverted and empty ranges collapse to min.
	assert.Equal(t, 50, Int("example.com", 50, 10))
	assert.Equal(t, 7, Int("example.com", 7, 7))
}

func TestIntRangeChangesOutput(t *testing.T) {
	// Same seed at different ranges must not be a simple rescale: the range
	// participates in the stream. Spot-check that at least the draws differ
	// across a few ranges.
	a := Int("example.com", 0, 100)
	b := Int("example.com", 0, 1000)
	c := Int("example.com", 50, 150)
	assert.False(t, a == b && b == c-50, "ranges should decorrelate draws")
}

func TestIntSpread(t *testing.T) {
	// Different seeds should not collapse onto a handful of values.
	seen := make(map[int]bool)
	for i := 0; i < 200; i++ {
		seen[Int(fmt.Sprintf("site-%d.example", i), 0, 100)] = true
	}
	assert.Greater(t, len(seen), 30)
}

func TestBool(t *testing.T) {
	v := Int("example.com", 0, 100)
	assert.Equal(t, v > 60, Bool("example.com", 60))
	assert.Equal(t, v > 0, Bool("example.com", 0))
}

func TestPick(t *testing.T) {
	candidates := []string{"a.com", "b.com", "c.com", "d.com"}

	got := Pick("example.com", candidates, 3)
	assert.Len(t, got, 3)
	assert.Equal(t, got, Pick("example.com", candidates, 3))

	assert.Len(t, Pick("example.com", candidates, 10), len(candidates))
	assert.Nil(t, Pick("example.com", nil, 3))
	assert.Nil(t, Pick("example.com", candidates, 0))
}
