package dice_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/rotz-assistant/internal/game/dice"
	"github.com/cory-johannsen/rotz-assistant/internal/testutil"
)

// TestCryptoSource_Intn_InRange verifies every value returned by Intn(6) is in [0, 6).
func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

// TestCryptoSource_Intn_PanicsOnZero verifies the precondition n > 0.
func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

func TestCryptoSource_Float64_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Float64()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestSeededSource_Deterministic(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(100), b.Intn(100))
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestRange_SwapsReversedBounds(t *testing.T) {
	src := &testutil.SequenceSource{Ints: []int{0}}
	assert.Equal(t, 3, dice.Range(src, 9, 3))
}

func TestRange_ExtremeBounds(t *testing.T) {
	cases := map[string]struct {
		lo, hi int
		ints   []int
		floats []float64
		want   int
	}{
		"zero to max int low": {lo: 0, hi: math.MaxInt, floats: []float64{0}, want: 0},
		"zero to max int mid": {lo: 0, hi: math.MaxInt, floats: []float64{0.5}, want: 1 << 62},
		"full range low":      {lo: math.MinInt, hi: math.MaxInt, floats: []float64{0}, want: math.MinInt},
		"full range mid":      {lo: math.MinInt, hi: math.MaxInt, floats: []float64{0.5}, want: 0},
		"full range reversed": {lo: math.MaxInt, hi: math.MinInt, floats: []float64{0}, want: math.MinInt},
		"widest int span":     {lo: 1, hi: math.MaxInt, ints: []int{5}, want: 6},
		"negative to max int": {lo: -1, hi: math.MaxInt - 1, floats: []float64{0}, want: -1},
		"min int to zero":     {lo: math.MinInt, hi: 0, floats: []float64{0.5}, want: math.MinInt / 2},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			src := &testutil.SequenceSource{Ints: tc.ints, Floats: tc.floats}
			assert.Equal(t, tc.want, dice.Range(src, tc.lo, tc.hi))
		})
	}
}

func TestProperty_RangeWithinBoundsForAnyInts(t *testing.T) {
	src := dice.NewSeededSource(11)
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.Int().Draw(rt, "lo")
		hi := rapid.Int().Draw(rt, "hi")
		var got int
		assert.NotPanics(rt, func() { got = dice.Range(src, lo, hi) })
		assert.GreaterOrEqual(rt, got, min(lo, hi))
		assert.LessOrEqual(rt, got, max(lo, hi))
	})
}

func TestPercent_Boundaries(t *testing.T) {
	assert.True(t, dice.Percent(&testutil.SequenceSource{Floats: []float64{0.999}}, 100))
	assert.False(t, dice.Percent(&testutil.SequenceSource{Floats: []float64{0.5}}, 49))
	assert.True(t, dice.Percent(&testutil.SequenceSource{Floats: []float64{0.5}}, 50))
	assert.True(t, dice.Percent(&testutil.SequenceSource{Floats: []float64{0.001}}, 0))
}

func TestProperty_RangeWithinBounds(t *testing.T) {
	src := dice.NewSeededSource(7)
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(-100, 100).Draw(rt, "lo")
		hi := rapid.IntRange(-100, 100).Draw(rt, "hi")
		got := dice.Range(src, lo, hi)
		assert.GreaterOrEqual(rt, got, min(lo, hi))
		assert.LessOrEqual(rt, got, max(lo, hi))
	})
}

func TestRoller_DelegatesToSource(t *testing.T) {
	src := &testutil.SequenceSource{Ints: []int{4}, Floats: []float64{0.25}}
	r := dice.NewLoggedRoller(src, zap.NewNop())
	assert.Equal(t, 4, r.Intn(10))
	assert.Equal(t, 0.25, r.Float64())
	assert.Equal(t, 5, r.Range(1, 10))
	assert.True(t, r.Percent(30))
}
