package safeconv_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/csstree/pkg/safeconv"
)

func TestUint64ToInt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   uint64
		want int
		ok   bool
	}{
		{"zero", 0, 0, true},
		{"size", 4 << 20, 4 << 20, true},
		{"max int", uint64(safeconv.MaxInt), safeconv.MaxInt, true},
		{"overflow", math.MaxUint64, 0, false},
	}

	for _, tt := range tests {
		got, ok := safeconv.Uint64ToInt(tt.in)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestMustIntToUint64(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint64(12), safeconv.MustIntToUint64(12))

	assert.PanicsWithValue(t, "safeconv: negative int to uint64 conversion", func() {
		safeconv.MustIntToUint64(-1)
	})
}
