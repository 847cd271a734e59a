package sizing

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTest = errors.New("overflow")

func TestToUint32(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      int64
		want    uint32
		wantErr bool
	}{
		{0, 0, false},
		{42, 42, false},
		{math.MaxUint32, math.MaxUint32, false},
		{math.MaxUint32 + 1, 0, true},
		{-1, 0, true},
	}
	for _, tt := range tests {
		got, err := ToUint32(tt.in, errTest)
		if tt.wantErr {
			require.ErrorIs(t, err, errTest)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestAddUint32(t *testing.T) {
	t.Parallel()

	sum, ok := AddUint32(1, 2)
	assert.True(t, ok)
	assert.Equal(t, uint32(3), sum)

	_, ok = AddUint32(math.MaxUint32, 1)
	assert.False(t, ok)

	sum, ok = AddUint32(math.MaxUint32, 0)
	assert.True(t, ok)
	assert.Equal(t, uint32(math.MaxUint32), sum)
}
