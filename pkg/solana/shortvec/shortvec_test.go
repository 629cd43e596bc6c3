package shortvec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendLen_KnownVectors(t *testing.T) {
	for _, tc := range []struct {
		value   int
		encoded []byte
	}{
		{0, []byte{0x00}},
		{5, []byte{0x05}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x80, 0x01}},
		{0xff, []byte{0xff, 0x01}},
		{0x100, []byte{0x80, 0x02}},
		{0x3fff, []byte{0xff, 0x7f}},
		{0x4000, []byte{0x80, 0x80, 0x01}},
		{0xffff, []byte{0xff, 0xff, 0x03}},
	} {
		encoded, err := AppendLen(nil, tc.value)
		require.NoError(t, err)
		assert.Equal(t, tc.encoded, encoded)
	}
}

func TestAppendLen_AllValues(t *testing.T) {
	for i := 0; i <= math.MaxUint16; i++ {
		encoded, err := AppendLen([]byte{0xaa}, i)
		require.NoError(t, err)
		require.Equal(t, byte(0xaa), encoded[0])

		encoded = encoded[1:]
		switch {
		case i < 1<<7:
			require.Len(t, encoded, 1)
		case i < 1<<14:
			require.Len(t, encoded, 2)
		default:
			require.Len(t, encoded, 3)
		}

		var value int
		for j, b := range encoded {
			last := j == len(encoded)-1
			require.Equal(t, !last, b&0x80 != 0)
			if last && j > 0 {
				require.NotZero(t, b, "non-canonical encoding of %d", i)
			}
			value |= int(b&0x7f) << (7 * j)
		}
		require.Equal(t, i, value)
	}
}

func TestAppendLen_OutOfRange(t *testing.T) {
	prefix := []byte{1, 2}

	encoded, err := AppendLen(prefix, math.MaxUint16+1)
	assert.Equal(t, ErrValueTooLarge, err)
	assert.Equal(t, prefix, encoded)

	_, err = AppendLen(nil, -1)
	assert.Equal(t, ErrValueTooLarge, err)
}
