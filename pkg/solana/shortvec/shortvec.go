// Package shortvec implements the compact-u16 length prefix used by the
// Solana wire format.
package shortvec

import (
	"math"

	"github.com/pkg/errors"
)

var ErrValueTooLarge = errors.Errorf("value exceeds %d", math.MaxUint16)

// AppendLen appends the encoding of n to dst. Each byte carries seven bits
// of n, least significant first, with the high bit set on every byte but the
// last.
func AppendLen(dst []byte, n int) ([]byte, error) {
	if n < 0 || n > math.MaxUint16 {
		return dst, ErrValueTooLarge
	}

	for n >= 0x80 {
		dst = append(dst, byte(n)|0x80)
		n >>= 7
	}
	return append(dst, byte(n)), nil
}
