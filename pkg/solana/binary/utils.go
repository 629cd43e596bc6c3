package binary

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/holiman/uint256"
)

// Uint128Size is the encoded size of a little endian u128.
const Uint128Size = 16

func PutKey32(dst []byte, src []byte, offset *int) {
	copy(dst, src)
	*offset += ed25519.PublicKeySize
}

func PutOptionalKey32(dst []byte, src []byte, offset *int, optionSize int) {
	if len(src) > 0 {
		dst[0] = 1
		copy(dst[optionSize:], src)
	}

	*offset += optionSize + ed25519.PublicKeySize
}

func PutUint64(dst []byte, v uint64, offset *int) {
	binary.LittleEndian.PutUint64(dst, v)
	*offset += 8
}

func PutUint32(dst []byte, v uint32, offset *int) {
	binary.LittleEndian.PutUint32(dst, v)
	*offset += 4
}

// PutUint128 writes the low 128 bits of v as little endian. A nil value is
// written as zero.
func PutUint128(dst []byte, v *uint256.Int, offset *int) {
	var lo, hi uint64
	if v != nil {
		lo, hi = v[0], v[1]
	}
	binary.LittleEndian.PutUint64(dst, lo)
	binary.LittleEndian.PutUint64(dst[8:], hi)
	*offset += Uint128Size
}

func PutUint8(dst []byte, v uint8, offset *int) {
	dst[0] = v
	*offset += 1
}

func PutBool(dst []byte, v bool, offset *int) {
	if v {
		dst[0] = 1
	} else {
		dst[0] = 0
	}
	*offset += 1
}

// PutBlob copies src into dst and advances by size, zero filling any
// remainder.
func PutBlob(dst []byte, src []byte, size int, offset *int) {
	n := copy(dst[:size], src)
	for i := n; i < size; i++ {
		dst[i] = 0
	}
	*offset += size
}

func PutOptionalUint64(dst []byte, v *uint64, offset *int, optionSize int) {
	if v != nil {
		dst[0] = 1
		binary.LittleEndian.PutUint64(dst[optionSize:], *v)
	}
	*offset += optionSize + 8
}

func GetKey32(src []byte, dst *ed25519.PublicKey, offset *int) {
	*dst = make([]byte, ed25519.PublicKeySize)
	copy(*dst, src)
	*offset += ed25519.PublicKeySize
}

func GetOptionalKey32(src []byte, dst *ed25519.PublicKey, offset *int, optionSize int) {
	if src[0] == 1 {
		*dst = make([]byte, ed25519.PublicKeySize)
		copy(*dst, src[optionSize:])
	}
	*offset += optionSize + ed25519.PublicKeySize
}

func GetUint64(src []byte, dst *uint64, offset *int) {
	*dst = binary.LittleEndian.Uint64(src)
	*offset += 8
}

func GetUint32(src []byte, dst *uint32, offset *int) {
	*dst = binary.LittleEndian.Uint32(src)
	*offset += 4
}

func GetUint128(src []byte, dst **uint256.Int, offset *int) {
	v := new(uint256.Int)
	v[0] = binary.LittleEndian.Uint64(src)
	v[1] = binary.LittleEndian.Uint64(src[8:])
	*dst = v
	*offset += Uint128Size
}

func GetUint8(src []byte, dst *uint8, offset *int) {
	*dst = src[0]
	*offset += 1
}

func GetBool(src []byte, dst *bool, offset *int) {
	*dst = src[0] != 0
	*offset += 1
}

func GetBlob(src []byte, dst *[]byte, size int, offset *int) {
	*dst = make([]byte, size)
	copy(*dst, src[:size])
	*offset += size
}

func GetOptionalUint64(src []byte, dst **uint64, offset *int, optionSize int) {
	if src[0] == 1 {
		val := binary.LittleEndian.Uint64(src[optionSize:])
		*dst = &val
	}
	*offset += optionSize + 8
}
