package solend

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/holiman/uint256"

	solanabinary "github.com/code-payments/solend-client/pkg/solana/binary"
)

func programOrDefault(program ed25519.PublicKey) ed25519.PublicKey {
	if len(program) == 0 {
		return PROGRAM_ID
	}
	return program
}

func putKey(dst []byte, v ed25519.PublicKey, offset *int) {
	copy(dst[*offset:*offset+ed25519.PublicKeySize], v)
	*offset += ed25519.PublicKeySize
}
func getKey(src []byte, dst *ed25519.PublicKey, offset *int) {
	*dst = make([]byte, ed25519.PublicKeySize)
	copy(*dst, src[*offset:])
	*offset += ed25519.PublicKeySize
}

func putUint8(dst []byte, v uint8, offset *int) {
	dst[*offset] = v
	*offset += 1
}
func getUint8(src []byte, dst *uint8, offset *int) {
	*dst = src[*offset]
	*offset += 1
}

func putBool(dst []byte, v bool, offset *int) {
	solanabinary.PutBool(dst[*offset:], v, offset)
}
func getBool(src []byte, dst *bool, offset *int) {
	solanabinary.GetBool(src[*offset:], dst, offset)
}

func putUint64(dst []byte, v uint64, offset *int) {
	binary.LittleEndian.PutUint64(dst[*offset:], v)
	*offset += 8
}
func getUint64(src []byte, dst *uint64, offset *int) {
	*dst = binary.LittleEndian.Uint64(src[*offset:])
	*offset += 8
}

func putUint128(dst []byte, v *uint256.Int, offset *int) {
	solanabinary.PutUint128(dst[*offset:], v, offset)
}
func getUint128(src []byte, dst **uint256.Int, offset *int) {
	solanabinary.GetUint128(src[*offset:], dst, offset)
}

func putBlob(dst []byte, v []byte, size int, offset *int) {
	solanabinary.PutBlob(dst[*offset:], v, size, offset)
}
func getBlob(src []byte, dst *[]byte, size int, offset *int) {
	solanabinary.GetBlob(src[*offset:], dst, size, offset)
}
