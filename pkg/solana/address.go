package solana

import (
	"crypto/ed25519"
	"crypto/sha256"
	"math"

	"github.com/jdgcs/ed25519/edwards25519"
	"github.com/pkg/errors"
)

const (
	maxSeeds      = 16
	maxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"
)

var (
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")

	ErrInvalidPublicKey = errors.New("invalid public key")
	ErrIllegalOwner     = errors.New("owner is a program derived address marker")
	ErrNoProgramAddress = errors.New("no viable bump seed for program address")
)

// CreateProgramAddress derives the program address for seeds, as the Solana
// SDK's Pubkey::create_program_address does. Program addresses must lie off
// the ed25519 curve so that no private key exists for them;
// ErrInvalidPublicKey is returned when the derived hash is a valid point.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L158
func CreateProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	if len(seeds) > maxSeeds {
		return nil, ErrTooManySeeds
	}

	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > maxSeedLength {
			return nil, ErrMaxSeedLengthExceeded
		}
		h.Write(seed)
	}
	h.Write(program)
	h.Write([]byte(pdaMarker))

	var candidate [ed25519.PublicKeySize]byte
	copy(candidate[:], h.Sum(nil))

	if isOnCurve(candidate) {
		return nil, ErrInvalidPublicKey
	}
	return candidate[:], nil
}

// isOnCurve reports whether key decompresses to an ed25519 point. The
// standard library keeps its point type internal, so decompression goes
// through the edwards25519 package used by ed25519.Verify.
func isOnCurve(key [ed25519.PublicKeySize]byte) bool {
	var point edwards25519.ExtendedGroupElement
	return point.FromBytes(&key)
}

// FindProgramAddressAndBump mirrors the implementation of the Solana SDK's
// FindProgramAddress. It returns the address and bump seed.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L234
func FindProgramAddressAndBump(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := math.MaxUint8; bump > 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}

		pub, err := CreateProgramAddress(program, withBump...)
		switch err {
		case nil:
			return pub, byte(bump), nil
		case ErrInvalidPublicKey:
		default:
			return nil, 0, err
		}
	}

	return nil, 0, ErrNoProgramAddress
}

// FindProgramAddress mirrors the implementation of the Solana SDK's FindProgramAddress.
// It only returns the address.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L234
func FindProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	pub, _, err := FindProgramAddressAndBump(program, seeds...)
	return pub, err
}

// CreateWithSeed mirrors the implementation of the Solana SDK's Pubkey::create_with_seed.
// The derived address is sha256(base || seed || owner), and is typically funded
// through system.CreateAccountWithSeed.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L125
func CreateWithSeed(base ed25519.PublicKey, seed string, owner ed25519.PublicKey) (ed25519.PublicKey, error) {
	if len(seed) > maxSeedLength {
		return nil, ErrMaxSeedLengthExceeded
	}

	if len(owner) >= len(pdaMarker) && string(owner[len(owner)-len(pdaMarker):]) == pdaMarker {
		return nil, ErrIllegalOwner
	}

	h := sha256.New()
	h.Write(base)
	h.Write([]byte(seed))
	h.Write(owner)
	return h.Sum(nil), nil
}
