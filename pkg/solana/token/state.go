package token

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/solend-client/pkg/solana/binary"
)

type AccountState byte

const (
	AccountStateUninitialized AccountState = iota
	AccountStateInitialized
	AccountStateFrozen
)

func (s AccountState) String() string {
	switch s {
	case AccountStateUninitialized:
		return "uninitialized"
	case AccountStateInitialized:
		return "initialized"
	case AccountStateFrozen:
		return "frozen"
	default:
		return "unknown"
	}
}

// AccountSize is the size of an SPL token account.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/11b1e3eefdd4e523768d63f7c70a7aa391ea0d02/token/program/src/state.rs#L125
const AccountSize = 165

// COption tags are little endian u32 values.
const optionSize = 4

var (
	ErrInvalidAccountSize  = errors.New("invalid token account size")
	ErrInvalidAccountState = errors.New("invalid token account state")
)

// Account is an SPL token account.
type Account struct {
	Mint   ed25519.PublicKey
	Owner  ed25519.PublicKey
	Amount uint64

	// DelegatedAmount is only meaningful when Delegate is set.
	Delegate        ed25519.PublicKey
	DelegatedAmount uint64

	State AccountState

	// RentExemptReserve is set for wrapped SOL accounts, where the token
	// amount tracks lamports above this reserve.
	RentExemptReserve *uint64

	CloseAuthority ed25519.PublicKey
}

// ParseAccount decodes token account data.
func ParseAccount(data []byte) (*Account, error) {
	if len(data) != AccountSize {
		return nil, errors.Wrapf(ErrInvalidAccountSize, "%d bytes", len(data))
	}

	var a Account
	var offset int
	binary.GetKey32(data, &a.Mint, &offset)
	binary.GetKey32(data[offset:], &a.Owner, &offset)
	binary.GetUint64(data[offset:], &a.Amount, &offset)
	binary.GetOptionalKey32(data[offset:], &a.Delegate, &offset, optionSize)

	a.State = AccountState(data[offset])
	offset++
	if a.State > AccountStateFrozen {
		return nil, errors.Wrapf(ErrInvalidAccountState, "%d", a.State)
	}

	binary.GetOptionalUint64(data[offset:], &a.RentExemptReserve, &offset, optionSize)
	binary.GetUint64(data[offset:], &a.DelegatedAmount, &offset)
	binary.GetOptionalKey32(data[offset:], &a.CloseAuthority, &offset, optionSize)

	return &a, nil
}

// Marshal encodes the account in its on chain layout.
func (a *Account) Marshal() []byte {
	b := make([]byte, AccountSize)

	var offset int
	binary.PutKey32(b, a.Mint, &offset)
	binary.PutKey32(b[offset:], a.Owner, &offset)
	binary.PutUint64(b[offset:], a.Amount, &offset)
	binary.PutOptionalKey32(b[offset:], a.Delegate, &offset, optionSize)
	b[offset] = byte(a.State)
	offset++
	binary.PutOptionalUint64(b[offset:], a.RentExemptReserve, &offset, optionSize)
	binary.PutUint64(b[offset:], a.DelegatedAmount, &offset)
	binary.PutOptionalKey32(b[offset:], a.CloseAuthority, &offset, optionSize)

	return b
}

// IsNative reports whether the account holds wrapped SOL.
func (a *Account) IsNative() bool {
	return a.RentExemptReserve != nil
}
