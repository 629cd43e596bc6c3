package token

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/solend-client/pkg/solana"
	"github.com/code-payments/solend-client/pkg/solana/system"
)

// AssociatedTokenAccountProgramKey is the address of the associated token
// account program.
//
// Current key: ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL
var AssociatedTokenAccountProgramKey = ed25519.PublicKey{140, 151, 37, 143, 78, 36, 137, 241, 187, 61, 16, 41, 20, 142, 13, 131, 11, 90, 19, 153, 218, 255, 16, 132, 4, 142, 123, 216, 219, 233, 248, 89}

const (
	associatedCommandCreate           byte = 0
	associatedCommandCreateIdempotent byte = 1

	associatedAccountCount = 7
)

// GetAssociatedAccount returns the associated account address for an SPL token.
//
// Reference: https://spl.solana.com/associated-token-account#finding-the-associated-token-account-address
func GetAssociatedAccount(wallet, mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	return solana.FindProgramAddress(
		AssociatedTokenAccountProgramKey,
		wallet,
		ProgramKey,
		mint,
	)
}

// CreateAssociatedTokenAccount returns an instruction that creates wallet's
// associated account for mint, paid for by subsidizer, along with the
// account's address. The instruction fails if the account already exists.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/0639953c7dd0f5228c3ceda3ba68fece3b46ff1d/associated-token-account/program/src/lib.rs#L54
func CreateAssociatedTokenAccount(subsidizer, wallet, mint ed25519.PublicKey) (solana.Instruction, ed25519.PublicKey, error) {
	addr, err := GetAssociatedAccount(wallet, mint)
	if err != nil {
		return solana.Instruction{}, nil, err
	}

	return solana.NewInstruction(
		AssociatedTokenAccountProgramKey,
		[]byte{},
		solana.NewAccountMeta(subsidizer, true),
		solana.NewAccountMeta(addr, false),
		solana.NewReadonlyAccountMeta(wallet, false),
		solana.NewReadonlyAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(system.ProgramKey[:], false),
		solana.NewReadonlyAccountMeta(ProgramKey, false),
		solana.NewReadonlyAccountMeta(system.RentSysVar, false),
	), addr, nil
}

type DecompiledCreateAssociatedAccount struct {
	Subsidizer ed25519.PublicKey
	Address    ed25519.PublicKey
	Owner      ed25519.PublicKey
	Mint       ed25519.PublicKey

	// Idempotent is set for the variant that succeeds when the account
	// already exists.
	Idempotent bool
}

// DecompileCreateAssociatedAccount parses both the legacy and idempotent
// create instructions. The rent sysvar is optional, as newer clients omit
// it.
func DecompileCreateAssociatedAccount(ix solana.Instruction) (*DecompiledCreateAssociatedAccount, error) {
	if !bytes.Equal(ix.Program, AssociatedTokenAccountProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}

	var idempotent bool
	switch {
	case len(ix.Data) == 0 || bytes.Equal(ix.Data, []byte{associatedCommandCreate}):
	case bytes.Equal(ix.Data, []byte{associatedCommandCreateIdempotent}):
		idempotent = true
	default:
		return nil, solana.ErrIncorrectInstruction
	}

	if len(ix.Accounts) != associatedAccountCount && len(ix.Accounts) != associatedAccountCount-1 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}
	if !bytes.Equal(ix.Accounts[4].PublicKey, system.ProgramKey[:]) {
		return nil, errors.New("system program key mismatch")
	}
	if !bytes.Equal(ix.Accounts[5].PublicKey, ProgramKey) {
		return nil, errors.New("token program key mismatch")
	}
	if len(ix.Accounts) == associatedAccountCount && !bytes.Equal(ix.Accounts[6].PublicKey, system.RentSysVar) {
		return nil, errors.New("rent sysvar mismatch")
	}

	return &DecompiledCreateAssociatedAccount{
		Subsidizer: ix.Accounts[0].PublicKey,
		Address:    ix.Accounts[1].PublicKey,
		Owner:      ix.Accounts[2].PublicKey,
		Mint:       ix.Accounts[3].PublicKey,
		Idempotent: idempotent,
	}, nil
}
