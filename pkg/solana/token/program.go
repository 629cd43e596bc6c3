package token

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/solend-client/pkg/solana"
)

// ProgramKey is the address of the token program that should be used.
//
// Current key: TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA
var ProgramKey = ed25519.PublicKey{6, 221, 246, 225, 215, 101, 161, 147, 217, 203, 225, 70, 206, 235, 121, 172, 28, 180, 133, 237, 95, 91, 55, 145, 58, 140, 245, 133, 126, 255, 0, 169}

// NativeMint is the mint of wrapped SOL. Token accounts for this mint hold
// lamports, and their token balance tracks the lamport balance above the
// rent exempt reserve after a SyncNative.
//
// Current key: So11111111111111111111111111111111111111112
var NativeMint = ed25519.PublicKey{6, 155, 136, 87, 254, 171, 129, 132, 251, 104, 127, 99, 70, 24, 192, 53, 218, 196, 57, 220, 26, 235, 59, 85, 152, 160, 240, 0, 0, 0, 0, 1}

// Command is the leading byte of a token instruction.
type Command byte

const (
	CommandCloseAccount Command = 9
	CommandSyncNative   Command = 17
)

// GetCommand returns the command of a token program instruction.
func GetCommand(ix solana.Instruction) (Command, error) {
	if !bytes.Equal(ix.Program, ProgramKey) {
		return 0, solana.ErrIncorrectProgram
	}
	if len(ix.Data) == 0 {
		return 0, errors.New("token instruction missing data")
	}
	return Command(ix.Data[0]), nil
}

// CloseAccount transfers all lamports of account to dest and closes it.
// Non-native accounts may only be closed when their token amount is zero.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/instruction.rs#L183-L197
func CloseAccount(account, dest, owner ed25519.PublicKey) solana.Instruction {
	//   0. `[writable]` The account to close.
	//   1. `[writable]` The destination account.
	//   2. `[signer]` The account's owner.
	return solana.NewInstruction(
		ProgramKey,
		[]byte{byte(CommandCloseAccount)},
		solana.NewAccountMeta(account, false),
		solana.NewAccountMeta(dest, false),
		solana.NewReadonlyAccountMeta(owner, true),
	)
}

type DecompiledCloseAccount struct {
	Account     ed25519.PublicKey
	Destination ed25519.PublicKey
	Owner       ed25519.PublicKey
}

func DecompileCloseAccount(ix solana.Instruction) (*DecompiledCloseAccount, error) {
	if err := checkCommand(ix, CommandCloseAccount); err != nil {
		return nil, err
	}
	// Multisig owners append their signers after the owner.
	if len(ix.Accounts) < 3 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}

	return &DecompiledCloseAccount{
		Account:     ix.Accounts[0].PublicKey,
		Destination: ix.Accounts[1].PublicKey,
		Owner:       ix.Accounts[2].PublicKey,
	}, nil
}

// SyncNative updates the token amount of a native (wrapped SOL) account to
// match its lamport balance less the rent exempt reserve.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/c3137f4ca2e1fdc0f6e4da5fb4f5e1d3bd5de4bc/token/program/src/instruction.rs#L421-L430
func SyncNative(account ed25519.PublicKey) solana.Instruction {
	//   0. `[writable]`  The native token account to sync with its underlying lamports.
	return solana.NewInstruction(
		ProgramKey,
		[]byte{byte(CommandSyncNative)},
		solana.NewAccountMeta(account, false),
	)
}

type DecompiledSyncNative struct {
	Account ed25519.PublicKey
}

func DecompileSyncNative(ix solana.Instruction) (*DecompiledSyncNative, error) {
	if err := checkCommand(ix, CommandSyncNative); err != nil {
		return nil, err
	}
	if len(ix.Accounts) != 1 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}

	return &DecompiledSyncNative{
		Account: ix.Accounts[0].PublicKey,
	}, nil
}

func checkCommand(ix solana.Instruction, expected Command) error {
	cmd, err := GetCommand(ix)
	if err != nil {
		return err
	}
	if cmd != expected || len(ix.Data) != 1 {
		return solana.ErrIncorrectInstruction
	}
	return nil
}
