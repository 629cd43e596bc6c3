package system

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/solend-client/pkg/solana"
)

// ProgramKey is the system program, 11111111111111111111111111111111.
var ProgramKey [32]byte

var (
	// RentSysVar points to the system variable "Rent"
	//
	// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/sysvar/rent.rs#L11
	RentSysVar = mustDecode("SysvarRent111111111111111111111111111111111")

	// ClockSysVar points to the system variable "Clock"
	//
	// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/sysvar/clock.rs#L10
	ClockSysVar = mustDecode("SysvarC1ock11111111111111111111111111111111")
)

// Command is the u32 discriminator of a system instruction.
type Command uint32

// Only the commands the lending flows build are listed.
const (
	CommandTransfer              Command = 2
	CommandCreateAccountWithSeed Command = 3
)

func mustDecode(value string) ed25519.PublicKey {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}

// GetCommand returns the command of a system program instruction.
func GetCommand(ix solana.Instruction) (Command, error) {
	if !bytes.Equal(ix.Program, ProgramKey[:]) {
		return 0, solana.ErrIncorrectProgram
	}
	if len(ix.Data) < 4 {
		return 0, errors.Errorf("invalid instruction data size: %d", len(ix.Data))
	}
	return Command(binary.LittleEndian.Uint32(ix.Data)), nil
}

// CreateAccountWithSeed creates a new account at an address derived with
// solana.CreateWithSeed(base, seed, owner).
//
// The base account only needs to sign separately when it differs from the
// funder.
//
// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/system_instruction.rs#L74-L92
func CreateAccountWithSeed(funder, address, base ed25519.PublicKey, seed string, lamports, size uint64, owner ed25519.PublicKey) solana.Instruction {
	// # Account references
	//   0. [WRITE, SIGNER] Funding account
	//   1. [WRITE] Created account
	//   2. [SIGNER] (optional) Base account
	data := make([]byte, 4+32+8+len(seed)+2*8+32)

	var offset int
	binary.LittleEndian.PutUint32(data, uint32(CommandCreateAccountWithSeed))
	offset += 4
	copy(data[offset:], base)
	offset += ed25519.PublicKeySize
	binary.LittleEndian.PutUint64(data[offset:], uint64(len(seed)))
	offset += 8
	copy(data[offset:], seed)
	offset += len(seed)
	binary.LittleEndian.PutUint64(data[offset:], lamports)
	offset += 8
	binary.LittleEndian.PutUint64(data[offset:], size)
	offset += 8
	copy(data[offset:], owner)

	accounts := []solana.AccountMeta{
		solana.NewAccountMeta(funder, true),
		solana.NewAccountMeta(address, false),
	}
	if !bytes.Equal(base, funder) {
		accounts = append(accounts, solana.NewReadonlyAccountMeta(base, true))
	}

	return solana.NewInstruction(ProgramKey[:], data, accounts...)
}

type DecompiledCreateAccountWithSeed struct {
	Funder  ed25519.PublicKey
	Address ed25519.PublicKey

	Base     ed25519.PublicKey
	Seed     string
	Lamports uint64
	Size     uint64
	Owner    ed25519.PublicKey
}

func DecompileCreateAccountWithSeed(ix solana.Instruction) (*DecompiledCreateAccountWithSeed, error) {
	if err := checkCommand(ix, CommandCreateAccountWithSeed); err != nil {
		return nil, err
	}
	if len(ix.Accounts) != 2 && len(ix.Accounts) != 3 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}

	const fixedSize = 4 + 32 + 8 + 2*8 + 32
	if len(ix.Data) < fixedSize {
		return nil, errors.Errorf("invalid instruction data size: %d", len(ix.Data))
	}

	offset := 4
	base := ed25519.PublicKey(append([]byte(nil), ix.Data[offset:offset+ed25519.PublicKeySize]...))
	offset += ed25519.PublicKeySize

	seedLen := binary.LittleEndian.Uint64(ix.Data[offset:])
	offset += 8
	if seedLen != uint64(len(ix.Data)-fixedSize) {
		return nil, errors.Errorf("invalid instruction data size: %d", len(ix.Data))
	}

	v := &DecompiledCreateAccountWithSeed{
		Funder:  ix.Accounts[0].PublicKey,
		Address: ix.Accounts[1].PublicKey,
		Base:    base,
		Seed:    string(ix.Data[offset : offset+int(seedLen)]),
	}
	offset += int(seedLen)

	v.Lamports = binary.LittleEndian.Uint64(ix.Data[offset:])
	offset += 8
	v.Size = binary.LittleEndian.Uint64(ix.Data[offset:])
	offset += 8
	v.Owner = append(ed25519.PublicKey(nil), ix.Data[offset:offset+ed25519.PublicKeySize]...)

	return v, nil
}

// Transfer moves lamports between system owned accounts.
//
// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/system_instruction.rs#L41-L50
func Transfer(source, dest ed25519.PublicKey, lamports uint64) solana.Instruction {
	// # Account references
	//   0. [WRITE, SIGNER] Funding account
	//   1. [WRITE] Recipient account
	data := make([]byte, 4+8)
	binary.LittleEndian.PutUint32(data, uint32(CommandTransfer))
	binary.LittleEndian.PutUint64(data[4:], lamports)

	return solana.NewInstruction(
		ProgramKey[:],
		data,
		solana.NewAccountMeta(source, true),
		solana.NewAccountMeta(dest, false),
	)
}

type DecompiledTransfer struct {
	Source      ed25519.PublicKey
	Destination ed25519.PublicKey
	Lamports    uint64
}

func DecompileTransfer(ix solana.Instruction) (*DecompiledTransfer, error) {
	if err := checkCommand(ix, CommandTransfer); err != nil {
		return nil, err
	}
	if len(ix.Accounts) != 2 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}
	if len(ix.Data) != 12 {
		return nil, errors.Errorf("invalid instruction data size: %d", len(ix.Data))
	}

	return &DecompiledTransfer{
		Source:      ix.Accounts[0].PublicKey,
		Destination: ix.Accounts[1].PublicKey,
		Lamports:    binary.LittleEndian.Uint64(ix.Data[4:]),
	}, nil
}

func checkCommand(ix solana.Instruction, expected Command) error {
	cmd, err := GetCommand(ix)
	if err != nil {
		return err
	}
	if cmd != expected {
		return solana.ErrIncorrectInstruction
	}
	return nil
}
