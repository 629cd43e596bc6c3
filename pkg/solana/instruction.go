package solana

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"
)

var (
	ErrIncorrectProgram     = errors.New("incorrect program")
	ErrIncorrectInstruction = errors.New("incorrect instruction")
)

// AccountMeta is an account referenced by an instruction along with the
// access it requires.
type AccountMeta struct {
	PublicKey  ed25519.PublicKey
	IsSigner   bool
	IsWritable bool

	// Set only while compiling a transaction.
	isPayer   bool
	isProgram bool
}

func NewAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{PublicKey: pub, IsSigner: isSigner, IsWritable: true}
}

func NewReadonlyAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{PublicKey: pub, IsSigner: isSigner}
}

// rank orders accounts within a message: the payer, writable signers,
// readonly signers, writable accounts, readonly accounts, then programs.
func (a AccountMeta) rank() int {
	switch {
	case a.isPayer:
		return 0
	case a.isProgram:
		return 5
	case a.IsSigner && a.IsWritable:
		return 1
	case a.IsSigner:
		return 2
	case a.IsWritable:
		return 3
	default:
		return 4
	}
}

// lessAccountMeta reports whether a sorts before b in a compiled message.
// Ties are broken by key so compilation is deterministic.
//
// Reference: https://docs.solana.com/transaction#account-addresses-format
func lessAccountMeta(a, b AccountMeta) bool {
	if ra, rb := a.rank(), b.rank(); ra != rb {
		return ra < rb
	}
	return bytes.Compare(a.PublicKey, b.PublicKey) < 0
}

type Instruction struct {
	Program  ed25519.PublicKey
	Accounts []AccountMeta
	Data     []byte
}

func NewInstruction(program ed25519.PublicKey, data []byte, accounts ...AccountMeta) Instruction {
	return Instruction{
		Program:  program,
		Data:     data,
		Accounts: accounts,
	}
}

// Clone returns a copy of the instruction that shares no memory with i.
func (i Instruction) Clone() Instruction {
	cloned := Instruction{
		Program:  append(ed25519.PublicKey(nil), i.Program...),
		Data:     append([]byte(nil), i.Data...),
		Accounts: make([]AccountMeta, len(i.Accounts)),
	}
	for j, a := range i.Accounts {
		a.PublicKey = append(ed25519.PublicKey(nil), a.PublicKey...)
		cloned.Accounts[j] = a
	}
	return cloned
}

// CompiledInstruction is an instruction within a message, with accounts
// replaced by their index into the message's account list.
type CompiledInstruction struct {
	ProgramIndex byte
	Accounts     []byte
	Data         []byte
}
