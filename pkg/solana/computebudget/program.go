package computebudget

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/code-payments/solend-client/pkg/solana"
)

// ComputeBudget111111111111111111111111111111
var ProgramKey = ed25519.PublicKey{3, 6, 70, 111, 229, 33, 23, 50, 255, 236, 173, 186, 114, 195, 155, 231, 188, 140, 229, 187, 197, 247, 18, 107, 44, 67, 155, 58, 64, 0, 0, 0}

type Command uint8

const (
	// nolint:varcheck,deadcode,unused
	CommandRequestUnits Command = iota
	// nolint:varcheck,deadcode,unused
	CommandRequestHeapFrame
	CommandSetComputeUnitLimit
	CommandSetComputeUnitPrice
)

// MaxUnitLimit is the largest compute unit limit the runtime grants a
// transaction.
const MaxUnitLimit = 1_400_000

var ErrInvalidInstruction = errors.New("invalid compute budget instruction")

// Budget is the compute limit and priority fee requested by a transaction.
// Zero values leave the runtime defaults in place.
type Budget struct {
	// UnitLimit is the maximum number of compute units the transaction may
	// consume.
	UnitLimit uint32

	// UnitPrice is the priority fee in micro-lamports per compute unit.
	UnitPrice uint64
}

func (b Budget) IsZero() bool {
	return b.UnitLimit == 0 && b.UnitPrice == 0
}

// Instructions returns the instructions requesting the budget, in the order
// they should prefix a transaction.
func (b Budget) Instructions() []solana.Instruction {
	var instructions []solana.Instruction
	if b.UnitLimit > 0 {
		instructions = append(instructions, SetComputeUnitLimit(b.UnitLimit))
	}
	if b.UnitPrice > 0 {
		instructions = append(instructions, SetComputeUnitPrice(b.UnitPrice))
	}
	return instructions
}

func SetComputeUnitLimit(computeUnitLimit uint32) solana.Instruction {
	data := make([]byte, 1+4)
	data[0] = byte(CommandSetComputeUnitLimit)
	binary.LittleEndian.PutUint32(data[1:], computeUnitLimit)

	return solana.NewInstruction(ProgramKey, data)
}

func SetComputeUnitPrice(computeUnitPrice uint64) solana.Instruction {
	data := make([]byte, 1+8)
	data[0] = byte(CommandSetComputeUnitPrice)
	binary.LittleEndian.PutUint64(data[1:], computeUnitPrice)

	return solana.NewInstruction(ProgramKey, data)
}

// DecompileInstruction returns the command of a compute budget instruction
// and its single argument.
func DecompileInstruction(ix solana.Instruction) (Command, uint64, error) {
	if !bytes.Equal(ix.Program, ProgramKey) {
		return 0, 0, solana.ErrIncorrectProgram
	}
	if len(ix.Data) == 0 {
		return 0, 0, ErrInvalidInstruction
	}

	switch cmd := Command(ix.Data[0]); cmd {
	case CommandSetComputeUnitLimit:
		if len(ix.Data) != 5 {
			return 0, 0, errors.Wrap(ErrInvalidInstruction, "invalid length")
		}
		return cmd, uint64(binary.LittleEndian.Uint32(ix.Data[1:])), nil
	case CommandSetComputeUnitPrice:
		if len(ix.Data) != 9 {
			return 0, 0, errors.Wrap(ErrInvalidInstruction, "invalid length")
		}
		return cmd, binary.LittleEndian.Uint64(ix.Data[1:]), nil
	default:
		return 0, 0, errors.Wrapf(ErrInvalidInstruction, "unsupported command %d", cmd)
	}
}
