package computebudget

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/solend-client/pkg/solana"
)

func TestBudget_Instructions(t *testing.T) {
	assert.True(t, Budget{}.IsZero())
	assert.Empty(t, Budget{}.Instructions())

	instructions := Budget{UnitLimit: 400_000, UnitPrice: 25_000}.Instructions()
	require.Len(t, instructions, 2)

	cmd, value, err := DecompileInstruction(instructions[0])
	require.NoError(t, err)
	assert.Equal(t, CommandSetComputeUnitLimit, cmd)
	assert.EqualValues(t, 400_000, value)

	cmd, value, err = DecompileInstruction(instructions[1])
	require.NoError(t, err)
	assert.Equal(t, CommandSetComputeUnitPrice, cmd)
	assert.EqualValues(t, 25_000, value)

	instructions = Budget{UnitPrice: 1}.Instructions()
	require.Len(t, instructions, 1)
	assert.Equal(t, []byte{3, 1, 0, 0, 0, 0, 0, 0, 0}, instructions[0].Data)
	assert.Empty(t, instructions[0].Accounts)
}

func TestDecompileInstruction_Invalid(t *testing.T) {
	_, _, err := DecompileInstruction(solana.NewInstruction(make([]byte, 32), []byte{2, 0, 0, 0, 0}))
	assert.Equal(t, solana.ErrIncorrectProgram, err)

	for _, data := range [][]byte{
		nil,
		{2, 0, 0},
		{3, 0, 0, 0, 0},
		{1, 0, 0, 0, 0},
	} {
		_, _, err := DecompileInstruction(solana.NewInstruction(ProgramKey, data))
		assert.True(t, errors.Is(err, ErrInvalidInstruction))
	}
}
