package solend

import (
	"crypto/ed25519"

	"github.com/code-payments/solend-client/pkg/solana"
	"github.com/code-payments/solend-client/pkg/solana/system"
)

type RefreshReserveInstructionAccounts struct {
	// Program defaults to PROGRAM_ID when nil.
	Program ed25519.PublicKey

	Reserve         ed25519.PublicKey
	PythOracle      ed25519.PublicKey
	SwitchboardFeed ed25519.PublicKey
}

// NewRefreshReserveInstruction returns an instruction that accrues interest and updates the market price of a reserve.
func NewRefreshReserveInstruction(
	accounts *RefreshReserveInstructionAccounts,
) solana.Instruction {
	var offset int

	data := make([]byte, 1)
	putInstructionType(data, InstructionTypeRefreshReserve, &offset)

	instructionAccounts := []solana.AccountMeta{
		{
			PublicKey:  accounts.Reserve,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.PythOracle,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.SwitchboardFeed,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  system.ClockSysVar,
			IsWritable: false,
			IsSigner:   false,
		},
	}

	return solana.Instruction{
		Program: programOrDefault(accounts.Program),

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: instructionAccounts,
	}
}
