package solend

import (
	"crypto/ed25519"

	"github.com/code-payments/solend-client/pkg/solana"
	"github.com/code-payments/solend-client/pkg/solana/system"
	"github.com/code-payments/solend-client/pkg/solana/token"
)

type InitObligationInstructionAccounts struct {
	// Program defaults to PROGRAM_ID when nil.
	Program ed25519.PublicKey

	Obligation      ed25519.PublicKey
	LendingMarket   ed25519.PublicKey
	ObligationOwner ed25519.PublicKey
}

// NewInitObligationInstruction returns an instruction that initializes an obligation account previously created with
// system.CreateAccountWithSeed.
func NewInitObligationInstruction(
	accounts *InitObligationInstructionAccounts,
) solana.Instruction {
	var offset int

	data := make([]byte, 1)
	putInstructionType(data, InstructionTypeInitObligation, &offset)

	instructionAccounts := []solana.AccountMeta{
		{
			PublicKey:  accounts.Obligation,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.LendingMarket,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.ObligationOwner,
			IsWritable: false,
			IsSigner:   true,
		},
		{
			PublicKey:  system.ClockSysVar,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  system.RentSysVar,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  token.ProgramKey,
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
