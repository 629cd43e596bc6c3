package solend

import (
	"crypto/ed25519"

	"github.com/code-payments/solend-client/pkg/solana"
	"github.com/code-payments/solend-client/pkg/solana/system"
)

type RefreshObligationInstructionAccounts struct {
	// Program defaults to PROGRAM_ID when nil.
	Program ed25519.PublicKey

	Obligation ed25519.PublicKey

	DepositReserves []ed25519.PublicKey
	BorrowReserves  []ed25519.PublicKey
}

// NewRefreshObligationInstruction returns an instruction that recomputes obligation values. Every deposit reserve followed
// by every borrow reserve must be passed, and each must have been refreshed
// earlier in the same transaction.
func NewRefreshObligationInstruction(
	accounts *RefreshObligationInstructionAccounts,
) solana.Instruction {
	var offset int

	data := make([]byte, 1)
	putInstructionType(data, InstructionTypeRefreshObligation, &offset)

	instructionAccounts := []solana.AccountMeta{
		{
			PublicKey:  accounts.Obligation,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  system.ClockSysVar,
			IsWritable: false,
			IsSigner:   false,
		},
	}
	for _, reserve := range accounts.DepositReserves {
		instructionAccounts = append(instructionAccounts, solana.NewReadonlyAccountMeta(reserve, false))
	}
	for _, reserve := range accounts.BorrowReserves {
		instructionAccounts = append(instructionAccounts, solana.NewReadonlyAccountMeta(reserve, false))
	}

	return solana.Instruction{
		Program: programOrDefault(accounts.Program),

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: instructionAccounts,
	}
}
