package solend

import (
	"crypto/ed25519"

	"github.com/code-payments/solend-client/pkg/solana"
	"github.com/code-payments/solend-client/pkg/solana/system"
	"github.com/code-payments/solend-client/pkg/solana/token"
)

const (
	DepositObligationCollateralInstructionArgsSize = 8 // collateralAmount
)

type DepositObligationCollateralInstructionArgs struct {
	CollateralAmount uint64
}

type DepositObligationCollateralInstructionAccounts struct {
	// Program defaults to PROGRAM_ID when nil.
	Program ed25519.PublicKey

	SourceCollateral      ed25519.PublicKey
	DestinationCollateral ed25519.PublicKey
	DepositReserve        ed25519.PublicKey
	Obligation            ed25519.PublicKey
	LendingMarket         ed25519.PublicKey
	ObligationOwner       ed25519.PublicKey
	TransferAuthority     ed25519.PublicKey
}

// NewDepositObligationCollateralInstruction returns an instruction that moves collateral tokens into an obligation.
func NewDepositObligationCollateralInstruction(
	accounts *DepositObligationCollateralInstructionAccounts,
	args *DepositObligationCollateralInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 1+DepositObligationCollateralInstructionArgsSize)

	putInstructionType(data, InstructionTypeDepositObligationCollateral, &offset)
	putUint64(data, args.CollateralAmount, &offset)

	instructionAccounts := []solana.AccountMeta{
		{
			PublicKey:  accounts.SourceCollateral,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.DestinationCollateral,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.DepositReserve,
			IsWritable: false,
			IsSigner:   false,
		},
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
			PublicKey:  accounts.TransferAuthority,
			IsWritable: false,
			IsSigner:   true,
		},
		{
			PublicKey:  system.ClockSysVar,
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
