package solend

import (
	"crypto/ed25519"

	"github.com/code-payments/solend-client/pkg/solana"
	"github.com/code-payments/solend-client/pkg/solana/system"
	"github.com/code-payments/solend-client/pkg/solana/token"
)

const (
	RepayObligationLiquidityInstructionArgsSize = 8 // liquidityAmount
)

type RepayObligationLiquidityInstructionArgs struct {
	LiquidityAmount uint64
}

type RepayObligationLiquidityInstructionAccounts struct {
	// Program defaults to PROGRAM_ID when nil.
	Program ed25519.PublicKey

	SourceLiquidity      ed25519.PublicKey
	DestinationLiquidity ed25519.PublicKey
	RepayReserve         ed25519.PublicKey
	Obligation           ed25519.PublicKey
	LendingMarket        ed25519.PublicKey
	TransferAuthority    ed25519.PublicKey
}

// NewRepayObligationLiquidityInstruction returns an instruction that repays borrowed liquidity. A LiquidityAmount of
// U64Max repays the full outstanding borrow.
func NewRepayObligationLiquidityInstruction(
	accounts *RepayObligationLiquidityInstructionAccounts,
	args *RepayObligationLiquidityInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 1+RepayObligationLiquidityInstructionArgsSize)

	putInstructionType(data, InstructionTypeRepayObligationLiquidity, &offset)
	putUint64(data, args.LiquidityAmount, &offset)

	instructionAccounts := []solana.AccountMeta{
		{
			PublicKey:  accounts.SourceLiquidity,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.DestinationLiquidity,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.RepayReserve,
			IsWritable: true,
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
