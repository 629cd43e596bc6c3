package solend

import (
	"crypto/ed25519"

	"github.com/code-payments/solend-client/pkg/solana"
	"github.com/code-payments/solend-client/pkg/solana/system"
	"github.com/code-payments/solend-client/pkg/solana/token"
)

const (
	DepositReserveLiquidityInstructionArgsSize = 8 // liquidityAmount
)

type DepositReserveLiquidityInstructionArgs struct {
	LiquidityAmount uint64
}

type DepositReserveLiquidityInstructionAccounts struct {
	// Program defaults to PROGRAM_ID when nil.
	Program ed25519.PublicKey

	SourceLiquidity        ed25519.PublicKey
	DestinationCollateral  ed25519.PublicKey
	Reserve                ed25519.PublicKey
	ReserveLiquiditySupply ed25519.PublicKey
	ReserveCollateralMint  ed25519.PublicKey
	LendingMarket          ed25519.PublicKey
	LendingMarketAuthority ed25519.PublicKey
	TransferAuthority      ed25519.PublicKey
}

// NewDepositReserveLiquidityInstruction returns an instruction that exchanges liquidity for minted collateral tokens without
// touching an obligation.
func NewDepositReserveLiquidityInstruction(
	accounts *DepositReserveLiquidityInstructionAccounts,
	args *DepositReserveLiquidityInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 1+DepositReserveLiquidityInstructionArgsSize)

	putInstructionType(data, InstructionTypeDepositReserveLiquidity, &offset)
	putUint64(data, args.LiquidityAmount, &offset)

	instructionAccounts := []solana.AccountMeta{
		{
			PublicKey:  accounts.SourceLiquidity,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.DestinationCollateral,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.Reserve,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.ReserveLiquiditySupply,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.ReserveCollateralMint,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.LendingMarket,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.LendingMarketAuthority,
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
