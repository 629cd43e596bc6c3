package solend

import (
	"crypto/ed25519"

	"github.com/code-payments/solend-client/pkg/solana"
	"github.com/code-payments/solend-client/pkg/solana/system"
	"github.com/code-payments/solend-client/pkg/solana/token"
)

const (
	DepositReserveLiquidityAndObligationCollateralInstructionArgsSize = 8 // liquidityAmount
)

type DepositReserveLiquidityAndObligationCollateralInstructionArgs struct {
	LiquidityAmount uint64
}

type DepositReserveLiquidityAndObligationCollateralInstructionAccounts struct {
	// Program defaults to PROGRAM_ID when nil.
	Program ed25519.PublicKey

	SourceLiquidity        ed25519.PublicKey
	UserCollateral         ed25519.PublicKey
	Reserve                ed25519.PublicKey
	ReserveLiquiditySupply ed25519.PublicKey
	ReserveCollateralMint  ed25519.PublicKey
	LendingMarket          ed25519.PublicKey
	LendingMarketAuthority ed25519.PublicKey
	DestinationCollateral  ed25519.PublicKey
	Obligation             ed25519.PublicKey
	ObligationOwner        ed25519.PublicKey
	PythOracle             ed25519.PublicKey
	SwitchboardFeed        ed25519.PublicKey
	TransferAuthority      ed25519.PublicKey
}

// NewDepositReserveLiquidityAndObligationCollateralInstruction returns an instruction that deposits liquidity and pledges
// the minted collateral to an obligation in one step.
func NewDepositReserveLiquidityAndObligationCollateralInstruction(
	accounts *DepositReserveLiquidityAndObligationCollateralInstructionAccounts,
	args *DepositReserveLiquidityAndObligationCollateralInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 1+DepositReserveLiquidityAndObligationCollateralInstructionArgsSize)

	putInstructionType(data, InstructionTypeDepositReserveLiquidityAndObligationCollateral, &offset)
	putUint64(data, args.LiquidityAmount, &offset)

	instructionAccounts := []solana.AccountMeta{
		{
			PublicKey:  accounts.SourceLiquidity,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.UserCollateral,
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
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.LendingMarketAuthority,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.DestinationCollateral,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.Obligation,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.ObligationOwner,
			IsWritable: false,
			IsSigner:   true,
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
