package solend

import (
	"crypto/ed25519"

	"github.com/code-payments/solend-client/pkg/solana"
	"github.com/code-payments/solend-client/pkg/solana/system"
	"github.com/code-payments/solend-client/pkg/solana/token"
)

const (
	WithdrawObligationCollateralAndRedeemReserveLiquidityInstructionArgsSize = 8 // collateralAmount
)

type WithdrawObligationCollateralAndRedeemReserveLiquidityInstructionArgs struct {
	CollateralAmount uint64
}

type WithdrawObligationCollateralAndRedeemReserveLiquidityInstructionAccounts struct {
	// Program defaults to PROGRAM_ID when nil.
	Program ed25519.PublicKey

	SourceCollateral       ed25519.PublicKey
	DestinationCollateral  ed25519.PublicKey
	WithdrawReserve        ed25519.PublicKey
	Obligation             ed25519.PublicKey
	LendingMarket          ed25519.PublicKey
	LendingMarketAuthority ed25519.PublicKey
	DestinationLiquidity   ed25519.PublicKey
	ReserveCollateralMint  ed25519.PublicKey
	ReserveLiquiditySupply ed25519.PublicKey
	ObligationOwner        ed25519.PublicKey
	TransferAuthority      ed25519.PublicKey
}

// NewWithdrawObligationCollateralAndRedeemReserveLiquidityInstruction returns an instruction that withdraws collateral from
// an obligation and redeems it for liquidity. The amount is in collateral
// units; see LiquidityToCollateral.
func NewWithdrawObligationCollateralAndRedeemReserveLiquidityInstruction(
	accounts *WithdrawObligationCollateralAndRedeemReserveLiquidityInstructionAccounts,
	args *WithdrawObligationCollateralAndRedeemReserveLiquidityInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 1+WithdrawObligationCollateralAndRedeemReserveLiquidityInstructionArgsSize)

	putInstructionType(data, InstructionTypeWithdrawObligationCollateralAndRedeemReserveLiquidity, &offset)
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
			PublicKey:  accounts.WithdrawReserve,
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
			PublicKey:  accounts.LendingMarketAuthority,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.DestinationLiquidity,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.ReserveCollateralMint,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.ReserveLiquiditySupply,
			IsWritable: true,
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
