package solend

import (
	"crypto/ed25519"

	"github.com/code-payments/solend-client/pkg/solana"
	"github.com/code-payments/solend-client/pkg/solana/token"
)

const (
	RedeemReserveCollateralInstructionArgsSize = 8 // collateralAmount
)

type RedeemReserveCollateralInstructionArgs struct {
	CollateralAmount uint64
}

type RedeemReserveCollateralInstructionAccounts struct {
	// Program defaults to PROGRAM_ID when nil.
	Program ed25519.PublicKey

	SourceCollateral       ed25519.PublicKey
	DestinationLiquidity   ed25519.PublicKey
	Reserve                ed25519.PublicKey
	ReserveCollateralMint  ed25519.PublicKey
	ReserveLiquiditySupply ed25519.PublicKey
	LendingMarket          ed25519.PublicKey
	LendingMarketAuthority ed25519.PublicKey
	TransferAuthority      ed25519.PublicKey
}

// NewRedeemReserveCollateralInstruction returns an instruction that burns collateral tokens in exchange for liquidity.
func NewRedeemReserveCollateralInstruction(
	accounts *RedeemReserveCollateralInstructionAccounts,
	args *RedeemReserveCollateralInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 1+RedeemReserveCollateralInstructionArgsSize)

	putInstructionType(data, InstructionTypeRedeemReserveCollateral, &offset)
	putUint64(data, args.CollateralAmount, &offset)

	instructionAccounts := []solana.AccountMeta{
		{
			PublicKey:  accounts.SourceCollateral,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.DestinationLiquidity,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.Reserve,
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
