package solend

import (
	"crypto/ed25519"

	"github.com/code-payments/solend-client/pkg/solana"
	"github.com/code-payments/solend-client/pkg/solana/system"
	"github.com/code-payments/solend-client/pkg/solana/token"
)

const (
	BorrowObligationLiquidityInstructionArgsSize = 8 // liquidityAmount
)

type BorrowObligationLiquidityInstructionArgs struct {
	LiquidityAmount uint64
}

type BorrowObligationLiquidityInstructionAccounts struct {
	// Program defaults to PROGRAM_ID when nil.
	Program ed25519.PublicKey

	SourceLiquidity                   ed25519.PublicKey
	DestinationLiquidity              ed25519.PublicKey
	BorrowReserve                     ed25519.PublicKey
	BorrowReserveLiquidityFeeReceiver ed25519.PublicKey
	Obligation                        ed25519.PublicKey
	LendingMarket                     ed25519.PublicKey
	LendingMarketAuthority            ed25519.PublicKey
	ObligationOwner                   ed25519.PublicKey

	// HostFeeReceiver is optional.
	HostFeeReceiver ed25519.PublicKey
}

// NewBorrowObligationLiquidityInstruction returns an instruction that borrows liquidity against an obligation's deposits.
// The obligation and its reserves must be refreshed in the same transaction.
func NewBorrowObligationLiquidityInstruction(
	accounts *BorrowObligationLiquidityInstructionAccounts,
	args *BorrowObligationLiquidityInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 1+BorrowObligationLiquidityInstructionArgsSize)

	putInstructionType(data, InstructionTypeBorrowObligationLiquidity, &offset)
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
			PublicKey:  accounts.BorrowReserve,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.BorrowReserveLiquidityFeeReceiver,
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
			PublicKey:  token.ProgramKey,
			IsWritable: false,
			IsSigner:   false,
		},
	}
	if len(accounts.HostFeeReceiver) > 0 {
		instructionAccounts = append(instructionAccounts, solana.NewAccountMeta(accounts.HostFeeReceiver, false))
	}

	return solana.Instruction{
		Program: programOrDefault(accounts.Program),

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: instructionAccounts,
	}
}
