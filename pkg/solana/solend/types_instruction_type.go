package solend

import "fmt"

// InstructionType is the one byte discriminator that prefixes every lending
// program instruction.
type InstructionType uint8

const (
	// nolint:varcheck,deadcode,unused
	InstructionTypeInitLendingMarket InstructionType = iota
	// nolint:varcheck,deadcode,unused
	InstructionTypeSetLendingMarketOwner
	// nolint:varcheck,deadcode,unused
	InstructionTypeInitReserve
	InstructionTypeRefreshReserve
	InstructionTypeDepositReserveLiquidity
	InstructionTypeRedeemReserveCollateral
	InstructionTypeInitObligation
	InstructionTypeRefreshObligation
	InstructionTypeDepositObligationCollateral
	// nolint:varcheck,deadcode,unused
	InstructionTypeWithdrawObligationCollateral
	InstructionTypeBorrowObligationLiquidity
	InstructionTypeRepayObligationLiquidity
	// nolint:varcheck,deadcode,unused
	InstructionTypeLiquidateObligation
	// nolint:varcheck,deadcode,unused
	InstructionTypeFlashLoan
	InstructionTypeDepositReserveLiquidityAndObligationCollateral
	InstructionTypeWithdrawObligationCollateralAndRedeemReserveLiquidity
	// nolint:varcheck,deadcode,unused
	InstructionTypeUpdateReserveConfig

	// InstructionTypeSyncNative is the SPL Token program's SyncNative. It is
	// part of the codec because native asset actions interleave it with
	// lending instructions.
	InstructionTypeSyncNative
)

func (t InstructionType) String() string {
	switch t {
	case InstructionTypeRefreshReserve:
		return "refresh_reserve"
	case InstructionTypeDepositReserveLiquidity:
		return "deposit_reserve_liquidity"
	case InstructionTypeRedeemReserveCollateral:
		return "redeem_reserve_collateral"
	case InstructionTypeInitObligation:
		return "init_obligation"
	case InstructionTypeRefreshObligation:
		return "refresh_obligation"
	case InstructionTypeDepositObligationCollateral:
		return "deposit_obligation_collateral"
	case InstructionTypeBorrowObligationLiquidity:
		return "borrow_obligation_liquidity"
	case InstructionTypeRepayObligationLiquidity:
		return "repay_obligation_liquidity"
	case InstructionTypeDepositReserveLiquidityAndObligationCollateral:
		return "deposit_reserve_liquidity_and_obligation_collateral"
	case InstructionTypeWithdrawObligationCollateralAndRedeemReserveLiquidity:
		return "withdraw_obligation_collateral_and_redeem_reserve_liquidity"
	case InstructionTypeSyncNative:
		return "sync_native"
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

func putInstructionType(dst []byte, v InstructionType, offset *int) {
	dst[*offset] = uint8(v)
	*offset += 1
}
