package solend

import (
	"math"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	// U64Max is the amount sentinel for "use the full balance" or "repay
	// everything".
	U64Max uint64 = math.MaxUint64

	wadExponent = 18
)

var WAD = uint256.NewInt(1_000_000_000_000_000_000)

// ExchangeRate returns the liquidity backing one unit of the reserve's
// collateral token, (borrowed + available·WAD) / (collateral supply · WAD).
func ExchangeRate(reserve *Reserve) (decimal.Decimal, error) {
	if reserve.Collateral.MintTotalSupply == 0 {
		return decimal.Zero, ErrZeroCollateralSupply
	}

	total := decimal.NewFromBigInt(totalLiquidityWads(reserve).ToBig(), 0)
	supply := decimal.NewFromBigInt(new(big.Int).SetUint64(reserve.Collateral.MintTotalSupply), wadExponent)

	return total.DivRound(supply, wadExponent), nil
}

// LiquidityToCollateral converts a liquidity amount into collateral token
// units at the reserve's exchange rate, rounding down.
func LiquidityToCollateral(amount uint64, reserve *Reserve) (uint64, error) {
	if reserve.Collateral.MintTotalSupply == 0 {
		return 0, ErrZeroCollateralSupply
	}

	total := totalLiquidityWads(reserve)
	if total.IsZero() {
		return 0, errors.Wrap(ErrMalformedAccountData, "reserve has no liquidity")
	}

	// at most 188 bits
	numerator := new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(reserve.Collateral.MintTotalSupply))
	numerator.Mul(numerator, WAD)

	result := new(uint256.Int).Div(numerator, total)
	if !result.IsUint64() {
		return 0, errors.Wrapf(ErrValueOutOfRange, "collateral amount %s exceeds 64 bits", result.Dec())
	}

	collateral := result.Uint64()
	if collateral == U64Max {
		// A concrete amount must never collide with the sentinel
		collateral--
	}
	return collateral, nil
}

// RepayAllWithPadding returns the liquidity needed to fully repay borrow at
// the reserve's current cumulative borrow rate, plus padding for interest
// accrued before the transaction lands.
func RepayAllWithPadding(borrow *ObligationLiquidity, reserve *Reserve, padding uint64) (uint64, error) {
	snapshot := borrow.CumulativeBorrowRateWads
	if snapshot == nil || snapshot.IsZero() {
		return 0, errors.Wrap(ErrMalformedAccountData, "borrow has zero cumulative borrow rate")
	}

	borrowed := orZero(borrow.BorrowedAmountWads)
	current := orZero(reserve.Liquidity.CumulativeBorrowRateWads)

	owed, overflow := new(uint256.Int).MulOverflow(borrowed, current)
	if overflow {
		return 0, errors.Wrap(ErrValueOutOfRange, "owed amount overflows")
	}
	owed.Div(owed, snapshot)
	owed.Div(owed, WAD)

	if !owed.IsUint64() {
		return 0, errors.Wrapf(ErrValueOutOfRange, "owed amount %s exceeds 64 bits", owed.Dec())
	}

	result, overflowed := addUint64(owed.Uint64(), padding)
	if overflowed || result == U64Max {
		return 0, errors.Wrap(ErrValueOutOfRange, "padded owed amount exceeds 64 bits")
	}
	return result, nil
}

func totalLiquidityWads(reserve *Reserve) *uint256.Int {
	total := new(uint256.Int).Mul(uint256.NewInt(reserve.Liquidity.AvailableAmount), WAD)
	return total.Add(total, orZero(reserve.Liquidity.BorrowedAmountWads))
}

func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}

func addUint64(a, b uint64) (uint64, bool) {
	sum := a + b
	return sum, sum < a
}
