package cli

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/code-payments/solend-client/pkg/solana/solend"
)

const maxAmount = "max"

var (
	ErrInvalidAmount = errors.New("invalid amount")

	u64Max = decimal.NewFromBigInt(new(big.Int).SetUint64(solend.U64Max), 0)
)

// parseAmount converts a user supplied amount into base units. Amounts are
// decimal token quantities unless raw is set, in which case they are already
// in base units. "max" always maps to the full-amount sentinel.
func parseAmount(value string, decimals uint8, raw bool) (uint64, error) {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, maxAmount) {
		return solend.U64Max, nil
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidAmount, "%q", value)
	}
	if raw {
		decimals = 0
	}
	d = d.Shift(int32(decimals))

	if !d.IsPositive() {
		return 0, errors.Wrapf(ErrInvalidAmount, "%q must be positive", value)
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, errors.Wrapf(ErrInvalidAmount, "%q has more than %d decimals", value, decimals)
	}
	if d.GreaterThan(u64Max) {
		return 0, errors.Wrapf(ErrInvalidAmount, "%q overflows", value)
	}

	return d.BigInt().Uint64(), nil
}

// formatAmount renders base units as a decimal token quantity.
func formatAmount(amount uint64, decimals uint8) string {
	if amount == solend.U64Max {
		return maxAmount
	}
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals)).String()
}
