package solend

import (
	"crypto/ed25519"
	"encoding/binary"
	"testing"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountSizes(t *testing.T) {
	assert.Equal(t, 1300, ObligationAccountSize)
	assert.Equal(t, 204, ObligationHeaderSize)
	assert.Equal(t, 619, ReserveAccountSize)
}

func TestObligation_Unmarshal_Invalid(t *testing.T) {
	var obligation Obligation

	assert.Equal(t, ErrUninitializedAccount, obligation.Unmarshal(make([]byte, ObligationAccountSize)))
	assert.Equal(t, ErrMalformedAccountData, errors.Cause(obligation.Unmarshal(make([]byte, ObligationAccountSize-1))))
	assert.Equal(t, ErrMalformedAccountData, errors.Cause(obligation.Unmarshal(make([]byte, ObligationAccountSize+1))))
	assert.Equal(t, ErrMalformedAccountData, errors.Cause(obligation.Unmarshal(nil)))

	data := make([]byte, ObligationAccountSize)
	data[0] = 2
	assert.Equal(t, ErrMalformedAccountData, errors.Cause(obligation.Unmarshal(data)))

	// 13 deposits need 1144 bytes of entry area
	data[0] = AccountVersion
	data[ObligationHeaderSize-2] = 13
	assert.Equal(t, ErrMalformedAccountData, errors.Cause(obligation.Unmarshal(data)))

	// 6 deposits and 5 borrows need 1088 bytes
	data[ObligationHeaderSize-2] = 6
	data[ObligationHeaderSize-1] = 5
	require.NoError(t, obligation.Unmarshal(data))
	assert.Len(t, obligation.Deposits, 6)
	assert.Len(t, obligation.Borrows, 5)

	_, err := ParseObligation(make([]byte, ObligationAccountSize))
	assert.Equal(t, ErrUninitializedAccount, err)
}

func TestObligation_RoundTrip(t *testing.T) {
	keys := generateKeys(t, 5)

	expected := &Obligation{
		Version: AccountVersion,
		LastUpdate: LastUpdate{
			Slot:  123456,
			Stale: true,
		},
		LendingMarket:        keys[0],
		Owner:                keys[1],
		DepositedValue:       uint256.NewInt(1000),
		BorrowedValue:        uint256.NewInt(200),
		AllowedBorrowValue:   uint256.NewInt(750),
		UnhealthyBorrowValue: new(uint256.Int).Lsh(uint256.NewInt(1), 127),
		Deposits: []ObligationCollateral{
			{DepositReserve: keys[2], DepositedAmount: 500, MarketValue: uint256.NewInt(600)},
			{DepositReserve: keys[3], DepositedAmount: 700, MarketValue: uint256.NewInt(400)},
		},
		Borrows: []ObligationLiquidity{
			{
				BorrowReserve:            keys[3],
				CumulativeBorrowRateWads: WAD,
				BorrowedAmountWads:       new(uint256.Int).Mul(uint256.NewInt(200), WAD),
				MarketValue:              uint256.NewInt(200),
			},
			{
				BorrowReserve:            keys[4],
				CumulativeBorrowRateWads: WAD,
				BorrowedAmountWads:       uint256.NewInt(1),
				MarketValue:              uint256.NewInt(0),
			},
		},
	}

	data, err := expected.Marshal()
	require.NoError(t, err)
	require.Len(t, data, ObligationAccountSize)

	// Trailing entry area bytes are not part of the obligation
	for i := ObligationHeaderSize + 2*ObligationCollateralSize + 2*ObligationLiquiditySize; i < len(data); i++ {
		data[i] = 0xff
	}

	actual, err := ParseObligation(data)
	require.NoError(t, err)
	assert.Equal(t, expected, actual)

	assert.Equal(t, []ed25519.PublicKey{keys[2], keys[3], keys[4]}, actual.DistinctReserves())
	assert.Equal(t, []ed25519.PublicKey{keys[2], keys[3]}, actual.DepositReserves())
	assert.Equal(t, []ed25519.PublicKey{keys[3], keys[4]}, actual.BorrowReserves())

	borrow, ok := actual.FindBorrow(keys[4])
	require.True(t, ok)
	assert.EqualValues(t, 1, borrow.BorrowedAmountWads.Uint64())

	_, ok = actual.FindBorrow(keys[2])
	assert.False(t, ok)

	assert.Contains(t, actual.String(), "deposits=2,borrows=2")
}

func TestObligation_Marshal_TooManyEntries(t *testing.T) {
	obligation := &Obligation{
		Version:  AccountVersion,
		Deposits: make([]ObligationCollateral, 13),
	}
	_, err := obligation.Marshal()
	assert.Equal(t, ErrMalformedAccountData, errors.Cause(err))
}

func TestReserve_Unmarshal_Invalid(t *testing.T) {
	var reserve Reserve

	assert.Equal(t, ErrUninitializedAccount, reserve.Unmarshal(make([]byte, ReserveAccountSize)))
	assert.Equal(t, ErrMalformedAccountData, errors.Cause(reserve.Unmarshal(make([]byte, ReserveAccountSize-1))))
	assert.Equal(t, ErrMalformedAccountData, errors.Cause(reserve.Unmarshal(make([]byte, ObligationAccountSize))))

	_, err := ParseReserve(make([]byte, ReserveAccountSize))
	assert.Equal(t, ErrUninitializedAccount, err)
}

func TestReserve_Offsets(t *testing.T) {
	data := make([]byte, ReserveAccountSize)
	data[0] = AccountVersion
	binary.LittleEndian.PutUint64(data[1:], 99)
	data[42+32] = 9                                       // liquidity mint decimals
	binary.LittleEndian.PutUint64(data[171:], 1_000)      // available amount
	binary.LittleEndian.PutUint64(data[203:], 0xffffffff) // cumulative borrow rate, high bits
	binary.LittleEndian.PutUint64(data[227+32:], 777)     // collateral mint total supply
	data[299+1] = 75                                      // loan to value
	binary.LittleEndian.PutUint64(data[299+7:], 55)       // borrow fee
	data[299+23] = 20                                     // host fee percentage

	reserve, err := ParseReserve(data)
	require.NoError(t, err)

	assert.EqualValues(t, 99, reserve.LastUpdate.Slot)
	assert.False(t, reserve.LastUpdate.Stale)
	assert.EqualValues(t, 9, reserve.Liquidity.MintDecimals)
	assert.EqualValues(t, 1_000, reserve.Liquidity.AvailableAmount)
	assert.True(t, reserve.Liquidity.BorrowedAmountWads.IsZero())
	assert.Equal(t, new(uint256.Int).Lsh(uint256.NewInt(0xffffffff), 64), reserve.Liquidity.CumulativeBorrowRateWads)
	assert.EqualValues(t, 777, reserve.Collateral.MintTotalSupply)
	assert.EqualValues(t, 75, reserve.Config.LoanToValueRatio)
	assert.EqualValues(t, 55, reserve.Config.Fees.BorrowFeeWad)
	assert.EqualValues(t, 20, reserve.Config.Fees.HostFeePercentage)

	assert.Equal(t, data, reserve.Marshal())
}

func TestReserve_RoundTrip(t *testing.T) {
	keys := generateKeys(t, 9)

	expected := &Reserve{
		Version:       AccountVersion,
		LastUpdate:    LastUpdate{Slot: 42},
		LendingMarket: keys[0],
		Liquidity: ReserveLiquidity{
			MintPubkey:               keys[1],
			MintDecimals:             6,
			SupplyPubkey:             keys[2],
			PythOraclePubkey:         keys[3],
			SwitchboardOraclePubkey:  keys[4],
			AvailableAmount:          1_000_000,
			BorrowedAmountWads:       new(uint256.Int).Mul(uint256.NewInt(250_000), WAD),
			CumulativeBorrowRateWads: uint256.NewInt(1_050_000_000_000_000_000),
			MarketPrice:              uint256.NewInt(1_000_000_000_000_000_000),
		},
		Collateral: ReserveCollateral{
			MintPubkey:      keys[5],
			MintTotalSupply: 1_100_000,
			SupplyPubkey:    keys[6],
		},
		Config: ReserveConfig{
			OptimalUtilizationRate: 80,
			LoanToValueRatio:       75,
			LiquidationBonus:       5,
			LiquidationThreshold:   85,
			MinBorrowRate:          0,
			OptimalBorrowRate:      8,
			MaxBorrowRate:          50,
			Fees: ReserveFees{
				BorrowFeeWad:      100_000_000_000_000,
				FlashLoanFeeWad:   3_000_000_000_000_000,
				HostFeePercentage: 20,
			},
			DepositLimit: 10_000_000_000,
			BorrowLimit:  5_000_000_000,
			FeeReceiver:  keys[7],
		},
	}

	actual, err := ParseReserve(expected.Marshal())
	require.NoError(t, err)
	assert.Equal(t, expected, actual)
}
