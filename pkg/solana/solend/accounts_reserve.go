package solend

import (
	"crypto/ed25519"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const (
	ReserveLiquiditySize = (32 + // mint_pubkey
		1 + // mint_decimals
		32 + // supply_pubkey
		32 + // pyth_oracle_pubkey
		32 + // switchboard_oracle_pubkey
		8 + // available_amount
		16 + // borrowed_amount_wads
		16 + // cumulative_borrow_rate_wads
		16) // market_price

	ReserveCollateralSize = (32 + // mint_pubkey
		8 + // mint_total_supply
		32) // supply_pubkey

	ReserveConfigSize = (1 + // optimal_utilization_rate
		1 + // loan_to_value_ratio
		1 + // liquidation_bonus
		1 + // liquidation_threshold
		1 + // min_borrow_rate
		1 + // optimal_borrow_rate
		1 + // max_borrow_rate
		8 + // borrow_fee_wad
		8 + // flash_loan_fee_wad
		1 + // host_fee_percentage
		8 + // deposit_limit
		8 + // borrow_limit
		32) // fee_receiver

	ReserveAccountSize = (1 + // version
		LastUpdateSize + // last_update
		32 + // lending_market
		ReserveLiquiditySize + // liquidity
		ReserveCollateralSize + // collateral
		ReserveConfigSize + // config
		248) // padding
)

type ReserveLiquidity struct {
	MintPubkey               ed25519.PublicKey
	MintDecimals             uint8
	SupplyPubkey             ed25519.PublicKey
	PythOraclePubkey         ed25519.PublicKey
	SwitchboardOraclePubkey  ed25519.PublicKey
	AvailableAmount          uint64
	BorrowedAmountWads       *uint256.Int
	CumulativeBorrowRateWads *uint256.Int
	MarketPrice              *uint256.Int
}

type ReserveCollateral struct {
	MintPubkey      ed25519.PublicKey
	MintTotalSupply uint64
	SupplyPubkey    ed25519.PublicKey
}

type ReserveFees struct {
	BorrowFeeWad      uint64
	FlashLoanFeeWad   uint64
	HostFeePercentage uint8
}

type ReserveConfig struct {
	OptimalUtilizationRate uint8
	LoanToValueRatio       uint8
	LiquidationBonus       uint8
	LiquidationThreshold   uint8
	MinBorrowRate          uint8
	OptimalBorrowRate      uint8
	MaxBorrowRate          uint8
	Fees                   ReserveFees
	DepositLimit           uint64
	BorrowLimit            uint64
	FeeReceiver            ed25519.PublicKey
}

// Reserve is the on-chain state of a single asset pool in a lending market.
type Reserve struct {
	Version       uint8
	LastUpdate    LastUpdate
	LendingMarket ed25519.PublicKey
	Liquidity     ReserveLiquidity
	Collateral    ReserveCollateral
	Config        ReserveConfig
}

// ParseReserve decodes raw reserve account data.
func ParseReserve(data []byte) (*Reserve, error) {
	var reserve Reserve
	if err := reserve.Unmarshal(data); err != nil {
		return nil, err
	}
	return &reserve, nil
}

func (obj *Reserve) Unmarshal(data []byte) error {
	if len(data) != ReserveAccountSize {
		return errors.Wrapf(ErrMalformedAccountData, "reserve: expected %d bytes, got %d", ReserveAccountSize, len(data))
	}

	var offset int

	getUint8(data, &obj.Version, &offset)
	switch obj.Version {
	case 0:
		return ErrUninitializedAccount
	case AccountVersion:
	default:
		return errors.Wrapf(ErrMalformedAccountData, "reserve: unsupported version %d", obj.Version)
	}

	getLastUpdate(data, &obj.LastUpdate, &offset)
	getKey(data, &obj.LendingMarket, &offset)

	getKey(data, &obj.Liquidity.MintPubkey, &offset)
	getUint8(data, &obj.Liquidity.MintDecimals, &offset)
	getKey(data, &obj.Liquidity.SupplyPubkey, &offset)
	getKey(data, &obj.Liquidity.PythOraclePubkey, &offset)
	getKey(data, &obj.Liquidity.SwitchboardOraclePubkey, &offset)
	getUint64(data, &obj.Liquidity.AvailableAmount, &offset)
	getUint128(data, &obj.Liquidity.BorrowedAmountWads, &offset)
	getUint128(data, &obj.Liquidity.CumulativeBorrowRateWads, &offset)
	getUint128(data, &obj.Liquidity.MarketPrice, &offset)

	getKey(data, &obj.Collateral.MintPubkey, &offset)
	getUint64(data, &obj.Collateral.MintTotalSupply, &offset)
	getKey(data, &obj.Collateral.SupplyPubkey, &offset)

	getUint8(data, &obj.Config.OptimalUtilizationRate, &offset)
	getUint8(data, &obj.Config.LoanToValueRatio, &offset)
	getUint8(data, &obj.Config.LiquidationBonus, &offset)
	getUint8(data, &obj.Config.LiquidationThreshold, &offset)
	getUint8(data, &obj.Config.MinBorrowRate, &offset)
	getUint8(data, &obj.Config.OptimalBorrowRate, &offset)
	getUint8(data, &obj.Config.MaxBorrowRate, &offset)
	getUint64(data, &obj.Config.Fees.BorrowFeeWad, &offset)
	getUint64(data, &obj.Config.Fees.FlashLoanFeeWad, &offset)
	getUint8(data, &obj.Config.Fees.HostFeePercentage, &offset)
	getUint64(data, &obj.Config.DepositLimit, &offset)
	getUint64(data, &obj.Config.BorrowLimit, &offset)
	getKey(data, &obj.Config.FeeReceiver, &offset)

	return nil
}

// Marshal encodes the reserve into a full size account buffer.
func (obj *Reserve) Marshal() []byte {
	data := make([]byte, ReserveAccountSize)

	var offset int

	putUint8(data, obj.Version, &offset)
	putLastUpdate(data, obj.LastUpdate, &offset)
	putKey(data, obj.LendingMarket, &offset)

	putKey(data, obj.Liquidity.MintPubkey, &offset)
	putUint8(data, obj.Liquidity.MintDecimals, &offset)
	putKey(data, obj.Liquidity.SupplyPubkey, &offset)
	putKey(data, obj.Liquidity.PythOraclePubkey, &offset)
	putKey(data, obj.Liquidity.SwitchboardOraclePubkey, &offset)
	putUint64(data, obj.Liquidity.AvailableAmount, &offset)
	putUint128(data, obj.Liquidity.BorrowedAmountWads, &offset)
	putUint128(data, obj.Liquidity.CumulativeBorrowRateWads, &offset)
	putUint128(data, obj.Liquidity.MarketPrice, &offset)

	putKey(data, obj.Collateral.MintPubkey, &offset)
	putUint64(data, obj.Collateral.MintTotalSupply, &offset)
	putKey(data, obj.Collateral.SupplyPubkey, &offset)

	putUint8(data, obj.Config.OptimalUtilizationRate, &offset)
	putUint8(data, obj.Config.LoanToValueRatio, &offset)
	putUint8(data, obj.Config.LiquidationBonus, &offset)
	putUint8(data, obj.Config.LiquidationThreshold, &offset)
	putUint8(data, obj.Config.MinBorrowRate, &offset)
	putUint8(data, obj.Config.OptimalBorrowRate, &offset)
	putUint8(data, obj.Config.MaxBorrowRate, &offset)
	putUint64(data, obj.Config.Fees.BorrowFeeWad, &offset)
	putUint64(data, obj.Config.Fees.FlashLoanFeeWad, &offset)
	putUint8(data, obj.Config.Fees.HostFeePercentage, &offset)
	putUint64(data, obj.Config.DepositLimit, &offset)
	putUint64(data, obj.Config.BorrowLimit, &offset)
	putKey(data, obj.Config.FeeReceiver, &offset)

	return data
}

func (obj *Reserve) String() string {
	return fmt.Sprintf(
		"Reserve{version=%d,slot=%d,stale=%t,lending_market=%s,liquidity_mint=%s,available_amount=%d,borrowed_amount_wads=%s,collateral_mint=%s,collateral_supply=%d}",
		obj.Version,
		obj.LastUpdate.Slot,
		obj.LastUpdate.Stale,
		base58.Encode(obj.LendingMarket),
		base58.Encode(obj.Liquidity.MintPubkey),
		obj.Liquidity.AvailableAmount,
		uint128String(obj.Liquidity.BorrowedAmountWads),
		base58.Encode(obj.Collateral.MintPubkey),
		obj.Collateral.MintTotalSupply,
	)
}
