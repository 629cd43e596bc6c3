package solend

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const (
	AccountVersion = 1

	LastUpdateSize = (8 + // slot
		1) // stale

	ObligationCollateralSize = (32 + // deposit_reserve
		8 + // deposited_amount
		16 + // market_value
		32) // padding

	ObligationLiquiditySize = (32 + // borrow_reserve
		16 + // cumulative_borrow_rate_wads
		16 + // borrowed_amount_wads
		16 + // market_value
		32) // padding

	ObligationEntryAreaSize = 1096

	ObligationHeaderSize = (1 + // version
		LastUpdateSize + // last_update
		32 + // lending_market
		32 + // owner
		16 + // deposited_value
		16 + // borrowed_value
		16 + // allowed_borrow_value
		16 + // unhealthy_borrow_value
		64 + // padding
		1 + // deposits_len
		1) // borrows_len

	ObligationAccountSize = ObligationHeaderSize + ObligationEntryAreaSize
)

type LastUpdate struct {
	Slot  uint64
	Stale bool
}

type ObligationCollateral struct {
	DepositReserve  ed25519.PublicKey
	DepositedAmount uint64
	MarketValue     *uint256.Int
}

type ObligationLiquidity struct {
	BorrowReserve            ed25519.PublicKey
	CumulativeBorrowRateWads *uint256.Int
	BorrowedAmountWads       *uint256.Int
	MarketValue              *uint256.Int
}

// Obligation is a user's position in a lending market.
type Obligation struct {
	Version              uint8
	LastUpdate           LastUpdate
	LendingMarket        ed25519.PublicKey
	Owner                ed25519.PublicKey
	DepositedValue       *uint256.Int
	BorrowedValue        *uint256.Int
	AllowedBorrowValue   *uint256.Int
	UnhealthyBorrowValue *uint256.Int
	Deposits             []ObligationCollateral
	Borrows              []ObligationLiquidity
}

// ParseObligation decodes raw obligation account data.
func ParseObligation(data []byte) (*Obligation, error) {
	var obligation Obligation
	if err := obligation.Unmarshal(data); err != nil {
		return nil, err
	}
	return &obligation, nil
}

func (obj *Obligation) Unmarshal(data []byte) error {
	if len(data) != ObligationAccountSize {
		return errors.Wrapf(ErrMalformedAccountData, "obligation: expected %d bytes, got %d", ObligationAccountSize, len(data))
	}

	var offset int

	getUint8(data, &obj.Version, &offset)
	switch obj.Version {
	case 0:
		return ErrUninitializedAccount
	case AccountVersion:
	default:
		return errors.Wrapf(ErrMalformedAccountData, "obligation: unsupported version %d", obj.Version)
	}

	getLastUpdate(data, &obj.LastUpdate, &offset)
	getKey(data, &obj.LendingMarket, &offset)
	getKey(data, &obj.Owner, &offset)
	getUint128(data, &obj.DepositedValue, &offset)
	getUint128(data, &obj.BorrowedValue, &offset)
	getUint128(data, &obj.AllowedBorrowValue, &offset)
	getUint128(data, &obj.UnhealthyBorrowValue, &offset)
	offset += 64

	var depositsLen, borrowsLen uint8
	getUint8(data, &depositsLen, &offset)
	getUint8(data, &borrowsLen, &offset)

	entries := int(depositsLen)*ObligationCollateralSize + int(borrowsLen)*ObligationLiquiditySize
	if entries > ObligationEntryAreaSize {
		return errors.Wrapf(ErrMalformedAccountData, "obligation: %d deposits and %d borrows exceed entry area", depositsLen, borrowsLen)
	}

	obj.Deposits = make([]ObligationCollateral, depositsLen)
	for i := range obj.Deposits {
		getObligationCollateral(data, &obj.Deposits[i], &offset)
	}

	obj.Borrows = make([]ObligationLiquidity, borrowsLen)
	for i := range obj.Borrows {
		getObligationLiquidity(data, &obj.Borrows[i], &offset)
	}

	return nil
}

// Marshal encodes the obligation into a full size account buffer.
func (obj *Obligation) Marshal() ([]byte, error) {
	if len(obj.Deposits) > 0xff || len(obj.Borrows) > 0xff {
		return nil, errors.Wrap(ErrValueOutOfRange, "obligation: too many entries")
	}
	entries := len(obj.Deposits)*ObligationCollateralSize + len(obj.Borrows)*ObligationLiquiditySize
	if entries > ObligationEntryAreaSize {
		return nil, errors.Wrap(ErrMalformedAccountData, "obligation: entries exceed entry area")
	}

	data := make([]byte, ObligationAccountSize)

	var offset int

	putUint8(data, obj.Version, &offset)
	putLastUpdate(data, obj.LastUpdate, &offset)
	putKey(data, obj.LendingMarket, &offset)
	putKey(data, obj.Owner, &offset)
	putUint128(data, obj.DepositedValue, &offset)
	putUint128(data, obj.BorrowedValue, &offset)
	putUint128(data, obj.AllowedBorrowValue, &offset)
	putUint128(data, obj.UnhealthyBorrowValue, &offset)
	offset += 64
	putUint8(data, uint8(len(obj.Deposits)), &offset)
	putUint8(data, uint8(len(obj.Borrows)), &offset)

	for _, deposit := range obj.Deposits {
		putObligationCollateral(data, deposit, &offset)
	}
	for _, borrow := range obj.Borrows {
		putObligationLiquidity(data, borrow, &offset)
	}

	return data, nil
}

// DistinctReserves returns the reserves referenced by the obligation,
// deposits first, without duplicates.
func (obj *Obligation) DistinctReserves() []ed25519.PublicKey {
	var reserves []ed25519.PublicKey
	seen := make(map[string]struct{})

	add := func(key ed25519.PublicKey) {
		if _, ok := seen[string(key)]; ok {
			return
		}
		seen[string(key)] = struct{}{}
		reserves = append(reserves, key)
	}

	for _, deposit := range obj.Deposits {
		add(deposit.DepositReserve)
	}
	for _, borrow := range obj.Borrows {
		add(borrow.BorrowReserve)
	}
	return reserves
}

// DepositReserves returns the deposit reserves in entry order.
func (obj *Obligation) DepositReserves() []ed25519.PublicKey {
	reserves := make([]ed25519.PublicKey, len(obj.Deposits))
	for i, deposit := range obj.Deposits {
		reserves[i] = deposit.DepositReserve
	}
	return reserves
}

// BorrowReserves returns the borrow reserves in entry order.
func (obj *Obligation) BorrowReserves() []ed25519.PublicKey {
	reserves := make([]ed25519.PublicKey, len(obj.Borrows))
	for i, borrow := range obj.Borrows {
		reserves[i] = borrow.BorrowReserve
	}
	return reserves
}

// FindBorrow returns the borrow against reserve, if any.
func (obj *Obligation) FindBorrow(reserve ed25519.PublicKey) (*ObligationLiquidity, bool) {
	for i := range obj.Borrows {
		if bytes.Equal(obj.Borrows[i].BorrowReserve, reserve) {
			return &obj.Borrows[i], true
		}
	}
	return nil, false
}

func (obj *Obligation) String() string {
	return fmt.Sprintf(
		"Obligation{version=%d,slot=%d,stale=%t,lending_market=%s,owner=%s,deposited_value=%s,borrowed_value=%s,deposits=%d,borrows=%d}",
		obj.Version,
		obj.LastUpdate.Slot,
		obj.LastUpdate.Stale,
		base58.Encode(obj.LendingMarket),
		base58.Encode(obj.Owner),
		uint128String(obj.DepositedValue),
		uint128String(obj.BorrowedValue),
		len(obj.Deposits),
		len(obj.Borrows),
	)
}

func getLastUpdate(src []byte, dst *LastUpdate, offset *int) {
	getUint64(src, &dst.Slot, offset)
	getBool(src, &dst.Stale, offset)
}
func putLastUpdate(dst []byte, v LastUpdate, offset *int) {
	putUint64(dst, v.Slot, offset)
	putBool(dst, v.Stale, offset)
}

func getObligationCollateral(src []byte, dst *ObligationCollateral, offset *int) {
	getKey(src, &dst.DepositReserve, offset)
	getUint64(src, &dst.DepositedAmount, offset)
	getUint128(src, &dst.MarketValue, offset)
	*offset += 32
}
func putObligationCollateral(dst []byte, v ObligationCollateral, offset *int) {
	putKey(dst, v.DepositReserve, offset)
	putUint64(dst, v.DepositedAmount, offset)
	putUint128(dst, v.MarketValue, offset)
	*offset += 32
}

func getObligationLiquidity(src []byte, dst *ObligationLiquidity, offset *int) {
	getKey(src, &dst.BorrowReserve, offset)
	getUint128(src, &dst.CumulativeBorrowRateWads, offset)
	getUint128(src, &dst.BorrowedAmountWads, offset)
	getUint128(src, &dst.MarketValue, offset)
	*offset += 32
}
func putObligationLiquidity(dst []byte, v ObligationLiquidity, offset *int) {
	putKey(dst, v.BorrowReserve, offset)
	putUint128(dst, v.CumulativeBorrowRateWads, offset)
	putUint128(dst, v.BorrowedAmountWads, offset)
	putUint128(dst, v.MarketValue, offset)
	*offset += 32
}

func uint128String(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}
