package solend

import (
	"bytes"
	"crypto/ed25519"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/code-payments/solend-client/pkg/solana"
	"github.com/code-payments/solend-client/pkg/solana/binary"
	"github.com/code-payments/solend-client/pkg/solana/system"
	"github.com/code-payments/solend-client/pkg/solana/token"
)

const (
	FieldLiquidityAmount  = "liquidityAmount"
	FieldCollateralAmount = "collateralAmount"
)

// Fields holds instruction payload values keyed by field name.
//
// Encode accepts any unsigned or signed Go integer, big.Int and uint256.Int
// values. Decode always yields uint64 for fields up to 64 bits wide and
// *uint256.Int for 128 bit fields.
type Fields map[string]interface{}

type field struct {
	name  string
	width int
}

type accountTemplate struct {
	name     string
	signer   bool
	writable bool

	// fixed is set for program and sysvar accounts that are never supplied
	// by the caller.
	fixed ed25519.PublicKey
}

type layout struct {
	fields   []field
	accounts []accountTemplate

	// trailing is the max number of extra accounts appended after the
	// template, or -1 for no limit.
	trailing         int
	trailingWritable bool
}

func (l layout) payloadSize() int {
	size := 1
	for _, f := range l.fields {
		size += f.width
	}
	return size
}

func (l layout) variableAccounts() int {
	var n int
	for _, a := range l.accounts {
		if a.fixed == nil {
			n++
		}
	}
	return n
}

func u64(name string) field {
	return field{name: name, width: 8}
}

func writableAccount(name string) accountTemplate {
	return accountTemplate{name: name, writable: true}
}

func readonlyAccount(name string) accountTemplate {
	return accountTemplate{name: name}
}

func signerAccount(name string) accountTemplate {
	return accountTemplate{name: name, signer: true}
}

func clock() accountTemplate {
	return accountTemplate{name: "clock", fixed: system.ClockSysVar}
}

func rent() accountTemplate {
	return accountTemplate{name: "rent", fixed: system.RentSysVar}
}

func tokenProgram() accountTemplate {
	return accountTemplate{name: "token_program", fixed: token.ProgramKey}
}

var layouts map[InstructionType]layout

func init() {
	layouts = map[InstructionType]layout{
		InstructionTypeRefreshReserve: {
			accounts: []accountTemplate{
				writableAccount("reserve"),
				readonlyAccount("pyth_oracle"),
				readonlyAccount("switchboard_feed"),
				clock(),
			},
		},
		InstructionTypeDepositReserveLiquidity: {
			fields: []field{u64(FieldLiquidityAmount)},
			accounts: []accountTemplate{
				writableAccount("source_liquidity"),
				writableAccount("destination_collateral"),
				writableAccount("reserve"),
				writableAccount("reserve_liquidity_supply"),
				writableAccount("reserve_collateral_mint"),
				readonlyAccount("lending_market"),
				readonlyAccount("lending_market_authority"),
				signerAccount("transfer_authority"),
				clock(),
				tokenProgram(),
			},
		},
		InstructionTypeRedeemReserveCollateral: {
			fields: []field{u64(FieldCollateralAmount)},
			accounts: []accountTemplate{
				writableAccount("source_collateral"),
				writableAccount("destination_liquidity"),
				writableAccount("reserve"),
				writableAccount("reserve_collateral_mint"),
				writableAccount("reserve_liquidity_supply"),
				readonlyAccount("lending_market"),
				readonlyAccount("lending_market_authority"),
				signerAccount("transfer_authority"),
				tokenProgram(),
			},
		},
		InstructionTypeInitObligation: {
			accounts: []accountTemplate{
				writableAccount("obligation"),
				readonlyAccount("lending_market"),
				signerAccount("obligation_owner"),
				clock(),
				rent(),
				tokenProgram(),
			},
		},
		InstructionTypeRefreshObligation: {
			accounts: []accountTemplate{
				writableAccount("obligation"),
				clock(),
			},
			trailing: -1,
		},
		InstructionTypeDepositObligationCollateral: {
			fields: []field{u64(FieldCollateralAmount)},
			accounts: []accountTemplate{
				writableAccount("source_collateral"),
				writableAccount("destination_collateral"),
				readonlyAccount("deposit_reserve"),
				writableAccount("obligation"),
				readonlyAccount("lending_market"),
				signerAccount("obligation_owner"),
				signerAccount("transfer_authority"),
				clock(),
				tokenProgram(),
			},
		},
		InstructionTypeBorrowObligationLiquidity: {
			fields: []field{u64(FieldLiquidityAmount)},
			accounts: []accountTemplate{
				writableAccount("source_liquidity"),
				writableAccount("destination_liquidity"),
				writableAccount("borrow_reserve"),
				writableAccount("borrow_reserve_liquidity_fee_receiver"),
				writableAccount("obligation"),
				readonlyAccount("lending_market"),
				readonlyAccount("lending_market_authority"),
				signerAccount("obligation_owner"),
				clock(),
				tokenProgram(),
			},
			trailing:         1,
			trailingWritable: true,
		},
		InstructionTypeRepayObligationLiquidity: {
			fields: []field{u64(FieldLiquidityAmount)},
			accounts: []accountTemplate{
				writableAccount("source_liquidity"),
				writableAccount("destination_liquidity"),
				writableAccount("repay_reserve"),
				writableAccount("obligation"),
				readonlyAccount("lending_market"),
				signerAccount("transfer_authority"),
				clock(),
				tokenProgram(),
			},
		},
		InstructionTypeDepositReserveLiquidityAndObligationCollateral: {
			fields: []field{u64(FieldLiquidityAmount)},
			accounts: []accountTemplate{
				writableAccount("source_liquidity"),
				writableAccount("user_collateral"),
				writableAccount("reserve"),
				writableAccount("reserve_liquidity_supply"),
				writableAccount("reserve_collateral_mint"),
				writableAccount("lending_market"),
				readonlyAccount("lending_market_authority"),
				writableAccount("destination_collateral"),
				writableAccount("obligation"),
				signerAccount("obligation_owner"),
				readonlyAccount("pyth_oracle"),
				readonlyAccount("switchboard_feed"),
				signerAccount("transfer_authority"),
				clock(),
				tokenProgram(),
			},
		},
		InstructionTypeWithdrawObligationCollateralAndRedeemReserveLiquidity: {
			fields: []field{u64(FieldCollateralAmount)},
			accounts: []accountTemplate{
				writableAccount("source_collateral"),
				writableAccount("destination_collateral"),
				writableAccount("withdraw_reserve"),
				writableAccount("obligation"),
				readonlyAccount("lending_market"),
				readonlyAccount("lending_market_authority"),
				writableAccount("destination_liquidity"),
				writableAccount("reserve_collateral_mint"),
				writableAccount("reserve_liquidity_supply"),
				signerAccount("obligation_owner"),
				signerAccount("transfer_authority"),
				clock(),
				tokenProgram(),
			},
		},
		InstructionTypeSyncNative: {
			accounts: []accountTemplate{
				writableAccount("native_account"),
			},
		},
	}
}

func getLayout(t InstructionType) (layout, error) {
	l, ok := layouts[t]
	if !ok {
		return layout{}, errors.Wrapf(ErrUnknownInstruction, "%d", uint8(t))
	}
	return l, nil
}

// Encode serializes the discriminator for t followed by each payload field
// in layout order as a little endian unsigned integer.
func Encode(t InstructionType, fields Fields) ([]byte, error) {
	l, err := getLayout(t)
	if err != nil {
		return nil, err
	}
	return l.encode(t, fields)
}

func (l layout) encode(t InstructionType, fields Fields) ([]byte, error) {
	var offset int
	data := make([]byte, l.payloadSize())
	putInstructionType(data, t, &offset)

	for _, f := range l.fields {
		raw, ok := fields[f.name]
		if !ok {
			return nil, errors.Wrapf(ErrMissingField, "%s: %s", t, f.name)
		}

		v, err := toUint256(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: %s", t, f.name)
		}
		if v.BitLen() > f.width*8 {
			return nil, errors.Wrapf(ErrValueOutOfRange, "%s: %s exceeds %d bits", t, f.name, f.width*8)
		}

		putUint(data[offset:], v, f.width, &offset)
	}

	return data, nil
}

// Decode parses a payload produced by Encode. The data must be exactly the
// payload size of t and start with its discriminator.
func Decode(t InstructionType, data []byte) (Fields, error) {
	l, err := getLayout(t)
	if err != nil {
		return nil, err
	}

	if len(data) != l.payloadSize() {
		return nil, errors.Wrapf(ErrMalformedInstructionData, "%s: expected %d bytes, got %d", t, l.payloadSize(), len(data))
	}
	if InstructionType(data[0]) != t {
		return nil, errors.Wrapf(ErrMalformedInstructionData, "%s: unexpected discriminator %d", t, data[0])
	}

	offset := 1
	fields := make(Fields, len(l.fields))
	for _, f := range l.fields {
		fields[f.name] = getUint(data[offset:], f.width, &offset)
	}
	return fields, nil
}

// BuildInstruction encodes the payload for t and pairs keys with the
// instruction's account template. Program and sysvar accounts in the
// template are filled in automatically, so keys only holds the caller
// supplied accounts, in template order, followed by any trailing accounts.
func BuildInstruction(program ed25519.PublicKey, t InstructionType, fields Fields, keys ...ed25519.PublicKey) (solana.Instruction, error) {
	l, err := getLayout(t)
	if err != nil {
		return solana.Instruction{}, err
	}

	data, err := l.encode(t, fields)
	if err != nil {
		return solana.Instruction{}, err
	}

	required := l.variableAccounts()
	extra := len(keys) - required
	if extra < 0 || (l.trailing >= 0 && extra > l.trailing) {
		return solana.Instruction{}, errors.Wrapf(ErrAccountCount, "%s: got %d keys, expected %d", t, len(keys), required)
	}

	accounts := make([]solana.AccountMeta, 0, len(l.accounts)+extra)
	var next int
	for _, a := range l.accounts {
		key := a.fixed
		if key == nil {
			key = keys[next]
			next++
		}
		accounts = append(accounts, a.meta(key))
	}
	for _, key := range keys[next:] {
		accounts = append(accounts, solana.AccountMeta{
			PublicKey:  key,
			IsWritable: l.trailingWritable,
		})
	}

	return solana.Instruction{
		Program:  program,
		Data:     data,
		Accounts: accounts,
	}, nil
}

// DecompileInstruction recovers the instruction type, payload fields and
// caller supplied keys from an instruction produced by BuildInstruction or
// one of the typed builders.
func DecompileInstruction(program ed25519.PublicKey, ix solana.Instruction) (InstructionType, Fields, []ed25519.PublicKey, error) {
	if len(ix.Data) == 0 {
		return 0, nil, nil, ErrMalformedInstructionData
	}

	t := InstructionType(ix.Data[0])
	expectedProgram := program
	if t == InstructionTypeSyncNative {
		expectedProgram = token.ProgramKey
	}
	if !bytes.Equal(ix.Program, expectedProgram) {
		return 0, nil, nil, ErrInvalidProgram
	}

	l, err := getLayout(t)
	if err != nil {
		return 0, nil, nil, err
	}

	fields, err := Decode(t, ix.Data)
	if err != nil {
		return 0, nil, nil, err
	}

	extra := len(ix.Accounts) - len(l.accounts)
	if extra < 0 || (l.trailing >= 0 && extra > l.trailing) {
		return 0, nil, nil, errors.Wrapf(ErrAccountCount, "%s: got %d accounts", t, len(ix.Accounts))
	}

	var keys []ed25519.PublicKey
	for i, a := range l.accounts {
		meta := ix.Accounts[i]
		if meta.IsSigner != a.signer || meta.IsWritable != a.writable {
			return 0, nil, nil, errors.Wrapf(ErrUnexpectedAccountTemplate, "%s: %s permissions", t, a.name)
		}
		if a.fixed != nil {
			if !bytes.Equal(a.fixed, meta.PublicKey) {
				return 0, nil, nil, errors.Wrapf(ErrUnexpectedAccountTemplate, "%s: %s", t, a.name)
			}
			continue
		}
		keys = append(keys, meta.PublicKey)
	}
	for i, meta := range ix.Accounts[len(l.accounts):] {
		if meta.IsSigner || meta.IsWritable != l.trailingWritable {
			return 0, nil, nil, errors.Wrapf(ErrUnexpectedAccountTemplate, "%s: trailing account %d permissions", t, i)
		}
		keys = append(keys, meta.PublicKey)
	}

	return t, fields, keys, nil
}

func (a accountTemplate) meta(key ed25519.PublicKey) solana.AccountMeta {
	return solana.AccountMeta{
		PublicKey:  key,
		IsSigner:   a.signer,
		IsWritable: a.writable,
	}
}

func putUint(dst []byte, v *uint256.Int, width int, offset *int) {
	switch width {
	case 1:
		binary.PutUint8(dst, uint8(v.Uint64()), offset)
	case 4:
		binary.PutUint32(dst, uint32(v.Uint64()), offset)
	case 8:
		binary.PutUint64(dst, v.Uint64(), offset)
	case binary.Uint128Size:
		binary.PutUint128(dst, v, offset)
	default:
		panic("unsupported field width")
	}
}

func getUint(src []byte, width int, offset *int) interface{} {
	switch width {
	case 1:
		var v uint8
		binary.GetUint8(src, &v, offset)
		return uint64(v)
	case 4:
		var v uint32
		binary.GetUint32(src, &v, offset)
		return uint64(v)
	case 8:
		var v uint64
		binary.GetUint64(src, &v, offset)
		return v
	case binary.Uint128Size:
		var v *uint256.Int
		binary.GetUint128(src, &v, offset)
		return v
	default:
		panic("unsupported field width")
	}
}

func toUint256(v interface{}) (*uint256.Int, error) {
	switch t := v.(type) {
	case uint8:
		return uint256.NewInt(uint64(t)), nil
	case uint16:
		return uint256.NewInt(uint64(t)), nil
	case uint32:
		return uint256.NewInt(uint64(t)), nil
	case uint64:
		return uint256.NewInt(t), nil
	case uint:
		return uint256.NewInt(uint64(t)), nil
	case int8:
		return fromInt64(int64(t))
	case int16:
		return fromInt64(int64(t))
	case int32:
		return fromInt64(int64(t))
	case int64:
		return fromInt64(t)
	case int:
		return fromInt64(int64(t))
	case *big.Int:
		return fromBig(t)
	case big.Int:
		return fromBig(&t)
	case *uint256.Int:
		if t == nil {
			return nil, ErrMissingField
		}
		return new(uint256.Int).Set(t), nil
	case uint256.Int:
		return new(uint256.Int).Set(&t), nil
	default:
		return nil, errors.Errorf("unsupported field type %T", v)
	}
}

func fromInt64(v int64) (*uint256.Int, error) {
	if v < 0 {
		return nil, errors.Wrapf(ErrValueOutOfRange, "negative value %d", v)
	}
	return uint256.NewInt(uint64(v)), nil
}

func fromBig(v *big.Int) (*uint256.Int, error) {
	if v == nil {
		return nil, ErrMissingField
	}
	if v.Sign() < 0 {
		return nil, errors.Wrapf(ErrValueOutOfRange, "negative value %s", v)
	}
	converted, overflow := uint256.FromBig(v)
	if overflow {
		return nil, errors.Wrapf(ErrValueOutOfRange, "value %s exceeds 256 bits", v)
	}
	return converted, nil
}
