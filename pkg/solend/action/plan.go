package action

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/solend-client/pkg/solana"
	"github.com/code-payments/solend-client/pkg/solana/solend"
	"github.com/code-payments/solend-client/pkg/solana/system"
	"github.com/code-payments/solend-client/pkg/solana/token"
	solendconfig "github.com/code-payments/solend-client/pkg/solend/config"
)

type bucket int

const (
	bucketPreTransaction bucket = iota
	bucketSetup
	bucketMain
	bucketCleanup
	bucketPostTransaction
)

type planBuilder struct {
	req      *Request
	state    *State
	settings Settings
	plan     *Plan
}

// BuildPlan computes the instructions for req against a freshly resolved
// state. It never touches the network, and on error no plan is returned.
func BuildPlan(req *Request, state *State, settings Settings) (*Plan, error) {
	if req == nil || state == nil {
		return nil, ErrInvalidRequest
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if settings.PositionLimit <= 0 {
		return nil, errors.Wrap(ErrInvalidRequest, "position limit must be positive")
	}

	positions := countPositions(req.Action, state)
	if positions > settings.PositionLimit {
		return nil, &PositionLimitError{
			Limit: settings.PositionLimit,
			Count: positions,
		}
	}

	b := &planBuilder{
		req:      req,
		state:    state,
		settings: settings,
		plan: &Plan{
			Action:            req.Action,
			Program:           state.Program,
			Owner:             req.Owner,
			ObligationAddress: state.ObligationAddress,
			Positions:         positions,
			ComputeBudget:     settings.ComputeBudget,
		},
	}

	if err := b.addSupportInstructions(); err != nil {
		return nil, err
	}
	if err := b.addPrimaryInstruction(); err != nil {
		return nil, err
	}
	return b.plan, nil
}

// countPositions returns the number of distinct reserves referenced by the
// obligation, including the target reserve for actions that open a position.
func countPositions(action Action, state *State) int {
	seen := make(map[string]struct{})
	if state.Obligation != nil {
		for _, reserve := range state.Obligation.DistinctReserves() {
			seen[string(reserve)] = struct{}{}
		}
	}
	if action.opensPosition() {
		seen[string(state.Reserve.Address)] = struct{}{}
	}
	return len(seen)
}

func (b *planBuilder) add(to bucket, instructions ...solana.Instruction) {
	switch to {
	case bucketPreTransaction:
		b.plan.preTransaction = append(b.plan.preTransaction, instructions...)
	case bucketSetup:
		b.plan.setup = append(b.plan.setup, instructions...)
	case bucketMain:
		b.plan.main = append(b.plan.main, instructions...)
	case bucketCleanup:
		b.plan.cleanup = append(b.plan.cleanup, instructions...)
	case bucketPostTransaction:
		b.plan.postTransaction = append(b.plan.postTransaction, instructions...)
	}
}

func (b *planBuilder) addSupportInstructions() error {
	if b.req.Action.refreshesObligation() {
		if err := b.addRefreshInstructions(); err != nil {
			return err
		}
	}

	if b.req.Action.usesObligation() {
		b.addObligationInstructions()
	}

	return b.addTokenAccountInstructions()
}

func (b *planBuilder) addRefreshInstructions() error {
	var deposits, borrows []ed25519.PublicKey
	if b.state.Obligation != nil {
		deposits = b.state.Obligation.DepositReserves()
		borrows = b.state.Obligation.BorrowReserves()
	}

	reserves := dedupeKeys(deposits, borrows, []ed25519.PublicKey{b.state.Reserve.Address})
	for _, reserve := range reserves {
		instruction, err := b.refreshReserveInstruction(reserve)
		if err != nil {
			return err
		}
		b.add(bucketSetup, instruction)
	}

	b.add(bucketSetup, solend.NewRefreshObligationInstruction(
		&solend.RefreshObligationInstructionAccounts{
			Program:         b.state.Program,
			Obligation:      b.state.ObligationAddress,
			DepositReserves: deposits,
			BorrowReserves:  borrows,
		},
	))
	return nil
}

func (b *planBuilder) refreshReserveInstruction(reserve ed25519.PublicKey) (solana.Instruction, error) {
	if bytes.Equal(reserve, b.state.Reserve.Address) {
		return solend.NewRefreshReserveInstruction(
			&solend.RefreshReserveInstructionAccounts{
				Program:         b.state.Program,
				Reserve:         reserve,
				PythOracle:      b.state.Reserve.PythOracle,
				SwitchboardFeed: b.state.Reserve.SwitchboardFeed,
			},
		), nil
	}

	if b.state.Market == nil || b.state.Config == nil {
		return solana.Instruction{}, newConfigLookupError(ErrInvalidRequest, "no market metadata for reserve %s", base58.Encode(reserve))
	}

	reserveConfig, err := b.state.Market.FindReserveByAddress(base58.Encode(reserve))
	if err != nil {
		return solana.Instruction{}, newConfigLookupError(err, "reserve %s", base58.Encode(reserve))
	}

	oracle, err := b.state.Config.FindOracle(reserveConfig.Asset)
	if err != nil {
		return solana.Instruction{}, newConfigLookupError(err, "oracle for %s", reserveConfig.Asset)
	}

	pyth, err := parseConfigKey(oracle.PriceAddress, "price address for %s", reserveConfig.Asset)
	if err != nil {
		return solana.Instruction{}, err
	}
	switchboard, err := parseConfigKey(oracle.SwitchboardFeedAddress, "switchboard feed for %s", reserveConfig.Asset)
	if err != nil {
		return solana.Instruction{}, err
	}

	return solend.NewRefreshReserveInstruction(
		&solend.RefreshReserveInstructionAccounts{
			Program:         b.state.Program,
			Reserve:         reserve,
			PythOracle:      pyth,
			SwitchboardFeed: switchboard,
		},
	), nil
}

func (b *planBuilder) addObligationInstructions() {
	if b.state.Obligation != nil {
		return
	}

	b.add(
		bucketSetup,
		system.CreateAccountWithSeed(
			b.req.Owner,
			b.state.ObligationAddress,
			b.req.Owner,
			b.state.ObligationSeed,
			b.state.ObligationRentExemption,
			solend.ObligationAccountSize,
			b.state.Program,
		),
		solend.NewInitObligationInstruction(
			&solend.InitObligationInstructionAccounts{
				Program:         b.state.Program,
				Obligation:      b.state.ObligationAddress,
				LendingMarket:   b.state.LendingMarket,
				ObligationOwner: b.req.Owner,
			},
		),
	)
}

func (b *planBuilder) addTokenAccountInstructions() error {
	action := b.req.Action
	native := b.state.IsNative()
	atThreshold := b.plan.Positions == b.settings.relocationThreshold()

	if native {
		if err := b.addNativeWrapInstructions(); err != nil {
			return err
		}
	}

	if action.receivesLiquidity() && !native && !b.state.UserTokenAccountExists {
		instruction, err := b.createAssociatedAccount(b.state.Reserve.LiquidityMint)
		if err != nil {
			return err
		}

		relocate := atThreshold && (len(b.req.HostFeeReceiver) > 0 || !b.settings.Relocation.TokenAccountWithHostFeeOnly)
		if relocate {
			b.add(bucketPreTransaction, instruction)
		} else {
			b.add(bucketSetup, instruction)
		}
	}

	if action.receivesCollateral() && !b.state.UserCollateralAccountExists {
		instruction, err := b.createAssociatedAccount(b.state.Reserve.CollateralMint)
		if err != nil {
			return err
		}

		relocate := atThreshold && (native || !b.settings.Relocation.CollateralAccountNativeOnly)
		if relocate {
			b.add(bucketPreTransaction, instruction)
		} else {
			b.add(bucketSetup, instruction)
		}
	}

	return nil
}

// addNativeWrapInstructions funds the owner's wrapped native account before
// the main instruction and unwraps it afterwards.
func (b *planBuilder) addNativeWrapInstructions() error {
	action := b.req.Action
	wrapped := b.state.UserTokenAccount
	exists := b.state.UserTokenAccountExists

	var lamports uint64
	if !exists {
		lamports = b.state.TokenAccountRentExemption
	}
	if action.sendsFunds() {
		amount, err := b.nativeSendAmount()
		if err != nil {
			return err
		}

		var overflow bool
		lamports, overflow = addLamports(lamports, amount)
		if overflow {
			return errors.Wrap(solend.ErrValueOutOfRange, "wrapped native transfer")
		}
	}

	var pre, post []solana.Instruction
	pre = append(pre, system.Transfer(b.req.Owner, wrapped, lamports))

	closeAccount := token.CloseAccount(wrapped, b.req.Owner, b.req.Owner)
	if exists {
		if action.sendsFunds() {
			pre = append(pre, token.SyncNative(wrapped))
		} else {
			post = append(post, closeAccount)
		}
	} else {
		create, err := b.createAssociatedAccount(token.NativeMint)
		if err != nil {
			return err
		}
		pre = append(pre, create)
		post = append(post, closeAccount)
	}

	if b.plan.Positions >= b.settings.relocationThreshold() {
		b.add(bucketPreTransaction, pre...)
		b.add(bucketPostTransaction, post...)
	} else {
		b.add(bucketSetup, pre...)
		b.add(bucketCleanup, post...)
	}
	return nil
}

// nativeSendAmount is the number of lamports the action moves into the
// reserve. Repaying everything requires a concrete amount, since a lamport
// transfer cannot carry the sentinel.
func (b *planBuilder) nativeSendAmount() (uint64, error) {
	if b.req.Action != ActionRepay || b.req.Amount != solend.U64Max {
		return b.req.Amount, nil
	}

	if b.state.Obligation == nil {
		return 0, newConfigLookupError(ErrBorrowNotFound, "no obligation for %s", base58.Encode(b.req.Owner))
	}

	borrow, ok := b.state.Obligation.FindBorrow(b.state.Reserve.Address)
	if !ok {
		return 0, newConfigLookupError(ErrBorrowNotFound, "no %s borrow for %s", b.state.Reserve.Symbol, base58.Encode(b.req.Owner))
	}

	if b.state.ReserveData == nil {
		return 0, errors.Wrap(solend.ErrMalformedAccountData, "reserve data is required to repay everything")
	}

	return solend.RepayAllWithPadding(borrow, b.state.ReserveData, b.settings.NativeRepayPadding)
}

func (b *planBuilder) createAssociatedAccount(mint ed25519.PublicKey) (solana.Instruction, error) {
	instruction, _, err := token.CreateAssociatedTokenAccount(b.req.Owner, b.req.Owner, mint)
	if err != nil {
		return solana.Instruction{}, errors.Wrap(err, "failed to derive associated account")
	}
	return instruction, nil
}

func (b *planBuilder) addPrimaryInstruction() error {
	state := b.state
	owner := b.req.Owner
	amount := b.req.Amount

	var instruction solana.Instruction
	switch b.req.Action {
	case ActionDeposit:
		instruction = solend.NewDepositReserveLiquidityAndObligationCollateralInstruction(
			&solend.DepositReserveLiquidityAndObligationCollateralInstructionAccounts{
				Program:                state.Program,
				SourceLiquidity:        state.UserTokenAccount,
				UserCollateral:         state.UserCollateralAccount,
				Reserve:                state.Reserve.Address,
				ReserveLiquiditySupply: state.Reserve.LiquiditySupply,
				ReserveCollateralMint:  state.Reserve.CollateralMint,
				LendingMarket:          state.LendingMarket,
				LendingMarketAuthority: state.MarketAuthority,
				DestinationCollateral:  state.Reserve.CollateralSupply,
				Obligation:             state.ObligationAddress,
				ObligationOwner:        owner,
				PythOracle:             state.Reserve.PythOracle,
				SwitchboardFeed:        state.Reserve.SwitchboardFeed,
				TransferAuthority:      owner,
			},
			&solend.DepositReserveLiquidityAndObligationCollateralInstructionArgs{
				LiquidityAmount: amount,
			},
		)
	case ActionMint:
		instruction = solend.NewDepositReserveLiquidityInstruction(
			&solend.DepositReserveLiquidityInstructionAccounts{
				Program:                state.Program,
				SourceLiquidity:        state.UserTokenAccount,
				DestinationCollateral:  state.UserCollateralAccount,
				Reserve:                state.Reserve.Address,
				ReserveLiquiditySupply: state.Reserve.LiquiditySupply,
				ReserveCollateralMint:  state.Reserve.CollateralMint,
				LendingMarket:          state.LendingMarket,
				LendingMarketAuthority: state.MarketAuthority,
				TransferAuthority:      owner,
			},
			&solend.DepositReserveLiquidityInstructionArgs{
				LiquidityAmount: amount,
			},
		)
	case ActionRedeem:
		instruction = solend.NewRedeemReserveCollateralInstruction(
			&solend.RedeemReserveCollateralInstructionAccounts{
				Program:                state.Program,
				SourceCollateral:       state.UserCollateralAccount,
				DestinationLiquidity:   state.UserTokenAccount,
				Reserve:                state.Reserve.Address,
				ReserveCollateralMint:  state.Reserve.CollateralMint,
				ReserveLiquiditySupply: state.Reserve.LiquiditySupply,
				LendingMarket:          state.LendingMarket,
				LendingMarketAuthority: state.MarketAuthority,
				TransferAuthority:      owner,
			},
			&solend.RedeemReserveCollateralInstructionArgs{
				CollateralAmount: amount,
			},
		)
	case ActionDepositCollateral:
		instruction = solend.NewDepositObligationCollateralInstruction(
			&solend.DepositObligationCollateralInstructionAccounts{
				Program:               state.Program,
				SourceCollateral:      state.UserCollateralAccount,
				DestinationCollateral: state.Reserve.CollateralSupply,
				DepositReserve:        state.Reserve.Address,
				Obligation:            state.ObligationAddress,
				LendingMarket:         state.LendingMarket,
				ObligationOwner:       owner,
				TransferAuthority:     owner,
			},
			&solend.DepositObligationCollateralInstructionArgs{
				CollateralAmount: amount,
			},
		)
	case ActionBorrow:
		instruction = solend.NewBorrowObligationLiquidityInstruction(
			&solend.BorrowObligationLiquidityInstructionAccounts{
				Program:                           state.Program,
				SourceLiquidity:                   state.Reserve.LiquiditySupply,
				DestinationLiquidity:              state.UserTokenAccount,
				BorrowReserve:                     state.Reserve.Address,
				BorrowReserveLiquidityFeeReceiver: state.Reserve.LiquidityFeeReceiver,
				Obligation:                        state.ObligationAddress,
				LendingMarket:                     state.LendingMarket,
				LendingMarketAuthority:            state.MarketAuthority,
				ObligationOwner:                   owner,
				HostFeeReceiver:                   b.req.HostFeeReceiver,
			},
			&solend.BorrowObligationLiquidityInstructionArgs{
				LiquidityAmount: amount,
			},
		)
	case ActionWithdraw:
		if state.ReserveData == nil {
			return errors.Wrap(solend.ErrMalformedAccountData, "reserve data is required to withdraw")
		}

		collateral, err := solend.LiquidityToCollateral(amount, state.ReserveData)
		if err != nil {
			return errors.Wrap(err, "failed to convert withdraw amount")
		}

		instruction = solend.NewWithdrawObligationCollateralAndRedeemReserveLiquidityInstruction(
			&solend.WithdrawObligationCollateralAndRedeemReserveLiquidityInstructionAccounts{
				Program:                state.Program,
				SourceCollateral:       state.Reserve.CollateralSupply,
				DestinationCollateral:  state.UserCollateralAccount,
				WithdrawReserve:        state.Reserve.Address,
				Obligation:             state.ObligationAddress,
				LendingMarket:          state.LendingMarket,
				LendingMarketAuthority: state.MarketAuthority,
				DestinationLiquidity:   state.UserTokenAccount,
				ReserveCollateralMint:  state.Reserve.CollateralMint,
				ReserveLiquiditySupply: state.Reserve.LiquiditySupply,
				ObligationOwner:        owner,
				TransferAuthority:      owner,
			},
			&solend.WithdrawObligationCollateralAndRedeemReserveLiquidityInstructionArgs{
				CollateralAmount: collateral,
			},
		)
	case ActionRepay:
		instruction = solend.NewRepayObligationLiquidityInstruction(
			&solend.RepayObligationLiquidityInstructionAccounts{
				Program:              state.Program,
				SourceLiquidity:      state.UserTokenAccount,
				DestinationLiquidity: state.Reserve.LiquiditySupply,
				RepayReserve:         state.Reserve.Address,
				Obligation:           state.ObligationAddress,
				LendingMarket:        state.LendingMarket,
				TransferAuthority:    owner,
			},
			&solend.RepayObligationLiquidityInstructionArgs{
				LiquidityAmount: amount,
			},
		)
	default:
		return ErrInvalidAction
	}

	b.add(bucketMain, instruction)
	return nil
}

// dedupeKeys concatenates lists, keeping the first occurrence of each key.
func dedupeKeys(lists ...[]ed25519.PublicKey) []ed25519.PublicKey {
	seen := make(map[string]struct{})

	var keys []ed25519.PublicKey
	for _, list := range lists {
		for _, key := range list {
			if _, ok := seen[string(key)]; ok {
				continue
			}
			seen[string(key)] = struct{}{}
			keys = append(keys, key)
		}
	}
	return keys
}

func addLamports(a, b uint64) (uint64, bool) {
	sum := a + b
	return sum, sum < a
}

func isNativeMint(mint ed25519.PublicKey) bool {
	return bytes.Equal(mint, token.NativeMint)
}

func parseConfigKey(address, format string, args ...interface{}) (ed25519.PublicKey, error) {
	key, err := solendconfig.ParseKey(address)
	if err != nil {
		return nil, newConfigLookupError(err, format, args...)
	}
	return key, nil
}
