package action

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/code-payments/solend-client/pkg/metrics"
	"github.com/code-payments/solend-client/pkg/solana"
	"github.com/code-payments/solend-client/pkg/solana/computebudget"
	"github.com/code-payments/solend-client/pkg/solana/solend"
	"github.com/code-payments/solend-client/pkg/solana/token"
	solendconfig "github.com/code-payments/solend-client/pkg/solend/config"
)

// Signer signs a transaction before it is submitted.
type Signer func(txn *solana.Transaction) error

// PrivateKeySigner signs with the provided keys, the first of which must
// belong to the fee payer.
func PrivateKeySigner(keys ...ed25519.PrivateKey) Signer {
	return func(txn *solana.Transaction) error {
		return txn.Sign(keys...)
	}
}

// Planner resolves lending actions against live network state and turns
// them into transactions.
type Planner struct {
	log     *logrus.Entry
	conf    *conf
	solana  solana.Client
	configs solendconfig.Client
}

func NewPlanner(sc solana.Client, configs solendconfig.Client, configProvider ConfigProvider) *Planner {
	return &Planner{
		log:     logrus.StandardLogger().WithField("type", "solend/action/planner"),
		conf:    configProvider(),
		solana:  sc,
		configs: configs,
	}
}

// Settings returns the current planning settings.
func (p *Planner) Settings(ctx context.Context) Settings {
	return Settings{
		PositionLimit:      int(p.conf.positionLimit.Get(ctx)),
		NativeRepayPadding: p.conf.nativeRepayPadding.Get(ctx),
		Relocation: RelocationPolicy{
			Threshold:                   int(p.conf.relocationThreshold.Get(ctx)),
			TokenAccountWithHostFeeOnly: p.conf.relocateTokenAccountWithHostFeeOnly.Get(ctx),
			CollateralAccountNativeOnly: p.conf.relocateCollateralAccountNativeOnly.Get(ctx),
		},
		ComputeBudget: computebudget.Budget{
			UnitLimit: clampUnitLimit(p.conf.computeUnitLimit.Get(ctx)),
			UnitPrice: p.conf.computeUnitPrice.Get(ctx),
		},
	}
}

func clampUnitLimit(limit uint64) uint32 {
	if limit > computebudget.MaxUnitLimit {
		return computebudget.MaxUnitLimit
	}
	return uint32(limit)
}

// Resolve fetches the metadata and account state req depends on.
func (p *Planner) Resolve(ctx context.Context, req *Request) (*State, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Resolve")
	tracer.AddAttribute("action", req.Action.String())
	tracer.AddAttribute("symbol", req.Symbol)
	defer tracer.End()

	state, err := p.resolve(ctx, req)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}
	return state, nil
}

func (p *Planner) resolve(ctx context.Context, req *Request) (*State, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deployment := p.conf.deployment.Get(ctx)
	cfg, err := p.configs.GetConfig(ctx, deployment)
	if errors.Is(err, solendconfig.ErrDeploymentNotFound) {
		return nil, newConfigLookupError(err, "deployment %s", deployment)
	} else if err != nil {
		return nil, newAccountFetchError(err, "failed to get %s config", deployment)
	}

	state, err := resolveMetadata(cfg, req)
	if err != nil {
		return nil, err
	}

	if err := p.fetchAccounts(ctx, req, state); err != nil {
		return nil, err
	}
	return state, nil
}

// resolveMetadata looks up the market, reserve and oracle for req and
// derives every address the action touches.
func resolveMetadata(cfg *solendconfig.Config, req *Request) (*State, error) {
	var requestedMarket string
	if len(req.LendingMarket) > 0 {
		requestedMarket = base58.Encode(req.LendingMarket)
	}

	market, err := cfg.FindMarket(requestedMarket)
	if err != nil {
		return nil, newConfigLookupError(err, "market %s", requestedMarket)
	}

	asset, err := cfg.FindAsset(req.Symbol)
	if err != nil {
		return nil, newConfigLookupError(err, "asset %s", req.Symbol)
	}

	reserve, err := market.FindReserve(req.Symbol)
	if err != nil {
		return nil, newConfigLookupError(err, "reserve %s in market %s", req.Symbol, market.Address)
	}

	oracle, err := cfg.FindOracle(req.Symbol)
	if err != nil {
		return nil, newConfigLookupError(err, "oracle %s", req.Symbol)
	}

	program, err := cfg.ProgramKey()
	if err != nil {
		return nil, newConfigLookupError(err, "program id")
	}

	state := &State{
		Config:  cfg,
		Market:  market,
		Program: program,
		Reserve: ReserveKeys{
			Symbol: req.Symbol,
		},
	}

	addresses := []struct {
		dst     *ed25519.PublicKey
		address string
		name    string
	}{
		{&state.LendingMarket, market.Address, "market"},
		{&state.MarketAuthority, market.AuthorityAddress, "market authority"},
		{&state.Reserve.Address, reserve.Address, "reserve"},
		{&state.Reserve.LiquidityMint, asset.MintAddress, "liquidity mint"},
		{&state.Reserve.LiquiditySupply, reserve.LiquidityAddress, "liquidity supply"},
		{&state.Reserve.LiquidityFeeReceiver, reserve.LiquidityFeeReceiverAddress, "liquidity fee receiver"},
		{&state.Reserve.CollateralMint, reserve.CollateralMintAddress, "collateral mint"},
		{&state.Reserve.CollateralSupply, reserve.CollateralSupplyAddress, "collateral supply"},
		{&state.Reserve.PythOracle, oracle.PriceAddress, "pyth oracle"},
		{&state.Reserve.SwitchboardFeed, oracle.SwitchboardFeedAddress, "switchboard feed"},
	}
	for _, a := range addresses {
		key, err := solendconfig.ParseKey(a.address)
		if err != nil {
			return nil, newConfigLookupError(err, "%s %s", req.Symbol, a.name)
		}
		*a.dst = key
	}

	authority, _, err := solend.GetLendingMarketAuthorityAddress(&solend.GetLendingMarketAuthorityAddressArgs{
		Program:       state.Program,
		LendingMarket: state.LendingMarket,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive market authority")
	}
	if !bytes.Equal(authority, state.MarketAuthority) {
		return nil, newConfigLookupError(ErrMarketAuthority, "market %s authority %s", market.Address, market.AuthorityAddress)
	}

	state.ObligationSeed = solend.ObligationSeed(state.LendingMarket)
	state.ObligationAddress, err = solend.GetObligationAddress(&solend.GetObligationAddressArgs{
		Program:       state.Program,
		Owner:         req.Owner,
		LendingMarket: state.LendingMarket,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive obligation address")
	}

	state.UserTokenAccount, err = token.GetAssociatedAccount(req.Owner, state.Reserve.LiquidityMint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive user token account")
	}

	state.UserCollateralAccount, err = token.GetAssociatedAccount(req.Owner, state.Reserve.CollateralMint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive user collateral account")
	}

	return state, nil
}

// fetchAccounts concurrently reads the on-chain state for the action. All
// reads complete before planning starts.
func (p *Planner) fetchAccounts(ctx context.Context, req *Request, state *State) error {
	var g errgroup.Group

	if req.Action.usesObligation() {
		g.Go(func() error {
			obligation, err := p.getObligation(state.ObligationAddress)
			if err != nil {
				return err
			}
			state.Obligation = obligation
			return nil
		})

		g.Go(func() error {
			rent, err := p.solana.GetMinimumBalanceForRentExemption(solend.ObligationAccountSize)
			if err != nil {
				return newAccountFetchError(err, "failed to get obligation rent exemption")
			}
			state.ObligationRentExemption = rent
			return nil
		})
	}

	g.Go(func() error {
		exists, err := p.tokenAccountExists(req.Owner, state.Reserve.LiquidityMint)
		if err != nil {
			return err
		}
		state.UserTokenAccountExists = exists
		return nil
	})

	g.Go(func() error {
		exists, err := p.tokenAccountExists(req.Owner, state.Reserve.CollateralMint)
		if err != nil {
			return err
		}
		state.UserCollateralAccountExists = exists
		return nil
	})

	if state.IsNative() {
		g.Go(func() error {
			rent, err := p.solana.GetMinimumBalanceForRentExemption(token.AccountSize)
			if err != nil {
				return newAccountFetchError(err, "failed to get token account rent exemption")
			}
			state.TokenAccountRentExemption = rent
			return nil
		})
	}

	if needsReserveData(req, state) {
		g.Go(func() error {
			reserve, err := p.getReserve(state.Reserve.Address)
			if err != nil {
				return err
			}
			state.ReserveData = reserve
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	// The client calls are not cancellable, so a deadline hit while they were
	// in flight is only observed here.
	return ctx.Err()
}

func needsReserveData(req *Request, state *State) bool {
	if req.Action == ActionWithdraw {
		return true
	}
	return req.Action == ActionRepay && req.Amount == solend.U64Max && state.IsNative()
}

func (p *Planner) getObligation(address ed25519.PublicKey) (*solend.Obligation, error) {
	info, err := p.solana.GetAccountInfo(address, solana.CommitmentConfirmed)
	if err == solana.ErrNoAccountInfo {
		return nil, nil
	} else if err != nil {
		return nil, newAccountFetchError(err, "failed to get obligation %s", base58.Encode(address))
	}

	obligation, err := solend.ParseObligation(info.Data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse obligation %s", base58.Encode(address))
	}
	return obligation, nil
}

func (p *Planner) getReserve(address ed25519.PublicKey) (*solend.Reserve, error) {
	info, err := p.solana.GetAccountInfo(address, solana.CommitmentProcessed)
	if err != nil {
		return nil, newAccountFetchError(err, "failed to get reserve %s", base58.Encode(address))
	}

	reserve, err := solend.ParseReserve(info.Data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse reserve %s", base58.Encode(address))
	}
	return reserve, nil
}

// tokenAccountExists reports whether owner's associated account for mint has
// been created.
func (p *Planner) tokenAccountExists(owner, mint ed25519.PublicKey) (bool, error) {
	address, account, err := token.NewClient(p.solana, mint).GetAssociatedAccount(owner)
	switch {
	case err == nil:
		return account != nil, nil
	case errors.Is(err, token.ErrInvalidTokenAccount):
		return false, errors.Wrapf(solend.ErrMalformedAccountData, "token account %s: %v", base58.Encode(address), err)
	default:
		return false, newAccountFetchError(err, "failed to get token account %s", base58.Encode(address))
	}
}

// Plan resolves req and builds its plan.
func (p *Planner) Plan(ctx context.Context, req *Request) (*Plan, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	log := p.log.WithFields(logrus.Fields{
		"method": "Plan",
		"action": req.Action,
		"symbol": req.Symbol,
		"owner":  base58.Encode(req.Owner),
	})

	state, err := p.Resolve(ctx, req)
	if err != nil {
		log.WithError(err).Info("failed to resolve action state")
		return nil, err
	}

	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "BuildPlan")
	defer tracer.End()

	plan, err := BuildPlan(req, state, p.Settings(ctx))
	if err != nil {
		tracer.OnError(err)
		log.WithError(err).Info("failed to build plan")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"obligation":       base58.Encode(plan.ObligationAddress),
		"positions":        plan.Positions,
		"pre_transaction":  len(plan.preTransaction),
		"setup":            len(plan.setup),
		"cleanup":          len(plan.cleanup),
		"post_transaction": len(plan.postTransaction),
	}).Debug("plan built")

	metrics.RecordCount(ctx, positionCountMetricName, uint64(plan.Positions))
	metrics.RecordEvent(ctx, planBuiltEventName, map[string]interface{}{
		"action":       req.Action.String(),
		"symbol":       req.Symbol,
		"positions":    plan.Positions,
		"transactions": len(plan.InstructionGroups()),
	})

	return plan, nil
}

// Transactions materializes plan against the latest blockhash, with the
// plan's owner paying fees.
func (p *Planner) Transactions(ctx context.Context, plan *Plan) ([]solana.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blockhash, err := p.solana.GetLatestBlockhash()
	if err != nil {
		return nil, newAccountFetchError(err, "failed to get latest blockhash")
	}

	txns := plan.Transactions(plan.Owner, blockhash)
	for i := range txns {
		if err := txns[i].CheckSize(); err != nil {
			return nil, errors.Wrapf(err, "transaction %d of %d", i+1, len(txns))
		}
	}
	return txns, nil
}

// Submit signs and sends the plan's transactions one at a time, waiting for
// each to be confirmed before sending the next. It stops at the first
// failure and returns the signature of the transaction holding the main
// instruction.
func (p *Planner) Submit(ctx context.Context, plan *Plan, signer Signer) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Submit")
	tracer.AddAttribute("action", plan.Action.String())
	defer tracer.End()

	log := p.log.WithFields(logrus.Fields{
		"method": "Submit",
		"action": plan.Action,
		"owner":  base58.Encode(plan.Owner),
	})

	start := time.Now()
	defer func() {
		metrics.RecordDuration(ctx, submitDurationMetricName, time.Since(start))
	}()

	var mainSignature solana.Signature
	groups := plan.InstructionGroups()
	for i, group := range groups {
		log := log.WithField("transaction", i)

		sig, err := p.submitAndConfirm(ctx, plan, group, signer)
		if err != nil {
			err = errors.Wrapf(err, "transaction %d of %d failed", i+1, len(groups))
			tracer.OnError(err)
			log.WithError(err).Warn("failed to submit transaction")
			return mainSignature, err
		}

		log.WithField("signature", sig.ToBase58()).Debug("transaction confirmed")
		metrics.RecordEvent(ctx, transactionSubmittedEventName, map[string]interface{}{
			"action":    plan.Action.String(),
			"index":     i,
			"signature": sig.ToBase58(),
		})

		if i == plan.MainIndex() {
			mainSignature = sig
		}
	}

	return mainSignature, nil
}

func (p *Planner) submitAndConfirm(ctx context.Context, plan *Plan, instructions []solana.Instruction, signer Signer) (solana.Signature, error) {
	if err := ctx.Err(); err != nil {
		return solana.Signature{}, err
	}

	blockhash, err := p.solana.GetLatestBlockhash()
	if err != nil {
		return solana.Signature{}, newAccountFetchError(err, "failed to get latest blockhash")
	}

	txn := solana.NewTransaction(plan.Owner, instructions...)
	txn.SetBlockhash(blockhash)
	if err := txn.CheckSize(); err != nil {
		return solana.Signature{}, err
	}
	if err := signer(&txn); err != nil {
		return solana.Signature{}, errors.Wrap(err, "failed to sign transaction")
	}

	sig, err := p.solana.SubmitTransaction(txn, solana.CommitmentConfirmed)
	if err != nil {
		return sig, wrapTransactionError(txn, plan.Program, err, "failed to submit transaction")
	}

	if _, err := p.solana.GetSignatureStatus(sig, solana.CommitmentConfirmed); err != nil {
		return sig, wrapTransactionError(txn, plan.Program, err, "failed to confirm transaction")
	}
	return sig, nil
}

// wrapTransactionError surfaces a lending program error code, when there is
// one, so callers can match it with errors.As.
func wrapTransactionError(txn solana.Transaction, program ed25519.PublicKey, err error, message string) error {
	if lendingErr, ok := solend.GetLendingError(txn, program, err); ok {
		return errors.Wrapf(lendingErr, "%s (%v)", message, err)
	}
	return errors.Wrap(err, message)
}

// BuildDeposit plans depositing liquidity as obligation collateral.
func (p *Planner) BuildDeposit(ctx context.Context, amount uint64, symbol string, owner ed25519.PublicKey, opts ...RequestOption) (*Plan, error) {
	return p.build(ctx, ActionDeposit, amount, symbol, owner, opts...)
}

// BuildBorrow plans borrowing liquidity against the obligation.
func (p *Planner) BuildBorrow(ctx context.Context, amount uint64, symbol string, owner ed25519.PublicKey, opts ...RequestOption) (*Plan, error) {
	return p.build(ctx, ActionBorrow, amount, symbol, owner, opts...)
}

// BuildWithdraw plans withdrawing collateral worth amount of liquidity.
func (p *Planner) BuildWithdraw(ctx context.Context, amount uint64, symbol string, owner ed25519.PublicKey, opts ...RequestOption) (*Plan, error) {
	return p.build(ctx, ActionWithdraw, amount, symbol, owner, opts...)
}

// BuildRepay plans repaying a borrow. solend.U64Max repays everything.
func (p *Planner) BuildRepay(ctx context.Context, amount uint64, symbol string, owner ed25519.PublicKey, opts ...RequestOption) (*Plan, error) {
	return p.build(ctx, ActionRepay, amount, symbol, owner, opts...)
}

func (p *Planner) BuildMint(ctx context.Context, amount uint64, symbol string, owner ed25519.PublicKey, opts ...RequestOption) (*Plan, error) {
	return p.build(ctx, ActionMint, amount, symbol, owner, opts...)
}

func (p *Planner) BuildRedeem(ctx context.Context, amount uint64, symbol string, owner ed25519.PublicKey, opts ...RequestOption) (*Plan, error) {
	return p.build(ctx, ActionRedeem, amount, symbol, owner, opts...)
}

func (p *Planner) BuildDepositCollateral(ctx context.Context, amount uint64, symbol string, owner ed25519.PublicKey, opts ...RequestOption) (*Plan, error) {
	return p.build(ctx, ActionDepositCollateral, amount, symbol, owner, opts...)
}

func (p *Planner) build(ctx context.Context, action Action, amount uint64, symbol string, owner ed25519.PublicKey, opts ...RequestOption) (*Plan, error) {
	req := &Request{
		Action: action,
		Amount: amount,
		Symbol: symbol,
		Owner:  owner,
	}
	for _, opt := range opts {
		opt(req)
	}
	return p.Plan(ctx, req)
}
