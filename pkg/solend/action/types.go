package action

import (
	"crypto/ed25519"

	"github.com/code-payments/solend-client/pkg/solana"
	"github.com/code-payments/solend-client/pkg/solana/computebudget"
	"github.com/code-payments/solend-client/pkg/solana/solend"
	solendconfig "github.com/code-payments/solend-client/pkg/solend/config"
)

// Action is a user level lending operation.
type Action string

const (
	ActionDeposit           Action = "deposit"
	ActionBorrow            Action = "borrow"
	ActionWithdraw          Action = "withdraw"
	ActionRepay             Action = "repay"
	ActionMint              Action = "mint"
	ActionRedeem            Action = "redeem"
	ActionDepositCollateral Action = "depositCollateral"
)

var allActions = []Action{
	ActionDeposit,
	ActionBorrow,
	ActionWithdraw,
	ActionRepay,
	ActionMint,
	ActionRedeem,
	ActionDepositCollateral,
}

// ParseAction returns the Action named s.
func ParseAction(s string) (Action, error) {
	for _, a := range allActions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", ErrInvalidAction
}

func (a Action) Validate() error {
	_, err := ParseAction(string(a))
	return err
}

func (a Action) String() string {
	return string(a)
}

// refreshesObligation is true for actions the program checks against the
// obligation's health, which requires fresh reserves and obligation values.
func (a Action) refreshesObligation() bool {
	return a == ActionWithdraw || a == ActionBorrow
}

// usesObligation is false for pure reserve liquidity operations.
func (a Action) usesObligation() bool {
	return a != ActionMint && a != ActionRedeem
}

// sendsFunds is true when liquidity moves from the user to the reserve.
func (a Action) sendsFunds() bool {
	return a == ActionDeposit || a == ActionRepay || a == ActionMint
}

// receivesLiquidity is true when the user's token account is the
// destination of the main instruction.
func (a Action) receivesLiquidity() bool {
	return a == ActionWithdraw || a == ActionBorrow || a == ActionRedeem
}

// receivesCollateral is true when the user's collateral account is written
// by the main instruction.
func (a Action) receivesCollateral() bool {
	return a == ActionWithdraw || a == ActionMint || a == ActionDeposit
}

// opensPosition is true when the target reserve counts towards the position
// limit even if the obligation does not reference it yet.
func (a Action) opensPosition() bool {
	return a == ActionDeposit || a == ActionBorrow
}

// Request describes one lending action.
type Request struct {
	Action Action

	// Amount is in liquidity units, or solend.U64Max for the full balance.
	Amount uint64

	Symbol string
	Owner  ed25519.PublicKey

	// LendingMarket is optional. The primary market is used when unset.
	LendingMarket ed25519.PublicKey

	// HostFeeReceiver is optional and only used by borrows.
	HostFeeReceiver ed25519.PublicKey
}

func (r *Request) Validate() error {
	if err := r.Action.Validate(); err != nil {
		return err
	}
	if len(r.Owner) != ed25519.PublicKeySize {
		return ErrInvalidRequest
	}
	if len(r.Symbol) == 0 {
		return ErrInvalidRequest
	}
	return nil
}

// RequestOption sets optional Request fields.
type RequestOption func(*Request)

func WithLendingMarket(market ed25519.PublicKey) RequestOption {
	return func(r *Request) {
		r.LendingMarket = market
	}
}

func WithHostFeeReceiver(receiver ed25519.PublicKey) RequestOption {
	return func(r *Request) {
		r.HostFeeReceiver = receiver
	}
}

// ReserveKeys are the accounts of a reserve used by lending instructions.
type ReserveKeys struct {
	Symbol               string
	Address              ed25519.PublicKey
	LiquidityMint        ed25519.PublicKey
	LiquiditySupply      ed25519.PublicKey
	LiquidityFeeReceiver ed25519.PublicKey
	CollateralMint       ed25519.PublicKey
	CollateralSupply     ed25519.PublicKey
	PythOracle           ed25519.PublicKey
	SwitchboardFeed      ed25519.PublicKey
}

// State is everything planning needs, fetched fresh for a single request.
type State struct {
	Config *solendconfig.Config
	Market *solendconfig.Market

	Program         ed25519.PublicKey
	LendingMarket   ed25519.PublicKey
	MarketAuthority ed25519.PublicKey
	Reserve         ReserveKeys

	ObligationAddress ed25519.PublicKey
	ObligationSeed    string

	// Obligation is nil when the account does not exist yet.
	Obligation *solend.Obligation

	// ReserveData is only fetched when an action needs on-chain reserve
	// values, such as withdraws and native repay-all.
	ReserveData *solend.Reserve

	UserTokenAccount            ed25519.PublicKey
	UserTokenAccountExists      bool
	UserCollateralAccount       ed25519.PublicKey
	UserCollateralAccountExists bool

	ObligationRentExemption   uint64
	TokenAccountRentExemption uint64
}

// IsNative is true for the wrapped form of the network's native asset.
func (s *State) IsNative() bool {
	return isNativeMint(s.Reserve.LiquidityMint)
}

// RelocationPolicy decides when support instructions are moved into their
// own transactions so a fully loaded obligation still fits the main
// transaction.
type RelocationPolicy struct {
	// Threshold is the position count at which relocation starts. Zero means
	// the position limit.
	Threshold int

	// TokenAccountWithHostFeeOnly relocates creation of the user's token
	// account only when a host fee receiver is set.
	TokenAccountWithHostFeeOnly bool

	// CollateralAccountNativeOnly relocates creation of the user's
	// collateral account only for the native asset.
	CollateralAccountNativeOnly bool
}

// Settings tune planning.
type Settings struct {
	PositionLimit      int
	NativeRepayPadding uint64
	Relocation         RelocationPolicy

	// ComputeBudget prefixes every transaction of a plan when set.
	ComputeBudget computebudget.Budget
}

func DefaultSettings() Settings {
	return Settings{
		PositionLimit:      defaultPositionLimit,
		NativeRepayPadding: defaultNativeRepayPadding,
		Relocation: RelocationPolicy{
			Threshold:                   defaultRelocationThreshold,
			TokenAccountWithHostFeeOnly: defaultRelocateTokenAccountWithHostFeeOnly,
			CollateralAccountNativeOnly: defaultRelocateCollateralAccountNativeOnly,
		},
	}
}

func (s Settings) relocationThreshold() int {
	if s.Relocation.Threshold > 0 {
		return s.Relocation.Threshold
	}
	return s.PositionLimit
}

// Plan is the ordered instruction set for one action, split into the
// buckets that become transactions.
type Plan struct {
	Action            Action
	Program           ed25519.PublicKey
	Owner             ed25519.PublicKey
	ObligationAddress ed25519.PublicKey

	// Positions is the number of distinct reserves the obligation references
	// once the action lands.
	Positions int

	ComputeBudget computebudget.Budget

	preTransaction  []solana.Instruction
	setup           []solana.Instruction
	main            []solana.Instruction
	cleanup         []solana.Instruction
	postTransaction []solana.Instruction
}

func (p *Plan) PreTransaction() []solana.Instruction {
	return cloneInstructions(p.preTransaction)
}

func (p *Plan) Setup() []solana.Instruction {
	return cloneInstructions(p.setup)
}

func (p *Plan) Main() []solana.Instruction {
	return cloneInstructions(p.main)
}

func (p *Plan) Cleanup() []solana.Instruction {
	return cloneInstructions(p.cleanup)
}

func (p *Plan) PostTransaction() []solana.Instruction {
	return cloneInstructions(p.postTransaction)
}

// InstructionGroups returns the instructions of each transaction in
// submission order: the pre-transaction bucket if non-empty, then setup,
// main and cleanup together, then the post-transaction bucket if non-empty.
func (p *Plan) InstructionGroups() [][]solana.Instruction {
	var groups [][]solana.Instruction

	if len(p.preTransaction) > 0 {
		groups = append(groups, append(p.ComputeBudget.Instructions(), p.PreTransaction()...))
	}

	lending := p.ComputeBudget.Instructions()
	lending = append(lending, p.Setup()...)
	lending = append(lending, p.Main()...)
	lending = append(lending, p.Cleanup()...)
	groups = append(groups, lending)

	if len(p.postTransaction) > 0 {
		groups = append(groups, append(p.ComputeBudget.Instructions(), p.PostTransaction()...))
	}

	return groups
}

// MainIndex is the index of the transaction holding the main instruction
// within InstructionGroups and Transactions.
func (p *Plan) MainIndex() int {
	if len(p.preTransaction) > 0 {
		return 1
	}
	return 0
}

// Transactions materializes the plan into unsigned transactions paid for by
// payer.
func (p *Plan) Transactions(payer ed25519.PublicKey, blockhash solana.Blockhash) []solana.Transaction {
	groups := p.InstructionGroups()

	txns := make([]solana.Transaction, len(groups))
	for i, group := range groups {
		txns[i] = solana.NewTransaction(payer, group...)
		txns[i].SetBlockhash(blockhash)
	}
	return txns
}

func cloneInstructions(instructions []solana.Instruction) []solana.Instruction {
	if len(instructions) == 0 {
		return nil
	}

	cloned := make([]solana.Instruction, len(instructions))
	for i, instruction := range instructions {
		cloned[i] = instruction.Clone()
	}
	return cloned
}
