package action

import (
	"context"
	"crypto/ed25519"
	"sync"
	"testing"

	"github.com/holiman/uint256"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/solend-client/pkg/solana"
	"github.com/code-payments/solend-client/pkg/solana/solend"
	"github.com/code-payments/solend-client/pkg/solana/token"
	solendconfig "github.com/code-payments/solend-client/pkg/solend/config"
)

const (
	testObligationRent   = 9_938_880
	testTokenAccountRent = 2_039_280
)

type fakeSolanaClient struct {
	solana.Client

	mu sync.Mutex

	accounts     map[string]solana.AccountInfo
	fetchErr     error
	accountReads int
	blockhashes  int
	submitted    []solana.Transaction
	failSubmitAt int
	submitErr    error
	statusErr    error
}

func newFakeSolanaClient() *fakeSolanaClient {
	return &fakeSolanaClient{
		accounts:     make(map[string]solana.AccountInfo),
		failSubmitAt: -1,
	}
}

func (c *fakeSolanaClient) GetAccountInfo(account ed25519.PublicKey, _ solana.Commitment) (solana.AccountInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.accountReads++
	if c.fetchErr != nil {
		return solana.AccountInfo{}, c.fetchErr
	}

	info, ok := c.accounts[string(account)]
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}
	return info, nil
}

func (c *fakeSolanaClient) GetMinimumBalanceForRentExemption(size uint64) (uint64, error) {
	c.mu.Lock()
	c.accountReads++
	c.mu.Unlock()

	switch size {
	case solend.ObligationAccountSize:
		return testObligationRent, nil
	case token.AccountSize:
		return testTokenAccountRent, nil
	}
	return 0, errors.Errorf("unexpected size %d", size)
}

func (c *fakeSolanaClient) GetLatestBlockhash() (solana.Blockhash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.blockhashes++

	var bh solana.Blockhash
	bh[0] = byte(c.blockhashes)
	return bh, nil
}

func (c *fakeSolanaClient) SubmitTransaction(txn solana.Transaction, _ solana.Commitment) (solana.Signature, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sig := txn.Signatures[0]
	if len(c.submitted) == c.failSubmitAt {
		return sig, c.submitErr
	}

	c.submitted = append(c.submitted, txn)
	return sig, nil
}

func (c *fakeSolanaClient) GetSignatureStatus(_ solana.Signature, _ solana.Commitment) (*solana.SignatureStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.statusErr != nil {
		return nil, c.statusErr
	}
	return &solana.SignatureStatus{ConfirmationStatus: "confirmed"}, nil
}

func (c *fakeSolanaClient) setTokenAccount(address, mint, owner ed25519.PublicKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	account := &token.Account{
		Mint:  mint,
		Owner: owner,
		State: token.AccountStateInitialized,
	}
	c.accounts[string(address)] = solana.AccountInfo{
		Owner: token.ProgramKey,
		Data:  account.Marshal(),
	}
}

func (c *fakeSolanaClient) setAccount(address ed25519.PublicKey, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.accounts[string(address)] = solana.AccountInfo{
		Owner: solend.PROGRAM_ID,
		Data:  data,
	}
}

type fakeConfigClient struct {
	cfg   *solendconfig.Config
	err   error
	calls []string
}

func (c *fakeConfigClient) GetConfig(_ context.Context, deployment string) (*solendconfig.Config, error) {
	c.calls = append(c.calls, deployment)
	if c.err != nil {
		return nil, c.err
	}
	return c.cfg, nil
}

type testEnv struct {
	cfg      *solendconfig.Config
	owner    ed25519.PublicKey
	ownerKey ed25519.PrivateKey
	solana   *fakeSolanaClient
	configs  *fakeConfigClient
	planner  *Planner
}

func setup(t *testing.T, symbols ...string) *testEnv {
	owner, ownerKey, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	env := &testEnv{
		cfg:      newTestConfig(t, symbols...),
		owner:    owner,
		ownerKey: ownerKey,
		solana:   newFakeSolanaClient(),
	}
	env.configs = &fakeConfigClient{cfg: env.cfg}
	env.planner = NewPlanner(env.solana, env.configs, WithOverrides(&Overrides{}))
	return env
}

func newTestConfig(t *testing.T, symbols ...string) *solendconfig.Config {
	marketKey := newTestKey(t)
	authority, _, err := solend.GetLendingMarketAuthorityAddress(&solend.GetLendingMarketAuthorityAddressArgs{
		Program:       solend.PROGRAM_ID,
		LendingMarket: marketKey,
	})
	require.NoError(t, err)

	market := solendconfig.Market{
		Name:             "main",
		IsPrimary:        true,
		Address:          base58.Encode(marketKey),
		AuthorityAddress: base58.Encode(authority),
	}

	cfg := &solendconfig.Config{
		ProgramID: base58.Encode(solend.PROGRAM_ID),
	}
	for _, symbol := range symbols {
		mint := newTestAddress(t)
		if symbol == "SOL" {
			mint = base58.Encode(token.NativeMint)
		}

		cfg.Assets = append(cfg.Assets, solendconfig.Asset{
			Name:        symbol,
			Symbol:      symbol,
			Decimals:    6,
			MintAddress: mint,
		})
		market.Reserves = append(market.Reserves, solendconfig.Reserve{
			Asset:                       symbol,
			Address:                     newTestAddress(t),
			CollateralMintAddress:       newTestAddress(t),
			CollateralSupplyAddress:     newTestAddress(t),
			LiquidityAddress:            newTestAddress(t),
			LiquidityFeeReceiverAddress: newTestAddress(t),
		})
		cfg.Oracles.Assets = append(cfg.Oracles.Assets, solendconfig.OracleAsset{
			Asset:                  symbol,
			PriceAddress:           newTestAddress(t),
			SwitchboardFeedAddress: newTestAddress(t),
		})
	}
	cfg.Markets = []solendconfig.Market{market}

	return cfg
}

func newTestAddress(t *testing.T) string {
	return base58.Encode(newTestKey(t))
}

func newTestKey(t *testing.T) ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub
}

func (e *testEnv) request(action Action, amount uint64, symbol string) *Request {
	return &Request{
		Action: action,
		Amount: amount,
		Symbol: symbol,
		Owner:  e.owner,
	}
}

// state resolves metadata for req without touching the fake network.
func (e *testEnv) state(t *testing.T, req *Request) *State {
	state, err := resolveMetadata(e.cfg, req)
	require.NoError(t, err)

	state.ObligationRentExemption = testObligationRent
	state.TokenAccountRentExemption = testTokenAccountRent
	return state
}

func (e *testEnv) reserveKey(t *testing.T, symbol string) ed25519.PublicKey {
	reserve, err := e.cfg.Markets[0].FindReserve(symbol)
	require.NoError(t, err)

	key, err := solendconfig.ParseKey(reserve.Address)
	require.NoError(t, err)
	return key
}

func (e *testEnv) oracleKeys(t *testing.T, symbol string) (ed25519.PublicKey, ed25519.PublicKey) {
	oracle, err := e.cfg.FindOracle(symbol)
	require.NoError(t, err)

	pyth, err := solendconfig.ParseKey(oracle.PriceAddress)
	require.NoError(t, err)
	switchboard, err := solendconfig.ParseKey(oracle.SwitchboardFeedAddress)
	require.NoError(t, err)
	return pyth, switchboard
}

// newTestObligation returns an obligation with a deposit in each of the
// deposit symbols' reserves and a borrow in each of the borrow symbols'.
func (e *testEnv) newTestObligation(t *testing.T, deposits, borrows []string) *solend.Obligation {
	market, err := solendconfig.ParseKey(e.cfg.Markets[0].Address)
	require.NoError(t, err)

	obligation := &solend.Obligation{
		Version:       solend.AccountVersion,
		LendingMarket: market,
		Owner:         e.owner,
	}
	for _, symbol := range deposits {
		obligation.Deposits = append(obligation.Deposits, solend.ObligationCollateral{
			DepositReserve:  e.reserveKey(t, symbol),
			DepositedAmount: 1_000,
			MarketValue:     uint256.NewInt(0),
		})
	}
	for _, symbol := range borrows {
		obligation.Borrows = append(obligation.Borrows, solend.ObligationLiquidity{
			BorrowReserve:            e.reserveKey(t, symbol),
			CumulativeBorrowRateWads: new(uint256.Int).Set(solend.WAD),
			BorrowedAmountWads:       new(uint256.Int).Mul(uint256.NewInt(500), solend.WAD),
			MarketValue:              uint256.NewInt(0),
		})
	}
	return obligation
}

// newTestReserveData returns reserve state with an exchange rate of two
// liquidity units per collateral unit and a cumulative borrow rate of 1.1.
func newTestReserveData() *solend.Reserve {
	rate := new(uint256.Int).Mul(uint256.NewInt(11), uint256.NewInt(100_000_000_000_000_000))
	return &solend.Reserve{
		Version: solend.AccountVersion,
		Liquidity: solend.ReserveLiquidity{
			AvailableAmount:          2_000_000,
			BorrowedAmountWads:       new(uint256.Int).Mul(uint256.NewInt(2_000_000), solend.WAD),
			CumulativeBorrowRateWads: rate,
			MarketPrice:              uint256.NewInt(0),
		},
		Collateral: solend.ReserveCollateral{
			MintTotalSupply: 2_000_000,
		},
	}
}
