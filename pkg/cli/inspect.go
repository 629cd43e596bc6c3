package cli

import (
	"crypto/ed25519"
	"fmt"
	"io"

	"github.com/holiman/uint256"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/code-payments/solend-client/pkg/solana"
	"github.com/code-payments/solend-client/pkg/solana/solend"
	solendconfig "github.com/code-payments/solend-client/pkg/solend/config"
)

const wadDecimals = 18

var (
	inspectMarket string
)

var obligationCmd = &cobra.Command{
	Use:   "obligation <owner>",
	Short: "Show an owner's obligation in a lending market",
	Args:  cobra.ExactArgs(1),
	RunE:  runObligation,
}

var reserveCmd = &cobra.Command{
	Use:   "reserve <symbol>",
	Short: "Show a reserve's liquidity and exchange rate",
	Args:  cobra.ExactArgs(1),
	RunE:  runReserve,
}

func init() {
	obligationCmd.Flags().StringVar(&inspectMarket, "market", "", "lending market address, defaults to the primary market")
	reserveCmd.Flags().StringVar(&inspectMarket, "market", "", "lending market address, defaults to the primary market")
}

func runObligation(cmd *cobra.Command, args []string) error {
	owner, err := parseKey("owner", args[0])
	if err != nil {
		return err
	}

	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.Stop()

	ctx, end := a.context(cmd.Context(), "solend obligation")
	defer end()

	cfg, err := a.getConfig(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get deployment config")
	}

	program, market, err := marketKeys(cfg)
	if err != nil {
		return err
	}

	address, err := solend.GetObligationAddress(&solend.GetObligationAddressArgs{
		Program:       program,
		Owner:         owner,
		LendingMarket: market.key,
	})
	if err != nil {
		return err
	}

	info, err := a.solana.GetAccountInfo(address, solana.CommitmentProcessed)
	if err == solana.ErrNoAccountInfo {
		fmt.Fprintf(cmd.OutOrStdout(), "No obligation at %s\n", base58.Encode(address))
		return nil
	} else if err != nil {
		return errors.Wrap(err, "failed to get obligation")
	}

	obligation, err := solend.ParseObligation(info.Data)
	if err != nil {
		return err
	}

	printObligation(cmd.OutOrStdout(), address, obligation, cfg, market.config)
	return nil
}

func runReserve(cmd *cobra.Command, args []string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.Stop()

	ctx, end := a.context(cmd.Context(), "solend reserve")
	defer end()

	cfg, err := a.getConfig(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get deployment config")
	}

	_, market, err := marketKeys(cfg)
	if err != nil {
		return err
	}

	symbol := args[0]
	asset, err := cfg.FindAsset(symbol)
	if err != nil {
		return errors.Wrapf(err, "symbol %s", symbol)
	}
	reserveConfig, err := market.config.FindReserve(symbol)
	if err != nil {
		return errors.Wrapf(err, "symbol %s", symbol)
	}
	address, err := solendconfig.ParseKey(reserveConfig.Address)
	if err != nil {
		return err
	}

	info, err := a.solana.GetAccountInfo(address, solana.CommitmentProcessed)
	if err != nil {
		return errors.Wrap(err, "failed to get reserve")
	}

	reserve, err := solend.ParseReserve(info.Data)
	if err != nil {
		return err
	}

	printReserve(cmd.OutOrStdout(), address, reserve, asset)
	return nil
}

type resolvedMarket struct {
	key    ed25519.PublicKey
	config *solendconfig.Market
}

func marketKeys(cfg *solendconfig.Config) (ed25519.PublicKey, resolvedMarket, error) {
	program, err := cfg.ProgramKey()
	if err != nil {
		return nil, resolvedMarket{}, err
	}

	market, err := cfg.FindMarket(inspectMarket)
	if err != nil {
		return nil, resolvedMarket{}, err
	}
	key, err := solendconfig.ParseKey(market.Address)
	if err != nil {
		return nil, resolvedMarket{}, err
	}

	return program, resolvedMarket{key: key, config: market}, nil
}

func printObligation(w io.Writer, address ed25519.PublicKey, obligation *solend.Obligation, cfg *solendconfig.Config, market *solendconfig.Market) {
	fmt.Fprintf(w, "Obligation:       %s\n", base58.Encode(address))
	fmt.Fprintf(w, "Owner:            %s\n", base58.Encode(obligation.Owner))
	fmt.Fprintf(w, "Lending market:   %s\n", base58.Encode(obligation.LendingMarket))
	fmt.Fprintf(w, "Last update slot: %d (stale=%t)\n", obligation.LastUpdate.Slot, obligation.LastUpdate.Stale)
	fmt.Fprintf(w, "Deposited value:  $%s\n", formatWad(obligation.DepositedValue))
	fmt.Fprintf(w, "Borrowed value:   $%s\n", formatWad(obligation.BorrowedValue))
	fmt.Fprintf(w, "Borrow limit:     $%s\n", formatWad(obligation.AllowedBorrowValue))
	fmt.Fprintf(w, "Liquidation at:   $%s\n", formatWad(obligation.UnhealthyBorrowValue))

	if len(obligation.Deposits) > 0 {
		fmt.Fprintln(w, "\n# deposits")
		for _, deposit := range obligation.Deposits {
			symbol, decimals := reserveAsset(cfg, market, deposit.DepositReserve)
			fmt.Fprintf(
				w,
				"  %s %s ($%s)\n",
				formatAmount(deposit.DepositedAmount, decimals),
				symbol,
				formatWad(deposit.MarketValue),
			)
		}
	}

	if len(obligation.Borrows) > 0 {
		fmt.Fprintln(w, "\n# borrows")
		for _, borrow := range obligation.Borrows {
			symbol, decimals := reserveAsset(cfg, market, borrow.BorrowReserve)
			borrowed := decimal.Zero
			if borrow.BorrowedAmountWads != nil {
				borrowed = decimal.NewFromBigInt(borrow.BorrowedAmountWads.ToBig(), -wadDecimals-int32(decimals))
			}
			fmt.Fprintf(w, "  %s %s ($%s)\n", borrowed.String(), symbol, formatWad(borrow.MarketValue))
		}
	}
}

func printReserve(w io.Writer, address ed25519.PublicKey, reserve *solend.Reserve, asset *solendconfig.Asset) {
	rate := "n/a"
	if exchangeRate, err := solend.ExchangeRate(reserve); err == nil {
		rate = exchangeRate.String()
	}

	borrowed := decimal.Zero
	if reserve.Liquidity.BorrowedAmountWads != nil {
		borrowed = decimal.NewFromBigInt(reserve.Liquidity.BorrowedAmountWads.ToBig(), -wadDecimals-int32(asset.Decimals))
	}

	fmt.Fprintf(w, "Reserve:           %s (%s)\n", base58.Encode(address), asset.Symbol)
	fmt.Fprintf(w, "Lending market:    %s\n", base58.Encode(reserve.LendingMarket))
	fmt.Fprintf(w, "Last update slot:  %d (stale=%t)\n", reserve.LastUpdate.Slot, reserve.LastUpdate.Stale)
	fmt.Fprintf(w, "Available:         %s\n", formatAmount(reserve.Liquidity.AvailableAmount, asset.Decimals))
	fmt.Fprintf(w, "Borrowed:          %s\n", borrowed.String())
	fmt.Fprintf(w, "Collateral supply: %s\n", formatAmount(reserve.Collateral.MintTotalSupply, asset.Decimals))
	fmt.Fprintf(w, "Exchange rate:     %s\n", rate)
}

// reserveAsset maps a reserve address back to its asset symbol and decimals.
func reserveAsset(cfg *solendconfig.Config, market *solendconfig.Market, reserve ed25519.PublicKey) (string, uint8) {
	address := base58.Encode(reserve)

	found, err := market.FindReserveByAddress(address)
	if err != nil {
		return address, 0
	}
	asset, err := cfg.FindAsset(found.Asset)
	if err != nil {
		return found.Asset, 0
	}
	return asset.Symbol, asset.Decimals
}

func formatWad(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v.ToBig(), -wadDecimals).StringFixed(2)
}
