package cli

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/code-payments/solend-client/pkg/solend/action"
	solendconfig "github.com/code-payments/solend-client/pkg/solend/config"
)

var (
	planOwner           string
	planMarket          string
	planHostFeeReceiver string
	planRawAmount       bool
	planEncoding        string
)

var planCmd = &cobra.Command{
	Use:   "plan <action> <amount|max> <symbol>",
	Short: "Show the transactions for a lending action",
	Long: `Resolves the accounts needed for a lending action and prints the
instructions it requires, followed by each unsigned transaction.

Actions: deposit, borrow, withdraw, repay, mint, redeem, depositCollateral.
Amounts are token quantities, for example 1.5 USDC, unless --raw is set.`,
	Args: cobra.ExactArgs(3),
	RunE: runPlan,
}

func init() {
	addRequestFlags(planCmd)
	planCmd.Flags().StringVar(&planOwner, "owner", "", "wallet that owns the obligation (base58)")
	planCmd.Flags().StringVar(&planEncoding, "encoding", "base64", "unsigned transaction encoding (base64 or base58)")
	_ = planCmd.MarkFlagRequired("owner")
}

func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&planMarket, "market", "", "lending market address, defaults to the primary market")
	cmd.Flags().StringVar(&planHostFeeReceiver, "host-fee-receiver", "", "token account receiving the host fee on borrows")
	cmd.Flags().BoolVar(&planRawAmount, "raw", false, "treat the amount as base units")
}

func runPlan(cmd *cobra.Command, args []string) error {
	owner, err := parseKey("owner", planOwner)
	if err != nil {
		return err
	}

	encode, err := getEncoder(planEncoding)
	if err != nil {
		return err
	}

	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.Stop()

	ctx, end := a.context(cmd.Context(), "solend plan")
	defer end()

	req, cfg, err := buildRequest(ctx, a, args, owner)
	if err != nil {
		return err
	}

	plan, err := a.planner.Plan(ctx, req)
	if err != nil {
		return errors.Wrap(err, "failed to plan action")
	}

	program, err := cfg.ProgramKey()
	if err != nil {
		return err
	}

	asset, err := cfg.FindAsset(req.Symbol)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printPlan(out, program, plan, fmt.Sprintf("%s %s", formatAmount(req.Amount, asset.Decimals), req.Symbol))

	txns, err := a.planner.Transactions(ctx, plan)
	if err != nil {
		return errors.Wrap(err, "failed to build transactions")
	}

	fmt.Fprintf(out, "\n# unsigned transactions (%s)\n", planEncoding)
	for i, txn := range txns {
		fmt.Fprintf(out, "  %d. %s\n", i+1, encode(txn.Marshal()))
	}

	return nil
}

// buildRequest turns positional <action> <amount> <symbol> arguments and the
// request flags into a planner request.
func buildRequest(ctx context.Context, a *app, args []string, owner ed25519.PublicKey) (*action.Request, *solendconfig.Config, error) {
	act, err := action.ParseAction(args[0])
	if err != nil {
		return nil, nil, err
	}

	cfg, err := a.getConfig(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to get deployment config")
	}

	symbol := args[2]
	asset, err := cfg.FindAsset(symbol)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "symbol %s", symbol)
	}

	amount, err := parseAmount(args[1], asset.Decimals, planRawAmount)
	if err != nil {
		return nil, nil, err
	}

	req := &action.Request{
		Action: act,
		Amount: amount,
		Symbol: symbol,
		Owner:  owner,
	}

	if len(planMarket) > 0 {
		market, err := parseKey("market", planMarket)
		if err != nil {
			return nil, nil, err
		}
		action.WithLendingMarket(market)(req)
	}
	if len(planHostFeeReceiver) > 0 {
		receiver, err := parseKey("host fee receiver", planHostFeeReceiver)
		if err != nil {
			return nil, nil, err
		}
		action.WithHostFeeReceiver(receiver)(req)
	}

	return req, cfg, nil
}

func parseKey(name, value string) (ed25519.PublicKey, error) {
	key, err := base58.Decode(value)
	if err != nil || len(key) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid %s address: %q", name, value)
	}
	return key, nil
}

func getEncoder(encoding string) (func([]byte) string, error) {
	switch encoding {
	case "base64":
		return base64.StdEncoding.EncodeToString, nil
	case "base58":
		return base58.Encode, nil
	default:
		return nil, errors.Errorf("unsupported encoding: %s", encoding)
	}
}
