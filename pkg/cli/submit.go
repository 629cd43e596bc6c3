package cli

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/code-payments/solend-client/pkg/solend/action"
)

var (
	submitKeypair string
)

var submitCmd = &cobra.Command{
	Use:   "submit <action> <amount|max> <symbol>",
	Short: "Sign and submit the transactions for a lending action",
	Long: `Plans a lending action for the keypair's wallet, then signs and submits
each transaction in order, waiting for confirmation before sending the next.
Submission stops at the first failed transaction.`,
	Args: cobra.ExactArgs(3),
	RunE: runSubmit,
}

func init() {
	addRequestFlags(submitCmd)
	submitCmd.Flags().StringVar(&submitKeypair, "keypair", "", "path to a Solana JSON keypair file")
	_ = submitCmd.MarkFlagRequired("keypair")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	key, err := loadKeypair(submitKeypair)
	if err != nil {
		return err
	}

	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.Stop()

	ctx, end := a.context(cmd.Context(), "solend submit")
	defer end()

	req, _, err := buildRequest(ctx, a, args, key.Public().(ed25519.PublicKey))
	if err != nil {
		return err
	}

	plan, err := a.planner.Plan(ctx, req)
	if err != nil {
		return errors.Wrap(err, "failed to plan action")
	}

	log := a.log.WithFields(logrus.Fields{
		"action":       plan.Action,
		"transactions": len(plan.InstructionGroups()),
	})
	log.Info("submitting plan")

	sig, err := a.planner.Submit(ctx, plan, action.PrivateKeySigner(key))
	if err != nil {
		return errors.Wrap(err, "failed to submit plan")
	}

	fmt.Fprintln(cmd.OutOrStdout(), sig.ToBase58())
	return nil
}

// loadKeypair reads a keypair in the Solana CLI format: a JSON array holding
// the 64 byte private key.
func loadKeypair(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read keypair")
	}

	var raw []byte
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return nil, errors.Wrap(err, "failed to parse keypair")
	}
	for _, v := range ints {
		if v < 0 || v > 255 {
			return nil, errors.New("keypair contains a value out of byte range")
		}
		raw = append(raw, byte(v))
	}

	if len(raw) != ed25519.PrivateKeySize {
		return nil, errors.Errorf("keypair must be %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}

	key := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
	if !key.Public().(ed25519.PublicKey).Equal(ed25519.PublicKey(raw[ed25519.SeedSize:])) {
		return nil, errors.New("keypair public key does not match private key")
	}

	return key, nil
}
