package cli

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/code-payments/solend-client/pkg/solana"
	"github.com/code-payments/solend-client/pkg/solana/computebudget"
	"github.com/code-payments/solend-client/pkg/solana/solend"
	"github.com/code-payments/solend-client/pkg/solana/system"
	"github.com/code-payments/solend-client/pkg/solana/token"
	"github.com/code-payments/solend-client/pkg/solend/action"
)

// describeInstruction returns a one line summary of an instruction produced
// by the planner.
func describeInstruction(program ed25519.PublicKey, ix solana.Instruction) string {
	switch {
	case bytes.Equal(ix.Program, computebudget.ProgramKey):
		cmd, value, err := computebudget.DecompileInstruction(ix)
		if err != nil {
			break
		}
		switch cmd {
		case computebudget.CommandSetComputeUnitLimit:
			return fmt.Sprintf("set_compute_unit_limit units=%d", value)
		case computebudget.CommandSetComputeUnitPrice:
			return fmt.Sprintf("set_compute_unit_price micro_lamports=%d", value)
		}
	case bytes.Equal(ix.Program, system.ProgramKey[:]):
		if v, err := system.DecompileTransfer(ix); err == nil {
			return fmt.Sprintf("system_transfer lamports=%d to=%s", v.Lamports, base58.Encode(v.Destination))
		}
		if v, err := system.DecompileCreateAccountWithSeed(ix); err == nil {
			return fmt.Sprintf("create_account_with_seed address=%s seed=%s lamports=%d", base58.Encode(v.Address), v.Seed, v.Lamports)
		}
	case bytes.Equal(ix.Program, token.AssociatedTokenAccountProgramKey):
		if v, err := token.DecompileCreateAssociatedAccount(ix); err == nil {
			return fmt.Sprintf("create_associated_account address=%s mint=%s", base58.Encode(v.Address), base58.Encode(v.Mint))
		}
	case bytes.Equal(ix.Program, token.ProgramKey):
		if v, err := token.DecompileCloseAccount(ix); err == nil {
			return fmt.Sprintf("close_account address=%s", base58.Encode(v.Account))
		}
		if v, err := token.DecompileSyncNative(ix); err == nil {
			return fmt.Sprintf("sync_native address=%s", base58.Encode(v.Account))
		}
	}

	t, fields, _, err := solend.DecompileInstruction(program, ix)
	if err != nil {
		return fmt.Sprintf("unknown program=%s data=%x", base58.Encode(ix.Program), ix.Data)
	}

	var sb strings.Builder
	sb.WriteString(t.String())

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&sb, " %s=%v", name, fields[name])
	}

	return sb.String()
}

type planBucket struct {
	name         string
	instructions []solana.Instruction
}

func planBuckets(plan *action.Plan) []planBucket {
	return []planBucket{
		{"pre-transaction", plan.PreTransaction()},
		{"setup", plan.Setup()},
		{"main", plan.Main()},
		{"cleanup", plan.Cleanup()},
		{"post-transaction", plan.PostTransaction()},
	}
}

func printPlan(w io.Writer, program ed25519.PublicKey, plan *action.Plan, amount string) {
	fmt.Fprintf(w, "Action:     %s %s\n", plan.Action, amount)
	fmt.Fprintf(w, "Owner:      %s\n", base58.Encode(plan.Owner))
	fmt.Fprintf(w, "Obligation: %s\n", base58.Encode(plan.ObligationAddress))
	fmt.Fprintf(w, "Positions:  %d\n", plan.Positions)
	if !plan.ComputeBudget.IsZero() {
		fmt.Fprintf(w, "Compute:    limit=%d price=%d\n", plan.ComputeBudget.UnitLimit, plan.ComputeBudget.UnitPrice)
	}

	for _, bucket := range planBuckets(plan) {
		if len(bucket.instructions) == 0 {
			continue
		}

		fmt.Fprintf(w, "\n# %s\n", bucket.name)
		for i, ix := range bucket.instructions {
			fmt.Fprintf(w, "  %d. %s\n", i+1, describeInstruction(program, ix))
		}
	}
}
