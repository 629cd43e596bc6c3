package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "solend",
	Short: "Plan and submit Solend lending actions",
	Long: `solend builds the ordered Solana transactions needed to deposit, borrow,
withdraw, repay, mint or redeem against a Solend lending market.

Plans are printed as unsigned transactions by default. The submit command
signs them with a local keypair and sends them in order.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "configuration file path")
	rootCmd.PersistentFlags().String("log-level", defaultConfig.LogLevel, "log level")
	rootCmd.PersistentFlags().String("rpc", defaultConfig.RPCEndpoint, "Solana JSON-RPC endpoint or cluster moniker (mainnet-beta, devnet, testnet, localnet)")
	rootCmd.PersistentFlags().String("deployment", defaultConfig.Deployment, "configuration deployment (production or devnet)")

	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("rpc_endpoint", rootCmd.PersistentFlags().Lookup("rpc"))
	_ = viper.BindPFlag("deployment", rootCmd.PersistentFlags().Lookup("deployment"))

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(obligationCmd)
	rootCmd.AddCommand(reserveCmd)
}
