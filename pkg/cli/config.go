package cli

import (
	"time"

	"github.com/spf13/viper"

	"github.com/code-payments/solend-client/pkg/solend/action"
	solendconfig "github.com/code-payments/solend-client/pkg/solend/config"
)

// BaseConfig contains the configuration shared by all commands.
type BaseConfig struct {
	LogLevel string `mapstructure:"log_level"`

	AppName string `mapstructure:"app_name"`

	// RPCEndpoint is the Solana JSON-RPC endpoint used for account reads
	// and transaction submission. Cluster monikers such as "devnet" are
	// accepted.
	RPCEndpoint string `mapstructure:"rpc_endpoint"`

	// RPCRateLimit caps requests per second for each RPC method. Zero
	// disables the limit.
	RPCRateLimit float64 `mapstructure:"rpc_rate_limit"`

	// ConfigEndpoint is the base URL of the market configuration service.
	ConfigEndpoint string `mapstructure:"config_endpoint"`

	HTTPTimeout time.Duration `mapstructure:"http_timeout"`

	// ConfigCacheTTL caches config service responses per deployment. Zero
	// fetches the config for every plan.
	ConfigCacheTTL time.Duration `mapstructure:"config_cache_ttl"`

	// Deployment selects the configuration served for production or devnet.
	Deployment string `mapstructure:"deployment"`

	PositionLimit       uint64 `mapstructure:"position_limit"`
	NativeRepayPadding  uint64 `mapstructure:"native_repay_padding"`
	RelocationThreshold uint64 `mapstructure:"relocation_threshold"`

	// Compute budget requested by every transaction. Zero keeps the runtime
	// default.
	ComputeUnitLimit uint64 `mapstructure:"compute_unit_limit"`
	ComputeUnitPrice uint64 `mapstructure:"compute_unit_price"`

	// Metrics are only reported when a license key is set
	NewRelicLicenseKey string `mapstructure:"new_relic_license_key"`
}

var defaultConfig = BaseConfig{
	LogLevel: "info",

	AppName: "solend-client",

	RPCEndpoint:    "https://api.mainnet-beta.solana.com",
	ConfigEndpoint: solendconfig.DefaultEndpoint,

	HTTPTimeout: 15 * time.Second,

	Deployment: solendconfig.DeploymentProduction,
}

func init() {
	_ = viper.BindEnv("log_level", "LOG_LEVEL")

	_ = viper.BindEnv("app_name", "APP_NAME")

	_ = viper.BindEnv("rpc_endpoint", "SOLEND_RPC_ENDPOINT")
	_ = viper.BindEnv("rpc_rate_limit", "SOLEND_RPC_RATE_LIMIT")
	_ = viper.BindEnv("config_endpoint", "SOLEND_CONFIG_ENDPOINT")
	_ = viper.BindEnv("http_timeout", "SOLEND_HTTP_TIMEOUT")
	_ = viper.BindEnv("config_cache_ttl", "SOLEND_CONFIG_CACHE_TTL")

	_ = viper.BindEnv("deployment", action.DeploymentConfigEnvName)
	_ = viper.BindEnv("position_limit", action.PositionLimitConfigEnvName)
	_ = viper.BindEnv("native_repay_padding", action.NativeRepayPaddingConfigEnvName)
	_ = viper.BindEnv("relocation_threshold", action.RelocationThresholdConfigEnvName)
	_ = viper.BindEnv("compute_unit_limit", action.ComputeUnitLimitConfigEnvName)
	_ = viper.BindEnv("compute_unit_price", action.ComputeUnitPriceConfigEnvName)

	_ = viper.BindEnv("new_relic_license_key", "NEW_RELIC_LICENSE_KEY")
}
