package action

import (
	"github.com/code-payments/solend-client/pkg/config"
	"github.com/code-payments/solend-client/pkg/config/env"
	"github.com/code-payments/solend-client/pkg/config/memory"
	"github.com/code-payments/solend-client/pkg/config/wrapper"
	solendconfig "github.com/code-payments/solend-client/pkg/solend/config"
)

const (
	envConfigPrefix = "SOLEND_"

	DeploymentConfigEnvName = envConfigPrefix + "DEPLOYMENT"
	defaultDeployment       = solendconfig.DeploymentProduction

	PositionLimitConfigEnvName = envConfigPrefix + "POSITION_LIMIT"
	defaultPositionLimit       = 6

	NativeRepayPaddingConfigEnvName = envConfigPrefix + "NATIVE_REPAY_PADDING"
	defaultNativeRepayPadding       = 1_000_000

	RelocationThresholdConfigEnvName = envConfigPrefix + "RELOCATION_THRESHOLD"
	defaultRelocationThreshold       = 0 // the position limit

	RelocateTokenAccountWithHostFeeOnlyConfigEnvName = envConfigPrefix + "RELOCATE_TOKEN_ACCOUNT_WITH_HOST_FEE_ONLY"
	defaultRelocateTokenAccountWithHostFeeOnly       = true

	RelocateCollateralAccountNativeOnlyConfigEnvName = envConfigPrefix + "RELOCATE_COLLATERAL_ACCOUNT_NATIVE_ONLY"
	defaultRelocateCollateralAccountNativeOnly       = true

	ComputeUnitLimitConfigEnvName = envConfigPrefix + "COMPUTE_UNIT_LIMIT"
	defaultComputeUnitLimit       = 0

	ComputeUnitPriceConfigEnvName = envConfigPrefix + "COMPUTE_UNIT_PRICE"
	defaultComputeUnitPrice       = 0
)

type conf struct {
	deployment                          config.String
	positionLimit                       config.Uint64
	nativeRepayPadding                  config.Uint64
	relocationThreshold                 config.Uint64
	relocateTokenAccountWithHostFeeOnly config.Bool
	relocateCollateralAccountNativeOnly config.Bool
	computeUnitLimit                    config.Uint64
	computeUnitPrice                    config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			deployment:                          env.NewStringConfig(DeploymentConfigEnvName, defaultDeployment),
			positionLimit:                       env.NewUint64Config(PositionLimitConfigEnvName, defaultPositionLimit),
			nativeRepayPadding:                  env.NewUint64Config(NativeRepayPaddingConfigEnvName, defaultNativeRepayPadding),
			relocationThreshold:                 env.NewUint64Config(RelocationThresholdConfigEnvName, defaultRelocationThreshold),
			relocateTokenAccountWithHostFeeOnly: env.NewBoolConfig(RelocateTokenAccountWithHostFeeOnlyConfigEnvName, defaultRelocateTokenAccountWithHostFeeOnly),
			relocateCollateralAccountNativeOnly: env.NewBoolConfig(RelocateCollateralAccountNativeOnlyConfigEnvName, defaultRelocateCollateralAccountNativeOnly),
			computeUnitLimit:                    env.NewUint64Config(ComputeUnitLimitConfigEnvName, defaultComputeUnitLimit),
			computeUnitPrice:                    env.NewUint64Config(ComputeUnitPriceConfigEnvName, defaultComputeUnitPrice),
		}
	}
}

// Overrides are in-memory config values, mostly for tests and the CLI.
type Overrides struct {
	Deployment          string
	PositionLimit       uint64
	NativeRepayPadding  uint64
	RelocationThreshold uint64
	ComputeUnitLimit    uint64
	ComputeUnitPrice    uint64

	// Nil leaves the relocation default in place.
	RelocateTokenAccountWithHostFeeOnly *bool
	RelocateCollateralAccountNativeOnly *bool
}

// WithOverrides returns configuration backed by memory. Zero values fall
// back to defaults.
func WithOverrides(overrides *Overrides) ConfigProvider {
	return func() *conf {
		return &conf{
			deployment:                          wrapper.NewStringConfig(memoryOrNoop(overrides.Deployment), defaultDeployment),
			positionLimit:                       wrapper.NewUint64Config(memoryOrNoop(overrides.PositionLimit), defaultPositionLimit),
			nativeRepayPadding:                  wrapper.NewUint64Config(memoryOrNoop(overrides.NativeRepayPadding), defaultNativeRepayPadding),
			relocationThreshold:                 wrapper.NewUint64Config(memoryOrNoop(overrides.RelocationThreshold), defaultRelocationThreshold),
			relocateTokenAccountWithHostFeeOnly: wrapper.NewBoolConfig(memoryOrNoop(overrides.RelocateTokenAccountWithHostFeeOnly), defaultRelocateTokenAccountWithHostFeeOnly),
			relocateCollateralAccountNativeOnly: wrapper.NewBoolConfig(memoryOrNoop(overrides.RelocateCollateralAccountNativeOnly), defaultRelocateCollateralAccountNativeOnly),
			computeUnitLimit:                    wrapper.NewUint64Config(memoryOrNoop(overrides.ComputeUnitLimit), defaultComputeUnitLimit),
			computeUnitPrice:                    wrapper.NewUint64Config(memoryOrNoop(overrides.ComputeUnitPrice), defaultComputeUnitPrice),
		}
	}
}

func memoryOrNoop(value interface{}) config.Config {
	switch typed := value.(type) {
	case string:
		if len(typed) == 0 {
			return config.NoopConfig
		}
	case uint64:
		if typed == 0 {
			return config.NoopConfig
		}
	case *bool:
		if typed == nil {
			return config.NoopConfig
		}
		return memory.NewConfig(*typed)
	}
	return memory.NewConfig(value)
}
