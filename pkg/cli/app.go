package cli

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/ybbus/jsonrpc"

	"github.com/code-payments/solend-client/pkg/metrics"
	"github.com/code-payments/solend-client/pkg/rate"
	"github.com/code-payments/solend-client/pkg/solana"
	"github.com/code-payments/solend-client/pkg/solend/action"
	solendconfig "github.com/code-payments/solend-client/pkg/solend/config"
)

// app holds the clients shared by commands for the lifetime of a single
// invocation.
type app struct {
	log *logrus.Entry

	config          BaseConfig
	metricsProvider *newrelic.Application

	solana  solana.Client
	configs solendconfig.Client
	planner *action.Planner
}

func loadConfig(configPath string) (BaseConfig, error) {
	// viper.ReadInConfig only returns ConfigFileNotFoundError if it has to search
	// for a default config file because one hasn't been explicitly set. That is,
	// if we explicitly set a config file, and it does not exist, viper will not
	// return a ConfigFileNotFoundError, so we do it ourselves.
	if len(configPath) > 0 {
		if _, err := os.Stat(configPath); err == nil {
			viper.SetConfigFile(configPath)
		} else if !os.IsNotExist(err) {
			return BaseConfig{}, errors.Wrap(err, "failed to check if config exists")
		}
	}

	err := viper.ReadInConfig()
	_, isConfigNotFound := err.(viper.ConfigFileNotFoundError)
	if err != nil && !isConfigNotFound {
		return BaseConfig{}, errors.Wrap(err, "failed to load config")
	}

	config := defaultConfig
	if err := viper.Unmarshal(&config); err != nil {
		return BaseConfig{}, errors.Wrap(err, "failed to unmarshal config")
	}

	if len(config.AppName) == 0 {
		return BaseConfig{}, errors.New("must specify an application name")
	}
	if len(config.RPCEndpoint) == 0 {
		return BaseConfig{}, errors.New("must specify an rpc endpoint")
	}
	config.RPCEndpoint, err = solana.ResolveEndpoint(config.RPCEndpoint)
	if err != nil {
		return BaseConfig{}, err
	}
	if config.RPCRateLimit < 0 {
		return BaseConfig{}, errors.New("rpc rate limit cannot be negative")
	}

	return config, nil
}

func newApp(configPath string) (*app, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	var metricsProvider *newrelic.Application
	if len(config.NewRelicLicenseKey) > 0 {
		nr, err := newrelic.NewApplication(
			newrelic.ConfigFromEnvironment(),
			newrelic.ConfigAppName(config.AppName),
			newrelic.ConfigLicense(config.NewRelicLicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			return nil, errors.Wrap(err, "error connecting to new relic")
		}

		metricsProvider = nr
	}

	configureLogger(config, metricsProvider)

	httpClient := &http.Client{
		Timeout: config.HTTPTimeout,
	}

	var limiter rate.Limiter = rate.NoLimiter{}
	if config.RPCRateLimit > 0 {
		limiter = rate.NewKeyedLimiter(config.RPCRateLimit, 0)
	}

	configOpts := []solendconfig.Option{
		solendconfig.WithEndpoint(config.ConfigEndpoint),
		solendconfig.WithHTTPClient(httpClient),
		solendconfig.WithRetryStrategies(solendconfig.DefaultRetryStrategies()...),
	}
	if config.ConfigCacheTTL > 0 {
		configOpts = append(configOpts, solendconfig.WithCache(config.ConfigCacheTTL))
	}

	a := &app{
		log:             logrus.StandardLogger().WithField("type", "cli"),
		config:          config,
		metricsProvider: metricsProvider,
		solana: solana.New(
			config.RPCEndpoint,
			solana.WithRPCOptions(config.RPCEndpoint, &jsonrpc.RPCClientOpts{HTTPClient: httpClient}),
			solana.WithRetryStrategies(solana.DefaultRetryStrategies()...),
			solana.WithRateLimiter(limiter),
		),
		configs: solendconfig.NewClient(configOpts...),
	}

	a.planner = action.NewPlanner(a.solana, a.configs, action.WithOverrides(&action.Overrides{
		Deployment:          config.Deployment,
		PositionLimit:       config.PositionLimit,
		NativeRepayPadding:  config.NativeRepayPadding,
		RelocationThreshold: config.RelocationThreshold,
		ComputeUnitLimit:    config.ComputeUnitLimit,
		ComputeUnitPrice:    config.ComputeUnitPrice,
	}))

	return a, nil
}

// context returns a context carrying the metrics provider, and a function to
// end the command's transaction.
func (a *app) context(parent context.Context, name string) (context.Context, func()) {
	ctx := metrics.NewContext(parent, a.metricsProvider)
	return metrics.StartTransaction(ctx, name)
}

// getConfig fetches the deployment configuration the planner resolves
// requests against.
func (a *app) getConfig(ctx context.Context) (*solendconfig.Config, error) {
	deployment := a.config.Deployment
	if len(deployment) == 0 {
		deployment = solendconfig.DeploymentProduction
	}
	return a.configs.GetConfig(ctx, deployment)
}

func (a *app) Stop() {
	if a.metricsProvider != nil {
		a.metricsProvider.Shutdown(5 * time.Second)
	}
}

func configureLogger(config BaseConfig, metricsProvider *newrelic.Application) {
	if metricsProvider != nil {
		logrus.SetFormatter(metrics.NewLogFormatter(metricsProvider, &logrus.JSONFormatter{}))
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	// Command output goes to stdout
	logrus.SetOutput(os.Stderr)
}
