package solana

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// Environment is a public cluster RPC endpoint.
type Environment string

const (
	EnvironmentDev   Environment = "https://api.devnet.solana.com"
	EnvironmentTest  Environment = "https://api.testnet.solana.com"
	EnvironmentProd  Environment = "https://api.mainnet-beta.solana.com"
	EnvironmentLocal Environment = "http://127.0.0.1:8899"
)

var environmentMonikers = map[string]Environment{
	"mainnet":      EnvironmentProd,
	"mainnet-beta": EnvironmentProd,
	"devnet":       EnvironmentDev,
	"testnet":      EnvironmentTest,
	"localnet":     EnvironmentLocal,
	"localhost":    EnvironmentLocal,
}

// ResolveEndpoint maps a cluster moniker, such as "devnet", to its public
// RPC endpoint. Anything else must be an absolute http(s) URL and is
// returned unchanged.
func ResolveEndpoint(value string) (string, error) {
	value = strings.TrimSpace(value)
	if env, ok := environmentMonikers[strings.ToLower(value)]; ok {
		return string(env), nil
	}

	u, err := url.Parse(value)
	if err != nil {
		return "", errors.Wrapf(err, "invalid rpc endpoint %q", value)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", errors.Errorf("invalid rpc endpoint %q: expected a cluster moniker or http(s) url", value)
	}
	return value, nil
}
