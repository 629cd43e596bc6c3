package config

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

var (
	ErrMarketNotFound  = errors.New("lending market not found")
	ErrReserveNotFound = errors.New("reserve not found")
	ErrAssetNotFound   = errors.New("asset not found")
	ErrOracleNotFound  = errors.New("oracle not found")
	ErrInvalidAddress  = errors.New("invalid address")
)

// Config is the deployment description served by the configuration service.
type Config struct {
	ProgramID string   `json:"programID"`
	Assets    []Asset  `json:"assets"`
	Markets   []Market `json:"markets"`
	Oracles   Oracles  `json:"oracles"`
}

type Asset struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	MintAddress string `json:"mintAddress"`
}

type Market struct {
	Name             string    `json:"name"`
	IsPrimary        bool      `json:"isPrimary"`
	Description      string    `json:"description,omitempty"`
	Creator          string    `json:"creator,omitempty"`
	Address          string    `json:"address"`
	AuthorityAddress string    `json:"authorityAddress"`
	Reserves         []Reserve `json:"reserves"`
}

type Reserve struct {
	Asset                       string `json:"asset"`
	Address                     string `json:"address"`
	CollateralMintAddress       string `json:"collateralMintAddress"`
	CollateralSupplyAddress     string `json:"collateralSupplyAddress"`
	LiquidityAddress            string `json:"liquidityAddress"`
	LiquidityFeeReceiverAddress string `json:"liquidityFeeReceiverAddress"`
	UserSupplyCap               uint64 `json:"userSupplyCap,omitempty"`
}

type Oracles struct {
	PythProgramID        string        `json:"pythProgramID"`
	SwitchboardProgramID string        `json:"switchboardProgramID"`
	Assets               []OracleAsset `json:"assets"`
}

type OracleAsset struct {
	Asset                  string `json:"asset"`
	PriceAddress           string `json:"priceAddress"`
	SwitchboardFeedAddress string `json:"switchboardFeedAddress"`
}

// ProgramKey returns the lending program of the deployment.
func (c *Config) ProgramKey() (ed25519.PublicKey, error) {
	return ParseKey(c.ProgramID)
}

// FindMarket returns the market with the given address. When address is
// empty or unknown, the primary market is used, falling back to the first
// market.
func (c *Config) FindMarket(address string) (*Market, error) {
	if len(c.Markets) == 0 {
		return nil, ErrMarketNotFound
	}

	if len(address) > 0 {
		for i := range c.Markets {
			if c.Markets[i].Address == address {
				return &c.Markets[i], nil
			}
		}
	}

	for i := range c.Markets {
		if c.Markets[i].IsPrimary {
			return &c.Markets[i], nil
		}
	}

	return &c.Markets[0], nil
}

// FindAsset returns the asset with the given symbol.
func (c *Config) FindAsset(symbol string) (*Asset, error) {
	for i := range c.Assets {
		if c.Assets[i].Symbol == symbol {
			return &c.Assets[i], nil
		}
	}
	return nil, errors.Wrapf(ErrAssetNotFound, "symbol %s", symbol)
}

// FindOracle returns the price feeds for the given asset symbol.
func (c *Config) FindOracle(symbol string) (*OracleAsset, error) {
	for i := range c.Oracles.Assets {
		if c.Oracles.Assets[i].Asset == symbol {
			return &c.Oracles.Assets[i], nil
		}
	}
	return nil, errors.Wrapf(ErrOracleNotFound, "asset %s", symbol)
}

// FindReserve returns the market's reserve for the given asset symbol.
func (m *Market) FindReserve(symbol string) (*Reserve, error) {
	for i := range m.Reserves {
		if m.Reserves[i].Asset == symbol {
			return &m.Reserves[i], nil
		}
	}
	return nil, errors.Wrapf(ErrReserveNotFound, "asset %s in market %s", symbol, m.Address)
}

// FindReserveByAddress returns the market's reserve at the given address.
func (m *Market) FindReserveByAddress(address string) (*Reserve, error) {
	for i := range m.Reserves {
		if m.Reserves[i].Address == address {
			return &m.Reserves[i], nil
		}
	}
	return nil, errors.Wrapf(ErrReserveNotFound, "address %s in market %s", address, m.Address)
}

// ParseKey decodes a base58 encoded account address.
func ParseKey(address string) (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(address)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidAddress, "%q: %v", address, err)
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, errors.Wrapf(ErrInvalidAddress, "%q: expected %d bytes, got %d", address, ed25519.PublicKeySize, len(decoded))
	}
	return decoded, nil
}
