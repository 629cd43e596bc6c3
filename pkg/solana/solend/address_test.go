package solend

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/solend-client/pkg/solana"
)

func TestGetObligationAddress(t *testing.T) {
	owner := mustKey(t, "76pWmCRuVqHKsPSUph5X7xQ6bZho3apXXEdSNvr11Yvx")
	market := mustKey(t, "4UpD2fh7xH3VP9QQaXtsS1YY3bxzWhtfpks7FatyKvdY")

	seed := ObligationSeed(market)
	assert.Equal(t, "4UpD2fh7xH3VP9QQaXtsS1YY3bxzWhtf", seed)

	expected, err := solana.CreateWithSeed(owner, seed, PROGRAM_ID)
	require.NoError(t, err)

	actual, err := GetObligationAddress(&GetObligationAddressArgs{
		Owner:         owner,
		LendingMarket: market,
	})
	require.NoError(t, err)
	assert.Equal(t, expected, actual)

	devnet, err := GetObligationAddress(&GetObligationAddressArgs{
		Program:       DEVNET_PROGRAM_ID,
		Owner:         owner,
		LendingMarket: market,
	})
	require.NoError(t, err)
	assert.NotEqual(t, base58.Encode(actual), base58.Encode(devnet))
}

func TestGetLendingMarketAuthorityAddress(t *testing.T) {
	market := mustKey(t, "4UpD2fh7xH3VP9QQaXtsS1YY3bxzWhtfpks7FatyKvdY")

	authority, _, err := GetLendingMarketAuthorityAddress(&GetLendingMarketAuthorityAddressArgs{
		LendingMarket: market,
	})
	require.NoError(t, err)

	expected, err := solana.FindProgramAddress(PROGRAM_ID, market)
	require.NoError(t, err)
	assert.Equal(t, expected, authority)
}
