package solend

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/solend-client/pkg/solana"
)

// ObligationSeedLength is the number of base58 characters of the lending
// market address used as the obligation seed.
const ObligationSeedLength = 32

type GetObligationAddressArgs struct {
	// Program defaults to PROGRAM_ID when nil.
	Program       ed25519.PublicKey
	Owner         ed25519.PublicKey
	LendingMarket ed25519.PublicKey
}

// ObligationSeed returns the seed for an owner's obligation in market.
func ObligationSeed(market ed25519.PublicKey) string {
	encoded := base58.Encode(market)
	if len(encoded) > ObligationSeedLength {
		return encoded[:ObligationSeedLength]
	}
	return encoded
}

// GetObligationAddress derives the owner's obligation account in a lending
// market. One obligation exists per (owner, market, program).
func GetObligationAddress(args *GetObligationAddressArgs) (ed25519.PublicKey, error) {
	address, err := solana.CreateWithSeed(args.Owner, ObligationSeed(args.LendingMarket), programOrDefault(args.Program))
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive obligation address")
	}
	return address, nil
}

type GetLendingMarketAuthorityAddressArgs struct {
	// Program defaults to PROGRAM_ID when nil.
	Program       ed25519.PublicKey
	LendingMarket ed25519.PublicKey
}

func GetLendingMarketAuthorityAddress(args *GetLendingMarketAuthorityAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		programOrDefault(args.Program),
		args.LendingMarket,
	)
}
