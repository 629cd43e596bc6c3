package solend

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

var (
	ErrUnknownInstruction        = errors.New("unknown instruction type")
	ErrMalformedInstructionData  = errors.New("malformed instruction data")
	ErrAccountCount              = errors.New("unexpected number of instruction accounts")
	ErrMissingField              = errors.New("missing instruction field")
	ErrValueOutOfRange           = errors.New("value out of range")
	ErrMalformedAccountData      = errors.New("malformed account data")
	ErrUninitializedAccount      = errors.New("account is not initialized")
	ErrZeroCollateralSupply      = errors.New("reserve has zero collateral supply")
	ErrInvalidProgram            = errors.New("invalid program id")
	ErrUnexpectedAccountTemplate = errors.New("instruction accounts do not match template")
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("So1endDq2YkqhipRh3WViPa8hdiSpxWy6z3Z6tMCpAo")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)

	DEVNET_PROGRAM_ID = ed25519.PublicKey(mustBase58Decode("ALend7Ketfx5bxh6ghsCDXAoDrhvEmsXT3cynB6aPLgx"))
)

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
