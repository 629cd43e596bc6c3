package token

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/solend-client/pkg/solana"
)

var (
	// ErrAccountNotFound indicates there is no account for the given address.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidTokenAccount indicates an account exists at the address but
	// is not a usable token account of the expected mint. The wrapped message
	// names the failed check.
	ErrInvalidTokenAccount = errors.New("invalid token account")
)

// Client reads token accounts of a single mint.
type Client struct {
	sc         solana.Client
	mint       ed25519.PublicKey
	commitment solana.Commitment
}

// NewClient returns a Client for mint that reads at the confirmed
// commitment.
func NewClient(sc solana.Client, mint ed25519.PublicKey) *Client {
	return &Client{
		sc:         sc,
		mint:       mint,
		commitment: solana.CommitmentConfirmed,
	}
}

// WithCommitment returns a copy of the client reading at commitment.
func (c *Client) WithCommitment(commitment solana.Commitment) *Client {
	copied := *c
	copied.commitment = commitment
	return &copied
}

func (c *Client) Mint() ed25519.PublicKey {
	return c.mint
}

// GetAccount returns the token account at address.
//
// ErrInvalidTokenAccount is returned, wrapped, when the account is not owned
// by the token program, is uninitialized, or holds a different mint.
func (c *Client) GetAccount(address ed25519.PublicKey) (*Account, error) {
	info, err := c.sc.GetAccountInfo(address, c.commitment)
	if err == solana.ErrNoAccountInfo {
		return nil, ErrAccountNotFound
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to get account info for %s", base58.Encode(address))
	}

	if !bytes.Equal(info.Owner, ProgramKey) {
		return nil, errors.Wrapf(ErrInvalidTokenAccount, "owned by %s", base58.Encode(info.Owner))
	}

	account, err := ParseAccount(info.Data)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidTokenAccount, err.Error())
	}
	if account.State == AccountStateUninitialized {
		return nil, errors.Wrap(ErrInvalidTokenAccount, "account is uninitialized")
	}
	if !bytes.Equal(account.Mint, c.mint) {
		return nil, errors.Wrapf(ErrInvalidTokenAccount, "mint is %s", base58.Encode(account.Mint))
	}

	return account, nil
}

// GetAssociatedAccount returns wallet's associated token account address
// along with its account, which is nil when the account does not exist yet.
func (c *Client) GetAssociatedAccount(wallet ed25519.PublicKey) (ed25519.PublicKey, *Account, error) {
	address, err := GetAssociatedAccount(wallet, c.mint)
	if err != nil {
		return nil, nil, err
	}

	account, err := c.GetAccount(address)
	if err == ErrAccountNotFound {
		return address, nil, nil
	} else if err != nil {
		return address, nil, err
	}

	if !bytes.Equal(account.Owner, wallet) {
		return address, nil, errors.Wrapf(ErrInvalidTokenAccount, "owner is %s", base58.Encode(account.Owner))
	}
	return address, account, nil
}
