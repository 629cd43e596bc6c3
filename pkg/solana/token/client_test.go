package token

import (
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/solend-client/pkg/solana"
)

type accountInfoClient struct {
	solana.Client

	accounts    map[string]solana.AccountInfo
	commitments []solana.Commitment
	err         error
}

func (c *accountInfoClient) GetAccountInfo(account ed25519.PublicKey, commitment solana.Commitment) (solana.AccountInfo, error) {
	c.commitments = append(c.commitments, commitment)
	if c.err != nil {
		return solana.AccountInfo{}, c.err
	}

	info, ok := c.accounts[string(account)]
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}
	return info, nil
}

func TestClient_GetAccount(t *testing.T) {
	keys := generateKeys(t, 6)
	mint, owner, valid, wrongMint, wrongOwner, uninitialized := keys[0], keys[1], keys[2], keys[3], keys[4], keys[5]

	account := Account{
		Mint:   mint,
		Owner:  owner,
		Amount: 1000,
		State:  AccountStateInitialized,
	}
	otherMint := account
	otherMint.Mint = owner
	empty := account
	empty.State = AccountStateUninitialized

	sc := &accountInfoClient{
		accounts: map[string]solana.AccountInfo{
			string(valid):         {Owner: ProgramKey, Data: account.Marshal()},
			string(wrongMint):     {Owner: ProgramKey, Data: otherMint.Marshal()},
			string(wrongOwner):    {Owner: owner, Data: account.Marshal()},
			string(uninitialized): {Owner: ProgramKey, Data: empty.Marshal()},
		},
	}

	c := NewClient(sc, mint)
	assert.Equal(t, mint, c.Mint())

	actual, err := c.GetAccount(valid)
	require.NoError(t, err)
	assert.EqualValues(t, 1000, actual.Amount)
	assert.Equal(t, owner, actual.Owner)

	for _, address := range []ed25519.PublicKey{wrongMint, wrongOwner, uninitialized} {
		_, err = c.GetAccount(address)
		assert.True(t, errors.Is(err, ErrInvalidTokenAccount))
	}

	_, err = c.GetAccount(mint)
	assert.Equal(t, ErrAccountNotFound, err)

	for _, commitment := range sc.commitments {
		assert.Equal(t, solana.CommitmentConfirmed, commitment)
	}

	sc.commitments = nil
	_, err = c.WithCommitment(solana.CommitmentProcessed).GetAccount(valid)
	require.NoError(t, err)
	assert.Equal(t, []solana.Commitment{solana.CommitmentProcessed}, sc.commitments)

	sc.err = solana.ErrServiceError
	_, err = c.GetAccount(valid)
	assert.Equal(t, solana.ErrServiceError, errors.Cause(err))
}

func TestClient_GetAssociatedAccount(t *testing.T) {
	keys := generateKeys(t, 3)
	mint, wallet, other := keys[0], keys[1], keys[2]

	address, err := GetAssociatedAccount(wallet, mint)
	require.NoError(t, err)

	sc := &accountInfoClient{accounts: map[string]solana.AccountInfo{}}
	c := NewClient(sc, mint)

	actualAddress, account, err := c.GetAssociatedAccount(wallet)
	require.NoError(t, err)
	assert.Equal(t, address, actualAddress)
	assert.Nil(t, account)

	stored := Account{Mint: mint, Owner: wallet, Amount: 5, State: AccountStateInitialized}
	sc.accounts[string(address)] = solana.AccountInfo{Owner: ProgramKey, Data: stored.Marshal()}

	_, account, err = c.GetAssociatedAccount(wallet)
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.EqualValues(t, 5, account.Amount)

	stored.Owner = other
	sc.accounts[string(address)] = solana.AccountInfo{Owner: ProgramKey, Data: stored.Marshal()}

	_, _, err = c.GetAssociatedAccount(wallet)
	assert.True(t, errors.Is(err, ErrInvalidTokenAccount))
}
