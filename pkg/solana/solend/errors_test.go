package solend

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/solend-client/pkg/solana"
	"github.com/code-payments/solend-client/pkg/solana/system"
)

func TestLendingError_Error(t *testing.T) {
	assert.Equal(t, "lending error 22: reserve state needs to be refreshed", LendingErrorReserveStale.Error())
	assert.Equal(t, "lending error 30: obligation state needs to be refreshed", LendingErrorObligationStale.Error())
	assert.Equal(t, "lending error 9999", LendingError(9999).Error())
}

func TestGetLendingError(t *testing.T) {
	keys := generateKeys(t, 5)
	payer := keys[0]

	txn := solana.NewTransaction(
		payer,
		system.Transfer(payer, keys[1], 10),
		NewRefreshReserveInstruction(&RefreshReserveInstructionAccounts{
			Reserve:         keys[2],
			PythOracle:      keys[3],
			SwitchboardFeed: keys[4],
		}),
	)

	custom := func(index, code int) error {
		return &solana.InstructionError{Index: index, Err: solana.CustomError(code)}
	}

	lendingErr, ok := GetLendingError(txn, nil, custom(1, int(LendingErrorBorrowTooLarge)))
	require.True(t, ok)
	assert.Equal(t, LendingErrorBorrowTooLarge, lendingErr)

	// Wrapped errors resolve through their cause
	lendingErr, ok = GetLendingError(txn, PROGRAM_ID, errors.Wrap(custom(1, 22), "sendTransaction() rejected"))
	require.True(t, ok)
	assert.Equal(t, LendingErrorReserveStale, lendingErr)

	txErr, err := solana.TransactionErrorFromInstructionError(&solana.InstructionError{Index: 1, Err: solana.CustomError(30)})
	require.NoError(t, err)
	lendingErr, ok = GetLendingError(txn, PROGRAM_ID, txErr)
	require.True(t, ok)
	assert.Equal(t, LendingErrorObligationStale, lendingErr)

	for _, tc := range []error{
		nil,
		errors.New("boom"),
		solana.ErrServiceError,
		custom(0, 1),
		custom(5, 1),
		&solana.InstructionError{Index: 1, Err: errors.New(string(solana.InstructionErrorInvalidArgument))},
		solana.NewTransactionError(solana.TransactionErrorBlockhashNotFound),
	} {
		_, ok := GetLendingError(txn, PROGRAM_ID, tc)
		assert.False(t, ok, "%v", tc)
	}

	_, ok = GetLendingError(txn, DEVNET_PROGRAM_ID, custom(1, 22))
	assert.False(t, ok)
}
