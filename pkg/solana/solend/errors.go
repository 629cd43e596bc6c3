package solend

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/pkg/errors"

	"github.com/code-payments/solend-client/pkg/solana"
)

// LendingError is a custom error code returned by the lending program.
type LendingError uint32

const (
	LendingErrorInstructionUnpack LendingError = iota
	LendingErrorAlreadyInitialized
	LendingErrorNotRentExempt
	LendingErrorInvalidMarketAuthority
	LendingErrorInvalidMarketOwner
	LendingErrorInvalidAccountOwner
	LendingErrorInvalidTokenOwner
	LendingErrorInvalidTokenAccount
	LendingErrorInvalidTokenMint
	LendingErrorInvalidTokenProgram
	LendingErrorInvalidAmount
	LendingErrorInvalidConfig
	LendingErrorInvalidSigner
	LendingErrorInvalidAccountInput
	LendingErrorMathOverflow
	LendingErrorTokenInitializeMintFailed
	LendingErrorTokenInitializeAccountFailed
	LendingErrorTokenTransferFailed
	LendingErrorTokenMintToFailed
	LendingErrorTokenBurnFailed
	LendingErrorInsufficientLiquidity
	LendingErrorReserveCollateralDisabled
	LendingErrorReserveStale
	LendingErrorWithdrawTooSmall
	LendingErrorWithdrawTooLarge
	LendingErrorBorrowTooSmall
	LendingErrorBorrowTooLarge
	LendingErrorRepayTooSmall
	LendingErrorLiquidationTooSmall
	LendingErrorObligationHealthy
	LendingErrorObligationStale
	LendingErrorObligationReserveLimit
	LendingErrorInvalidObligationOwner
	LendingErrorObligationDepositsEmpty
	LendingErrorObligationBorrowsEmpty
	LendingErrorObligationDepositsZero
	LendingErrorObligationBorrowsZero
	LendingErrorInvalidObligationCollateral
	LendingErrorInvalidObligationLiquidity
	LendingErrorObligationCollateralEmpty
	LendingErrorObligationLiquidityEmpty
	LendingErrorNegativeInterestRate
	LendingErrorInvalidOracleConfig
)

var lendingErrorMessages = map[LendingError]string{
	LendingErrorInstructionUnpack:            "failed to unpack instruction data",
	LendingErrorAlreadyInitialized:           "account is already initialized",
	LendingErrorNotRentExempt:                "lamport balance below rent-exempt threshold",
	LendingErrorInvalidMarketAuthority:       "market authority is invalid",
	LendingErrorInvalidMarketOwner:           "market owner is invalid",
	LendingErrorInvalidAccountOwner:          "input account owner is not the program address",
	LendingErrorInvalidTokenOwner:            "input token account is not owned by the correct token program id",
	LendingErrorInvalidTokenAccount:          "input token account is not valid",
	LendingErrorInvalidTokenMint:             "input token mint account is not valid",
	LendingErrorInvalidTokenProgram:          "input token program account is not valid",
	LendingErrorInvalidAmount:                "input amount is invalid",
	LendingErrorInvalidConfig:                "input config value is invalid",
	LendingErrorInvalidSigner:                "input account must be a signer",
	LendingErrorInvalidAccountInput:          "invalid account input",
	LendingErrorMathOverflow:                 "math operation overflow",
	LendingErrorTokenInitializeMintFailed:    "token initialize mint failed",
	LendingErrorTokenInitializeAccountFailed: "token initialize account failed",
	LendingErrorTokenTransferFailed:          "token transfer failed",
	LendingErrorTokenMintToFailed:            "token mint to failed",
	LendingErrorTokenBurnFailed:              "token burn failed",
	LendingErrorInsufficientLiquidity:        "insufficient liquidity available",
	LendingErrorReserveCollateralDisabled:    "input reserve has collateral disabled",
	LendingErrorReserveStale:                 "reserve state needs to be refreshed",
	LendingErrorWithdrawTooSmall:             "withdraw amount too small",
	LendingErrorWithdrawTooLarge:             "withdraw amount too large",
	LendingErrorBorrowTooSmall:               "borrow amount too small to receive liquidity after fees",
	LendingErrorBorrowTooLarge:               "borrow amount too large for deposited collateral",
	LendingErrorRepayTooSmall:                "repay amount too small to transfer liquidity",
	LendingErrorLiquidationTooSmall:          "liquidation amount too small to receive collateral",
	LendingErrorObligationHealthy:            "cannot liquidate healthy obligations",
	LendingErrorObligationStale:              "obligation state needs to be refreshed",
	LendingErrorObligationReserveLimit:       "obligation reserve limit exceeded",
	LendingErrorInvalidObligationOwner:       "obligation owner is invalid",
	LendingErrorObligationDepositsEmpty:      "obligation deposits are empty",
	LendingErrorObligationBorrowsEmpty:       "obligation borrows are empty",
	LendingErrorObligationDepositsZero:       "obligation deposits have zero value",
	LendingErrorObligationBorrowsZero:        "obligation borrows have zero value",
	LendingErrorInvalidObligationCollateral:  "invalid obligation collateral",
	LendingErrorInvalidObligationLiquidity:   "invalid obligation liquidity",
	LendingErrorObligationCollateralEmpty:    "obligation collateral is empty",
	LendingErrorObligationLiquidityEmpty:     "obligation liquidity is empty",
	LendingErrorNegativeInterestRate:         "interest rate is negative",
	LendingErrorInvalidOracleConfig:          "input oracle config is invalid",
}

func (e LendingError) Error() string {
	if msg, ok := lendingErrorMessages[e]; ok {
		return fmt.Sprintf("lending error %d: %s", uint32(e), msg)
	}
	return fmt.Sprintf("lending error %d", uint32(e))
}

// GetLendingError returns the lending program error behind a failed
// submission of txn. It only reports custom errors raised by an instruction
// that targets program.
func GetLendingError(txn solana.Transaction, program ed25519.PublicKey, err error) (LendingError, bool) {
	if err == nil {
		return 0, false
	}

	var instructionErr *solana.InstructionError
	switch cause := errors.Cause(err).(type) {
	case *solana.InstructionError:
		instructionErr = cause
	case *solana.TransactionError:
		instructionErr = cause.InstructionError()
	}
	if instructionErr == nil {
		return 0, false
	}

	custom := instructionErr.CustomError()
	if custom == nil || *custom < 0 {
		return 0, false
	}

	index := instructionErr.Index
	if index < 0 || index >= len(txn.Message.Instructions) {
		return 0, false
	}
	programIndex := int(txn.Message.Instructions[index].ProgramIndex)
	if programIndex >= len(txn.Message.Accounts) {
		return 0, false
	}
	if !bytes.Equal(txn.Message.Accounts[programIndex], programOrDefault(program)) {
		return 0, false
	}

	return LendingError(*custom), true
}
