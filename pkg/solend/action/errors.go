package action

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidAction         = errors.New("invalid action")
	ErrInvalidRequest        = errors.New("invalid request")
	ErrConfigLookup          = errors.New("config lookup failed")
	ErrAccountFetch          = errors.New("failed to fetch remote state")
	ErrPositionLimitExceeded = errors.New("obligation already has max number of positions")
	ErrBorrowNotFound        = errors.New("obligation has no borrow to repay")
	ErrMarketAuthority       = errors.New("market authority does not match the derived address")
)

// PositionLimitError is returned when an action would leave an obligation
// referencing more distinct reserves than allowed. It matches
// ErrPositionLimitExceeded.
type PositionLimitError struct {
	Limit int
	Count int
}

func (e *PositionLimitError) Error() string {
	return fmt.Sprintf("%s: %d > %d", ErrPositionLimitExceeded.Error(), e.Count, e.Limit)
}

func (e *PositionLimitError) Is(target error) bool {
	return target == ErrPositionLimitExceeded
}

// ConfigLookupError wraps a failed market, reserve, asset or oracle lookup.
// It matches ErrConfigLookup as well as the wrapped cause.
type ConfigLookupError struct {
	Err error
}

func newConfigLookupError(err error, format string, args ...interface{}) error {
	return &ConfigLookupError{Err: errors.Wrapf(err, format, args...)}
}

func (e *ConfigLookupError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConfigLookup.Error(), e.Err.Error())
}

func (e *ConfigLookupError) Unwrap() error {
	return e.Err
}

func (e *ConfigLookupError) Is(target error) bool {
	return target == ErrConfigLookup
}

// AccountFetchError wraps a failed network read. It matches ErrAccountFetch
// as well as the wrapped cause, so callers may retry on it.
type AccountFetchError struct {
	Err error
}

func newAccountFetchError(err error, format string, args ...interface{}) error {
	return &AccountFetchError{Err: errors.Wrapf(err, format, args...)}
}

func (e *AccountFetchError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAccountFetch.Error(), e.Err.Error())
}

func (e *AccountFetchError) Unwrap() error {
	return e.Err
}

func (e *AccountFetchError) Is(target error) bool {
	return target == ErrAccountFetch
}
