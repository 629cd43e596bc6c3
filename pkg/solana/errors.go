package solana

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/ybbus/jsonrpc"
)

// TransactionErrorKey is the name of a transaction level error as reported
// by the RPC.
//
// Source: https://github.com/solana-labs/solana/blob/fc2bf2d3b669d1c6655ae48b0a05f470938f3676/sdk/src/transaction/mod.rs#L37
type TransactionErrorKey string

const (
	TransactionErrorInternal                 TransactionErrorKey = "Internal"
	TransactionErrorAccountInUse             TransactionErrorKey = "AccountInUse"
	TransactionErrorAccountNotFound          TransactionErrorKey = "AccountNotFound"
	TransactionErrorInsufficientFundsForFee  TransactionErrorKey = "InsufficientFundsForFee"
	TransactionErrorDuplicateSignature       TransactionErrorKey = "DuplicateSignature"
	TransactionErrorBlockhashNotFound        TransactionErrorKey = "BlockhashNotFound"
	TransactionErrorInstructionError         TransactionErrorKey = "InstructionError"
	TransactionErrorMissingSignatureForFee   TransactionErrorKey = "MissingSignatureForFee"
	TransactionErrorSignatureFailure         TransactionErrorKey = "SignatureFailure"
	TransactionErrorSanitizeFailure          TransactionErrorKey = "SanitizeFailure"
	TransactionErrorTooManyAccountLocks      TransactionErrorKey = "TooManyAccountLocks"
	TransactionErrorInsufficientFundsForRent TransactionErrorKey = "InsufficientFundsForRent"
)

// InstructionErrorKey is the name of an instruction level error.
//
// Source: https://github.com/solana-labs/solana/blob/4e2754341514cd181ae3f373cc2548bd22e918b8/sdk/program/src/instruction.rs#L23
type InstructionErrorKey string

const (
	InstructionErrorGenericError              InstructionErrorKey = "GenericError"
	InstructionErrorInvalidArgument           InstructionErrorKey = "InvalidArgument"
	InstructionErrorInvalidInstructionData    InstructionErrorKey = "InvalidInstructionData"
	InstructionErrorInvalidAccountData        InstructionErrorKey = "InvalidAccountData"
	InstructionErrorInsufficientFunds         InstructionErrorKey = "InsufficientFunds"
	InstructionErrorMissingRequiredSignature  InstructionErrorKey = "MissingRequiredSignature"
	InstructionErrorAccountAlreadyInitialized InstructionErrorKey = "AccountAlreadyInitialized"
	InstructionErrorUninitializedAccount      InstructionErrorKey = "UninitializedAccount"
	InstructionErrorNotEnoughAccountKeys      InstructionErrorKey = "NotEnoughAccountKeys"
	InstructionErrorCustom                    InstructionErrorKey = "Custom"
)

// CustomError is a program specific error code.
type CustomError int

func (c CustomError) Error() string {
	return fmt.Sprintf("custom program error: 0x%x", int(c))
}

// InstructionError is the failure of a single instruction within a
// transaction.
type InstructionError struct {
	Index int
	Err   error
}

func (i InstructionError) Error() string {
	return fmt.Sprintf("instruction %d failed: %v", i.Index, i.Err)
}

func (i InstructionError) ErrorKey() InstructionErrorKey {
	switch e := i.Err.(type) {
	case nil:
		return ""
	case CustomError:
		return InstructionErrorCustom
	default:
		return InstructionErrorKey(e.Error())
	}
}

// CustomError returns the program error code, or nil if the instruction
// failed for a runtime reason.
func (i InstructionError) CustomError() *CustomError {
	if ce, ok := i.Err.(CustomError); ok {
		return &ce
	}
	return nil
}

// raw returns the value in the shape the RPC reports it, an [index, error]
// tuple.
func (i InstructionError) raw() []interface{} {
	if ce, ok := i.Err.(CustomError); ok {
		return []interface{}{i.Index, map[string]interface{}{string(InstructionErrorCustom): int(ce)}}
	}
	return []interface{}{i.Index, i.Err.Error()}
}

// TransactionError is a failed transaction result, optionally caused by an
// instruction.
type TransactionError struct {
	key              TransactionErrorKey
	instructionError *InstructionError
	raw              interface{}
}

func NewTransactionError(key TransactionErrorKey) *TransactionError {
	return &TransactionError{key: key, raw: string(key)}
}

func TransactionErrorFromInstructionError(err *InstructionError) (*TransactionError, error) {
	if err == nil || err.Err == nil {
		return nil, errors.New("instruction error is empty")
	}

	return &TransactionError{
		key:              TransactionErrorInstructionError,
		instructionError: err,
		raw: map[string]interface{}{
			string(TransactionErrorInstructionError): err.raw(),
		},
	}, nil
}

// ParseRPCError extracts the transaction error carried in the data of a
// failed RPC call, such as a simulation failure during sendTransaction.
func ParseRPCError(err *jsonrpc.RPCError) (*TransactionError, error) {
	if err == nil {
		return nil, nil
	}

	data, ok := err.Data.(map[string]interface{})
	if !ok {
		return nil, errors.New("expected map type")
	}

	return ParseTransactionError(data["err"])
}

// ParseTransactionError parses the "err" value reported for a transaction.
// Errors are either a bare name or a single entry object mapping the name
// to its details.
func ParseTransactionError(raw interface{}) (*TransactionError, error) {
	if raw == nil {
		return nil, nil
	}

	name, details, err := splitEnum(raw)
	if err != nil {
		return &TransactionError{key: "unhandled transaction error", raw: raw}, err
	}

	txErr := &TransactionError{key: TransactionErrorKey(name), raw: raw}
	if txErr.key != TransactionErrorInstructionError {
		return txErr, nil
	}

	instructionErr, err := parseInstructionError(details)
	if err != nil {
		return &TransactionError{key: "unhandled transaction error", raw: raw}, errors.Wrap(err, "failed to parse instruction error")
	}
	txErr.instructionError = instructionErr
	return txErr, nil
}

func parseInstructionError(v interface{}) (*InstructionError, error) {
	tuple, ok := v.([]interface{})
	if !ok {
		return nil, errors.New("unexpected instruction error format")
	}
	if len(tuple) != 2 {
		return nil, errors.Errorf("invalid InstructionError tuple size: %d", len(tuple))
	}

	index, err := parseJSONNumber(tuple[0])
	if err != nil {
		return nil, err
	}

	name, details, err := splitEnum(tuple[1])
	if err != nil {
		return nil, err
	}
	if name != string(InstructionErrorCustom) {
		return &InstructionError{Index: index, Err: errors.New(name)}, nil
	}

	code, err := parseJSONNumber(details)
	if err != nil {
		return nil, errors.Wrap(err, "invalid custom error code")
	}
	return &InstructionError{Index: index, Err: CustomError(code)}, nil
}

// splitEnum decodes a serialized Rust enum, which is either the variant
// name or an object with a single variant key.
func splitEnum(v interface{}) (string, interface{}, error) {
	switch t := v.(type) {
	case string:
		return t, nil, nil
	case map[string]interface{}:
		if len(t) != 1 {
			return "", nil, errors.Errorf("invalid error object size: %d", len(t))
		}
		for name, details := range t {
			return name, details, nil
		}
	}
	return "", nil, errors.Errorf("unhandled error type %T", v)
}

func (t TransactionError) Error() string {
	if t.instructionError != nil {
		return t.instructionError.Error()
	}
	return string(t.key)
}

func (t TransactionError) ErrorKey() TransactionErrorKey {
	return t.key
}

func (t TransactionError) InstructionError() *InstructionError {
	return t.instructionError
}

// JSONString returns the error as the RPC would report it.
func (t TransactionError) JSONString() (string, error) {
	b, err := json.Marshal(t.raw)
	return string(b), err
}

func parseJSONNumber(v interface{}) (int, error) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, errors.Errorf("non integer value: %v", v)
		}
		return int(i), nil
	case float64:
		return int(n), nil
	case int:
		return n, nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, errors.Errorf("non numeric value: %v", v)
		}
		return int(i), nil
	}
	return 0, errors.Errorf("non numeric value: %v", v)
}
