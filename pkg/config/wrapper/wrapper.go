// Package wrapper adapts untyped config.Config sources into typed values.
package wrapper

import (
	"context"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/code-payments/solend-client/pkg/config"
)

// ErrUnsupportedConversion indicates the wrapper does not implement conversion
// from the source type
var ErrUnsupportedConversion = errors.New("config: wrapper conversion from source type not implemented")

// Parser converts a raw source value into T. Environment sources yield
// []byte, in-memory sources yield the value they were given.
type Parser[T any] func(raw interface{}) (T, error)

type value[T any] struct {
	source       config.Config
	defaultValue T
	parse        Parser[T]

	stateMu   sync.RWMutex
	lastValue T
}

// New returns a typed value backed by source. The default is used while the
// source has no value set.
func New[T any](source config.Config, defaultValue T, parse Parser[T]) config.Value[T] {
	return &value[T]{
		source:       source,
		defaultValue: defaultValue,
		parse:        parse,
		lastValue:    defaultValue,
	}
}

// GetSafe gets a config value and propagates any errors that arise. A best-effort
// attempt is made to return the last known value
func (v *value[T]) GetSafe(ctx context.Context) (T, error) {
	raw, err := v.source.Get(ctx)

	v.stateMu.RLock()
	lastValue := v.lastValue
	v.stateMu.RUnlock()

	if err == config.ErrNoValue {
		v.setLast(v.defaultValue)
		return v.defaultValue, nil
	} else if err != nil {
		return lastValue, err
	}

	newValue, err := v.parse(raw)
	if err != nil {
		return lastValue, err
	}

	v.setLast(newValue)
	return newValue, nil
}

// Get is a wrapper for GetSafe that ignores the returned error
func (v *value[T]) Get(ctx context.Context) T {
	val, _ := v.GetSafe(ctx)
	return val
}

// Shutdown signals the config to stop all underlying resources
func (v *value[T]) Shutdown() {
	v.source.Shutdown()
}

func (v *value[T]) setLast(newValue T) {
	v.stateMu.Lock()
	v.lastValue = newValue
	v.stateMu.Unlock()
}

func NewBoolConfig(source config.Config, defaultValue bool) config.Bool {
	return New(source, defaultValue, ParseBool)
}

func NewUint64Config(source config.Config, defaultValue uint64) config.Uint64 {
	return New(source, defaultValue, ParseUint64)
}

func NewStringConfig(source config.Config, defaultValue string) config.String {
	return New(source, defaultValue, ParseString)
}

func ParseBool(raw interface{}) (bool, error) {
	switch typed := raw.(type) {
	case bool:
		return typed, nil
	case []byte:
		return strconv.ParseBool(string(typed))
	case string:
		return strconv.ParseBool(typed)
	default:
		return false, ErrUnsupportedConversion
	}
}

func ParseUint64(raw interface{}) (uint64, error) {
	switch typed := raw.(type) {
	case uint64:
		return typed, nil
	case uint:
		return uint64(typed), nil
	case int:
		if typed < 0 {
			return 0, errors.Errorf("config: negative value %d", typed)
		}
		return uint64(typed), nil
	case []byte:
		return strconv.ParseUint(string(typed), 10, 64)
	case string:
		return strconv.ParseUint(typed, 10, 64)
	default:
		return 0, ErrUnsupportedConversion
	}
}

func ParseString(raw interface{}) (string, error) {
	switch typed := raw.(type) {
	case string:
		return typed, nil
	case []byte:
		return string(typed), nil
	default:
		return "", ErrUnsupportedConversion
	}
}
