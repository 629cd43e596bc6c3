// Package env provides configs backed by environment variables.
package env

import (
	"context"
	"os"
	"strings"

	"github.com/code-payments/solend-client/pkg/config"
	"github.com/code-payments/solend-client/pkg/config/wrapper"
)

type variable struct {
	name string
}

// NewConfig returns a config reading the environment variable name, upper
// cased. The variable is looked up on every Get so that changes apply
// without a restart. Blank values count as unset.
func NewConfig(name string) config.Config {
	return &variable{name: strings.ToUpper(name)}
}

func (v *variable) Get(_ context.Context) (interface{}, error) {
	value, ok := os.LookupEnv(v.name)
	if !ok || strings.TrimSpace(value) == "" {
		return nil, config.ErrNoValue
	}
	return []byte(strings.TrimSpace(value)), nil
}

func (v *variable) Shutdown() {}

func NewUint64Config(name string, defaultValue uint64) config.Uint64 {
	return wrapper.NewUint64Config(NewConfig(name), defaultValue)
}

func NewStringConfig(name string, defaultValue string) config.String {
	return wrapper.NewStringConfig(NewConfig(name), defaultValue)
}

func NewBoolConfig(name string, defaultValue bool) config.Bool {
	return wrapper.NewBoolConfig(NewConfig(name), defaultValue)
}
