package wrapper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/solend-client/pkg/config"
	"github.com/code-payments/solend-client/pkg/config/memory"
)

func TestValue_DefaultAndOverride(t *testing.T) {
	ctx := context.Background()

	source := memory.NewConfig(nil)
	v := NewUint64Config(source, 6)

	val, err := v.GetSafe(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 6, val)

	source.SetValue(uint64(3))
	assert.EqualValues(t, 3, v.Get(ctx))

	source.SetValue([]byte("12"))
	assert.EqualValues(t, 12, v.Get(ctx))

	// Errors return the last known value
	induced := errors.New("unavailable")
	source.SetError(induced)
	val, err = v.GetSafe(ctx)
	assert.Equal(t, induced, err)
	assert.EqualValues(t, 12, val)

	source.SetError(nil)
	source.SetValue(3.5)
	val, err = v.GetSafe(ctx)
	assert.Equal(t, ErrUnsupportedConversion, err)
	assert.EqualValues(t, 12, val)

	source.SetValue(nil)
	assert.EqualValues(t, 6, v.Get(ctx))

	v.Shutdown()
	_, err = source.Get(ctx)
	assert.Equal(t, config.ErrShutdown, err)
}

func TestParsers(t *testing.T) {
	for _, raw := range []interface{}{true, []byte("true"), "1"} {
		val, err := ParseBool(raw)
		require.NoError(t, err)
		assert.True(t, val)
	}
	_, err := ParseBool(1)
	assert.Equal(t, ErrUnsupportedConversion, err)

	for _, raw := range []interface{}{uint64(7), uint(7), 7, []byte("7"), "7"} {
		val, err := ParseUint64(raw)
		require.NoError(t, err)
		assert.EqualValues(t, 7, val)
	}
	_, err = ParseUint64(-1)
	assert.Error(t, err)
	_, err = ParseUint64([]byte("-1"))
	assert.Error(t, err)

	for _, raw := range []interface{}{"devnet", []byte("devnet")} {
		val, err := ParseString(raw)
		require.NoError(t, err)
		assert.Equal(t, "devnet", val)
	}
	_, err = ParseString(7)
	assert.Equal(t, ErrUnsupportedConversion, err)
}

func TestNoopConfig(t *testing.T) {
	v := NewStringConfig(config.NoopConfig, "production")
	assert.Equal(t, "production", v.Get(context.Background()))
}
