package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoLimiter(t *testing.T) {
	var l Limiter = NoLimiter{}
	for i := 0; i < 1000; i++ {
		assert.True(t, l.Allow("getAccountInfo"))
	}
	assert.NoError(t, l.Wait(context.Background(), "getAccountInfo"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, context.Canceled, l.Wait(ctx, "getAccountInfo"))
}

func TestKeyedLimiter_Allow(t *testing.T) {
	l := NewKeyedLimiter(2, 0)

	for i := 0; i < 2; i++ {
		assert.True(t, l.Allow("getAccountInfo"))
	}
	assert.False(t, l.Allow("getAccountInfo"))

	// Keys are limited independently
	for i := 0; i < 2; i++ {
		assert.True(t, l.Allow("getSlot"))
	}
	assert.False(t, l.Allow("getSlot"))
}

func TestKeyedLimiter_Burst(t *testing.T) {
	l := NewKeyedLimiter(0.5, 0)
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))

	l = NewKeyedLimiter(1, 3)
	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("a"))
	}
	assert.False(t, l.Allow("a"))
}

func TestKeyedLimiter_Wait(t *testing.T) {
	l := NewKeyedLimiter(100, 1)
	require.True(t, l.Allow("a"))

	start := time.Now()
	require.NoError(t, l.Wait(context.Background(), "a"))
	assert.True(t, time.Since(start) >= 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	slow := NewKeyedLimiter(0.01, 1)
	require.True(t, slow.Allow("a"))
	assert.Error(t, slow.Wait(ctx, "a"))
}
