package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowIsPerKey(t *testing.T) {
	k := PerInterval(1, time.Hour, 2)

	assert.True(t, k.Allow("10.0.0.1"))
	assert.True(t, k.Allow("10.0.0.1"))
	assert.False(t, k.Allow("10.0.0.1"), "burst exhausted")

	assert.True(t, k.Allow("10.0.0.2"), "other keys keep their own bucket")
	assert.Equal(t, 2, k.Len())
}

func TestWaitHonoursContext(t *testing.T) {
	k := PerInterval(1, time.Hour, 1)
	require.NoError(t, k.Wait(context.Background(), "docs.google.com"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, k.Wait(ctx, "docs.google.com"))
}
