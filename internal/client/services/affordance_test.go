package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/dktlearn/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAffordances_SameKeyIsBusy(t *testing.T) {
	a := NewAffordances()
	ctx := context.Background()

	inside := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- a.Do(ctx, "like:1", func(context.Context) error {
			close(inside)
			<-release
			return nil
		})
	}()
	<-inside

	assert.True(t, a.Busy("like:1"))
	assert.ErrorIs(t, a.Do(ctx, "like:1", func(context.Context) error { return nil }), common.ErrBusy)

	// a different affordance is not blocked
	require.NoError(t, a.Do(ctx, "like:2", func(context.Context) error { return nil }))

	close(release)
	require.NoError(t, <-done)
	assert.False(t, a.Busy("like:1"))
}

func TestAffordances_ReleasedKeysAreForgotten(t *testing.T) {
	a := NewAffordances()
	ctx := context.Background()

	for _, key := range []string{"like:1", "like:2", "reply:3"} {
		require.NoError(t, a.Do(ctx, key, func(context.Context) error { return nil }))
	}
	require.ErrorIs(t, a.Do(ctx, "post:edit:4", func(context.Context) error { return common.ErrValidation }), common.ErrValidation)

	a.mu.Lock()
	defer a.mu.Unlock()
	assert.Empty(t, a.slots)
}
