package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReviewPauseZeroFiresImmediately(t *testing.T) {
	b := &Browser{reviewTime: 0}

	start := time.Now()
	require.NoError(t, b.reviewPause(context.Background()))
	require.Less(t, time.Since(start), 200*time.Millisecond, "a zero review time must not pause")
}

func TestReviewPauseAbortsOnContextCancel(t *testing.T) {
	b := &Browser{reviewTime: 30 * time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := b.reviewPause(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, time.Since(start), 5*time.Second, "cancellation must cut the countdown short")
}
