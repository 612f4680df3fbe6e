package store

import (
	"context"
	"testing"

	"pitchBooker/pkg/scraper"

	"github.com/stretchr/testify/require"
)

func TestMemoryJournal(t *testing.T) {
	ctx := context.Background()
	journal := NewMemory()

	slot := scraper.Slot{Day: "Mittwoch", Window: "14:00-15:00", Field: "1", BookingURL: "https://example.org/b?id=1"}

	seen, err := journal.Seen(ctx, slot)
	require.NoError(t, err)
	require.False(t, seen)

	require.NoError(t, journal.Record(ctx, slot))

	seen, err = journal.Seen(ctx, slot)
	require.NoError(t, err)
	require.True(t, seen)

	// A different slot stays unseen
	other := slot
	other.Window = "15:00-16:00"
	seen, err = journal.Seen(ctx, other)
	require.NoError(t, err)
	require.False(t, seen)
}
