package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pitchBooker/pkg/scraper"
	"pitchBooker/pkg/store"

	"github.com/stretchr/testify/require"
)

func TestRotateLogFileSameDayIsNoop(t *testing.T) {
	require.NotNil(t, logFile, "init must have opened today's log file")

	before := logFile
	for i := 0; i < 5; i++ {
		rotateLogFile()
	}
	require.Same(t, before, logFile, "rotating within the same day must keep the open file")
}

func TestRotateLogFileSwitchesOnDayChange(t *testing.T) {
	today := filepath.Join("logs", time.Now().Format("2006-01-02")+".log")
	yesterday := filepath.Join("logs", time.Now().AddDate(0, 0, -1).Format("2006-01-02")+".log")

	stale, err := os.OpenFile(yesterday, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(yesterday) })

	logFile = stale
	rotateLogFile()
	require.Equal(t, today, logFile.Name())
}

func TestRecordAttemptSkippedOnDryRun(t *testing.T) {
	journal := store.NewMemory()
	slot := scraper.Slot{Day: "Mittwoch", Window: "14:00-15:00", Field: "1", BookingURL: "https://example.org/b"}

	recordAttempt(context.Background(), journal, slot, true)
	seen, err := journal.Seen(context.Background(), slot)
	require.NoError(t, err)
	require.False(t, seen, "a dry run must not consume the slot for the real run")

	recordAttempt(context.Background(), journal, slot, false)
	seen, err = journal.Seen(context.Background(), slot)
	require.NoError(t, err)
	require.True(t, seen)
}
