package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"pitchBooker/internal/browser"
	"pitchBooker/pkg/config"
	"pitchBooker/pkg/notify"
	"pitchBooker/pkg/scraper"
	"pitchBooker/pkg/store"

	"github.com/joho/godotenv"
)

// logFile is the currently open daily log file. The logger's writer is
// a MultiWriter, so the file handle has to be tracked here to know when
// the day changed.
var logFile *os.File

func init() {
	// Create logs directory if it doesn't exist
	logsDir := "logs"
	if err := os.MkdirAll(logsDir, 0750); err != nil {
		log.Printf("Error creating logs directory: %v", err)
		return
	}

	// Set up logging with timestamp
	log.SetFlags(log.Ltime | log.LUTC)

	// Create daily log file
	today := time.Now().Format("2006-01-02")
	path := filepath.Join(logsDir, today+".log")

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		log.Printf("Error opening log file: %v", err)
		return
	}
	logFile = f

	// Write to both file and stdout
	multiWriter := io.MultiWriter(os.Stdout, f)
	log.SetOutput(multiWriter)

	log.Printf("=== Starting new session ===")
}

// rotateLogFile switches to a new log file when the day changes. Calling
// it while the current file is still today's is a no-op.
func rotateLogFile() {
	today := time.Now().Format("2006-01-02")
	path := filepath.Join("logs", today+".log")

	if logFile != nil && logFile.Name() == path {
		return
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		log.Printf("Error rotating log file: %v", err)
		return
	}

	if logFile != nil {
		if err := logFile.Close(); err != nil {
			log.Printf("Error closing log file: %v", err)
		}
	}
	logFile = f

	multiWriter := io.MultiWriter(os.Stdout, f)
	log.SetOutput(multiWriter)
	log.Printf("=== Log rotated to new file ===")
}

// recordAttempt marks the slot as attempted in the journal. Dry runs
// never reach the irreversible click, so they must not consume the slot
// for the real run that follows.
func recordAttempt(ctx context.Context, journal store.Journal, slot scraper.Slot, dryRun bool) {
	if dryRun {
		return
	}
	if err := journal.Record(ctx, slot); err != nil {
		log.Printf("⚠️ Failed to record booking attempt: %v", err)
	}
}

func main() {
	// Parse command line arguments
	dryRun := false
	noNotify := false
	configPath := ""

	for _, arg := range os.Args[1:] {
		switch arg {
		case "--dry-run":
			dryRun = true
			log.Println("Dry run: the final confirmation click will be skipped")
		case "--no-notify":
			noNotify = true
			log.Println("Notifications disabled (--no-notify flag is set)")
		default:
			configPath = arg
		}
	}

	// Credentials for Redis and Telegram may live in a .env file
	if err := godotenv.Load(); err == nil {
		log.Println("✓ Loaded .env")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	log.Printf("Looking for a slot on %s at %s (checking every %ds, review time %ds)",
		cfg.DesiredDay, scraper.Window(cfg.DesiredStartTime), cfg.RefreshIntervalS, cfg.ReviewTimeS)

	// Booking journal: Redis when configured, in-memory otherwise
	var journal store.Journal
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rj := store.NewRedis(addr, os.Getenv("REDIS_PASSWORD"))
		if err := rj.Ping(context.Background()); err != nil {
			log.Fatalf("❌ Redis connection failed: %v", err)
		}
		journal = rj
		log.Println("✓ Booking journal backed by Redis")
	} else {
		journal = store.NewMemory()
		log.Println("Booking journal kept in memory only (set REDIS_ADDR to persist across restarts)")
	}

	// Telegram notifications are optional
	chatID, _ := strconv.ParseInt(os.Getenv("TELEGRAM_CHAT_ID"), 10, 64)
	notifier, err := notify.NewClient(os.Getenv("TELEGRAM_BOT_TOKEN"), chatID, noNotify)
	if err != nil {
		log.Printf("⚠️ Telegram setup failed: %v", err)
		log.Printf("⚠️ Notifications will be disabled")
		notifier, _ = notify.NewClient("", 0, true)
	}
	if notifier.Enabled() {
		if err := notifier.NotifyStarted(cfg.DesiredDay, cfg.DesiredStartTime); err != nil {
			log.Printf("⚠️ Initial notification failed: %v", err)
			log.Printf("⚠️ Notifications will be disabled")
			notifier, _ = notify.NewClient("", 0, true)
		} else {
			log.Println("✓ Initial notification sent successfully")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scr := scraper.New(cfg.SlotsOverviewURL)
	b := browser.New(cfg, dryRun)
	defer b.Close()

	log.Println("Booker started - press Ctrl+C to stop")

	interval := time.Duration(cfg.RefreshIntervalS) * time.Second
	consecutiveErrors := 0

	for {
		slots, err := scr.FetchSlots(ctx)
		if err != nil {
			// A failed poll degrades to "no slots this cycle"
			consecutiveErrors++
			log.Printf("⚠️ Poll failed (consecutive errors: %d): %v", consecutiveErrors, err)
		} else {
			consecutiveErrors = 0
			slot := scraper.FindSlot(slots, cfg.DesiredDay, cfg.DesiredStartTime)
			switch {
			case slot == nil:
				log.Printf("✓ No slot on %s at %s (%d open slots on the page)",
					cfg.DesiredDay, scraper.Window(cfg.DesiredStartTime), len(slots))
				if len(slots) > 0 {
					log.Printf("Open slots: %s", strings.Join(scraper.SlotSummaries(slots), ", "))
				}
			default:
				seen, err := journal.Seen(ctx, *slot)
				if err != nil {
					log.Printf("⚠️ Journal lookup failed: %v", err)
				}
				if seen {
					log.Printf("⏭ Skipping %s: a booking attempt was already made for it", slot)
					break
				}

				// Record before clicking anything, so a crash mid-booking
				// can never lead to a second submission
				recordAttempt(ctx, journal, *slot, dryRun)

				if err := b.Book(ctx, *slot); err != nil {
					if ctx.Err() != nil {
						log.Println("Stopping booker")
						return
					}
					log.Printf("❌ Booking failed: %v", err)
					if nerr := notifier.NotifyFailed(*slot, err); nerr != nil {
						log.Printf("⚠️ Failed to send notification: %v", nerr)
					}
					b.Close()
					os.Exit(1)
				}

				if dryRun {
					log.Println("✓ Dry run complete, no booking was made")
					return
				}

				if nerr := notifier.NotifyBooked(*slot); nerr != nil {
					log.Printf("⚠️ Failed to send notification: %v", nerr)
				}
				log.Printf("✅ Booked %s", slot)
				return
			}
		}

		nextCheck := time.Now().Add(interval)
		log.Printf("Next check at %s", nextCheck.Format("15:04:05"))
		select {
		case <-ctx.Done():
			log.Println("Stopping booker")
			return
		case <-time.After(interval):
		}

		rotateLogFile()
	}
}
