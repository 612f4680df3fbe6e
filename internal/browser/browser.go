package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"pitchBooker/pkg/config"
	"pitchBooker/pkg/scraper"

	"github.com/chromedp/chromedp"
)

// Browser drives the Chrome automation for one booking attempt.
type Browser struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	cfg         *config.Config
	reviewTime  time.Duration
	dryRun      bool
}

/// New creates a browser instance. The window is deliberately visible:
// the review pause only works as an abort hatch if the user can watch
// the filled form and close the window in time.
func New(cfg *config.Config, dryRun bool) *Browser {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(1280, 960),
		chromedp.NoSandbox,
		chromedp.Flag("headless", false),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Browser{
		allocCtx:    allocCtx,
		cancelAlloc: cancelAlloc,
		cfg:         cfg,
		reviewTime:  time.Duration(cfg.ReviewTimeS) * time.Second,
		dryRun:      dryRun,
	}
}

// Close closes the browser allocator.
func (b *Browser) Close() {
	b.cancelAlloc()
}

// Book opens the slot's booking page, fills the form for both persons
// plus the banking details, waits out the review time and performs the
// final paid-booking click. Closing the browser window during the
// review pause aborts the attempt.
//
// Any error aborts the attempt; the caller must not retry, since a
// second submission could create a duplicate reservation.
func (b *Browser) Book(ctx context.Context, slot scraper.Slot) error {
	log.Printf("🖥️ Starting booking for %s", slot)

	taskCtx, cancel := chromedp.NewContext(
		b.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			msg := fmt.Sprintf(format, args...)
			if (strings.Contains(msg, "error") || strings.Contains(msg, "failed")) &&
				!strings.Contains(msg, "cookiePart") &&
				!strings.Contains(msg, "unmarshal event") {
				log.Printf("🌐 %s", msg)
			}
		}),
	)
	defer cancel()

	taskCtx, cancel = context.WithTimeout(taskCtx, b.reviewTime+5*time.Minute)
	defer cancel()

	// Cancel the automation when the outer loop is stopped.
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-taskCtx.Done():
		}
	}()

	// First page only confirms date and time. New slots are released one
	// week ahead, so there is never more than one radio button.
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(slot.BookingURL),
		chromedp.WaitVisible(`input[type="radio"]`, chromedp.ByQuery),
		chromedp.Click(`input[type="radio"]`, chromedp.ByQuery),
		chromedp.Click(buttonByLabel("weiter zur Buchung")),
	)
	if err != nil {
		return fmt.Errorf("failed to pass date confirmation page: %w", err)
	}

	// Second page carries the actual form.
	if err := chromedp.Run(taskCtx,
		chromedp.WaitVisible(inputSelector("Vorname", ""), chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("booking form did not load: %w", err)
	}

	missing, err := b.missingElements(taskCtx, requiredSelectors(b.cfg))
	if err != nil {
		return fmt.Errorf("failed to inspect booking form: %w", err)
	}
	if len(missing) > 0 {
		return fmt.Errorf("booking form is missing expected fields (site layout changed?): %s", strings.Join(missing, ", "))
	}

	if err := b.fillPerson(taskCtx, b.cfg.Person1, ""); err != nil {
		return fmt.Errorf("failed to fill person1: %w", err)
	}
	if err := b.fillPerson(taskCtx, b.cfg.Person2, secondPersonSuffix); err != nil {
		return fmt.Errorf("failed to fill person2: %w", err)
	}

	err = chromedp.Run(taskCtx,
		chromedp.SetValue(inputSelector("iban", ""), b.cfg.Banking.IBAN, chromedp.ByQuery),
		chromedp.SetValue(inputSelector("bic", ""), b.cfg.Banking.BIC, chromedp.ByQuery),
		chromedp.Click(inputSelector("BuchBed", ""), chromedp.ByQuery),
		chromedp.Click(buttonByLabel("verbindlich anmelden")),
	)
	if err != nil {
		return fmt.Errorf("failed to submit booking form: %w", err)
	}

	// Third page: confirm that the data is correct and the account has
	// enough balance.
	err = chromedp.Run(taskCtx,
		chromedp.WaitVisible(`input[type="checkbox"]`, chromedp.ByQuery),
		chromedp.Click(`input[type="checkbox"]`, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("failed to pass confirmation page: %w", err)
	}

	if err := b.reviewPause(taskCtx); err != nil {
		return fmt.Errorf("booking aborted during review: %w", err)
	}

	if b.dryRun {
		log.Println("🧪 Dry run: skipping the final confirmation click")
		return nil
	}

	// Point of no return.
	if err := chromedp.Run(taskCtx, chromedp.Click(buttonByLabel("kostenpflichtig buchen"))); err != nil {
		return fmt.Errorf("failed to confirm booking: %w", err)
	}

	log.Printf("🎯 Booking confirmed for %s", slot)

	// Keep the page open so the user sees the booking confirmation.
	_ = chromedp.Run(taskCtx, chromedp.Sleep(10*time.Second))
	return nil
}

// fillPerson enters one person's details. The status select is set
// first because it toggles which fields the form shows.
func (b *Browser) fillPerson(ctx context.Context, p config.Person, suffix string) error {
	statusSel := statusSelector(suffix)
	err := chromedp.Run(ctx,
		chromedp.Click(genderSelector(p.Gender, suffix), chromedp.ByQuery),
		chromedp.SetValue(statusSel, string(p.Status), chromedp.ByQuery),
		chromedp.Evaluate(fmt.Sprintf(
			`document.querySelector(%q).dispatchEvent(new Event("change", {bubbles: true}))`, statusSel,
		), nil),
	)
	if err != nil {
		return err
	}

	for _, f := range personFields(p, suffix) {
		if err := chromedp.Run(ctx, chromedp.SetValue(f.selector, f.value, chromedp.ByQuery)); err != nil {
			return fmt.Errorf("failed to fill %s: %w", f.selector, err)
		}
	}

	// The birthdate input only exists on some booking sites.
	bdSel := birthdateSelector(suffix)
	exists, err := b.elementExists(ctx, bdSel)
	if err != nil {
		return err
	}
	if exists {
		if err := chromedp.Run(ctx, chromedp.SetValue(bdSel, p.Birthdate, chromedp.ByQuery)); err != nil {
			return fmt.Errorf("failed to fill %s: %w", bdSel, err)
		}
	}

	return nil
}

// reviewPause counts down the configured review window. A review time
// of zero confirms immediately.
func (b *Browser) reviewPause(ctx context.Context) error {
	remaining := b.reviewTime
	if remaining <= 0 {
		return nil
	}

	log.Printf("⏳ Review window open, close the browser window to abort")
	for remaining > 0 {
		log.Printf("Booking will be performed in %3d seconds", int(remaining.Seconds()))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			remaining -= time.Second
		}
	}
	return nil
}

func (b *Browser) elementExists(ctx context.Context, selector string) (bool, error) {
	var exists bool
	err := chromedp.Run(ctx, chromedp.Evaluate(
		fmt.Sprintf(`document.querySelector(%q) !== null`, selector), &exists,
	))
	return exists, err
}

func (b *Browser) missingElements(ctx context.Context, selectors []string) ([]string, error) {
	sels, err := json.Marshal(selectors)
	if err != nil {
		return nil, err
	}

	var missing []string
	err = chromedp.Run(ctx, chromedp.Evaluate(
		fmt.Sprintf(`%s.filter(s => document.querySelector(s) === null)`, sels), &missing,
	))
	return missing, err
}
