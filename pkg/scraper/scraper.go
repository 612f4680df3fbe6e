package scraper

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const userAgent = "Mozilla/5.0 (compatible; pitchBooker/1.0)"

// Scraper fetches the slot overview page and extracts bookable slots.
type Scraper struct {
	client      *http.Client
	overviewURL string
}

// New creates a Scraper for the given overview URL.
func New(overviewURL string) *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		overviewURL: overviewURL,
	}
}

// FetchSlots downloads the overview page and returns the currently
// bookable slots. Callers treat any error as "no slots this cycle".
func (s *Scraper) FetchSlots(ctx context.Context) ([]Slot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.overviewURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch overview page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overview request failed with status %d", resp.StatusCode)
	}

	slots, err := parseOverview(resp.Body)
	if err != nil {
		return nil, err
	}

	return s.resolveLinks(slots), nil
}

// parseOverview walks the overview table. The layout interleaves rows:
// a row either carries a day header or the bookable cells for the day
// named by the most recent header. The first day of the week sits above
// the first in-table header, so the walk starts on "Montag".
func parseOverview(r io.Reader) ([]Slot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	table := doc.Find("div.table-body-group")
	if table.Length() == 0 {
		// Happens when no time slots are offered at all.
		return nil, fmt.Errorf("could not find table containing time slots")
	}

	var slots []Slot
	day := "Montag"

	table.Find("div.table-row").Each(func(_ int, row *goquery.Selection) {
		if head := row.Find("div.table-head.column-1"); head.Length() > 0 {
			day = strings.TrimSpace(head.First().Text())
			return
		}

		bookable := row.Find("div.date.bookable")
		if bookable.Length() == 0 {
			return
		}
		log.Printf("Available slots on %s: %d", day, bookable.Length())

		bookable.Each(func(_ int, cell *goquery.Selection) {
			link := cell.Find("a").First()
			if link.Length() == 0 {
				return
			}

			window := strings.TrimSpace(link.Find("strong.time").Text())
			if window == "" {
				return
			}

			// The detail span reads "Feld N"; only the number matters.
			detail := strings.TrimSpace(link.Find("span.detail").Text())
			field := ""
			if detail != "" {
				field = detail[len(detail)-1:]
			}

			href, ok := link.Attr("href")
			if !ok || href == "" {
				return
			}

			slots = append(slots, Slot{
				Day:        day,
				Window:     window,
				Field:      field,
				BookingURL: href,
				Available:  true,
			})
		})
	})

	return slots, nil
}

// resolveLinks turns relative booking hrefs into absolute URLs so the
// browser can navigate to them directly.
func (s *Scraper) resolveLinks(slots []Slot) []Slot {
	base, err := url.Parse(s.overviewURL)
	if err != nil {
		return slots
	}
	for i := range slots {
		ref, err := url.Parse(slots[i].BookingURL)
		if err != nil {
			continue
		}
		slots[i].BookingURL = base.ResolveReference(ref).String()
	}
	return slots
}
