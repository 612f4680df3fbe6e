package scraper

import (
	"crypto/sha1"
	"fmt"
)

// Slot is one bookable time window on the overview page. Slots are
// ephemeral: they are scraped fresh every poll and never persisted.
type Slot struct {
	Day        string `json:"day"`    // German day name, e.g. "Mittwoch"
	Window     string `json:"window"` // e.g. "14:00-15:00"
	Field      string `json:"field"`  // field/pitch number on the site
	BookingURL string `json:"booking_url"`
	Available  bool   `json:"available"`
}

// Key identifies a slot for the booking journal. The URL is hashed so
// session tokens embedded in booking links don't blow up the key.
func (s Slot) Key() string {
	sum := sha1.Sum([]byte(s.BookingURL))
	return fmt.Sprintf("%s_%s_%s_%x", s.Day, s.Window, s.Field, sum[:6])
}

func (s Slot) String() string {
	return fmt.Sprintf("%s %s (field %s)", s.Day, s.Window, s.Field)
}

// Window converts a starting hour to the time window format used on the
// overview page, e.g. 8 -> "08:00-09:00". Bookings are always one hour.
func Window(hour int) string {
	return fmt.Sprintf("%02d:00-%02d:00", hour, hour+1)
}

// FindSlot returns the first open slot matching the desired day and
// start hour, or nil if none matches. Matching is exact; when several
// fields are open at the same time, page order decides.
func FindSlot(slots []Slot, day string, hour int) *Slot {
	window := Window(hour)
	for i := range slots {
		if slots[i].Day == day && slots[i].Window == window && slots[i].Available {
			return &slots[i]
		}
	}
	return nil
}

// SlotSummaries renders slots for log output.
func SlotSummaries(slots []Slot) []string {
	summaries := make([]string, len(slots))
	for i, slot := range slots {
		summaries[i] = slot.String()
	}
	return summaries
}
