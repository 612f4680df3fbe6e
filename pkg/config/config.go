package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"unicode"
)

// Facility operating hours. A desired start time outside this range can
// never match a slot, so it is rejected at load time.
const (
	OpeningHour = 8
	ClosingHour = 22
)

// DefaultPath is used when no config file is given on the command line.
const DefaultPath = "form_data.json"

var validDays = map[string]bool{
	"Montag":     true,
	"Dienstag":   true,
	"Mittwoch":   true,
	"Donnerstag": true,
	"Freitag":    true,
	"Samstag":    true,
	"Sonntag":    true,
}

var (
	emailRe     = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)
	birthdateRe = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)
	postalRe    = regexp.MustCompile(`^\d{5}$`)
)

// Status is the applicant's affiliation with the university. It decides
// which form fields the booking site requires. The set is closed;
// anything else is a configuration error.
type Status string

const (
	StatusStudent  Status = "S-TU"
	StatusAlumnus  Status = "TU-Alumni"
	StatusExternal Status = "extern"
)

// Valid reports whether s is one of the statuses the booking form accepts.
func (s Status) Valid() bool {
	switch s {
	case StatusStudent, StatusAlumnus, StatusExternal:
		return true
	}
	return false
}

// RequiresStudentNumber reports whether the form expects a student number
// for this status.
func (s Status) RequiresStudentNumber() bool {
	return s == StatusStudent
}

// Person holds the personal details entered into the booking form.
type Person struct {
	Gender        string `json:"gender"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Address       string `json:"address"`
	City          string `json:"city"`
	PostalCode    string `json:"postal_code"`
	Status        Status `json:"status"`
	StudentNumber string `json:"student_number"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Birthdate     string `json:"birthdate"`
}

// Banking holds the direct-debit details for the paid booking.
type Banking struct {
	IBAN string `json:"iban"`
	BIC  string `json:"bic"`
}

// Config is the full application configuration, loaded once at startup
// and immutable afterwards.
type Config struct {
	Person1 Person  `json:"person1"`
	Person2 Person  `json:"person2"`
	Banking Banking `json:"banking"`

	SlotsOverviewURL string `json:"slots_overview_url"`
	DesiredDay       string `json:"desired_day"`
	DesiredStartTime int    `json:"desired_start_time"`

	// Declared in the config schema but not implemented yet. Load warns
	// when they are set so nobody relies on them silently.
	DesiredDurationH int  `json:"desired_duration_h"`
	DoubleBooking    bool `json:"double_booking"`

	RefreshIntervalS int `json:"request_refresh_interval_s"`
	ReviewTimeS      int `json:"review_time_s"`
}

// Load reads and validates the configuration file. Validation failures
// are fatal: a bad config must never reach the poll loop.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Day names on the overview page are capitalized; fix it up in case
	// it was forgotten in the JSON.
	cfg.DesiredDay = capitalize(cfg.DesiredDay)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.DesiredDurationH != 0 {
		log.Printf("⚠️ desired_duration_h is set but not implemented, bookings are always one hour")
	}
	if cfg.DoubleBooking {
		log.Printf("⚠️ double_booking is set but not implemented, only one slot will be booked")
	}

	return &cfg, nil
}

// Validate checks the whole configuration and reports every problem at
// once, so the user can fix the file in a single pass.
func (c *Config) Validate() error {
	var errs []string

	if c.SlotsOverviewURL == "" {
		errs = append(errs, "slots_overview_url must not be empty")
	}
	if !validDays[c.DesiredDay] {
		errs = append(errs, fmt.Sprintf("invalid day %q: must be a German day name (Montag..Sonntag)", c.DesiredDay))
	}
	if c.DesiredStartTime < OpeningHour || c.DesiredStartTime > ClosingHour {
		errs = append(errs, fmt.Sprintf("invalid start time %d: must be between %d and %d", c.DesiredStartTime, OpeningHour, ClosingHour))
	}
	if c.RefreshIntervalS <= 0 {
		errs = append(errs, fmt.Sprintf("invalid refresh interval %d: must be a positive number of seconds", c.RefreshIntervalS))
	}
	if c.ReviewTimeS < 0 {
		errs = append(errs, fmt.Sprintf("invalid review time %d: must not be negative", c.ReviewTimeS))
	}

	errs = append(errs, validatePerson("person1", c.Person1)...)
	errs = append(errs, validatePerson("person2", c.Person2)...)

	if c.Banking.IBAN == "" {
		errs = append(errs, "banking.iban must not be empty")
	}
	if c.Banking.BIC == "" {
		errs = append(errs, "banking.bic must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func validatePerson(label string, p Person) []string {
	var errs []string

	if !isAlpha(p.FirstName) {
		errs = append(errs, fmt.Sprintf("%s: invalid first name %q: must only contain letters", label, p.FirstName))
	}
	if !isAlpha(p.LastName) {
		errs = append(errs, fmt.Sprintf("%s: invalid last name %q: must only contain letters", label, p.LastName))
	}
	if !postalRe.MatchString(p.PostalCode) {
		errs = append(errs, fmt.Sprintf("%s: invalid postal code %q: must be a 5-digit number", label, p.PostalCode))
	}
	if !emailRe.MatchString(p.Email) {
		errs = append(errs, fmt.Sprintf("%s: invalid email address %q", label, p.Email))
	}
	if !p.Status.Valid() {
		errs = append(errs, fmt.Sprintf("%s: invalid status %q: must be one of %s (student), %s (registered alumni), %s (external)",
			label, p.Status, StatusStudent, StatusAlumnus, StatusExternal))
	}
	if p.Status.RequiresStudentNumber() && p.StudentNumber == "" {
		errs = append(errs, fmt.Sprintf("%s: status %s requires a student number", label, StatusStudent))
	}
	if !isPhone(p.Phone) {
		errs = append(errs, fmt.Sprintf("%s: invalid phone number %q: must only contain digits", label, p.Phone))
	}
	if !birthdateRe.MatchString(p.Birthdate) {
		errs = append(errs, fmt.Sprintf("%s: invalid birthdate %q: must be in the format dd.mm.yyyy", label, p.Birthdate))
	}

	return errs
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func isPhone(s string) bool {
	stripped := strings.NewReplacer(" ", "", "+", "").Replace(s)
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
