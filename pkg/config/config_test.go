package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	person := Person{
		Gender:        "female",
		FirstName:     "Erika",
		LastName:      "Mustermann",
		Address:       "Musterstr. 1",
		City:          "Berlin",
		PostalCode:    "10623",
		Status:        StatusStudent,
		StudentNumber: "123456",
		Email:         "erika@example.org",
		Phone:         "+49 30 1234567",
		Birthdate:     "01.02.1999",
	}
	person2 := person
	person2.FirstName = "Max"
	person2.Status = StatusExternal
	person2.StudentNumber = ""

	return Config{
		Person1: person,
		Person2: person2,
		Banking: Banking{
			IBAN: "DE02120300000000202051",
			BIC:  "BYLADEM1001",
		},
		SlotsOverviewURL: "https://example.org/slots",
		DesiredDay:       "Mittwoch",
		DesiredStartTime: 14,
		RefreshIntervalS: 30,
		ReviewTimeS:      60,
	}
}

func writeConfig(t *testing.T, cfg Config) string {
	t.Helper()
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "form_data.json")
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig()))
	require.NoError(t, err)
	require.Equal(t, "Mittwoch", cfg.DesiredDay)
	require.Equal(t, 14, cfg.DesiredStartTime)
}

func TestLoadCapitalizesDay(t *testing.T) {
	in := validConfig()
	in.DesiredDay = "mittwoch"
	cfg, err := Load(writeConfig(t, in))
	require.NoError(t, err)
	require.Equal(t, "Mittwoch", cfg.DesiredDay)
}

func TestValidateRejectsStartTimeOutsideOperatingHours(t *testing.T) {
	for _, hour := range []int{0, 7, 23, -1} {
		cfg := validConfig()
		cfg.DesiredStartTime = hour
		err := cfg.Validate()
		require.Error(t, err, "hour %d must be rejected", hour)
		require.Contains(t, err.Error(), "invalid start time")
	}

	for _, hour := range []int{OpeningHour, 14, ClosingHour} {
		cfg := validConfig()
		cfg.DesiredStartTime = hour
		require.NoError(t, cfg.Validate(), "hour %d must be accepted", hour)
	}
}

func TestValidateRejectsUnknownStatus(t *testing.T) {
	cfg := validConfig()
	cfg.Person2.Status = "Gast"
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid status")
}

func TestValidateRejectsStudentWithoutNumber(t *testing.T) {
	cfg := validConfig()
	cfg.Person1.StudentNumber = ""
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "requires a student number")
}

func TestValidateRejectsInvalidDay(t *testing.T) {
	cfg := validConfig()
	cfg.DesiredDay = "Wednesday"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBadPersonDetails(t *testing.T) {
	cases := map[string]func(*Config){
		"numeric first name": func(c *Config) { c.Person1.FirstName = "Erika2" },
		"short postal code":  func(c *Config) { c.Person1.PostalCode = "1062" },
		"bad email":          func(c *Config) { c.Person1.Email = "not-an-email" },
		"bad phone":          func(c *Config) { c.Person1.Phone = "call me" },
		"bad birthdate":      func(c *Config) { c.Person1.Birthdate = "1999-02-01" },
		"empty iban":         func(c *Config) { c.Banking.IBAN = "" },
	}
	for name, mutate := range cases {
		cfg := validConfig()
		mutate(&cfg)
		require.Error(t, cfg.Validate(), name)
	}
}

func TestValidateRejectsNonPositiveRefreshInterval(t *testing.T) {
	cfg := validConfig()
	cfg.RefreshIntervalS = 0
	require.Error(t, cfg.Validate())
}

func TestValidateAllowsZeroReviewTime(t *testing.T) {
	cfg := validConfig()
	cfg.ReviewTimeS = 0
	require.NoError(t, cfg.Validate())

	cfg.ReviewTimeS = -1
	require.Error(t, cfg.Validate())
}

func TestStatusRequiresStudentNumber(t *testing.T) {
	require.True(t, StatusStudent.RequiresStudentNumber())
	require.False(t, StatusAlumnus.RequiresStudentNumber())
	require.False(t, StatusExternal.RequiresStudentNumber())
}
