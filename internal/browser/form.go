package browser

import (
	"fmt"
	"strings"

	"pitchBooker/pkg/config"
)

// The booking form repeats every person field for the second person with
// a "2" suffix; the first person's fields carry no suffix.
const secondPersonSuffix = "2"

// formField pairs a CSS selector with the value to enter.
type formField struct {
	selector string
	value    string
}

// genderOption maps the configured gender to the radio button id used on
// the booking form. Anything unknown selects "ska" (keine Angabe).
func genderOption(gender string) string {
	switch strings.ToLower(gender) {
	case "male":
		return "maennlich"
	case "female":
		return "weiblich"
	default:
		return "ska"
	}
}

func inputSelector(name, suffix string) string {
	return fmt.Sprintf(`input[name=%q]`, name+suffix)
}

func genderSelector(gender, suffix string) string {
	return fmt.Sprintf(`input[name=%q][id=%q]`, "Geschlecht"+suffix, genderOption(gender))
}

func statusSelector(suffix string) string {
	return fmt.Sprintf(`select[name=%q]`, "Statusorig"+suffix)
}

func birthdateSelector(suffix string) string {
	return inputSelector("Geburtsdatum", suffix)
}

// personFields lists the text inputs to fill for one person, in form
// order. The student number is only included for students; the form
// hides it for everyone else.
func personFields(p config.Person, suffix string) []formField {
	fields := []formField{
		{inputSelector("Vorname", suffix), p.FirstName},
		{inputSelector("Name", suffix), p.LastName},
		{inputSelector("Strasse", suffix), p.Address},
		{inputSelector("Ort", suffix), p.PostalCode + " " + p.City},
	}
	if p.Status.RequiresStudentNumber() {
		fields = append(fields, formField{inputSelector("Matnr", suffix), p.StudentNumber})
	}
	fields = append(fields,
		formField{inputSelector("Mail", suffix), p.Email},
		formField{inputSelector("Tel", suffix), p.Phone},
	)
	return fields
}

// requiredSelectors lists every element the booking form must have
// before any value is entered. A missing element means the site layout
// changed and the attempt has to fail loudly instead of guess-submitting
// a half-filled form.
func requiredSelectors(cfg *config.Config) []string {
	var sels []string
	for _, pers := range []struct {
		p      config.Person
		suffix string
	}{
		{cfg.Person1, ""},
		{cfg.Person2, secondPersonSuffix},
	} {
		sels = append(sels, genderSelector(pers.p.Gender, pers.suffix))
		sels = append(sels, statusSelector(pers.suffix))
		for _, f := range personFields(pers.p, pers.suffix) {
			sels = append(sels, f.selector)
		}
	}
	sels = append(sels,
		inputSelector("iban", ""),
		inputSelector("bic", ""),
		inputSelector("BuchBed", ""),
	)
	return sels
}

// buttonByLabel builds an XPath matching either a <button> or a submit
// <input> carrying the given label. The site mixes both.
func buttonByLabel(label string) string {
	return fmt.Sprintf(
		`//button[contains(normalize-space(.), %q)] | //input[(@type="submit" or @type="button") and contains(@value, %q)]`,
		label, label,
	)
}
