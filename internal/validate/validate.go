// Package validate checks sanitized fields against their patterns and
// against each other. Errors mark data the caller cannot trust (impossible
// dates, missing required fields); warnings mark the expected fallout of OCR
// noise and are reported, never fatal.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/0xKimutai/IDSnap/constants"
	"github.com/0xKimutai/IDSnap/internal/registry"
	"github.com/0xKimutai/IDSnap/internal/sanitize"
)

// Result collects validation diagnostics in check order.
type Result struct {
	Errors   []string
	Warnings []string
}

// IsValid reports whether no errors were recorded. Warnings do not affect
// validity.
func (r Result) IsValid() bool { return len(r.Errors) == 0 }

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

const (
	maxPlausibleAge  = 150
	minHolderAge     = 16
	oldDocumentYears = 75
	minDocumentYear  = 1950
)

// Validate runs all per-field and cross-field checks for the given format.
// now anchors the future/age checks so tests stay deterministic.
func Validate(fields map[string]string, format registry.DocumentFormat, now time.Time) Result {
	var res Result

	// Required fields.
	for _, fs := range format.Fields {
		if !fs.Required {
			continue
		}
		if strings.TrimSpace(fields[fs.Key]) == "" {
			res.errorf("required field missing: %s", fs.Label)
		}
	}

	// Pattern conformance. OCR noise is expected, so a mismatch is a warning.
	for _, fs := range format.Fields {
		value, ok := fields[fs.Key]
		if !ok || fs.Pattern.Validation == nil {
			continue
		}
		if !fs.Pattern.Validation.MatchString(value) {
			res.warnf("%s does not match the expected pattern", fs.Label)
		}
	}

	birth := checkDate(&res, fields, constants.FieldDateOfBirth, "birth date", now)
	issue := checkDate(&res, fields, constants.FieldDateOfIssue, "issue date", now)
	expiry := checkDate(&res, fields, constants.FieldExpiryDate, "expiry date", now)

	// Future/past plausibility.
	if !birth.IsZero() && birth.After(now) {
		res.errorf("birth date is in the future")
	}
	if !issue.IsZero() && issue.After(now) {
		res.warnf("issue date is in the future")
	}
	if !expiry.IsZero() && expiry.Before(now) {
		res.warnf("document appears expired")
	}

	// Cross-date ordering.
	if !birth.IsZero() && !issue.IsZero() && issue.Before(birth) {
		res.errorf("issue date is before birth date")
	}
	if !issue.IsZero() && !expiry.IsZero() && expiry.Before(issue) {
		res.errorf("expiry date is before issue date")
	}

	// Age plausibility from the birth date.
	if !birth.IsZero() {
		age := yearsBetween(birth, now)
		switch {
		case age < 0:
			res.errorf("computed age is negative")
		case age > maxPlausibleAge:
			res.warnf("computed age exceeds %d years", maxPlausibleAge)
		case age < minHolderAge:
			res.warnf("holder appears younger than %d", minHolderAge)
		}
	}

	checkName(&res, fields[constants.FieldName])
	checkIDNumber(&res, fields, constants.FieldIDNumber, "ID number")
	checkIDNumber(&res, fields, constants.FieldSerialNumber, "serial number")
	checkAddress(&res, fields[constants.FieldAddress])

	return res
}

// checkDate parses a present date field, recording an error when the value
// is not a real calendar date or implausibly old. Returns the zero time when
// absent or unparseable.
func checkDate(res *Result, fields map[string]string, key, label string, now time.Time) time.Time {
	value, ok := fields[key]
	if !ok || strings.TrimSpace(value) == "" {
		return time.Time{}
	}
	t, ok := sanitize.ParseDate(value)
	if !ok {
		res.errorf("%s is not a valid calendar date: %q", label, value)
		return time.Time{}
	}
	if t.Year() < minDocumentYear || yearsBetween(t, now) > oldDocumentYears {
		res.warnf("%s is unusually old", label)
	}
	return t
}

var (
	reDigit        = regexp.MustCompile(`[0-9]`)
	reNonLetter    = regexp.MustCompile(`[^A-Za-z ]`)
	reStreetyWords = regexp.MustCompile(`(?i)\b(?:STREET|ST|ROAD|RD|AVENUE|AVE|LANE|LN|DRIVE|DR|BOX|PLOT|HOUSE)\b`)
)

func checkName(res *Result, name string) {
	if name == "" {
		return
	}
	if len(name) < 2 || len(name) > 50 {
		res.warnf("name length is implausible")
	}
	if reDigit.MatchString(name) {
		res.warnf("name contains digits")
	}
	if len(reNonLetter.FindAllString(name, -1)) > 2 {
		res.warnf("name contains unexpected characters")
	}
}

func checkIDNumber(res *Result, fields map[string]string, key, label string) {
	value, ok := fields[key]
	if !ok || value == "" {
		return
	}
	if len(value) < 4 || len(value) > 25 {
		res.warnf("%s length is implausible", label)
	}
	if allSameRune(value) {
		res.warnf("%s is a single repeated character", label)
	}
}

func checkAddress(res *Result, address string) {
	if address == "" {
		return
	}
	if len(address) < 10 {
		res.warnf("address looks too short")
	}
	if !reDigit.MatchString(address) && !reStreetyWords.MatchString(address) {
		res.warnf("address has neither a number nor a street keyword")
	}
}

func allSameRune(s string) bool {
	if len(s) < 2 {
		return false
	}
	first := rune(s[0])
	for _, r := range s {
		if r != first {
			return false
		}
	}
	return true
}

// yearsBetween returns whole calendar years from a to b; negative when b
// precedes a.
func yearsBetween(a, b time.Time) int {
	years := b.Year() - a.Year()
	anniversary := a.AddDate(years, 0, 0)
	if anniversary.After(b) {
		years--
	}
	return years
}
