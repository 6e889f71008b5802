// Package sanitize normalizes raw extracted values and strips recognition
// artifacts. Sanitization is idempotent: applying it twice yields the same
// result as applying it once.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/0xKimutai/IDSnap/constants"
)

var (
	reArtifacts  = regexp.MustCompile("[|\\\\\\[\\]{}`]")
	reSpaces     = regexp.MustCompile(`\s+`)
	reNonName    = regexp.MustCompile(`[^A-Za-z '\-]`)
	reNonIDChar  = regexp.MustCompile(`[^A-Za-z0-9 \-]`)
	reNonDate    = regexp.MustCompile(`[^0-9./\- ]`)
	reNonAddress = regexp.MustCompile(`[^A-Za-z0-9 ,.'#]`)
)

// Fields sanitizes every value in the map and returns a new map. Values that
// sanitize to empty are dropped, keeping the "absent means not found"
// contract intact.
func Fields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for key, value := range fields {
		if v := Value(key, value); v != "" {
			out[key] = v
		}
	}
	return out
}

// Value sanitizes a single field value according to its key.
func Value(key, value string) string {
	v := reArtifacts.ReplaceAllString(value, " ")
	v = strings.TrimSpace(reSpaces.ReplaceAllString(v, " "))

	switch key {
	case constants.FieldName, constants.FieldDistrictOfBirth,
		constants.FieldPlaceOfIssue, constants.FieldNationality:
		v = reNonName.ReplaceAllString(v, " ")
		v = strings.TrimSpace(reSpaces.ReplaceAllString(v, " "))
		v = titleCase(v)
	case constants.FieldIDNumber, constants.FieldSerialNumber:
		v = reNonIDChar.ReplaceAllString(v, "")
		v = strings.TrimSpace(v)
	case constants.FieldDateOfBirth, constants.FieldDateOfIssue, constants.FieldExpiryDate:
		v = reNonDate.ReplaceAllString(v, "")
		v = strings.TrimSpace(v)
		v = canonicalDate(v)
	case constants.FieldSex:
		switch strings.ToUpper(v) {
		case "M", "MALE":
			v = "Male"
		case "F", "FEMALE":
			v = "Female"
		}
	case constants.FieldAddress:
		v = reNonAddress.ReplaceAllString(v, " ")
		v = strings.TrimSpace(reSpaces.ReplaceAllString(v, " "))
	}
	return v
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// canonicalDate reformats a date to MM/DD/YYYY when the numeric parts survive
// a real calendar round-trip. Two-digit years are pivoted first. Anything
// else is returned unchanged; no disambiguation is invented beyond the
// segment-over-12 heuristic.
func canonicalDate(v string) string {
	month, day, year, ok := splitDate(v)
	if !ok || year < 1000 {
		return v
	}
	if !isRealDate(year, month, day) {
		return v
	}
	return fmt.Sprintf("%02d/%02d/%04d", month, day, year)
}

var reDateParts = regexp.MustCompile(`\d+`)

// splitDate breaks a date-shaped string into month/day/year. A segment over
// 12 is taken as the day; a genuinely ambiguous pair reads month-first.
func splitDate(v string) (month, day, year int, ok bool) {
	parts := reDateParts.FindAllString(v, -1)
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		if len(p) > 4 {
			return 0, 0, 0, false
		}
		fmt.Sscanf(p, "%d", &nums[i])
	}

	var a, b int
	switch {
	case len(parts[2]) == 4: // D/M/YYYY or M/D/YYYY
		a, b, year = nums[0], nums[1], nums[2]
	case len(parts[0]) == 4: // YYYY/M/D
		year, a, b = nums[0], nums[1], nums[2]
	default: // two-digit year, pivot at 50
		a, b, year = nums[0], nums[1], nums[2]
		if year < 50 {
			year += 2000
		} else {
			year += 1900
		}
	}

	switch {
	case a > 12 && b <= 12:
		day, month = a, b
	case b > 12 && a <= 12:
		day, month = b, a
	case a <= 12 && b <= 12:
		month, day = a, b
	default:
		return 0, 0, 0, false
	}
	return month, day, year, true
}

func isRealDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 || year < 1 {
		return false
	}
	return day <= daysInMonth(year, month)
}

func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	default:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	}
}
