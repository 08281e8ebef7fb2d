// Package hl7 builds HL7 v2 VXU messages from upload records.
//
// The normalizers in this file convert raw cell values into the encoded
// representations the registry expects. They never return an error: a value
// that cannot be normalized becomes the empty string and the segment builders
// carry on, matching the registry's tolerance for absent optional fields.
package hl7

import (
	"strconv"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
)

// date layouts - reference date is Mon Jan 2 15:04:05 MST 2006
const (
	dateLayout     = "1/2/06"
	dateTimeLayout = "1/2/06 15:04"
	dobLayout      = "1/2/2006"
)

// StringOrCaret returns a non-empty string unchanged, substitutes a caret for
// an explicitly blank string, and returns "" for anything that is not a
// string. HL7 uses the caret to mark a field as present but empty, which is
// distinct from an omitted field.
func StringOrCaret(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	if s == "" {
		return "^"
	}
	return s
}

// toPast applies the registry's two-digit-year convention: a date more than a
// year in the future cannot be right, so it belongs to the previous century.
func toPast(t time.Time, now time.Time) time.Time {
	if !t.Before(now.AddDate(1, 0, 0)) {
		return t.AddDate(-100, 0, 0)
	}
	return t
}

// ToHL7Date converts an m/d/yy date to the registry's hour-precision form
// YYYYMMDDHH. Returns "" when the value is not a parseable date string.
func ToHL7Date(v any) string {
	return toHL7Date(v, time.Now())
}

func toHL7Date(v any, now time.Time) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return ""
	}
	return toPast(t, now).Format("2006010215")
}

// ToHL7DateTime converts an "m/d/yy H:MM" timestamp to the registry's
// second-precision form YYYYMMDDHHMMSS. Returns "" when the value is not a
// parseable timestamp string.
func ToHL7DateTime(v any) string {
	return toHL7DateTime(v, time.Now())
}

func toHL7DateTime(v any, now time.Time) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	t, err := time.Parse(dateTimeLayout, s)
	if err != nil {
		return ""
	}
	return toPast(t, now).Format("20060102150405")
}

// ToHL7Phone formats a phone number, parsed as a US number, into the
// areaCode^lastSevenDigits form used in PID-13. Returns "" when the number
// does not parse or degenerates to all zeros.
func ToHL7Phone(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	num, err := phonenumbers.Parse(s, "US")
	if err != nil {
		return ""
	}
	digits := strconv.FormatUint(num.GetNationalNumber(), 10)
	area := digits
	if len(digits) > 3 {
		area = digits[:3]
	}
	last := digits
	if len(digits) > 7 {
		last = digits[len(digits)-7:]
	}
	formatted := area + "^" + last
	if formatted == "0^0" {
		return ""
	}
	return formatted
}

// raceRule matches a free-text race either by prefix or by substring.
type raceRule struct {
	prefix   string
	contains string
	code     string
}

// raceRules are tested in order and the first match wins: "africa" must be
// tested after "black", and the substring rules interleave with the prefix
// rules. Codes are CDC race codes (HL70005).
var raceRules = []raceRule{
	{prefix: "w", code: "2106-3^White"},
	{prefix: "asian", code: "2028-9^Asian"},
	{prefix: "black", code: "2054-5^Black"},
	{prefix: "africa", code: "2054-5^African_American"},
	{contains: "alaska", code: "1002-5^alaska_native"},
	{prefix: "other", code: "2131-1^Other_Race"},
	{contains: "hawaii", code: "2076-8^native_hawaiian"},
	{contains: "pacific", code: "2076-8^pacific_islander"},
}

const raceOther = "2131-1^Other_Race"

// RaceCode maps a free-text race to its coded code^label pair. Unmatched and
// blank values map to Other Race.
func RaceCode(v any) string {
	s := strings.ToLower(StringOrCaret(v))
	for _, r := range raceRules {
		if r.prefix != "" && strings.HasPrefix(s, r.prefix) {
			return r.code
		}
		if r.contains != "" && strings.Contains(s, r.contains) {
			return r.code
		}
	}
	return raceOther
}

// EthnicityCode maps a free-text ethnicity to its coded code^label pair
// (HL70189). Unmatched and blank values map to Unknown.
func EthnicityCode(v any) string {
	s := strings.ToLower(StringOrCaret(v))
	switch {
	case strings.HasPrefix(s, "not"):
		return "N^Not Hispanic or Latino"
	case strings.HasPrefix(s, "hispanic"), strings.HasPrefix(s, "latino"):
		return "H^Hispanic or Latino"
	}
	return "U^Unknown"
}

// KeyForValue returns a key of m whose value contains fragment,
// case-insensitively. Map iteration order is not stable, so callers should
// only rely on the result when at most one value can match.
func KeyForValue(m map[string]string, fragment string) (string, bool) {
	f := strings.ToLower(fragment)
	for k, v := range m {
		if strings.Contains(strings.ToLower(v), f) {
			return k, true
		}
	}
	return "", false
}
