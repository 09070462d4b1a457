// Package phone normalizes client phone numbers to E.164.
package phone

import (
	"errors"
	"strings"

	"github.com/ttacon/libphonenumber"
)

// ErrInvalid is returned for numbers that do not parse or are not assigned.
var ErrInvalid = errors.New("invalid phone number")

// Normalize parses raw in the given default region (ISO 3166 alpha-2) and
// returns it in E.164 form. Numbers with a leading + keep their own region.
func Normalize(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalid
	}

	num, err := libphonenumber.Parse(raw, strings.ToUpper(region))
	if err != nil {
		return "", ErrInvalid
	}
	if !libphonenumber.IsValidNumber(num) {
		return "", ErrInvalid
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}

// NormalizeOrKeep returns the E.164 form when raw is valid, otherwise the
// trimmed input. Imported rows keep whatever the collector typed.
func NormalizeOrKeep(raw, region string) string {
	if n, err := Normalize(raw, region); err == nil {
		return n
	}
	return strings.TrimSpace(raw)
}
