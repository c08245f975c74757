// Package phone canonicalizes Kenyan mobile numbers. A single canonical
// form (digits only, 254XXXXXXXXX) is used for storage, user lookup and
// provider calls; the +-prefixed display form exists only at the WhatsApp
// send boundary.
package phone

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidPhone = errors.New("phone: invalid kenyan mobile number")

// Safaricom numbers start with 7, Airtel with 1.
var kenyanMobile = regexp.MustCompile(`^254[17]\d{8}$`)

const countryCode = "254"

// Canonicalize returns the digits-only 254XXXXXXXXX form without
// validating it. Deterministic and idempotent.
func Canonicalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	switch {
	case strings.HasPrefix(cleaned, countryCode):
		return cleaned
	case strings.HasPrefix(cleaned, "0"):
		// national trunk prefix
		return countryCode + cleaned[1:]
	default:
		return countryCode + cleaned
	}
}

// Normalize canonicalizes raw and validates the result.
func Normalize(raw string) (string, error) {
	c := Canonicalize(raw)
	if !kenyanMobile.MatchString(c) {
		return "", ErrInvalidPhone
	}
	return c, nil
}

func Valid(raw string) bool {
	return kenyanMobile.MatchString(Canonicalize(raw))
}

// Display returns the +-prefixed form expected by messaging channels.
func Display(canonical string) string {
	if strings.HasPrefix(canonical, "+") {
		return canonical
	}
	return "+" + canonical
}
