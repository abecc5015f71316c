package entity

import (
	"regexp"
	"strings"
)

const countryCodeKR = "82"

// Korean mobile subscriber number without the national 0 prefix:
// 10, 11, 16, 17, 18 or 19 followed by 7 or 8 digits.
var mobileKR = regexp.MustCompile(`^1[016789][0-9]{7,8}$`)

// PhoneNumber is a Korean mobile number in canonical form: country code 82
// followed by the subscriber number, digits only (e.g. 821012345678).
type PhoneNumber string

// ParsePhoneNumber normalizes user input into its canonical form. It accepts
// spaces, hyphens, dots and parentheses, a +82 / 0082 / 82 country prefix and
// the domestic 0 prefix. Anything else fails with ErrInvalidPhone.
func ParsePhoneNumber(raw string) (PhoneNumber, error) {
	s := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.', '(', ')', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	international := false
	switch {
	case strings.HasPrefix(s, "+"):
		s, international = s[1:], true
	case strings.HasPrefix(s, "00"+countryCodeKR):
		s, international = s[2:], true
	}

	var subscriber string
	switch {
	case strings.HasPrefix(s, countryCodeKR):
		// +82 (0)10-... is common on business cards
		subscriber = strings.TrimPrefix(s[len(countryCodeKR):], "0")
	case !international && strings.HasPrefix(s, "0"):
		subscriber = s[1:]
	default:
		return "", NewError(ErrInvalidPhone, nil)
	}

	if !mobileKR.MatchString(subscriber) {
		return "", NewError(ErrInvalidPhone, nil)
	}

	return PhoneNumber(countryCodeKR + subscriber), nil
}

// String returns the canonical digits.
func (p PhoneNumber) String() string { return string(p) }

// National renders the domestic form (01012345678) used as SMS recipient.
func (p PhoneNumber) National() string {
	return "0" + strings.TrimPrefix(string(p), countryCodeKR)
}
