package identity

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const (
	minHandicap = -10.0
	maxHandicap = 54.0
)

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("email is invalid")
	}
	return nil
}

// NormalizePhone parses raw in the context of defaultRegion and returns it in
// E.164 form. An empty input yields an empty result.
func NormalizePhone(raw, defaultRegion string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	num, err := phonenumbers.Parse(raw, strings.ToUpper(defaultRegion))
	if err != nil {
		return "", fmt.Errorf("phone is invalid")
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("phone is invalid")
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func validateHandicap(handicap *float64) error {
	if handicap == nil {
		return nil
	}
	if *handicap < minHandicap || *handicap > maxHandicap {
		return fmt.Errorf("handicap must be between %.0f and %.0f", minHandicap, maxHandicap)
	}
	return nil
}
