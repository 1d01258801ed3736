package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tartampluch/go-contacts/internal/config"
)

// FormatPhoneForDisplay formats a bare 10-digit string as (XXX) XXX-XXXX.
// Every other value, including already formatted and malformed ones, is returned unchanged.
func FormatPhoneForDisplay(raw string) string {
	if len(raw) != config.PhoneDigitCount || !isDigits(raw) {
		return raw
	}
	return FormatPhone(raw)
}

// FormatPhone renders exactly 10 digits as (XXX) XXX-XXXX.
// Inputs of any other shape are returned unchanged.
func FormatPhone(digits string) string {
	if len(digits) != config.PhoneDigitCount || !isDigits(digits) {
		return digits
	}
	return fmt.Sprintf(config.FormatPhone, digits[:3], digits[3:6], digits[6:])
}

// StripNonDigits keeps only the ASCII digits of s.
func StripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ValidatePhone strips non-digits from input and requires exactly 10 of them.
// It returns the bare digits; applying it to its own output is a no-op.
func ValidatePhone(input string) (string, error) {
	digits := StripNonDigits(input)
	if len(digits) != config.PhoneDigitCount {
		return "", &InvalidPhoneError{Input: input, Digits: digits}
	}
	return digits, nil
}

// Normalize maps stored records to display models in the given order.
// IDs are assigned 1..N and every entry starts checked.
func Normalize(records []ContactRecord) ContactList {
	list := make(ContactList, 0, len(records))
	for i, rec := range records {
		list = append(list, ContactDisplayModel{
			ID:       strconv.Itoa(i + 1),
			Name:     rec.Name,
			Phone:    FormatPhoneForDisplay(rec.Phone),
			RawPhone: rec.Phone,
			Checked:  true,
		})
	}
	return list
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
