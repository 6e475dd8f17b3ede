package checkout

import "strings"

const (
	cardDigits   = 16
	expiryDigits = 4
	phoneDigits  = 10
)

// FormatCardNumber groups card digits in blocks of four, e.g. "4242 4242 4242 4242".
// Anything past sixteen digits is dropped.
func FormatCardNumber(raw string) string {
	digits := truncate(onlyDigits(raw), cardDigits)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatExpiryDate inserts the MM/YY slash once two digits are present.
// Digits past the year are dropped.
func FormatExpiryDate(raw string) string {
	digits := truncate(onlyDigits(raw), expiryDigits)
	if len(digits) < 2 {
		return digits
	}
	return digits[:2] + "/" + digits[2:]
}

// FormatPhoneNumber renders exactly ten digits as (xxx) xxx-xxxx. Any other
// input is returned unchanged.
func FormatPhoneNumber(raw string) string {
	digits := onlyDigits(raw)
	if len(digits) != phoneDigits {
		return raw
	}
	return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
}

// MaskCardNumber hides everything but the last four digits.
func MaskCardNumber(raw string) string {
	last4 := CardLast4(raw)
	if last4 == "" {
		return ""
	}
	return "**** **** **** " + last4
}

// CardLast4 returns the trailing four digits of a card number, or "" when
// fewer than four digits are present.
func CardLast4(raw string) string {
	digits := onlyDigits(raw)
	if len(digits) < 4 {
		return ""
	}
	return digits[len(digits)-4:]
}

func onlyDigits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func truncate(value string, max int) string {
	if len(value) > max {
		return value[:max]
	}
	return value
}
