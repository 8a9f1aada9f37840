package store

import "strings"

// NormalizePhone strips a phone number to its digits, dropping the leading
// plus, separators, and whitespace. "+996 555-123-456" → "996555123456".
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
