package bot

import "regexp"

// nameRe accepts Latin and Cyrillic letters, spaces, and hyphens.
var nameRe = regexp.MustCompile(`^[A-Za-zА-Яа-яЁё\s-]+$`)

// phoneRe accepts an optional leading plus and 10–15 digits.
var phoneRe = regexp.MustCompile(`^\+?\d{10,15}$`)

// IsValidName reports whether a first or last name contains only letters of
// the two permitted alphabets, spaces, and hyphens.
func IsValidName(name string) bool {
	return name != "" && nameRe.MatchString(name)
}

// IsValidPhone reports whether a phone number matches the international
// pattern of 10–15 digits with an optional leading plus.
func IsValidPhone(phone string) bool {
	return phoneRe.MatchString(phone)
}

// isAllowedCity reports whether city is a member of the allow-list.
func isAllowedCity(cities []string, city string) bool {
	for _, c := range cities {
		if c == city {
			return true
		}
	}
	return false
}
