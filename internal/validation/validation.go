package validation

import (
	"errors"
	"strings"
	"unicode"
)

// ErrPlaceNameEmpty is returned when a place name is empty or whitespace-only after trim.
var ErrPlaceNameEmpty = errors.New("location_name is required")

// ErrPlaceNameTooShort is returned when a place name is below the minimum length.
var ErrPlaceNameTooShort = errors.New("location_name too short")

// ErrPlaceNameTooLong is returned when a place name exceeds the maximum length.
var ErrPlaceNameTooLong = errors.New("location_name too long")

// ErrPlaceNameInvalidChars is returned when a place name contains disallowed characters.
var ErrPlaceNameInvalidChars = errors.New("location_name contains invalid characters")

// ErrTextEmpty is returned when text to translate is blank.
var ErrTextEmpty = errors.New("text is required")

// ErrTextTooLong is returned when text to translate exceeds the maximum length.
var ErrTextTooLong = errors.New("text too long")

// ErrLanguageInvalid is returned for language codes that are not 2-3 ASCII letters.
var ErrLanguageInvalid = errors.New("language code must be 2 or 3 letters")

// ValidatePlaceName trims the input, enforces length bounds (minLen, maxLen in runes),
// and restricts to allowed characters: letters and combining marks (Unicode), digits,
// space, comma, hyphen, period, apostrophe. Returns the trimmed string.
func ValidatePlaceName(input string, minLen, maxLen int) (string, error) {
	s := strings.TrimSpace(input)
	r := []rune(s)
	n := len(r)
	if n == 0 {
		return "", ErrPlaceNameEmpty
	}
	if minLen > 0 && n < minLen {
		return "", ErrPlaceNameTooShort
	}
	if maxLen > 0 && n > maxLen {
		return "", ErrPlaceNameTooLong
	}
	for _, c := range r {
		if !isAllowedPlaceRune(c) {
			return "", ErrPlaceNameInvalidChars
		}
	}
	return s, nil
}

// isAllowedPlaceRune accepts decomposed Vietnamese (base letter plus combining mark) as well as precomposed.
func isAllowedPlaceRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsNumber(r) {
		return true
	}
	switch r {
	case ' ', ',', '-', '.', '\'':
		return true
	}
	return false
}

// ValidateText checks free text submitted for translation. Length is counted in runes.
// The text is returned unmodified apart from surrounding whitespace.
func ValidateText(input string, maxLen int) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", ErrTextEmpty
	}
	if maxLen > 0 && len([]rune(s)) > maxLen {
		return "", ErrTextTooLong
	}
	return s, nil
}

// ValidateLanguage lowercases and checks a language code. An empty code returns def.
func ValidateLanguage(code, def string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(code))
	if s == "" {
		return def, nil
	}
	if len(s) < 2 || len(s) > 3 {
		return "", ErrLanguageInvalid
	}
	for _, c := range s {
		if c < 'a' || c > 'z' {
			return "", ErrLanguageInvalid
		}
	}
	return s, nil
}
