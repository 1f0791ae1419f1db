package domain

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// NormalizeHandle trims and lowercases usernames and emails.
func NormalizeHandle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// TitleCase collapses whitespace and capitalizes each word of a display name.
func TitleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	return cases.Title(language.Und, cases.NoLower).String(strings.Join(words, " "))
}

func IsEmailValid(email string) bool {
	return emailPattern.MatchString(NormalizeHandle(email))
}

// IsBlank reports whether s is empty after trimming.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
