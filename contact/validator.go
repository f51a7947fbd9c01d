package contact

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	namePattern   = regexp.MustCompile(`^[a-zA-ZáéíóúüÁÉÍÓÚÜçÇñÑ ]*$`)
	whitespaceRun = regexp.MustCompile(`\s+`)

	// local part: starts and ends with a letter or digit, '.', '_' and '-'
	// allowed in between. domain: alphanumeric runs joined by a single '-',
	// then one or two suffixes of 2-4 letters (host.com, host.co.uk).
	// Doubled separators are rejected by IsValidEmail.
	emailPattern = regexp.MustCompile(
		`^[a-zA-Z0-9](?:[a-zA-Z0-9._-]*[a-zA-Z0-9])?` +
			`@[a-zA-Z0-9]+(?:-[a-zA-Z0-9]+)*` +
			`(?:\.[a-zA-Z]{2,4}){1,2}$`,
	)
)

// IsValidName reports whether s only holds letters of the supported
// alphabet and plain spaces. The empty string is valid; blankness is
// checked separately.
func IsValidName(s string) bool {
	return namePattern.MatchString(s)
}

// NormalizeWhitespace replaces every run of whitespace with one space.
func NormalizeWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(s, " ")
}

var doubledSeparators = []string{"..", "__", "--"}

// IsValidEmail reports whether s is an acceptable email address. Mixed
// separator pairs such as ".-" are allowed; the same separator twice in a
// row is not.
func IsValidEmail(s string) bool {
	if !emailPattern.MatchString(s) {
		return false
	}
	for _, d := range doubledSeparators {
		if strings.Contains(s, d) {
			return false
		}
	}
	return true
}

func isEmailInputRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("._-@", r)
}

// IsAllowedEmailInput reports whether s only holds characters that may be
// typed into the email field: letters, digits and ". _ - @".
func IsAllowedEmailInput(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !isEmailInputRune(r) }) == -1
}

// FilterNameInput returns the value the name field should show after a
// keystroke turned previous into candidate. Rejected keystrokes keep the
// previous value.
func FilterNameInput(previous, candidate string) string {
	if !IsValidName(candidate) {
		return previous
	}
	return NormalizeWhitespace(candidate)
}

// FilterEmailInput returns candidate with every character that may not be
// typed into the email field removed. Unlike FilterNameInput it never
// rejects the whole keystroke, so a pasted value keeps its allowed part.
func FilterEmailInput(_, candidate string) string {
	if IsAllowedEmailInput(candidate) {
		return candidate
	}
	return strings.Map(func(r rune) rune {
		if isEmailInputRune(r) {
			return r
		}
		return -1
	}, candidate)
}
