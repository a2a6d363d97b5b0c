package service

import (
	"strings"
	"unicode"
)

const minPasswordLength = 8

var commonPasswords = map[string]struct{}{}

func init() {
	for _, p := range strings.Fields(`
		123456 123456789 12345678 1234567890 12345 1234567 password password1 password123
		qwerty qwerty123 qwertyuiop abc123 111111 000000 123123 654321 iloveyou admin
		admin123 welcome welcome1 letmein monkey dragon football baseball sunshine princess
		master shadow superman trustno1 passw0rd login starwars whatever freedom charlie
		michael jennifer hunter2 changeme secret 1q2w3e4r zaq12wsx asdfghjkl`) {
		commonPasswords[p] = struct{}{}
	}
}

type passwordAttribute struct {
	label string
	value string
}

// checkPassword returns every strength rule the password breaks, in a stable order.
func checkPassword(password string, attrs []passwordAttribute) []string {
	var problems []string

	lower := strings.ToLower(password)
	for _, a := range attrs {
		if tooSimilar(lower, strings.ToLower(a.value)) {
			problems = append(problems, "The password is too similar to the "+a.label+".")
			break
		}
	}
	if len([]rune(password)) < minPasswordLength {
		problems = append(problems, "This password is too short. It must contain at least 8 characters.")
	}
	if _, ok := commonPasswords[lower]; ok {
		problems = append(problems, "This password is too common.")
	}
	if isNumeric(password) {
		problems = append(problems, "This password is entirely numeric.")
	}
	return problems
}

// tooSimilar reports whether one string contains the other, also comparing against the parts
// of value split on non-alphanumeric characters. Parts shorter than 3 runes are ignored.
func tooSimilar(password, value string) bool {
	if value == "" || password == "" {
		return false
	}
	candidates := append([]string{value}, strings.FieldsFunc(value, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})...)
	for _, c := range candidates {
		if len([]rune(c)) < 3 {
			continue
		}
		if strings.Contains(password, c) || strings.Contains(c, password) {
			return true
		}
	}
	return false
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
