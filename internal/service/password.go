package service

import (
	_ "embed"
	"regexp"
	"strings"
	"unicode/utf8"

	"socialhub/internal/model"
)

const (
	minPasswordLength     = 8
	maxPasswordSimilarity = 0.7
)

//go:embed common_passwords.txt
var commonPasswordsFile string

var commonPasswords = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, line := range strings.Split(commonPasswordsFile, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			set[strings.ToLower(line)] = struct{}{}
		}
	}
	return set
}()

var nonWord = regexp.MustCompile(`\W+`)

// ValidatePassword runs the strength checks and returns every failure
// message. An empty result means the password is acceptable.
func ValidatePassword(password string, user *model.User) []string {
	var problems []string

	if user != nil {
		if msg := similarityProblem(password, user); msg != "" {
			problems = append(problems, msg)
		}
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		problems = append(problems, "This password is too short. It must contain at least 8 characters.")
	}
	if _, common := commonPasswords[strings.ToLower(strings.TrimSpace(password))]; common {
		problems = append(problems, "This password is too common.")
	}
	if isNumeric(password) {
		problems = append(problems, "This password is entirely numeric.")
	}
	return problems
}

func similarityProblem(password string, user *model.User) string {
	attributes := []struct {
		value string
		label string
	}{
		{user.Username, "username"},
		{user.FirstName, "first name"},
		{user.LastName, "last name"},
		{user.Email, "email address"},
	}

	lowered := strings.ToLower(password)
	for _, attr := range attributes {
		if attr.value == "" {
			continue
		}
		parts := append(nonWord.Split(attr.value, -1), attr.value)
		for _, part := range parts {
			if exceedsLengthRatio(password, part) {
				continue
			}
			if quickRatio(lowered, strings.ToLower(part)) >= maxPasswordSimilarity {
				return "The password is too similar to the " + attr.label + "."
			}
		}
	}
	return ""
}

// exceedsLengthRatio skips attribute parts far shorter than the password; they
// cannot reach the similarity threshold.
func exceedsLengthRatio(password, value string) bool {
	pwdLen := utf8.RuneCountInString(password)
	valueLen := utf8.RuneCountInString(value)
	bound := maxPasswordSimilarity / 2 * float64(pwdLen)
	return pwdLen >= 10*valueLen && float64(valueLen) < bound
}

// quickRatio is an upper bound on sequence similarity: twice the size of the
// character multiset intersection over the combined length.
func quickRatio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1
	}
	counts := make(map[rune]int)
	for _, r := range b {
		counts[r]++
	}
	matches := 0
	for _, r := range a {
		if counts[r] > 0 {
			counts[r]--
			matches++
		}
	}
	return 2 * float64(matches) / float64(total)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
