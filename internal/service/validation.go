package service

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"socialhub/internal/model"
)

const (
	msgRequired     = "This field is required."
	msgInvalidEmail = "Enter a valid email address."
)

func msgMaxLength(n int) string {
	return fmt.Sprintf("Ensure this field has no more than %d characters.", n)
}

func msgUnknownPK(id int64) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}

// checkPage rejects a page past the end of a count-sized result.
func checkPage(page model.Page, count int) error {
	if !page.InRange(count) {
		return model.ErrInvalidPage
	}
	return nil
}

// validEmail accepts a bare address. Empty is allowed; the field is optional.
func validEmail(email string) bool {
	if email == "" {
		return true
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	domain := email[strings.LastIndex(email, "@")+1:]
	return strings.Contains(domain, ".") || domain == "localhost"
}

func tooLong(s string, max int) bool {
	return utf8.RuneCountInString(s) > max
}
