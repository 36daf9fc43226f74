package handlers

import (
	"fmt"
	"net/mail"
	"unicode/utf8"
)

const (
	nameMaxLen     = 100
	passwordMinLen = 6
	// bcrypt only consumes the first 72 bytes and recent versions reject
	// longer inputs outright, so the cap lives here at the boundary.
	passwordMaxLen    = 72
	titleMaxLen       = 200
	descriptionMaxLen = 1000
)

// validEmail reports whether s is a bare, syntactically well-formed address.
// mail.ParseAddress also accepts the "Name <addr>" form, which we reject.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func validateEmail(email string) error {
	if !validEmail(email) {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

func validateName(name string) error {
	if n := utf8.RuneCountInString(name); n < 1 || n > nameMaxLen {
		return fmt.Errorf("name must be between 1 and %d characters", nameMaxLen)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < passwordMinLen || len(password) > passwordMaxLen {
		return fmt.Errorf("password must be between %d and %d characters", passwordMinLen, passwordMaxLen)
	}
	return nil
}

func validateTitle(title string) error {
	if n := utf8.RuneCountInString(title); n < 1 || n > titleMaxLen {
		return fmt.Errorf("title must be between 1 and %d characters", titleMaxLen)
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > descriptionMaxLen {
		return fmt.Errorf("description must be at most %d characters", descriptionMaxLen)
	}
	return nil
}
