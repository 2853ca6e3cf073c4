package session

import (
	"strings"
	"unicode"

	"github.com/radieske/wisebet-storefront-poc/internal/faults"
)

// Regras de validação local, aplicadas antes de qualquer chamada de rede.

const (
	minUsernameLen = 3
	minPasswordLen = 8
)

func validateLogin(c Credentials) error {
	if strings.TrimSpace(c.Username) == "" {
		return &faults.ValidationError{Field: "username", Message: "required"}
	}
	if c.Password == "" {
		return &faults.ValidationError{Field: "password", Message: "required"}
	}
	return nil
}

func validateRegistration(r Registration) error {
	if len(strings.TrimSpace(r.Username)) < minUsernameLen {
		return &faults.ValidationError{Field: "username", Message: "must have at least 3 characters"}
	}
	if !strings.Contains(r.Email, "@") {
		return &faults.ValidationError{Field: "email", Message: "invalid email address"}
	}
	if err := checkPassword(r.Password); err != nil {
		return err
	}
	if r.Password != r.ConfirmPassword {
		return &faults.ValidationError{Field: "confirmPassword", Message: "passwords do not match"}
	}
	return nil
}

func checkPassword(p string) error {
	if len(p) < minPasswordLen {
		return &faults.ValidationError{Field: "password", Message: "must have at least 8 characters"}
	}
	var hasLetter, hasDigit bool
	for _, r := range p {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return &faults.ValidationError{Field: "password", Message: "must mix letters and digits"}
	}
	return nil
}
