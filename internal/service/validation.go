package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	apperrors "github.com/spec-kit/raksha/pkg/util/errorutil"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nonDigits    = regexp.MustCompile(`[^0-9]`)
)

func invalid(field, message string) error {
	return apperrors.NewValidationError(message, map[string]any{"field": field})
}

func validateName(name string) error {
	if name == "" {
		return invalid("name", "Name is required")
	}
	if utf8.RuneCountInString(strings.TrimSpace(name)) < 2 {
		return invalid("name", "Name must be at least 2 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email", "Email is required")
	}
	if !emailPattern.MatchString(email) {
		return invalid("email", "Invalid email format")
	}
	return nil
}

func validatePhone(phone string) error {
	if phone == "" {
		return invalid("phone", "Phone number is required")
	}
	if len(nonDigits.ReplaceAllString(phone, "")) < 10 {
		return invalid("phone", "Phone number must be at least 10 digits")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return invalid("password", "Password is required")
	}
	if utf8.RuneCountInString(password) < 6 {
		return invalid("password", "Password must be at least 6 characters")
	}
	return nil
}

func validateComplaint(title, description string) error {
	if title == "" || description == "" {
		return apperrors.NewValidationError("Title and description are required", nil)
	}
	if utf8.RuneCountInString(title) < 5 {
		return invalid("title", "Title must be at least 5 characters")
	}
	if utf8.RuneCountInString(description) < 10 {
		return invalid("description", "Description must be at least 10 characters")
	}
	return nil
}
