package service

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// tagStorable rejects text a PostgreSQL TEXT/VARCHAR column refuses
// (SQLSTATE 22021): invalid UTF-8 and NUL bytes.
const tagStorable = "storable"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation(tagStorable, func(fl validator.FieldLevel) bool {
		return IsStorableText(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

type credentialsInput struct {
	Username string `validate:"required,storable,max=80"`
	Password string `validate:"required,max=256"`
}

type contentInput struct {
	Content string `validate:"required,storable,max=200"`
}

// IsStorableText reports whether s is valid UTF-8 without NUL bytes.
func IsStorableText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}

// NormalizeUsername trims surrounding whitespace. Comparison stays case-sensitive.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// NormalizeContent trims surrounding whitespace from todo content.
func NormalizeContent(content string) string {
	return strings.TrimSpace(content)
}

func validateCredentials(username, password string) error {
	err := validate.Struct(credentialsInput{Username: username, Password: password})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		if fe.Field() == "Username" {
			return ErrInvalidUsername
		}
	}
	return ErrInvalidPassword
}

// ValidateContent checks already-normalized todo content.
func ValidateContent(content string) error {
	err := validate.Struct(contentInput{Content: content})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	switch verrs[0].Tag() {
	case "max":
		return ErrContentTooLong
	case tagStorable:
		return ErrContentInvalid
	}
	return ErrContentRequired
}
