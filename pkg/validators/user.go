package validators

import (
	"errors"
	"regexp"
	"unicode/utf8"
)

var (
	ErrUserIDEmpty     = errors.New("no user id provided")
	ErrUserIDInvalid   = errors.New("user id must be 4-50 characters of letters, digits, '_', '-' or '.'")
	ErrNicknameEmpty   = errors.New("no nickname provided")
	ErrNicknameTooLong = errors.New("nickname can't be longer than 15 characters")
	ErrUnknownField    = errors.New("field must be one of user_id, nickname or email")
)

var userIDRe = regexp.MustCompile(`^[A-Za-z0-9_.-]{4,50}$`)

// UserIDValidator checks a login name
func UserIDValidator(id string) error {
	if id == "" {
		return ErrUserIDEmpty
	}

	if !userIDRe.MatchString(id) {
		return ErrUserIDInvalid
	}

	return nil
}

func NicknameValidator(n string) error {
	if n == "" {
		return ErrNicknameEmpty
	}

	if utf8.RuneCountInString(n) > 15 {
		return ErrNicknameTooLong
	}

	return nil
}

// UniqueFieldValidator validates value with the rules of the named unique
// user column
func UniqueFieldValidator(field, value string) error {
	switch field {
	case "user_id":
		return UserIDValidator(value)
	case "nickname":
		return NicknameValidator(value)
	case "email":
		return EmailValidator(value)
	default:
		return ErrUnknownField
	}
}
