package utils

import (
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Password policy errors. Detail strings are the user-facing messages
// returned in field-level validation responses.
var (
	ErrPasswordTooShort  = errors.New("La contraseña debe tener al menos 8 caracteres.")
	ErrPasswordAllDigits = errors.New("La contraseña no puede ser completamente numérica.")
)

// HashPassword returns a bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares a bcrypt hash and a plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// ValidatePassword enforces the account password policy: minimum eight
// characters and not entirely numeric.
func ValidatePassword(plain string) error {
	if len(plain) < 8 {
		return ErrPasswordTooShort
	}
	allDigits := true
	for _, r := range plain {
		if !unicode.IsDigit(r) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return ErrPasswordAllDigits
	}
	return nil
}
