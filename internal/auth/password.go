package auth

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for password hashing.
const BcryptCost = 12

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 7

var (
	ErrWeakPassword = errors.New("password must be at least 7 characters with an uppercase letter, a digit and a symbol")
)

// HashPassword hashes a plaintext password with bcrypt. Surrounding
// whitespace is stripped first; it is never significant in credentials.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(plain)), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// A wrong password is a plain false, never an error.
func VerifyPassword(plain, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(strings.TrimSpace(plain)))
	return err == nil
}

// ValidatePasswordStrength enforces the account password rule: minimum
// length 7 with at least one uppercase letter, one digit and one character
// that is neither letter nor digit.
func ValidatePasswordStrength(plain string) error {
	plain = strings.TrimSpace(plain)
	if len(plain) < MinPasswordLength {
		return ErrWeakPassword
	}

	var upper, digit, symbol bool
	for _, r := range plain {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r):
			symbol = true
		}
	}
	if !upper || !digit || !symbol {
		return ErrWeakPassword
	}
	return nil
}
