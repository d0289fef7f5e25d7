package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const MinLength = 6

var ErrTooShort = errors.New("password is too short")

func Hash(plain string) (string, error) {
	if len(plain) < MinLength {
		return "", ErrTooShort
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Matches reports whether plain is the password behind hash. An empty hash
// never matches.
func Matches(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
