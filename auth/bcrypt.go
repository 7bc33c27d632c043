package auth

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the bcrypt work factor used for new hashes. Tests lower it
// to keep hashing fast; verification reads the cost from the hash itself.
var BcryptCost = 12

// HashPassword will generate a salted bcrypt hash for the given password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyPassword
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}
	return string(h), nil
}

// ComparePasswordAndHash will validate the given cleartext password against
// the stored hash. A mismatch returns ErrMismatchedHashAndPassword; an empty
// candidate is an error rather than a silent mismatch.
func ComparePasswordAndHash(password, hash string) error {
	if password == "" {
		return ErrNoEmptyPassword
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to compare password and hash")
	}
	return nil
}
