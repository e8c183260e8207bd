package authentication

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"vaidya/models"
)

// bcrypt cost matching the original deployment's 10 rounds.
const hashCost = 10

// HashPassword hashes a plaintext password with a per-call random salt.
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), hashCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether candidate matches the stored hash. A plain
// mismatch is a false result, not an error; err is set only for an internal
// hashing failure (e.g. a corrupt stored hash).
func CheckPassword(hash, candidate string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}

// SetPassword hashes plain and stores it on the account. This is the only
// path that writes the password field, so an already-hashed value is never
// re-hashed.
func SetPassword(account models.Account, plain string) error {
	hashed, err := HashPassword(plain)
	if err != nil {
		return err
	}
	account.SetPasswordHash(hashed)
	return nil
}
