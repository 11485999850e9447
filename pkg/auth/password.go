// pkg/auth/password.go
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrWeakPassword         = errors.New("password does not meet requirements")
	ErrPasswordConfirmation = errors.New("password confirmation doesn't match")
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// PasswordManager handles password hashing and validation
type PasswordManager struct {
	minLength int
	cost      int
}

// NewPasswordManager creates a new password manager with default settings
func NewPasswordManager() *PasswordManager {
	return &PasswordManager{
		minLength: MinPasswordLength,
		cost:      12,
	}
}

// NewPasswordManagerWithCost is NewPasswordManager with a custom bcrypt
// cost. Tests use bcrypt.MinCost to stay fast.
func NewPasswordManagerWithCost(cost int) *PasswordManager {
	pm := NewPasswordManager()
	pm.cost = cost
	return pm
}

// HashPassword hashes a password using bcrypt
func (pm *PasswordManager) HashPassword(password string) (string, error) {
	if err := pm.ValidatePassword(password); err != nil {
		return "", err
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), pm.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hashedBytes), nil
}

// ComparePassword compares a password with a hash
func (pm *PasswordManager) ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword checks if a password meets the requirements
func (pm *PasswordManager) ValidatePassword(password string) error {
	if len(password) < pm.minLength {
		return fmt.Errorf("%w: minimum length is %d characters", ErrWeakPassword, pm.minLength)
	}
	return nil
}

// ConfirmPassword checks an optional confirmation against the password.
// A nil confirmation is accepted.
func ConfirmPassword(password string, confirmation *string) error {
	if confirmation != nil && *confirmation != password {
		return ErrPasswordConfirmation
	}
	return nil
}
