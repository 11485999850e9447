// internal/models/user.go
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the identity root; it owns categories, tags and tasks.
type User struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	Name         string    `db:"name"`
	PasswordHash string    `db:"password_hash"`
	Admin        bool      `db:"admin"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type UserDraft struct {
	Email *string
	Name  *string
}

// Merge applies the draft; emails are stored lower-case so uniqueness is
// case-insensitive.
func (u *User) Merge(d UserDraft) {
	if d.Email != nil {
		u.Email = NormalizeEmail(*d.Email)
	}
	if d.Name != nil {
		u.Name = *d.Name
	}
}

func (u *User) Validate() error {
	var v violations
	switch {
	case strings.TrimSpace(u.Email) == "":
		v.add("email", msgBlank)
	case !IsValidEmail(u.Email):
		v.add("email", msgInvalidEmail)
	}
	v.lengthBetween("name", u.Name, MinUserNameLength, MaxUserNameLength)
	return v.err()
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
