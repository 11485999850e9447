// internal/models/validation.go
package models

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gurkanbulca/taskboard/internal/apperror"
)

var (
	hexColorRegex = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Field length limits.
const (
	MinCategoryNameLength   = 2
	MaxCategoryNameLength   = 50
	MaxCategoryDescLength   = 500
	MinTagNameLength        = 2
	MaxTagNameLength        = 30
	MinTaskTitleLength      = 3
	MaxTaskTitleLength      = 100
	MaxTaskDescLength       = 1000
	MinPriority             = 0
	MaxPriority             = 5
	MinUserNameLength       = 2
	MaxUserNameLength       = 50
	MaxEmailLength          = 255
	DefaultCategoryColor    = "#007bff"
	DefaultTagColor         = "#6c757d"
	HighPriorityThreshold   = 4
	MediumPriority          = 3
	msgBlank                = "can't be blank"
	msgTaken                = "has already been taken"
	msgInvalidColor         = "must be a valid hex color"
	msgInvalidEmail         = "must be a valid email address"
	msgInvalidStatus        = "must be one of: pending, in_progress, completed, cancelled"
	msgTaskTagOwnerMismatch = "task and tag must belong to the same user"
)

// IsValidHexColor reports whether s is #RGB or #RRGGBB.
func IsValidHexColor(s string) bool {
	return hexColorRegex.MatchString(s)
}

// IsValidEmail reports whether s looks like an email address.
func IsValidEmail(s string) bool {
	return len(s) <= MaxEmailLength && emailRegex.MatchString(s)
}

// NameTaken is the violation reported when a per-owner unique name exists.
func NameTaken() apperror.Violation {
	return apperror.Violation{Field: "name", Message: msgTaken}
}

// EmailTaken is the violation reported for a duplicate email.
func EmailTaken() apperror.Violation {
	return apperror.Violation{Field: "email", Message: msgTaken}
}

// violations collects field errors for one candidate state.
type violations []apperror.Violation

func (v *violations) add(field, msg string) {
	*v = append(*v, apperror.Violation{Field: field, Message: msg})
}

func (v *violations) lengthBetween(field, value string, min, max int) {
	if strings.TrimSpace(value) == "" {
		v.add(field, msgBlank)
		return
	}
	if n := utf8.RuneCountInString(value); n < min || n > max {
		v.add(field, fmt.Sprintf("must be between %d and %d characters", min, max))
	}
}

func (v *violations) maxLength(field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("must not exceed %d characters", max))
	}
}

func (v *violations) color(value string) {
	switch {
	case value == "":
		v.add("color", msgBlank)
	case !IsValidHexColor(value):
		v.add("color", msgInvalidColor)
	}
}

func (v violations) err() error {
	if len(v) == 0 {
		return nil
	}
	return apperror.Validation(v...)
}
