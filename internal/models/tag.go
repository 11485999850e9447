// internal/models/tag.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Tag labels tasks of one owner through TaskTag links.
type Tag struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Name      string    `db:"name"`
	Color     string    `db:"color"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type TagDraft struct {
	Name  *string
	Color *string
}

func (t *Tag) Merge(d TagDraft) {
	if d.Name != nil {
		t.Name = *d.Name
	}
	if d.Color != nil {
		t.Color = *d.Color
	}
}

func (t *Tag) ApplyDefaults() {
	if t.Color == "" {
		t.Color = DefaultTagColor
	}
}

func (t *Tag) Validate() error {
	var v violations
	v.lengthBetween("name", t.Name, MinTagNameLength, MaxTagNameLength)
	v.color(t.Color)
	return v.err()
}
