// internal/models/task_tag.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskTag links a task to a tag of the same owner.
type TaskTag struct {
	TaskID    uuid.UUID `db:"task_id"`
	TagID     uuid.UUID `db:"tag_id"`
	CreatedAt time.Time `db:"created_at"`
}

// LinkTags builds the link rows for task and tags.
//
// A (task, tag) pair may appear only once and every tag must share the
// task's owner. All violations are reported together; no links are returned
// unless the whole set is valid.
func LinkTags(task *Task, tags []Tag, now time.Time) ([]TaskTag, error) {
	var v violations
	seen := make(map[uuid.UUID]bool, len(tags))
	links := make([]TaskTag, 0, len(tags))
	for _, tag := range tags {
		if seen[tag.ID] {
			v.add("tag_ids", "task already has tag "+tag.ID.String())
			continue
		}
		seen[tag.ID] = true
		if tag.UserID != task.UserID {
			v.add("tag_ids", msgTaskTagOwnerMismatch)
			continue
		}
		links = append(links, TaskTag{TaskID: task.ID, TagID: tag.ID, CreatedAt: now})
	}
	if err := v.err(); err != nil {
		return nil, err
	}
	return links, nil
}
