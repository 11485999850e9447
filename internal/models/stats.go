// internal/models/stats.go
package models

// Stats is a system-wide snapshot computed at request time.
type Stats struct {
	Users      UserStats     `json:"users"`
	Tasks      TaskStats     `json:"tasks"`
	Categories CategoryStats `json:"categories"`
	Tags       TagStats      `json:"tags"`
}

type UserStats struct {
	Total   int `json:"total"`
	Admins  int `json:"admins"`
	Regular int `json:"regular"`
}

type TaskStats struct {
	Total      int             `json:"total"`
	ByStatus   StatusBuckets   `json:"by_status"`
	ByPriority PriorityBuckets `json:"by_priority"`
	Overdue    int             `json:"overdue"`
	DueSoon    int             `json:"due_soon"`
}

type StatusBuckets struct {
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
}

// PriorityBuckets splits tasks into high (>= 4), medium (3) and low (<= 2).
type PriorityBuckets struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type CategoryStats struct {
	Total     int `json:"total"`
	WithTasks int `json:"with_tasks"`
}

type TagStats struct {
	Total int `json:"total"`
	Used  int `json:"used"`
}
