// internal/models/task_status.go
package models

import "github.com/gurkanbulca/taskboard/internal/apperror"

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// TaskStatuses lists every status in lifecycle order.
var TaskStatuses = []TaskStatus{
	TaskStatusPending,
	TaskStatusInProgress,
	TaskStatusCompleted,
	TaskStatusCancelled,
}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether only uncomplete can leave the status.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled
}

// IsActive reports whether the task is still open. Active tasks need a due date.
func (s TaskStatus) IsActive() bool {
	return s == TaskStatusPending || s == TaskStatusInProgress
}

// Transition names a state machine operation.
type Transition string

const (
	TransitionComplete   Transition = "complete"
	TransitionCancel     Transition = "cancel"
	TransitionStart      Transition = "start_progress"
	TransitionUncomplete Transition = "uncomplete"
)

// ErrTaskNotFinished is returned by uncomplete on a non-terminal task.
const ErrTaskNotFinished = "task is not finished"

// target returns the status the transition leads to from s, and whether
// the transition is allowed from s at all.
func (tr Transition) target(s TaskStatus) (TaskStatus, bool) {
	switch tr {
	case TransitionComplete:
		return TaskStatusCompleted, s.IsActive()
	case TransitionCancel:
		return TaskStatusCancelled, s.IsActive()
	case TransitionStart:
		return TaskStatusInProgress, s == TaskStatusPending
	case TransitionUncomplete:
		return TaskStatusPending, s.IsTerminal()
	default:
		return s, false
	}
}

// Valid reports whether tr is a known transition.
func (tr Transition) Valid() bool {
	switch tr {
	case TransitionComplete, TransitionCancel, TransitionStart, TransitionUncomplete:
		return true
	default:
		return false
	}
}

// Apply runs the transition on t in place.
//
// complete, cancel and start_progress are guarded no-ops from an ineligible
// state: changed is false and err is nil. uncomplete from a non-terminal
// state is a conflict. A status change re-runs validation because the due
// date requirement depends on the status; on failure t is left unchanged.
func (t *Task) Apply(tr Transition) (changed bool, err error) {
	if !tr.Valid() {
		return false, apperror.Malformed("unknown transition " + string(tr))
	}
	to, ok := tr.target(t.Status)
	if !ok {
		if tr == TransitionUncomplete {
			return false, apperror.Conflict(ErrTaskNotFinished)
		}
		return false, nil
	}

	candidate := *t
	candidate.Status = to
	if err := candidate.Validate(); err != nil {
		return false, err
	}
	t.Status = to
	return true, nil
}
