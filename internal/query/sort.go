// internal/query/sort.go
package query

import "strings"

// SortKey names a sortable attribute. The repository maps keys to columns
// or expressions.
type SortKey string

const (
	SortCreatedAt  SortKey = "created_at"
	SortDueDate    SortKey = "due_date"
	SortPriority   SortKey = "priority"
	SortTitle      SortKey = "title"
	SortName       SortKey = "name"
	SortTasksCount SortKey = "tasks_count"
)

// Sort is the primary order of a list. Every rendered order ends with
// id ascending so ties never reorder between pages.
type Sort struct {
	Key       SortKey
	Desc      bool
	NullsLast bool
}

// direction reports whether the order option asks for descending, falling
// back to def when it is absent or unrecognized.
func direction(order string, def bool) bool {
	switch strings.ToLower(order) {
	case "asc":
		return false
	case "desc":
		return true
	default:
		return def
	}
}

// TaskSort resolves sort_by/order for tasks. Unknown keys sort by newest
// first. due_date is ascending only and puts tasks without one last.
func TaskSort(sortBy, order string) Sort {
	switch SortKey(sortBy) {
	case SortDueDate:
		return Sort{Key: SortDueDate, NullsLast: true}
	case SortPriority:
		return Sort{Key: SortPriority, Desc: direction(order, true)}
	case SortTitle:
		return Sort{Key: SortTitle, Desc: direction(order, false)}
	default:
		return Sort{Key: SortCreatedAt, Desc: direction(order, true)}
	}
}

// GroupSort resolves sort_by/order for categories and tags. "usage" and
// "tasks_count" are the same key; count and created_at default to descending.
func GroupSort(sortBy, order string) Sort {
	switch sortBy {
	case "tasks_count", "usage":
		return Sort{Key: SortTasksCount, Desc: direction(order, true)}
	case "created_at":
		return Sort{Key: SortCreatedAt, Desc: direction(order, true)}
	default:
		return Sort{Key: SortName, Desc: direction(order, false)}
	}
}
