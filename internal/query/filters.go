// internal/query/filters.go
package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/gurkanbulca/taskboard/internal/apperror"
	"github.com/gurkanbulca/taskboard/internal/models"
)

// PopularThreshold is the usage percentage a tag must exceed to be popular.
const PopularThreshold = 50.0

// TaskFilter selects an owner's tasks. Set fields combine with AND.
type TaskFilter struct {
	Status     *models.TaskStatus
	Priority   *int
	CategoryID *uuid.UUID
	TagID      *uuid.UUID
	Overdue    bool
	DueSoon    bool
	Search     string
}

type TaskQuery struct {
	Filter TaskFilter
	Sort   Sort
	Page   Page
}

// GroupFilter selects an owner's categories or tags. Color and Popular
// apply to tags only.
type GroupFilter struct {
	Search    string
	WithTasks bool
	Unused    bool
	Color     string
	Popular   bool
}

type GroupQuery struct {
	Filter GroupFilter
	Sort   Sort
	Page   Page
}

// ParseTaskQuery reads task list options. Malformed status, priority or id
// values are rejected; unknown sort keys fall back to the default order.
func ParseTaskQuery(v url.Values) (TaskQuery, error) {
	q := TaskQuery{
		Sort: TaskSort(v.Get("sort_by"), v.Get("order")),
		Page: parsePage(v),
	}
	f := &q.Filter

	if s := v.Get("status"); s != "" {
		st := models.TaskStatus(s)
		if !st.Valid() {
			return q, apperror.Malformed("invalid status filter: " + s)
		}
		f.Status = &st
	}
	if s := v.Get("priority"); s != "" {
		p, err := strconv.Atoi(s)
		if err != nil {
			return q, apperror.Malformed("invalid priority filter: " + s)
		}
		f.Priority = &p
	}
	var err error
	if f.CategoryID, err = parseID(v, "category_id"); err != nil {
		return q, err
	}
	if f.TagID, err = parseID(v, "tag_id"); err != nil {
		return q, err
	}
	f.Overdue = flag(v, "overdue")
	f.DueSoon = flag(v, "due_soon")
	f.Search = strings.TrimSpace(v.Get("search"))
	return q, nil
}

// ParseCategoryQuery reads category list options; "empty" selects
// categories without tasks.
func ParseCategoryQuery(v url.Values) GroupQuery {
	return GroupQuery{
		Filter: GroupFilter{
			Search:    strings.TrimSpace(v.Get("search")),
			WithTasks: flag(v, "with_tasks"),
			Unused:    flag(v, "empty"),
		},
		Sort: GroupSort(v.Get("sort_by"), v.Get("order")),
		Page: parsePage(v),
	}
}

func ParseTagQuery(v url.Values) GroupQuery {
	return GroupQuery{
		Filter: GroupFilter{
			Search:    strings.TrimSpace(v.Get("search")),
			WithTasks: flag(v, "with_tasks"),
			Unused:    flag(v, "unused"),
			Color:     v.Get("color"),
			Popular:   flag(v, "popular"),
		},
		Sort: GroupSort(v.Get("sort_by"), v.Get("order")),
		Page: parsePage(v),
	}
}

// UsagePercentage is tagged/total as a percentage rounded to one decimal.
// It is 0 when the owner has no tasks.
func UsagePercentage(tagged, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(tagged)/float64(total)*1000) / 10
}

func IsPopular(tagged, total int) bool {
	return UsagePercentage(tagged, total) > PopularThreshold
}

// PopularTagIDs is the in-process phase of the popular filter: given the
// per-tag usage counts of one owner, it returns the ids above the threshold.
func PopularTagIDs(usage map[uuid.UUID]int, total int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(usage))
	for id, n := range usage {
		if IsPopular(n, total) {
			ids = append(ids, id)
		}
	}
	return ids
}

func parseID(v url.Values, key string) (*uuid.UUID, error) {
	s := v.Get(key)
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, apperror.Malformed("invalid " + key + ": " + s)
	}
	return &id, nil
}

func flag(v url.Values, key string) bool {
	return v.Get(key) == "true"
}
