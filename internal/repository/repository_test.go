// internal/repository/repository_test.go
package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"entgo.io/ent/dialect"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurkanbulca/taskboard/internal/database"
	"github.com/gurkanbulca/taskboard/internal/models"
	"github.com/gurkanbulca/taskboard/internal/query"
	"github.com/gurkanbulca/taskboard/internal/repository"
)

var testNow = time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC)

// Test helpers
func setupTestStore(t *testing.T) *repository.Store {
	t.Helper()
	name := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(database.Config{Driver: dialect.SQLite, Path: name})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))
	return repository.NewStore(db)
}

func createUser(t *testing.T, r repository.Repos, email string) *models.User {
	t.Helper()
	u := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Test User",
		PasswordHash: "x",
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}
	require.NoError(t, r.Users.Create(context.Background(), u))
	return u
}

func createCategory(t *testing.T, r repository.Repos, owner uuid.UUID, name string) *models.Category {
	t.Helper()
	c := &models.Category{
		ID:        uuid.New(),
		UserID:    owner,
		Name:      name,
		Color:     models.DefaultCategoryColor,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	require.NoError(t, r.Categories.Create(context.Background(), c))
	return c
}

func createTag(t *testing.T, r repository.Repos, owner uuid.UUID, name string) *models.Tag {
	t.Helper()
	tag := &models.Tag{
		ID:        uuid.New(),
		UserID:    owner,
		Name:      name,
		Color:     models.DefaultTagColor,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	require.NoError(t, r.Tags.Create(context.Background(), tag))
	return tag
}

type taskOpt func(*models.Task)

func withDue(d time.Time) taskOpt { return func(t *models.Task) { t.DueDate = &d } }
func withoutDue() taskOpt         { return func(t *models.Task) { t.DueDate = nil } }
func withPriority(p int) taskOpt  { return func(t *models.Task) { t.Priority = p } }

func withCreated(c time.Time) taskOpt {
	return func(t *models.Task) { t.CreatedAt = c }
}

func withCategory(id uuid.UUID) taskOpt {
	return func(t *models.Task) { t.CategoryID = uuid.NullUUID{UUID: id, Valid: true} }
}

func withStatus(s models.TaskStatus) taskOpt {
	return func(t *models.Task) { t.Status = s }
}

func createTask(t *testing.T, r repository.Repos, owner uuid.UUID, title string, opts ...taskOpt) *models.Task {
	t.Helper()
	due := testNow.Add(48 * time.Hour)
	task := &models.Task{
		ID:        uuid.New(),
		UserID:    owner,
		Title:     title,
		Status:    models.TaskStatusPending,
		DueDate:   &due,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	for _, opt := range opts {
		opt(task)
	}
	require.NoError(t, r.Tasks.Create(context.Background(), task))
	return task
}

func tagTask(t *testing.T, r repository.Repos, task *models.Task, tags ...*models.Tag) {
	t.Helper()
	links := make([]models.TaskTag, 0, len(tags))
	for _, tag := range tags {
		links = append(links, models.TaskTag{TaskID: task.ID, TagID: tag.ID, CreatedAt: testNow})
	}
	require.NoError(t, r.Tasks.ReplaceTags(context.Background(), task.ID, links))
}

func titles(tasks []models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func TestCategoryRepository_NameUniquePerOwner(t *testing.T) {
	store := setupTestStore(t)
	r := store.Repos()
	ctx := context.Background()

	alice := createUser(t, r, "alice@example.com")
	bob := createUser(t, r, "bob@example.com")
	work := createCategory(t, r, alice.ID, "Work")

	taken, err := r.Categories.NameTaken(ctx, alice.ID, "Work", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = r.Categories.NameTaken(ctx, alice.ID, "Work", work.ID)
	require.NoError(t, err)
	assert.False(t, taken, "a row never collides with itself")

	taken, err = r.Categories.NameTaken(ctx, alice.ID, "work", uuid.Nil)
	require.NoError(t, err)
	assert.False(t, taken, "names are case-sensitive")

	dup := &models.Category{ID: uuid.New(), UserID: alice.ID, Name: "Work", Color: "#fff", CreatedAt: testNow, UpdatedAt: testNow}
	err = r.Categories.Create(ctx, dup)
	require.Error(t, err)
	assert.True(t, repository.IsUniqueViolation(err))

	createCategory(t, r, bob.ID, "Work")
}

func TestUserRepository_EmailCaseInsensitive(t *testing.T) {
	store := setupTestStore(t)
	r := store.Repos()
	ctx := context.Background()

	u := createUser(t, r, "alice@example.com")

	found, err := r.Users.GetByEmail(ctx, "  ALICE@example.com ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	taken, err := r.Users.EmailTaken(ctx, "Alice@Example.com", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, taken)

	_, err = r.Users.GetByEmail(ctx, "nobody@example.com")
	assert.True(t, repository.IsNotFound(err))
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	store := setupTestStore(t)
	r := store.Repos()
	ctx := context.Background()

	u := createUser(t, r, "alice@example.com")
	c := createCategory(t, r, u.ID, "Work")
	tag := createTag(t, r, u.ID, "urgent")
	task := createTask(t, r, u.ID, "Write report", withCategory(c.ID))
	tagTask(t, r, task, tag)

	require.NoError(t, r.Users.Delete(ctx, u.ID))

	_, err := r.Categories.Get(ctx, u.ID, c.ID)
	assert.True(t, repository.IsNotFound(err))
	_, err = r.Tags.Get(ctx, u.ID, tag.ID)
	assert.True(t, repository.IsNotFound(err))
	_, err = r.Tasks.Get(ctx, u.ID, task.ID)
	assert.True(t, repository.IsNotFound(err))

	n, err := r.Tags.ReferenceCount(ctx, tag.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCategoryRepository_DeleteDetachesTasks(t *testing.T) {
	store := setupTestStore(t)
	r := store.Repos()
	ctx := context.Background()

	u := createUser(t, r, "alice@example.com")
	c := createCategory(t, r, u.ID, "Work")
	task := createTask(t, r, u.ID, "Write report", withCategory(c.ID))

	n, err := r.Categories.ReferenceCount(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, r.Categories.Delete(ctx, c.ID))

	got, err := r.Tasks.Get(ctx, u.ID, task.ID)
	require.NoError(t, err)
	assert.False(t, got.CategoryID.Valid)
}

func TestRepositories_OwnerScopedGet(t *testing.T) {
	store := setupTestStore(t)
	r := store.Repos()
	ctx := context.Background()

	alice := createUser(t, r, "alice@example.com")
	bob := createUser(t, r, "bob@example.com")
	c := createCategory(t, r, alice.ID, "Work")
	task := createTask(t, r, alice.ID, "Write report")

	_, err := r.Categories.Get(ctx, bob.ID, c.ID)
	assert.True(t, repository.IsNotFound(err))
	_, err = r.Tasks.Get(ctx, bob.ID, task.ID)
	assert.True(t, repository.IsNotFound(err))
}

func TestTaskRepository_RoundTrip(t *testing.T) {
	store := setupTestStore(t)
	r := store.Repos()
	ctx := context.Background()

	u := createUser(t, r, "alice@example.com")
	due := time.Date(2026, time.March, 12, 9, 30, 0, 123456789, time.UTC)
	task := createTask(t, r, u.ID, "Write report", withDue(due), withPriority(4))

	got, err := r.Tasks.Get(ctx, u.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write report", got.Title)
	assert.Equal(t, models.TaskStatusPending, got.Status)
	assert.Equal(t, 4, got.Priority)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Truncate(time.Microsecond).Equal(*got.DueDate))

	got.Status = models.TaskStatusCompleted
	got.DueDate = nil
	got.UpdatedAt = testNow.Add(time.Hour)
	require.NoError(t, r.Tasks.Update(ctx, got))

	again, err := r.Tasks.Get(ctx, u.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, again.Status)
	assert.Nil(t, again.DueDate)
}

func TestTaskRepository_ReplaceTags(t *testing.T) {
	store := setupTestStore(t)
	r := store.Repos()
	ctx := context.Background()

	u := createUser(t, r, "alice@example.com")
	home := createTag(t, r, u.ID, "home")
	urgent := createTag(t, r, u.ID, "urgent")
	work := createTag(t, r, u.ID, "work")
	task := createTask(t, r, u.ID, "Write report")
	other := createTask(t, r, u.ID, "Buy milk")

	tagTask(t, r, task, urgent, home)
	tagTask(t, r, other, work)

	tags, err := r.Tasks.TagsFor(ctx, []uuid.UUID{task.ID, other.ID})
	require.NoError(t, err)
	require.Len(t, tags[task.ID], 2)
	assert.Equal(t, "home", tags[task.ID][0].Name)
	assert.Equal(t, "urgent", tags[task.ID][1].Name)
	require.Len(t, tags[other.ID], 1)

	tagTask(t, r, task, work)
	tags, err = r.Tasks.TagsFor(ctx, []uuid.UUID{task.ID})
	require.NoError(t, err)
	require.Len(t, tags[task.ID], 1)
	assert.Equal(t, work.ID, tags[task.ID][0].ID)

	require.NoError(t, r.Tasks.Delete(ctx, task.ID))
	n, err := r.Tags.ReferenceCount(ctx, work.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only the remaining task still carries the tag")
}

func TestTaskRepository_ListFilters(t *testing.T) {
	store := setupTestStore(t)
	r := store.Repos()
	ctx := context.Background()

	u := createUser(t, r, "alice@example.com")
	other := createUser(t, r, "bob@example.com")
	c := createCategory(t, r, u.ID, "Work")
	tag := createTag(t, r, u.ID, "urgent")

	overdue := createTask(t, r, u.ID, "Overdue report", withDue(testNow.Add(-time.Hour)), withPriority(5), withCategory(c.ID))
	createTask(t, r, u.ID, "Done late", withDue(testNow.Add(-time.Hour)), withStatus(models.TaskStatusCompleted))
	soon := createTask(t, r, u.ID, "Soon milk", withDue(testNow.AddDate(0, 0, 6)))
	createTask(t, r, u.ID, "Later", withDue(testNow.AddDate(0, 0, 8)))
	createTask(t, r, other.ID, "Not mine", withDue(testNow.Add(-time.Hour)))
	tagTask(t, r, soon, tag)

	list := func(f query.TaskFilter) []string {
		t.Helper()
		q := query.TaskQuery{Filter: f, Sort: query.TaskSort("title", ""), Page: query.NewPage(1, 20)}
		out, _, err := r.Tasks.List(ctx, u.ID, q, testNow)
		require.NoError(t, err)
		return titles(out)
	}

	assert.Len(t, list(query.TaskFilter{}), 4)
	assert.Equal(t, []string{overdue.Title}, list(query.TaskFilter{Overdue: true}))
	assert.ElementsMatch(t, []string{overdue.Title, soon.Title}, list(query.TaskFilter{DueSoon: true}),
		"the window starts at the beginning of today")

	completed := models.TaskStatusCompleted
	assert.Equal(t, []string{"Done late"}, list(query.TaskFilter{Status: &completed}))

	five := 5
	assert.Equal(t, []string{overdue.Title}, list(query.TaskFilter{Priority: &five}))
	assert.Equal(t, []string{overdue.Title}, list(query.TaskFilter{CategoryID: &c.ID}))
	assert.Equal(t, []string{soon.Title}, list(query.TaskFilter{TagID: &tag.ID}))
	assert.Equal(t, []string{soon.Title}, list(query.TaskFilter{Search: "MILK"}))
}

func TestTaskRepository_ListSortAndPage(t *testing.T) {
	store := setupTestStore(t)
	r := store.Repos()
	ctx := context.Background()

	u := createUser(t, r, "alice@example.com")
	createTask(t, r, u.ID, "No date", withoutDue(), withStatus(models.TaskStatusCancelled), withPriority(1), withCreated(testNow.Add(3*time.Minute)))
	createTask(t, r, u.ID, "Due late", withDue(testNow.AddDate(0, 0, 5)), withPriority(5), withCreated(testNow.Add(2*time.Minute)))
	createTask(t, r, u.ID, "Due early", withDue(testNow.AddDate(0, 0, 1)), withPriority(3), withCreated(testNow.Add(time.Minute)))

	list := func(sortBy, order string, page query.Page) ([]string, int) {
		t.Helper()
		q := query.TaskQuery{Sort: query.TaskSort(sortBy, order), Page: page}
		out, total, err := r.Tasks.List(ctx, u.ID, q, testNow)
		require.NoError(t, err)
		return titles(out), total
	}
	all := query.NewPage(1, 20)

	got, _ := list("", "", all)
	assert.Equal(t, []string{"No date", "Due late", "Due early"}, got, "newest first by default")

	got, _ = list("due_date", "desc", all)
	assert.Equal(t, []string{"Due early", "Due late", "No date"}, got, "due date sorts ascending with missing dates last")

	got, _ = list("priority", "", all)
	assert.Equal(t, []string{"Due late", "Due early", "No date"}, got)

	got, _ = list("priority", "asc", all)
	assert.Equal(t, []string{"No date", "Due early", "Due late"}, got)

	got, _ = list("title", "", all)
	assert.Equal(t, []string{"Due early", "Due late", "No date"}, got)

	got, total := list("title", "", query.NewPage(2, 2))
	assert.Equal(t, []string{"No date"}, got)
	assert.Equal(t, 3, total)

	got, total = list("title", "", query.NewPage(5, 2))
	assert.Empty(t, got)
	assert.Equal(t, 3, total)
	assert.False(t, query.NewMeta(query.NewPage(5, 2), total).HasNextPage)
}

func TestTaskRepository_TiesBreakOnID(t *testing.T) {
	store := setupTestStore(t)
	r := store.Repos()
	ctx := context.Background()

	u := createUser(t, r, "alice@example.com")
	for i := 0; i < 5; i++ {
		createTask(t, r, u.ID, fmt.Sprintf("Same time %d", i))
	}

	seen := map[uuid.UUID]bool{}
	for page := 1; page <= 3; page++ {
		q := query.TaskQuery{Sort: query.TaskSort("", ""), Page: query.NewPage(page, 2)}
		out, _, err := r.Tasks.List(ctx, u.ID, q, testNow)
		require.NoError(t, err)
		for _, task := range out {
			assert.False(t, seen[task.ID], "task repeated across pages")
			seen[task.ID] = true
		}
	}
	assert.Len(t, seen, 5)
}

func TestTagRepository_PopularFilter(t *testing.T) {
	store := setupTestStore(t)
	r := store.Repos()
	ctx := context.Background()

	u := createUser(t, r, "alice@example.com")
	hot := createTag(t, r, u.ID, "hot")
	warm := createTag(t, r, u.ID, "warm")
	createTag(t, r, u.ID, "cold")

	for i := 0; i < 10; i++ {
		task := createTask(t, r, u.ID, fmt.Sprintf("Task %02d", i))
		var tags []*models.Tag
		if i < 6 {
			tags = append(tags, hot)
		}
		if i >= 6 {
			tags = append(tags, warm)
		}
		tagTask(t, r, task, tags...)
	}

	usage, total, err := r.Tags.Usage(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, total)
	assert.Equal(t, 6, usage[hot.ID])
	assert.Equal(t, 4, usage[warm.ID])

	q := query.ParseTagQuery(map[string][]string{"popular": {"true"}})
	tags, n, err := r.Tags.List(ctx, u.ID, q)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, tags, 1)
	assert.Equal(t, "hot", tags[0].Name)

	q = query.ParseTagQuery(map[string][]string{"unused": {"true"}})
	tags, _, err = r.Tags.List(ctx, u.ID, q)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "cold", tags[0].Name)

	q = query.ParseTagQuery(map[string][]string{"sort_by": {"usage"}})
	tags, _, err = r.Tags.List(ctx, u.ID, q)
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, []string{"hot", "warm", "cold"}, []string{tags[0].Name, tags[1].Name, tags[2].Name})
}

func TestCategoryRepository_ListAndCounts(t *testing.T) {
	store := setupTestStore(t)
	r := store.Repos()
	ctx := context.Background()

	u := createUser(t, r, "alice@example.com")
	work := createCategory(t, r, u.ID, "Work")
	home := createCategory(t, r, u.ID, "Home")
	empty := createCategory(t, r, u.ID, "Empty")

	createTask(t, r, u.ID, "Overdue", withCategory(work.ID), withDue(testNow.Add(-time.Hour)))
	createTask(t, r, u.ID, "Done", withCategory(work.ID), withStatus(models.TaskStatusCompleted))
	createTask(t, r, u.ID, "Started", withCategory(work.ID), withStatus(models.TaskStatusInProgress))
	createTask(t, r, u.ID, "Chores", withCategory(home.ID))

	out, total, err := r.Categories.List(ctx, u.ID, query.ParseCategoryQuery(nil))
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, "Empty", out[0].Name, "name ascending by default")

	out, _, err = r.Categories.List(ctx, u.ID, query.ParseCategoryQuery(map[string][]string{"sort_by": {"tasks_count"}}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Work", "Home", "Empty"}, []string{out[0].Name, out[1].Name, out[2].Name})

	out, _, err = r.Categories.List(ctx, u.ID, query.ParseCategoryQuery(map[string][]string{"with_tasks": {"true"}, "search": {"OR"}}))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Work", out[0].Name)

	out, _, err = r.Categories.List(ctx, u.ID, query.ParseCategoryQuery(map[string][]string{"empty": {"true"}}))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, empty.ID, out[0].ID)

	counts, err := r.Categories.TaskCounts(ctx, []uuid.UUID{work.ID, home.ID, empty.ID}, testNow)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCounts{Total: 3, Active: 2, Completed: 1, Pending: 1, Overdue: 1}, counts[work.ID])
	assert.Equal(t, models.TaskCounts{Total: 1, Active: 1, Pending: 1}, counts[home.ID])
	assert.Equal(t, models.TaskCounts{}, counts[empty.ID])
	assert.True(t, counts[empty.ID].CanDelete())
}

func TestStatsRepository_Snapshot(t *testing.T) {
	store := setupTestStore(t)
	r := store.Repos()
	ctx := context.Background()

	empty, err := r.Stats.Snapshot(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{}, empty)

	u := createUser(t, r, "alice@example.com")
	admin := createUser(t, r, "admin@example.com")
	admin.Admin = true
	require.NoError(t, r.Users.Update(ctx, admin))

	work := createCategory(t, r, u.ID, "Work")
	createCategory(t, r, u.ID, "Home")
	tag := createTag(t, r, u.ID, "urgent")
	createTag(t, r, u.ID, "later")

	task := createTask(t, r, u.ID, "Overdue", withDue(testNow.Add(-time.Hour)), withPriority(5), withCategory(work.ID))
	tagTask(t, r, task, tag)
	createTask(t, r, u.ID, "Soon", withDue(testNow.AddDate(0, 0, 3)), withPriority(3))
	createTask(t, r, u.ID, "Done", withStatus(models.TaskStatusCompleted), withDue(testNow.Add(-time.Hour)))
	createTask(t, r, u.ID, "Dropped", withStatus(models.TaskStatusCancelled), withoutDue(), withPriority(2))

	before, err := r.Stats.Snapshot(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, models.UserStats{Total: 2, Admins: 1, Regular: 1}, before.Users)
	assert.Equal(t, 4, before.Tasks.Total)
	assert.Equal(t, models.StatusBuckets{Pending: 2, Completed: 1, Cancelled: 1}, before.Tasks.ByStatus)
	assert.Equal(t, models.PriorityBuckets{High: 1, Medium: 1, Low: 2}, before.Tasks.ByPriority)
	assert.Equal(t, 1, before.Tasks.Overdue)
	assert.Equal(t, 2, before.Tasks.DueSoon)
	assert.Equal(t, models.CategoryStats{Total: 2, WithTasks: 1}, before.Categories)
	assert.Equal(t, models.TagStats{Total: 2, Used: 1}, before.Tags)

	createTask(t, r, u.ID, "Started", withStatus(models.TaskStatusInProgress), withDue(testNow.AddDate(0, 1, 0)), withPriority(1))
	after, err := r.Stats.Snapshot(ctx, testNow)
	require.NoError(t, err)

	want := before
	want.Tasks.Total++
	want.Tasks.ByStatus.InProgress++
	want.Tasks.ByPriority.Low++
	assert.Equal(t, want, after)
}

func TestStore_InTxRollsBack(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	u := createUser(t, store.Repos(), "alice@example.com")

	err := store.InTx(ctx, func(r repository.Repos) error {
		createCategory(t, r, u.ID, "Work")
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	taken, err := store.Repos().Categories.NameTaken(ctx, u.ID, "Work", uuid.Nil)
	require.NoError(t, err)
	assert.False(t, taken)
}
