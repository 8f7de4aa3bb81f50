package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
)

// ==================== SchedulerStore Tests ====================

func TestSchedulerStore_SaveAndGetTask(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	now := time.Now().UTC().Truncate(time.Second)
	task := &domain.ScheduledTask{
		ID:          domain.TaskIDProjectBackup,
		Name:        "Project Backup",
		Schedule:    "0 3 * * *",
		LastRun:     now.Add(-time.Hour),
		NextRun:     now.Add(23 * time.Hour),
		LastSuccess: now.Add(-time.Hour),
		Enabled:     true,
	}
	require.NoError(t, schedulerStore.SaveTask(ctx, task))

	got, err := schedulerStore.GetTask(ctx, domain.TaskIDProjectBackup)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, task.Name, got.Name)
	assert.Equal(t, "0 3 * * *", got.Schedule)
	assert.True(t, got.Enabled)
	assert.Empty(t, got.LastError)
	assert.True(t, task.LastRun.Equal(got.LastRun))
	assert.True(t, task.NextRun.Equal(got.NextRun))
	assert.True(t, task.LastSuccess.Equal(got.LastSuccess))
}

func TestSchedulerStore_GetTask_NotFound(t *testing.T) {
	store := setupTestStore(t)

	got, err := store.SchedulerStore().GetTask(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSchedulerStore_SaveTask_Update(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	task := &domain.ScheduledTask{ID: "t", Name: "Task", Schedule: "@daily", Enabled: true}
	require.NoError(t, schedulerStore.SaveTask(ctx, task))

	task.Schedule = "@hourly"
	task.Enabled = false
	task.LastError = "webapp: source unreadable"
	require.NoError(t, schedulerStore.SaveTask(ctx, task))

	got, err := schedulerStore.GetTask(ctx, "t")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "@hourly", got.Schedule)
	assert.False(t, got.Enabled)
	assert.Equal(t, "webapp: source unreadable", got.LastError)
}

func TestSchedulerStore_SaveTask_NilTask(t *testing.T) {
	store := setupTestStore(t)

	err := store.SchedulerStore().SaveTask(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSchedulerStore_ListTasks(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	empty, err := schedulerStore.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, task := range []*domain.ScheduledTask{
		{ID: "b", Name: "B", Schedule: "@daily", Enabled: true},
		{ID: "a", Name: "A", Schedule: "@weekly"},
	} {
		require.NoError(t, schedulerStore.SaveTask(ctx, task))
	}

	tasks, err := schedulerStore.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "a", tasks[0].ID)
	assert.Equal(t, "b", tasks[1].ID)
}

func saveBackupTask(t *testing.T, store *Store, id string) {
	t.Helper()
	require.NoError(t, store.SchedulerStore().SaveTask(context.Background(),
		&domain.ScheduledTask{ID: id, Name: "Project Backup", Schedule: "@hourly", Enabled: true}))
}

func TestSchedulerStore_RecordAndRecentRuns(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()
	saveBackupTask(t, store, domain.TaskIDProjectBackup)

	base := time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		started := base.Add(time.Duration(i) * time.Hour)
		run := &domain.ScheduledRun{
			TaskID:    domain.TaskIDProjectBackup,
			StartedAt: started,
			EndedAt:   started.Add(time.Minute),
			BackedUp:  i,
		}
		if i%2 == 1 {
			run.Failed = []string{"api", "webapp"}
			run.Error = "api: source unreadable"
		}
		require.NoError(t, schedulerStore.RecordRun(ctx, run))
	}

	runs, err := schedulerStore.RecentRuns(ctx, domain.TaskIDProjectBackup, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	assert.True(t, runs[0].StartedAt.Equal(base.Add(4*time.Hour)))
	assert.Equal(t, time.Minute, runs[0].Duration())
	assert.Equal(t, 4, runs[0].BackedUp)
	assert.True(t, runs[0].OK())
	assert.Nil(t, runs[0].Failed)

	assert.False(t, runs[1].OK())
	assert.Equal(t, []string{"api", "webapp"}, runs[1].Failed)
	assert.Equal(t, "api: source unreadable", runs[1].Error)

	none, err := schedulerStore.RecentRuns(ctx, "other", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSchedulerStore_RecordRun_Invalid(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.SchedulerStore().RecordRun(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = store.SchedulerStore().RecordRun(ctx, &domain.ScheduledRun{TaskID: "unsaved"})
	assert.Error(t, err)
}

func TestSchedulerStore_PruneRuns(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"x", "y"} {
		saveBackupTask(t, store, id)
		for i := 0; i < 4; i++ {
			started := base.Add(time.Duration(i) * time.Minute)
			require.NoError(t, schedulerStore.RecordRun(ctx, &domain.ScheduledRun{
				TaskID: id, StartedAt: started, EndedAt: started, BackedUp: i,
			}))
		}
	}

	require.NoError(t, schedulerStore.PruneRuns(ctx, 2))

	for _, id := range []string{"x", "y"} {
		runs, err := schedulerStore.RecentRuns(ctx, id, 10)
		require.NoError(t, err)
		require.Len(t, runs, 2, id)
		assert.Equal(t, 3, runs[0].BackedUp)
		assert.Equal(t, 2, runs[1].BackedUp)
	}
}

func TestSchedulerStore_TaskWithZeroTimes(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	require.NoError(t, schedulerStore.SaveTask(ctx, &domain.ScheduledTask{ID: "fresh", Name: "Fresh", Schedule: "@daily"}))

	got, err := schedulerStore.GetTask(ctx, "fresh")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.LastRun.IsZero())
	assert.True(t, got.NextRun.IsZero())
	assert.True(t, got.LastSuccess.IsZero())
}

// ==================== Helper Tests ====================

func TestFormatNullableTime(t *testing.T) {
	assert.Nil(t, formatNullableTime(time.Time{}))

	local := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "2024-03-01T11:00:00Z", formatNullableTime(local))
}

func TestParseNullableTime(t *testing.T) {
	got := parseNullableTime(sql.NullString{String: "2024-03-01T11:00:00Z", Valid: true})
	assert.True(t, got.Equal(time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)))

	assert.True(t, parseNullableTime(sql.NullString{}).IsZero())
	assert.True(t, parseNullableTime(sql.NullString{String: "garbage", Valid: true}).IsZero())
}

func TestBoolToInt(t *testing.T) {
	assert.Equal(t, 1, boolToInt(true))
	assert.Equal(t, 0, boolToInt(false))
}

func TestNullString(t *testing.T) {
	assert.Nil(t, nullString(""))
	assert.Equal(t, "hello", nullString("hello"))
}
