package cli

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
	"github.com/custodia-labs/codekeeper/internal/core/ports/driving"
)

// stubScheduler returns startErr from Start, or blocks until ctx is done
// when block is set.
type stubScheduler struct {
	mu       sync.Mutex
	starts   int
	stops    int
	block    bool
	startErr error

	status    *driving.ScheduleStatus
	statusErr error
}

func (s *stubScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	s.starts++
	s.mu.Unlock()
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.startErr
}

func (s *stubScheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
	return nil
}

func (s *stubScheduler) Status(_ context.Context, limit int) (*driving.ScheduleStatus, error) {
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	if s.status == nil {
		return &driving.ScheduleStatus{}, nil
	}
	out := *s.status
	if len(out.Recent) > limit {
		out.Recent = out.Recent[:limit]
	}
	return &out, nil
}

func (s *stubScheduler) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts, s.stops
}

func useScheduler(t *testing.T, s *stubScheduler) {
	t.Helper()
	scheduler = s
	t.Cleanup(func() { scheduler = nil })
}

func TestScheduleRun_Disabled(t *testing.T) {
	setupTestServices(t)
	stub := &stubScheduler{}
	useScheduler(t, stub)

	out, err := executeCommand(t, "schedule", "run")

	require.NoError(t, err)
	assert.Contains(t, out, "Scheduled backups are disabled")
	starts, _ := stub.counts()
	assert.Zero(t, starts)
}

func TestScheduleRun_StoppedByCancel(t *testing.T) {
	env := setupTestServices(t)
	require.NoError(t, env.Settings.SetSchedule("@hourly", true))
	stub := &stubScheduler{startErr: context.Canceled}
	useScheduler(t, stub)

	out, err := executeCommand(t, "schedule", "run")

	require.NoError(t, err)
	assert.Contains(t, out, "Scheduler running (@hourly)")
	assert.Contains(t, out, "Scheduler stopped.")
	starts, _ := stub.counts()
	assert.Equal(t, 1, starts)
}

func TestScheduleRun_StartError(t *testing.T) {
	env := setupTestServices(t)
	require.NoError(t, env.Settings.SetSchedule("@daily", true))
	boom := errors.New("boom")
	useScheduler(t, &stubScheduler{startErr: boom})

	_, err := executeCommand(t, "schedule", "run")

	assert.ErrorIs(t, err, boom)
}

func TestScheduleRun_NotConfigured(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand(t, "schedule", "run")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheduler service not configured")
}

func TestScheduleStatus_NeverRun(t *testing.T) {
	useScheduler(t, &stubScheduler{})

	out, err := executeCommand(t, "schedule", "status")

	require.NoError(t, err)
	assert.Contains(t, out, "The scheduler has not run yet.")
}

func TestScheduleStatus(t *testing.T) {
	started := time.Now().Add(-2 * time.Hour)
	useScheduler(t, &stubScheduler{status: &driving.ScheduleStatus{
		Task: &domain.ScheduledTask{
			ID:        domain.TaskIDProjectBackup,
			Schedule:  "@hourly",
			Enabled:   true,
			LastRun:   started,
			NextRun:   time.Now().Add(-time.Hour),
			LastError: "api: source unreadable",
		},
		Recent: []domain.ScheduledRun{
			{StartedAt: started, EndedAt: started.Add(3 * time.Second), BackedUp: 1,
				Failed: []string{"api"}, Error: "api: source unreadable"},
			{StartedAt: started.Add(-time.Hour), EndedAt: started.Add(-time.Hour), BackedUp: 2},
		},
	}})

	out, err := executeCommand(t, "schedule", "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Schedule:     @hourly (enabled: yes)")
	assert.Contains(t, out, "Next run:     1 hour ago")
	assert.Contains(t, out, "Last run:     2 hours ago")
	assert.Contains(t, out, "Last success: never")
	assert.Contains(t, out, "Last error:   api: source unreadable")
	assert.Contains(t, out, "1 backed up in 3s  failed: api")
	assert.Contains(t, out, "2 backed up in 0s  ok")
}

func TestScheduleStatus_Error(t *testing.T) {
	useScheduler(t, &stubScheduler{statusErr: errors.New("database is locked")})

	_, err := executeCommand(t, "schedule", "status")

	assert.ErrorContains(t, err, "database is locked")
}
