package tasks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/medcompanion/internal/config"
)

func newTestClient(t *testing.T) (*Client, string) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	logger, _ := test.NewNullLogger()
	client, err := NewClient(dbPath, cfg, logger)
	require.NoError(t, err)
	return client, tmpDir
}

func TestNewClient(t *testing.T) {
	client, tmpDir := newTestClient(t)

	tasksDBPath := filepath.Join(tmpDir, "test-tasks.db")
	_, err := os.Stat(tasksDBPath)
	assert.NoError(t, err, "tasks database should be created")

	err = client.Close()
	assert.NoError(t, err)
}

func TestTasksDBPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "app-tasks.db"), TasksDBPath(filepath.Join("data", "app.db")))
	assert.Equal(t, "medcompanion-tasks", TasksDBPath("medcompanion"))
}

func TestClientStartStop(t *testing.T) {
	client, _ := newTestClient(t)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)

	// Give it time to start
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()

	success := client.Stop(stopCtx)
	assert.True(t, success, "stop should succeed gracefully")
}

func TestClientStopWithoutStart(t *testing.T) {
	client, _ := newTestClient(t)
	defer client.Close()

	assert.True(t, client.Stop(context.Background()))
}

func TestDoseReminderEnqueue(t *testing.T) {
	client, _ := newTestClient(t)
	defer client.Close()

	delivered := make(chan DoseReminderTask, 1)
	client.Register(NewDoseReminderQueue(NotifierFunc(func(ctx context.Context, r DoseReminderTask) error {
		delivered <- r
		return nil
	})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	ids, err := client.Enqueue(DoseReminderTask{UserID: 1, MedicineID: 2, Name: "Aspirin", Slot: "08:00"})
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	select {
	case r := <-delivered:
		assert.Equal(t, "Aspirin", r.Name)
		assert.Equal(t, "08:00", r.Slot)
	case <-time.After(5 * time.Second):
		t.Fatal("reminder was not delivered within timeout")
	}
}

func TestDoseReminderTaskConfig(t *testing.T) {
	cfg := DoseReminderTask{}.Config()

	assert.Equal(t, "dose_reminder", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.Backoff)
	assert.Equal(t, time.Minute, cfg.Timeout)
	assert.NotNil(t, cfg.Retention)
}

func TestCleanupAuditEventsTaskConfig(t *testing.T) {
	cfg := CleanupAuditEventsTask{}.Config()

	assert.Equal(t, "cleanup_audit_events", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(config.Tasks{Workers: 4, ReleaseAfter: time.Minute})

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, DefaultConfig().CleanupInterval, cfg.CleanupInterval)
}

func TestPairsToFields(t *testing.T) {
	fields := pairsToFields([]any{"queue", "dose_reminder", "attempt", 2, "dangling"})

	assert.Equal(t, "dose_reminder", fields["queue"])
	assert.Equal(t, 2, fields["attempt"])
	assert.Equal(t, "dangling", fields["extra"])
}

var _ backlite.Task = DoseReminderTask{}
var _ backlite.Task = CleanupAuditEventsTask{}
