package cleanup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockPurger はSessionPurgerのモック。
type mockPurger struct {
	mu       sync.Mutex
	calls    int
	deleteFn func(ctx context.Context) (int64, error)
}

func (m *mockPurger) DeleteExpired(ctx context.Context) (int64, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.deleteFn(ctx)
}

func (m *mockPurger) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockRecorder はPurgeRecorderのモック。
type mockRecorder struct {
	mu     sync.Mutex
	purged []int64
}

func (m *mockRecorder) RecordSessionsPurged(count int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purged = append(m.purged, count)
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func TestRun_RecordsDeletedCount(t *testing.T) {
	var buf bytes.Buffer
	purger := &mockPurger{deleteFn: func(ctx context.Context) (int64, error) { return 3, nil }}
	recorder := &mockRecorder{}

	job := NewCleanupJob(purger, recorder, newTestLogger(&buf))
	deleted, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if deleted != 3 {
		t.Errorf("deleted = %d, want 3", deleted)
	}
	if len(recorder.purged) != 1 || recorder.purged[0] != 3 {
		t.Errorf("recorded = %v, want [3]", recorder.purged)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log: %v", err)
	}
	if entry["msg"] != "session cleanup completed" || entry["deleted_count"] != float64(3) {
		t.Errorf("log entry = %v", entry)
	}
}

func TestRun_Error(t *testing.T) {
	var buf bytes.Buffer
	purger := &mockPurger{deleteFn: func(ctx context.Context) (int64, error) {
		return 0, errors.New("connection refused")
	}}
	recorder := &mockRecorder{}

	_, err := NewCleanupJob(purger, recorder, newTestLogger(&buf)).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("err = %v", err)
	}
	if len(recorder.purged) != 0 {
		t.Errorf("failure should not be recorded: %v", recorder.purged)
	}
	if !strings.Contains(buf.String(), `"level":"ERROR"`) {
		t.Errorf("error should be logged, got %s", buf.String())
	}
}

// 記録先がnilでも動作することを検証
func TestRun_NilRecorder(t *testing.T) {
	purger := &mockPurger{deleteFn: func(ctx context.Context) (int64, error) { return 0, nil }}
	if _, err := NewCleanupJob(purger, nil, nil).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

// Startは起動直後に1回実行し、キャンセルで停止することを検証
func TestStart_RunsImmediatelyAndStopsOnCancel(t *testing.T) {
	var buf bytes.Buffer
	ran := make(chan struct{}, 10)
	purger := &mockPurger{deleteFn: func(ctx context.Context) (int64, error) {
		select {
		case ran <- struct{}{}:
		default:
		}
		return 0, nil
	}}
	job := NewCleanupJob(purger, nil, newTestLogger(&buf))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		job.Start(ctx, time.Hour)
	}()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("cleanup should run immediately on start")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start should return after cancel")
	}
	if got := purger.callCount(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

// 失敗しても次の周期で再実行されることを検証
func TestStart_ContinuesAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	ran := make(chan struct{}, 10)
	purger := &mockPurger{deleteFn: func(ctx context.Context) (int64, error) {
		select {
		case ran <- struct{}{}:
		default:
		}
		return 0, errors.New("temporary")
	}}
	job := NewCleanupJob(purger, nil, newTestLogger(&buf))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		job.Start(ctx, 10*time.Millisecond)
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-ran:
		case <-time.After(time.Second):
			t.Fatalf("run %d did not happen", i+1)
		}
	}
	cancel()
	<-done
}
