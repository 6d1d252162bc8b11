package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"semaphore/dashboard/internal/attendance"
	"semaphore/dashboard/internal/config"
	"semaphore/dashboard/internal/report"
)

type fakeLoader struct {
	mu    sync.Mutex
	calls int
	fail  bool
	query report.Query
}

func (f *fakeLoader) Load(_ context.Context, q report.Query) (report.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.query = q
	if f.fail {
		return report.Report{}, errors.New("backend down")
	}
	return report.Report{
		DepartmentID: q.DepartmentID,
		Courses:      []attendance.CourseSummary{{CourseID: "c1", TotalSessions: f.calls}},
	}, nil
}

func (f *fakeLoader) setFail(fail bool) {
	f.mu.Lock()
	f.fail = fail
	f.mu.Unlock()
}

func (f *fakeLoader) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestSnapshotKeepsPreviousReportOnFailure(t *testing.T) {
	loader := &fakeLoader{}
	snap := &Snapshot{}
	ctx := context.Background()
	q := report.Query{DepartmentID: "d1"}

	if _, ok := snap.Get(); ok {
		t.Fatalf("empty snapshot must report not loaded")
	}
	if err := snap.Refresh(ctx, loader, q); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	first, ok := snap.Get()
	if !ok || first.Courses[0].TotalSessions != 1 {
		t.Fatalf("unexpected first snapshot %+v", first)
	}

	loader.setFail(true)
	if err := snap.Refresh(ctx, loader, q); err == nil {
		t.Fatalf("expected refresh error")
	}
	kept, ok := snap.Get()
	if !ok || kept.Courses[0].TotalSessions != 1 {
		t.Fatalf("expected previous snapshot to be kept, got %+v", kept)
	}
	if snap.LastError() == nil {
		t.Fatalf("expected last error to be recorded")
	}

	loader.setFail(false)
	if err := snap.Refresh(ctx, loader, q); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if snap.LastError() != nil {
		t.Fatalf("expected last error to be cleared")
	}
}

func TestStartSnapshotJob(t *testing.T) {
	defer goleak.VerifyNone(t)

	loader := &fakeLoader{}
	snap := &Snapshot{}
	ctx, cancel := context.WithCancel(context.Background())
	cfg := config.Config{SnapshotDepartmentID: "d1", SnapshotInterval: 10 * time.Millisecond, SnapshotTimeout: time.Second}

	StartSnapshotJob(ctx, cfg, loader, snap, nil)

	deadline := time.Now().Add(2 * time.Second)
	for loader.callCount() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if loader.callCount() < 3 {
		t.Fatalf("expected repeated refreshes, got %d", loader.callCount())
	}
	rep, ok := snap.Get()
	if !ok || rep.DepartmentID != "d1" {
		t.Fatalf("unexpected snapshot %+v", rep)
	}
}

func TestStartSnapshotJobDisabledWithoutDepartment(t *testing.T) {
	defer goleak.VerifyNone(t)

	loader := &fakeLoader{}
	StartSnapshotJob(context.Background(), config.Config{SnapshotInterval: time.Millisecond}, loader, &Snapshot{}, nil)
	time.Sleep(20 * time.Millisecond)
	if loader.callCount() != 0 {
		t.Fatalf("job must not run without a department")
	}
}

type fakePurger struct {
	calls atomic.Int32
	err   error
}

func (f *fakePurger) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	f.calls.Add(1)
	if now.Location() != time.UTC {
		return 0, errors.New("expected utc")
	}
	return 2, f.err
}

func TestStartSessionPurgeJob(t *testing.T) {
	defer goleak.VerifyNone(t)

	purger := &fakePurger{err: errors.New("db down")}
	ctx, cancel := context.WithCancel(context.Background())
	StartSessionPurgeJob(ctx, 5*time.Millisecond, purger, nil)

	deadline := time.Now().Add(2 * time.Second)
	for purger.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if purger.calls.Load() < 2 {
		t.Fatalf("expected purge to keep running after errors, got %d calls", purger.calls.Load())
	}
}
