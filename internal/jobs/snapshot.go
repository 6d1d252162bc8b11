package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"semaphore/dashboard/internal/config"
	"semaphore/dashboard/internal/report"
)

type ReportLoader interface {
	Load(ctx context.Context, q report.Query) (report.Report, error)
}

// Snapshot holds the last report that loaded successfully. A failed refresh
// keeps the previous report and records the error.
type Snapshot struct {
	mu        sync.RWMutex
	report    report.Report
	loaded    bool
	lastError error
}

func (s *Snapshot) Get() (report.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report, s.loaded
}

func (s *Snapshot) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

func (s *Snapshot) Refresh(ctx context.Context, loader ReportLoader, q report.Query) error {
	rep, err := loader.Load(ctx, q)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = err
	if err != nil {
		return err
	}
	s.report = rep
	s.loaded = true
	return nil
}

// StartSnapshotJob loads the configured department's report once, then again
// on every snapshot interval.
func StartSnapshotJob(ctx context.Context, cfg config.Config, loader ReportLoader, snap *Snapshot, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SnapshotDepartmentID == "" {
		logger.Info("snapshot job disabled: no department configured")
		return
	}
	interval := cfg.SnapshotInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	timeout := cfg.SnapshotTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	q := report.Query{DepartmentID: cfg.SnapshotDepartmentID}

	tick := func() {
		tickCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := snap.Refresh(tickCtx, loader, q); err != nil {
			logger.Error("snapshot job error", "department_id", q.DepartmentID, "error", err)
			return
		}
		logger.Debug("snapshot refreshed", "department_id", q.DepartmentID)
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		tick()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tick()
			}
		}
	}()
}
