package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	internalhttp "semaphore/dashboard/internal/http"
	"semaphore/dashboard/internal/jobs"
	"semaphore/dashboard/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the attendance report server",
	Long: `Run a JSON report server on top of the stored session.

Endpoints:
  GET /health
  GET /metrics
  GET /attendance/summary?departmentId=&courseId=&searchTerm=
  GET /attendance/details?departmentId=...
  GET /attendance/export?departmentId=&format=csv|xlsx|yaml&detailed=true
  GET /attendance/snapshot

When snapshot.department_id is set, that department's report is refreshed
every snapshot.interval and served from /attendance/snapshot.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from http.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	logger := a.logger
	shutdownTracing := telemetry.Setup("attendance-dashboard", a.cfg.TelemetryEnabled, os.Stderr)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	snapshot := &jobs.Snapshot{}
	jobs.StartSnapshotJob(ctx, a.cfg, a.Reports, snapshot, logger)
	if a.SessionDB != nil {
		jobs.StartSessionPurgeJob(ctx, a.cfg.SessionPurgeInterval, a.SessionDB, logger)
	}

	addr := a.cfg.HTTPAddr
	if serveAddr != "" {
		addr = serveAddr
	}
	server := internalhttp.NewServer(a.Reports, snapshot, a.registry, logger)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(server.Router(), "dashboard"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("dashboard http listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	return nil
}
