// Command geopulse is the CLI surface for the geopolitical risk scoring
// pipeline (spec.md §6 "Process CLI surface"): a long-lived scheduler loop,
// a single out-of-band task trigger, and a status report. Grounded on
// services/jax-ingest/cmd/jax-ingest/main.go's flag parsing,
// context.WithTimeout and observability.WithRunInfo wiring.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"sync/atomic"
	"syscall"
	"text/tabwriter"
	"time"

	"geopulse/internal/coordinator"
	"geopulse/internal/observability"
)

// Exit codes, spec.md §6.
const (
	exitOK             = 0
	exitInvalidArgs    = 2
	exitTaskFailure    = 3
	exitShutdownSignal = 4
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return exitInvalidArgs
	}

	command := args[0]
	if !slices.Contains([]string{"run-scheduler", "run-task", "scheduler-status"}, command) {
		fmt.Fprintf(os.Stderr, "geopulse: unknown command %q\n", command)
		usage()
		return exitInvalidArgs
	}
	if command == "run-task" {
		if len(args) != 2 || !slices.Contains(coordinator.TaskNames, args[1]) {
			usage()
			return exitInvalidArgs
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "geopulse:", err)
		return exitInvalidArgs
	}

	switch command {
	case "run-scheduler":
		return runScheduler(cfg)
	case "run-task":
		return runTaskCommand(cfg, args[1:])
	default:
		return schedulerStatus(cfg)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: geopulse <run-scheduler|run-task <task-name>|scheduler-status>")
	fmt.Fprintf(os.Stderr, "  task-name one of: %s\n", strings.Join(coordinator.TaskNames, ", "))
}

// signalContext returns a context cancelled on SIGINT/SIGTERM, and a
// function reporting whether cancellation came from a signal.
func signalContext() (context.Context, func() bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	var signaled atomic.Bool
	go func() {
		<-ctx.Done()
		signaled.Store(true)
	}()
	return ctx, func() bool { stop(); return signaled.Load() }
}

// runScheduler runs the coordinator's long-lived tick loop until a
// termination signal arrives (spec.md §5 "Cancellation & timeouts": aborts
// after the current per-country unit of work completes and commits).
func runScheduler(cfg config) int {
	ctx, wasSignaled := signalContext()
	ctx = observability.WithRunInfo(ctx, observability.RunInfo{RunID: observability.NewRunID(), TaskID: "scheduler"})

	p, err := buildPipeline(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "geopulse:", err)
		return exitTaskFailure
	}
	defer p.close()

	if err := p.bootstrap(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "geopulse: bootstrap:", err)
		return exitTaskFailure
	}

	metricsSrv := &http.Server{Addr: cfg.metricsAddr, Handler: p.metricsHandler()}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			observability.LogEvent(ctx, "error", "metrics_listener_failed", map[string]any{"error": err})
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	c := p.newCoordinator()
	err = c.Run(ctx)
	if wasSignaled() {
		return exitShutdownSignal
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "geopulse:", err)
		return exitTaskFailure
	}
	return exitOK
}

// runTaskCommand runs exactly one named task out-of-band and exits. run()
// has already validated name against coordinator.TaskNames.
func runTaskCommand(cfg config, args []string) int {
	name := args[0]

	ctx, wasSignaled := signalContext()
	ctx = observability.WithRunInfo(ctx, observability.RunInfo{RunID: observability.NewRunID(), TaskID: name})

	p, err := buildPipeline(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "geopulse:", err)
		return exitTaskFailure
	}
	defer p.close()

	if err := p.bootstrap(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "geopulse: bootstrap:", err)
		return exitTaskFailure
	}

	c := p.newCoordinator()
	err = c.RunTask(ctx, name)
	if wasSignaled() {
		return exitShutdownSignal
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "geopulse:", err)
		return exitTaskFailure
	}
	return exitOK
}

// schedulerStatus prints the per-task state table (spec.md §6
// "scheduler-status (emits the per-task state table)").
func schedulerStatus(cfg config) int {
	ctx, wasSignaled := signalContext()

	p, err := buildPipeline(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "geopulse:", err)
		return exitTaskFailure
	}
	defer p.close()

	c := p.newCoordinator()
	statuses, err := c.Statuses(ctx)
	if wasSignaled() {
		return exitShutdownSignal
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "geopulse:", err)
		return exitTaskFailure
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "TASK\tINTERVAL\tLAST RUN\tNEXT DUE")
	for _, s := range statuses {
		lastRun := "never"
		nextDue := "now"
		if s.HasRun {
			lastRun = s.LastRunAt.Format(time.RFC3339)
			nextDue = s.NextDueAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Task, s.Interval, lastRun, nextDue)
	}
	w.Flush()
	return exitOK
}
