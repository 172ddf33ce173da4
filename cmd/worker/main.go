package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"basegraph.app/helixask/common/id"
	"basegraph.app/helixask/common/logger"
	"basegraph.app/helixask/core/config"
	"basegraph.app/helixask/internal/jobstore"
)

// pruneInterval is how often the worker sweeps the job store for expired
// records. Job TTLs are bounded by HELIX_ASK_JOB_TIMEOUT_MS, so a minute's
// slack between sweeps is plenty; there's no latency requirement on prune.
const pruneInterval = 1 * time.Minute

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg := config.Load()
	logger.Setup(cfg)

	slog.InfoContext(ctx, "helix ask worker starting", "env", cfg.Env)

	if err := id.Init(2); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
		os.Exit(1)
	}

	jobs, err := jobstore.New(cfg.Redis.URL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize job store", "error", err)
		os.Exit(1)
	}
	defer jobs.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go runPruneLoop(ctx, jobs, done)

	slog.InfoContext(ctx, "worker running", "prune_interval", pruneInterval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutdown signal received, initiating graceful shutdown...")
	cancel()

	select {
	case <-done:
		slog.InfoContext(ctx, "graceful shutdown completed")
	case <-time.After(10 * time.Second):
		slog.WarnContext(ctx, "shutdown timeout exceeded, forcing exit")
	}

	slog.InfoContext(ctx, "shutdown complete")
}

// runPruneLoop sweeps jobs.Prune on a fixed interval until ctx is
// cancelled, then closes done. A failed sweep is logged and retried on the
// next tick rather than stopping the loop.
func runPruneLoop(ctx context.Context, jobs jobstore.Store, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := jobs.Prune(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "job store prune failed", "error", err)
				continue
			}
			if n > 0 {
				slog.InfoContext(ctx, "pruned expired jobs", "count", n)
			}
		}
	}
}

const banner = `
██╗  ██╗███████╗██╗     ██╗██╗  ██╗     █████╗ ███████╗██╗  ██╗    ██╗    ██╗██╗  ██╗██████╗
██║  ██║██╔════╝██║     ██║╚██╗██╔╝    ██╔══██╗██╔════╝██║ ██╔╝    ██║    ██║██║ ██╔╝██╔══██╗
███████║█████╗  ██║     ██║ ╚███╔╝     ███████║███████╗█████╔╝     ██║ █╗ ██║█████╔╝ ██████╔╝
██╔══██║██╔══╝  ██║     ██║ ██╔██╗     ██╔══██║╚════██║██╔═██╗     ██║███╗██║██╔═██╗ ██╔══██╗
██║  ██║███████╗███████╗██║██╔╝ ██╗    ██║  ██║███████║██║  ██╗    ╚███╔███╔╝██║  ██╗██║  ██║
╚═╝  ╚═╝╚══════╝╚══════╝╚═╝╚═╝  ╚═╝    ╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝     ╚══╝╚══╝ ╚═╝  ╚═╝╚═╝  ╚═╝
`
