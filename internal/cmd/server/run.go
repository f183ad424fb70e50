package serverrun

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	cfgpkg "github.com/doebialale/EZRAVERIFY/internal/config"
	"github.com/doebialale/EZRAVERIFY/internal/metrics"
	"github.com/doebialale/EZRAVERIFY/internal/runtime"
	httpserver "github.com/doebialale/EZRAVERIFY/internal/server/http"
	pebblestore "github.com/doebialale/EZRAVERIFY/internal/storage/pebble"
	logpkg "github.com/doebialale/EZRAVERIFY/pkg/log"
)

func getenvDefault(key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

// small wrapper to allow testing; replaced by os.Getenv at build time
var getenv = func(key string) string { return os.Getenv(key) }

type Options struct {
	DataDir       string
	HTTPAddr      string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
	// DisableMetrics skips Prometheus registration; used by tests that
	// open multiple runtimes in one process.
	DisableMetrics bool
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	// Be robust to callers that don't pass a signal-aware context.
	// We layer a local signal context over the provided one.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	storeDir := filepath.Join(opts.DataDir, "store")

	// Build process-wide logger using env/ApplyConfig; defaults: level=info, format=text
	cfg := &logpkg.Config{
		Level:  getenvDefault("EZRA_LOG_LEVEL", "info"),
		Format: getenvDefault("EZRA_LOG_FORMAT", "text"),
	}
	procLogger, err := logpkg.ApplyConfig(cfg)
	if err != nil {
		lvl := logpkg.InfoLevel
		if l, e := logpkg.ParseLevel(cfg.Level); e == nil {
			lvl = l
		}
		procLogger = logpkg.NewLogger(logpkg.WithLevel(lvl), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}

	// Redirect stdlib logs (e.g., Pebble) to our logger
	logpkg.RedirectStdLog(procLogger)

	var instruments *metrics.Metrics
	if !opts.DisableMetrics {
		instruments = metrics.New(prometheus.DefaultRegisterer)
	}

	rt, err := runtime.Open(runtime.Options{
		DataDir:       storeDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
		Config:        opts.Config,
		Logger:        procLogger,
		Metrics:       instruments,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	procLogger.Info("Starting EzraVerify server",
		logpkg.Str("http", opts.HTTPAddr),
		logpkg.Str("data_dir", opts.DataDir),
		logpkg.Str("base_url", opts.Config.BaseURL),
		logpkg.Int("max_scans", opts.Config.MaxScans),
		logpkg.Str("level", cfg.Level),
		logpkg.Str("format", cfg.Format),
	)

	hsrv := httpserver.New(rt, procLogger)
	defer hsrv.Close()
	if err := hsrv.ListenAndServe(sctx, opts.HTTPAddr); err != nil && sctx.Err() == nil {
		return err
	}
	return nil
}
