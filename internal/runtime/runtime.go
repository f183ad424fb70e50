package runtime

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	cfgpkg "github.com/doebialale/EZRAVERIFY/internal/config"
	"github.com/doebialale/EZRAVERIFY/internal/issuer"
	"github.com/doebialale/EZRAVERIFY/internal/metrics"
	"github.com/doebialale/EZRAVERIFY/internal/qr"
	"github.com/doebialale/EZRAVERIFY/internal/store"
	pebblestore "github.com/doebialale/EZRAVERIFY/internal/storage/pebble"
	"github.com/doebialale/EZRAVERIFY/internal/verify"
	logpkg "github.com/doebialale/EZRAVERIFY/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	DataDir       string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
	Logger        logpkg.Logger
	// Metrics is optional; when nil, storage observations are dropped and
	// no instruments are exported.
	Metrics *metrics.Metrics
}

// Runtime wires storage, config, and the domain facades.
type Runtime struct {
	db      *pebblestore.DB
	config  cfgpkg.Config
	logger  logpkg.Logger
	metrics *metrics.Metrics
	store   *store.Store
	engine  *verify.Engine
	issuer  *issuer.Issuer
}

// Open initializes the underlying storage and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel))
	}

	var hook pebblestore.MetricsHook
	if opts.Metrics != nil {
		hook = opts.Metrics
	}
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       opts.DataDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
		Metrics:       hook,
	})
	if err != nil {
		return nil, err
	}

	cfg := opts.Config
	st := store.Open(db, logger)
	engine := verify.NewEngine(st, cfg.MaxScans, logger)

	// An empty QRDir disables QR output entirely.
	var renderer *qr.Renderer
	if cfg.QRDir != "" {
		qrDir := cfg.QRDir
		if !filepath.IsAbs(qrDir) {
			qrDir = filepath.Join(opts.DataDir, qrDir)
		}
		renderer, err = qr.NewRenderer(qrDir)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	iss := issuer.New(st, renderer, cfg.BaseURL, cfg.CodeLength, logger)

	return &Runtime{
		db:      db,
		config:  cfg,
		logger:  logger,
		metrics: opts.Metrics,
		store:   st,
		engine:  engine,
		issuer:  iss,
	}, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CheckHealth performs a simple health check.
func (r *Runtime) CheckHealth(_ context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	return it.Close()
}

// Store returns the record store.
func (r *Runtime) Store() *store.Store { return r.store }

// Engine returns the verification engine.
func (r *Runtime) Engine() *verify.Engine { return r.engine }

// Issuer returns the code issuer.
func (r *Runtime) Issuer() *issuer.Issuer { return r.issuer }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// Metrics returns the registered instruments, or nil when disabled.
func (r *Runtime) Metrics() *metrics.Metrics { return r.metrics }

// Logger returns the process logger.
func (r *Runtime) Logger() logpkg.Logger { return r.logger }
