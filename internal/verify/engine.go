package verify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doebialale/EZRAVERIFY/internal/record"
	"github.com/doebialale/EZRAVERIFY/internal/store"
	logpkg "github.com/doebialale/EZRAVERIFY/pkg/log"
)

// DefaultMaxScans is the scan ceiling applied when none is configured.
const DefaultMaxScans = 5

// Outcome classifies the result of one verification call.
type Outcome int

const (
	// OutcomeUnknown means no record exists for the id.
	OutcomeUnknown Outcome = iota
	// OutcomeValid means the record exists, is unexpired, and is within
	// the scan limit after counting this scan.
	OutcomeValid
	// OutcomeExpired means the record exists but today is past its
	// expiration date. The scan is still counted.
	OutcomeExpired
	// OutcomeLimitExceeded means the record exists and is unexpired, but
	// this scan pushed the counter past the limit. The scan is still
	// counted; this is the cloning/abuse signal.
	OutcomeLimitExceeded
)

// String returns the outcome label used in responses and metrics.
func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "VALID"
	case OutcomeExpired:
		return "EXPIRED"
	case OutcomeLimitExceeded:
		return "LIMIT_EXCEEDED"
	case OutcomeUnknown:
		return "UNKNOWN"
	default:
		return "UNKNOWN"
	}
}

// Result carries the outcome plus the post-increment record state when one
// exists. Record is the zero value for OutcomeUnknown.
type Result struct {
	Outcome Outcome
	Record  record.Record
}

// Engine applies the decision state machine over the record store.
type Engine struct {
	store    *store.Store
	maxScans uint64
	logger   logpkg.Logger

	// now is injectable for tests.
	now func() time.Time
}

// NewEngine builds an Engine. maxScans <= 0 falls back to DefaultMaxScans.
func NewEngine(s *store.Store, maxScans int, logger logpkg.Logger) *Engine {
	if maxScans <= 0 {
		maxScans = DefaultMaxScans
	}
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel))
	}
	return &Engine{
		store:    s,
		maxScans: uint64(maxScans),
		logger:   logger.WithComponent("verify"),
		now:      time.Now,
	}
}

// MaxScans returns the configured scan ceiling.
func (e *Engine) MaxScans() uint64 { return e.maxScans }

// Verify runs the decision state machine for one scan of id.
func (e *Engine) Verify(ctx context.Context, id string) (Result, error) {
	rec, err := e.store.ReadAndIncrement(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.logger.Debug("unknown code scanned", logpkg.Str("id", id))
			return Result{Outcome: OutcomeUnknown}, nil
		}
		return Result{}, fmt.Errorf("verify %s: %w", id, err)
	}

	res := Result{Record: rec}
	today := record.DateOf(e.now())
	switch {
	case today.After(rec.ExpirationDate):
		res.Outcome = OutcomeExpired
	case rec.ScanCount > e.maxScans:
		res.Outcome = OutcomeLimitExceeded
	default:
		res.Outcome = OutcomeValid
	}

	e.logger.Debug("code verified",
		logpkg.Str("id", id),
		logpkg.Str("outcome", res.Outcome.String()),
		logpkg.Uint64("scan_count", rec.ScanCount))
	return res, nil
}
