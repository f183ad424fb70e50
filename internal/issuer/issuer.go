package issuer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doebialale/EZRAVERIFY/internal/qr"
	"github.com/doebialale/EZRAVERIFY/internal/record"
	"github.com/doebialale/EZRAVERIFY/internal/store"
	"github.com/doebialale/EZRAVERIFY/pkg/code"
	logpkg "github.com/doebialale/EZRAVERIFY/pkg/log"
)

// maxAttempts bounds the draw-and-check loop. With a 36^24 token space the
// loop retries only on true collisions, so reaching this ceiling means the
// configuration is broken (token length slashed, store corrupted).
const maxAttempts = 1 << 16

// ErrSpaceExhausted is returned when no unique token could be drawn within
// maxAttempts. It is fatal; the issuer never degrades to a duplicate or a
// shorter token.
var ErrSpaceExhausted = errors.New("issuer: token space exhausted")

// RecordStore is the store surface the issuer needs.
type RecordStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, id string, manufacturingDate record.Date, info string) (record.Record, error)
}

// Issued is the result of one issuance.
type Issued struct {
	Record record.Record
	URL    string
	QRPath string
}

// Issuer creates new codes against a store and renders their QR images.
type Issuer struct {
	store      RecordStore
	renderer   *qr.Renderer
	baseURL    string
	codeLength int
	logger     logpkg.Logger

	// now is injectable for tests.
	now func() time.Time
}

// New builds an Issuer. renderer may be nil to skip QR output (tests,
// dry runs). codeLength <= 0 falls back to code.Length.
func New(s RecordStore, renderer *qr.Renderer, baseURL string, codeLength int, logger logpkg.Logger) *Issuer {
	if codeLength <= 0 {
		codeLength = code.Length
	}
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel))
	}
	return &Issuer{
		store:      s,
		renderer:   renderer,
		baseURL:    baseURL,
		codeLength: codeLength,
		logger:     logger.WithComponent("issuer"),
		now:        time.Now,
	}
}

// Issue creates one record. A zero manufacturingDate defaults to today; an
// empty info defaults to a generated label. The record is durably created
// before the QR image is rendered, so a render failure surfaces as an
// error but never rolls back issuance.
func (i *Issuer) Issue(ctx context.Context, manufacturingDate record.Date, info string) (Issued, error) {
	if manufacturingDate.IsZero() {
		manufacturingDate = record.DateOf(i.now())
	}
	if info == "" {
		generated, err := code.NewInfo()
		if err != nil {
			return Issued{}, fmt.Errorf("issuer: generate info: %w", err)
		}
		info = generated
	}

	rec, attempts, err := i.createUnique(ctx, manufacturingDate, info)
	if err != nil {
		return Issued{}, err
	}

	out := Issued{
		Record: rec,
		URL:    qr.VerificationURL(i.baseURL, rec.ID),
	}
	if i.renderer != nil {
		path, err := i.renderer.WritePNG(out.URL, rec.ID)
		if err != nil {
			return out, err
		}
		out.QRPath = path
	}

	i.logger.Info("code issued",
		logpkg.Str("id", rec.ID),
		logpkg.Int("attempts", attempts),
		logpkg.Str("expires", rec.ExpirationDate.String()))
	return out, nil
}

// createUnique loops draw -> existence check -> create until a creator
// wins. Collisions, both on the pre-check and on a create race, draw a
// fresh candidate.
func (i *Issuer) createUnique(ctx context.Context, manufacturingDate record.Date, info string) (record.Record, int, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		candidate, err := code.Random(i.codeLength)
		if err != nil {
			return record.Record{}, attempt, fmt.Errorf("issuer: draw candidate: %w", err)
		}
		present, err := i.store.Exists(ctx, candidate)
		if err != nil {
			return record.Record{}, attempt, err
		}
		if present {
			i.logger.Warn("token collision, redrawing", logpkg.Int("attempt", attempt))
			continue
		}
		rec, err := i.store.Create(ctx, candidate, manufacturingDate, info)
		if err != nil {
			if errors.Is(err, store.ErrDuplicateIdentifier) {
				i.logger.Warn("create race lost, redrawing", logpkg.Int("attempt", attempt))
				continue
			}
			return record.Record{}, attempt, err
		}
		return rec, attempt, nil
	}
	return record.Record{}, maxAttempts, ErrSpaceExhausted
}
