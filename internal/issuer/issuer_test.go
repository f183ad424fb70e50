package issuer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/doebialale/EZRAVERIFY/internal/qr"
	"github.com/doebialale/EZRAVERIFY/internal/record"
	"github.com/doebialale/EZRAVERIFY/internal/store"
	pebblestore "github.com/doebialale/EZRAVERIFY/internal/storage/pebble"
	"github.com/doebialale/EZRAVERIFY/pkg/code"
	logpkg "github.com/doebialale/EZRAVERIFY/pkg/log"
)

func newRealStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	logger, _ := logpkg.ApplyConfig(&logpkg.Config{Level: "error"})
	return store.Open(db, logger)
}

func quietLogger() logpkg.Logger {
	l, _ := logpkg.ApplyConfig(&logpkg.Config{Level: "error"})
	return l
}

func TestIssueCreatesRecordAndQR(t *testing.T) {
	s := newRealStore(t)
	qrDir := filepath.Join(t.TempDir(), "qr")
	renderer, err := qr.NewRenderer(qrDir)
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	iss := New(s, renderer, "http://localhost:8000", code.Length, quietLogger())
	iss.now = func() time.Time { return time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC) }

	out, err := iss.Issue(context.Background(), record.Date{}, "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(out.Record.ID) != code.Length {
		t.Fatalf("id length: %d", len(out.Record.ID))
	}
	for _, c := range out.Record.ID {
		if !strings.ContainsRune(code.Alphabet, c) {
			t.Fatalf("id char %q outside alphabet", c)
		}
	}
	if out.Record.ManufacturingDate != record.NewDate(2025, time.June, 1) {
		t.Fatalf("manufacturing date: %v", out.Record.ManufacturingDate)
	}
	if out.Record.ExpirationDate != record.NewDate(2028, time.June, 1) {
		t.Fatalf("expiration date: %v", out.Record.ExpirationDate)
	}
	if out.Record.Info == "" {
		t.Fatalf("info not generated")
	}
	if out.URL != "http://localhost:8000/"+out.Record.ID {
		t.Fatalf("url: %q", out.URL)
	}
	if _, err := os.Stat(out.QRPath); err != nil {
		t.Fatalf("qr png missing: %v", err)
	}

	ok, err := s.Exists(context.Background(), out.Record.ID)
	if err != nil || !ok {
		t.Fatalf("record not persisted: ok=%v err=%v", ok, err)
	}
}

func TestIssueUniqueAcrossMany(t *testing.T) {
	s := newRealStore(t)
	iss := New(s, nil, "http://localhost:8000", code.Length, quietLogger())
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		out, err := iss.Issue(context.Background(), record.Date{}, "X")
		if err != nil {
			t.Fatalf("issue %d: %v", i, err)
		}
		if _, dup := seen[out.Record.ID]; dup {
			t.Fatalf("duplicate id issued: %s", out.Record.ID)
		}
		seen[out.Record.ID] = struct{}{}
	}
}

// collidingStore reports every candidate as existing for the first n
// checks, forcing redraws.
type collidingStore struct {
	inner      *store.Store
	collisions int
	checks     int
}

func (c *collidingStore) Exists(ctx context.Context, id string) (bool, error) {
	c.checks++
	if c.checks <= c.collisions {
		return true, nil
	}
	return c.inner.Exists(ctx, id)
}

func (c *collidingStore) Create(ctx context.Context, id string, d record.Date, info string) (record.Record, error) {
	return c.inner.Create(ctx, id, d, info)
}

func TestIssueRetriesOnCollision(t *testing.T) {
	fake := &collidingStore{inner: newRealStore(t), collisions: 3}
	iss := New(fake, nil, "http://localhost:8000", code.Length, quietLogger())

	out, err := iss.Issue(context.Background(), record.NewDate(2025, time.June, 1), "X")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if fake.checks != 4 {
		t.Fatalf("expected 4 existence checks, got %d", fake.checks)
	}
	if out.Record.ID == "" {
		t.Fatalf("no record issued")
	}
}

// saturatedStore always collides.
type saturatedStore struct{}

func (saturatedStore) Exists(context.Context, string) (bool, error) { return true, nil }
func (saturatedStore) Create(context.Context, string, record.Date, string) (record.Record, error) {
	return record.Record{}, store.ErrDuplicateIdentifier
}

func TestIssueExhaustionIsFatal(t *testing.T) {
	iss := New(saturatedStore{}, nil, "http://localhost:8000", 1, quietLogger())
	_, err := iss.Issue(context.Background(), record.NewDate(2025, time.June, 1), "X")
	if !errors.Is(err, ErrSpaceExhausted) {
		t.Fatalf("expected ErrSpaceExhausted, got %v", err)
	}
}

// racingStore passes the existence check but loses the create race a fixed
// number of times.
type racingStore struct {
	inner *store.Store
	races int
}

func (r *racingStore) Exists(ctx context.Context, id string) (bool, error) {
	return r.inner.Exists(ctx, id)
}

func (r *racingStore) Create(ctx context.Context, id string, d record.Date, info string) (record.Record, error) {
	if r.races > 0 {
		r.races--
		return record.Record{}, store.ErrDuplicateIdentifier
	}
	return r.inner.Create(ctx, id, d, info)
}

func TestIssueRetriesOnCreateRace(t *testing.T) {
	fake := &racingStore{inner: newRealStore(t), races: 2}
	iss := New(fake, nil, "http://localhost:8000", code.Length, quietLogger())
	out, err := iss.Issue(context.Background(), record.NewDate(2025, time.June, 1), "X")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if out.Record.ID == "" {
		t.Fatalf("no record issued after races")
	}
}
