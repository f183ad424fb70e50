package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/doebialale/EZRAVERIFY/internal/record"
	pebblestore "github.com/doebialale/EZRAVERIFY/internal/storage/pebble"
	logpkg "github.com/doebialale/EZRAVERIFY/pkg/log"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Fsync: pebblestore.FsyncModeNever})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	logger, _ := logpkg.ApplyConfig(&logpkg.Config{Level: "error"})
	return Open(db, logger)
}

func TestCreateAndExists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mfg := record.NewDate(2025, time.June, 1)

	rec, err := s.Create(ctx, "CODE1", mfg, "ALPHA-ZULU-001")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ExpirationDate != record.NewDate(2028, time.June, 1) {
		t.Fatalf("expiration: got %v", rec.ExpirationDate)
	}
	if rec.ScanCount != 0 || rec.Sold() {
		t.Fatalf("fresh record state: %+v", rec)
	}

	ok, err := s.Exists(ctx, "CODE1")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !ok {
		t.Fatalf("expected CODE1 present")
	}
	ok, err = s.Exists(ctx, "CODE2")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if ok {
		t.Fatalf("expected CODE2 absent")
	}
}

func TestCreateDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mfg := record.NewDate(2025, time.June, 1)

	if _, err := s.Create(ctx, "DUP", mfg, "first"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create(ctx, "DUP", mfg, "second"); !errors.Is(err, ErrDuplicateIdentifier) {
		t.Fatalf("expected ErrDuplicateIdentifier, got %v", err)
	}

	// Exactly one stored record, unchanged.
	rec, err := s.ReadAndIncrement(ctx, "DUP")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if rec.Info != "first" {
		t.Fatalf("losing creator overwrote record: %+v", rec)
	}
}

func TestCreateValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.Create(ctx, "", record.NewDate(2025, time.June, 1), "x"); err == nil {
		t.Fatalf("expected error for empty id")
	}
	if _, err := s.Create(ctx, "NODATE", record.Date{}, "x"); err == nil {
		t.Fatalf("expected error for zero date")
	}
}

func TestReadAndIncrement(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mfg := record.NewDate(2025, time.June, 1)
	if _, err := s.Create(ctx, "SCAN", mfg, "x"); err != nil {
		t.Fatalf("create: %v", err)
	}

	for want := uint64(1); want <= 3; want++ {
		rec, err := s.ReadAndIncrement(ctx, "SCAN")
		if err != nil {
			t.Fatalf("increment: %v", err)
		}
		if rec.ScanCount != want {
			t.Fatalf("scanCount: got %d want %d", rec.ScanCount, want)
		}
	}
}

func TestReadAndIncrementNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.ReadAndIncrement(context.Background(), "GHOST"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConcurrentIncrementsNoLostUpdates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mfg := record.NewDate(2025, time.June, 1)
	if _, err := s.Create(ctx, "HOT", mfg, "x"); err != nil {
		t.Fatalf("create: %v", err)
	}

	const n = 64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := s.ReadAndIncrement(ctx, "HOT"); err != nil {
				t.Errorf("increment: %v", err)
			}
		}()
	}
	wg.Wait()

	rec, err := s.ReadAndIncrement(ctx, "HOT")
	if err != nil {
		t.Fatalf("final read: %v", err)
	}
	if rec.ScanCount != n+1 {
		t.Fatalf("lost updates: got %d want %d", rec.ScanCount, n+1)
	}
}

func TestConcurrentDistinctIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mfg := record.NewDate(2025, time.June, 1)
	ids := []string{"AAA", "BBB", "CCC", "DDD"}
	for _, id := range ids {
		if _, err := s.Create(ctx, id, mfg, "x"); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	const per = 16
	var wg sync.WaitGroup
	for _, id := range ids {
		for i := 0; i < per; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				if _, err := s.ReadAndIncrement(ctx, id); err != nil {
					t.Errorf("increment %s: %v", id, err)
				}
			}(id)
		}
	}
	wg.Wait()

	for _, id := range ids {
		rec, err := s.ReadAndIncrement(ctx, id)
		if err != nil {
			t.Fatalf("read %s: %v", id, err)
		}
		if rec.ScanCount != per+1 {
			t.Fatalf("%s: got %d want %d", id, rec.ScanCount, per+1)
		}
	}
}

func TestRecordSaleOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mfg := record.NewDate(2025, time.June, 1)
	if _, err := s.Create(ctx, "SALE", mfg, "x"); err != nil {
		t.Fatalf("create: %v", err)
	}

	first := record.NewDate(2025, time.July, 10)
	if err := s.RecordSale(ctx, "SALE", first); err != nil {
		t.Fatalf("sale: %v", err)
	}
	if err := s.RecordSale(ctx, "SALE", record.NewDate(2025, time.August, 1)); !errors.Is(err, ErrAlreadySold) {
		t.Fatalf("expected ErrAlreadySold, got %v", err)
	}

	rec, err := s.ReadAndIncrement(ctx, "SALE")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if rec.SoldDate == nil || *rec.SoldDate != first {
		t.Fatalf("soldDate changed by failing call: %+v", rec.SoldDate)
	}
}

func TestRecordSaleNotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.RecordSale(context.Background(), "GHOST", record.NewDate(2025, time.July, 10))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mfg := record.NewDate(2025, time.June, 1)
	for _, id := range []string{"L1", "L2", "L3"} {
		if _, err := s.Create(ctx, id, mfg, "x"); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	all, err := s.List(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("list: got %d want 3", len(all))
	}

	capped, err := s.List(ctx, ListOptions{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(capped) != 2 {
		t.Fatalf("limit: got %d want 2", len(capped))
	}
}
