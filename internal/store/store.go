package store

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/doebialale/EZRAVERIFY/internal/record"
	pebblestore "github.com/doebialale/EZRAVERIFY/internal/storage/pebble"
	logpkg "github.com/doebialale/EZRAVERIFY/pkg/log"
)

// ExpiryYears is the fixed offset between manufacturing and expiration.
const ExpiryYears = 3

// Sentinel errors surfaced by store operations.
var (
	ErrDuplicateIdentifier = errors.New("store: identifier already exists")
	ErrNotFound            = errors.New("store: record not found")
	ErrAlreadySold         = errors.New("store: sale already recorded")
)

// lockStripes is the number of per-identifier lock stripes. Power of two.
const lockStripes = 64

// Store is the persisted table of code records.
type Store struct {
	db     *pebblestore.DB
	logger logpkg.Logger
	locks  [lockStripes]sync.Mutex
}

// Open binds a Store to an opened database.
func Open(db *pebblestore.DB, logger logpkg.Logger) *Store {
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel))
	}
	return &Store{db: db, logger: logger.WithComponent("store")}
}

// lockFor returns the stripe mutex serializing mutations for an id.
func (s *Store) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &s.locks[h.Sum32()&(lockStripes-1)]
}

// Create inserts a new record for id with scanCount 0 and no sale. The
// expiration date is derived as manufacturingDate + ExpiryYears at creation
// time and never recomputed. Returns ErrDuplicateIdentifier when id is
// already present; at most one concurrent creator wins.
func (s *Store) Create(ctx context.Context, id string, manufacturingDate record.Date, info string) (record.Record, error) {
	if id == "" {
		return record.Record{}, fmt.Errorf("store: empty identifier")
	}
	if manufacturingDate.IsZero() {
		return record.Record{}, fmt.Errorf("store: manufacturing date required")
	}

	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	key := record.Key(id)
	present, err := s.db.Has(key)
	if err != nil {
		return record.Record{}, fmt.Errorf("store: check %s: %w", id, err)
	}
	if present {
		return record.Record{}, ErrDuplicateIdentifier
	}

	rec := record.Record{
		ID:                id,
		ManufacturingDate: manufacturingDate,
		ExpirationDate:    manufacturingDate.AddYears(ExpiryYears),
		Info:              info,
		ScanCount:         0,
	}
	val, err := record.Encode(rec)
	if err != nil {
		return record.Record{}, err
	}
	if err := s.db.Set(key, val); err != nil {
		return record.Record{}, fmt.Errorf("store: persist %s: %w", id, err)
	}
	s.logger.Debug("record created",
		logpkg.Str("id", id),
		logpkg.Str("expires", rec.ExpirationDate.String()))
	return rec, nil
}

// Exists reports whether a record exists for id. No side effects.
func (s *Store) Exists(_ context.Context, id string) (bool, error) {
	present, err := s.db.Has(record.Key(id))
	if err != nil {
		return false, fmt.Errorf("store: check %s: %w", id, err)
	}
	return present, nil
}

// ReadAndIncrement bumps the scan counter for id by one, persists the new
// count, and returns the record as observed after the increment. This is
// the sole mutator of scanCount. Returns ErrNotFound when id is absent.
func (s *Store) ReadAndIncrement(_ context.Context, id string) (record.Record, error) {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	rec, err := s.get(id)
	if err != nil {
		return record.Record{}, err
	}
	rec.ScanCount++
	if err := s.put(rec); err != nil {
		return record.Record{}, err
	}
	return rec, nil
}

// RecordSale performs the one-time soldDate assignment. Returns ErrNotFound
// when id is absent and ErrAlreadySold when a sale was already recorded;
// a failed call leaves the stored soldDate unchanged.
func (s *Store) RecordSale(_ context.Context, id string, soldDate record.Date) error {
	if soldDate.IsZero() {
		return fmt.Errorf("store: sold date required")
	}

	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	rec, err := s.get(id)
	if err != nil {
		return err
	}
	if rec.Sold() {
		return ErrAlreadySold
	}
	rec.SoldDate = &soldDate
	if err := s.put(rec); err != nil {
		return err
	}
	s.logger.Debug("sale recorded",
		logpkg.Str("id", id),
		logpkg.Str("sold", soldDate.String()))
	return nil
}

// ListOptions controls the admin listing scan.
type ListOptions struct {
	// Limit caps the number of returned records; 0 means no cap.
	Limit int
}

// List scans the record table in key order. Rows that fail to decode are
// skipped rather than failing the whole scan.
func (s *Store) List(_ context.Context, opts ListOptions) ([]record.Record, error) {
	lo := record.Prefix()
	hi := record.PrefixUpperBound(lo)
	it, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lo, UpperBound: hi})
	if err != nil {
		return nil, fmt.Errorf("store: list iterator: %w", err)
	}
	defer func() { _ = it.Close() }()

	var out []record.Record
	for ok := it.First(); ok; ok = it.Next() {
		rec, err := record.Decode(it.Value())
		if err != nil {
			s.logger.Warn("skipping undecodable row", logpkg.Str("key", string(it.Key())), logpkg.Err(err))
			continue
		}
		if rec.ID == "" {
			rec.ID = record.IDFromKey(it.Key())
		}
		out = append(out, rec)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}

func (s *Store) get(id string) (record.Record, error) {
	val, err := s.db.Get(record.Key(id))
	if err != nil {
		if errors.Is(err, pebblestore.ErrKeyNotFound) {
			return record.Record{}, ErrNotFound
		}
		return record.Record{}, fmt.Errorf("store: read %s: %w", id, err)
	}
	rec, err := record.Decode(val)
	if err != nil {
		return record.Record{}, err
	}
	if rec.ID == "" {
		rec.ID = id
	}
	return rec, nil
}

func (s *Store) put(rec record.Record) error {
	val, err := record.Encode(rec)
	if err != nil {
		return err
	}
	if err := s.db.Set(record.Key(rec.ID), val); err != nil {
		return fmt.Errorf("store: persist %s: %w", rec.ID, err)
	}
	return nil
}
