package record

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is the persisted metadata row for one issued code.
type Record struct {
	ID                string `json:"id"`
	ManufacturingDate Date   `json:"manufacturingDate"`
	ExpirationDate    Date   `json:"expirationDate"`
	Info              string `json:"info"`
	SoldDate          *Date  `json:"soldDate,omitempty"`
	ScanCount         uint64 `json:"scanCount"`
}

// Sold reports whether a sale has been recorded.
func (r Record) Sold() bool { return r.SoldDate != nil }

// Encode serializes a record to its stored JSON value.
func Encode(r Record) ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("record: encode %s: %w", r.ID, err)
	}
	return b, nil
}

// wireRecord is the tolerant decode shape. It carries the legacy column
// names alongside the current ones; Decode coalesces them.
type wireRecord struct {
	ID                string          `json:"id"`
	ManufacturingDate string          `json:"manufacturingDate"`
	CreatedDate       string          `json:"createdDate"`
	Timestamp         string          `json:"timestamp"`
	ExpirationDate    string          `json:"expirationDate"`
	ExpiryDate        string          `json:"expiryDate"`
	Info              string          `json:"info"`
	SoldDate          string          `json:"soldDate"`
	ScanCount         json.RawMessage `json:"scanCount"`
}

// Decode deserializes a stored value, applying defaults for fields absent
// or malformed in older-format rows: manufacturingDate falls back to
// createdDate then timestamp, expirationDate to expiryDate, soldDate to
// absent, scanCount to 0.
func Decode(b []byte) (Record, error) {
	var w wireRecord
	if err := json.Unmarshal(b, &w); err != nil {
		return Record{}, fmt.Errorf("record: decode: %w", err)
	}

	r := Record{
		ID:   w.ID,
		Info: w.Info,
	}
	r.ManufacturingDate = firstDate(w.ManufacturingDate, w.CreatedDate, w.Timestamp)
	r.ExpirationDate = firstDate(w.ExpirationDate, w.ExpiryDate)
	if d := firstDate(w.SoldDate); !d.IsZero() {
		r.SoldDate = &d
	}
	r.ScanCount = decodeCount(w.ScanCount)
	return r, nil
}

// firstDate parses candidates in order and returns the first that yields a
// valid date; malformed or empty candidates are skipped.
func firstDate(candidates ...string) Date {
	for _, s := range candidates {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if d, err := ParseDate(s); err == nil {
			return d
		}
	}
	return Date{}
}

// decodeCount accepts a JSON number, a quoted number (CSV heritage), or
// nothing, coalescing anything unusable to 0.
func decodeCount(raw json.RawMessage) uint64 {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0
	}
	s = strings.Trim(s, `"`)
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
