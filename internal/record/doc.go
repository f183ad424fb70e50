// Package record defines the persisted product record schema, its wire
// codec, and the Pebble keyspace for the record table.
//
// # Schema
//
// One record per issued code:
//
//	id, manufacturingDate, expirationDate, info, soldDate, scanCount
//
// A record is immutable after creation except for scanCount (incremented by
// the verification read path) and the one-time soldDate assignment.
//
// # Legacy rows
//
// Rows written by earlier exports used createdDate/timestamp for the
// manufacturing date, expiryDate for the expiration date, and stored
// scanCount as a string, or omitted it entirely. Decode coalesces all of
// these to the current schema once, at this boundary; decision logic never
// sees the legacy shapes.
package record
