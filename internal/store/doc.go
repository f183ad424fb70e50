// Package store implements the durable record store for issued codes.
//
// # Contract
//
// Create inserts a new record (failing on duplicate ids), Exists is a pure
// lookup, ReadAndIncrement atomically bumps the scan counter and returns
// the post-increment state, and RecordSale performs the one-time soldDate
// assignment. Every mutation is committed to Pebble with the configured
// fsync policy before the call returns.
//
// # Concurrency
//
// Mutations are serialized per identifier through striped mutexes keyed by
// an FNV hash of the id. Two concurrent ReadAndIncrement calls for the same
// id can never compute their increment from the same pre-increment value;
// operations on distinct ids proceed in parallel (modulo stripe
// collisions, which only cost waiting, never correctness).
package store
