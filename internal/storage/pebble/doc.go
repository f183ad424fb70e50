// Package pebblestore provides a thin wrapper around Pebble with fsync
// policy, batches, and minimal metrics hooks.
//
// The record table is small and point-read heavy, so the wrapper surface is
// deliberately narrow: Get/Set, atomic batches, and prefix iteration for
// the admin listing. Durability policy is fixed at Open time; the default
// (FsyncModeAlways) syncs the WAL before a write is acknowledged, which is
// what gives store mutations their durable-before-return contract.
//
// Usage:
//
//	db, err := pebblestore.Open(pebblestore.Options{
//	    DataDir: "./data",
//	    Fsync:   pebblestore.FsyncModeAlways,
//	})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	_ = db.Set([]byte("code/ABC"), value)
//	v, err := db.Get([]byte("code/ABC"))
package pebblestore
