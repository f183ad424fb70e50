// Package runtime wires storage, config, the record store, the issuer, and
// the verification engine for a single-node instance.
package runtime
