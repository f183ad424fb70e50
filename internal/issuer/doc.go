// Package issuer creates new product codes: it draws candidate tokens,
// guarantees uniqueness against the store, persists the record, and
// renders the verification QR image.
//
// The uniqueness check is a correctness requirement, not an optimization:
// every candidate is checked against the store before acceptance, and a
// create-time duplicate (two issuers racing on the same draw) is retried
// transparently. Exhausting the retry budget is treated as a fatal
// configuration error rather than ever falling back to a shorter or
// non-unique token.
package issuer
