// Package verify implements the verification decision engine.
//
// A verification call resolves to exactly one Outcome:
//
//	lookup -> not found:            Unknown (counter untouched)
//	lookup -> found: increment ->
//	    today after expiration:     Expired
//	    count above the scan limit: LimitExceeded
//	    otherwise:                  Valid
//
// Expiry is checked before the scan limit, so a record that is both
// expired and over-limit reports Expired. The scan is counted for every
// outcome except Unknown; LimitExceeded flags potential cloning without
// stopping the counter.
package verify
