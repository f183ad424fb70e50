// Package code provides the product code token primitives.
//
// # Format
//
// A code is a fixed-length token over the 36-character alphabet A-Z 0-9.
// The default length is 24 characters, which makes the token space large
// enough (36^24) that random draws collide only in theory; callers still
// verify uniqueness against their store before accepting a draw.
//
// # Randomness
//
// Tokens are drawn from crypto/rand with rejection sampling so every
// alphabet character is equally likely. Observing past tokens gives no
// usable information about future ones.
//
// Usage
//
//	token, err := code.Random(code.Length)
//	label, err := code.NewInfo() // e.g. "BRAVO-TANGO-042"
package code
