package code

import (
	"crypto/rand"
	"fmt"
)

// Alphabet is the set of characters a code token may contain.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the default token length in characters.
const Length = 24

// infoWords is the phonetic word list used for human-readable labels.
var infoWords = []string{
	"ALPHA", "BRAVO", "CHARLIE", "DELTA", "ECHO", "FOXTROT", "GOLF",
	"HOTEL", "JULIET", "KILO", "LIMA", "MIKE", "NOVEMBER", "OSCAR",
	"PAPA", "QUEBEC", "ROMEO", "SIERRA", "TANGO", "UNIFORM", "VICTOR",
	"WHISKEY", "XRAY", "YANKEE", "ZULU",
}

// Random draws an n-character token uniformly over Alphabet from
// crypto/rand. Rejection sampling keeps the draw unbiased: 36 does not
// divide 256, so raw bytes >= 252 are redrawn.
func Random(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("code: invalid token length %d", n)
	}
	const limit = byte(256 - 256%len(Alphabet)) // 252
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("code: read random source: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}

// NewInfo builds a human-readable descriptive label of the form
// WORD-WORD-NNN, with both words and the 3-digit number drawn from
// crypto/rand.
func NewInfo() (string, error) {
	w1, err := randBelow(len(infoWords))
	if err != nil {
		return "", err
	}
	w2, err := randBelow(len(infoWords))
	if err != nil {
		return "", err
	}
	n, err := randBelow(1000)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%03d", infoWords[w1], infoWords[w2], n), nil
}

// randBelow returns an unbiased random int in [0, n) for small n.
func randBelow(n int) (int, error) {
	limit := 65536 - 65536%n
	var buf [2]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, fmt.Errorf("code: read random source: %w", err)
		}
		v := int(buf[0])<<8 | int(buf[1])
		if v < limit {
			return v % n, nil
		}
	}
}
