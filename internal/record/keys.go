package record

// Keyspace helpers for Pebble keys.
//
// Layout (byte-wise, lexicographically sortable):
// - code/{id}

var codePrefix = []byte("code/")

// Key builds the record key for a code id.
func Key(id string) []byte {
	k := make([]byte, 0, len(codePrefix)+len(id))
	k = append(k, codePrefix...)
	k = append(k, id...)
	return k
}

// Prefix returns the range prefix covering all record keys.
func Prefix() []byte {
	return append([]byte(nil), codePrefix...)
}

// PrefixUpperBound returns the exclusive upper bound for a prefix scan.
func PrefixUpperBound(prefix []byte) []byte {
	return append(append([]byte(nil), prefix...), 0xFF)
}

// IDFromKey extracts the code id from a record key, or "" if the key is not
// in the record keyspace.
func IDFromKey(k []byte) string {
	if len(k) <= len(codePrefix) {
		return ""
	}
	for i := range codePrefix {
		if k[i] != codePrefix[i] {
			return ""
		}
	}
	return string(k[len(codePrefix):])
}
