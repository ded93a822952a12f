package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// Prefix returns the first n characters of SHA256Hex(input), or the full
// hash when n exceeds its length.
func Prefix(input string, n int) string {
	full := SHA256Hex(input)
	if n > len(full) {
		return full
	}
	return full[:n]
}

// HashIP returns a short salted hash of an IP address, suitable for
// correlating log lines without recording the address.
func HashIP(ip, salt string) string {
	return Prefix(salt+ip, 12)
}
