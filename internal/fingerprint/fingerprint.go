// Package fingerprint computes deterministic content digests used as the
// upload de-duplication key. Two assets with the same fingerprint are
// interchangeable for upload purposes, regardless of name or build.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data. The digest is over the
// asset's current bytes, so a rewritten asset fingerprints differently from
// its pre-rewrite form.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
