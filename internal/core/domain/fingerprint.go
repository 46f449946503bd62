package domain

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

const (
	// keyDelimiter separates the fields of a fingerprint.
	keyDelimiter = ":"

	// maxPathKeyLength is the length from which ShortenPath replaces its input with a digest.
	maxPathKeyLength = 128

	// fieldDigestSize is the number of digest bytes kept for variable-length fields (128 bits).
	fieldDigestSize = 16
)

// Fingerprint identifies an export job by its defining parameters.
// Two requests with equal fingerprints are served by the same converter run.
type Fingerprint string

// String returns the raw fingerprint.
func (f Fingerprint) String() string {
	return string(f)
}

// JobID returns a short, stable identifier for the fingerprint, suitable for logs.
func (f Fingerprint) JobID() string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(string(f)))
}

// BuildKey derives the fingerprint of an export from its defining parameters.
// Layer name and query text are digested so the key length does not grow with them.
// Skip fields are appended in the given order.
func BuildKey(formatID, dbName, dbUser, geometryHint, layerName, sqlText string, skipFields []string) Fingerprint {
	parts := make([]string, 0, 6+len(skipFields))
	parts = append(parts,
		formatID,
		dbName,
		dbUser,
		geometryHint,
		digestField(layerName),
		digestField(sqlText),
	)
	parts = append(parts, skipFields...)
	return Fingerprint(strings.Join(parts, keyDelimiter))
}

// ShortenPath returns raw unchanged when it is shorter than 128 characters and a
// fixed-length hex digest of it otherwise.
func ShortenPath(raw string) string {
	if len(raw) < maxPathKeyLength {
		return raw
	}
	sum := blake3.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func digestField(s string) string {
	h := blake3.New()
	_, _ = h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil)[:fieldDigestSize])
}
