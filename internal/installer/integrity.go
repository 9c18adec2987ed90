package installer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"strconv"
	"strings"
)

// IntegrityError reports a downloaded artifact that does not match the catalog
type IntegrityError struct {
	Field    string // "size" or "sha256"
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity check failed: %s mismatch: expected %s, got %s", e.Field, e.Expected, e.Actual)
}

// Digest is the byte count and SHA-256 of some content
type Digest struct {
	Size   int64
	SHA256 string
}

// Verify checks the digest against the expected size and hex checksum.
// Checksums compare case-insensitively.
func (d Digest) Verify(expectedSize int64, expectedChecksum string) error {
	if d.Size != expectedSize {
		return &IntegrityError{
			Field:    "size",
			Expected: strconv.FormatInt(expectedSize, 10),
			Actual:   strconv.FormatInt(d.Size, 10),
		}
	}
	if !strings.EqualFold(d.SHA256, strings.TrimSpace(expectedChecksum)) {
		return &IntegrityError{Field: "sha256", Expected: expectedChecksum, Actual: d.SHA256}
	}
	return nil
}

// digestWriter accumulates a Digest of everything written to it
type digestWriter struct {
	hasher hash.Hash
	size   int64
}

func newDigestWriter() *digestWriter {
	return &digestWriter{hasher: sha256.New()}
}

func (w *digestWriter) Write(p []byte) (int, error) {
	w.size += int64(len(p))
	return w.hasher.Write(p)
}

func (w *digestWriter) Digest() Digest {
	return Digest{Size: w.size, SHA256: hex.EncodeToString(w.hasher.Sum(nil))}
}
