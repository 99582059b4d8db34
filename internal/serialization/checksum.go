package serialization

import (
	"io"

	"github.com/cespare/xxhash/v2"
)

// Checksum computes the xxhash64 digest of data.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// ChecksumReader computes the xxhash64 digest of everything r yields.
// This is useful for checking large files without loading them entirely into memory.
func ChecksumReader(r io.Reader) (uint64, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// ValidateChecksum compares a computed digest against an expected one.
// Returns ErrChecksumMismatch if they don't match.
func ValidateChecksum(computed, expected uint64) error {
	if computed != expected {
		return ErrChecksumMismatch
	}
	return nil
}
