package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// Sum returns the lowercase hex sha256 of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ChecksumMatcher verifies an uploaded file against the digest the client
// announced for it.
type ChecksumMatcher struct {
	expectedChecksum string
}

// NewChecksumMatcher creates a new ChecksumMatcher with the expected checksum.
// An optional "sha256=" prefix is accepted.
func NewChecksumMatcher(expectedChecksum string) *ChecksumMatcher {
	s := strings.ToLower(strings.TrimSpace(expectedChecksum))
	return &ChecksumMatcher{expectedChecksum: strings.TrimPrefix(s, "sha256=")}
}

// Match checks if the provided data's checksum matches the expected checksum.
func (cm *ChecksumMatcher) Match(data []byte) (bool, error) {
	if cm.expectedChecksum == "" {
		return false, errors.New("expected checksum is not set")
	}
	return Sum(data) == cm.expectedChecksum, nil
}
