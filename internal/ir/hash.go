package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainSnapshot is the domain prefix for snapshot content hashes.
// The version suffix leaves room for a future algorithm migration.
const DomainSnapshot = "recsnap/snapshot/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SnapshotHash computes the content-addressed identity of a snapshot.
// Two snapshots holding equal data hash identically regardless of how
// they were built.
func SnapshotHash(snap IRObject) (string, error) {
	canonical, err := MarshalCanonical(snap)
	if err != nil {
		return "", fmt.Errorf("SnapshotHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSnapshot, canonical), nil
}

// MustSnapshotHash is like SnapshotHash but panics on error.
// Use only in tests or when the snapshot is known to be valid.
func MustSnapshotHash(snap IRObject) string {
	h, err := SnapshotHash(snap)
	if err != nil {
		panic(err)
	}
	return h
}
