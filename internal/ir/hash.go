package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed fingerprints.
// The version suffix leaves room for changing the encoding later.
const (
	DomainFilter = "sieve/filter/v1"
	DomainRecord = "sieve/record/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator keeps domain and data from running into each other.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint hashes the canonical encoding of v under the given domain.
// Equal values always produce equal fingerprints; the fingerprint is stable
// across processes.
func Fingerprint(domain string, v IRValue) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", domain, err)
	}
	return hashWithDomain(domain, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when the value is known to be encodable.
func MustFingerprint(domain string, v IRValue) string {
	fp, err := Fingerprint(domain, v)
	if err != nil {
		panic(err)
	}
	return fp
}

// ExactFingerprint hashes the exact encoding of v under the given domain.
// Unlike Fingerprint, strings that differ only in normalization or in
// invalid bytes hash differently.
func ExactFingerprint(domain string, v IRValue) (string, error) {
	data, err := MarshalExact(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", domain, err)
	}
	return hashWithDomain(domain, data), nil
}

// MustExactFingerprint is like ExactFingerprint but panics on error.
func MustExactFingerprint(domain string, v IRValue) string {
	fp, err := ExactFingerprint(domain, v)
	if err != nil {
		panic(err)
	}
	return fp
}
