// Package ir provides the literal value types shared by filter predicates,
// their wire format and content-addressed fingerprints.
//
// ir imports nothing internal. Every other package may import it.
//
// Key design constraints:
//   - No float literals. Decimals travel as IRString and are coerced to the
//     target field type when a predicate is compiled.
//   - Canonical JSON (RFC 8785) is the only encoding used for hashing, so a
//     fingerprint is identical across processes and platforms.
package ir
