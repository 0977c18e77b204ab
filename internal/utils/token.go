package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for bearer tokens
	"encoding/hex"  // hex encoding of random bytes and digests
)

// SessionTokenBytes is the entropy of a freshly minted bearer token. The
// hex encoding doubles it to 96 characters on the wire.
const SessionTokenBytes = 48

// NewSessionToken mints an opaque bearer token from cryptographically
// secure random data. The raw value is handed to the client exactly once;
// only its hash ever touches the database.
func NewSessionToken() (string, error) {
	buf := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashTokenRaw returns the SHA-256 hash of a raw bearer token as a hex
// string. Storing only the hash keeps stolen database rows from being
// replayed as credentials.
func HashTokenRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
