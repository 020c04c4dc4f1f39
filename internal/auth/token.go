package auth

import (
	"crypto/rand"
	"encoding/base64"
)

const sessionTokenBytes = 32

// NewSessionToken returns an opaque bearer string with 256 bits of
// entropy. Callers store it client-side and present it on every call.
func NewSessionToken() (string, error) {
	raw := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
