package auth

import (
	"crypto/rand"
	"encoding/base64"
)

const (
	// SessionTokenLength is the length of session tokens in bytes
	SessionTokenLength = 32
	// TempPasswordLength is the length of generated temporary passwords in bytes
	TempPasswordLength = 9
)

// GenerateSessionToken generates a cryptographically secure random session token
func GenerateSessionToken() (string, error) {
	b := make([]byte, SessionTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// GenerateTempPassword generates a random temporary password for accounts
// created by the platform operator
func GenerateTempPassword() (string, error) {
	b := make([]byte, TempPasswordLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
