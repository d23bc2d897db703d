// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// MaxTokenLength bounds voter tokens accepted from clients
const MaxTokenLength = 128

// GenerateID creates a random URL-safe ID from byteLen random bytes.
// Poll IDs use 6 bytes (8 chars), option IDs use 8 bytes (11 chars).
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ResolveVoterID reuses the token a client presented, or mints a new one
// when the client has none (or sent something that is not a token)
func ResolveVoterID(supplied string) string {
	if supplied != "" && len(supplied) <= MaxTokenLength && ValidToken(supplied) {
		return supplied
	}
	return uuid.NewString()
}

// FingerprintIP creates a one-way digest of an IP address.
// The server-side salt keeps stored fingerprints from being reversed with a
// lookup table while repeat callers still map to the same value.
func FingerprintIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	return hex.EncodeToString(h.Sum(nil))
}

// ValidToken reports whether s only uses the URL-safe alphabet
// (A-Z, a-z, 0-9, '-' and '_'). UUIDs and GenerateID output both qualify.
func ValidToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}
