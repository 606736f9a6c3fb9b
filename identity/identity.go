// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// Stand-ins for request metadata the client did not send
const (
	UnknownIP        = "127.0.0.1"
	UnknownUserAgent = "unknown"
)

// TokenLen is the length of a derived token in hex characters.
const TokenLen = sha256.Size * 2

var ErrInvalidAdminKey = errors.New("invalid admin key")

// Derive returns the pseudonymous token for a client on a given day.
// The same (ip, userAgent, day, secret) always yields the same token; a new day
// yields an unrelated one.
func Derive(ip, userAgent, day, secret string) string {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		ip = UnknownIP
	}
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		userAgent = UnknownUserAgent
	}

	h := hmac.New(sha256.New, []byte(secret))
	// NUL separators keep ("a", "bc") and ("ab", "c") apart
	h.Write([]byte(ip))
	h.Write([]byte{0})
	h.Write([]byte(userAgent))
	h.Write([]byte{0})
	h.Write([]byte(day))
	return hex.EncodeToString(h.Sum(nil))
}

// ValidateAdminKey compares the provided key with the configured one in constant time
func ValidateAdminKey(provided, expected string) error {
	if expected == "" || !hmac.Equal([]byte(provided), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}
