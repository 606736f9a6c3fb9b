// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package identity derives the pseudonymous voter identity.

# Identity Tokens

A token is HMAC-SHA256 over the client IP, user agent, and UTC day, keyed with
the server secret:

	token := identity.Derive(ip, userAgent, "2024-01-01", secret)

Tokens are 64 hex characters. Without the secret they cannot be recomputed,
and because the day is part of the input the same client gets a different
token tomorrow. Missing IPs and user agents fall back to UnknownIP and
UnknownUserAgent instead of failing the request.

Raw IPs are never stored; only the token reaches the vote ledger.

# Admin Keys

Administrative endpoints compare the X-Admin-Key header against the
configured key:

	err := identity.ValidateAdminKey(r.Header.Get("X-Admin-Key"), cfg.AdminKey)

An empty configured key rejects everything.
*/
package identity
