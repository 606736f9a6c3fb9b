// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /api/heatmap", middleware.WithLogging(handler))

Each request gets an X-Request-ID (reused from the client when present),
available to handlers through RequestID(r.Context()). Completion is logged
with status and duration_ms.

# Metrics

WithMetrics records handler latency in the request duration histogram,
labelled by method and matched route pattern:

	middleware.WithMetrics(m, middleware.WithLogging(handler))

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows GET, POST, OPTIONS with headers Content-Type, X-Admin-Key, X-Request-ID.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		...
	}

# Client IP Extraction

ProxyTrust.ClientIP returns the original client address. Forwarding headers
are honoured only when RemoteAddr belongs to a configured trusted proxy; the
X-Forwarded-For chain is then read right to left and the first untrusted hop
is the client. X-Real-IP is the fallback, then RemoteAddr. The result feeds
identity derivation, so an empty result falls back to the identity package's
sentinel rather than failing the request.

	trust, err := middleware.ParseTrustedProxies([]string{"10.0.0.0/8"})
	ip := trust.ClientIP(r)
*/
package middleware
