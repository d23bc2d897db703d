// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(handler))

Logs request completion (method, path, duration_ms).

# CORS Middleware

Allow cross-origin requests from the configured origins:

	server := http.Server{
		Handler: middleware.CORS(cfg.CORSOrigins)(mux),
	}

Matching origins are echoed back with credentials allowed, so the voter
cookie travels with cross-origin votes. Preflight requests get 204.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies (unknown fields rejected, 64 KiB limit):

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(w, r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Takes the first X-Forwarded-For entry, then the peer address, then
"unknown". The result is fingerprinted before it is stored.
*/
package middleware
