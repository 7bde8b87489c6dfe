// Package api is the HTTP client used for every call to the MDB backend.
//
// It adds the bearer header for authorized calls, applies a per-attempt
// timeout, retries idempotent reads once on transient failures, and turns
// every failure into an *Error tagged with a Kind. Callers branch on the
// Kind instead of on status codes:
//
//	var user models.User
//	err := client.Get(ctx, "/api/auth/me", nil, &user, api.Options{Authorized: true})
//	if api.IsKind(err, api.KindUnauthorized) {
//		// session already invalidated by the client
//	}
//
// A 401 or 403 on an authorized request is reported to the Invalidator
// before the error is returned.
package api
