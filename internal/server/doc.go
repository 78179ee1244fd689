// Package server implements the one-shot OAuth2 callback listener and the routing it is built on.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with exact-path matching and method filtering.
//
// # Capture Protocol
//
// [Listener] binds a socket and serves three routes:
//
//	GET /                 → "waiting for callback"
//	GET /health           → "ok"
//	GET <callback path>   → terminal route, renders the result page
//
// Anything else is a 404. The terminal route parses the query with [ParseQuery] and offers the
// classified outcome to a single-write capture slot. The first request whose write succeeds decides
// the run's result and triggers teardown; later requests never change it.
//
// Every way a run can end is returned as a [models.Outcome] value: success, provider error,
// malformed query, listener fault, or no response when the context is cancelled first. There is
// no built-in deadline; callers that need one cancel the context.
//
// # Middleware
//
// [RequestLogger] assigns request ids and logs paths (never query strings), [Recover] turns handler
// panics into the internal error page, and [RateLimit] applies a token bucket from golang.org/x/time/rate.
package server
