// Package models defines the values passed across the callback capture boundary and the persisted run history.
//
// Capture values:
//   - [CodeGrant] : success payload, an [AuthorizationCode] and the echoed [CsrfToken]
//   - [ErrorResponse] : standard OAuth2 error payload (error, error_description, error_uri)
//   - [AuthorizationResult] : tagged union of the two, produced by the query parser
//   - [Outcome] : the single value a listener run resolves to
//
// Persistent entities:
//   - [Run] : one listener run, recorded without the code or state values
//
// Persistent entities implement the Model interface providing ID, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
