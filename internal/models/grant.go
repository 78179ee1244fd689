package models

import (
	"fmt"
	"strings"
)

const redacted = "[redacted]"

// AuthorizationCode is the one-time credential returned by the identity provider.
//
// String redacts the value so codes never end up in logs by accident; use [AuthorizationCode.Secret].
type AuthorizationCode string

func (c AuthorizationCode) String() string { return redacted }

// Secret returns the raw code.
func (c AuthorizationCode) Secret() string { return string(c) }

// CsrfToken is the opaque state value the caller chose and the provider echoed back.
type CsrfToken string

func (t CsrfToken) String() string { return redacted }

// Secret returns the raw token.
func (t CsrfToken) Secret() string { return string(t) }

// CodeGrant is the success shape of an authorization code redirect.
type CodeGrant struct {
	Code  AuthorizationCode
	State CsrfToken
}

// ErrorResponse is the standard OAuth2 error shape (RFC 6749 section 4.1.2.1).
type ErrorResponse struct {
	Code        string // error
	Description string // error_description, optional
	URI         string // error_uri, optional
}

// Error formats the response as "code: description (uri)", omitting absent parts.
func (e *ErrorResponse) Error() string {
	var b strings.Builder
	b.WriteString(e.Code)
	if e.Description != "" {
		fmt.Fprintf(&b, ": %s", e.Description)
	}
	if e.URI != "" {
		fmt.Fprintf(&b, " (%s)", e.URI)
	}
	return b.String()
}

// AuthorizationResult is either a [CodeGrant] or an [ErrorResponse]; exactly one field is set.
type AuthorizationResult struct {
	Grant *CodeGrant
	Err   *ErrorResponse
}

// Granted reports whether the result carries the success shape.
func (r AuthorizationResult) Granted() bool {
	return r.Grant != nil
}
