package server

import (
	"errors"
	"testing"

	"github.com/desertthunder/oneshot/internal/models"
)

func TestParseQuery(t *testing.T) {
	t.Run("code grant", func(t *testing.T) {
		tc := []struct {
			name  string
			raw   string
			code  string
			state string
		}{
			{name: "plain", raw: "code=abc123&state=xyz789", code: "abc123", state: "xyz789"},
			{name: "reordered", raw: "state=xyz789&code=abc123", code: "abc123", state: "xyz789"},
			{name: "percent encoded", raw: "code=a%2Fb%3Dc&state=s%20t", code: "a/b=c", state: "s t"},
			{name: "extra keys ignored", raw: "code=c&state=s&scope=openid+email&session_state=x", code: "c", state: "s"},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				result, err := ParseQuery(tt.raw)
				if err != nil {
					t.Fatalf("ParseQuery() error = %v", err)
				}
				if !result.Granted() || result.Err != nil {
					t.Fatalf("expected grant, got %+v", result)
				}
				if result.Grant.Code.Secret() != tt.code {
					t.Errorf("code = %q, want %q", result.Grant.Code.Secret(), tt.code)
				}
				if result.Grant.State.Secret() != tt.state {
					t.Errorf("state = %q, want %q", result.Grant.State.Secret(), tt.state)
				}
			})
		}
	})

	t.Run("error response", func(t *testing.T) {
		tc := []struct {
			name string
			raw  string
			want models.ErrorResponse
		}{
			{
				name: "error only",
				raw:  "error=access_denied",
				want: models.ErrorResponse{Code: "access_denied"},
			},
			{
				name: "with description",
				raw:  "error=access_denied&error_description=User%20cancelled",
				want: models.ErrorResponse{Code: "access_denied", Description: "User cancelled"},
			},
			{
				name: "with uri",
				raw:  "error=invalid_scope&error_uri=https%3A%2F%2Fidp.test%2Fdocs",
				want: models.ErrorResponse{Code: "invalid_scope", URI: "https://idp.test/docs"},
			},
			{
				name: "all fields and state",
				raw:  "error=server_error&error_description=boom&error_uri=https://idp.test&state=xyz",
				want: models.ErrorResponse{Code: "server_error", Description: "boom", URI: "https://idp.test"},
			},
			{
				name: "extension code",
				raw:  "error=interaction_required",
				want: models.ErrorResponse{Code: "interaction_required"},
			},
			{
				name: "empty optional fields are absent",
				raw:  "error=e&error_description=&error_uri=",
				want: models.ErrorResponse{Code: "e"},
			},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				result, err := ParseQuery(tt.raw)
				if err != nil {
					t.Fatalf("ParseQuery() error = %v", err)
				}
				if result.Granted() || result.Err == nil {
					t.Fatalf("expected error response, got %+v", result)
				}
				if *result.Err != tt.want {
					t.Errorf("got %+v, want %+v", *result.Err, tt.want)
				}
			})
		}
	})

	t.Run("malformed", func(t *testing.T) {
		tc := []struct {
			name string
			raw  string
			want error
		}{
			{name: "empty", raw: "", want: ErrEmptyQuery},
			{name: "bad escape", raw: "code=%zz&state=s", want: ErrUndecodableQuery},
			{name: "semicolon separator", raw: "code=a;state=b", want: ErrUndecodableQuery},
			{name: "neither shape", raw: "foo=bar", want: ErrUnknownShape},
			{name: "state only", raw: "state=s", want: ErrUnknownShape},
			{name: "both shapes", raw: "code=a&state=b&error=access_denied", want: ErrAmbiguousQuery},
			{name: "missing state", raw: "code=abc", want: ErrMissingField},
			{name: "empty code", raw: "code=&state=s", want: ErrMissingField},
			{name: "empty error", raw: "error=", want: ErrMissingField},
			{name: "duplicate code", raw: "code=a&code=b&state=s", want: ErrDuplicateField},
			{name: "duplicate description", raw: "error=e&error_description=a&error_description=b", want: ErrDuplicateField},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				result, err := ParseQuery(tt.raw)
				if !errors.Is(err, tt.want) {
					t.Fatalf("ParseQuery(%q) error = %v, want %v", tt.raw, err, tt.want)
				}
				if result.Grant != nil || result.Err != nil {
					t.Errorf("expected empty result, got %+v", result)
				}

				outcome := classify(tt.raw)
				if outcome.Kind != models.OutcomeMalformed {
					t.Errorf("classify(%q) = %v, want malformed", tt.raw, outcome.Kind)
				}
			})
		}
	})

	t.Run("repeatable", func(t *testing.T) {
		raw := "code=abc&state=xyz"
		a, errA := ParseQuery(raw)
		b, errB := ParseQuery(raw)
		if errA != nil || errB != nil {
			t.Fatalf("unexpected errors %v %v", errA, errB)
		}
		if *a.Grant != *b.Grant {
			t.Errorf("results differ: %+v vs %+v", a.Grant, b.Grant)
		}
	})
}
