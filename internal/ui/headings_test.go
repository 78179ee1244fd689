package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/oneshot/internal/models"
)

func TestHeadingsFor(t *testing.T) {
	tc := []struct {
		name    string
		outcome models.Outcome
		want    Headings
	}{
		{
			name:    "success",
			outcome: models.Success(models.CodeGrant{Code: "c", State: "s"}),
			want:    Headings{"You are now logged in.", "Please close the window."},
		},
		{
			name:    "error only",
			outcome: models.RemoteError(models.ErrorResponse{Code: "access_denied"}),
			want:    Headings{"Login failed.", "access_denied"},
		},
		{
			name:    "error with description",
			outcome: models.RemoteError(models.ErrorResponse{Code: "access_denied", Description: "User cancelled"}),
			want:    Headings{"Login failed.", "access_denied: User cancelled"},
		},
		{
			name:    "error with uri",
			outcome: models.RemoteError(models.ErrorResponse{Code: "invalid_scope", URI: "https://idp.test/e"}),
			want:    Headings{"Login failed.", "invalid_scope (https://idp.test/e)"},
		},
		{
			name:    "error with description and uri",
			outcome: models.RemoteError(models.ErrorResponse{Code: "server_error", Description: "boom", URI: "https://idp.test/e"}),
			want:    Headings{"Login failed.", "server_error: boom (https://idp.test/e)"},
		},
		{
			name:    "malformed",
			outcome: models.Malformed(errors.New("bad")),
			want:    Headings{"Login failed.", "Received invalid OAuth2 response."},
		},
		{
			name:    "listener fault",
			outcome: models.ListenerFault(errors.New("bind")),
			want:    Headings{"Login failed.", "Internal error receiving response."},
		},
		{
			name:    "no response",
			outcome: models.NoResponse(),
			want:    Headings{"Login failed.", "Internal error receiving response."},
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := HeadingsFor(tt.outcome)
			if got != tt.want {
				t.Errorf("HeadingsFor() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHeadingsHTML(t *testing.T) {
	t.Run("maps title and subheader", func(t *testing.T) {
		page := string(SuccessHeadings.HTML())

		if !strings.Contains(page, "<h1>You are now logged in.</h1>") {
			t.Errorf("missing h1 in %q", page)
		}
		if !strings.Contains(page, "<h2>Please close the window.</h2>") {
			t.Errorf("missing h2 in %q", page)
		}
	})

	t.Run("escapes provider text", func(t *testing.T) {
		page := string(Headings{Title: "Login failed.", Subheader: `<img src=x onerror="x">`}.HTML())

		if strings.Contains(page, "<img") {
			t.Errorf("subheader was not escaped: %q", page)
		}
	})

	t.Run("Failed", func(t *testing.T) {
		if SuccessHeadings.Failed() || CompletedHeadings.Failed() {
			t.Error("success headings should not report failure")
		}
		if !InvalidHeadings.Failed() || !InternalErrorHeadings.Failed() {
			t.Error("failure headings should report failure")
		}
	})
}
