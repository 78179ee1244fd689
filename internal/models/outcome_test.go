package models

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestOutcomeResult(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		grant, err := Success(CodeGrant{Code: "abc", State: "xyz"}).Result()
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if grant.Code.Secret() != "abc" || grant.State.Secret() != "xyz" {
			t.Errorf("unexpected grant %+v", grant)
		}
	})

	t.Run("error taxonomy", func(t *testing.T) {
		cause := errors.New("cause")
		tc := []struct {
			name    string
			outcome Outcome
			want    error
		}{
			{name: "remote", outcome: RemoteError(ErrorResponse{Code: "access_denied"}), want: ErrRemote},
			{name: "malformed", outcome: Malformed(cause), want: ErrMalformed},
			{name: "malformed without cause", outcome: Malformed(nil), want: ErrMalformed},
			{name: "listener fault", outcome: ListenerFault(cause), want: ErrListenerFault},
			{name: "no response", outcome: NoResponse(), want: ErrNoResponse},
			{name: "zero value", outcome: Outcome{}, want: ErrNoResponse},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				grant, err := tt.outcome.Result()
				if grant != nil {
					t.Errorf("expected nil grant, got %+v", grant)
				}
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})

	t.Run("no response keeps its cause", func(t *testing.T) {
		deadline := errors.New("deadline")
		_, err := NoResponse().WithCause(deadline).Result()
		if !errors.Is(err, ErrNoResponse) || !errors.Is(err, deadline) {
			t.Errorf("expected both sentinels in %v", err)
		}

		if got := Success(CodeGrant{Code: "a", State: "b"}).WithCause(deadline); got.Err != nil {
			t.Errorf("cause should only attach to no response, got %v", got.Err)
		}
	})

	t.Run("remote error unwraps to response", func(t *testing.T) {
		_, err := RemoteError(ErrorResponse{Code: "access_denied", Description: "nope"}).Result()

		var resp *ErrorResponse
		if !errors.As(err, &resp) {
			t.Fatalf("expected *ErrorResponse in %v", err)
		}
		if resp.Code != "access_denied" {
			t.Errorf("unexpected code %s", resp.Code)
		}
	})

	t.Run("FromResult", func(t *testing.T) {
		if k := FromResult(AuthorizationResult{Grant: &CodeGrant{Code: "c"}}).Kind; k != OutcomeSuccess {
			t.Errorf("expected success, got %v", k)
		}
		if k := FromResult(AuthorizationResult{Err: &ErrorResponse{Code: "e"}}).Kind; k != OutcomeRemoteError {
			t.Errorf("expected remote error, got %v", k)
		}
		if k := FromResult(AuthorizationResult{}).Kind; k != OutcomeMalformed {
			t.Errorf("expected malformed, got %v", k)
		}
	})
}

func TestOutcomeKind(t *testing.T) {
	for _, k := range []OutcomeKind{OutcomeSuccess, OutcomeRemoteError, OutcomeMalformed, OutcomeListenerFault, OutcomeNoResponse} {
		parsed, err := ParseOutcomeKind(k.String())
		if err != nil || parsed != k {
			t.Errorf("ParseOutcomeKind(%q) = %v, %v", k.String(), parsed, err)
		}
	}

	if _, err := ParseOutcomeKind("bogus"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestSecretsAreRedacted(t *testing.T) {
	g := CodeGrant{Code: "abc123", State: "xyz789"}
	out := fmt.Sprintf("%v %s %+v", g.Code, g.State, g)

	if out != "[redacted] [redacted] {Code:[redacted] State:[redacted]}" {
		t.Errorf("secrets leaked through formatting: %q", out)
	}
}

func TestErrorResponseError(t *testing.T) {
	tc := []struct {
		resp ErrorResponse
		want string
	}{
		{ErrorResponse{Code: "e"}, "e"},
		{ErrorResponse{Code: "e", Description: "d"}, "e: d"},
		{ErrorResponse{Code: "e", URI: "u"}, "e (u)"},
		{ErrorResponse{Code: "e", Description: "d", URI: "u"}, "e: d (u)"},
	}

	for _, tt := range tc {
		if got := tt.resp.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestRun(t *testing.T) {
	r := NewRun("127.0.0.1:3000", "/cb")
	if err := r.Validate(); err != nil {
		t.Fatalf("unexpected validation error %v", err)
	}
	if r.Finished() || r.FinishedAt() != nil || r.Duration() != 0 {
		t.Error("new run should be pending")
	}

	time.Sleep(time.Millisecond)
	r.Finish(RemoteError(ErrorResponse{Code: "access_denied"}))

	if !r.Finished() || r.Kind() != OutcomeRemoteError || r.ErrorCode() != "access_denied" {
		t.Errorf("unexpected finished run %+v", r)
	}
	if r.Duration() <= 0 {
		t.Errorf("expected positive duration, got %v", r.Duration())
	}

	if err := NewRun("", "/cb").Validate(); err == nil {
		t.Error("expected error for empty address")
	}
	if err := NewRun("127.0.0.1:3000", "cb").Validate(); err == nil {
		t.Error("expected error for relative path")
	}
}
