package main

import (
	"context"
	"fmt"
	"net"

	"github.com/desertthunder/oneshot/internal/models"
	"github.com/desertthunder/oneshot/internal/ui"
	"github.com/urfave/cli/v3"
)

// listenResult is the JSON shape printed by listen.
type listenResult struct {
	Outcome          string `json:"outcome"`
	Code             string `json:"code,omitempty"`
	State            string `json:"state,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
	ErrorURI         string `json:"error_uri,omitempty"`
	Detail           string `json:"detail,omitempty"`
}

func newListenResult(o models.Outcome) listenResult {
	result := listenResult{Outcome: o.Kind.String()}
	if o.Grant != nil {
		result.Code = o.Grant.Code.Secret()
		result.State = o.Grant.State.Secret()
	}
	if o.Remote != nil {
		result.Error = o.Remote.Code
		result.ErrorDescription = o.Remote.Description
		result.ErrorURI = o.Remote.URI
	}
	if o.Err != nil {
		result.Detail = o.Err.Error()
	}
	return result
}

// Listen waits for a single redirect on the configured address and prints what arrived.
func (r *Runner) Listen(ctx context.Context, cmd *cli.Command) error {
	config, err := r.serverConfig(cmd)
	if err != nil {
		return err
	}

	var outcome models.Outcome
	ln, err := net.Listen("tcp", config.Server.Address())
	if err != nil {
		outcome = models.ListenerFault(err)
	} else {
		r.logger.Info("waiting for callback", "address", ln.Addr().String(), "path", config.Server.CallbackPath)
		outcome = r.capture(ctx, captureRequest{
			config:      config,
			listener:    ln,
			prompt:      "Waiting for the authorization redirect",
			interactive: r.interactive(cmd),
			history:     !cmd.Bool("no-history"),
		})
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(newListenResult(outcome), true); err != nil {
			return err
		}
	} else if err := r.printOutcome(outcome); err != nil {
		return err
	}

	_, err = outcome.Result()
	return err
}

func (r *Runner) printOutcome(o models.Outcome) error {
	if o.Kind != models.OutcomeSuccess {
		return r.writePlain("%s\n", ui.RenderHeadings(ui.HeadingsFor(o)))
	}

	return r.writePlain("code:  %s\nstate: %s\n", o.Grant.Code.Secret(), o.Grant.State.Secret())
}

// callbackAddr is the address the redirect URL should point at. Wildcard binds are reached over loopback.
func callbackAddr(ln net.Listener) string {
	addr, ok := ln.Addr().(*net.TCPAddr)
	if !ok || !addr.IP.IsUnspecified() {
		return ln.Addr().String()
	}
	return fmt.Sprintf("127.0.0.1:%d", addr.Port)
}
