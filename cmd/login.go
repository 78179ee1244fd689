package main

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net"
	"time"

	"github.com/desertthunder/oneshot/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// tokenResult is the JSON shape printed by login.
type tokenResult struct {
	TokenType    string     `json:"token_type"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	Expiry       *time.Time `json:"expiry,omitempty"`
}

// Login runs the authorization code flow with PKCE against the configured provider.
//
// The listener is bound before the authorization URL is built so that port 0 resolves to a
// real redirect URL.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	config, err := r.serverConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.OAuth.Validate(); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", config.Server.Address())
	if err != nil {
		return fmt.Errorf("%w: bind %s: %v", shared.ErrAuthFailed, config.Server.Address(), err)
	}

	redirectURL := "http://" + callbackAddr(ln) + config.Server.CallbackPath
	conf := config.OAuth.OAuth2(redirectURL)

	state, err := shared.GenerateState()
	if err != nil {
		ln.Close()
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	verifier := oauth2.GenerateVerifier()
	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))

	interactive := r.interactive(cmd)
	openBrowser := !cmd.Bool("no-browser")

	onReady := func(string) {
		if !interactive {
			if cmd.Bool("json") {
				r.logger.Info("open this URL to authorize", "url", authURL)
			} else if err := r.writePlain("Open this URL to authorize:\n\n  %s\n\n", authURL); err != nil {
				r.logger.Warn("failed to print authorization URL", "error", err)
			}
		}
		if !openBrowser {
			return
		}
		if err := r.browser(authURL); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	outcome := r.capture(ctx, captureRequest{
		config:      config,
		listener:    ln,
		prompt:      "Waiting for you to authorize in the browser",
		authURL:     authURL,
		interactive: interactive,
		history:     !cmd.Bool("no-history"),
		onReady:     onReady,
	})

	grant, err := outcome.Result()
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	if subtle.ConstantTimeCompare([]byte(grant.State.Secret()), []byte(state)) != 1 {
		return shared.ErrStateMismatch
	}

	exchangeCtx := context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)
	token, err := conf.Exchange(exchangeCtx, grant.Code.Secret(), oauth2.VerifierOption(verifier))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrExchangeFailed, err)
	}

	r.logger.Info("login complete", "token_type", token.Type())
	return r.printToken(token, cmd.Bool("json"))
}

func (r *Runner) printToken(token *oauth2.Token, asJSON bool) error {
	result := tokenResult{
		TokenType:    token.Type(),
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		result.Expiry = &expiry
	}

	if asJSON {
		return r.writeJSON(result, true)
	}

	if err := r.writePlain("token type:    %s\naccess token:  %s\n", result.TokenType, result.AccessToken); err != nil {
		return err
	}
	if result.RefreshToken != "" {
		if err := r.writePlain("refresh token: %s\n", result.RefreshToken); err != nil {
			return err
		}
	}
	if result.Expiry != nil {
		return r.writePlain("expires:       %s\n", result.Expiry.Format(time.RFC3339))
	}
	return nil
}
