package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/oneshot/internal/models"
	"github.com/desertthunder/oneshot/internal/shared"
	"golang.org/x/time/rate"
)

const (
	PendingText            = "waiting for callback"
	HealthOKText           = "ok"
	DefaultCallbackPath    = "/oauth2/callback"
	DefaultShutdownTimeout = 5 * time.Second
)

var ErrInvalidCallbackPath = errors.New("invalid callback path")

// ListenerOpts configures a [Listener].
type ListenerOpts struct {
	Address         string        // host:port to bind in [Listener.Run]
	CallbackPath    string        // terminal route, defaults to [DefaultCallbackPath]
	ShutdownTimeout time.Duration // bound on graceful teardown, defaults to [DefaultShutdownTimeout]
	RateLimit       float64       // requests per second; zero disables limiting
	RateBurst       int
	Logger          *log.Logger

	// Ready receives the base URL ("http://host:port") once the socket is bound.
	// The send gives up when the run ends, so an unread channel never blocks the listener.
	Ready chan<- string

	// Middleware is applied inside the built-in logging, recovery and rate limiting.
	Middleware []Middleware
}

// Listener captures exactly one OAuth2 authorization code redirect.
//
// A run moves from idle (serving, slot empty) to draining (slot filled, teardown started) to
// stopped. Teardown is pushed by the terminal route: the first successful write to the capture
// slot closes a one-shot channel that the serving goroutine waits on, so the listener stops as
// soon as that request's page has been written. Cancelling the context stops the run as well.
type Listener struct {
	address         string
	path            string
	shutdownTimeout time.Duration
	limiter         *rate.Limiter
	logger          *log.Logger
	ready           chan<- string
	middleware      []Middleware
}

// NewListener creates a [Listener], filling in defaults for unset options.
func NewListener(opts ListenerOpts) *Listener {
	if opts.CallbackPath == "" {
		opts.CallbackPath = DefaultCallbackPath
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Listener{
		address:         opts.Address,
		path:            opts.CallbackPath,
		shutdownTimeout: opts.ShutdownTimeout,
		limiter:         limiter,
		logger:          shared.WithLogger(opts.Logger, "component", "listener"),
		ready:           opts.Ready,
		middleware:      opts.Middleware,
	}
}

// CallbackPath returns the terminal route.
func (l *Listener) CallbackPath() string {
	return l.path
}

// Run binds the configured address and serves until a callback is captured, the context is
// cancelled or the transport fails. Bind failures resolve to a listener fault.
func (l *Listener) Run(ctx context.Context) models.Outcome {
	if err := ValidateCallbackPath(l.path); err != nil {
		return models.ListenerFault(err)
	}

	ln, err := net.Listen("tcp", l.address)
	if err != nil {
		l.logger.Error("failed to bind", "address", l.address, "error", err)
		return models.ListenerFault(fmt.Errorf("bind %s: %w", l.address, err))
	}

	return l.Serve(ctx, ln)
}

// Serve runs the capture protocol on an already bound listener and closes it before returning.
//
// The result is the first captured outcome; a run cancelled before any capture yields
// [models.OutcomeNoResponse] and a serve failure yields [models.OutcomeListenerFault].
func (l *Listener) Serve(ctx context.Context, ln net.Listener) models.Outcome {
	if err := ValidateCallbackPath(l.path); err != nil {
		ln.Close()
		return models.ListenerFault(err)
	}

	state := newCaptureState()
	srv := &http.Server{
		Handler:           l.routes(state),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	base := "http://" + ln.Addr().String()
	l.logger.Info("listening for callback", "url", base+l.path)
	l.announce(ctx, state, base)

	var fault error
	select {
	case <-state.done():
	case <-ctx.Done():
		l.logger.Debug("run cancelled", "cause", context.Cause(ctx))
	case err := <-serveErr:
		fault = err
	}

	if fault != nil {
		return l.fault(state, fault)
	}

	l.shutdown(ctx, srv)
	<-serveErr

	if outcome, ok := state.take(); ok {
		return outcome
	}
	return models.NoResponse()
}

// fault resolves a run whose transport failed. Anything already in the slot is dropped and logged.
func (l *Listener) fault(state *captureState, err error) models.Outcome {
	if discarded, ok := state.take(); ok {
		l.logger.Warn("discarding captured callback after serve failure", "outcome", discarded.Kind)
	}
	l.logger.Error("listener failed", "error", err)
	return models.ListenerFault(fmt.Errorf("serve: %w", err))
}

// announce sends base on the Ready channel. A buffered channel always gets the value, even when
// a callback was captured before the listener got here; an unbuffered one is given up on once the
// run ends.
func (l *Listener) announce(ctx context.Context, state *captureState, base string) {
	if l.ready == nil {
		return
	}
	select {
	case l.ready <- base:
		return
	default:
	}
	select {
	case l.ready <- base:
	case <-state.done():
	case <-ctx.Done():
	}
}

// shutdown drains in-flight requests, so the page for the captured callback is written, then
// force-closes whatever is left once the timeout expires.
func (l *Listener) shutdown(ctx context.Context, srv *http.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.logger.Warn("error shutting down listener", "error", err)
		srv.Close()
	}
}

func (l *Listener) routes(state *captureState) *BasicRouter {
	router := NewBasicRouter()
	router.Use(RequestLogger(l.logger), Recover(l.logger))
	if l.limiter != nil {
		router.Use(RateLimit(l.limiter))
	}
	router.Use(l.middleware...)

	router.Handle(http.MethodGet, "/", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, PendingText)
	}))
	router.Handle(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, HealthOKText)
	}))
	router.Handler(newCallbackHandler(l.path, state, l.logger))

	return router
}

// ValidateCallbackPath rejects paths that would collide with the fixed routes or be read as
// ServeMux wildcards.
func ValidateCallbackPath(path string) error {
	switch {
	case !strings.HasPrefix(path, "/"):
		return fmt.Errorf("%w: %q must start with /", ErrInvalidCallbackPath, path)
	case path == "/" || path == "/health":
		return fmt.Errorf("%w: %q is reserved", ErrInvalidCallbackPath, path)
	case strings.ContainsAny(path, "{}? \t\n"):
		return fmt.Errorf("%w: %q contains reserved characters", ErrInvalidCallbackPath, path)
	}
	return nil
}

// Capture runs a listener on address with default options and returns the captured grant.
//
// Provider errors satisfy errors.Is(err, [models.ErrRemote]); see [models.Outcome.Result].
func Capture(ctx context.Context, address, path string) (*models.CodeGrant, error) {
	return NewListener(ListenerOpts{Address: address, CallbackPath: path}).Run(ctx).Result()
}
