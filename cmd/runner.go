package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/oneshot/internal/models"
	"github.com/desertthunder/oneshot/internal/repositories"
	"github.com/desertthunder/oneshot/internal/server"
	"github.com/desertthunder/oneshot/internal/shared"
	"github.com/desertthunder/oneshot/internal/ui"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	httpClient *http.Client
	browser    func(url string) error
	onListen   func(baseURL string)
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	HTTPClient *http.Client

	// Browser opens the authorization URL; defaults to [shared.OpenBrowser].
	Browser func(url string) error
	// OnListen is called with the listener's base URL once it is bound.
	OnListen func(baseURL string)
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Browser == nil {
		opts.Browser = shared.OpenBrowser
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		httpClient: opts.HTTPClient,
		browser:    opts.Browser,
		onListen:   opts.OnListen,
	}
}

func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "oneshot",
		Usage:   "Capture a single OAuth2 authorization code redirect on a local listener",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") {
				shared.SetLogLevel(r.logger, log.DebugLevel)
			}
			return ctx, nil
		},
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		listenCommand, loginCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig returns a copy of the runner's config, or the file named by --config when it was set explicitly.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	if cmd.IsSet("config") {
		path := cmd.String("config")
		config, err := shared.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrMissingConfig, err)
		}
		r.configPath = path
		return config, nil
	}

	config := *r.config
	return &config, nil
}

// serverConfig applies --addr, --path and --timeout on top of the loaded config.
func (r *Runner) serverConfig(cmd *cli.Command) (*shared.Config, error) {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("addr") {
		host, portStr, err := net.SplitHostPort(cmd.String("addr"))
		if err != nil {
			return nil, fmt.Errorf("%w: --addr: %v", shared.ErrInvalidFlag, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("%w: --addr port %q", shared.ErrInvalidFlag, portStr)
		}
		config.Server.Host = host
		config.Server.Port = port
	}
	if cmd.IsSet("path") {
		config.Server.CallbackPath = cmd.String("path")
	}
	if cmd.IsSet("timeout") {
		config.Server.Timeout.Duration = cmd.Duration("timeout")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := server.ValidateCallbackPath(config.Server.CallbackPath); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}

	return config, nil
}

// interactive reports whether the spinner should be shown.
func (r *Runner) interactive(cmd *cli.Command) bool {
	if cmd.Bool("plain") || cmd.Bool("json") {
		return false
	}
	f, ok := r.output.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// captureRequest describes one listener run driven by the CLI.
type captureRequest struct {
	config      *shared.Config
	listener    net.Listener
	prompt      string
	authURL     string
	interactive bool
	history     bool
	onReady     func(baseURL string)
}

// capture serves a single listener run on req.listener and returns its outcome.
//
// The configured timeout is applied here, outside the listener, by cancelling the run's context.
func (r *Runner) capture(ctx context.Context, req captureRequest) models.Outcome {
	s := req.config.Server
	if s.Timeout.Duration > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeoutCause(ctx, s.Timeout.Duration,
			fmt.Errorf("%w: no callback within %s", shared.ErrTimeout, s.Timeout.Duration))
		defer cancelTimeout()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	finish := r.track(req.config, req.history, req.listener.Addr().String(), s.CallbackPath)

	ready := make(chan string, 1)
	listener := server.NewListener(server.ListenerOpts{
		Address:         s.Address(),
		CallbackPath:    s.CallbackPath,
		ShutdownTimeout: s.ShutdownTimeout.Duration,
		RateLimit:       s.RateLimit,
		RateBurst:       s.RateBurst,
		Logger:          r.logger,
		Ready:           ready,
	})

	results := make(chan models.Outcome, 1)
	go func() {
		results <- listener.Serve(ctx, req.listener)
	}()
	wait := sync.OnceValue(func() models.Outcome { return <-results })

	var program *tea.Program
	if req.interactive {
		program = tea.NewProgram(ui.NewWaiting(req.prompt, req.authURL, wait, cancel), tea.WithOutput(r.output))
	}

	var announced sync.WaitGroup
	announced.Add(1)
	go func() {
		defer announced.Done()
		select {
		case base := <-ready:
			if r.onListen != nil {
				r.onListen(base)
			}
			if req.onReady != nil {
				req.onReady(base)
			}
			if program != nil {
				program.Send(ui.ReadyMsg(base + s.CallbackPath))
			}
		case <-ctx.Done():
		}
	}()

	if program != nil {
		if _, err := program.Run(); err != nil {
			r.logger.Warn("interactive view failed, cancelling run", "error", err)
			cancel()
		}
	}

	outcome := wait()
	if errors.Is(context.Cause(ctx), shared.ErrTimeout) {
		outcome = outcome.WithCause(context.Cause(ctx))
	}
	// the listener may resolve without announcing; release the goroutine waiting for it
	cancel()
	announced.Wait()
	finish(outcome)
	r.logger.Debug("run finished", "outcome", outcome.Kind)
	return outcome
}

// track records the run in the history database and returns the function that stamps its outcome.
// History is best effort: failures are logged and the run proceeds.
func (r *Runner) track(config *shared.Config, enabled bool, address, path string) func(models.Outcome) {
	noop := func(models.Outcome) {}
	if !enabled {
		return noop
	}

	db, err := shared.OpenHistory(config.Database)
	if err != nil {
		r.logger.Warn("run history unavailable", "error", err)
		return noop
	}

	repo := repositories.NewRunRepository(db)
	run := models.NewRun(address, path)
	if err := repo.Create(run); err != nil {
		r.logger.Warn("failed to record run", "error", err)
		db.Close()
		return noop
	}

	return func(o models.Outcome) {
		defer db.Close()
		run.Finish(o)
		if err := repo.Update(run); err != nil {
			r.logger.Warn("failed to record run outcome", "id", run.ID(), "error", err)
		}
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
