// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// serverFlags override the [server] section of the config file.
func serverFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		&cli.StringFlag{
			Name:    "addr",
			Aliases: []string{"a"},
			Usage:   "Address to bind (host:port)",
		},
		&cli.StringFlag{
			Name:    "path",
			Aliases: []string{"p"},
			Usage:   "Callback path registered with the identity provider",
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "Give up after this long (0 waits forever)",
		},
		&cli.BoolFlag{
			Name:  "plain",
			Usage: "Disable the interactive spinner",
		},
		&cli.BoolFlag{
			Name:  "no-history",
			Usage: "Do not record this run in the history database",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output JSON",
		},
	}
}

// listenCommand captures a single callback and prints it
func listenCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "listen",
		Aliases: []string{"l"},
		Usage:   "Wait for one OAuth2 redirect and print the authorization code",
		Flags:   serverFlags(),
		Action:  r.Listen,
	}
}

// loginCommand runs the full authorization code flow
func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Authorize in the browser and exchange the code for a token",
		Flags: append(serverFlags(),
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Print the authorization URL instead of opening a browser",
			},
		),
		Action: r.Login,
	}
}

// historyCommand lists and prunes recorded runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded listener runs",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 20,
			},
			&cli.StringFlag{
				Name:  "outcome",
				Usage: "Only show runs with this outcome (success, remote_error, malformed, listener_fault, no_response)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (text, csv, markdown)",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the export to a file instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
		Commands: []*cli.Command{
			{
				Name:  "prune",
				Usage: "Delete finished runs older than a given age",
				Flags: []cli.Flag{
					configFlag(),
					&cli.DurationFlag{
						Name:  "older-than",
						Usage: "Minimum age of runs to delete",
						Value: 30 * 24 * time.Hour,
					},
				},
				Action: r.HistoryPrune,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the history database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config file, from the example or from the given client registration",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing config file"},
					&cli.StringFlag{Name: "client-id", Usage: "OAuth2 client ID"},
					&cli.StringFlag{Name: "client-secret", Usage: "OAuth2 client secret (omit for public clients)"},
					&cli.StringFlag{Name: "auth-url", Usage: "Authorization endpoint"},
					&cli.StringFlag{Name: "token-url", Usage: "Token endpoint"},
					&cli.StringSliceFlag{Name: "scope", Usage: "Scope to request (repeatable)"},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the history database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}
