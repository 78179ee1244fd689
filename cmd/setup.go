package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/oneshot/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes a config file. With no OAuth flags the embedded example is copied verbatim;
// otherwise the defaults are merged with the flags and encoded.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil && !cmd.Bool("force") {
		return fmt.Errorf("%w: config file already exists at %s (use --force to overwrite)", shared.ErrInvalidArgument, configPath)
	}

	oauthFlags := []string{"client-id", "client-secret", "auth-url", "token-url", "scope"}
	custom := false
	for _, name := range oauthFlags {
		custom = custom || cmd.IsSet(name)
	}

	if !custom {
		if cmd.Bool("force") {
			os.Remove(configPath)
		}
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		r.logger.Info("config file created", "path", configPath)
		return r.writePlain("Wrote %s\n", configPath)
	}

	config := shared.DefaultConfig()
	if cmd.IsSet("client-id") {
		config.OAuth.ClientID = cmd.String("client-id")
	}
	if cmd.IsSet("client-secret") {
		config.OAuth.ClientSecret = cmd.String("client-secret")
	}
	if cmd.IsSet("auth-url") {
		config.OAuth.AuthURL = cmd.String("auth-url")
	}
	if cmd.IsSet("token-url") {
		config.OAuth.TokenURL = cmd.String("token-url")
	}
	if cmd.IsSet("scope") {
		config.OAuth.Scopes = cmd.StringSlice("scope")
	}

	if err := config.OAuth.Validate(); err != nil {
		return err
	}
	if err := shared.SaveConfig(configPath, config); err != nil {
		return err
	}

	r.logger.Info("config file saved", "path", configPath, "client_id", config.OAuth.ClientID)
	return r.writePlain("Wrote %s\n", configPath)
}

// SetupDatabase initializes the history database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "error", err)
		config = shared.DefaultConfig()
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.OpenHistory(config.Database)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.writePlain("Database ready at %s\n", config.Database.Path)
}
