package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/binder/internal/config"
	"github.com/JaimeStill/binder/internal/infrastructure"
)

// run loads configuration, starts the infrastructure, and hands it to fn.
// Infrastructure is shut down when fn returns.
func run(cmd *cobra.Command, opts *rootOptions, fn func(infra *infrastructure.Infrastructure) error) (err error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	infra, err := infrastructure.New(cmd.Context(), cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := infra.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	if err := infra.Start(); err != nil {
		return err
	}

	infra.Logger.Debug("binder ready", "env", cfg.Env(), "command", cmd.CommandPath())
	return fn(infra)
}
