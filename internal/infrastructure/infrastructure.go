// Package infrastructure assembles the systems a binder command runs on:
// lifecycle coordination, logging, the database pool, blob storage, and the
// drive built over them.
package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/JaimeStill/binder/internal/config"
	"github.com/JaimeStill/binder/internal/coordinator"
	"github.com/JaimeStill/binder/internal/drive"
	"github.com/JaimeStill/binder/internal/grouping"
	"github.com/JaimeStill/binder/internal/matcher"
	"github.com/JaimeStill/binder/internal/merger"
	"github.com/JaimeStill/binder/pkg/database"
	"github.com/JaimeStill/binder/pkg/lifecycle"
	"github.com/JaimeStill/binder/pkg/storage"
)

// Infrastructure holds the core systems shared by every command.
type Infrastructure struct {
	Config    *config.Config
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Drive     drive.System
}

// New creates an Infrastructure from cfg, logging to w. Systems are
// initialized but not started; call Start.
func New(ctx context.Context, cfg *config.Config, w io.Writer) (*Infrastructure, error) {
	lc := lifecycle.New(ctx)
	logger := cfg.Logging.NewLogger(w)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	return &Infrastructure{
		Config:    cfg,
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Drive:     drive.New(db.Connection(), store, logger),
	}, nil
}

// Start registers every system with the lifecycle coordinator and waits for
// the startup hooks to finish.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if err := i.Lifecycle.WaitForStartup(); err != nil {
		return fmt.Errorf("startup failed: %w", err)
	}
	return nil
}

// Close runs the shutdown hooks.
func (i *Infrastructure) Close() error {
	return i.Lifecycle.Shutdown(i.Config.ShutdownTimeoutDuration())
}

// Matcher returns a file matcher over the drive.
func (i *Infrastructure) Matcher() *matcher.Matcher {
	return matcher.New(i.Drive, i.Logger)
}

// Merger returns a merger configured from the [merge] section.
func (i *Infrastructure) Merger() *merger.Merger {
	return merger.New(i.Drive, i.Config.Merger.MergerConfig(), i.Logger)
}

// Grouper returns a category grouper over the drive.
func (i *Infrastructure) Grouper() *grouping.Grouper {
	return grouping.New(i.Matcher(), i.Merger(), i.Logger)
}

// Coordinator returns a student coordinator over the drive.
func (i *Infrastructure) Coordinator() *coordinator.Coordinator {
	return coordinator.New(i.Drive, i.Grouper(), i.Config.Merger.CoordinatorConfig(), i.Logger)
}
