// Package cli implements the mindumpctl admin commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/mindump-backend/internal/app"
	"github.com/heartmarshall/mindump-backend/internal/config"
)

// env loads configuration and the logger for one command run.
type env struct {
	cfg *config.Config
	log *slog.Logger
}

type loader func() (*env, error)

func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &env{cfg: cfg, log: app.NewLogger(cfg.Log)}, nil
}

// NewRootCmd builds the mindumpctl command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(loadEnv)
}

func newRootCmd(load loader) *cobra.Command {
	root := &cobra.Command{
		Use:           "mindumpctl",
		Short:         "Administer a mindump backend",
		Long:          "Maintenance commands for the mindump backend: schema migrations, archive sweeps, dump reprocessing and test tokens.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       app.BuildVersion(),
	}

	root.AddCommand(
		newMigrateCmd(load),
		newArchiveCmd(load),
		newReprocessCmd(load),
		newTokenCmd(load),
	)
	return root
}

func withContainer(ctx context.Context, load loader, fn func(ctx context.Context, c *app.Container) error) error {
	e, err := load()
	if err != nil {
		return err
	}
	c, err := app.Build(ctx, e.cfg, e.log)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(ctx, c)
}
