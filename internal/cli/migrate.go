package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/mindump-backend/internal/adapter/postgres"
)

func newMigrateCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withPool(cmd.Context(), load, func(ctx context.Context, pool *pgxpool.Pool) error {
					n, err := postgres.MigrateUp(ctx, pool)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", n)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether they are applied",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withPool(cmd.Context(), load, func(ctx context.Context, pool *pgxpool.Pool) error {
					provider, closeDB, err := postgres.NewMigrator(pool)
					if err != nil {
						return err
					}
					defer func() { _ = closeDB() }()

					statuses, err := provider.Status(ctx)
					if err != nil {
						return fmt.Errorf("goose status: %w", err)
					}

					tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "VERSION\tSTATE\tAPPLIED AT\tFILE")
					for _, s := range statuses {
						applied := "-"
						if !s.AppliedAt.IsZero() {
							applied = s.AppliedAt.Format("2006-01-02 15:04:05")
						}
						fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Source.Version, s.State, applied, s.Source.Path)
					}
					return tw.Flush()
				})
			},
		},
	)
	return cmd
}

func withPool(ctx context.Context, load loader, fn func(ctx context.Context, pool *pgxpool.Pool) error) error {
	e, err := load()
	if err != nil {
		return err
	}
	pool, err := postgres.NewPool(ctx, e.cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	return fn(ctx, pool)
}
