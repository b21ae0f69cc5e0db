package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/mindump-backend/internal/app"
)

func newArchiveCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "Archive overdue todos for every user",
		Long:  "Runs the archive rules across all users. Reads already enforce them lazily; this sweep keeps counts fresh for users who are not active.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd.Context(), load, func(ctx context.Context, c *app.Container) error {
				n, err := c.Archive.EnforceAll(ctx)
				if err != nil {
					return fmt.Errorf("archive sweep: %w", err)
				}
				c.Log.InfoContext(ctx, "archive sweep completed", slog.Int64("archived", n))
				fmt.Fprintf(cmd.OutOrStdout(), "archived %d item(s)\n", n)
				return nil
			})
		},
	}
}
