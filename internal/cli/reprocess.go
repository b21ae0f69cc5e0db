package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/mindump-backend/internal/app"
)

func newReprocessCmd(load loader) *cobra.Command {
	var (
		olderThan time.Duration
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "reprocess",
		Short: "Run the pipeline for dumps that were never processed",
		Long: "Finds dumps older than --older-than with no processed_at and runs them through the pipeline in this process. " +
			"The command exits once every submitted dump has finished.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd.Context(), load, func(ctx context.Context, c *app.Container) error {
				queueDone := make(chan error, 1)
				go func() { queueDone <- c.Queue.Run(ctx) }()

				res, err := c.Dumps.Reprocess(ctx, olderThan, limit)
				if err != nil {
					c.Queue.Close()
					<-queueDone
					return err
				}

				failed := 0
				for _, h := range res.Handles {
					if err := h.Wait(ctx); err != nil {
						failed++
					}
				}
				c.Queue.Close()
				if err := <-queueDone; err != nil {
					return fmt.Errorf("pipeline workers: %w", err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "found %d, submitted %d, failed %d\n", res.Found, res.Submitted, failed)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 10*time.Minute, "only dumps created at least this long ago")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of dumps to submit")
	return cmd
}
