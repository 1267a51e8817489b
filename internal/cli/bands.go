package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/stagedoor/backend/internal/djclient"
	"github.com/stagedoor/backend/internal/queue"
)

func (a *app) bandsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bands",
		Short: "Rank bands for booking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var q djclient.BandQuery
			q.Focus, _ = cmd.Flags().GetString("focus")
			q.View, _ = cmd.Flags().GetString("view")
			q.Sort, _ = cmd.Flags().GetString("sort")
			q.Recommendation, _ = cmd.Flags().GetString("recommendation")
			q.Status, _ = cmd.Flags().GetString("status")
			q.Query, _ = cmd.Flags().GetString("query")
			q.Limit, _ = cmd.Flags().GetInt("limit")

			bands, err := a.client().Bands(cmd.Context(), q)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(bands) == 0 {
				fmt.Fprintln(out, "No bands match.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SCORE\tNAME\tGENRE\tRECOMMENDATION\tSTATUS")
			for _, b := range bands {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", b.OverallScore, b.Name, b.Genre, b.Recommendation, b.BookingStatus)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringP("focus", "f", "", "Ranking profile (hidden_gems, genre_fit, proven_draw, local_buzz, rising_stars)")
	cmd.Flags().String("view", "discovery", "Band view: discovery, history or rejected")
	cmd.Flags().StringP("sort", "s", "score", "Sort by score, name or popularity")
	cmd.Flags().String("recommendation", "", "Only bands with this recommendation")
	cmd.Flags().String("status", "", "Only bands with this booking status")
	cmd.Flags().StringP("query", "q", "", "Name search")
	cmd.Flags().IntP("limit", "n", 20, "Maximum bands to show")
	return cmd
}

func (a *app) refreshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Ask the automation platform to rescrape band data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wait, _ := cmd.Flags().GetBool("wait")
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			client := a.client()

			err := client.Refresh(ctx)
			var tooSoon *djclient.RefreshTooSoonError
			if !errors.As(err, &tooSoon) || !wait {
				if err == nil {
					fmt.Fprintln(out, "Refresh started.")
				}
				return err
			}

			done := make(chan struct{})
			cd := queue.NewCountdown(tooSoon.RetryAfter, func() { close(done) })
			defer cd.Stop()

			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				fmt.Fprintf(out, "\rNext refresh in %s ", queue.FormatCountdown(cd.Deadline(), time.Now()))
				select {
				case <-ctx.Done():
					fmt.Fprintln(out)
					return ctx.Err()
				case <-ticker.C:
				case <-done:
					fmt.Fprintln(out)
					if err := client.Refresh(ctx); err != nil {
						return err
					}
					fmt.Fprintln(out, "Refresh started.")
					return nil
				}
			}
		},
	}
	cmd.Flags().BoolP("wait", "w", false, "Wait out the refresh gate and retry")
	return cmd
}
