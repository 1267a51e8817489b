package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/stagedoor/backend/internal/models"
	"github.com/stagedoor/backend/internal/queue"
)

// loadQueue fetches the current state into a fresh optimistic queue.
func (a *app) loadQueue(ctx context.Context) (*queue.Queue, error) {
	q := queue.New(a.client(), queue.DefaultCooldown)
	if err := q.Load(ctx); err != nil {
		return nil, err
	}
	return q, nil
}

func printRequests(w io.Writer, reqs []models.SongRequest) {
	if len(reqs) == 0 {
		fmt.Fprintln(w, "No requests in the queue.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCOUNT\tTITLE\tARTIST\tSONG ID")
	for i, r := range reqs {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", i+1, r.RequestCount, r.Title, r.Artist, r.SongID)
	}
	tw.Flush()
}

func printCooldowns(w io.Writer, cds []models.CooldownSong, now time.Time) {
	if len(cds) == 0 {
		fmt.Fprintln(w, "No songs on cooldown.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REMAINING\tTITLE\tARTIST\tSONG ID")
	for _, c := range cds {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", queue.FormatCountdown(c.CooldownUntil, now), c.Title, c.Artist, c.SongID)
	}
	tw.Flush()
}

func printBlacklist(w io.Writer, list []models.BlacklistedSong) {
	if len(list) == 0 {
		fmt.Fprintln(w, "Blacklist is empty.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tARTIST\tSONG ID")
	for _, b := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", b.Title, b.Artist, b.SongID)
	}
	tw.Flush()
}

func (a *app) requestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "requests",
		Aliases: []string{"queue"},
		Short:   "List the request queue",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.client().Fetch(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printRequests(out, snap.AvailableRequests)
			fmt.Fprintf(out, "\n%d requests, %d songs, %d on cooldown, %d blacklisted\n",
				snap.Stats.TotalRequests, snap.Stats.UniqueSongs, snap.Stats.ActiveCooldowns, snap.Stats.Blacklisted)
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <title> <artist>",
		Short: "Request a song",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.client().AddRequest(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Requested %q by %s (%d requests)\n", req.Title, req.Artist, req.RequestCount)
			return nil
		},
	}
	cmd.AddCommand(add)
	return cmd
}

func (a *app) playCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play <request-id|song-id>",
		Short: "Mark a requested song as played and start its cooldown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := a.loadQueue(cmd.Context())
			if err != nil {
				return err
			}
			defer q.Close()

			if err := q.PlaySong(cmd.Context(), args[0]); err != nil {
				return err
			}
			if cds := q.Snapshot().Cooldown; len(cds) > 0 {
				c := cds[len(cds)-1]
				fmt.Fprintf(cmd.OutOrStdout(), "Playing %q by %s, cooldown until %s\n",
					c.Title, c.Artist, c.CooldownUntil.Local().Format(time.Kitchen))
			}
			return nil
		},
	}
}

func (a *app) blacklistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blacklist",
		Short: "Manage songs that can never be requested",
	}

	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List blacklisted songs",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.client().Fetch(cmd.Context())
			if err != nil {
				return err
			}
			printBlacklist(cmd.OutOrStdout(), snap.Blacklist)
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <title> <artist>",
		Short: "Blacklist a song and drop its requests",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := a.loadQueue(cmd.Context())
			if err != nil {
				return err
			}
			defer q.Close()

			if err := q.AddToBlacklist(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Blacklisted %q by %s\n", args[0], args[1])
			return nil
		},
	}

	rm := &cobra.Command{
		Use:     "rm <id|song-id>",
		Aliases: []string{"remove"},
		Short:   "Allow a blacklisted song again",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := a.loadQueue(cmd.Context())
			if err != nil {
				return err
			}
			defer q.Close()

			if err := q.RemoveFromBlacklist(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from the blacklist\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(ls, add, rm)
	return cmd
}

func (a *app) cooldownsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cooldowns",
		Short: "Show songs on cooldown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			watch, _ := cmd.Flags().GetBool("watch")
			interval, _ := cmd.Flags().GetDuration("interval")

			q, err := a.loadQueue(cmd.Context())
			if err != nil {
				return err
			}
			defer q.Close()

			out := cmd.OutOrStdout()
			if !watch {
				q.PruneCooldowns(time.Now())
				printCooldowns(out, q.Snapshot().Cooldown, time.Now())
				return nil
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			queue.Ticker{Interval: interval}.Run(ctx, func(now time.Time) {
				q.PruneCooldowns(now)
				cds := q.Snapshot().Cooldown
				fmt.Fprint(out, "\033[H\033[2J")
				printCooldowns(out, cds, now)
				if len(cds) == 0 {
					cancel()
				}
			})
			return nil
		},
	}
	cmd.Flags().BoolP("watch", "w", false, "Keep counting down until every cooldown expires")
	cmd.Flags().Duration("interval", time.Second, "Refresh interval for --watch")
	return cmd
}
