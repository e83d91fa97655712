// Command simulate plays a crowd of generated players against a running
// duels service and checks the resulting records.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/duels/internal/simulate"
	"github.com/okian/duels/pkg/logger"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "simulation failed:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := simulate.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Connect generated players to a duels service and play random matches",
		Example: `  simulate
  simulate --players 200 --matches 20000 --kits nodebuff,sumo
  simulate --url http://localhost:8080 --workers 16`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stats, err := simulate.Run(ctx, cfg)
			if stats != nil {
				cmd.Printf("players: %d  matches: %d played, %d failed, %d duplicates  mismatches: %d  took: %s\n",
					stats.PlayersConnected, stats.MatchesPlayed, stats.MatchesFailed, stats.Duplicates, stats.Mismatches, stats.Duration)
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "base URL of the service")
	f.IntVar(&cfg.Players, "players", cfg.Players, "number of players to connect")
	f.IntVar(&cfg.Matches, "matches", cfg.Matches, "number of matches to play")
	f.StringSliceVar(&cfg.Kits, "kits", cfg.Kits, "kits to play; empty plays unranked matches")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of concurrent workers")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	f.DurationVar(&cfg.Wait, "wait", cfg.Wait, "how long to wait for records to be cached")
	f.Uint64Var(&cfg.Seed, "seed", 0, "seed for pairing players; 0 picks one")
	f.Float64Var(&cfg.Retries, "retries", 0, "share of matches submitted twice to check idempotency")

	return cmd
}
