// Package console is the line-oriented operator console. Each line is split
// with POSIX shell rules and dispatched through a cobra command tree.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/buildkite/shellwords"
	"github.com/gertd/go-pluralize"
	"github.com/okian/duels/internal/domain/kit"
	"github.com/okian/duels/internal/domain/lifecycle"
	"github.com/okian/duels/internal/domain/model"
	"github.com/okian/duels/internal/domain/types"
	"github.com/okian/duels/pkg/logger"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
)

// Dependencies required by console commands.
type Dependencies interface {
	Reload(ctx context.Context) error
	ReloadModule(ctx context.Context, name string) (string, error)
	ReloadableNames() []string
	Complete(prefix string) []string

	TopWins() (types.Leaderboard, bool)
	TopLosses() (types.Leaderboard, bool)
	TopRating(kit string) (types.Leaderboard, bool)

	User(key string) *model.User
	Kits() []kit.Kit
}

// Console executes operator commands against the service.
type Console struct {
	deps   Dependencies
	out    io.Writer
	name   string
	plural *pluralize.Client
	logger logger.Logger
}

// New creates a console writing its output to out.
func New(deps Dependencies, out io.Writer, opts ...Option) *Console {
	c := &Console{
		deps:   deps,
		out:    out,
		name:   "Duels",
		plural: pluralize.NewClient(),
		logger: logger.Get().Named("console"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run reads commands from in until it is exhausted or ctx is done. Command
// errors are printed and do not stop the loop.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		if err := c.Exec(ctx, scanner.Text()); err != nil {
			fmt.Fprintln(c.out, err)
		}
	}
	return scanner.Err()
}

// Exec runs a single command line. Blank lines are ignored.
func (c *Console) Exec(ctx context.Context, line string) error {
	args, err := shellwords.SplitPosix(line)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(args) == 0 {
		return nil
	}
	c.logger.Debug(ctx, "console command", logger.String("line", line))

	root := c.root()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (c *Console) root() *cobra.Command {
	root := &cobra.Command{
		Use:           "duels",
		Short:         "Duels operator console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(c.out)
	root.SetErr(c.out)
	root.AddCommand(c.reloadCmd(), c.topCmd(), c.userCmd(), c.kitsCmd())
	return root
}

func (c *Console) reloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload [module]",
		Short: "Reload every module, or a single one",
		Args:  cobra.MaximumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return c.deps.Complete(toComplete), cobra.ShellCompDirectiveNoFileComp
		},
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 1 {
				c.reloadModule(cmd, args[0])
				return
			}
			if err := c.deps.Reload(cmd.Context()); err != nil {
				c.logger.Error(cmd.Context(), "reload failed", logger.Error(err))
				cmd.Println("An error occurred while reloading! The service is now disabled, please check the logs for more information.")
				return
			}
			cmd.Printf("[%s] Reload complete.\n", c.name)
		},
	}
}

func (c *Console) reloadModule(cmd *cobra.Command, target string) {
	name, err := c.deps.ReloadModule(cmd.Context(), target)
	switch {
	case err == nil:
		cmd.Printf("[%s] Successfully reloaded %s.\n", c.name, name)
	case errors.Is(err, lifecycle.ErrModuleNotFound), errors.Is(err, lifecycle.ErrNotReloadable):
		cmd.Printf("Invalid module. Available: [%s]\n", strings.Join(c.deps.ReloadableNames(), ", "))
	default:
		c.logger.Error(cmd.Context(), "module reload failed", logger.String("module", target), logger.Error(err))
		if name == "" {
			name = target
		}
		cmd.Printf("An error occurred while reloading %s! Please check the logs for more information.\n", name)
	}
}

func (c *Console) topCmd() *cobra.Command {
	top := &cobra.Command{
		Use:   "top",
		Short: "Show a leaderboard",
	}
	top.AddCommand(
		&cobra.Command{
			Use:  "wins",
			Args: cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				c.printTop(cmd, "Wins")(c.deps.TopWins())
			},
		},
		&cobra.Command{
			Use:  "losses",
			Args: cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				c.printTop(cmd, "Losses")(c.deps.TopLosses())
			},
		},
		&cobra.Command{
			Use:  "rating <kit>",
			Args: cobra.ExactArgs(1),
			ValidArgsFunction: func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
				var out []string
				for _, k := range c.deps.Kits() {
					if strings.HasPrefix(k.Name, toComplete) {
						out = append(out, k.Name)
					}
				}
				return out, cobra.ShellCompDirectiveNoFileComp
			},
			Run: func(cmd *cobra.Command, args []string) {
				c.printTop(cmd, "Rating")(c.deps.TopRating(args[0]))
			},
		},
	)
	return top
}

func (c *Console) printTop(cmd *cobra.Command, column string) func(types.Leaderboard, bool) {
	return func(lb types.Leaderboard, ok bool) {
		if !ok {
			cmd.Println("No leaderboard yet.")
			return
		}
		next := time.Duration(lb.NextUpdateMS) * time.Millisecond
		cmd.Printf("Top %s (%s, next update in %s)\n", lb.Type, c.plural.Pluralize("entry", len(lb.Entries), true), next.Round(time.Second))

		t := table.New("#", "Name", column).WithWriter(cmd.OutOrStdout())
		for _, e := range lb.Entries {
			t.AddRow(e.Rank, e.Name, e.Value)
		}
		t.Print()
	}
}

func (c *Console) userCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "user <name|uuid>",
		Short: "Show a cached player record",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			u := c.deps.User(args[0])
			if u == nil {
				cmd.Printf("No cached record for %s.\n", args[0])
				return
			}
			p := u.Profile()
			cmd.Printf("%s (%s)\n", p.Name, p.UUID)
			cmd.Printf("%s, %s\n", c.plural.Pluralize("win", p.Wins, true), c.plural.Pluralize("loss", p.Losses, true))

			if len(p.Rating) > 0 {
				kits := make([]string, 0, len(p.Rating))
				for k := range p.Rating {
					kits = append(kits, k)
				}
				slices.Sort(kits)

				t := table.New("Kit", "Rating").WithWriter(cmd.OutOrStdout())
				for _, k := range kits {
					t.AddRow(k, p.Rating[k])
				}
				t.Print()
			}

			cmd.Printf("%s in history\n", c.plural.Pluralize("match", len(p.Matches), true))
		},
	}
}

func (c *Console) kitsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kits",
		Short: "List live kits",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			kits := c.deps.Kits()
			names := make([]string, len(kits))
			for i, k := range kits {
				names[i] = k.Name
			}
			cmd.Printf("%s: %s\n", c.plural.Pluralize("kit", len(kits), true), strings.Join(names, ", "))
		},
	}
}
