package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"trackboard/internal/bootstrap"
	sessiondomain "trackboard/internal/modules/session/domain"
	"trackboard/internal/platform/config"
	apperrors "trackboard/internal/platform/errors"
	"trackboard/internal/platform/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	dir      string
	store    string
	logLevel string
	session  string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "trackboard",
		Short:         "Race track checklist and session tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dir, "dir", ".", "data directory (state lives in <dir>/.trackboard)")
	root.PersistentFlags().StringVar(&flags.store, "store", "", "storage backend: sqlite|file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&flags.session, "session", "", "edit this saved session for one command")

	root.AddCommand(newTracksCmd(flags))
	root.AddCommand(newDoneCmd(flags, "done", true))
	root.AddCommand(newDoneCmd(flags, "undo", false))
	root.AddCommand(newPlaceCmd(flags))
	root.AddCommand(newClearCmd(flags))
	root.AddCommand(newNoteCmd(flags))
	root.AddCommand(newStarCmd(flags))
	root.AddCommand(newResetCmd(flags))
	root.AddCommand(newScoreCmd(flags))
	root.AddCommand(newCodesCmd(flags))
	root.AddCommand(newSortCmd(flags))
	root.AddCommand(newSessionCmd(flags))
	root.AddCommand(newStatsCmd(flags))
	root.AddCommand(newTUICmd(flags))
	return root
}

// withApp opens the app for one command. With --session the named session is
// selected first and deselected afterwards, so nothing auto-resumes next run.
func withApp(cmd *cobra.Command, flags *rootFlags, tui bool, fn func(ctx context.Context, app *bootstrap.App) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.New(flags.dir, config.Overrides{Store: flags.store, LogLevel: flags.logLevel})
	if err != nil {
		return err
	}

	var logger *slog.Logger
	var logCloser io.Closer
	if tui {
		logger, logCloser, err = logging.NewFile(cfg.LogPath, cfg.LogLevel)
	} else {
		logger, err = logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	}
	if err != nil {
		return err
	}
	if logCloser != nil {
		defer func() { _ = logCloser.Close() }()
	}

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, app.Close())
	}()

	if flags.session != "" {
		// Selecting an unknown name is a no-op, which would send this
		// command's writes to the scratch session.
		if _, err := app.SessionCLI.Get(ctx, flags.session); err != nil {
			return err
		}
		if err := app.SessionCLI.Select(ctx, flags.session); err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, app.SessionCLI.Deselect(ctx))
		}()
	}
	return fn(ctx, app)
}

func newTUICmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the trackboard terminal UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, true, func(_ context.Context, app *bootstrap.App) error {
				return bootstrap.RunTUI(app)
			})
		},
	}
}

// ─── track commands ──────────────────────────────────────────────────────────

func newTracksCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tracks",
		Short: "List tracks with completion, placement and notes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, false, func(ctx context.Context, app *bootstrap.App) error {
				state := app.SessionCLI.State(ctx)
				order, err := app.CatalogCLI.Ordered(ctx, state.SortMode, state.Favorites)
				if err != nil {
					return err
				}
				done := make(map[string]bool, len(state.Completed))
				for _, t := range state.Completed {
					done[t] = true
				}
				starred := make(map[string]bool, len(state.Favorites))
				for _, t := range state.Favorites {
					starred[t] = true
				}
				w := cmd.OutOrStdout()
				for _, t := range order.Tracks {
					mark, star := "[ ]", " "
					if done[t.Name] {
						mark = "[x]"
					}
					if starred[t.Name] {
						star = "*"
					}
					line := fmt.Sprintf("%s %s %s", mark, star, t.Name)
					if p, ok := state.Placements[t.Name]; ok {
						line += "\t" + sessiondomain.Ordinal(p)
					}
					if note := strings.TrimSpace(state.Notes[t.Name]); note != "" {
						line += "\t# " + note
					}
					_, _ = fmt.Fprintln(w, line)
				}
				return nil
			})
		},
	}
}

func newDoneCmd(flags *rootFlags, use string, completed bool) *cobra.Command {
	short := "Mark a track completed"
	if !completed {
		short = "Mark a track not completed (drops its placement)"
	}
	return &cobra.Command{
		Use:   use + " <track>",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, false, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.SetCompleted(ctx, strings.Join(args, " "), completed)
				if err != nil {
					return err
				}
				state := "open"
				if out.Completed {
					state = "completed"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", out.Track, state)
				return nil
			})
		},
	}
}

func newPlaceCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "place <track> <1-12>",
		Short: "Record a finishing position",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			placement, err := strconv.Atoi(args[len(args)-1])
			if err != nil {
				return fmt.Errorf("placement must be a number 1-12, got %q", args[len(args)-1])
			}
			track := strings.Join(args[:len(args)-1], " ")
			return withApp(cmd, flags, false, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.Place(ctx, track, placement)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (+%d)\n", out.Track, sessiondomain.Ordinal(out.Placement), out.Points)
				return nil
			})
		},
	}
}

func newClearCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <track>",
		Short: "Remove a track's placement",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, false, func(ctx context.Context, app *bootstrap.App) error {
				name, err := app.SessionCLI.Clear(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: placement cleared\n", name)
				return nil
			})
		},
	}
}

func newNoteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "note <track> <text>",
		Short: "Set a track note (empty text removes it)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := ""
			if len(args) == 2 {
				text = args[1]
			}
			return withApp(cmd, flags, false, func(ctx context.Context, app *bootstrap.App) error {
				name, err := app.SessionCLI.Note(ctx, args[0], text)
				if err != nil {
					return err
				}
				if strings.TrimSpace(text) == "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: note removed\n", name)
					return nil
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: note saved\n", name)
				return nil
			})
		},
	}
}

func newStarCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "star <track>",
		Short: "Toggle a global favorite",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, false, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.Star(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				state := "unstarred"
				if out.Favorite {
					state = "starred"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", out.Track, state)
				return nil
			})
		},
	}
}

func newResetCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear completed tracks and their placements",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, false, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.SessionCLI.Reset(ctx); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "completed tracks cleared")
				return nil
			})
		},
	}
}

func newScoreCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "score",
		Short: "Show the current score and progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, false, func(ctx context.Context, app *bootstrap.App) error {
				state := app.SessionCLI.State(ctx)
				session := "scratch"
				if state.Current != "" {
					session = state.Current
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session: %s\nscore: %d\ncompleted: %d\nprogress: %d%%\n",
					session, state.Score, len(state.Completed), app.CatalogCLI.Progress(len(state.Completed)))
				return nil
			})
		},
	}
}

func newCodesCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "codes",
		Short: "Print the codes of completed tracks in completion order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, false, func(ctx context.Context, app *bootstrap.App) error {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), app.CatalogCLI.Codes(ctx, app.SessionCLI.State(ctx).Completed))
				return nil
			})
		},
	}
}

func newSortCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sort <alphabetical|starred|catalog>",
		Short: "Set the track sort mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, false, func(ctx context.Context, app *bootstrap.App) error {
				mode, err := app.SessionCLI.Sort(ctx, args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sort: %s\n", mode)
				return nil
			})
		},
	}
}

// ─── session commands ────────────────────────────────────────────────────────

func newSessionCmd(flags *rootFlags) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Named session registry"}

	var force, selectIt bool
	create := &cobra.Command{
		Use:   "new [name]",
		Short: "Save a new session (from the scratch work when nothing is being edited)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return withApp(cmd, flags, false, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.Create(ctx, name, force, selectIt)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d pts)\n", out.Name, out.Score)
				return nil
			})
		},
	}
	create.Flags().BoolVar(&force, "force", false, "overwrite an existing session with the same name")
	create.Flags().BoolVar(&selectIt, "select", false, "make the new session current for the rest of this command")

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved sessions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, false, func(ctx context.Context, app *bootstrap.App) error {
				sessions := app.SessionCLI.List(ctx)
				if len(sessions) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
					return nil
				}
				for _, s := range sessions {
					marker := " "
					if s.Active {
						marker = "*"
					}
					extra := ""
					if s.Imported {
						extra = "\timported"
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%d pts\t%d done\t%s%s\n",
						marker, s.Name, s.Score, s.Completed, s.CreatedAt.Local().Format("2006-01-02 15:04"), extra)
				}
				return nil
			})
		},
	}

	show := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a saved session as markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, false, func(ctx context.Context, app *bootstrap.App) error {
				detail, err := app.SessionCLI.Get(ctx, args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprint(cmd.OutOrStdout(), detail.Markdown)
				return nil
			})
		},
	}

	rename := &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a saved session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, false, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.SessionCLI.Rename(ctx, args[0], args[1]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "renamed %s -> %s\n", args[0], args[1])
				return nil
			})
		},
	}

	remove := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, false, func(ctx context.Context, app *bootstrap.App) error {
				if _, err := app.SessionCLI.Get(ctx, args[0]); errors.Is(err, apperrors.ErrNotFound) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "no saved session named %s\n", args[0])
					return nil
				}
				if err := app.SessionCLI.Delete(ctx, args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}

	var outDir, format string
	export := &cobra.Command{
		Use:   "export <name>",
		Short: "Write a saved session to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, false, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.Export(ctx, args[0], format)
				if err != nil {
					return err
				}
				dir := outDir
				if dir == "" {
					dir = flags.dir
				}
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create export dir: %w", err)
				}
				path := filepath.Join(dir, out.Filename)
				if err := os.WriteFile(path, out.Content, 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %s\n", path)
				return nil
			})
		},
	}
	export.Flags().StringVar(&outDir, "out", "", "output directory (default: --dir)")
	export.Flags().StringVar(&format, "format", "json", "export format: json|markdown")

	imp := &cobra.Command{
		Use:   "import <file>",
		Short: "Import an exported session file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}
			return withApp(cmd, flags, false, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.Import(ctx, blob)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %s\n", out.Name)
				return nil
			})
		},
	}

	session.AddCommand(create, list, show, rename, remove, export, imp)
	return session
}

func newStatsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Aggregate statistics over saved sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, false, func(ctx context.Context, app *bootstrap.App) error {
				report, err := app.StatsCLI.Report(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprint(cmd.OutOrStdout(), report.Markdown)
				return nil
			})
		},
	}
}
