package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/notorious-go/treewalk/internal/config"
	"github.com/notorious-go/treewalk/walk"
)

// WalkOptions holds the flags of the walk command.
type WalkOptions struct {
	Order    string
	Workers  int
	MaxDepth int
	Hidden   bool
	Config   string
}

// DirResult is one directory in the output of the walk command.
type DirResult struct {
	Path     string   `json:"path"`
	Position string   `json:"position"`
	Depth    int      `json:"depth"`
	Files    []string `json:"files,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// WalkResult is the JSON payload of the walk command.
type WalkResult struct {
	Order string      `json:"order"`
	Dirs  []DirResult `json:"dirs"`
}

// NewWalkCommand creates the walk command.
func NewWalkCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WalkOptions{}

	cmd := &cobra.Command{
		Use:   "walk [dir]",
		Short: "Print every directory below dir",
		Long: `Walk the directory tree rooted at dir (default ".") and print each
directory with its position in the tree and its files.

Settings are read from .treewalk.yml or .treewalk.yaml in dir, or from the
file given with --config. Flags override the file.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runWalk(cmd, rootOpts, opts, dir)
		},
	}

	cmd.Flags().StringVar(&opts.Order, "order", string(walk.Sorted), "delivery order (sorted|arrival)")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "j", 0, "number of directory readers (0 means one per CPU)")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "deepest directory level to read (0 means unlimited)")
	cmd.Flags().BoolVar(&opts.Hidden, "hidden", false, "include entries starting with a dot")
	cmd.Flags().StringVar(&opts.Config, "config", "", "config file (default: .treewalk.yml in dir)")

	return cmd
}

func runWalk(cmd *cobra.Command, rootOpts *RootOptions, opts *WalkOptions, dir string) error {
	formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
	err := walkTree(cmd, rootOpts, opts, dir, formatter)
	if err == nil || formatter.Format != "json" || IsReported(err) {
		return err
	}
	_ = formatter.Error(err)
	return markReported(err)
}

// walkTree does the work of the walk command. It settles formatter.Format as soon
// as the config file is read, so that errors are reported in the format the user
// asked for.
func walkTree(cmd *cobra.Command, rootOpts *RootOptions, opts *WalkOptions, dir string, formatter *OutputFormatter) error {
	info, err := os.Stat(dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot walk", err)
	}
	if !info.IsDir() {
		return NewExitError(ExitCommandError, fmt.Sprintf("cannot walk %s: not a directory", dir))
	}

	file, err := loadConfig(dir, opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}

	flags := cmd.Flags()
	if !flags.Changed("format") && file.Format != "" {
		formatter.Format = file.Format
	}
	cfg := file.WalkConfig()
	if flags.Changed("order") || cfg.Order == "" {
		cfg.Order = walk.Order(opts.Order)
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.Workers
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth = opts.MaxDepth
	}
	if flags.Changed("hidden") {
		cfg.Hidden = opts.Hidden
	}
	cfg.Logger = newLogger(cmd.ErrOrStderr(), rootOpts.Verbose)
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}

	jsonOutput := formatter.Format == "json"
	result := WalkResult{Order: string(cfg.Order), Dirs: []DirResult{}}
	var unreadable int
	err = walk.Walk(cmd.Context(), os.DirFS(dir), ".", cfg, func(d walk.Dir) error {
		r := newDirResult(d)
		if r.Error != "" {
			unreadable++
		}
		if jsonOutput {
			result.Dirs = append(result.Dirs, r)
			return nil
		}
		return writeText(formatter.Writer, r)
	})
	if err != nil {
		return WrapExitError(ExitFailure, "walk failed", err)
	}

	if unreadable > 0 {
		exitErr := NewExitError(ExitFailure, fmt.Sprintf("%d directories could not be read", unreadable))
		if jsonOutput {
			// The listing is still useful, so it goes out along with the error.
			_ = formatter.Failure(result, exitErr)
			exitErr.Reported = true
		}
		return exitErr
	}
	if jsonOutput {
		if err := formatter.Success(result); err != nil {
			return WrapExitError(ExitFailure, "cannot write output", err)
		}
	}
	return nil
}

func loadConfig(dir, path string) (*config.File, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load(dir)
}

// newLogger returns a logger for diagnostics on w. Every record carries the id
// of this run so that the records of concurrent runs can be told apart.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	if id, err := uuid.NewV7(); err == nil {
		logger = logger.With("run", id.String())
	}
	return logger
}

func newDirResult(d walk.Dir) DirResult {
	r := DirResult{
		Path:     d.Path,
		Position: d.Position.String(),
		Depth:    d.Depth,
	}
	if d.Err != nil {
		r.Error = d.Err.Error()
	}
	for _, e := range d.Entries {
		if !e.IsDir() {
			r.Files = append(r.Files, e.Name())
		}
	}
	return r
}

func writeText(w io.Writer, r DirResult) error {
	if r.Error != "" {
		_, err := fmt.Fprintf(w, "%s %s: %s\n", r.Position, r.Path, r.Error)
		return err
	}
	if _, err := fmt.Fprintf(w, "%s %s\n", r.Position, r.Path); err != nil {
		return err
	}
	for _, name := range r.Files {
		if _, err := fmt.Fprintf(w, "  %s\n", name); err != nil {
			return err
		}
	}
	return nil
}
