package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.lsp.dev/protocol"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/harry-hov/lspfmt/internal/buffer"
	"github.com/harry-hov/lspfmt/internal/client"
	"github.com/harry-hov/lspfmt/internal/config"
	"github.com/harry-hov/lspfmt/internal/format"
)

var (
	errInvalidRange  = errors.New("invalid range")
	errFormatTimeout = errors.New("server did not answer")
)

type formatFlags struct {
	config  string
	server  string
	timeout time.Duration
	tabSize int
	rng     string
	write   bool
	list    bool
	jobs    int
}

func CmdFormat() *cobra.Command {
	var flags formatFlags
	cmd := &cobra.Command{
		Use:   "format [flags] file...",
		Short: "Format files through a language server",
		Long: `Format opens each file in a language server and applies the edits it returns,
the same way an editor does before saving. Without --server the built-in
server is used.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags.config)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("timeout") {
				cfg.FormatOnSaveTimeout = flags.timeout
			}
			if cmd.Flags().Changed("tab-size") {
				cfg.TabSize = flags.tabSize
			}
			if flags.server != "" {
				cfg.ServerCommand = strings.Fields(flags.server)
			}
			// Whole-document formatting goes through the save path.
			cfg.FormatOnSave = true
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runFormat(cmd.Context(), cfg, flags, args, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&flags.config, "config", "", "configuration file (default: "+config.FileName+" if present)")
	cmd.Flags().StringVar(&flags.server, "server", "", "language server command line (default: built-in server, or $"+config.EnvServer+")")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", config.DefaultFormatOnSaveTimeout, "how long to wait for the server per file")
	cmd.Flags().IntVar(&flags.tabSize, "tab-size", config.DefaultTabSize, "indent width sent to the server")
	cmd.Flags().StringVar(&flags.rng, "range", "", "format only LINE[:COL]-LINE[:COL], 1-based")
	cmd.Flags().BoolVarP(&flags.write, "write", "w", false, "write result to the source file instead of stdout")
	cmd.Flags().BoolVarP(&flags.list, "list", "l", false, "list files whose formatting differs")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", runtime.NumCPU(), "files formatted at once")

	return cmd
}

// loadConfig layers the configuration file and then the environment over
// the defaults.
func loadConfig(path string) (config.Config, error) {
	cfg := config.Default()
	var err error
	if path != "" {
		cfg, err = config.FromFile(cfg, path)
	} else {
		cfg, err = config.FromFileIfExists(cfg, config.FileName)
	}
	if err != nil {
		return cfg, err
	}
	return config.FromEnv(cfg)
}

func runFormat(ctx context.Context, cfg config.Config, flags formatFlags, paths []string, stdout io.Writer) (err error) {
	var rng *protocol.Range
	if flags.rng != "" {
		r, err := parseRange(flags.rng)
		if err != nil {
			return err
		}
		rng = &r
	}

	argv, err := serverCommand(cfg)
	if err != nil {
		return err
	}
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	session, err := client.Spawn(ctx, argv, client.WithRootDir(wd))
	if err != nil {
		return err
	}
	registry := client.NewRegistry()
	if err := registry.Attach(client.AnyExtension, session); err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		err = multierr.Append(err, registry.Close(ctx))
	}()

	r := &formatRun{
		cfg:       cfg,
		flags:     flags,
		rng:       rng,
		session:   session,
		store:     buffer.NewStore(),
		formatter: format.New(cfg, registry, format.WithLogger(slog.Default())),
		stdout:    stdout,
		colored:   isTerminal(stdout),
	}

	g, gctx := errgroup.WithContext(ctx)
	if flags.jobs > 0 {
		g.SetLimit(flags.jobs)
	}
	for _, path := range paths {
		path := path
		g.Go(func() error {
			return r.file(gctx, path)
		})
	}
	return g.Wait()
}

// serverCommand returns the configured server, or this binary in serve mode.
func serverCommand(cfg config.Config) ([]string, error) {
	if len(cfg.ServerCommand) > 0 {
		return cfg.ServerCommand, nil
	}
	self, err := os.Executable()
	if err != nil {
		return nil, err
	}
	return []string{self, "serve"}, nil
}

type formatRun struct {
	cfg       config.Config
	flags     formatFlags
	rng       *protocol.Range
	session   *client.Session
	store     *buffer.Store
	formatter *format.Formatter

	mu      sync.Mutex
	stdout  io.Writer
	colored bool
}

func (r *formatRun) file(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}
	src, err := os.ReadFile(abs)
	if err != nil {
		return err
	}

	doc, err := r.store.Open(abs, string(src),
		buffer.WithTabSize(r.cfg.TabSize),
		buffer.WithLanguageID(languageID(abs)),
	)
	if err != nil {
		return err
	}
	defer func() {
		r.formatter.Forget(doc)
		_ = r.store.Close(abs)
		_ = r.session.DidClose(ctx, abs)
	}()
	if err := r.session.DidOpen(ctx, abs, doc.LanguageID(), doc.Text(), doc.Version()); err != nil {
		return err
	}

	if err := r.format(ctx, doc); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	out := doc.Text()
	changed := out != string(src)
	switch {
	case r.flags.list:
		if changed {
			r.listed(path)
		}
	case !r.flags.write:
		r.print(out)
	}
	if r.flags.write && changed {
		if err := os.WriteFile(abs, []byte(out), info.Mode().Perm()); err != nil {
			return err
		}
		return r.session.DidSave(ctx, abs, out)
	}
	return nil
}

func (r *formatRun) format(ctx context.Context, doc *buffer.Document) error {
	if r.rng == nil {
		res := r.formatter.PreSave(ctx, doc)
		slog.Debug("formatted", "file", doc.Path(), "state", res.State, "edits", res.Edits, "elapsed", res.Elapsed)
		return saveError(res)
	}

	doc.Select(*r.rng)
	cmd := r.formatter.FormatSelectionCommand()
	if !cmd.IsEnabled(doc) {
		return fmt.Errorf("%s unavailable", cmd.Name())
	}
	if err := cmd.Run(ctx, doc); err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, r.cfg.FormatOnSaveTimeout)
	defer cancel()
	return r.formatter.Wait(wctx, doc)
}

// saveError reports a save-time result that left the file unformatted.
func saveError(res format.SaveResult) error {
	switch res.State {
	case format.StateTimedOut:
		return fmt.Errorf("%w after %s", errFormatTimeout, res.Elapsed.Round(time.Millisecond))
	case format.StateReported:
		return res.Err
	default:
		return nil
	}
}

func (r *formatRun) print(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = io.WriteString(r.stdout, s)
}

func (r *formatRun) listed(path string) {
	if r.colored {
		path = color.YellowString(path)
	}
	r.print(path + "\n")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func languageID(path string) string {
	switch ext := strings.TrimPrefix(filepath.Ext(path), "."); ext {
	case "":
		return "plaintext"
	case "md":
		return "markdown"
	default:
		return ext
	}
}

// parseRange parses LINE[:COL]-LINE[:COL] with 1-based lines and columns.
// An end without a column covers that whole line.
func parseRange(s string) (protocol.Range, error) {
	from, to, ok := strings.Cut(s, "-")
	if !ok {
		return protocol.Range{}, fmt.Errorf("%w %q: want LINE[:COL]-LINE[:COL]", errInvalidRange, s)
	}
	start, err := parsePosition(from, false)
	if err != nil {
		return protocol.Range{}, fmt.Errorf("%w %q: %v", errInvalidRange, s, err)
	}
	end, err := parsePosition(to, true)
	if err != nil {
		return protocol.Range{}, fmt.Errorf("%w %q: %v", errInvalidRange, s, err)
	}
	if end.Line < start.Line || (end.Line == start.Line && end.Character <= start.Character) {
		return protocol.Range{}, fmt.Errorf("%w %q: empty", errInvalidRange, s)
	}
	return protocol.Range{Start: start, End: end}, nil
}

func parsePosition(s string, end bool) (protocol.Position, error) {
	lineText, colText, hasCol := strings.Cut(strings.TrimSpace(s), ":")
	line, err := strconv.Atoi(lineText)
	if err != nil || line < 1 {
		return protocol.Position{}, fmt.Errorf("bad line %q", lineText)
	}
	if !hasCol {
		if end {
			return protocol.Position{Line: uint32(line)}, nil
		}
		return protocol.Position{Line: uint32(line - 1)}, nil
	}
	col, err := strconv.Atoi(colText)
	if err != nil || col < 1 {
		return protocol.Position{}, fmt.Errorf("bad column %q", colText)
	}
	return protocol.Position{Line: uint32(line - 1), Character: uint32(col - 1)}, nil
}
