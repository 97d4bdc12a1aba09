// Command mylex drives the toolchain's front end over one or more source
// files: it loads configuration, builds a SourceManager/Lexer pipeline per
// file, and reports either the resulting tokens or lexical diagnostics.
//
// Grounded on cmd/lci/main.go's urfave/cli scaffolding (app flags, a
// config-with-overrides loader, subcommands for distinct pipeline stages),
// trimmed from a code-indexing daemon down to a lex-and-report CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/mylang-front/internal/alloc"
	"github.com/standardbeagle/mylang-front/internal/config"
	"github.com/standardbeagle/mylang-front/internal/diag"
	"github.com/standardbeagle/mylang-front/internal/intern"
	"github.com/standardbeagle/mylang-front/internal/lexer"
	"github.com/standardbeagle/mylang-front/internal/source"
)

const appVersion = "0.1.0"

func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path %q: %w", root, err)
	}

	cfg, err := config.LoadWithRoot(absRoot, absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Project.Root = absRoot

	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}
	if c.Bool("retain-comments") {
		cfg.Lexer.RetainComments = true
	}
	if format := c.String("format"); format != "" {
		cfg.Diag.Format = format
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// pipeline bundles the per-run shared components a lex over one or more
// files needs: one arena-backed interner and source manager, and one
// diagnostic manager wired to whichever consumer the CLI selected.
type pipeline struct {
	sm  *source.SourceManager
	in  *intern.Interner
	dm  *diag.Manager
	cfg *config.Config
	fm  *source.FileManager
}

func newPipeline(cfg *config.Config) *pipeline {
	fm := source.NewFileManagerWithOptions(source.Options{
		MaxCacheSize: cfg.Files.MaxTotalSizeMB * 1024 * 1024,
	})
	return newPipelineFrom(cfg, fm)
}

// newPipelineFrom builds a pipeline over an already-existing FileManager,
// so a long-running caller (watchCommand) can keep one file cache alive
// across many runs instead of re-reading every file from disk on every
// cycle, while still getting a fresh SourceManager and diagnostic manager
// per run (a FileID's location range is permanent once assigned, so a
// changed file needs a new SourceManager, not an in-place update).
func newPipelineFrom(cfg *config.Config, fm *source.FileManager) *pipeline {
	sm := source.NewSourceManager(fm)
	arena := alloc.NewWithChunkSize(int(cfg.Arena.BlockSize))
	in := intern.NewWithArena(arena)
	dm := diag.NewManager(sm)
	dm.SetSuppressWarnings(cfg.Diag.SuppressWarnings)
	dm.SetSuppressNotes(cfg.Diag.SuppressNotes)
	dm.SetWarningsAsErrors(cfg.Diag.WarningsAsErrors)
	dm.SetMaxErrors(cfg.Diag.MaxErrors)

	if cfg.Diag.Format == "json" {
		dm.AddConsumer(diag.NewJSONConsumer(os.Stdout, sm))
	} else {
		tc := diag.NewTextConsumer(os.Stderr, sm)
		tc.Color = cfg.Diag.Color
		dm.AddConsumer(tc)
	}

	return &pipeline{sm: sm, in: in, dm: dm, cfg: cfg, fm: fm}
}

func (p *pipeline) lexerOptions() lexer.Options {
	opts := lexer.DefaultOptions()
	opts.RetainComments = p.cfg.Lexer.RetainComments
	opts.RetainWhitespace = p.cfg.Lexer.RetainWhitespace
	opts.AllowUnicodeIdentifiers = p.cfg.Lexer.AllowUnicodeIdentifiers
	opts.StrictMode = p.cfg.Lexer.StrictMode
	opts.WarningsAsErrors = p.cfg.Diag.WarningsAsErrors
	return opts
}

func (p *pipeline) lexFile(path string, printTokens bool) error {
	fid, err := p.sm.CreateFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	p.dm.BeginSourceFile(path)
	lx := lexer.New(p.sm, fid, p.in, p.dm, p.lexerOptions())
	for {
		tok := lx.Next()
		if printTokens {
			fmt.Printf("%-16s %s\n", tok.Kind, tok.Text.String())
		}
		if tok.Kind == lexer.EndOfFile {
			break
		}
	}
	p.dm.EndSourceFile()
	return nil
}

func main() {
	app := &cli.App{
		Name:    "mylex",
		Usage:   "lex mylang source files and report tokens or diagnostics",
		Version: appVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "project root to resolve .mylang.kdl from"},
			&cli.StringSliceFlag{Name: "include", Usage: "glob patterns to include"},
			&cli.StringSliceFlag{Name: "exclude", Usage: "glob patterns to exclude"},
			&cli.BoolFlag{Name: "retain-comments", Usage: "emit comment tokens instead of discarding them"},
			&cli.StringFlag{Name: "format", Usage: "diagnostic output format: text or json"},
		},
		Commands: []*cli.Command{
			lexCommand(),
			checkCommand(),
			watchCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "mylex:", err)
		os.Exit(1)
	}
}

func lexCommand() *cli.Command {
	return &cli.Command{
		Name:      "lex",
		Usage:     "print the token stream for one or more files",
		ArgsUsage: "FILE...",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			p := newPipeline(cfg)
			for _, path := range resolvePaths(c, cfg) {
				if err := p.lexFile(path, true); err != nil {
					return err
				}
			}
			return exitIfErrors(p.dm)
		},
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "lex one or more files and report diagnostics only",
		ArgsUsage: "FILE...",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			p := newPipeline(cfg)
			for _, path := range resolvePaths(c, cfg) {
				if err := p.lexFile(path, false); err != nil {
					return err
				}
			}
			return exitIfErrors(p.dm)
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "re-check the project whenever a source file changes",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			cfg.Files.WatchMode = true

			fm := source.NewFileManagerWithOptions(source.Options{
				MaxCacheSize: cfg.Files.MaxTotalSizeMB * 1024 * 1024,
			})

			run := func() {
				p := newPipelineFrom(cfg, fm)
				for _, path := range resolvePaths(c, cfg) {
					if err := p.lexFile(path, false); err != nil {
						fmt.Fprintln(os.Stderr, "mylex:", err)
					}
				}
			}
			run()

			w, err := config.NewWatcher(cfg, func(paths []string) {
				if !reloadChangedFiles(fm, paths) {
					fmt.Fprintln(os.Stderr, "mylex: content unchanged, skipping re-check")
					return
				}
				fmt.Fprintf(os.Stderr, "mylex: %d file(s) changed, re-checking\n", len(paths))
				run()
			})
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(context.Background())
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sig
				cancel()
			}()

			if err := w.Start(ctx, cfg.Project.Root); err != nil {
				return err
			}
			<-ctx.Done()
			return nil
		},
	}
}

// reloadChangedFiles re-reads each path reported by the watcher through fm
// and reports whether at least one actually changed content (by FastHash),
// so an editor's atomic save-without-change (or a touch) doesn't trigger a
// full project re-check.
func reloadChangedFiles(fm *source.FileManager, paths []string) bool {
	changed := false
	for _, path := range paths {
		_, didChange, err := fm.ReloadFile(path)
		if err != nil {
			// The file may have been removed; that's a real change worth
			// re-checking for, not a reload failure to ignore.
			changed = true
			continue
		}
		if didChange {
			changed = true
		}
	}
	return changed
}

func resolvePaths(c *cli.Context, cfg *config.Config) []string {
	if c.NArg() > 0 {
		return c.Args().Slice()
	}
	files, err := cfg.DiscoverSourceFiles(cfg.Project.Root)
	if err != nil {
		return nil
	}
	return files
}

func exitIfErrors(dm *diag.Manager) error {
	dm.Finish()
	counts := dm.Counts()
	if counts.Errors > 0 || counts.Fatals > 0 {
		return fmt.Errorf("%d error(s), %d warning(s)", counts.Errors, counts.Warnings)
	}
	return nil
}
