// Package main prints class win rates from battle logs without starting a
// server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ramonehamilton/duelscope/internal/battlelog"
	"github.com/ramonehamilton/duelscope/internal/config"
	"github.com/ramonehamilton/duelscope/internal/facade"
	"github.com/ramonehamilton/duelscope/internal/version"
)

type options struct {
	configPath string
	mode       string
	filter     battlelog.FilterInput
	format     string
	matchups   bool
	out        string
	verbose    bool
	version    bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("winrates", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "Config file (default: $DUELSCOPE_CONFIG or duelscope.toml)")
	fs.StringVar(&o.mode, "mode", "", "Game mode (default: the configured default mode)")
	fs.StringVar(&o.filter.StartDate, "start", "", "Start date, YYYY-MM-DD[ HH:MM]")
	fs.StringVar(&o.filter.EndDate, "end", "", "End date, YYYY-MM-DD[ HH:MM]; a bare date includes the whole day")
	fs.StringVar(&o.filter.LastMatches, "last", "", "Only the N most recent matches")
	fs.StringVar(&o.filter.Level, "level", "", "Only matches at this level")
	fs.BoolVar(&o.filter.LatestOnly, "latest", false, "Only read the newest log file")
	fs.StringVar(&o.format, "format", formatTable, "Output format: table, json or markdown")
	fs.BoolVar(&o.matchups, "matchups", false, "Print the class matchup table instead of win rates")
	fs.StringVar(&o.out, "out", "", "Write to this file instead of stdout")
	fs.BoolVar(&o.verbose, "v", false, "Log file failures and skipped lines")
	fs.BoolVar(&o.version, "version", false, "Print the version and exit")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if !validFormat(o.format) {
		return o, fmt.Errorf("unknown format %q", o.format)
	}
	return o, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "winrates: %v\n", err)
		os.Exit(2)
	}
	if opts.version {
		fmt.Println(version.GetVersion())
		return
	}
	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "winrates: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) (err error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := slog.LevelError
	if opts.verbose || cfg.App.DebugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	services, err := facade.NewServices(cfg, facade.ServicesOptions{Logger: logger})
	if err != nil {
		return err
	}
	f := facade.NewStatsFacade(services)
	mode := f.ResolveMode(opts.mode)

	var w io.Writer = os.Stdout
	if opts.out != "" {
		file, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close output file: %w", cerr)
			}
		}()
		w = file
	}

	if opts.matchups {
		result, err := f.GetMatchups(ctx, mode, opts.filter)
		if err != nil {
			return err
		}
		return writeMatchups(w, opts.format, f.ModeLabel(mode), result)
	}

	result, err := f.GetStats(ctx, mode, opts.filter)
	if err != nil {
		return err
	}
	return writeStats(w, opts.format, f.ModeLabel(mode), result)
}
