package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/pflag"

	"github.com/patrickspencer/cronpeek/internal/clock"
	"github.com/patrickspencer/cronpeek/internal/crontab"
	"github.com/patrickspencer/cronpeek/internal/report"
)

func runCrontab(args []string, stdout, stderr io.Writer, clk clock.Clock) int {
	var opts options
	var file string
	fs := pflag.NewFlagSet("crontab", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&file, "file", "", "read entries from this file instead of `crontab -l`")
	opts.addFlags(fs, false)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		fmt.Fprintln(stderr, "usage: cronpeek crontab [--file PATH] [flags]")
		return exitUsage
	}
	if opts.help {
		fmt.Fprintln(stdout, "usage: cronpeek crontab [--file PATH] [flags]")
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Show the next run of every entry in a crontab.")
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Flags:")
		fmt.Fprint(stdout, fs.FlagUsages())
		return exitOK
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "error: unexpected arguments: %v\n", fs.Args())
		return exitUsage
	}

	s, err := newSession(fs, &opts, stdout, stderr, clk)
	if err != nil {
		report.NewPrinter(stderr, report.ProfileFor(stderr, opts.color)).Error("Error:", err.Error())
		return exitFailure
	}

	var content string
	if file != "" {
		content, err = crontab.ReadFile(file)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		content, err = crontab.Read(ctx)
		cancel()
	}
	if err != nil {
		s.errs.Error("Error:", fmt.Sprintf("reading crontab: %v", err))
		return exitFailure
	}

	entries := crontab.Parse(content)
	s.logger.Printf("parsed %d crontab entr(ies)", len(entries))
	if len(entries) == 0 {
		fmt.Fprintln(stdout, "no crontab entries found")
		return exitOK
	}

	rows := report.BuildCrontab(entries, s.clock.Now(), s.clock.Location())
	if err := s.write(rows, func(p *report.Printer) error { return p.Crontab(rows) }); err != nil {
		s.errs.Error("An unexpected error occurred:", err.Error())
		return exitFailure
	}
	return exitOK
}
