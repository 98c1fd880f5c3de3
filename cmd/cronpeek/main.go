// cronpeek prints the next run times of a cron schedule in UTC and in
// local time.
//
//	cronpeek '*/15 * * * *'
//	cronpeek -n 10 --timezone Europe/Berlin 0 9 '*' '*' 1-5
//	cronpeek backup reports        # aliases from the config file, merged
//	cronpeek crontab               # next run of every crontab entry
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	_ "time/tzdata"

	"github.com/spf13/pflag"

	"github.com/patrickspencer/cronpeek/internal/clock"
	"github.com/patrickspencer/cronpeek/internal/config"
	"github.com/patrickspencer/cronpeek/internal/report"
	"github.com/patrickspencer/cronpeek/internal/scheduler"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, clock.Real()))
}

// options holds the flags shared by every cronpeek command.
type options struct {
	configPath string
	count      int
	timezone   string
	output     string
	color      string
	verbose    bool
	help       bool
}

func (o *options) addFlags(fs *pflag.FlagSet, withCount bool) {
	fs.StringVar(&o.configPath, "config", config.DefaultPath(), "path to configuration file")
	if withCount {
		fs.IntVarP(&o.count, "count", "n", 5, "number of upcoming runs to show")
	}
	fs.StringVar(&o.timezone, "timezone", "", "IANA zone for the local time column (default: system zone)")
	fs.StringVarP(&o.output, "output", "o", config.OutputTable, "output format: table, json or yaml")
	fs.StringVar(&o.color, "color", config.ColorAuto, "color mode: auto, always or never")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "log diagnostics to stderr")
	fs.BoolVarP(&o.help, "help", "h", false, "show help")
}

// session is the per-invocation state shared by the commands.
type session struct {
	cfg    *config.Config
	clock  clock.Clock
	logger *log.Logger
	stdout io.Writer
	errs   *report.Printer
}

// newSession loads the configuration, applies flag overrides and
// resolves the zone for the local column.
func newSession(fs *pflag.FlagSet, opts *options, stdout, stderr io.Writer, clk clock.Clock) (*session, error) {
	logger := log.New(io.Discard, "cronpeek: ", 0)
	if opts.verbose {
		logger.SetOutput(stderr)
	}

	var cfg *config.Config
	var err error
	if fs.Changed("config") {
		cfg, err = config.LoadConfig(opts.configPath)
	} else {
		cfg, err = config.LoadOrDefault(opts.configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger.Printf("config: %s (%d alias(es))", opts.configPath, len(cfg.Aliases))

	if fs.Changed("count") {
		cfg.Count = opts.count
	}
	if fs.Changed("timezone") {
		cfg.Timezone = strings.TrimSpace(opts.timezone)
	}
	if fs.Changed("output") {
		cfg.Output = strings.ToLower(strings.TrimSpace(opts.output))
	}
	if fs.Changed("color") {
		cfg.Color = strings.ToLower(strings.TrimSpace(opts.color))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	clk = clock.InZone(clk, loc)
	logger.Printf("local zone: %s", clk.Location())

	return &session{
		cfg:    cfg,
		clock:  clk,
		logger: logger,
		stdout: stdout,
		errs:   report.NewPrinter(stderr, report.ProfileFor(stderr, cfg.Color)),
	}, nil
}

// write renders v in the configured machine format, or calls table for
// table output.
func (s *session) write(v any, table func(*report.Printer) error) error {
	switch s.cfg.Output {
	case config.OutputJSON:
		return report.WriteJSON(s.stdout, v)
	case config.OutputYAML:
		return report.WriteYAML(s.stdout, v)
	default:
		return table(report.NewPrinter(s.stdout, report.ProfileFor(s.stdout, s.cfg.Color)))
	}
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "usage: cronpeek [flags] EXPRESSION [EXPRESSION...]")
	fmt.Fprintln(w, "       cronpeek crontab [--file PATH] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Display the next scheduled run times for cron expressions in UTC and local time.")
	fmt.Fprintln(w, "EXPRESSION is a five-field cron expression (quoted, or as five arguments),")
	fmt.Fprintln(w, "an @descriptor such as @daily, or the name of an alias from the config file.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, fs.FlagUsages())
}

func run(args []string, stdout, stderr io.Writer, clk clock.Clock) int {
	if len(args) > 0 && args[0] == "crontab" {
		return runCrontab(args[1:], stdout, stderr, clk)
	}

	var opts options
	fs := pflag.NewFlagSet("cronpeek", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts.addFlags(fs, true)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		printUsage(stderr, fs)
		return exitUsage
	}
	if opts.help {
		printUsage(stdout, fs)
		return exitOK
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "error: a cron expression is required")
		printUsage(stderr, fs)
		return exitUsage
	}

	s, err := newSession(fs, &opts, stdout, stderr, clk)
	if err != nil {
		report.NewPrinter(stderr, report.ProfileFor(stderr, opts.color)).Error("Error:", err.Error())
		return exitFailure
	}

	entries := make([]report.Entry, 0, fs.NArg())
	for _, arg := range expressionArgs(fs.Args(), s.cfg) {
		text, alias := s.cfg.Resolve(arg)
		expr, err := scheduler.Parse(text)
		if err != nil {
			s.errs.Error("Error:", fmt.Sprintf("Invalid cron expression: '%s'", strings.TrimSpace(text)))
			fmt.Fprintf(stderr, "  %v\n", err)
			return exitFailure
		}

		e := report.Entry{Label: expr.String(), Expression: expr}
		if alias != nil {
			e.Label = alias.Name
			e.Description = alias.Description
			s.logger.Printf("alias %q -> %q", alias.Name, alias.Schedule)
		}
		entries = append(entries, e)
	}

	now := s.clock.Now()
	s.logger.Printf("base time: %s", now.UTC().Format("2006-01-02T15:04:05Z07:00"))

	rep, err := report.Build(entries, now, s.clock.Location(), s.cfg.Count)
	if err != nil {
		var cerr *scheduler.ComputeError
		if errors.As(err, &cerr) {
			s.errs.Error("Error:", fmt.Sprintf("no run time found for '%s': %v", cerr.Expression, err))
			return exitFailure
		}
		s.errs.Error("An unexpected error occurred:", err.Error())
		return exitFailure
	}

	if err := s.write(rep, func(p *report.Printer) error { return p.Report(rep) }); err != nil {
		s.errs.Error("An unexpected error occurred:", err.Error())
		return exitFailure
	}
	return exitOK
}

// expressionArgs joins five single-field arguments into one expression,
// so an unquoted schedule works. Otherwise, or when any argument is an
// alias or @descriptor, each argument is its own expression.
func expressionArgs(args []string, cfg *config.Config) []string {
	if len(args) != 5 {
		return args
	}
	for _, arg := range args {
		if strings.ContainsAny(arg, " \t") || strings.HasPrefix(arg, "@") {
			return args
		}
		if _, alias := cfg.Resolve(arg); alias != nil {
			return args
		}
	}
	return []string{strings.Join(args, " ")}
}
