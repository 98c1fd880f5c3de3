// Package report turns parsed expressions into the list of upcoming
// runs shown to the user and renders it as a table, JSON or YAML.
//
// A Report is computed completely before anything is written, so a
// failure never leaves partial output behind.
package report

import (
	"fmt"
	"time"

	"github.com/patrickspencer/cronpeek/internal/scheduler"
)

// Timestamp layouts for the UTC and local columns.
const (
	UTCLayout   = "2006-01-02 15:04:05"
	LocalLayout = "2006-01-02 15:04:05 (MST)"
)

// Entry is one expression requested by the user.
type Entry struct {
	// Label names the entry in merged output: the alias name, or the
	// expression text when no alias was used.
	Label       string
	Expression  *scheduler.Expression
	Description string
}

// Schedule describes one analysed expression.
type Schedule struct {
	Label       string `json:"label" yaml:"label"`
	Expression  string `json:"expression" yaml:"expression"`
	Description string `json:"description" yaml:"description"`
}

// Run is one upcoming occurrence.
type Run struct {
	Index    int       `json:"index" yaml:"index"`
	Schedule string    `json:"schedule" yaml:"schedule"`
	UTC      time.Time `json:"utc" yaml:"utc"`
	Local    time.Time `json:"local" yaml:"local"`
}

// Report is the computed result handed to a renderer.
type Report struct {
	GeneratedAt time.Time  `json:"generated_at" yaml:"generated_at"`
	Zone        string     `json:"zone" yaml:"zone"`
	Schedules   []Schedule `json:"schedules" yaml:"schedules"`
	Runs        []Run      `json:"runs" yaml:"runs"`
}

// Merged reports whether the runs interleave more than one schedule.
func (r *Report) Merged() bool { return len(r.Schedules) > 1 }

// Describe returns the placeholder description for an expression.
func Describe(expression string) string {
	return fmt.Sprintf("Runs according to the schedule: '%s'", expression)
}

// Build computes the next count runs after now for entries, projecting
// each into loc for the local column. With one entry the runs are that
// expression's occurrences; with several they are merged in time order.
func Build(entries []Entry, now time.Time, loc *time.Location, count int) (*Report, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no schedules to analyse")
	}
	if loc == nil {
		loc = time.UTC
	}

	rep := &Report{
		GeneratedAt: now.UTC(),
		Zone:        loc.String(),
		Schedules:   make([]Schedule, 0, len(entries)),
		Runs:        make([]Run, 0, max(count, 0)),
	}
	for _, e := range entries {
		description := e.Description
		if description == "" {
			description = Describe(e.Expression.String())
		}
		rep.Schedules = append(rep.Schedules, Schedule{
			Label:       e.Label,
			Expression:  e.Expression.String(),
			Description: description,
		})
	}

	if len(entries) == 1 {
		times, err := scheduler.NextN(entries[0].Expression, now, count)
		if err != nil {
			return nil, err
		}
		for i, t := range times {
			rep.Runs = append(rep.Runs, newRun(i+1, entries[0].Label, t, loc))
		}
		return rep, nil
	}

	timeline := scheduler.NewTimeline(now)
	for _, e := range entries {
		if err := timeline.Add(e.Label, e.Expression); err != nil {
			return nil, err
		}
	}
	occurrences, err := timeline.Take(count)
	if err != nil {
		return nil, err
	}
	for i, occ := range occurrences {
		rep.Runs = append(rep.Runs, newRun(i+1, occ.Label, occ.Time, loc))
	}
	return rep, nil
}

func newRun(index int, label string, t time.Time, loc *time.Location) Run {
	return Run{Index: index, Schedule: label, UTC: t.UTC(), Local: t.In(loc)}
}
