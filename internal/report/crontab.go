package report

import (
	"time"

	"github.com/patrickspencer/cronpeek/internal/crontab"
)

// CrontabRow is the next run of one crontab entry, or the problem that
// prevented computing it.
type CrontabRow struct {
	Line     int        `json:"line" yaml:"line"`
	Schedule string     `json:"schedule" yaml:"schedule"`
	Command  string     `json:"command" yaml:"command"`
	Next     *time.Time `json:"next_utc,omitempty" yaml:"next_utc,omitempty"`
	Local    *time.Time `json:"next_local,omitempty" yaml:"next_local,omitempty"`
	Problem  string     `json:"problem,omitempty" yaml:"problem,omitempty"`
}

// BuildCrontab computes the next run after now for every entry. An
// entry that cannot be scheduled is kept with its problem recorded.
func BuildCrontab(entries []crontab.Entry, now time.Time, loc *time.Location) []CrontabRow {
	if loc == nil {
		loc = time.UTC
	}
	rows := make([]CrontabRow, 0, len(entries))
	for _, e := range entries {
		row := CrontabRow{Line: e.Line, Schedule: e.Schedule, Command: e.Command}
		if e.Err != nil {
			row.Problem = e.Err.Error()
			rows = append(rows, row)
			continue
		}
		next, err := e.Expression.Next(now)
		if err != nil {
			row.Problem = err.Error()
			rows = append(rows, row)
			continue
		}
		local := next.In(loc)
		row.Next, row.Local = &next, &local
		rows = append(rows, row)
	}
	return rows
}
