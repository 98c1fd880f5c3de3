// Package crontab reads a user's crontab and splits each job line into
// its schedule and command.
package crontab

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/patrickspencer/cronpeek/internal/scheduler"
)

// ErrMissingCommand is reported for a job line with a schedule but no command.
var ErrMissingCommand = errors.New("missing command")

// Entry is one job line from a crontab. Either Expression is set or Err
// explains why the schedule could not be used.
type Entry struct {
	Line       int
	Schedule   string
	Command    string
	Expression *scheduler.Expression
	Err        error
}

var envAssignment = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*\s*=`)

// Read returns the current user's crontab via `crontab -l`. A user
// without a crontab gets an empty string.
func Read(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "crontab", "-l")
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("crontab command not available: %w", err)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && strings.Contains(strings.ToLower(stderr.String()), "no crontab") {
			return "", nil
		}
		return "", fmt.Errorf("crontab -l: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out.String(), nil
}

// ReadFile returns the contents of a crontab-format file.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Parse splits crontab content into job entries. Blank lines, comments
// and NAME=value environment lines are skipped. Line numbers are 1-based.
func Parse(content string) []Entry {
	var entries []Entry
	for i, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") || envAssignment.MatchString(line) {
			continue
		}
		entries = append(entries, parseLine(i+1, line))
	}
	return entries
}

func parseLine(number int, line string) Entry {
	parts := strings.Fields(line)
	entry := Entry{Line: number}

	scheduleFields := 5
	if strings.HasPrefix(parts[0], "@") {
		scheduleFields = 1
	}
	if len(parts) <= scheduleFields {
		entry.Schedule = strings.Join(parts, " ")
		entry.Err = ErrMissingCommand
		return entry
	}

	entry.Schedule = strings.Join(parts[:scheduleFields], " ")
	entry.Command = strings.Join(parts[scheduleFields:], " ")
	entry.Expression, entry.Err = scheduler.Parse(entry.Schedule)
	return entry
}
