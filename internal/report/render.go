package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"

	"github.com/patrickspencer/cronpeek/internal/config"
)

// Caption is printed under every run table.
const Caption = "Times are based on the current system time."

// ProfileFor maps a color mode from the configuration to the terminal
// profile used for w. In auto mode the profile follows the terminal and
// the NO_COLOR / CLICOLOR_FORCE environment variables.
func ProfileFor(w io.Writer, mode string) termenv.Profile {
	switch mode {
	case config.ColorAlways:
		return termenv.ANSI256
	case config.ColorNever:
		return termenv.Ascii
	default:
		return termenv.NewOutput(w).EnvColorProfile()
	}
}

type styles struct {
	label       lipgloss.Style
	expression  lipgloss.Style
	description lipgloss.Style
	title       lipgloss.Style
	header      lipgloss.Style
	index       lipgloss.Style
	cell        lipgloss.Style
	border      lipgloss.Style
	caption     lipgloss.Style
	errorLabel  lipgloss.Style
	problem     lipgloss.Style
}

// Printer renders reports and error lines to a terminal writer.
type Printer struct {
	w        io.Writer
	renderer *lipgloss.Renderer
	st       styles
}

// NewPrinter returns a Printer writing to w with the given profile.
func NewPrinter(w io.Writer, profile termenv.Profile) *Printer {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(profile)

	cell := r.NewStyle().Padding(0, 1)
	return &Printer{
		w:        w,
		renderer: r,
		st: styles{
			label:       r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
			expression:  r.NewStyle().Foreground(lipgloss.Color("3")),
			description: r.NewStyle().Foreground(lipgloss.Color("6")),
			title:       r.NewStyle().Italic(true),
			header:      cell.Bold(true).Foreground(lipgloss.Color("5")),
			index:       cell.Faint(true).Width(5),
			cell:        cell,
			border:      r.NewStyle().Faint(true),
			caption:     r.NewStyle().Faint(true),
			errorLabel:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
			problem:     cell.Foreground(lipgloss.Color("1")),
		},
	}
}

// Report writes the analysis header followed by the run table.
func (p *Printer) Report(rep *Report) error {
	var b strings.Builder
	for _, s := range rep.Schedules {
		fmt.Fprintf(&b, "%s %s\n", p.st.label.Render("Analysis for:"), p.st.expression.Render("'"+s.Expression+"'"))
		fmt.Fprintf(&b, "%s %s\n", p.st.description.Render("Description:"), s.Description)
	}

	headers := []string{"#", "UTC Time (Server Time)", "Local Time"}
	if rep.Merged() {
		headers = []string{"#", "Schedule", "UTC Time (Server Time)", "Local Time"}
	}
	rows := make([][]string, 0, len(rep.Runs))
	for _, run := range rep.Runs {
		row := []string{strconv.Itoa(run.Index)}
		if rep.Merged() {
			row = append(row, run.Schedule)
		}
		row = append(row, run.UTC.Format(UTCLayout), run.Local.Format(LocalLayout))
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.st.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return p.st.header
			case col == 0:
				return p.st.index
			default:
				return p.st.cell
			}
		})

	p.framed(&b, fmt.Sprintf("Next %d Scheduled Runs", len(rep.Runs)), t.Render(), Caption)
	_, err := io.WriteString(p.w, b.String())
	return err
}

// Crontab writes one row per crontab entry with its next run or the
// reason it could not be computed.
func (p *Printer) Crontab(rows []CrontabRow) error {
	problems := make(map[int]bool)
	data := make([][]string, 0, len(rows))
	for i, row := range rows {
		if row.Problem != "" {
			problems[i] = true
			data = append(data, []string{strconv.Itoa(row.Line), row.Schedule, row.Command, row.Problem, ""})
			continue
		}
		data = append(data, []string{
			strconv.Itoa(row.Line),
			row.Schedule,
			row.Command,
			row.Next.Format(UTCLayout),
			row.Local.Format(LocalLayout),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.st.border).
		Headers("Line", "Schedule", "Command", "Next Run (UTC)", "Next Run (Local)").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return p.st.header
			case problems[row] && col == 3:
				return p.st.problem
			default:
				return p.st.cell
			}
		})

	var b strings.Builder
	p.framed(&b, fmt.Sprintf("Crontab: %d Entries", len(rows)), t.Render(), Caption)
	_, err := io.WriteString(p.w, b.String())
	return err
}

// framed writes title, body and caption with title and caption
// centred over the body's width.
func (p *Printer) framed(b *strings.Builder, title, body, caption string) {
	width := lipgloss.Width(body)
	b.WriteString(p.st.title.Width(width).Align(lipgloss.Center).Render(title))
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(p.st.caption.Width(width).Align(lipgloss.Center).Render(caption))
	b.WriteString("\n")
}

// Error writes "<label> <message>" with the label highlighted.
func (p *Printer) Error(label, message string) {
	fmt.Fprintf(p.w, "%s %s\n", p.st.errorLabel.Render(label), message)
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteYAML writes v as a YAML document.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
