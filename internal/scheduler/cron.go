package scheduler

import (
	"strconv"
	"strings"
)

// descriptors maps the supported @-shorthands to their five-field form.
var descriptors = map[string]string{
	"@yearly":   "0 0 1 1 *",
	"@annually": "0 0 1 1 *",
	"@monthly":  "0 0 1 * *",
	"@weekly":   "0 0 * * 0",
	"@daily":    "0 0 * * *",
	"@midnight": "0 0 * * *",
	"@hourly":   "0 * * * *",
}

type fieldSpec struct {
	name     string
	min, max int
	top      int // last value reached by a wildcard or open-ended step
	names    map[string]int
	question bool // "?" is accepted as a wildcard
}

var (
	minuteSpec = fieldSpec{name: "minute", min: 0, max: 59, top: 59}
	hourSpec   = fieldSpec{name: "hour", min: 0, max: 23, top: 23}
	domSpec    = fieldSpec{name: "day-of-month", min: 1, max: 31, top: 31, question: true}
	monthSpec  = fieldSpec{name: "month", min: 1, max: 12, top: 12, names: map[string]int{
		"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
		"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
	}}
	// Day-of-week accepts 7 as Sunday; it is folded into 0 after parsing.
	dowSpec = fieldSpec{name: "day-of-week", min: 0, max: 7, top: 6, question: true, names: map[string]int{
		"sun": 0, "mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6,
	}}
)

// field is one parsed cron field: a bitset of allowed values plus
// whether the field was written as an unrestricted wildcard.
type field struct {
	bits uint64
	star bool
}

func (f field) has(value int) bool { return f.bits&(1<<uint(value)) != 0 }
func (f *field) set(value int)     { f.bits |= 1 << uint(value) }

// values returns the allowed values in ascending order.
func (f field) values(min, max int) []int {
	out := make([]int, 0, max-min+1)
	for v := min; v <= max; v++ {
		if f.has(v) {
			out = append(out, v)
		}
	}
	return out
}

// Expression is a parsed five-field cron expression. It is immutable
// once returned by Parse and safe to share between goroutines.
type Expression struct {
	source      string
	minutes     field
	hours       field
	daysOfMonth field
	months      field
	daysOfWeek  field
}

// Parse parses a standard 5-field cron expression or one of the
// @yearly, @annually, @monthly, @weekly, @daily, @midnight or @hourly
// descriptors. Failures are returned as *ParseError.
func Parse(text string) (*Expression, error) {
	source := strings.Join(strings.Fields(text), " ")
	expanded := source
	if strings.HasPrefix(source, "@") {
		five, ok := descriptors[strings.ToLower(source)]
		if !ok {
			return nil, &ParseError{Kind: Syntax, Field: "descriptor", Token: source, Detail: "unknown descriptor"}
		}
		expanded = five
	}

	fields := strings.Fields(expanded)
	if len(fields) != 5 {
		return nil, &ParseError{Kind: FieldCount, Detail: "expected 5 fields, got " + strconv.Itoa(len(fields))}
	}

	expr := &Expression{source: source}
	targets := []struct {
		spec fieldSpec
		dst  *field
	}{
		{minuteSpec, &expr.minutes},
		{hourSpec, &expr.hours},
		{domSpec, &expr.daysOfMonth},
		{monthSpec, &expr.months},
		{dowSpec, &expr.daysOfWeek},
	}
	for i, target := range targets {
		parsed, err := parseField(fields[i], target.spec)
		if err != nil {
			return nil, err
		}
		*target.dst = parsed
	}

	if expr.daysOfWeek.has(7) {
		expr.daysOfWeek.bits &^= 1 << 7
		expr.daysOfWeek.set(0)
	}
	return expr, nil
}

// IsValid reports whether text parses as a cron expression.
func IsValid(text string) bool {
	_, err := Parse(text)
	return err == nil
}

// String returns the expression as written, with whitespace collapsed.
func (e *Expression) String() string { return e.source }

// Minutes returns the allowed minutes in ascending order.
func (e *Expression) Minutes() []int { return e.minutes.values(minuteSpec.min, minuteSpec.max) }

// Hours returns the allowed hours in ascending order.
func (e *Expression) Hours() []int { return e.hours.values(hourSpec.min, hourSpec.max) }

// DaysOfMonth returns the allowed days of the month in ascending order.
func (e *Expression) DaysOfMonth() []int { return e.daysOfMonth.values(domSpec.min, domSpec.max) }

// Months returns the allowed months in ascending order.
func (e *Expression) Months() []int { return e.months.values(monthSpec.min, monthSpec.max) }

// DaysOfWeek returns the allowed weekdays (0 = Sunday) in ascending order.
func (e *Expression) DaysOfWeek() []int { return e.daysOfWeek.values(0, 6) }

// DayFieldsRestricted reports whether day-of-month and day-of-week are
// both restricted, in which case a day matches if either field does.
func (e *Expression) DayFieldsRestricted() bool {
	return !e.daysOfMonth.star && !e.daysOfWeek.star
}

// parseField parses a comma-separated list of terms.
func parseField(token string, spec fieldSpec) (field, error) {
	var result field
	if token == "*" || (spec.question && token == "?") {
		result.star = true
	}
	for _, term := range strings.Split(token, ",") {
		if err := parseTerm(term, spec, &result); err != nil {
			return field{}, err
		}
	}
	return result, nil
}

// parseTerm parses a single term: *, */N, V, V/N, V-V, V-V/N.
func parseTerm(term string, spec fieldSpec, dst *field) error {
	fail := func(kind ParseErrorKind, detail string) error {
		return &ParseError{Kind: kind, Field: spec.name, Token: term, Detail: detail}
	}
	if term == "" {
		return fail(Syntax, "empty term")
	}

	rangePart, stepPart, stepped := strings.Cut(term, "/")
	step := 1
	if stepped {
		n, err := strconv.Atoi(stepPart)
		if err != nil {
			return fail(Syntax, "invalid step "+strconv.Quote(stepPart))
		}
		if n <= 0 {
			return fail(OutOfRange, "step must be positive")
		}
		step = n
	}

	var start, end int
	switch {
	case rangePart == "*" || (spec.question && rangePart == "?"):
		start, end = spec.min, spec.top
	case strings.Contains(rangePart, "-"):
		lo, hi, _ := strings.Cut(rangePart, "-")
		var err error
		if start, err = parseValue(lo, spec); err != nil {
			return fail(Syntax, "invalid range start "+strconv.Quote(lo))
		}
		if end, err = parseValue(hi, spec); err != nil {
			return fail(Syntax, "invalid range end "+strconv.Quote(hi))
		}
		if start > end {
			if inDomain(start, spec) && inDomain(end, spec) {
				return fail(Syntax, "range start "+strconv.Itoa(start)+" > end "+strconv.Itoa(end))
			}
		}
	default:
		value, err := parseValue(rangePart, spec)
		if err != nil {
			return fail(Syntax, "invalid value")
		}
		start, end = value, value
		if stepped {
			// 7/N steps through the week from Sunday.
			if start > spec.top && start <= spec.max {
				start = spec.min
			}
			end = spec.top
		}
	}

	if !inDomain(start, spec) || !inDomain(end, spec) {
		return fail(OutOfRange, "value out of range "+strconv.Itoa(spec.min)+"-"+strconv.Itoa(spec.max))
	}
	if start > end {
		return fail(Syntax, "term matches no values")
	}
	for v := start; v <= end; v += step {
		dst.set(v)
	}
	return nil
}

func inDomain(v int, spec fieldSpec) bool { return v >= spec.min && v <= spec.max }

// parseValue reads a decimal number or, where the field allows it, a
// three-letter name.
func parseValue(s string, spec fieldSpec) (int, error) {
	if v, ok := spec.names[strings.ToLower(s)]; ok {
		return v, nil
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}
