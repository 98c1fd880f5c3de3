package scheduler

import "time"

// LookaheadYears bounds how far Next searches before giving up. Eight
// years spans the longest gap between leap days (2096 to 2104, since
// 2100 is not a leap year), so only impossible dates are reported.
const LookaheadYears = 8

// Matches reports whether t, taken in UTC and ignoring seconds, is an
// occurrence of the expression.
func (e *Expression) Matches(t time.Time) bool {
	t = t.UTC()
	return e.months.has(int(t.Month())) &&
		e.dayMatches(t) &&
		e.hours.has(t.Hour()) &&
		e.minutes.has(t.Minute())
}

// dayMatches applies the cron day rule: when both day fields are
// restricted either may match, otherwise both must.
func (e *Expression) dayMatches(t time.Time) bool {
	dom := e.daysOfMonth.has(t.Day())
	dow := e.daysOfWeek.has(int(t.Weekday()))
	if e.DayFieldsRestricted() {
		return dom || dow
	}
	return dom && dow
}

// Next returns the earliest time strictly after t that matches the
// expression. All computation is in UTC and the result has zero
// seconds. Returns a *ComputeError if nothing matches within
// LookaheadYears of t.
func (e *Expression) Next(t time.Time) (time.Time, error) {
	from := t.UTC().Truncate(time.Minute)
	limit := from.AddDate(LookaheadYears, 0, 0)

	// Equivalent to stepping one minute at a time, but skips whole
	// months, days and hours that cannot match.
	t = from.Add(time.Minute)
	for !t.After(limit) {
		if !e.months.has(int(t.Month())) {
			t = time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
			continue
		}
		if !e.dayMatches(t) {
			t = time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, time.UTC)
			continue
		}
		if !e.hours.has(t.Hour()) {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, time.UTC)
			continue
		}
		if !e.minutes.has(t.Minute()) {
			t = t.Add(time.Minute)
			continue
		}
		return t, nil
	}

	return time.Time{}, &ComputeError{Kind: NoMatchFound, Expression: e.source, From: from}
}

// Cursor walks the occurrences of an expression in ascending order.
// A Cursor is owned by a single caller.
type Cursor struct {
	expr *Expression
	ref  time.Time
}

// NewCursor returns a cursor positioned at start, truncated to the
// second. The first call to Next returns the first occurrence strictly
// after start.
func NewCursor(expr *Expression, start time.Time) *Cursor {
	return &Cursor{expr: expr, ref: start.Truncate(time.Second)}
}

// Next advances the cursor to the following occurrence and returns it.
// On error the cursor is left where it was.
func (c *Cursor) Next() (time.Time, error) {
	next, err := c.expr.Next(c.ref)
	if err != nil {
		return time.Time{}, err
	}
	c.ref = next
	return next, nil
}

// Reference returns the instant the next search starts after.
func (c *Cursor) Reference() time.Time { return c.ref }

// Expression returns the expression the cursor walks.
func (c *Cursor) Expression() *Expression { return c.expr }

// NextN returns the first n occurrences strictly after start. It is
// equivalent to calling Next n times on a fresh Cursor.
func NextN(expr *Expression, start time.Time, n int) ([]time.Time, error) {
	if n <= 0 {
		return []time.Time{}, nil
	}
	cursor := NewCursor(expr, start)
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		next, err := cursor.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, next)
	}
	return out, nil
}
