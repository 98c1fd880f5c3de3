package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/robfig/cron/v3"
)

func utc(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func TestNextNEveryFifteenMinutes(t *testing.T) {
	t.Parallel()

	expr := mustParse(t, "*/15 * * * *")
	got, err := NextN(expr, utc(2024, 1, 1, 0, 5), 5)
	if err != nil {
		t.Fatalf("NextN: %v", err)
	}
	want := []time.Time{
		utc(2024, 1, 1, 0, 15),
		utc(2024, 1, 1, 0, 30),
		utc(2024, 1, 1, 0, 45),
		utc(2024, 1, 1, 1, 0),
		utc(2024, 1, 1, 1, 15),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("occurrences mismatch (-want +got):\n%s", diff)
	}
}

func TestNextYearly(t *testing.T) {
	t.Parallel()

	next, err := mustParse(t, "0 0 1 1 *").Next(utc(2024, 6, 1, 0, 0))
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if want := utc(2025, 1, 1, 0, 0); !next.Equal(want) {
		t.Fatalf("expected %v, got %v", want, next)
	}
}

func TestNextIsStrictlyAfter(t *testing.T) {
	t.Parallel()

	expr := mustParse(t, "0 7 * * *")
	tests := []struct {
		from time.Time
		want time.Time
	}{
		{utc(2026, 2, 18, 5, 0), utc(2026, 2, 18, 7, 0)},
		{utc(2026, 2, 18, 7, 0), utc(2026, 2, 19, 7, 0)},
		{utc(2026, 2, 18, 8, 0), utc(2026, 2, 19, 7, 0)},
		{time.Date(2026, 2, 18, 6, 59, 59, 999, time.UTC), utc(2026, 2, 18, 7, 0)},
		{time.Date(2026, 2, 18, 7, 0, 30, 0, time.UTC), utc(2026, 2, 19, 7, 0)},
		{utc(2026, 12, 31, 7, 0), utc(2027, 1, 1, 7, 0)},
	}
	for _, test := range tests {
		next, err := expr.Next(test.from)
		if err != nil {
			t.Fatalf("Next(%v): %v", test.from, err)
		}
		if !next.Equal(test.want) {
			t.Errorf("Next(%v) = %v, want %v", test.from, next, test.want)
		}
	}
}

func TestNextReturnsUTC(t *testing.T) {
	t.Parallel()

	plusFive := time.FixedZone("PLUS5", 5*60*60)
	from := time.Date(2024, 1, 1, 5, 5, 0, 0, plusFive)

	next, err := mustParse(t, "*/15 * * * *").Next(from)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if next.Location() != time.UTC {
		t.Fatalf("expected UTC result, got %v", next.Location())
	}
	if want := utc(2024, 1, 1, 0, 15); !next.Equal(want) {
		t.Fatalf("expected %v, got %v", want, next)
	}
}

func TestNextDayOfMonthOrDayOfWeek(t *testing.T) {
	t.Parallel()

	// 2024-01-01 is a Monday; 2024-02-01 is a Thursday.
	expr := mustParse(t, "0 0 1 * 1")
	got, err := NextN(expr, utc(2024, 1, 1, 0, 0), 6)
	if err != nil {
		t.Fatalf("NextN: %v", err)
	}
	want := []time.Time{
		utc(2024, 1, 8, 0, 0),
		utc(2024, 1, 15, 0, 0),
		utc(2024, 1, 22, 0, 0),
		utc(2024, 1, 29, 0, 0),
		utc(2024, 2, 1, 0, 0),
		utc(2024, 2, 5, 0, 0),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("occurrences mismatch (-want +got):\n%s", diff)
	}

	if expr.Matches(utc(2024, 1, 2, 0, 0)) {
		t.Fatal("expected Tuesday 2nd not to match")
	}
	if !expr.Matches(utc(2024, 2, 1, 0, 0)) {
		t.Fatal("expected Thursday 1st to match on day-of-month alone")
	}
}

func TestNextSingleRestrictedDayField(t *testing.T) {
	t.Parallel()

	mondays := mustParse(t, "0 0 * * 1")
	if mondays.Matches(utc(2024, 2, 1, 0, 0)) {
		t.Fatal("expected Thursday not to match a Monday-only schedule")
	}
	next, err := mondays.Next(utc(2024, 1, 30, 0, 0))
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if want := utc(2024, 2, 5, 0, 0); !next.Equal(want) {
		t.Fatalf("expected %v, got %v", want, next)
	}

	firsts := mustParse(t, "0 0 1 * *")
	next, err = firsts.Next(utc(2024, 1, 8, 0, 0))
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if want := utc(2024, 2, 1, 0, 0); !next.Equal(want) {
		t.Fatalf("expected %v, got %v", want, next)
	}
}

func TestNextLeapDay(t *testing.T) {
	t.Parallel()

	next, err := mustParse(t, "0 0 29 2 *").Next(utc(2024, 3, 1, 0, 0))
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if want := utc(2028, 2, 29, 0, 0); !next.Equal(want) {
		t.Fatalf("expected %v, got %v", want, next)
	}
}

func TestNextLeapDayAcrossCentury(t *testing.T) {
	t.Parallel()

	next, err := mustParse(t, "0 0 29 2 *").Next(utc(2097, 3, 1, 0, 0))
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if want := utc(2104, 2, 29, 0, 0); !next.Equal(want) {
		t.Fatalf("expected %v, got %v", want, next)
	}
}

func TestNextSundayAsSevenWithStep(t *testing.T) {
	t.Parallel()

	// 2024-01-01 is a Monday.
	got, err := NextN(mustParse(t, "0 0 * * 7/2"), utc(2024, 1, 1, 0, 0), 3)
	if err != nil {
		t.Fatalf("NextN: %v", err)
	}
	want := []time.Time{utc(2024, 1, 2, 0, 0), utc(2024, 1, 4, 0, 0), utc(2024, 1, 6, 0, 0)}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("occurrence %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestNextNoMatchFound(t *testing.T) {
	t.Parallel()

	from := utc(2024, 1, 1, 0, 0)
	_, err := mustParse(t, "0 0 30 2 *").Next(from)
	if err == nil {
		t.Fatal("expected error for February 30th")
	}
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected errors.Is(err, ErrNoMatch), got %v", err)
	}
	var cerr *ComputeError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *ComputeError, got %T", err)
	}
	if cerr.Kind != NoMatchFound {
		t.Fatalf("expected NoMatchFound, got %v", cerr.Kind)
	}
	if !cerr.From.Equal(from) || cerr.Expression != "0 0 30 2 *" {
		t.Fatalf("unexpected error detail: %+v", cerr)
	}
	if errors.Is(err, ErrInvalidExpression) {
		t.Fatal("compute error must not look like a parse error")
	}
}

func TestCursor(t *testing.T) {
	t.Parallel()

	expr := mustParse(t, "30 */6 * * *")
	start := time.Date(2024, 3, 10, 1, 2, 3, 456, time.UTC)

	cursor := NewCursor(expr, start)
	if want := time.Date(2024, 3, 10, 1, 2, 3, 0, time.UTC); !cursor.Reference().Equal(want) {
		t.Fatalf("expected reference %v, got %v", want, cursor.Reference())
	}

	var walked []time.Time
	for i := 0; i < 8; i++ {
		next, err := cursor.Next()
		if err != nil {
			t.Fatalf("Next #%d: %v", i, err)
		}
		if !cursor.Reference().Equal(next) {
			t.Fatalf("expected reference to follow Next, got %v want %v", cursor.Reference(), next)
		}
		walked = append(walked, next)
	}

	batch, err := NextN(expr, start, 8)
	if err != nil {
		t.Fatalf("NextN: %v", err)
	}
	if diff := cmp.Diff(batch, walked); diff != "" {
		t.Fatalf("cursor walk differs from NextN (-NextN +cursor):\n%s", diff)
	}
	if want := utc(2024, 3, 10, 6, 30); !walked[0].Equal(want) {
		t.Fatalf("expected first occurrence %v, got %v", want, walked[0])
	}
}

func TestCursorUnchangedOnError(t *testing.T) {
	t.Parallel()

	start := utc(2024, 1, 1, 0, 0)
	cursor := NewCursor(mustParse(t, "0 0 31 4 *"), start)
	if _, err := cursor.Next(); err == nil {
		t.Fatal("expected error for April 31st")
	}
	if !cursor.Reference().Equal(start) {
		t.Fatalf("expected reference %v after failure, got %v", start, cursor.Reference())
	}
}

func TestNextNNonPositive(t *testing.T) {
	t.Parallel()

	expr := mustParse(t, "* * * * *")
	for _, n := range []int{0, -3} {
		got, err := NextN(expr, utc(2024, 1, 1, 0, 0), n)
		if err != nil {
			t.Fatalf("NextN(%d): %v", n, err)
		}
		if len(got) != 0 {
			t.Fatalf("NextN(%d): expected no occurrences, got %d", n, len(got))
		}
	}
}

func contains(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// TestOccurrenceProperties checks ordering and field membership over a
// spread of expressions and start instants.
func TestOccurrenceProperties(t *testing.T) {
	t.Parallel()

	expressions := []string{
		"* * * * *",
		"*/7 * * * *",
		"0 12 * * 1-5",
		"15,45 3-5 * * *",
		"0 0 1 * 1",
		"0 0 13 * 5",
		"59 23 31 * *",
		"0 6 1-7 feb-apr sun",
		"@monthly",
	}
	starts := []time.Time{
		utc(2024, 1, 1, 0, 0),
		utc(2024, 2, 28, 23, 59),
		time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC),
	}

	for _, text := range expressions {
		expr := mustParse(t, text)
		for _, start := range starts {
			occurrences, err := NextN(expr, start, 40)
			if err != nil {
				t.Fatalf("NextN(%q, %v): %v", text, start, err)
			}
			prev := start
			for i, occ := range occurrences {
				if !occ.After(prev) {
					t.Fatalf("%q: occurrence %d (%v) not after %v", text, i, occ, prev)
				}
				prev = occ

				if occ.Second() != 0 || occ.Nanosecond() != 0 {
					t.Fatalf("%q: occurrence %v has sub-minute component", text, occ)
				}
				if !contains(expr.Minutes(), occ.Minute()) ||
					!contains(expr.Hours(), occ.Hour()) ||
					!contains(expr.Months(), int(occ.Month())) {
					t.Fatalf("%q: occurrence %v outside minute/hour/month sets", text, occ)
				}
				dom := contains(expr.DaysOfMonth(), occ.Day())
				dow := contains(expr.DaysOfWeek(), int(occ.Weekday()))
				dayOK := dom && dow
				if expr.DayFieldsRestricted() {
					dayOK = dom || dow
				}
				if !dayOK {
					t.Fatalf("%q: occurrence %v fails the day rule", text, occ)
				}
			}
		}
	}
}

// TestNextMatchesMinuteStepping compares Next against the plain
// minute-by-minute search it short-circuits.
func TestNextMatchesMinuteStepping(t *testing.T) {
	t.Parallel()

	expressions := []string{
		"*/20 9-17 * * 1-5",
		"0 0 1,15 * 3",
		"30 22 * * 6,0",
		"5 4 28-31 * *",
	}
	stepper := func(expr *Expression, from time.Time) time.Time {
		t := from.UTC().Truncate(time.Minute).Add(time.Minute)
		for !expr.Matches(t) {
			t = t.Add(time.Minute)
		}
		return t
	}

	for _, text := range expressions {
		expr := mustParse(t, text)
		ref := utc(2024, 2, 26, 8, 0)
		for i := 0; i < 25; i++ {
			want := stepper(expr, ref)
			got, err := expr.Next(ref)
			if err != nil {
				t.Fatalf("Next(%q, %v): %v", text, ref, err)
			}
			if !got.Equal(want) {
				t.Fatalf("Next(%q, %v) = %v, minute stepping gives %v", text, ref, got, want)
			}
			ref = got
		}
	}
}

// TestNextAgreesWithRobfigCron uses robfig/cron as a reference for
// standard expressions.
func TestNextAgreesWithRobfigCron(t *testing.T) {
	t.Parallel()

	reference := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	expressions := []string{
		"*/15 * * * *",
		"0 9 * * 1-5",
		"30 2 1,15 * *",
		"0 0 1 * 1",
		"0 12 1-7 * 5",
		"5 4 * * sun",
		"23 0-20/2 * * *",
		"15 10 * jan,jul *",
		"@daily",
		"@weekly",
	}

	for _, text := range expressions {
		text := text
		t.Run(text, func(t *testing.T) {
			t.Parallel()

			expr := mustParse(t, text)
			schedule, err := reference.Parse(text)
			if err != nil {
				t.Fatalf("robfig Parse(%q): %v", text, err)
			}

			ours := utc(2023, 11, 30, 17, 42)
			theirs := ours
			for i := 0; i < 30; i++ {
				var err error
				ours, err = expr.Next(ours)
				if err != nil {
					t.Fatalf("Next #%d: %v", i, err)
				}
				theirs = schedule.Next(theirs)
				if !ours.Equal(theirs) {
					t.Fatalf("occurrence #%d: got %v, robfig/cron gives %v", i, ours, theirs)
				}
			}
		})
	}
}
