// Package clock provides the injectable time source the CLI reads
// exactly once per invocation.
//
// Production code uses Real(), which reports the system clock and the
// host's local time zone. Tests use Fixed() so that rendered tables
// and computed occurrences are deterministic.
package clock

import "time"

// Clock supplies the current instant and the zone used for the local
// time column.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Location returns the zone local times are projected into.
	Location() *time.Location
}

// Real returns a Clock backed by time.Now and time.Local.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time           { return time.Now() }
func (realClock) Location() *time.Location { return time.Local }

// Fixed returns a Clock that always reports now and loc. A nil loc
// means UTC.
func Fixed(now time.Time, loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return fixedClock{now: now, loc: loc}
}

type fixedClock struct {
	now time.Time
	loc *time.Location
}

func (c fixedClock) Now() time.Time           { return c.now }
func (c fixedClock) Location() *time.Location { return c.loc }

// InZone wraps c so that Location reports loc instead. Now is unchanged.
func InZone(c Clock, loc *time.Location) Clock {
	if loc == nil {
		return c
	}
	return zoned{Clock: c, loc: loc}
}

type zoned struct {
	Clock
	loc *time.Location
}

func (z zoned) Location() *time.Location { return z.loc }
