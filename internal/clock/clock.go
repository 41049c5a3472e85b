// Package clock supplies the single source of "now" for the rest of the
// application. Components never read the wall clock directly; they hold
// a Clock so that booking-window rules stay deterministic under test.
package clock

import (
	"sync"
	"time"
)

// Clock yields the current instant and the configured application zone.
type Clock interface {
	Now() time.Time
	Zone() *time.Location
}

// System is the production clock. It reads the wall clock and reports
// it in the configured zone.
type System struct {
	Loc *time.Location
}

// NewSystem returns a system clock pinned to loc. A nil loc falls back
// to UTC.
func NewSystem(loc *time.Location) *System {
	if loc == nil {
		loc = time.UTC
	}
	return &System{Loc: loc}
}

func (s *System) Now() time.Time       { return time.Now().In(s.Loc) }
func (s *System) Zone() *time.Location { return s.Loc }

// Fake is a controllable clock for tests. It is safe for concurrent
// use so concurrency tests can share one instance across goroutines.
type Fake struct {
	mu  sync.Mutex
	now time.Time
	loc *time.Location
}

// NewFake returns a fake clock frozen at start, reporting start's
// location as the application zone.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start, loc: start.Location()}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) Zone() *time.Location { return f.loc }

// Set moves the fake clock to t.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Advance moves the fake clock forward by d and returns the new time.
func (f *Fake) Advance(d time.Duration) time.Time {
	f.mu.Lock()
	f.now = f.now.Add(d)
	t := f.now
	f.mu.Unlock()
	return t
}
