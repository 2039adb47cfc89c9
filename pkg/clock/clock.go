package clock

import (
	"sync"
	"time"
)

// Clock supplies the current instant so time-dependent code stays testable.
type Clock interface {
	Now() time.Time
}

// Real reads the system wall clock in UTC.
type Real struct{}

// NewReal returns the production clock.
func NewReal() Clock {
	return Real{}
}

// Now returns the current system time.
func (Real) Now() time.Time {
	return time.Now().UTC()
}

// Func adapts a plain function into a Clock.
type Func func() time.Time

// Now calls the wrapped function.
func (f Func) Now() time.Time {
	return f()
}

// Fixed returns a clock frozen at t.
func Fixed(t time.Time) Clock {
	return Func(func() time.Time { return t })
}

// Mock is a settable clock for tests that need to move time forward.
type Mock struct {
	mu      sync.Mutex
	current time.Time
}

// NewMock creates a Mock starting at the given time.
func NewMock(start time.Time) *Mock {
	return &Mock{current: start}
}

// Now returns the mock current time.
func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Set replaces the mock current time.
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	m.current = t
	m.mu.Unlock()
}

// Advance moves the mock clock forward by d.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	m.current = m.current.Add(d)
	m.mu.Unlock()
}
