package pricing

import "time"

// Window is an optional activity period. A nil leg leaves that side open, so
// the zero Window is always active. Both legs are inclusive.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if w.Start != nil && w.Start.After(t) {
		return false
	}
	if w.End != nil && w.End.Before(t) {
		return false
	}
	return true
}

// Bounded reports whether either leg is set.
func (w Window) Bounded() bool {
	return w.Start != nil || w.End != nil
}

// NextTransition returns the earliest window leg strictly after now, or nil
// when no window changes state in the future.
func NextTransition(now time.Time, windows ...Window) *time.Time {
	var next *time.Time
	consider := func(t *time.Time) {
		if t == nil || !t.After(now) {
			return
		}
		if next == nil || t.Before(*next) {
			v := *t
			next = &v
		}
	}
	for _, w := range windows {
		consider(w.Start)
		consider(w.End)
	}
	return next
}
