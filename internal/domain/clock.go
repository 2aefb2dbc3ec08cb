package domain

import "github.com/jonboulle/clockwork"

// clock stamps SummaryTable.GeneratedAt.
var clock = clockwork.NewRealClock()

// SetClock replaces the clock behind GeneratedAt; nil restores the real one.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
