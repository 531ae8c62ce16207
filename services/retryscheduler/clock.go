package retryscheduler

import (
	"time"
)

// Clock abstracts wall-clock time so tests can advance virtual time
// deterministically instead of sleeping on real time
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// NewRealClock returns a Clock backed by the system clock
func NewRealClock() Clock {
	return realClock{}
}
