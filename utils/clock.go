package utils

import "time"

// Clock abstracts wall-clock reads so booking and reminder logic can be
// driven by a fixed time source in tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// NewRealClock returns a Clock backed by time.Now.
func NewRealClock() Clock { return realClock{} }
