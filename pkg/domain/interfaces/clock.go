package interfaces

import "time"

// Clock abstracts wall-clock reads and timer waits so the polling loop can
// be tested without sleeping.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}
