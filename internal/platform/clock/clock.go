package clock

import "time"

// Clock abstracts time and the device zone to keep usecases deterministic in tests.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

func (SystemClock) Location() *time.Location {
	return time.Local
}

// Fixed always reports the same instant and zone.
type Fixed struct {
	At   time.Time
	Zone *time.Location
}

func (f Fixed) Now() time.Time { return f.At }

func (f Fixed) Location() *time.Location {
	if f.Zone == nil {
		return time.UTC
	}
	return f.Zone
}
