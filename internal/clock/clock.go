// Package clock supplies the weekday, date, and time-of-day strings stamped
// onto diary entries.
package clock

import "time"

// Layouts used for the stamp fields.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Stamp is the wall-clock reading at the moment of a query.
type Stamp struct {
	Day  string `json:"day"`
	Date string `json:"date"`
	Time string `json:"time"`
}

// String renders the stamp the way the diary shows it after unlocking.
func (s Stamp) String() string {
	return s.Date + "|" + s.Time
}

// Clock reports the current stamp. Implementations must not cache.
type Clock interface {
	Now() Stamp
}

// Func adapts a time source into a Clock.
type Func func() time.Time

// Now implements Clock.
func (f Func) Now() Stamp {
	return FromTime(f())
}

// System reads the host clock in the local time zone.
var System Clock = Func(func() time.Time { return time.Now().In(time.Local) })

// FromTime formats t into a Stamp without changing its location.
func FromTime(t time.Time) Stamp {
	return Stamp{
		Day:  t.Weekday().String(),
		Date: t.Format(DateLayout),
		Time: t.Format(TimeLayout),
	}
}

// Fixed always returns the same stamp.
type Fixed Stamp

// Now implements Clock.
func (f Fixed) Now() Stamp {
	return Stamp(f)
}
