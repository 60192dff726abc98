package clock

import (
	"testing"
	"time"
)

func TestFromTime(t *testing.T) {
	ts := time.Date(2026, time.October, 19, 7, 5, 9, 0, time.UTC)
	got := FromTime(ts)
	want := Stamp{Day: "Monday", Date: "2026-10-19", Time: "07:05:09"}
	if got != want {
		t.Errorf("FromTime = %+v, want %+v", got, want)
	}
	if got.String() != "2026-10-19|07:05:09" {
		t.Errorf("String = %q", got.String())
	}
}

func TestFuncIsNotCached(t *testing.T) {
	base := time.Date(2026, time.January, 1, 23, 59, 59, 0, time.UTC)
	calls := 0
	c := Func(func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	})

	first := c.Now()
	second := c.Now()
	if first == second {
		t.Fatalf("expected distinct stamps, got %+v twice", first)
	}
	if second.Day != "Friday" || second.Date != "2026-01-02" {
		t.Errorf("second = %+v, want rollover to Friday 2026-01-02", second)
	}
}

func TestSystemUsesLocalZone(t *testing.T) {
	s := System.Now()
	if _, err := time.ParseInLocation(DateLayout+" "+TimeLayout, s.Date+" "+s.Time, time.Local); err != nil {
		t.Fatalf("unparseable stamp %+v: %v", s, err)
	}
	if s.Day == "" {
		t.Error("day is empty")
	}
}

func TestFixed(t *testing.T) {
	want := Stamp{Day: "Sunday", Date: "2026-10-18", Time: "12:00:00"}
	c := Fixed(want)
	if c.Now() != want {
		t.Errorf("Fixed.Now = %+v", c.Now())
	}
}
