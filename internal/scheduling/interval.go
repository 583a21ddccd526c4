// Package scheduling holds the calendar arithmetic shared by appointments and
// time blocks. Dates are calendar days (YYYY-MM-DD) and clock times are
// wall-clock HH:MM values in the coach's own time zone; nothing here converts
// between zones.
package scheduling

import (
	"errors"
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
	minutesDay  = 24 * 60
)

var (
	ErrInvalidDate     = errors.New("date must use YYYY-MM-DD")
	ErrInvalidClock    = errors.New("time must use HH:MM")
	ErrInvalidInterval = errors.New("end time must be after start time")
)

// Interval is a half-open [Start, End) range in minutes after midnight.
type Interval struct {
	Start int
	End   int
}

func ParseDate(value string) (string, error) {
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return parsed.Format(DateLayout), nil
}

func ParseClock(value string) (int, error) {
	parsed, err := time.Parse(ClockLayout, value)
	if err != nil || len(value) != len(ClockLayout) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func NewInterval(start, end int) (Interval, error) {
	if start < 0 || end > minutesDay || end <= start {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{Start: start, End: end}, nil
}

func ParseInterval(startTime, endTime string) (Interval, error) {
	start, err := ParseClock(startTime)
	if err != nil {
		return Interval{}, err
	}
	end, err := ParseClock(endTime)
	if err != nil {
		return Interval{}, err
	}
	return NewInterval(start, end)
}

// Overlaps reports whether the two ranges share at least one minute.
// Back-to-back ranges (a.End == b.Start) do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && i.End > other.Start
}

func (i Interval) Minutes() int {
	return i.End - i.Start
}

func (i Interval) StartClock() string {
	return FormatClock(i.Start)
}

func (i Interval) EndClock() string {
	return FormatClock(i.End)
}

func (i Interval) String() string {
	return i.StartClock() + "-" + i.EndClock()
}

// WholeDay spans midnight to midnight.
func WholeDay() Interval {
	return Interval{Start: 0, End: minutesDay}
}
