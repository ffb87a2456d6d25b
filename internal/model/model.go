package model

import (
	"fmt"
	"time"
)

// Kind is the session category of a slot.
type Kind int

const (
	KindLecture Kind = iota
	KindLab
)

func (k Kind) String() string {
	switch k {
	case KindLecture:
		return "lecture"
	case KindLab:
		return "lab"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// CourseRecord is one data row of the registration table.
// Code is shown to users but is not unique across rows.
type CourseRecord struct {
	Name       string
	Code       string
	Location   string
	Instructor string
	Periods    []PeriodRecord
}

// PeriodRecord is a contiguous date range with a fixed weekly pattern.
// StartDate and EndDate are civil dates at midnight UTC; EndDate is inclusive.
type PeriodRecord struct {
	// Group is the "(N)" ordinal from the source text, kept for diagnostics.
	Group     int
	StartDate time.Time
	EndDate   time.Time
	Slots     []SlotRecord
}

// SlotRecord is one recurring (weekday, periods, kind) pattern.
type SlotRecord struct {
	// Weekday is the literal weekday name from the source, e.g. "Thứ 2".
	// It is resolved against the configured names at expansion time.
	Weekday string
	// Periods keeps the source order; it is rendered verbatim in descriptions.
	Periods  []int
	Kind     Kind
	KindCode string
}

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM".
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Clock{}, err
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

func (c Clock) Before(o Clock) bool {
	return c.Minutes() < o.Minutes()
}

// On combines the civil date of d with c in loc.
func (c Clock) On(d time.Time, loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour, c.Minute, 0, 0, loc)
}

// ClockRange is a start/end pair with Start < End.
type ClockRange struct {
	Start Clock
	End   Clock
}

// Occurrence is one dated materialization of a slot.
type Occurrence struct {
	// Date is the civil date at midnight UTC.
	Date  time.Time
	Start time.Time
	End   time.Time
	// StartClock is the wall-clock start used for the event UID.
	StartClock Clock
}

// EventRecord is the final output unit, one per occurrence.
type EventRecord struct {
	UID         string
	Summary     string
	Start       time.Time
	End         time.Time
	Location    string
	Description string
}

// Date returns the civil date y-m-d at midnight UTC.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
