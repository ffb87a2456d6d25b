package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"kmacal/internal/model"
)

// EventBuilder assembles event records from occurrences.
type EventBuilder struct {
	uidDomain string
}

func NewEventBuilder(uidDomain string) *EventBuilder {
	if uidDomain == "" {
		uidDomain = DefaultUIDDomain
	}
	return &EventBuilder{uidDomain: uidDomain}
}

// Build returns the event for one occurrence of slot in course.
func (b *EventBuilder) Build(course model.CourseRecord, slot model.SlotRecord, occ model.Occurrence) model.EventRecord {
	return model.EventRecord{
		UID:         EventUID(course.Code, occ.Date, occ.StartClock, b.uidDomain),
		Summary:     course.Name,
		Start:       occ.Start,
		End:         occ.End,
		Location:    course.Location,
		Description: Describe(course, slot),
	}
}

// EventUID is "<code>-<YYYY-MM-DD>-<HH:MM>@<domain>". It depends only on its
// inputs, so re-running a conversion yields the same identifiers.
func EventUID(code string, date time.Time, start model.Clock, domain string) string {
	return fmt.Sprintf("%s-%s-%s@%s", code, date.Format(time.DateOnly), start, domain)
}

// Describe renders the event description:
//
//	Course: <code>
//	Type: <kind code>
//	Instructor: <instructor>
//	Periods: <n1>, <n2>, ...
func Describe(course model.CourseRecord, slot model.SlotRecord) string {
	periods := make([]string, len(slot.Periods))
	for i, p := range slot.Periods {
		periods[i] = strconv.Itoa(p)
	}

	var b strings.Builder
	b.WriteString("Course: " + course.Code + "\n")
	b.WriteString("Type: " + slot.KindCode + "\n")
	b.WriteString("Instructor: " + course.Instructor + "\n")
	b.WriteString("Periods: " + strings.Join(periods, ", "))
	return b.String()
}
