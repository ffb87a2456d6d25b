package ics

import (
	"sort"
	"strings"
	"time"
)

// CourseSummary aggregates the events of one course in a parsed calendar.
type CourseSummary struct {
	Code    string
	Summary string
	Events  int
	First   time.Time
	Last    time.Time
}

// Summarize groups events by course code, in order of first appearance.
// The code is read from the "Course:" description line and falls back to
// the UID prefix.
func Summarize(events []ParsedEvent) []CourseSummary {
	byCode := make(map[string]*CourseSummary)
	order := make([]string, 0)

	for _, ev := range events {
		code := courseCode(ev)
		s, ok := byCode[code]
		if !ok {
			s = &CourseSummary{Code: code, Summary: ev.Summary, First: ev.Start, Last: ev.Start}
			byCode[code] = s
			order = append(order, code)
		}
		s.Events++
		if ev.Start.Before(s.First) {
			s.First = ev.Start
		}
		if ev.Start.After(s.Last) {
			s.Last = ev.Start
		}
	}

	out := make([]CourseSummary, 0, len(order))
	for _, code := range order {
		out = append(out, *byCode[code])
	}
	return out
}

// SortByFirst orders summaries by their first event.
func SortByFirst(s []CourseSummary) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].First.Before(s[j].First) })
}

func courseCode(ev ParsedEvent) string {
	for _, line := range strings.Split(ev.Description, "\n") {
		if code, ok := strings.CutPrefix(line, "Course: "); ok {
			return strings.TrimSpace(code)
		}
	}
	// UID is "<code>-<YYYY-MM-DD>-<HH:MM>@domain"; the date part has two dashes.
	uid, _, _ := strings.Cut(ev.UID, "@")
	parts := strings.Split(uid, "-")
	if len(parts) > 4 {
		return strings.Join(parts[:len(parts)-4], "-")
	}
	return uid
}
