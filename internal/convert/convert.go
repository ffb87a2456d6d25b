// Package convert runs a timetable conversion between files.
package convert

import (
	"fmt"
	"os"
	"time"

	"kmacal/internal/config"
	"kmacal/internal/ics"
	appLog "kmacal/internal/log"
	"kmacal/internal/schedule"
)

// Converter converts registration pages into calendar files.
type Converter struct {
	pipeline *schedule.Pipeline
	meta     ics.Meta
	// Now supplies the DTSTAMP of written calendars.
	Now func() time.Time
}

// New builds a Converter from resolved configuration.
func New(r *config.Resolved) (*Converter, error) {
	p, err := schedule.NewPipeline(r.Timetable, r.Schedule)
	if err != nil {
		return nil, err
	}
	return &Converter{pipeline: p, meta: r.Calendar, Now: time.Now}, nil
}

// InputError reports an input file that could not be opened.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("cannot open input file %q: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// Convert reads the HTML page at in and writes the calendar to out.
// Nothing is written unless the whole conversion succeeds.
func (c *Converter) Convert(in, out string) (schedule.Result, error) {
	f, err := os.Open(in)
	if err != nil {
		return schedule.Result{}, &InputError{Path: in, Err: err}
	}
	defer f.Close()

	appLog.Info("parsing HTML schedule", "input", in)
	res, err := c.pipeline.Run(f)
	if err != nil {
		return schedule.Result{}, err
	}

	if err := ics.WriteFile(out, c.meta, res.Events, c.Now()); err != nil {
		return schedule.Result{}, fmt.Errorf("write calendar: %w", err)
	}
	return res, nil
}

// Inspect parses a calendar file and summarizes it per course, earliest
// course first.
func Inspect(path string) (ics.Header, []ics.CourseSummary, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return ics.Header{}, nil, &InputError{Path: path, Err: err}
	}
	h, events, err := ics.ParseICS(body)
	if err != nil {
		return ics.Header{}, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	summaries := ics.Summarize(events)
	ics.SortByFirst(summaries)
	return h, summaries, nil
}
