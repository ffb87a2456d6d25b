package schedule

import (
	"fmt"
	"io"

	appLog "kmacal/internal/log"
	"kmacal/internal/model"
	"kmacal/internal/timetable"
)

// Result is the outcome of one conversion.
type Result struct {
	Courses []model.CourseRecord
	Events  []model.EventRecord
}

// Pipeline runs extraction, expansion and event building in sequence.
type Pipeline struct {
	extractor *timetable.Extractor
	expander  *Expander
	builder   *EventBuilder
}

// NewPipeline validates the injected configuration and wires the stages.
func NewPipeline(opts timetable.Options, s Settings) (*Pipeline, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	ex, err := timetable.NewExtractor(opts)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		extractor: ex,
		expander:  NewExpander(s),
		builder:   NewEventBuilder(s.UIDDomain),
	}, nil
}

// Run converts one registration page into events.
func (p *Pipeline) Run(r io.Reader) (Result, error) {
	courses, err := p.extractor.Extract(r)
	if err != nil {
		return Result{}, err
	}
	appLog.Info("parsed timetable", "courses", len(courses))

	events, err := p.Events(courses)
	if err != nil {
		return Result{}, err
	}
	appLog.Info("built calendar events", "events", len(events))

	return Result{Courses: courses, Events: events}, nil
}

// Events expands courses in row, period, slot, then date order.
func (p *Pipeline) Events(courses []model.CourseRecord) ([]model.EventRecord, error) {
	events := make([]model.EventRecord, 0)
	for _, course := range courses {
		for _, period := range course.Periods {
			for _, slot := range period.Slots {
				occs, err := p.expander.Expand(slot, period)
				if err != nil {
					return nil, fmt.Errorf("course %s, group %d: %w", course.Code, period.Group, err)
				}
				for _, occ := range occs {
					events = append(events, p.builder.Build(course, slot, occ))
				}
			}
		}
		appLog.Debug("course expanded", "code", course.Code, "periods", len(course.Periods))
	}
	return events, nil
}
