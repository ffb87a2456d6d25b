package ics

import (
	"bytes"
	"errors"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"kmacal/internal/fileutil"
	appLog "kmacal/internal/log"
	"kmacal/internal/model"
)

const (
	localLayout = "20060102T150405"
	utcLayout   = "20060102T150405Z"
)

// Meta holds the calendar-level properties.
type Meta struct {
	ProductID   string
	Name        string
	Description string
	// Timezone is advertised as X-WR-TIMEZONE. Event times carry their own TZID.
	Timezone string
}

// DefaultMeta returns the calendar header used for KMA exports.
func DefaultMeta() Meta {
	return Meta{
		ProductID:   "-//KMA Schedule Parser//mxm.dk//",
		Name:        "KMA Schedule",
		Description: "Schedule for KMA student",
		Timezone:    "Asia/Ho_Chi_Minh",
	}
}

// Build assembles a publishable calendar. stamp becomes every DTSTAMP so a
// calendar built twice from the same events differs only in that value.
func Build(meta Meta, events []model.EventRecord, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetProductId(meta.ProductID)
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ical.MethodPublish)
	cal.SetXWRCalName(meta.Name)
	cal.SetXWRCalDesc(meta.Description)
	cal.SetXWRTimezone(meta.Timezone)

	for _, ev := range events {
		ve := cal.AddEvent(ev.UID)
		ve.SetDtStampTime(stamp.UTC())
		setDateTime(ve, ical.ComponentPropertyDtStart, ev.Start)
		setDateTime(ve, ical.ComponentPropertyDtEnd, ev.End)
		ve.SetSummary(ev.Summary)
		ve.SetLocation(ev.Location)
		ve.SetDescription(ev.Description)
	}
	return cal
}

// setDateTime writes t as local time qualified by its zone name, or in UTC
// form when t is already UTC.
func setDateTime(ve *ical.VEvent, prop ical.ComponentProperty, t time.Time) {
	if t.Location() == time.UTC {
		ve.SetProperty(prop, t.Format(utcLayout))
		return
	}
	ve.SetProperty(prop, t.Format(localLayout), &ical.KeyValues{
		Key:   string(ical.ParameterTzid),
		Value: []string{t.Location().String()},
	})
}

// Encode serializes the calendar for events to w.
func Encode(w io.Writer, meta Meta, events []model.EventRecord, stamp time.Time) error {
	return Build(meta, events, stamp).SerializeTo(w)
}

// WriteFile writes the calendar to path atomically. The content is rendered
// in memory first; on any failure path is left untouched.
func WriteFile(path string, meta Meta, events []model.EventRecord, stamp time.Time) error {
	if path == "" {
		return errors.New("output path is empty")
	}

	var buf bytes.Buffer
	if err := Encode(&buf, meta, events, stamp); err != nil {
		return err
	}
	if err := fileutil.WriteAtomic(path, buf.Bytes(), 0o644); err != nil {
		return err
	}

	appLog.Info("calendar written", "path", path, "events", len(events), "bytes", buf.Len())
	return nil
}
