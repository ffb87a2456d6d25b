package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"
	// Zone data for TZID lookups while parsing.
	_ "time/tzdata"

	ical "github.com/arran4/golang-ical"

	appLog "kmacal/internal/log"
)

// ParsedEvent is a VEVENT read back from a calendar file.
type ParsedEvent struct {
	UID string

	Summary     string
	Description string
	Location    string

	Start   time.Time
	End     time.Time
	StartTZ string
	EndTZ   string
}

// Header is the calendar-level metadata of a parsed file.
type Header struct {
	ProductID string
	Method    string
	Name      string
	Timezone  string
}

// ParseICS parses a calendar payload. Events without a UID are logged and
// skipped; a payload that is not a calendar is an error.
//
// DTSTART/DTEND zones come from the library's TZID handling.
func ParseICS(body []byte) (Header, []ParsedEvent, error) {
	if len(body) == 0 {
		return Header{}, nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err)
		return Header{}, nil, err
	}

	var h Header
	for _, p := range cal.CalendarProperties {
		switch p.IANAToken {
		case string(ical.PropertyProductId):
			h.ProductID = p.Value
		case string(ical.PropertyMethod):
			h.Method = p.Value
		case string(ical.PropertyXWRCalName):
			h.Name = p.Value
		case string(ical.PropertyXWRTimezone):
			h.Timezone = p.Value
		}
	}

	events := make([]ParsedEvent, 0)
	for _, comp := range cal.Events() {
		ev, perr := parseVEvent(comp)
		if perr != nil {
			// Log and skip this event, but keep parsing others.
			appLog.Error("ics vevent parse failed", perr)
			continue
		}
		events = append(events, ev)
	}

	appLog.Debug("ics parse completed", "event_count", len(events))
	return h, events, nil
}

func parseVEvent(ve *ical.VEvent) (ParsedEvent, error) {
	var out ParsedEvent

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = unescapeText(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = unescapeText(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = unescapeText(p.Value)
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, err
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return out, err
	}
	out.Start = start
	out.End = end

	out.StartTZ = tzid(ve.GetProperty(ical.ComponentPropertyDtStart))
	out.EndTZ = tzid(ve.GetProperty(ical.ComponentPropertyDtEnd))
	return out, nil
}

func tzid(p *ical.IANAProperty) string {
	if p == nil || p.ICalParameters == nil {
		return ""
	}
	if tzs, ok := p.ICalParameters[string(ical.ParameterTzid)]; ok && len(tzs) > 0 {
		return tzs[0]
	}
	return ""
}

var textUnescaper = strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)

// unescapeText undoes RFC 5545 TEXT escaping left in property values.
func unescapeText(s string) string {
	return textUnescaper.Replace(s)
}
