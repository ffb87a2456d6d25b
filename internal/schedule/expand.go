package schedule

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	"kmacal/internal/apperr"
	appLog "kmacal/internal/log"
	"kmacal/internal/model"
)

var rruleWeekdays = [...]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// Expander turns a weekly slot into dated occurrences.
type Expander struct {
	settings Settings
}

func NewExpander(s Settings) *Expander {
	if s.MaxOccurrences <= 0 {
		s.MaxOccurrences = DefaultMaxOccurrences
	}
	return &Expander{settings: s}
}

// Expand returns every occurrence of slot inside period, in date order.
//
// The first occurrence is the first date on or after StartDate falling on the
// slot's weekday; later ones follow every 7 days through EndDate inclusive.
// Each occurrence spans the start of the lowest period to the end of the
// highest. Instants are built per occurrence from the civil date and clock
// in the configured zone, so offset changes inside a term are honoured.
func (e *Expander) Expand(slot model.SlotRecord, period model.PeriodRecord) ([]model.Occurrence, error) {
	wd, ok := e.settings.Weekdays[slot.Weekday]
	if !ok {
		return nil, e.unknownWeekday(slot, period)
	}

	span, err := e.settings.Periods.Span(slot.Periods)
	if err != nil {
		return nil, err
	}

	loc := e.settings.Location
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{rruleWeekdays[wd]},
		Dtstart:   span.Start.On(period.StartDate, loc),
		Until:     span.Start.On(period.EndDate, loc),
	})
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeConfig, "cannot build weekly recurrence")
	}

	out := make([]model.Occurrence, 0)
	next := r.Iterator()
	for {
		t, ok := next()
		if !ok {
			break
		}
		if len(out) >= e.settings.MaxOccurrences {
			appLog.Error("expand: truncated occurrences due to cap",
				errors.New("max occurrences reached"),
				"weekday", slot.Weekday,
				"start", period.StartDate.Format(time.DateOnly),
				"end", period.EndDate.Format(time.DateOnly),
				"cap", e.settings.MaxOccurrences,
			)
			break
		}
		out = append(out, makeOccurrence(t, span, loc))
	}
	return out, nil
}

func (e *Expander) unknownWeekday(slot model.SlotRecord, period model.PeriodRecord) error {
	kv := []any{"weekday", slot.Weekday, "group", period.Group, "periods", slot.Periods}
	switch e.settings.UnknownWeekday {
	case WeekdayError:
		return apperr.Parsef("unrecognized weekday %q", slot.Weekday)
	case WeekdayWarn:
		appLog.Warn("expand: unrecognized weekday, slot dropped", kv...)
	default:
		appLog.Debug("expand: unrecognized weekday, slot dropped", kv...)
	}
	return nil
}

// makeOccurrence re-localizes the recurrence date with the slot's clocks.
func makeOccurrence(t time.Time, span model.ClockRange, loc *time.Location) model.Occurrence {
	date := model.Date(t.Year(), t.Month(), t.Day())
	return model.Occurrence{
		Date:       date,
		Start:      span.Start.On(date, loc),
		End:        span.End.On(date, loc),
		StartClock: span.Start,
	}
}
