package schedule

import (
	"time"
	// Embedded zone database so the default zone resolves on minimal hosts.
	_ "time/tzdata"

	"kmacal/internal/apperr"
)

const (
	DefaultTimezone       = "Asia/Ho_Chi_Minh"
	DefaultUIDDomain      = "kma.schedule"
	DefaultMaxOccurrences = 5000
)

// WeekdayPolicy decides what happens to a slot whose weekday name is not
// in the configured table.
type WeekdayPolicy string

const (
	WeekdaySkip  WeekdayPolicy = "skip"
	WeekdayWarn  WeekdayPolicy = "warn"
	WeekdayError WeekdayPolicy = "error"
)

// Settings is the immutable configuration injected into the pipeline.
type Settings struct {
	// Location is the civil zone every occurrence is localized in.
	Location *time.Location
	Periods  PeriodTable
	// Weekdays maps source weekday names to days.
	Weekdays       map[string]time.Weekday
	UnknownWeekday WeekdayPolicy
	// UIDDomain is the right-hand side of generated event UIDs.
	UIDDomain string
	// MaxOccurrences caps the expansion of a single slot.
	MaxOccurrences int
}

// DefaultWeekdays returns the Vietnamese weekday names used by the portal.
func DefaultWeekdays() map[string]time.Weekday {
	return map[string]time.Weekday{
		"Thứ 2":    time.Monday,
		"Thứ 3":    time.Tuesday,
		"Thứ 4":    time.Wednesday,
		"Thứ 5":    time.Thursday,
		"Thứ 6":    time.Friday,
		"Thứ 7":    time.Saturday,
		"Chủ nhật": time.Sunday,
	}
}

// DefaultSettings returns the settings for the KMA portal.
func DefaultSettings() (Settings, error) {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return Settings{}, apperr.Wrap(err, apperr.CodeConfig, "cannot load default timezone")
	}
	return Settings{
		Location:       loc,
		Periods:        DefaultPeriods(),
		Weekdays:       DefaultWeekdays(),
		UnknownWeekday: WeekdaySkip,
		UIDDomain:      DefaultUIDDomain,
		MaxOccurrences: DefaultMaxOccurrences,
	}, nil
}

// Validate reports the first inconsistency in s.
func (s Settings) Validate() error {
	if s.Location == nil {
		return apperr.Configf("timezone is not set")
	}
	if len(s.Weekdays) == 0 {
		return apperr.Configf("no weekday names configured")
	}
	switch s.UnknownWeekday {
	case WeekdaySkip, WeekdayWarn, WeekdayError:
	default:
		return apperr.Configf("unknown weekday policy %q", s.UnknownWeekday)
	}
	if s.UIDDomain == "" {
		return apperr.Configf("uid domain is empty")
	}
	return s.Periods.Validate()
}
