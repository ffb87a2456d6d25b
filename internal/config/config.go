package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"kmacal/internal/apperr"
	"kmacal/internal/fileutil"
	"kmacal/internal/ics"
	"kmacal/internal/model"
	"kmacal/internal/schedule"
	"kmacal/internal/timetable"
)

// ClockConfig is one period's wall-clock span, "HH:MM" each.
type ClockConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// CalendarConfig holds the calendar header written to the output file.
type CalendarConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	ProductID   string `yaml:"product_id"`
	// UIDDomain is appended to event UIDs after "@".
	UIDDomain string `yaml:"uid_domain"`
}

// MarkerConfig is one wording of the date-range marker, e.g. "Từ"/"đến".
type MarkerConfig struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// KindsConfig maps session categories to the codes used by the portal.
type KindsConfig struct {
	Lecture []string `yaml:"lecture"`
	Lab     []string `yaml:"lab"`
}

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA zone class times are expressed in.
	Timezone string `yaml:"timezone"`

	// TableID is the id attribute of the registration table.
	TableID string `yaml:"table_id"`

	// TotalMarker marks the summary row; rows whose name contains it are skipped.
	TotalMarker string `yaml:"total_marker"`

	// UnknownWeekday is what to do with an unrecognized weekday name:
	//   - "skip" (default): drop the slot silently
	//   - "warn": drop the slot and log a warning
	//   - "error": abort the conversion
	UnknownWeekday string `yaml:"unknown_weekday"`

	// Weekdays maps weekday names as they appear in the export to English
	// day names ("monday" .. "sunday").
	Weekdays map[string]string `yaml:"weekdays"`

	Kinds KindsConfig `yaml:"kinds"`

	// Markers lists the accepted "<from> DATE <to> DATE: (N)" wordings.
	Markers []MarkerConfig `yaml:"markers"`

	// Periods maps ordinal period numbers to clock spans.
	Periods map[int]ClockConfig `yaml:"periods"`

	// MaxOccurrences caps the events generated from a single slot.
	MaxOccurrences int `yaml:"max_occurrences"`

	Calendar CalendarConfig `yaml:"calendar"`
}

// Resolved is the validated, immutable form of Config.
type Resolved struct {
	Timetable timetable.Options
	Schedule  schedule.Settings
	Calendar  ics.Meta
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	weekdays := make(map[string]string)
	for name, wd := range schedule.DefaultWeekdays() {
		weekdays[name] = strings.ToLower(wd.String())
	}
	periods := make(map[int]ClockConfig)
	for n, r := range schedule.DefaultPeriods() {
		periods[n] = ClockConfig{Start: r.Start.String(), End: r.End.String()}
	}
	markers := make([]MarkerConfig, 0, len(timetable.DefaultMarkers))
	for _, m := range timetable.DefaultMarkers {
		markers = append(markers, MarkerConfig{From: m.From, To: m.To})
	}
	meta := ics.DefaultMeta()

	return &Config{
		Timezone:       schedule.DefaultTimezone,
		TableID:        timetable.DefaultTableID,
		TotalMarker:    timetable.DefaultTotalMarker,
		UnknownWeekday: string(schedule.WeekdaySkip),
		Weekdays:       weekdays,
		Kinds:          KindsConfig{Lecture: []string{"LT"}, Lab: []string{"TH"}},
		Markers:        markers,
		Periods:        periods,
		MaxOccurrences: schedule.DefaultMaxOccurrences,
		Calendar: CalendarConfig{
			Name:        meta.Name,
			Description: meta.Description,
			ProductID:   meta.ProductID,
			UIDDomain:   schedule.DefaultUIDDomain,
		},
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave correctly.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.TableID == "" {
		c.TableID = d.TableID
	}
	if c.TotalMarker == "" {
		c.TotalMarker = d.TotalMarker
	}
	if c.UnknownWeekday == "" {
		c.UnknownWeekday = d.UnknownWeekday
	}
	if len(c.Weekdays) == 0 {
		c.Weekdays = d.Weekdays
	}
	if len(c.Kinds.Lecture) == 0 && len(c.Kinds.Lab) == 0 {
		c.Kinds = d.Kinds
	}
	if len(c.Markers) == 0 {
		c.Markers = d.Markers
	}
	if len(c.Periods) == 0 {
		c.Periods = d.Periods
	}
	if c.MaxOccurrences <= 0 {
		c.MaxOccurrences = d.MaxOccurrences
	}
	if c.Calendar.Name == "" {
		c.Calendar.Name = d.Calendar.Name
	}
	if c.Calendar.Description == "" {
		c.Calendar.Description = d.Calendar.Description
	}
	if c.Calendar.ProductID == "" {
		c.Calendar.ProductID = d.Calendar.ProductID
	}
	if c.Calendar.UIDDomain == "" {
		c.Calendar.UIDDomain = d.Calendar.UIDDomain
	}
}

// Resolve validates c and converts it into the settings the pipeline takes.
// Every failure is a CONFIG_ERROR.
func (c *Config) Resolve() (*Resolved, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeConfig, fmt.Sprintf("invalid timezone %q", c.Timezone))
	}

	weekdays := make(map[string]time.Weekday, len(c.Weekdays))
	for name, day := range c.Weekdays {
		wd, err := parseWeekday(day)
		if err != nil {
			return nil, err
		}
		weekdays[name] = wd
	}

	kinds := make(map[string]model.Kind)
	for _, code := range c.Kinds.Lecture {
		kinds[code] = model.KindLecture
	}
	for _, code := range c.Kinds.Lab {
		if _, dup := kinds[code]; dup {
			return nil, apperr.Configf("kind code %q is both lecture and lab", code)
		}
		kinds[code] = model.KindLab
	}

	markers := make([]timetable.Marker, 0, len(c.Markers))
	for _, m := range c.Markers {
		markers = append(markers, timetable.Marker{From: m.From, To: m.To})
	}

	periods := make(schedule.PeriodTable, len(c.Periods))
	for n, cc := range c.Periods {
		start, err := model.ParseClock(cc.Start)
		if err != nil {
			return nil, apperr.Wrap(err, apperr.CodeConfig, fmt.Sprintf("period %d: invalid start %q", n, cc.Start))
		}
		end, err := model.ParseClock(cc.End)
		if err != nil {
			return nil, apperr.Wrap(err, apperr.CodeConfig, fmt.Sprintf("period %d: invalid end %q", n, cc.End))
		}
		periods[n] = model.ClockRange{Start: start, End: end}
	}

	settings := schedule.Settings{
		Location:       loc,
		Periods:        periods,
		Weekdays:       weekdays,
		UnknownWeekday: schedule.WeekdayPolicy(strings.ToLower(c.UnknownWeekday)),
		UIDDomain:      c.Calendar.UIDDomain,
		MaxOccurrences: c.MaxOccurrences,
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return &Resolved{
		Timetable: timetable.Options{
			TableID:     c.TableID,
			TotalMarker: c.TotalMarker,
			Kinds:       kinds,
			Markers:     markers,
		},
		Schedule: settings,
		Calendar: ics.Meta{
			ProductID:   c.Calendar.ProductID,
			Name:        c.Calendar.Name,
			Description: c.Calendar.Description,
			Timezone:    c.Timezone,
		},
	}, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.EqualFold(strings.TrimSpace(s), wd.String()) {
			return wd, nil
		}
	}
	return 0, apperr.Configf("unknown day name %q", s)
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - empty path: return the defaults
//   - file does not exist: write a default config there and return it
//   - file exists: read YAML, normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeConfig, "cannot parse config "+path)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save normalizes cfg and writes it to path as YAML, atomically, creating
// the parent directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return fileutil.WriteAtomic(path, data, 0o644)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
