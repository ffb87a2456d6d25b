package ics

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kmacal/internal/model"
)

var stamp = time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)

func sampleEvents(t *testing.T) []model.EventRecord {
	t.Helper()
	vn, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	require.NoError(t, err)

	return []model.EventRecord{
		{
			UID:         "X1-2024-09-09-07:00@kma.schedule",
			Summary:     "Intro",
			Start:       time.Date(2024, 9, 9, 7, 0, 0, 0, vn),
			End:         time.Date(2024, 9, 9, 9, 25, 0, 0, vn),
			Location:    "Room A",
			Description: "Course: X1\nType: LT\nInstructor: Dr. Y\nPeriods: 1, 2, 3",
		},
		{
			UID:         "X1-2024-09-16-07:00@kma.schedule",
			Summary:     "Intro",
			Start:       time.Date(2024, 9, 16, 7, 0, 0, 0, vn),
			End:         time.Date(2024, 9, 16, 9, 25, 0, 0, vn),
			Location:    "Room A",
			Description: "Course: X1\nType: LT\nInstructor: Dr. Y\nPeriods: 1, 2, 3",
		},
		{
			UID:         "AT-CS-2-2024-09-11-15:35@kma.schedule",
			Summary:     "Networks",
			Start:       time.Date(2024, 9, 11, 15, 35, 0, 0, vn),
			End:         time.Date(2024, 9, 11, 17, 10, 0, 0, vn),
			Description: "Course: AT-CS-2\nType: TH\nInstructor: \nPeriods: 10, 11",
		},
	}
}

func TestEncodeHeaderAndEvents(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, DefaultMeta(), sampleEvents(t), stamp))
	out := buf.String()

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//KMA Schedule Parser//mxm.dk//",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"X-WR-CALNAME:KMA Schedule",
		"X-WR-CALDESC:Schedule for KMA student",
		"X-WR-TIMEZONE:Asia/Ho_Chi_Minh",
		"UID:X1-2024-09-09-07:00@kma.schedule",
		"DTSTAMP:20240801T000000Z",
		"SUMMARY:Intro",
		"LOCATION:Room A",
	} {
		assert.Contains(t, out, want)
	}
	assert.Regexp(t, regexp.MustCompile(`DTSTART;TZID="?Asia/Ho_Chi_Minh"?:20240909T070000`), out)
	assert.Regexp(t, regexp.MustCompile(`DTEND;TZID="?Asia/Ho_Chi_Minh"?:20240909T092500`), out)
	assert.Equal(t, 3, bytes.Count(buf.Bytes(), []byte("BEGIN:VEVENT")))
}

func TestEncodeUTCTimes(t *testing.T) {
	ev := sampleEvents(t)[0]
	ev.Start = ev.Start.UTC()
	ev.End = ev.End.UTC()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, DefaultMeta(), []model.EventRecord{ev}, stamp))
	assert.Contains(t, buf.String(), "DTSTART:20240909T000000Z")
}

func TestEncodeIsDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, Encode(&a, DefaultMeta(), sampleEvents(t), stamp))
	require.NoError(t, Encode(&b, DefaultMeta(), sampleEvents(t), stamp))
	assert.Equal(t, a.String(), b.String())
}

func TestWriteFileAndParseBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.ics")
	require.NoError(t, WriteFile(path, DefaultMeta(), sampleEvents(t), stamp))

	body, err := os.ReadFile(path)
	require.NoError(t, err)

	header, events, err := ParseICS(body)
	require.NoError(t, err)
	assert.Equal(t, "KMA Schedule", header.Name)
	assert.Equal(t, "PUBLISH", header.Method)
	assert.Equal(t, "Asia/Ho_Chi_Minh", header.Timezone)
	require.Len(t, events, 3)

	first := events[0]
	assert.Equal(t, "X1-2024-09-09-07:00@kma.schedule", first.UID)
	assert.Equal(t, "Intro", first.Summary)
	assert.Equal(t, "Room A", first.Location)
	assert.Equal(t, "Asia/Ho_Chi_Minh", first.StartTZ)
	assert.Equal(t, "Asia/Ho_Chi_Minh", first.EndTZ)
	assert.Equal(t, "2024-09-09 07:00", first.Start.Format("2006-01-02 15:04"))
	assert.Equal(t, "2024-09-09 09:25", first.End.Format("2006-01-02 15:04"))
	assert.Contains(t, first.Description, "Periods: 1, 2, 3")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestWriteFileMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "schedule.ics")
	err := WriteFile(path, DefaultMeta(), sampleEvents(t), stamp)
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestParseICSEmpty(t *testing.T) {
	_, _, err := ParseICS(nil)
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	events := []ParsedEvent{
		{UID: "X1-2024-09-16-07:00@kma.schedule", Summary: "Intro", Description: "Course: X1\nType: LT",
			Start: time.Date(2024, 9, 16, 7, 0, 0, 0, time.UTC)},
		{UID: "X1-2024-09-09-07:00@kma.schedule", Summary: "Intro", Description: "Course: X1\nType: LT",
			Start: time.Date(2024, 9, 9, 7, 0, 0, 0, time.UTC)},
		{UID: "AT-CS-2-2024-09-11-15:35@kma.schedule", Summary: "Networks",
			Start: time.Date(2024, 9, 11, 15, 35, 0, 0, time.UTC)},
	}

	got := Summarize(events)
	require.Len(t, got, 2)
	assert.Equal(t, "X1", got[0].Code)
	assert.Equal(t, 2, got[0].Events)
	assert.Equal(t, 9, got[0].First.Day())
	assert.Equal(t, 16, got[0].Last.Day())
	assert.Equal(t, "AT-CS-2", got[1].Code)

	SortByFirst(got)
	assert.Equal(t, "X1", got[0].Code)
}
