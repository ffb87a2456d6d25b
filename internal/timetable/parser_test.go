package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kmacal/internal/apperr"
	"kmacal/internal/model"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser(DefaultKinds, DefaultMarkers)
	require.NoError(t, err)
	return p
}

func TestNormalize(t *testing.T) {
	in := "  Từ 05/09/2024\tđến 26/12/2024:\n\r (1)  Thứ 2  "
	assert.Equal(t, "Từ 05/09/2024 đến 26/12/2024: (1) Thứ 2", Normalize(in))
	assert.Equal(t, "", Normalize(" \n\t"))
}

func TestPeriodsSingleBlock(t *testing.T) {
	p := newTestParser(t)

	periods, err := p.Periods("Từ 05/09/2024 đến 26/12/2024: (1) Thứ 2 tiết 1,2,3 (LT) Thứ 5 tiết 7,8 (TH)")
	require.NoError(t, err)
	require.Len(t, periods, 1)

	got := periods[0]
	assert.Equal(t, 1, got.Group)
	assert.Equal(t, model.Date(2024, 9, 5), got.StartDate)
	assert.Equal(t, model.Date(2024, 12, 26), got.EndDate)
	assert.Equal(t, []model.SlotRecord{
		{Weekday: "Thứ 2", Periods: []int{1, 2, 3}, Kind: model.KindLecture, KindCode: "LT"},
		{Weekday: "Thứ 5", Periods: []int{7, 8}, Kind: model.KindLab, KindCode: "TH"},
	}, got.Slots)
}

func TestPeriodsEnglishMarker(t *testing.T) {
	p := newTestParser(t)

	periods, err := p.Periods("From 05/09/2024 to 26/12/2024: (1) Thứ 2 tiết 1,2,3 (LT)")
	require.NoError(t, err)
	require.Len(t, periods, 1)

	got := periods[0]
	assert.Equal(t, 1, got.Group)
	assert.Equal(t, model.Date(2024, 9, 5), got.StartDate)
	assert.Equal(t, model.Date(2024, 12, 26), got.EndDate)
	assert.Equal(t, []model.SlotRecord{
		{Weekday: "Thứ 2", Periods: []int{1, 2, 3}, Kind: model.KindLecture, KindCode: "LT"},
	}, got.Slots)
}

func TestBlocksMixedMarkerWordings(t *testing.T) {
	p := newTestParser(t)

	blocks, err := p.Blocks("Từ 02/09/2024 đến 15/09/2024: (1) Thứ 3 tiết 4 (LT) " +
		"From 16/09/2024 to 30/09/2024: (2) Thứ 4 tiết 9 (TH)")
	require.NoError(t, err)
	require.Len(t, blocks, 2)

	assert.Equal(t, model.Date(2024, 9, 2), blocks[0].StartDate)
	assert.Equal(t, " Thứ 3 tiết 4 (LT) ", blocks[0].Span)
	assert.Equal(t, 2, blocks[1].Group)
	assert.Equal(t, model.Date(2024, 9, 16), blocks[1].StartDate)
	assert.Equal(t, model.Date(2024, 9, 30), blocks[1].EndDate)
}

func TestNewParserCustomMarkers(t *testing.T) {
	p, err := NewParser(DefaultKinds, []Marker{{From: "Du (", To: ") au"}})
	require.NoError(t, err)

	blocks, err := p.Blocks("Du ( 05/09/2024 ) au 26/12/2024: (4) Thứ 2 tiết 1 (LT) " +
		"From 05/09/2024 to 26/12/2024: (1)")
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, 4, blocks[0].Group)
}

func TestNewParserRejectsEmptyMarkers(t *testing.T) {
	_, err := NewParser(DefaultKinds, nil)
	assert.ErrorIs(t, err, apperr.ErrConfig)

	_, err = NewParser(DefaultKinds, []Marker{{From: "Từ", To: " "}})
	assert.ErrorIs(t, err, apperr.ErrConfig)
}

func TestBlocksAreBoundedByNextMarkerOfAnyOrdinal(t *testing.T) {
	p := newTestParser(t)

	text := "Từ 02/09/2024 đến 15/09/2024: (3) Thứ 3 tiết 4,5 (LT) " +
		"Từ 16/09/2024 đến 30/09/2024: (1) Thứ 4 tiết 9 (TH) " +
		"Từ 01/10/2024 đến 31/10/2024: (7) Chủ nhật tiết 1 (LT)"

	blocks, err := p.Blocks(text)
	require.NoError(t, err)
	require.Len(t, blocks, 3)

	assert.Equal(t, []int{3, 1, 7}, []int{blocks[0].Group, blocks[1].Group, blocks[2].Group})
	assert.Equal(t, " Thứ 3 tiết 4,5 (LT) ", blocks[0].Span)
	assert.Equal(t, " Thứ 4 tiết 9 (TH) ", blocks[1].Span)
	assert.Equal(t, " Chủ nhật tiết 1 (LT)", blocks[2].Span)

	periods, err := p.Periods(text)
	require.NoError(t, err)
	require.Len(t, periods, 3)
	assert.Equal(t, "Chủ nhật", periods[2].Slots[0].Weekday)
}

func TestBlocksNoMarkers(t *testing.T) {
	p := newTestParser(t)

	periods, err := p.Periods("Lớp đã hủy")
	require.NoError(t, err)
	assert.Empty(t, periods)
}

func TestBlocksMalformedDate(t *testing.T) {
	p := newTestParser(t)

	_, err := p.Periods("Từ 32/13/2024 đến 26/12/2024: (1) Thứ 2 tiết 1 (LT)")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrParse)
	assert.Contains(t, err.Error(), "32/13/2024")
}

func TestBlocksReversedRange(t *testing.T) {
	p := newTestParser(t)

	_, err := p.Blocks("Từ 26/12/2024 đến 05/09/2024: (1)")
	assert.ErrorIs(t, err, apperr.ErrParse)
}

func TestSlotsKeepUnknownWeekdayLiterally(t *testing.T) {
	p := newTestParser(t)

	slots, err := p.Slots(" Thứ 9 tiết 1,2 (LT) Thư 2 tiết 3 (LT)")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "Thứ 9", slots[0].Weekday)
}

func TestSlotsMalformedPeriodList(t *testing.T) {
	p := newTestParser(t)

	for _, span := range []string{
		"Thứ 2 tiết 1,,2 (LT)",
		"Thứ 2 tiết 1,2, (LT)",
		"Thứ 2 tiết 99999999999999999999 (LT)",
	} {
		_, err := p.Slots(span)
		assert.ErrorIs(t, err, apperr.ErrParse, span)
	}
}

func TestSlotsIgnoreUnknownKind(t *testing.T) {
	p := newTestParser(t)

	slots, err := p.Slots("Thứ 2 tiết 1 (XX) Thứ 3 tiết 2 (TH)")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "TH", slots[0].KindCode)
}

func TestSlotsEmptySpan(t *testing.T) {
	p := newTestParser(t)

	slots, err := p.Slots("")
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestNewParserCustomKinds(t *testing.T) {
	p, err := NewParser(map[string]model.Kind{"L": model.KindLecture, "LAB": model.KindLab}, DefaultMarkers)
	require.NoError(t, err)

	slots, err := p.Slots("Thứ 2 tiết 1 (LAB) Thứ 3 tiết 2 (L)")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, model.KindLab, slots[0].Kind)
	assert.Equal(t, model.KindLecture, slots[1].Kind)
}

func TestNewParserRejectsEmptyKinds(t *testing.T) {
	_, err := NewParser(nil, DefaultMarkers)
	assert.ErrorIs(t, err, apperr.ErrConfig)

	_, err = NewParser(map[string]model.Kind{" ": model.KindLab}, DefaultMarkers)
	assert.ErrorIs(t, err, apperr.ErrConfig)
}
