package timetable

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"kmacal/internal/apperr"
	"kmacal/internal/model"
)

const dateLayout = "02/01/2006"

// Marker is one wording of the date-range marker "<From> DATE <To> DATE: (N)".
type Marker struct {
	From string
	To   string
}

// DefaultMarkers accepts the portal's Vietnamese wording and its English one.
var DefaultMarkers = []Marker{
	{From: "Từ", To: "đến"},
	{From: "From", To: "to"},
}

// DefaultKinds maps the portal's session codes to kinds.
var DefaultKinds = map[string]model.Kind{
	"LT": model.KindLecture,
	"TH": model.KindLab,
}

// Block is one date-range marker and the text it governs.
type Block struct {
	Group     int
	StartDate time.Time
	EndDate   time.Time
	Span      string
}

// Parser reads the time-description micro-grammar:
//
//	schedule := block*
//	block    := FROM DATE TO DATE ":" "(" N ")" slot*
//	slot     := WEEKDAY "tiết" LIST "(" KIND ")"
//
// Text between recognized tokens is ignored.
//
// FROM and TO are the keywords of one of the configured markers.
type Parser struct {
	marker *regexp.Regexp
	slot   *regexp.Regexp
	kinds  map[string]model.Kind
}

// NewParser builds a Parser accepting the given kind codes and marker
// wordings.
func NewParser(kinds map[string]model.Kind, markers []Marker) (*Parser, error) {
	marker, err := markerPattern(markers)
	if err != nil {
		return nil, err
	}
	if len(kinds) == 0 {
		return nil, apperr.Configf("no session kind codes configured")
	}
	codes := make([]string, 0, len(kinds))
	for code := range kinds {
		if strings.TrimSpace(code) == "" {
			return nil, apperr.Configf("empty session kind code")
		}
		codes = append(codes, regexp.QuoteMeta(code))
	}
	// Longest first so that one code being a prefix of another is harmless.
	sort.Slice(codes, func(i, j int) bool {
		if len(codes[i]) != len(codes[j]) {
			return len(codes[i]) > len(codes[j])
		}
		return codes[i] < codes[j]
	})

	slot, err := regexp.Compile(`(Thứ \S+|Chủ nhật) tiết ([\d,]+) \((` + strings.Join(codes, "|") + `)\)`)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeConfig, "invalid session kind codes")
	}
	return &Parser{marker: marker, slot: slot, kinds: kinds}, nil
}

// markerPattern joins one alternative per marker wording. Alternative i
// captures its dates in groups 2i+1 and 2i+2; the ordinal is the last group.
// Dates are captured loosely and validated afterwards so a malformed date is
// reported instead of skipped.
func markerPattern(markers []Marker) (*regexp.Regexp, error) {
	if len(markers) == 0 {
		return nil, apperr.Configf("no date range markers configured")
	}
	alts := make([]string, 0, len(markers))
	for _, m := range markers {
		from, to := strings.TrimSpace(m.From), strings.TrimSpace(m.To)
		if from == "" || to == "" {
			return nil, apperr.Configf("date range marker %q/%q has an empty keyword", m.From, m.To)
		}
		alts = append(alts, regexp.QuoteMeta(from)+` ([^\s:]+) `+regexp.QuoteMeta(to)+` ([^\s:]+)`)
	}
	re, err := regexp.Compile(`(?:` + strings.Join(alts, "|") + `): \((\d+)\)`)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeConfig, "invalid date range markers")
	}
	return re, nil
}

// markerDates returns the two date texts of whichever alternative matched.
func markerDates(text string, loc []int) (string, string) {
	for k := 2; k+3 < len(loc)-2; k += 4 {
		if loc[k] >= 0 {
			return text[loc[k]:loc[k+1]], text[loc[k+2]:loc[k+3]]
		}
	}
	return "", ""
}

// Periods parses a normalized time description into period records.
func (p *Parser) Periods(text string) ([]model.PeriodRecord, error) {
	blocks, err := p.Blocks(text)
	if err != nil {
		return nil, err
	}
	out := make([]model.PeriodRecord, 0, len(blocks))
	for _, b := range blocks {
		slots, err := p.Slots(b.Span)
		if err != nil {
			return nil, err
		}
		out = append(out, model.PeriodRecord{
			Group:     b.Group,
			StartDate: b.StartDate,
			EndDate:   b.EndDate,
			Slots:     slots,
		})
	}
	return out, nil
}

// Blocks finds every date-range marker in source order. Each block's span
// runs to the next marker, whatever its ordinal, or to the end of text.
func (p *Parser) Blocks(text string) ([]Block, error) {
	locs := p.marker.FindAllStringSubmatchIndex(text, -1)
	blocks := make([]Block, 0, len(locs))

	for i, loc := range locs {
		from, to := markerDates(text, loc)
		start, err := parseDate(from)
		if err != nil {
			return nil, err
		}
		end, err := parseDate(to)
		if err != nil {
			return nil, err
		}
		if end.Before(start) {
			return nil, apperr.Parsef("date range %s..%s ends before it starts", from, to)
		}
		n := len(loc)
		group, err := strconv.Atoi(text[loc[n-2]:loc[n-1]])
		if err != nil {
			return nil, apperr.Wrap(err, apperr.CodeParse, "invalid period group ordinal")
		}

		spanEnd := len(text)
		if i+1 < len(locs) {
			spanEnd = locs[i+1][0]
		}
		blocks = append(blocks, Block{
			Group:     group,
			StartDate: start,
			EndDate:   end,
			Span:      text[loc[1]:spanEnd],
		})
	}
	return blocks, nil
}

// Slots tokenizes one block span. Weekday names are kept verbatim.
func (p *Parser) Slots(span string) ([]model.SlotRecord, error) {
	matches := p.slot.FindAllStringSubmatch(span, -1)
	slots := make([]model.SlotRecord, 0, len(matches))

	for _, m := range matches {
		periods, err := parsePeriodList(m[2])
		if err != nil {
			return nil, err
		}
		slots = append(slots, model.SlotRecord{
			Weekday:  m[1],
			Periods:  periods,
			Kind:     p.kinds[m[3]],
			KindCode: m[3],
		})
	}
	return slots, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, apperr.Wrap(err, apperr.CodeParse, "malformed date "+strconv.Quote(s))
	}
	return t, nil
}

func parsePeriodList(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, apperr.Wrap(err, apperr.CodeParse, "malformed period list "+strconv.Quote(s))
		}
		out = append(out, n)
	}
	return out, nil
}
