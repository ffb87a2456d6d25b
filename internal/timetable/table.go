package timetable

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"kmacal/internal/apperr"
	appLog "kmacal/internal/log"
	"kmacal/internal/model"
)

const (
	DefaultTableID     = "gridRegistered"
	DefaultTotalMarker = "Tổng"
)

// Column positions in the registration table.
const (
	colName  = 1
	colCode  = 2
	colTime  = 3
	colRoom  = 4
	colTutor = 5

	minCells = 4
)

// Options selects the table and the grammar used to read it.
type Options struct {
	TableID     string
	TotalMarker string
	Kinds       map[string]model.Kind
	Markers     []Marker
}

// DefaultOptions returns the portal's layout.
func DefaultOptions() Options {
	return Options{
		TableID:     DefaultTableID,
		TotalMarker: DefaultTotalMarker,
		Kinds:       DefaultKinds,
		Markers:     DefaultMarkers,
	}
}

// Extractor turns the registration page into course records.
type Extractor struct {
	opts   Options
	parser *Parser
}

// NewExtractor validates opts and builds an Extractor.
func NewExtractor(opts Options) (*Extractor, error) {
	if opts.TableID == "" {
		return nil, apperr.Configf("table id is empty")
	}
	p, err := NewParser(opts.Kinds, opts.Markers)
	if err != nil {
		return nil, err
	}
	return &Extractor{opts: opts, parser: p}, nil
}

// Extract reads an HTML document and returns one record per data row,
// in row order.
func (e *Extractor) Extract(r io.Reader) ([]model.CourseRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeStructure, "cannot parse HTML document")
	}

	table := doc.Find("table").FilterFunction(func(_ int, s *goquery.Selection) bool {
		id, _ := s.Attr("id")
		return id == e.opts.TableID
	}).First()
	if table.Length() == 0 {
		return nil, apperr.Structuref("schedule table %q not found in document", e.opts.TableID)
	}

	courses := make([]model.CourseRecord, 0)
	var rowErr error

	e.rows(table).EachWithBreak(func(i int, tr *goquery.Selection) bool {
		if i == 0 {
			return true // header
		}
		course, ok, err := e.row(tr)
		if err != nil {
			rowErr = fmt.Errorf("row %d: %w", i, err)
			return false
		}
		if ok {
			courses = append(courses, course)
		}
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	appLog.Debug("timetable extracted", "table", e.opts.TableID, "courses", len(courses))
	return courses, nil
}

// rows returns the table's own rows, leaving out rows of nested tables.
func (e *Extractor) rows(table *goquery.Selection) *goquery.Selection {
	return table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.ParentsFiltered("table").First().IsSelection(table)
	})
}

func (e *Extractor) row(tr *goquery.Selection) (model.CourseRecord, bool, error) {
	cells := tr.ChildrenFiltered("td")
	if cells.Length() < minCells {
		appLog.Debug("timetable row skipped", "reason", "too few cells", "cells", cells.Length())
		return model.CourseRecord{}, false, nil
	}

	name := cellText(cells, colName)
	if e.opts.TotalMarker != "" && strings.Contains(name, e.opts.TotalMarker) {
		return model.CourseRecord{}, false, nil
	}

	course := model.CourseRecord{
		Name:       name,
		Code:       cellText(cells, colCode),
		Location:   cellText(cells, colRoom),
		Instructor: cellText(cells, colTutor),
	}

	periods, err := e.parser.Periods(cellText(cells, colTime))
	if err != nil {
		return model.CourseRecord{}, false, fmt.Errorf("course %s: %w", course.Code, err)
	}
	course.Periods = periods
	return course, true, nil
}

// cellText returns the normalized text of cell i, or "" when the row is
// shorter than that.
func cellText(cells *goquery.Selection, i int) string {
	if i >= cells.Length() {
		return ""
	}
	return Normalize(nodeText(cells.Eq(i).Nodes))
}

// separators are elements whose boundaries read as whitespace.
var separators = map[string]bool{
	"br": true, "p": true, "div": true, "li": true,
	"tr": true, "td": true, "th": true, "table": true,
}

// nodeText concatenates text content like goquery's Text, but keeps
// line breaks and cell boundaries as spaces.
func nodeText(nodes []*html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.CommentNode:
			return
		}
		sep := n.Type == html.ElementNode && separators[n.Data]
		if sep {
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if sep {
			b.WriteByte(' ')
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return b.String()
}
