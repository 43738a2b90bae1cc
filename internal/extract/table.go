// Package extract converts rendered disclosure HTML into tabular rows.
package extract

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fsbdata/disclosure-crawler/internal/scrape"
)

// Sentinel parse failures. Both surface as scrape.ParseError so the retry
// coordinator treats them as possibly-transient render glitches.
var (
	ErrNoTable = errors.New("no table element in document")
	ErrNoRows  = errors.New("table has no usable rows")
)

// TableExtractor parses disclosure tables into ordered field/value pairs.
// Extraction is pure: identical HTML always yields identical rows.
type TableExtractor struct{}

// NewTableExtractor constructs a TableExtractor.
func NewTableExtractor() *TableExtractor {
	return &TableExtractor{}
}

// Extract locates every table in the category's HTML and flattens the cells
// into field/value rows. Cells are read pairwise across each table row, so
// the common two-column and four-column disclosure layouts both work. A
// field whose value cell is missing gets an empty value rather than a guess.
func (e *TableExtractor) Extract(category, html string) ([]scrape.Row, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &scrape.ParseError{Category: category, Err: err}
	}

	tables := doc.Find("table")
	if tables.Length() == 0 {
		return nil, &scrape.ParseError{Category: category, Err: ErrNoTable}
	}

	var rows []scrape.Row
	tables.Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			rows = append(rows, pairCells(cellTexts(tr))...)
		})
	})

	if len(rows) == 0 {
		return nil, &scrape.ParseError{Category: category, Err: ErrNoRows}
	}
	return rows, nil
}

func cellTexts(tr *goquery.Selection) []string {
	var cells []string
	tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, cleanText(cell.Text()))
	})
	return cells
}

// pairCells walks cells two at a time: (field, value), (field, value), ...
// Header-only rows (every cell a label, single cell rows) produce nothing.
func pairCells(cells []string) []scrape.Row {
	if len(cells) < 2 {
		return nil
	}
	var rows []scrape.Row
	for i := 0; i < len(cells); i += 2 {
		field := cells[i]
		if field == "" {
			continue
		}
		value := ""
		if i+1 < len(cells) {
			value = cells[i+1]
		}
		rows = append(rows, scrape.Row{Field: field, Value: value})
	}
	return rows
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
