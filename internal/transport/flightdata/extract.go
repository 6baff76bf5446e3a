package flightdata

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/skytagbot/skytag/internal/domain"
)

// ExtractFlights scans the rendered table HTML top to bottom and returns the
// first row whose status contains "Landed" and the first whose status
// contains "Estimated". Scanning stops as soon as both are found. Rows with
// fewer than schema.MinFields cells are skipped silently; the header row is
// always skipped. Either or both results may be nil; an exhausted table is
// a valid outcome, not an error. The returned records carry no observation
// time; the caller stamps them.
func ExtractFlights(tableHTML string, schema Schema) (recent, next *domain.FlightRecord, err error) {
	root, err := html.Parse(strings.NewReader(tableHTML))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: parse table: %w", domain.ErrExtractionFailure, err)
	}

	rows := collectRows(root)
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: no table rows", domain.ErrExtractionFailure)
	}

	// rows[0] is the header.
	for _, row := range rows[1:] {
		cells := cellTexts(row)
		if len(cells) < schema.MinFields {
			continue
		}

		status := cells[schema.Status]
		record := func() *domain.FlightRecord {
			return &domain.FlightRecord{
				Date:         cells[schema.Date],
				Origin:       cells[schema.Origin],
				Destination:  cells[schema.Destination],
				FlightNumber: cells[schema.Flight],
				Status:       status,
			}
		}

		if recent == nil && strings.Contains(status, statusLanded) {
			recent = record()
		}
		if next == nil && strings.Contains(status, statusEstimated) {
			next = record()
		}
		if recent != nil && next != nil {
			break
		}
	}
	return recent, next, nil
}

// collectRows returns every tr element under root in document order.
func collectRows(root *html.Node) []*html.Node {
	var rows []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			rows = append(rows, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return rows
}

// cellTexts returns the trimmed text content of each td in the row.
func cellTexts(row *html.Node) []string {
	var cells []string
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "td" {
			cells = append(cells, nodeText(c))
		}
	}
	return cells
}

// nodeText flattens all text nodes under n, collapsing whitespace runs the
// way a browser's innerText would.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
