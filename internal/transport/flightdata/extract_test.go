package flightdata

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/skytagbot/skytag/internal/domain"
)

// row renders a 12-cell table row with the given date/from/to/flight/status
// at the schema's fixed positions.
func row(date, from, to, flight, status string) string {
	cells := make([]string, 12)
	for i := range cells {
		cells[i] = fmt.Sprintf("c%d", i)
	}
	cells[2] = date
	cells[3] = from
	cells[4] = to
	cells[5] = flight
	cells[11] = status

	var sb strings.Builder
	sb.WriteString("<tr>")
	for _, c := range cells {
		sb.WriteString("<td>" + c + "</td>")
	}
	sb.WriteString("</tr>")
	return sb.String()
}

func table(rows ...string) string {
	return `<table id="tbl-datatable"><tr><th>h</th></tr>` + strings.Join(rows, "") + `</table>`
}

func TestExtractFlights_BothFound(t *testing.T) {
	html := table(
		row("2026-08-29", "CPH", "AMS", "SK555", "Scheduled"),
		row("2026-08-28", "OSL", "CPH", "SK111", "Landed 14:02"),
		row("2026-08-30", "CPH", "LHR", "SK222", "Estimated dep 09:15"),
	)

	recent, next, err := ExtractFlights(html, DefaultSchema())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recent == nil || next == nil {
		t.Fatalf("expected both flights, got recent=%v next=%v", recent, next)
	}
	if recent.FlightNumber != "SK111" || recent.Origin != "OSL" || recent.Destination != "CPH" || recent.Date != "2026-08-28" {
		t.Errorf("recent mismatch: %+v", recent)
	}
	if next.FlightNumber != "SK222" || next.Origin != "CPH" || next.Destination != "LHR" {
		t.Errorf("next mismatch: %+v", next)
	}
}

func TestExtractFlights_FirstMatchWinsEitherOrder(t *testing.T) {
	t.Run("estimated before landed", func(t *testing.T) {
		html := table(
			row("d1", "AAA", "BBB", "F1", "Estimated 10:00"),
			row("d2", "CCC", "DDD", "F2", "Landed 09:00"),
			row("d3", "EEE", "FFF", "F3", "Landed 08:00"),
			row("d4", "GGG", "HHH", "F4", "Estimated 11:00"),
		)

		recent, next, err := ExtractFlights(html, DefaultSchema())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if next.FlightNumber != "F1" {
			t.Errorf("next: got %q, want F1", next.FlightNumber)
		}
		if recent.FlightNumber != "F2" {
			t.Errorf("recent: got %q, want F2", recent.FlightNumber)
		}
	})

	t.Run("landed before estimated", func(t *testing.T) {
		html := table(
			row("d1", "AAA", "BBB", "F1", "Landed 09:00"),
			row("d2", "CCC", "DDD", "F2", "Estimated 10:00"),
		)

		recent, next, err := ExtractFlights(html, DefaultSchema())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if recent.FlightNumber != "F1" || next.FlightNumber != "F2" {
			t.Errorf("got recent=%q next=%q", recent.FlightNumber, next.FlightNumber)
		}
	})
}

func TestExtractFlights_ShortRowSkipped(t *testing.T) {
	short := "<tr><td>only</td><td>Landed</td></tr>"
	html := table(
		short,
		row("d1", "AAA", "BBB", "F9", "Landed"),
	)

	recent, _, err := ExtractFlights(html, DefaultSchema())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recent == nil || recent.FlightNumber != "F9" {
		t.Fatalf("short row must not contribute, got %+v", recent)
	}
}

func TestExtractFlights_HeaderRowSkipped(t *testing.T) {
	// A 12-cell header row containing "Landed" as column text must not be
	// captured; only rows after the first count.
	header := row("Date", "From", "To", "Flight", "Landed")
	html := `<table id="tbl-datatable">` + header + row("d1", "AAA", "BBB", "F1", "Landed") + `</table>`

	recent, _, err := ExtractFlights(html, DefaultSchema())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recent == nil || recent.FlightNumber != "F1" {
		t.Fatalf("expected F1 from the data row, got %+v", recent)
	}
}

func TestExtractFlights_NoneFound(t *testing.T) {
	html := table(
		row("d1", "AAA", "BBB", "F1", "Scheduled"),
		row("d2", "CCC", "DDD", "F2", "Canceled"),
	)

	recent, next, err := ExtractFlights(html, DefaultSchema())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recent != nil || next != nil {
		t.Errorf("expected neither flight, got recent=%v next=%v", recent, next)
	}
}

func TestExtractFlights_OnlyOneFound(t *testing.T) {
	html := table(
		row("d1", "AAA", "BBB", "F1", "Landed"),
	)

	recent, next, err := ExtractFlights(html, DefaultSchema())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recent == nil || recent.FlightNumber != "F1" {
		t.Errorf("recent: got %+v", recent)
	}
	if next != nil {
		t.Errorf("next should be nil, got %+v", next)
	}
}

func TestExtractFlights_StatusIsCaseSensitive(t *testing.T) {
	html := table(
		row("d1", "AAA", "BBB", "F1", "LANDED"),
		row("d2", "CCC", "DDD", "F2", "landed"),
	)

	recent, _, err := ExtractFlights(html, DefaultSchema())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recent != nil {
		t.Errorf("case-folded labels must not match, got %+v", recent)
	}
}

func TestExtractFlights_EmptyTableIsExtractionFailure(t *testing.T) {
	_, _, err := ExtractFlights("<div>no table here</div>", DefaultSchema())
	if !errors.Is(err, domain.ErrExtractionFailure) {
		t.Fatalf("expected ErrExtractionFailure, got %v", err)
	}
}

func TestExtractFlights_NestedMarkupInCells(t *testing.T) {
	html := `<table id="tbl-datatable"><tr><th>h</th></tr><tr>` +
		`<td>0</td><td>1</td><td><span>2026-08-28</span></td><td>OSL <small>Gardermoen</small></td>` +
		`<td>CPH</td><td><a href="#">SK111</a></td><td>6</td><td>7</td><td>8</td><td>9</td><td>10</td>` +
		`<td><span class="state">Landed</span> 14:02</td></tr></table>`

	recent, _, err := ExtractFlights(html, DefaultSchema())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recent == nil {
		t.Fatal("expected a recent flight")
	}
	if recent.Origin != "OSL Gardermoen" {
		t.Errorf("origin: got %q, want %q", recent.Origin, "OSL Gardermoen")
	}
	if recent.Status != "Landed 14:02" {
		t.Errorf("status: got %q, want %q", recent.Status, "Landed 14:02")
	}
}
