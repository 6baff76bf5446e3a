package report

import (
	"strings"
	"testing"

	"github.com/skytagbot/skytag/internal/domain"
)

func result(reg string) domain.EnrichmentResult {
	return domain.EnrichmentResult{
		Registration: reg,
		SourceURL:    "https://example.test/data/aircraft/" + strings.ToLower(reg),
	}
}

func TestFormatResult_RegistrationOnly(t *testing.T) {
	got := FormatResult(result("N123"))

	if !strings.HasPrefix(got, "Aircraft Registration: **N123**\n[View on Flightradar24](https://example.test/data/aircraft/n123)") {
		t.Errorf("unexpected header:\n%s", got)
	}
	if strings.Contains(got, "Most Recent Flight") || strings.Contains(got, "Next Scheduled Flight") {
		t.Error("no flight sections expected without flight data")
	}
	if !strings.Contains(got, "^(I am a bot") {
		t.Error("footer missing")
	}
}

func TestFormatResult_WithFlights(t *testing.T) {
	r := result("N123")
	r.RecentFlight = &domain.FlightRecord{
		Date: "29 Aug", Origin: "OSL", Destination: "CPH", FlightNumber: "SK111", Status: "Landed 14:02",
	}
	r.NextFlight = &domain.FlightRecord{
		Date: "30 Aug", Origin: "CPH", Destination: "LHR", FlightNumber: "SK222", Status: "Estimated 09:15",
	}

	got := FormatResult(r)

	for _, want := range []string{
		"\n\n**Most Recent Flight:**\n* Flight: SK111\n* Route: OSL → CPH\n* Date: 29 Aug\n* Status: Landed 14:02",
		"\n\n**Next Scheduled Flight:**\n* Flight: SK222\n* Route: CPH → LHR\n* Date: 30 Aug\n* Status: Estimated 09:15",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing section:\n%q\nin:\n%q", want, got)
		}
	}
}

func TestCompose_SeparatorBetweenBlocksNoTrailing(t *testing.T) {
	a := NewAggregate()
	a.Add(result("N123"))
	a.Add(result("G-ABCD"))

	got := Compose(a)

	if strings.Count(got, "\n---\n") != 1 {
		t.Errorf("expected exactly one separator, got %d", strings.Count(got, "\n---\n"))
	}
	if strings.HasSuffix(strings.TrimRight(got, "\n"), "---") {
		t.Error("no trailing separator allowed")
	}

	first := strings.Index(got, "**N123**")
	second := strings.Index(got, "**G-ABCD**")
	sep := strings.Index(got, "\n---\n")
	if first == -1 || second == -1 || !(first < sep && sep < second) {
		t.Errorf("insertion order violated: n123=%d sep=%d gabcd=%d", first, sep, second)
	}
}

func TestCompose_SingleBlockHasNoSeparator(t *testing.T) {
	a := NewAggregate()
	a.Add(result("N123"))

	if got := Compose(a); strings.Contains(got, "---") {
		t.Errorf("single block must have no separator:\n%s", got)
	}
}

func TestCompose_EmptyAggregate(t *testing.T) {
	if got := Compose(NewAggregate()); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestAggregate_LastWriteWinsKeepsPosition(t *testing.T) {
	a := NewAggregate()
	a.Add(result("N123"))
	a.Add(result("G-ABCD"))

	updated := result("N123")
	updated.RecentFlight = &domain.FlightRecord{FlightNumber: "UA9"}
	a.Add(updated)

	if a.Len() != 2 {
		t.Fatalf("expected 2 registrations, got %d", a.Len())
	}
	results := a.Results()
	if results[0].Registration != "N123" || results[0].RecentFlight == nil {
		t.Errorf("overwrite must keep position and take new value: %+v", results[0])
	}
	if results[1].Registration != "G-ABCD" {
		t.Errorf("second slot: got %q", results[1].Registration)
	}
}
