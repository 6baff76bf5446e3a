// Package report aggregates per-image enrichment results for one post and
// renders the composite markdown reply.
package report

import (
	"fmt"
	"strings"

	"github.com/skytagbot/skytag/internal/domain"
)

const footer = "^(I am a bot that finds aircraft registrations in images and looks up their " +
	"flight information. [GitHub](https://github.com/skytagbot/skytag))"

// blockSeparator sits between registration blocks in a composite reply.
// It is joined alongside the blocks with a newline, so the rendered output
// keeps the exact historical byte layout.
const blockSeparator = "\n---\n"

// Aggregate collects enrichment results keyed by registration in insertion
// order. Re-adding a registration overwrites the record but keeps its
// original position (last write wins).
type Aggregate struct {
	order []string
	byReg map[string]domain.EnrichmentResult
}

// NewAggregate creates an empty aggregate.
func NewAggregate() *Aggregate {
	return &Aggregate{byReg: make(map[string]domain.EnrichmentResult)}
}

// Add inserts or overwrites the result for its registration.
func (a *Aggregate) Add(r domain.EnrichmentResult) {
	if _, ok := a.byReg[r.Registration]; !ok {
		a.order = append(a.order, r.Registration)
	}
	a.byReg[r.Registration] = r
}

// Len returns the number of distinct registrations.
func (a *Aggregate) Len() int { return len(a.order) }

// Results returns the aggregated results in insertion order.
func (a *Aggregate) Results() []domain.EnrichmentResult {
	out := make([]domain.EnrichmentResult, 0, len(a.order))
	for _, reg := range a.order {
		out = append(out, a.byReg[reg])
	}
	return out
}

// FormatResult renders one registration's markdown block.
func FormatResult(r domain.EnrichmentResult) string {
	lines := []string{
		fmt.Sprintf("Aircraft Registration: **%s**", r.Registration),
		fmt.Sprintf("[View on Flightradar24](%s)", r.SourceURL),
	}

	if f := r.RecentFlight; f != nil {
		lines = append(lines,
			"\n**Most Recent Flight:**",
			"* Flight: "+f.FlightNumber,
			fmt.Sprintf("* Route: %s → %s", f.Origin, f.Destination),
			"* Date: "+f.Date,
			"* Status: "+f.Status,
		)
	}

	if f := r.NextFlight; f != nil {
		lines = append(lines,
			"\n**Next Scheduled Flight:**",
			"* Flight: "+f.FlightNumber,
			fmt.Sprintf("* Route: %s → %s", f.Origin, f.Destination),
			"* Date: "+f.Date,
			"* Status: "+f.Status,
		)
	}

	lines = append(lines, "\n"+footer)
	return strings.Join(lines, "\n")
}

// Compose renders the composite reply: every block in insertion order with
// a separator between blocks and none trailing. Empty aggregates render to
// the empty string.
func Compose(a *Aggregate) string {
	results := a.Results()
	if len(results) == 0 {
		return ""
	}

	parts := make([]string, 0, len(results)*2-1)
	for i, r := range results {
		if i > 0 {
			parts = append(parts, blockSeparator)
		}
		parts = append(parts, FormatResult(r))
	}
	return strings.Join(parts, "\n")
}
