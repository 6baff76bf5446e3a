// Package flightdata looks up live flight status for a registration by
// rendering the provider's per-aircraft page and scanning its data table.
package flightdata

// TableID is the stable element id of the provider's flight data table.
const TableID = "tbl-datatable"

// Status substrings marking a completed and a forecast flight. The match is
// case-sensitive on purpose; the provider renders these labels verbatim.
const (
	statusLanded    = "Landed"
	statusEstimated = "Estimated"
)

// Schema centralizes the provider's fragile column contract: fixed cell
// positions within a row and the minimum cell count for a row to qualify.
// Swapping providers means swapping this value, nothing else.
type Schema struct {
	Date        int
	Origin      int
	Destination int
	Flight      int
	Status      int
	MinFields   int
}

// DefaultSchema matches the current provider table layout.
func DefaultSchema() Schema {
	return Schema{
		Date:        2,
		Origin:      3,
		Destination: 4,
		Flight:      5,
		Status:      11,
		MinFields:   12,
	}
}
