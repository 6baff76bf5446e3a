package domain

import "time"

// FlightRecord is a snapshot of one row of the flight data table.
type FlightRecord struct {
	Date         string    `json:"date"`
	Origin       string    `json:"from"`
	Destination  string    `json:"to"`
	FlightNumber string    `json:"flight_number"`
	Status       string    `json:"status"`
	ObservedAt   time.Time `json:"observed_at"`
}

// EnrichmentResult holds everything known about one registration after lookup.
// RecentFlight and NextFlight are nil when the table held no matching row or
// the lookup failed outright.
type EnrichmentResult struct {
	Registration string        `json:"registration"`
	SourceURL    string        `json:"source_url"`
	RecentFlight *FlightRecord `json:"recent_flight,omitempty"`
	NextFlight   *FlightRecord `json:"next_flight,omitempty"`
	ObservedAt   time.Time     `json:"observed_at"`
}
