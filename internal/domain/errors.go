package domain

import "errors"

var (
	// ErrSourceUnavailable signals that an image or page could not be fetched or decoded.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrRenderTimeout signals that the flight data table never appeared within the wait budget.
	ErrRenderTimeout = errors.New("render timeout")
	// ErrExtractionFailure signals that the rendered flight data table could not be parsed.
	ErrExtractionFailure = errors.New("extraction failure")
	// ErrPublishFailure signals that the reply submission was rejected.
	ErrPublishFailure = errors.New("publish failure")
)
