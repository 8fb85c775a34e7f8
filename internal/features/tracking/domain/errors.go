package domain

import (
	"errors"
	"fmt"
)

// ErrMalformedURL marks tracking URLs a carrier adapter claims but cannot
// extract a barcode (or required postcode) from.
var ErrMalformedURL = errors.New("malformed tracking url")

// ErrorKind classifies a per-URL tracking failure.
type ErrorKind string

const (
	// ErrKindNetworkFailure is a transport or connection error, including
	// non-2xx carrier responses.
	ErrKindNetworkFailure ErrorKind = "NETWORK_FAILURE"
	// ErrKindTimeout means the request exceeded its fixed deadline.
	ErrKindTimeout ErrorKind = "TIMEOUT"
	// ErrKindParseFailure means a response was received but could not be
	// interpreted by the carrier's parser.
	ErrKindParseFailure ErrorKind = "PARSE_FAILURE"
	// ErrKindUnknownCarrier means the URL matched no registered carrier.
	ErrKindUnknownCarrier ErrorKind = "UNKNOWN_CARRIER"
)

// TrackingError is the failed outcome for a single URL. It never aborts
// processing of sibling URLs.
type TrackingError struct {
	URL     string    `json:"url"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *TrackingError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.URL)
}

// Outcome is the per-URL result of the tracking pipeline: exactly one of
// Package or Err is set.
type Outcome struct {
	URL     string         `json:"url"`
	Package *Package       `json:"package,omitempty"`
	Err     *TrackingError `json:"error,omitempty"`
}
