package service

import (
	"errors"
	"strings"
)

// ErrInvalidAsset indicates an asset or currency code is malformed.
var ErrInvalidAsset = errors.New("invalid symbol format")

// ErrInvalidScanID indicates the scan ID format is invalid.
var ErrInvalidScanID = errors.New("invalid scan_id")

// ErrNotFound is returned when no scan matches the requested ID.
var ErrNotFound = errors.New("not found")

// ErrInternal covers failures the caller can do nothing about.
var ErrInternal = errors.New("internal error")

// ErrInternalQueue is returned when a scan cannot be handed to the queue.
var ErrInternalQueue = errors.New("internal queue error")

// ErrNoVenueData indicates no venue produced a usable price for the asset.
var ErrNoVenueData = errors.New("no venue data available")

// IsValidSymbolCode checks whether a string looks like a market symbol:
// two to five ASCII letters.
func IsValidSymbolCode(code string) bool {
	if len(code) < 2 || len(code) > 5 {
		return false
	}
	code = strings.ToUpper(code)
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// ParseSymbolList splits a comma separated symbol list, validates each entry
// and returns the symbols uppercased in input order.
func ParseSymbolList(list string) ([]string, error) {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !IsValidSymbolCode(p) {
			return nil, ErrInvalidAsset
		}
		out = append(out, strings.ToUpper(p))
	}
	if len(out) == 0 {
		return nil, ErrInvalidAsset
	}
	return out, nil
}
