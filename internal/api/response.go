// Package api implements HTTP handlers for the arbitrage scanner service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"arbscan/internal/aggregator"
	"arbscan/internal/market"
	"arbscan/internal/service"
)

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Error string `json:"error" example:"invalid symbol format"`
}

// writeJSON encodes data with the given status. Encode errors are ignored
// since the header is already out.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError maps service errors onto HTTP status codes. Handlers
// wanting a friendlier message for a specific error handle it before
// falling back here.
func writeServiceError(w http.ResponseWriter, err error) {
	var aggErr *aggregator.AggregationError
	switch {
	case errors.Is(err, service.ErrInvalidAsset),
		errors.Is(err, service.ErrInvalidScanID),
		errors.Is(err, service.ErrUnsupportedAsset),
		errors.Is(err, service.ErrUnsupportedCurrency),
		errors.Is(err, market.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.As(err, &aggErr), errors.Is(err, service.ErrNoVenueData):
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
	}
}
