package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"arbscan/internal/arbitrage"
	"arbscan/internal/service"
)

// ScanRequest represents the request body for starting a background scan
type ScanRequest struct {
	Assets []string `json:"assets" example:"BTC,ETH,SOL"`
	Modes  []string `json:"modes,omitempty" example:"triangular,cross_exchange"`
}

// ScanAcceptedResponse represents an accepted scan request
type ScanAcceptedResponse struct {
	ScanID string `json:"scan_id" example:"0c4e8e2a-7f62-4b1e-9c58-2f4f02a1d8b3"`
	Status string `json:"status" example:"PENDING"`
}

// ScanResponse represents a scan together with its lifecycle state and,
// once finished, its results or failure reason
type ScanResponse struct {
	ScanID      string              `json:"scan_id" example:"0c4e8e2a-7f62-4b1e-9c58-2f4f02a1d8b3"`
	Assets      []string            `json:"assets" example:"BTC,ETH"`
	Modes       []string            `json:"modes" example:"triangular"`
	Status      string              `json:"status" example:"SUCCESS"`
	Result      *service.ScanResult `json:"result,omitempty"`
	Error       *string             `json:"error,omitempty"`
	RequestedAt *string             `json:"requested_at,omitempty" example:"2025-06-01T12:00:00Z"`
	UpdatedAt   *string             `json:"updated_at,omitempty" example:"2025-06-01T12:00:03Z"`
}

func scanResponseFrom(st *service.ScanStatus) ScanResponse {
	return ScanResponse{
		ScanID:      st.ScanID,
		Assets:      st.Assets,
		Modes:       st.Modes,
		Status:      st.Status,
		Result:      st.Result,
		Error:       st.ErrorMsg,
		RequestedAt: st.RequestedAt,
		UpdatedAt:   st.UpdatedAt,
	}
}

// HandleRequestScan godoc
// @Summary      Request a background scan
// @Description  Queues an arbitrage scan over the requested assets and modes. Returns immediately with a scan_id to poll; if an identical scan is already pending or running, its id is returned instead of queuing a duplicate.
// @Tags         scans
// @Accept       json
// @Produce      json
// @Param        request  body  ScanRequest  true  "Assets and scan modes (modes default to all)"
// @Success      202  {object}  ScanAcceptedResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /scans [post]
func HandleRequestScan(svc service.ScanServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ScanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
			return
		}

		modes := make([]arbitrage.Mode, 0, len(req.Modes))
		for _, raw := range req.Modes {
			mode, err := arbitrage.ParseMode(raw)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
				return
			}
			modes = append(modes, mode)
		}

		scanID, status, err := svc.RequestScan(r.Context(), req.Assets, modes)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusAccepted, ScanAcceptedResponse{ScanID: scanID, Status: status})
	}
}

// HandleGetScan godoc
// @Summary      Get scan status and results
// @Description  Returns the current state of a scan. Results are present once the scan has succeeded, the failure reason once it has failed.
// @Tags         scans
// @Produce      json
// @Param        scan_id  path  string  true  "Scan id returned by POST /scans"
// @Success      200  {object}  ScanResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /scans/{scan_id} [get]
func HandleGetScan(svc service.ScanServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scanID := chi.URLParam(r, "scan_id")

		st, err := svc.GetScanResult(r.Context(), scanID)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Unknown scan_id"})
				return
			}
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, scanResponseFrom(st))
	}
}

// HandleGetLatestScan godoc
// @Summary      Get the most recent completed scan
// @Description  Returns the newest successfully completed scan, served from cache when fresh.
// @Tags         scans
// @Produce      json
// @Success      200  {object}  ScanResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /scans/latest [get]
func HandleGetLatestScan(svc service.ScanServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.GetLatestScan(r.Context())
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "No completed scan available yet"})
				return
			}
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, scanResponseFrom(st))
	}
}
