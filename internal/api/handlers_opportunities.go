package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"arbscan/internal/arbitrage"
	"arbscan/internal/service"
)

// TriangularResponse represents detected triangular arbitrage opportunities
type TriangularResponse struct {
	Opportunities []arbitrage.Triangular `json:"opportunities"`
	Count         int                    `json:"count" example:"1"`
}

// CrossExchangeResponse represents detected cross-exchange spreads
type CrossExchangeResponse struct {
	Opportunities []arbitrage.CrossExchange `json:"opportunities"`
	Count         int                       `json:"count" example:"1"`
}

// EvaluateRequest represents a caller-supplied venue price matrix to evaluate
type EvaluateRequest struct {
	Asset     string                 `json:"asset" example:"BTC"`
	Venues    []arbitrage.VenueQuote `json:"venues"`
	MinProfit *float64               `json:"min_profit,omitempty" example:"0.5"`
}

// HandleFindTriangular godoc
// @Summary      Find triangular arbitrage
// @Description  Fetches current rates for the requested assets and searches every three-asset cycle for a profitable loop.
// @Tags         opportunities
// @Produce      json
// @Param        assets      query  string  true   "Comma-separated asset symbols (at least three)"  example(BTC,ETH,SOL)
// @Param        min_profit  query  number  false  "Minimum profit percentage override"
// @Success      200  {object}  TriangularResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      502  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /opportunities/triangular [get]
func HandleFindTriangular(svc service.ScanServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assetsParam := r.URL.Query().Get("assets")
		if assetsParam == "" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "assets query parameter is required"})
			return
		}
		assets, err := service.ParseSymbolList(assetsParam)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}

		minProfit, err := parseMinProfit(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}

		opps, err := svc.FindTriangular(r.Context(), assets, minProfit)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, TriangularResponse{Opportunities: opps, Count: len(opps)})
	}
}

// HandleScanVenues godoc
// @Summary      Find cross-exchange spreads
// @Description  Fetches the asset price from every configured venue and reports buy/sell pairs whose fee-adjusted spread clears the profit threshold.
// @Tags         opportunities
// @Produce      json
// @Param        asset       query  string  true   "Asset symbol"  example(BTC)
// @Param        min_profit  query  number  false  "Minimum profit percentage override"
// @Success      200  {object}  CrossExchangeResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      502  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /opportunities/cross-exchange [get]
func HandleScanVenues(svc service.ScanServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asset := strings.TrimSpace(r.URL.Query().Get("asset"))
		if asset == "" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "asset query parameter is required"})
			return
		}

		minProfit, err := parseMinProfit(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}

		opps, err := svc.ScanVenues(r.Context(), asset, minProfit)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, CrossExchangeResponse{Opportunities: opps, Count: len(opps)})
	}
}

// HandleEvaluateCrossExchange godoc
// @Summary      Evaluate a venue price matrix
// @Description  Evaluates a caller-supplied set of venue quotes for cross-exchange spreads without touching any provider. Useful for what-if analysis of prices observed elsewhere.
// @Tags         opportunities
// @Accept       json
// @Produce      json
// @Param        request  body  EvaluateRequest  true  "Asset and venue quotes"
// @Success      200  {object}  CrossExchangeResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /opportunities/cross-exchange [post]
func HandleEvaluateCrossExchange(svc service.ScanServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EvaluateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
			return
		}
		if strings.TrimSpace(req.Asset) == "" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "asset is required"})
			return
		}
		if len(req.Venues) < 2 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "at least two venue quotes are required"})
			return
		}

		opps, err := svc.EvaluateCrossExchange(req.Asset, req.Venues, req.MinProfit)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, CrossExchangeResponse{Opportunities: opps, Count: len(opps)})
	}
}

// parseMinProfit reads the optional min_profit query parameter. A nil result
// means the engine default applies.
func parseMinProfit(r *http.Request) (*float64, error) {
	raw := r.URL.Query().Get("min_profit")
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid min_profit %q", raw)
	}
	return &v, nil
}
