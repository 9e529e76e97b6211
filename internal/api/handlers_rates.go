package api

import (
	"net/http"

	"arbscan/internal/market"
	"arbscan/internal/service"
)

// RatesResponse represents an aggregated set of price quotes
type RatesResponse struct {
	Quotes []market.Quote `json:"quotes"`
	Count  int            `json:"count" example:"4"`
}

// HandleGetRates godoc
// @Summary      Get aggregated rates
// @Description  Returns current prices for the requested assets, aggregated across providers with failover. Cross rates absent from every provider are derived through the pivot currency and marked as derived.
// @Tags         rates
// @Produce      json
// @Param        assets      query  string  true   "Comma-separated asset symbols"     example(BTC,ETH)
// @Param        currencies  query  string  false  "Comma-separated quote currencies (defaults to the pivot currency)"  example(USD,EUR)
// @Param        refresh     query  bool    false  "Bypass the rate cache"
// @Success      200  {object}  RatesResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      502  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /rates [get]
func HandleGetRates(svc service.ScanServiceInterface) http.HandlerFunc {
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

		var currencies []string
		if raw := r.URL.Query().Get("currencies"); raw != "" {
			currencies, err = service.ParseSymbolList(raw)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
				return
			}
		}

		forceRefresh := r.URL.Query().Get("refresh") == "true"

		table, err := svc.GetRates(r.Context(), assets, currencies, forceRefresh)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		quotes := table.Quotes()
		writeJSON(w, http.StatusOK, RatesResponse{Quotes: quotes, Count: len(quotes)})
	}
}
