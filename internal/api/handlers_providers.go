package api

import (
	"encoding/json"
	"net/http"

	"arbscan/internal/aggregator"
	"arbscan/internal/service"
)

// ProvidersResponse represents the health of each configured price provider
type ProvidersResponse struct {
	Providers []aggregator.ProviderState `json:"providers"`
	LastUsed  string                     `json:"last_used,omitempty" example:"cryptocompare"`
}

// SettingsResponse represents the current runtime settings
type SettingsResponse struct {
	MinProfitPct      float64 `json:"min_profit_pct" example:"1"`
	PreferredProvider string  `json:"preferred_provider,omitempty" example:"coingecko"`
	AutoReorder       bool    `json:"auto_reorder" example:"true"`
}

// SettingsUpdateRequest represents a partial settings update; omitted
// fields keep their current value
type SettingsUpdateRequest struct {
	MinProfitPct      *float64 `json:"min_profit_pct,omitempty" example:"0.5"`
	PreferredProvider *string  `json:"preferred_provider,omitempty" example:"coinbase"`
	AutoReorder       *bool    `json:"auto_reorder,omitempty" example:"false"`
}

func settingsResponseFrom(s *service.Settings) SettingsResponse {
	return SettingsResponse{
		MinProfitPct:      s.MinProfitPct,
		PreferredProvider: s.PreferredProvider,
		AutoReorder:       s.AutoReorder,
	}
}

// HandleGetProviders godoc
// @Summary      Get provider states
// @Description  Returns the failover state of every configured price provider: consecutive error count, last outcome and whether the provider is currently degraded.
// @Tags         providers
// @Produce      json
// @Success      200  {object}  ProvidersResponse
// @Router       /providers [get]
func HandleGetProviders(svc service.ScanServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		states, lastUsed := svc.ProviderStates()
		writeJSON(w, http.StatusOK, ProvidersResponse{Providers: states, LastUsed: lastUsed})
	}
}

// HandleGetSettings godoc
// @Summary      Get runtime settings
// @Tags         settings
// @Produce      json
// @Success      200  {object}  SettingsResponse
// @Router       /settings [get]
func HandleGetSettings(svc service.ScanServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, settingsResponseFrom(svc.GetSettings()))
	}
}

// HandleUpdateSettings godoc
// @Summary      Update runtime settings
// @Description  Applies a partial update to the profit threshold, preferred provider or auto-reorder flag. An empty preferred_provider clears the preference.
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request  body  SettingsUpdateRequest  true  "Fields to update"
// @Success      200  {object}  SettingsResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /settings [put]
func HandleUpdateSettings(svc service.ScanServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SettingsUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
			return
		}

		updated, err := svc.UpdateSettings(service.SettingsUpdate{
			MinProfitPct:      req.MinProfitPct,
			PreferredProvider: req.PreferredProvider,
			AutoReorder:       req.AutoReorder,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, settingsResponseFrom(updated))
	}
}
