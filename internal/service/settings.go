package service

import "arbscan/internal/aggregator"

// Settings is the runtime-tunable scan configuration shared by all callers.
type Settings struct {
	MinProfitPct      float64
	PreferredProvider string
	AutoReorder       bool
}

// SettingsUpdate carries a partial settings change; nil fields keep the
// current value.
type SettingsUpdate struct {
	MinProfitPct      *float64
	PreferredProvider *string
	AutoReorder       *bool
}

// UpdateSettings applies the non-nil fields of upd in order and returns the
// resulting settings. A rejected field leaves the fields before it applied.
func (s *ScanService) UpdateSettings(upd SettingsUpdate) (*Settings, error) {
	if upd.MinProfitPct != nil {
		if err := s.engine.SetMinProfitPercentage(*upd.MinProfitPct); err != nil {
			return nil, err
		}
	}
	if upd.PreferredProvider != nil {
		if err := s.rates.SetPreferredProvider(*upd.PreferredProvider); err != nil {
			return nil, err
		}
	}
	if upd.AutoReorder != nil {
		s.rates.SetAutoReorder(*upd.AutoReorder)
	}

	st := s.GetSettings()
	s.log.Infow("Settings updated", "min_profit_pct", st.MinProfitPct,
		"preferred_provider", st.PreferredProvider, "auto_reorder", st.AutoReorder)
	return st, nil
}

// GetSettings reports the current runtime settings.
func (s *ScanService) GetSettings() *Settings {
	preferred, autoReorder := s.rates.Settings()
	return &Settings{
		MinProfitPct:      s.engine.MinProfitPercentage(),
		PreferredProvider: preferred,
		AutoReorder:       autoReorder,
	}
}

// ProviderStates reports per-provider health counters plus the provider that
// served the last successful fetch.
func (s *ScanService) ProviderStates() ([]aggregator.ProviderState, string) {
	return s.rates.States(), s.rates.LastUsed()
}
