package service

import (
	"encoding/json"
	"strings"
	"time"

	"arbscan/internal/arbitrage"
	"arbscan/internal/repository"
)

// ScanResult is the snapshot of a completed scan as stored in the DB.
type ScanResult struct {
	Triangular    []arbitrage.Triangular    `json:"triangular,omitempty"`
	CrossExchange []arbitrage.CrossExchange `json:"cross_exchange,omitempty"`
	GeneratedAt   time.Time                 `json:"generated_at"`
}

// ScanStatus represents a scan as returned by the service layer.
// Fields are populated according to the scan's status:
//   - SUCCESS: Result and UpdatedAt are set, ErrorMsg is nil.
//   - FAILED:  ErrorMsg is set, Result is nil.
//   - PENDING/RUNNING: Result, ErrorMsg, and UpdatedAt are nil.
type ScanStatus struct {
	ScanID      string
	Assets      []string
	Modes       []string
	Status      string
	Result      *ScanResult
	ErrorMsg    *string
	RequestedAt *string
	UpdatedAt   *string
}

func scanStatusFromRepo(rec *repository.Scan) *ScanStatus {
	st := &ScanStatus{
		ScanID: rec.ID,
		Assets: splitKey(rec.Assets),
		Modes:  splitKey(rec.Modes),
		Status: string(rec.Status),
	}
	if !rec.RequestedAt.IsZero() {
		ts := rec.RequestedAt.Format(time.RFC3339)
		st.RequestedAt = &ts
	}

	switch rec.Status {
	case repository.StatusSuccess:
		if rec.Result != nil {
			var res ScanResult
			if err := json.Unmarshal([]byte(*rec.Result), &res); err == nil {
				st.Result = &res
			}
		}
		if rec.UpdatedAt != nil {
			ts := rec.UpdatedAt.Format(time.RFC3339)
			st.UpdatedAt = &ts
		}
	case repository.StatusFailed:
		st.ErrorMsg = rec.ErrorMsg
	}

	return st
}

func splitKey(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, ",")
}
