package service

import (
	"fmt"
	"strings"

	"arbscan/internal/market"
)

var supportedAssets = map[string]struct{}{
	"BTC":  {},
	"ETH":  {},
	"SOL":  {},
	"XRP":  {},
	"ADA":  {},
	"DOGE": {},
	"LTC":  {},
	"DOT":  {},
	"AVAX": {},
	"LINK": {},
	"BNB":  {},
	"TRX":  {},
	"XLM":  {},
	"UNI":  {},
	"ATOM": {},
	"USDT": {},
}

var supportedCurrencies = map[string]struct{}{
	"USD": {},
	"EUR": {},
	"GBP": {},
	"JPY": {},
	"BRL": {},
	"CHF": {},
	"AUD": {},
	"CAD": {},
}

// ErrUnsupportedAsset is returned when an asset is not in the supported list.
var ErrUnsupportedAsset = fmt.Errorf("unsupported asset: %w", market.ErrInvalidInput)

// ErrUnsupportedCurrency is returned when a quote currency is not in the supported list.
var ErrUnsupportedCurrency = fmt.Errorf("unsupported currency: %w", market.ErrInvalidInput)

// Validator defines the interface for symbol validation.
type Validator interface {
	ValidateAsset(code string) error
	ValidateCurrency(code string) error
	IsSupportedAsset(code string) bool
	IsSupportedCurrency(code string) bool
}

type validator struct{}

// NewValidator creates a new symbol validator.
func NewValidator() Validator {
	return &validator{}
}

// ValidateAsset checks if the asset symbol is supported (case-insensitive).
func (v *validator) ValidateAsset(code string) error {
	if v.IsSupportedAsset(code) {
		return nil
	}
	return ErrUnsupportedAsset
}

// ValidateCurrency checks if the quote currency is supported (case-insensitive).
func (v *validator) ValidateCurrency(code string) error {
	if v.IsSupportedCurrency(code) {
		return nil
	}
	return ErrUnsupportedCurrency
}

// IsSupportedAsset returns true if the asset symbol is supported (case-insensitive).
func (v *validator) IsSupportedAsset(code string) bool {
	_, ok := supportedAssets[strings.ToUpper(code)]
	return ok
}

// IsSupportedCurrency returns true if the code can serve as a quote currency.
// Supported assets also qualify, since crypto pairs are quoted against other
// crypto as well as fiat.
func (v *validator) IsSupportedCurrency(code string) bool {
	code = strings.ToUpper(code)
	if _, ok := supportedCurrencies[code]; ok {
		return true
	}
	_, ok := supportedAssets[code]
	return ok
}
