// Package models defines data structures for Finbrief
package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// PositionType indicates the direction of a holding
type PositionType string

const (
	PositionLong  PositionType = "long"
	PositionShort PositionType = "short"
)

// ParsePositionType normalizes a position type string, defaulting to long.
func ParsePositionType(s string) PositionType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "short":
		return PositionShort
	default:
		return PositionLong
	}
}

// Holding represents a user's position in a ticker
type Holding struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	Ticker       string       `json:"ticker"`
	CompanyName  string       `json:"company_name"`
	UnitsHeld    float64      `json:"units_held"`
	BoughtPrice  float64      `json:"bought_price"`
	CurrentPrice float64      `json:"current_price,omitempty"`
	Sector       string       `json:"sector,omitempty"`
	PositionType PositionType `json:"position_type"`
	PurchaseDate time.Time    `json:"purchase_date"`
	LastUpdated  time.Time    `json:"last_updated,omitempty"`
	Notes        string       `json:"notes,omitempty"`
}

// Value returns the position value using the current price when known,
// falling back to the bought price.
func (h *Holding) Value() float64 {
	price := h.CurrentPrice
	if price == 0 {
		price = h.BoughtPrice
	}
	return h.UnitsHeld * price
}

// MergePurchase folds a new purchase into the holding using the
// weighted-average-cost rule. The merged bought price is
// (existingUnits*existingPrice + newUnits*newPrice) / (existingUnits+newUnits)
// rounded to 2 decimals; units sum. Position type must match the holding's.
func (h *Holding) MergePurchase(units, price float64, positionType PositionType) error {
	if units <= 0 {
		return fmt.Errorf("merge requires positive units, got %v", units)
	}
	if positionType != h.PositionType {
		return fmt.Errorf("position type mismatch: holding is %s, purchase is %s", h.PositionType, positionType)
	}
	totalUnits := h.UnitsHeld + units
	h.BoughtPrice = Round2((h.UnitsHeld*h.BoughtPrice + units*price) / totalUnits)
	h.UnitsHeld = totalUnits
	return nil
}

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ResearchStock is a watchlist entry: a ticker a user tracks without owning.
// Unique per (user, ticker).
type ResearchStock struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Ticker        string    `json:"ticker"`
	CompanyName   string    `json:"company_name"`
	CurrentPrice  float64   `json:"current_price,omitempty"`
	Change        float64   `json:"change,omitempty"`
	ChangePercent float64   `json:"change_percent,omitempty"`
	Sector        string    `json:"sector,omitempty"`
	MarketCap     float64   `json:"market_cap,omitempty"`
	PERatio       float64   `json:"pe_ratio,omitempty"`
	DividendYield float64   `json:"dividend_yield,omitempty"`
	AddedDate     time.Time `json:"added_date"`
	LastUpdated   time.Time `json:"last_updated,omitempty"`
}

// NormalizeTicker uppercases and trims a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
