package server

import (
	"net/http"
	"strings"

	"github.com/finbrief/finbrief/internal/models"
)

// handleHoldings handles GET /api/holdings (list) and POST /api/holdings (add).
func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		list, err := s.app.HoldingsService.ListHoldings(r.Context(), userID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"holdings": list})

	case http.MethodPost:
		var req struct {
			Ticker       string  `json:"ticker"`
			CompanyName  string  `json:"company_name"`
			UnitsHeld    float64 `json:"units_held"`
			BoughtPrice  float64 `json:"bought_price"`
			PositionType string  `json:"position_type"`
			Sector       string  `json:"sector"`
			Notes        string  `json:"notes"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		holding, err := s.app.HoldingsService.AddHolding(r.Context(), &models.Holding{
			UserID:       userID,
			Ticker:       req.Ticker,
			CompanyName:  req.CompanyName,
			UnitsHeld:    req.UnitsHeld,
			BoughtPrice:  req.BoughtPrice,
			PositionType: models.ParsePositionType(req.PositionType),
			Sector:       req.Sector,
			Notes:        req.Notes,
		})
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, holding)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleHoldingItem handles PUT and DELETE on /api/holdings/{id}.
func (s *Server) handleHoldingItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	holdingID := PathParam(r, "/api/holdings/")
	if holdingID == "" {
		WriteError(w, http.StatusBadRequest, "Holding ID is required")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var holding models.Holding
		if !DecodeJSON(w, r, &holding) {
			return
		}
		holding.ID = holdingID
		holding.UserID = userID
		if err := s.app.HoldingsService.UpdateHolding(r.Context(), &holding); err != nil {
			status := http.StatusBadRequest
			if strings.Contains(err.Error(), "not found") {
				status = http.StatusNotFound
			}
			WriteError(w, status, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, &holding)

	case http.MethodDelete:
		if err := s.app.HoldingsService.DeleteHolding(r.Context(), userID, holdingID); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		RequireMethod(w, r, http.MethodPut, http.MethodDelete)
	}
}

// handleWatchlist handles GET /api/watchlist (list) and POST /api/watchlist (add).
func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		list, err := s.app.HoldingsService.ListWatchlist(r.Context(), userID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"watchlist": list})

	case http.MethodPost:
		var req struct {
			Ticker      string `json:"ticker"`
			CompanyName string `json:"company_name"`
			Sector      string `json:"sector"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		stock, err := s.app.HoldingsService.AddResearchStock(r.Context(), &models.ResearchStock{
			UserID:      userID,
			Ticker:      req.Ticker,
			CompanyName: req.CompanyName,
			Sector:      req.Sector,
		})
		if err != nil {
			status := http.StatusBadRequest
			if strings.Contains(err.Error(), "already") {
				status = http.StatusConflict
			}
			WriteError(w, status, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, stock)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleWatchlistItem handles DELETE on /api/watchlist/{ticker}.
func (s *Server) handleWatchlistItem(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	ticker := PathParam(r, "/api/watchlist/")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}
	if err := s.app.HoldingsService.RemoveResearchStock(r.Context(), userID, ticker); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDigestRun handles POST /api/digest/run: the manual trigger.
// Generation and delivery run synchronously so a failure surfaces in
// the response.
func (s *Server) handleDigestRun(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	if err := s.app.DigestService.RunForUser(r.Context(), userID); err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "not found") {
			status = http.StatusNotFound
		}
		WriteError(w, status, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}
