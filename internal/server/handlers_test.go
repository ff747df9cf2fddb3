package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/finbrief/finbrief/internal/app"
	"github.com/finbrief/finbrief/internal/common"
	"github.com/finbrief/finbrief/internal/models"
)

type stubHoldingsService struct {
	holdings   []*models.Holding
	watchlist  []*models.ResearchStock
	addErr     error
	watchErr   error
	lastAdded  *models.Holding
	deletedIDs []string
}

func (s *stubHoldingsService) ListHoldings(_ context.Context, _ string) ([]*models.Holding, error) {
	return s.holdings, nil
}

func (s *stubHoldingsService) AddHolding(_ context.Context, h *models.Holding) (*models.Holding, error) {
	if s.addErr != nil {
		return nil, s.addErr
	}
	h.ID = "generated-id"
	s.lastAdded = h
	return h, nil
}

func (s *stubHoldingsService) UpdateHolding(_ context.Context, h *models.Holding) error {
	for _, existing := range s.holdings {
		if existing.ID == h.ID {
			return nil
		}
	}
	return fmt.Errorf("holding '%s' not found", h.ID)
}

func (s *stubHoldingsService) DeleteHolding(_ context.Context, _, holdingID string) error {
	s.deletedIDs = append(s.deletedIDs, holdingID)
	return nil
}

func (s *stubHoldingsService) WriteCurrentPrice(_ context.Context, _, _ string, _ float64) error {
	return nil
}

func (s *stubHoldingsService) ListWatchlist(_ context.Context, _ string) ([]*models.ResearchStock, error) {
	return s.watchlist, nil
}

func (s *stubHoldingsService) AddResearchStock(_ context.Context, stock *models.ResearchStock) (*models.ResearchStock, error) {
	if s.watchErr != nil {
		return nil, s.watchErr
	}
	stock.ID = "generated-id"
	return stock, nil
}

func (s *stubHoldingsService) RemoveResearchStock(_ context.Context, _, _ string) error {
	return nil
}

type stubDigestService struct {
	runErr    error
	ranUserID string
}

func (s *stubDigestService) GenerateDigest(_ context.Context, _ *models.User) (*models.PortfolioDigest, error) {
	return nil, nil
}

func (s *stubDigestService) SendDigest(_ context.Context, _ *models.User, _ *models.PortfolioDigest) error {
	return nil
}

func (s *stubDigestService) RunForUser(_ context.Context, userID string) error {
	s.ranUserID = userID
	return s.runErr
}

func (s *stubDigestService) RunDigestBatch(_ context.Context) (int, int) { return 0, 0 }

func newTestServer(holdingsSvc *stubHoldingsService, digestSvc *stubDigestService) *Server {
	a := &app.App{
		Config:          common.NewDefaultConfig(),
		Logger:          common.NewSilentLogger(),
		HoldingsService: holdingsSvc,
		DigestService:   digestSvc,
	}
	return NewServer(a)
}

func doRequest(t *testing.T, s *Server, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(&stubHoldingsService{}, &stubDigestService{})
	rec := doRequest(t, s, http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHoldings_RequireUserHeader(t *testing.T) {
	s := newTestServer(&stubHoldingsService{}, &stubDigestService{})
	rec := doRequest(t, s, http.MethodGet, "/api/holdings", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestHoldings_List(t *testing.T) {
	svc := &stubHoldingsService{holdings: []*models.Holding{
		{ID: "h1", UserID: "u1", Ticker: "AAPL", UnitsHeld: 10, BoughtPrice: 150},
	}}
	s := newTestServer(svc, &stubDigestService{})

	rec := doRequest(t, s, http.MethodGet, "/api/holdings", "u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Holdings []*models.Holding `json:"holdings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Holdings) != 1 || resp.Holdings[0].Ticker != "AAPL" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestHoldings_Add(t *testing.T) {
	svc := &stubHoldingsService{}
	s := newTestServer(svc, &stubDigestService{})

	rec := doRequest(t, s, http.MethodPost, "/api/holdings", "u1", map[string]interface{}{
		"ticker":       "aapl",
		"company_name": "Apple Inc",
		"units_held":   10,
		"bought_price": 150,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if svc.lastAdded.UserID != "u1" {
		t.Errorf("user from header not applied: %+v", svc.lastAdded)
	}
	if svc.lastAdded.PositionType != models.PositionLong {
		t.Errorf("PositionType = %s, want default long", svc.lastAdded.PositionType)
	}
}

func TestHoldings_AddValidationError(t *testing.T) {
	svc := &stubHoldingsService{addErr: errors.New("units held must be positive")}
	s := newTestServer(svc, &stubDigestService{})

	rec := doRequest(t, s, http.MethodPost, "/api/holdings", "u1", map[string]interface{}{"ticker": "AAPL"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHoldingItem_UpdateUnknownIs404(t *testing.T) {
	s := newTestServer(&stubHoldingsService{}, &stubDigestService{})

	rec := doRequest(t, s, http.MethodPut, "/api/holdings/nope", "u1", map[string]interface{}{
		"ticker": "AAPL", "units_held": 5, "bought_price": 100,
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHoldingItem_Delete(t *testing.T) {
	svc := &stubHoldingsService{}
	s := newTestServer(svc, &stubDigestService{})

	rec := doRequest(t, s, http.MethodDelete, "/api/holdings/h1", "u1", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if len(svc.deletedIDs) != 1 || svc.deletedIDs[0] != "h1" {
		t.Errorf("deletedIDs = %v", svc.deletedIDs)
	}
}

func TestWatchlist_AddDuplicateIs409(t *testing.T) {
	svc := &stubHoldingsService{watchErr: errors.New("ticker 'NVDA' is already on the watchlist")}
	s := newTestServer(svc, &stubDigestService{})

	rec := doRequest(t, s, http.MethodPost, "/api/watchlist", "u1", map[string]interface{}{"ticker": "NVDA"})
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestWatchlistItem_Delete(t *testing.T) {
	s := newTestServer(&stubHoldingsService{}, &stubDigestService{})

	rec := doRequest(t, s, http.MethodDelete, "/api/watchlist/NVDA", "u1", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestDigestRun_Success(t *testing.T) {
	digestSvc := &stubDigestService{}
	s := newTestServer(&stubHoldingsService{}, digestSvc)

	rec := doRequest(t, s, http.MethodPost, "/api/digest/run", "u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if digestSvc.ranUserID != "u1" {
		t.Errorf("ranUserID = %s", digestSvc.ranUserID)
	}
}

func TestDigestRun_FailureSurfacesSynchronously(t *testing.T) {
	digestSvc := &stubDigestService{runErr: errors.New("smtp unreachable")}
	s := newTestServer(&stubHoldingsService{}, digestSvc)

	rec := doRequest(t, s, http.MethodPost, "/api/digest/run", "u1", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestDigestRun_UnknownUserIs404(t *testing.T) {
	digestSvc := &stubDigestService{runErr: errors.New("user 'ghost' not found")}
	s := newTestServer(&stubHoldingsService{}, digestSvc)

	rec := doRequest(t, s, http.MethodPost, "/api/digest/run", "ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(&stubHoldingsService{}, &stubDigestService{})

	rec := doRequest(t, s, http.MethodDelete, "/api/digest/run", "u1", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
