package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"CopyTradeSync/internal/gateway"
	"CopyTradeSync/internal/repository"
	"CopyTradeSync/internal/service"

	"github.com/gin-gonic/gin"
)

var errTest = errors.New("dependency unreachable")

func newTraderRouter(t *testing.T) (*gin.Engine, *gateway.MockGateway, *repository.MockStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMockStore()
	gw := gateway.NewMockGateway()
	svc := service.NewTraderService(store, gw, testLogger())
	h := NewTraderHandler(svc, testLogger())

	r := gin.New()
	r.GET("/api/traders/leaderboard", h.Leaderboard)
	r.GET("/api/traders/stats/:address", h.Stats)
	r.POST("/api/traders/register", h.Register)
	r.GET("/api/traders/:address", h.GetTrader)
	return r, gw, store
}

func TestRegisterLowercasesAddressInResponse(t *testing.T) {
	r, _, _ := newTraderRouter(t)

	body := `{"walletAddress":"0xAAbbCC00112233445566778899aabbccddeeff00","categories":["sports"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/traders/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Registered bool `json:"registered"`
		Trader     struct {
			Address    string   `json:"address"`
			Categories []string `json:"categories"`
		} `json:"trader"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Trader.Address != "0xaabbcc00112233445566778899aabbccddeeff00" {
		t.Errorf("address = %q, want lowercased", resp.Trader.Address)
	}
	if len(resp.Trader.Categories) != 1 || resp.Trader.Categories[0] != "sports" {
		t.Errorf("categories = %v, want [sports]", resp.Trader.Categories)
	}
}

func TestRegisterMissingWalletIs400(t *testing.T) {
	r, _, _ := newTraderRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/traders/register", strings.NewReader(`{"isPublic":true}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestLeaderboardMockFallbackResponse(t *testing.T) {
	r, gw, _ := newTraderRouter(t)
	gw.Err = errTest

	req := httptest.NewRequest(http.MethodGet, "/api/traders/leaderboard?limit=5", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Traders   []json.RawMessage `json:"traders"`
		Source    string            `json:"source"`
		Timestamp int64             `json:"timestamp"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Source != "mock" {
		t.Errorf("source = %q, want mock", resp.Source)
	}
	if len(resp.Traders) != 3 {
		t.Errorf("traders = %d, want fixed 3-entry mock set", len(resp.Traders))
	}
	if resp.Timestamp == 0 {
		t.Error("timestamp missing")
	}
}

func TestGetTraderUnknownIs404(t *testing.T) {
	r, gw, _ := newTraderRouter(t)
	gw.Err = errTest

	req := httptest.NewRequest(http.MethodGet, "/api/traders/0xghost", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestStatsUnknownWalletZeroed(t *testing.T) {
	r, _, _ := newTraderRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/traders/stats/0xNobody", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"totalTrades":0`) {
		t.Errorf("body = %s, want zeroed stats", w.Body.String())
	}
}
