package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"CopyTradeSync/internal/gateway"
	"CopyTradeSync/internal/repository"
	"CopyTradeSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newMarketRouter(t *testing.T) (*gin.Engine, *gateway.MockGateway, *repository.MockStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMockStore()
	gw := gateway.NewMockGateway()
	svc := service.NewMarketService(store, store, gw, testLogger())
	h := NewMarketHandler(svc, testLogger())

	r := gin.New()
	r.GET("/api/markets/active", h.ActiveMarkets)
	r.GET("/api/markets/categories/list", h.Categories)
	r.POST("/api/markets/create", h.CreateMarket)
	r.GET("/api/markets/:id", h.GetMarket)
	r.POST("/api/markets/:id/bet", h.PlaceBet)
	return r, gw, store
}

func TestPlaceBetRejectsNonBooleanPrediction(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"string prediction", `{"walletAddress":"0xabc","prediction":"yes","amount":10}`},
		{"numeric prediction", `{"walletAddress":"0xabc","prediction":1,"amount":10}`},
		{"missing prediction", `{"walletAddress":"0xabc","amount":10}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, gw, _ := newMarketRouter(t)

			req := httptest.NewRequest(http.MethodPost, "/api/markets/7/bet", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			// 校验失败必须发生在任何外部调用之前
			if gw.Calls["PlaceBet"] != 0 || gw.Calls["MarketByID"] != 0 {
				t.Errorf("external calls attempted: %v", gw.Calls)
			}
		})
	}
}

func TestActiveMarketsDemoFallbackResponse(t *testing.T) {
	r, gw, _ := newMarketRouter(t)
	gw.Err = errTest

	req := httptest.NewRequest(http.MethodGet, "/api/markets/active", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"source":"demo"`) {
		t.Errorf("body = %s, want source demo", body)
	}
	if !strings.Contains(body, `"timestamp"`) {
		t.Errorf("body = %s, want timestamp field", body)
	}
}

func TestGetMarketUnknownIs404(t *testing.T) {
	r, gw, _ := newMarketRouter(t)
	gw.Err = errTest

	req := httptest.NewRequest(http.MethodGet, "/api/markets/424242", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"error":"not found"`) {
		t.Errorf("body = %s, want generic not found", w.Body.String())
	}
}

func TestGetMarketNonNumericIDIs400(t *testing.T) {
	r, _, _ := newMarketRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/markets/not-a-number", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCategoriesList(t *testing.T) {
	r, _, _ := newMarketRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/markets/categories/list", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"crypto"`) {
		t.Errorf("body = %s, want static category list", w.Body.String())
	}
}
