package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"CopyTradeSync/internal/repository"
	"CopyTradeSync/internal/service"

	"github.com/gin-gonic/gin"
)

func newCopyTradeRouter(t *testing.T) (*gin.Engine, *repository.MockStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMockStore()
	svc := service.NewCopyTradeService(store, repository.NewMockAgentStore(), store, testLogger())
	h := NewCopyTradeHandler(svc, testLogger())

	r := gin.New()
	r.POST("/api/copy-trades", h.Create)
	r.GET("/api/copy-trades/user/:address", h.ListByUser)
	r.PUT("/api/copy-trades/:id", h.Update)
	r.DELETE("/api/copy-trades/:id", h.Deactivate)
	r.GET("/api/copy-trades/:id/executions", h.Executions)
	return r, store
}

func createRelationship(t *testing.T, r *gin.Engine) uint64 {
	t.Helper()
	body := `{"followerAddress":"0xFollower","traderAddress":"0xTrader","amount":10}`
	req := httptest.NewRequest(http.MethodPost, "/api/copy-trades", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		CopyTrade struct {
			ID uint64 `json:"id"`
		} `json:"copyTrade"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return resp.CopyTrade.ID
}

func TestUpdateCopyTradeNonOwnerIs404(t *testing.T) {
	r, _ := newCopyTradeRouter(t)
	id := createRelationship(t, r)

	// 注册一个别的钱包
	body := `{"followerAddress":"0xIntruder","traderAddress":"0xSomeone","amount":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/copy-trades", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(httptest.NewRecorder(), req)

	update := `{"walletAddress":"0xIntruder","amount":999}`
	req = httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/copy-trades/%d", id), strings.NewReader(update))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestDeactivateThenListExcludes(t *testing.T) {
	r, _ := newCopyTradeRouter(t)
	id := createRelationship(t, r)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/copy-trades/%d?walletAddress=0xFollower", id), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/copy-trades/user/0xFollower?type=following", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}

	var resp struct {
		CopyTrades []json.RawMessage `json:"copyTrades"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.CopyTrades) != 0 {
		t.Fatalf("copyTrades = %d after deactivate, want 0", len(resp.CopyTrades))
	}
}

func TestListInvalidTypeIs400(t *testing.T) {
	r, _ := newCopyTradeRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/copy-trades/user/0xFollower?type=friends", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestExecutionsRequireWalletAddress(t *testing.T) {
	r, _ := newCopyTradeRouter(t)
	id := createRelationship(t, r)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/copy-trades/%d/executions", id), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
