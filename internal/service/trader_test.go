package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"CopyTradeSync/internal/gateway"
	"CopyTradeSync/internal/model"
	"CopyTradeSync/internal/repository"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func seedProfile(t *testing.T, store *repository.MockStore, wallet string, profitLoss float64) {
	t.Helper()
	ctx := context.Background()
	user, err := store.UpsertUser(ctx, wallet, true)
	if err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	if err := store.UpsertProfile(ctx, &model.TraderProfile{UserID: user.ID, ProfitLoss: profitLoss}); err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}
}

func TestLeaderboardFallbackTiers(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		gatewayErr  error
		traders     []model.IndexerTrader
		seedStore   bool
		wantSource  string
		wantTraders int
	}{
		{
			name:        "indexer serves when reachable and non-empty",
			traders:     []model.IndexerTrader{{Address: "0xAB", WinRate: 0.6}},
			seedStore:   true,
			wantSource:  SourceIndexer,
			wantTraders: 1,
		},
		{
			name:        "indexer error falls back to store",
			gatewayErr:  errors.New("connection refused"),
			seedStore:   true,
			wantSource:  SourceDatabase,
			wantTraders: 1,
		},
		{
			name:        "indexer empty falls back to store",
			seedStore:   true,
			wantSource:  SourceDatabase,
			wantTraders: 1,
		},
		{
			name:        "indexer error and empty store fall back to fixed mock set",
			gatewayErr:  errors.New("connection refused"),
			wantSource:  SourceMock,
			wantTraders: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := repository.NewMockStore()
			gw := gateway.NewMockGateway()
			gw.Traders = tt.traders
			gw.Err = tt.gatewayErr
			if tt.seedStore {
				seedProfile(t, store, "0xstored", 100)
			}

			svc := NewTraderService(store, gw, testLogger())
			result := svc.Leaderboard(ctx, "", 10)

			if result.Source != tt.wantSource {
				t.Errorf("source = %q, want %q", result.Source, tt.wantSource)
			}
			if len(result.Traders) != tt.wantTraders {
				t.Errorf("traders = %d, want %d", len(result.Traders), tt.wantTraders)
			}
		})
	}
}

func TestLeaderboardStoreErrorFallsBackToMock(t *testing.T) {
	store := repository.NewMockStore()
	store.ErrorOnNext["ListTopProfiles"] = errors.New("db down")
	gw := gateway.NewMockGateway()
	gw.Err = errors.New("indexer down")

	svc := NewTraderService(store, gw, testLogger())
	result := svc.Leaderboard(context.Background(), "", 10)

	if result.Source != SourceMock {
		t.Fatalf("source = %q, want %q", result.Source, SourceMock)
	}
	if len(result.Traders) != 3 {
		t.Fatalf("traders = %d, want 3", len(result.Traders))
	}
}

func TestRegisterLowercasesAndKeepsLatestVisibility(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMockStore()
	svc := NewTraderService(store, gateway.NewMockGateway(), testLogger())

	boolPtr := func(b bool) *bool { return &b }

	info, err := svc.Register(ctx, &RegisterRequest{
		WalletAddress: "0xAAbbCCdd00112233445566778899aabbccddeeff",
		Categories:    []string{"sports"},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if info.Address != "0xaabbccdd00112233445566778899aabbccddeeff" {
		t.Errorf("address = %q, want lowercased", info.Address)
	}
	if len(info.Categories) != 1 || info.Categories[0] != "sports" {
		t.Errorf("categories = %v, want [sports]", info.Categories)
	}

	// 再次注册，is_public 取后写的值
	if _, err := svc.Register(ctx, &RegisterRequest{
		WalletAddress: "0xAABBCCDD00112233445566778899AABBCCDDEEFF",
		IsPublic:      boolPtr(false),
	}); err != nil {
		t.Fatalf("second Register: %v", err)
	}

	user, err := store.GetUserByWallet(ctx, "0xaabbccdd00112233445566778899aabbccddeeff")
	if err != nil {
		t.Fatalf("GetUserByWallet: %v", err)
	}
	if user.IsPublic {
		t.Error("is_public = true, want false after second register")
	}
	if len(store.Users) != 1 {
		t.Errorf("users = %d, want 1 (upsert, not duplicate)", len(store.Users))
	}
}

func TestTraderByAddressStoreMissIs404(t *testing.T) {
	store := repository.NewMockStore()
	gw := gateway.NewMockGateway()
	gw.Err = errors.New("indexer down")

	svc := NewTraderService(store, gw, testLogger())
	_, _, err := svc.TraderByAddress(context.Background(), "0xunknown")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestStatsZeroedForUnknownWallet(t *testing.T) {
	store := repository.NewMockStore()
	svc := NewTraderService(store, gateway.NewMockGateway(), testLogger())

	info, err := svc.Stats(context.Background(), "0xNOBODY")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if info.Address != "0xnobody" {
		t.Errorf("address = %q, want lowercased", info.Address)
	}
	if info.TotalTrades != 0 || info.WinRate != 0 || info.ProfitLoss != 0 {
		t.Errorf("stats not zeroed: %+v", info)
	}
}
