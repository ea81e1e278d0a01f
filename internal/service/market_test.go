package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"CopyTradeSync/internal/gateway"
	"CopyTradeSync/internal/model"
	"CopyTradeSync/internal/repository"
)

func TestActiveMarketsFallbackToDemo(t *testing.T) {
	store := repository.NewMockStore()
	gw := gateway.NewMockGateway()
	gw.Err = errors.New("indexer down")

	svc := NewMarketService(store, store, gw, testLogger())
	result := svc.ActiveMarkets(context.Background(), "", 20)

	if result.Source != SourceDemo {
		t.Fatalf("source = %q, want %q", result.Source, SourceDemo)
	}
	if len(result.Markets) != 3 {
		t.Fatalf("markets = %d, want fixed 3-entry demo set", len(result.Markets))
	}
	wantIDs := map[uint64]bool{1: true, 2: true, 3: true}
	for _, m := range result.Markets {
		if !wantIDs[m.MarketID] {
			t.Errorf("unexpected demo market id %d", m.MarketID)
		}
	}
}

func TestActiveMarketsPrefersStoreOverDemo(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMockStore()
	gw := gateway.NewMockGateway()
	gw.Err = errors.New("indexer down")

	market := &model.Market{
		MarketID: 42,
		Question: "Will it rain tomorrow?",
		Category: "science",
		EndTime:  time.Now().Add(24 * time.Hour),
	}
	if err := store.CreateMarket(ctx, market); err != nil {
		t.Fatalf("CreateMarket: %v", err)
	}

	svc := NewMarketService(store, store, gw, testLogger())
	result := svc.ActiveMarkets(ctx, "", 20)

	if result.Source != SourceDatabase {
		t.Fatalf("source = %q, want %q", result.Source, SourceDatabase)
	}
	if len(result.Markets) != 1 || result.Markets[0].MarketID != 42 {
		t.Fatalf("markets = %+v, want the stored market", result.Markets)
	}
}

func TestMarketByIDMissIs404(t *testing.T) {
	store := repository.NewMockStore()
	gw := gateway.NewMockGateway()
	gw.Err = errors.New("indexer down")

	svc := NewMarketService(store, store, gw, testLogger())
	_, err := svc.MarketByID(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateMarketChainFailureAborts(t *testing.T) {
	store := repository.NewMockStore()
	gw := gateway.NewMockGateway()
	gw.Err = errors.New("execution reverted")

	svc := NewMarketService(store, store, gw, testLogger())
	_, err := svc.CreateMarket(context.Background(), &CreateMarketParams{
		WalletAddress: "0xCreator",
		Question:      "Will ETH flip BTC?",
		Category:      "crypto",
		DurationHours: 48,
	})
	if err == nil {
		t.Fatal("want error when chain write fails")
	}
	if len(store.Markets) != 0 {
		t.Error("market mirrored locally despite chain failure")
	}
}

func TestPlaceBetMirrorsTradeAndStake(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMockStore()
	gw := gateway.NewMockGateway()

	market := &model.Market{MarketID: 7, Question: "q", Category: "crypto", EndTime: time.Now().Add(time.Hour)}
	if err := store.CreateMarket(ctx, market); err != nil {
		t.Fatalf("CreateMarket: %v", err)
	}

	svc := NewMarketService(store, store, gw, testLogger())
	result, err := svc.PlaceBet(ctx, 7, &PlaceBetParams{
		WalletAddress: "0xBettor",
		Prediction:    true,
		Amount:        25,
	})
	if err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}
	if result.TxHash != gw.TxHash {
		t.Errorf("txHash = %q, want %q", result.TxHash, gw.TxHash)
	}
	if len(store.Trades) != 1 {
		t.Fatalf("trades = %d, want mirrored row", len(store.Trades))
	}
	if store.Trades[0].UserWallet != "0xbettor" {
		t.Errorf("trade wallet = %q, want lowercased", store.Trades[0].UserWallet)
	}
	if market.YesAmount != 25 {
		t.Errorf("yes_amount = %v, want 25", market.YesAmount)
	}
	if gw.LastPlaceBet == nil || gw.LastPlaceBet.Bettor != "0xbettor" {
		t.Errorf("chain request bettor = %+v, want lowercased wallet", gw.LastPlaceBet)
	}
}

func TestPlaceBetUnknownMarketIs404(t *testing.T) {
	store := repository.NewMockStore()
	gw := gateway.NewMockGateway()

	svc := NewMarketService(store, store, gw, testLogger())
	_, err := svc.PlaceBet(context.Background(), 12345, &PlaceBetParams{
		WalletAddress: "0xBettor",
		Prediction:    false,
		Amount:        10,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if gw.Calls["PlaceBet"] != 0 {
		t.Error("chain write attempted for unknown market")
	}
}
