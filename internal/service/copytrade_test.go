package service

import (
	"context"
	"errors"
	"testing"

	"CopyTradeSync/internal/repository"
)

func newCopyTradeService(store *repository.MockStore) *CopyTradeService {
	return NewCopyTradeService(store, repository.NewMockAgentStore(), store, testLogger())
}

func TestCreateCopyTradeValidation(t *testing.T) {
	ctx := context.Background()
	intPtr := func(i int) *int { return &i }

	tests := []struct {
		name    string
		params  CreateCopyTradeParams
		wantErr bool
	}{
		{
			name:   "valid relationship",
			params: CreateCopyTradeParams{FollowerAddress: "0xA1", TraderAddress: "0xB2", Amount: 10},
		},
		{
			name:    "cannot follow yourself regardless of case",
			params:  CreateCopyTradeParams{FollowerAddress: "0xAAA", TraderAddress: "0xaaa", Amount: 10},
			wantErr: true,
		},
		{
			name:    "amount must be positive",
			params:  CreateCopyTradeParams{FollowerAddress: "0xA1", TraderAddress: "0xB2", Amount: 0},
			wantErr: true,
		},
		{
			name:    "maxTrades must be positive when set",
			params:  CreateCopyTradeParams{FollowerAddress: "0xA1", TraderAddress: "0xB2", Amount: 10, MaxTrades: intPtr(-1)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newCopyTradeService(repository.NewMockStore())
			_, err := svc.Create(ctx, &tt.params)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Fatalf("err = %v, want ErrInvalidArgument", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
		})
	}
}

func TestUpdateByNonOwnerIs404(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMockStore()
	svc := newCopyTradeService(store)

	created, err := svc.Create(ctx, &CreateCopyTradeParams{
		FollowerAddress: "0xFollower", TraderAddress: "0xTrader", Amount: 10,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// 他人钱包（需先注册成用户，否则同样404）
	if _, err := store.EnsureUser(ctx, "0xintruder"); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}

	amount := 99.0
	_, err = svc.Update(ctx, created.ID, "0xIntruder", &UpdateCopyTradeParams{Amount: &amount})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	// 记录不能被部分修改
	ct, err := svc.copyTrades.GetOwned(ctx, created.ID, store.Users[1].ID)
	if err != nil {
		t.Fatalf("GetOwned: %v", err)
	}
	if ct.Amount != 10 {
		t.Errorf("amount = %v, want unchanged 10", ct.Amount)
	}
}

func TestDeactivateExcludesFromFollowingList(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMockStore()
	svc := newCopyTradeService(store)

	created, err := svc.Create(ctx, &CreateCopyTradeParams{
		FollowerAddress: "0xFollower", TraderAddress: "0xTrader", Amount: 10,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	before, err := svc.ListByWallet(ctx, "0xFollower", "following")
	if err != nil {
		t.Fatalf("ListByWallet: %v", err)
	}
	if len(before) != 1 {
		t.Fatalf("following = %d, want 1", len(before))
	}

	if err := svc.Deactivate(ctx, created.ID, "0xFollower"); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	after, err := svc.ListByWallet(ctx, "0xFollower", "following")
	if err != nil {
		t.Fatalf("ListByWallet after deactivate: %v", err)
	}
	if len(after) != 0 {
		t.Fatalf("following = %d after deactivate, want 0", len(after))
	}
}

func TestListByUnknownWalletReturnsEmptyNot404(t *testing.T) {
	svc := newCopyTradeService(repository.NewMockStore())

	infos, err := svc.ListByWallet(context.Background(), "0xghost", "followers")
	if err != nil {
		t.Fatalf("ListByWallet: %v", err)
	}
	if infos == nil || len(infos) != 0 {
		t.Fatalf("infos = %v, want empty non-nil list", infos)
	}
}
