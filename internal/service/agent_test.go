package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"CopyTradeSync/internal/repository"
	"CopyTradeSync/internal/x402"
)

func TestCreateAgentFallsBackToDemoPlaceholder(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMockStore()
	agents := repository.NewMockAgentStore()
	prov := x402.NewMockProvisioner()
	prov.Err = errors.New("facilitator unreachable")

	svc := NewAgentService(agents, store, prov, testLogger())
	info, err := svc.Create(ctx, &CreateAgentParams{
		WalletAddress: "0xOwner",
		TraderAddress: "0xTrader",
		PerTradeLimit: 5,
		TotalLimit:    100,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !info.Demo {
		t.Error("demo = false, want placeholder marked demo=true")
	}
	if !strings.HasPrefix(info.AgentAddress, "0x") {
		t.Errorf("agentAddress = %q, want fabricated 0x address", info.AgentAddress)
	}
	if len(agents.Agents) != 1 {
		t.Fatalf("agents = %d, want placeholder persisted", len(agents.Agents))
	}
}

func TestCreateAgentRejectsNegativeLimits(t *testing.T) {
	svc := NewAgentService(repository.NewMockAgentStore(), repository.NewMockStore(), x402.NewMockProvisioner(), testLogger())

	_, err := svc.Create(context.Background(), &CreateAgentParams{
		WalletAddress: "0xOwner",
		PerTradeLimit: -1,
		TotalLimit:    100,
	})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestAuthorizeDemoFallbackAndAccumulation(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMockStore()
	agents := repository.NewMockAgentStore()
	prov := x402.NewMockProvisioner()

	svc := NewAgentService(agents, store, prov, testLogger())
	created, err := svc.Create(ctx, &CreateAgentParams{WalletAddress: "0xOwner", TotalLimit: 100})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	result, err := svc.Authorize(ctx, created.ID, "0xOwner", 40)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if result.Demo || result.AuthorizationID != prov.AuthorizationID {
		t.Errorf("result = %+v, want facilitator credential", result)
	}
	if agents.Agents[created.ID].AuthorizedAmount != 40 {
		t.Errorf("authorized = %v, want 40", agents.Agents[created.ID].AuthorizedAmount)
	}

	// 外部授权失败降级为 demo 凭据，额度仍然累加
	prov.Err = errors.New("facilitator unreachable")
	result, err = svc.Authorize(ctx, created.ID, "0xOwner", 10)
	if err != nil {
		t.Fatalf("Authorize with unreachable facilitator: %v", err)
	}
	if !result.Demo || !strings.HasPrefix(result.AuthorizationID, "demo-auth-") {
		t.Errorf("result = %+v, want demo placeholder credential", result)
	}
	if agents.Agents[created.ID].AuthorizedAmount != 50 {
		t.Errorf("authorized = %v, want 50", agents.Agents[created.ID].AuthorizedAmount)
	}
}

func TestToggleByNonOwnerIs404(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMockStore()
	agents := repository.NewMockAgentStore()

	svc := NewAgentService(agents, store, x402.NewMockProvisioner(), testLogger())
	created, err := svc.Create(ctx, &CreateAgentParams{WalletAddress: "0xOwner"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.EnsureUser(ctx, "0xother"); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}

	if _, err := svc.Toggle(ctx, created.ID, "0xOther"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRecordExecutionAddsSpent(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMockStore()
	agents := repository.NewMockAgentStore()

	svc := NewAgentService(agents, store, x402.NewMockProvisioner(), testLogger())
	created, err := svc.Create(ctx, &CreateAgentParams{WalletAddress: "0xOwner", TotalLimit: 100})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	info, err := svc.RecordExecution(ctx, &ExecutionReport{
		AgentID:  created.ID,
		MarketID: 7,
		Amount:   12.5,
		TxHash:   "0xexec1",
	})
	if err != nil {
		t.Fatalf("RecordExecution: %v", err)
	}
	if info.Status != "executed" {
		t.Errorf("status = %q, want default executed", info.Status)
	}
	if agents.Agents[created.ID].SpentAmount != 12.5 {
		t.Errorf("spent = %v, want 12.5", agents.Agents[created.ID].SpentAmount)
	}

	// 未知代理404
	if _, err := svc.RecordExecution(ctx, &ExecutionReport{AgentID: 999, MarketID: 1, Amount: 1, TxHash: "0xexec2"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for unknown agent", err)
	}
}
