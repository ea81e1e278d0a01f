package x402

import (
	"context"
	"sync"

	"CopyTradeSync/internal/interfaces"
)

// MockProvisioner 可编程的 x402 代理服务，测试用
type MockProvisioner struct {
	mu sync.Mutex

	AgentAddress    string
	AuthorizationID string
	Err             error

	Calls      map[string]int
	LastToggle *bool
}

var _ interfaces.AgentProvisioner = (*MockProvisioner)(nil)

// NewMockProvisioner 创建测试代理服务
func NewMockProvisioner() *MockProvisioner {
	return &MockProvisioner{
		AgentAddress:    "0xagent0000000000000000000000000000000001",
		AuthorizationID: "auth-mock-1",
		Calls:           make(map[string]int),
	}
}

func (p *MockProvisioner) track(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls[name]++
	return p.Err
}

func (p *MockProvisioner) ProvisionAgent(ctx context.Context, req *interfaces.ProvisionAgentRequest) (*interfaces.ProvisionedAgent, error) {
	if err := p.track("ProvisionAgent"); err != nil {
		return nil, err
	}
	return &interfaces.ProvisionedAgent{AgentAddress: p.AgentAddress}, nil
}

func (p *MockProvisioner) AuthorizeAgent(ctx context.Context, agentAddress string, amount float64) (string, error) {
	if err := p.track("AuthorizeAgent"); err != nil {
		return "", err
	}
	return p.AuthorizationID, nil
}

func (p *MockProvisioner) ToggleAgent(ctx context.Context, agentAddress string, active bool) error {
	if err := p.track("ToggleAgent"); err != nil {
		return err
	}
	p.mu.Lock()
	p.LastToggle = &active
	p.mu.Unlock()
	return nil
}
