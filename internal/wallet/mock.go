package wallet

import (
	"context"
	"math/rand/v2"
	"time"

	dErrors "bitid/pkg/domain-errors"
	"bitid/pkg/platform/sentinel"
)

// OutcomeProvider decides whether a mock connection attempt succeeds.
// Tests inject a deterministic one; the default fails roughly one attempt
// in ten to keep the failure path exercised during development.
type OutcomeProvider func() error

func randomOutcome() error {
	if rand.Float64() < 0.1 {
		return dErrors.New(dErrors.CodeUnavailable, "failed to connect to wallet")
	}
	return nil
}

// MockConnector simulates a wallet handshake: a fixed delay, then the
// outcome provider decides, then a hardcoded address is returned.
type MockConnector struct {
	address string
	delay   time.Duration
	outcome OutcomeProvider
}

type MockOption func(*MockConnector)

func WithOutcomeProvider(p OutcomeProvider) MockOption {
	return func(c *MockConnector) { c.outcome = p }
}

func NewMockConnector(address string, delay time.Duration, opts ...MockOption) *MockConnector {
	c := &MockConnector{
		address: address,
		delay:   delay,
		outcome: randomOutcome,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MockConnector) Connect(ctx context.Context) (Account, error) {
	timer := time.NewTimer(c.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Account{}, dErrors.Wrap(sentinel.ErrCancelled, dErrors.CodeBadRequest, "wallet connection cancelled")
	case <-timer.C:
	}

	if err := c.outcome(); err != nil {
		return Account{}, err
	}
	return Account{Address: c.address, Provider: "mock"}, nil
}

// Disconnect is immediate; the mock holds no session state.
func (c *MockConnector) Disconnect(ctx context.Context) error {
	return nil
}
