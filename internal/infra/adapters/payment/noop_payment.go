package payment

import (
	"context"
	"fmt"
	"sync"

	"course-payment-service/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopPaymentGateway)(nil)

// NoopPaymentGateway is a simple in-memory gateway for tests and dev mode.
type NoopPaymentGateway struct {
	mu  sync.Mutex
	seq int64

	Customers     []adapter.CustomerParams
	Plans         []adapter.PlanParams
	Subscriptions []adapter.SubscriptionParams
}

func NewNoopPaymentGateway() *NoopPaymentGateway {
	return &NoopPaymentGateway{}
}

func (g *NoopPaymentGateway) Name() string { return "noop" }

func (g *NoopPaymentGateway) next(prefix string) string {
	g.seq++
	return fmt.Sprintf("%s_noop_%d", prefix, g.seq)
}

func (g *NoopPaymentGateway) CreateCustomer(ctx context.Context, p adapter.CustomerParams) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Customers = append(g.Customers, p)
	return g.next("cust"), nil
}

func (g *NoopPaymentGateway) CreatePlan(ctx context.Context, p adapter.PlanParams) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Plans = append(g.Plans, p)
	return g.next("plan"), nil
}

func (g *NoopPaymentGateway) CreateSubscription(ctx context.Context, p adapter.SubscriptionParams) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Subscriptions = append(g.Subscriptions, p)
	return g.next("sub"), nil
}
