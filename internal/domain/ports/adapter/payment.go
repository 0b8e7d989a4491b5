package adapter

import (
	"context"
	"time"
)

// CustomerParams identifies the buyer at the gateway. No dedup key exists;
// the gateway will happily create duplicates for the same person.
type CustomerParams struct {
	Name    string
	Email   string
	Contact string
}

// PlanParams describes a recurring-charge plan (gateway "plan" + "item").
type PlanParams struct {
	Period      string // e.g. "weekly", "monthly"
	Interval    int    // charge every N periods
	ItemName    string
	AmountPaise int64 // minor currency unit
	Currency    string
	Description string
}

// SubscriptionParams links a plan to a customer for a bounded number of
// charges. A zero StartAt means the gateway starts charging immediately.
type SubscriptionParams struct {
	PlanID     string
	CustomerID string
	TotalCount int
	StartAt    time.Time
}

// PaymentGateway is the hex port for the recurring-charge provider.
type PaymentGateway interface {
	Name() string

	// CreateCustomer registers the buyer and returns the gateway customer id.
	CreateCustomer(ctx context.Context, p CustomerParams) (string, error)
	// CreatePlan creates a billing plan and returns the gateway plan id.
	CreatePlan(ctx context.Context, p PlanParams) (string, error)
	// CreateSubscription creates the auto-debit schedule and returns its id.
	CreateSubscription(ctx context.Context, p SubscriptionParams) (string, error)
}
