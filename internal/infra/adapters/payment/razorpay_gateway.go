// File: internal/infra/adapters/payment/razorpay_gateway.go
package payment

import (
	"context"
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"course-payment-service/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*RazorpayGateway)(nil)

// RazorpayGateway implements adapter.PaymentGateway on the official SDK.
// The SDK ignores the request context (it manages its own HTTP client), so
// the ctx parameters gate only our side of the call.
type RazorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(keyID, keySecret string) (*RazorpayGateway, error) {
	if keyID == "" || keySecret == "" {
		return nil, errors.New("razorpay key id/secret empty")
	}
	return &RazorpayGateway{client: razorpay.NewClient(keyID, keySecret)}, nil
}

func (g *RazorpayGateway) Name() string { return "razorpay" }

func (g *RazorpayGateway) CreateCustomer(ctx context.Context, p adapter.CustomerParams) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data := map[string]interface{}{
		"name":    p.Name,
		"email":   p.Email,
		"contact": p.Contact,
	}
	res, err := g.client.Customer.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay customer create: %w", err)
	}
	return entityID(res, "customer")
}

func (g *RazorpayGateway) CreatePlan(ctx context.Context, p adapter.PlanParams) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data := map[string]interface{}{
		"period":   p.Period,
		"interval": p.Interval,
		"item": map[string]interface{}{
			"name":        p.ItemName,
			"amount":      p.AmountPaise,
			"currency":    p.Currency,
			"description": p.Description,
		},
	}
	res, err := g.client.Plan.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay plan create: %w", err)
	}
	return entityID(res, "plan")
}

func (g *RazorpayGateway) CreateSubscription(ctx context.Context, p adapter.SubscriptionParams) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data := map[string]interface{}{
		"plan_id":     p.PlanID,
		"customer_id": p.CustomerID,
		"total_count": p.TotalCount,
	}
	if !p.StartAt.IsZero() {
		data["start_at"] = p.StartAt.Unix()
	}
	res, err := g.client.Subscription.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay subscription create: %w", err)
	}
	return entityID(res, "subscription")
}

// entityID pulls the "id" field out of the SDK's untyped response map.
func entityID(res map[string]interface{}, kind string) (string, error) {
	id, ok := res["id"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("razorpay %s create: response missing id", kind)
	}
	return id, nil
}
