// File: internal/usecase/provision_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"course-payment-service/internal/config"
	"course-payment-service/internal/domain/model"
	"course-payment-service/internal/domain/ports/adapter"
	"course-payment-service/internal/infra/metrics"
)

// Compile-time check
var _ ProvisionUseCase = (*provisionUC)(nil)

// ProvisionUseCase sets up the gateway-side auto-debit schedule for buyers
// who chose deferred payment: one customer, one plan (policy permitting) and
// one subscription per confirmation.
type ProvisionUseCase interface {
	// Provision runs the three gateway steps. The returned result always has
	// State set; a non-nil error accompanies State == SideEffectFailed and is
	// for logging only — callers must not fail the confirmation on it.
	Provision(ctx context.Context, student model.StudentData, totalAmount int64) (model.ProvisioningResult, error)
}

type provisionUC struct {
	cfg     config.InstallmentConfig
	gateway adapter.PaymentGateway
	log     *zerolog.Logger
}

func NewProvisionUseCase(cfg config.InstallmentConfig, gateway adapter.PaymentGateway, logger *zerolog.Logger) *provisionUC {
	compLog := logger.With().Str("component", "ProvisionUC").Logger()
	return &provisionUC{cfg: cfg, gateway: gateway, log: &compLog}
}

func (u *provisionUC) Provision(ctx context.Context, student model.StudentData, totalAmount int64) (model.ProvisioningResult, error) {
	res := model.ProvisioningResult{State: model.SideEffectFailed}
	policy := string(u.cfg.Policy)

	customerID, err := u.gateway.CreateCustomer(ctx, adapter.CustomerParams{
		Name:    student.Name,
		Email:   student.Email,
		Contact: student.Phone,
	})
	if err != nil {
		metrics.ProvisioningStepError("customer")
		metrics.IncProvisioning(policy, "failed")
		return res, fmt.Errorf("create customer: %w", err)
	}
	res.CustomerID = customerID

	planID := u.cfg.PlanID
	if u.cfg.Policy != model.PolicyPreProvisioned {
		amount := u.installmentAmountPaise(totalAmount)
		planID, err = u.gateway.CreatePlan(ctx, adapter.PlanParams{
			Period:      u.cfg.Period,
			Interval:    u.cfg.Interval,
			ItemName:    "Installment Plan for " + student.CourseName,
			AmountPaise: amount,
			Currency:    "INR",
			Description: fmt.Sprintf("%d-installment plan", u.cfg.Count),
		})
		if err != nil {
			metrics.ProvisioningStepError("plan")
			metrics.IncProvisioning(policy, "failed")
			return res, fmt.Errorf("create plan: %w", err)
		}
	}
	res.PlanID = planID

	subID, err := u.gateway.CreateSubscription(ctx, adapter.SubscriptionParams{
		PlanID:     planID,
		CustomerID: customerID,
		TotalCount: u.cfg.Count,
		StartAt:    InstallmentStart(u.cfg.Schedule, u.cfg.StartDaysAhead, time.Now()),
	})
	if err != nil {
		metrics.ProvisioningStepError("subscription")
		metrics.IncProvisioning(policy, "failed")
		return res, fmt.Errorf("create subscription: %w", err)
	}
	res.SubscriptionID = subID
	res.State = model.SideEffectSucceeded

	metrics.IncProvisioning(policy, "succeeded")
	u.log.Info().
		Str("customer_id", customerID).
		Str("plan_id", planID).
		Str("subscription_id", subID).
		Str("policy", policy).
		Msg("subscription created")
	return res, nil
}

// installmentAmountPaise resolves the per-installment charge in minor units
// according to the configured policy. Never called for pre_provisioned plans.
func (u *provisionUC) installmentAmountPaise(totalAmount int64) int64 {
	if u.cfg.Policy == model.PolicyFixedTest {
		return u.cfg.FixedAmountPaise
	}
	// derived_remainder: round((total - upfront) / count) rupees, then to paise.
	remainder := decimal.NewFromInt(totalAmount - u.cfg.UpfrontAmount)
	per := remainder.Div(decimal.NewFromInt(int64(u.cfg.Count))).Round(0)
	return per.Mul(decimal.NewFromInt(100)).IntPart()
}

// InstallmentStart computes the subscription's first charge time.
// days_ahead: now + N days. next_month: first day of the next calendar month, UTC.
func InstallmentStart(schedule model.SchedulePolicy, daysAhead int, now time.Time) time.Time {
	if schedule == model.ScheduleNextMonth {
		y, m, _ := now.UTC().Date()
		return time.Date(y, m+1, 1, 0, 0, 0, 0, time.UTC)
	}
	return now.Add(time.Duration(daysAhead) * 24 * time.Hour)
}
