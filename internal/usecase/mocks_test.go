//go:build !integration

// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"course-payment-service/internal/domain"
	"course-payment-service/internal/domain/model"
	"course-payment-service/internal/domain/ports/adapter"
	"course-payment-service/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// ---- Mock ConfirmationRepository ----

type mockConfirmationRepo struct {
	mu    sync.Mutex
	store map[string]*model.ConfirmationRecord

	SaveFunc           func(ctx context.Context, tx repository.Tx, rec *model.ConfirmationRecord) error
	WasProvisionedFunc func(ctx context.Context, tx repository.Tx, orderID, paymentID string) (bool, error)
}

var _ repository.ConfirmationRepository = (*mockConfirmationRepo)(nil)

func newMockConfirmationRepo() *mockConfirmationRepo {
	return &mockConfirmationRepo{store: make(map[string]*model.ConfirmationRecord)}
}

func (m *mockConfirmationRepo) Save(ctx context.Context, tx repository.Tx, rec *model.ConfirmationRecord) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, rec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.store[rec.ID] = &cp
	return nil
}

func (m *mockConfirmationRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ConfirmationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *mockConfirmationRepo) UpdateNotifyState(ctx context.Context, tx repository.Tx, id string, state model.SideEffectState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	rec.NotifyState = state
	return nil
}

func (m *mockConfirmationRepo) UpdateProvisionState(ctx context.Context, tx repository.Tx, id string, state model.SideEffectState, customerID, planID, subscriptionID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	rec.ProvisionState = state
	if customerID != nil {
		rec.CustomerID = customerID
	}
	if planID != nil {
		rec.GatewayPlanID = planID
	}
	if subscriptionID != nil {
		rec.SubscriptionID = subscriptionID
	}
	return nil
}

func (m *mockConfirmationRepo) WasProvisioned(ctx context.Context, tx repository.Tx, orderID, paymentID string) (bool, error) {
	if m.WasProvisionedFunc != nil {
		return m.WasProvisionedFunc(ctx, tx, orderID, paymentID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.store {
		if rec.OrderID == orderID && rec.PaymentID == paymentID && rec.ProvisionState == model.SideEffectSucceeded {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockConfirmationRepo) ListRecent(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.ConfirmationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.ConfirmationRecord, 0, len(m.store))
	for _, rec := range m.store {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockConfirmationRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.ConfirmationStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[model.ConfirmationStatus]int)
	for _, rec := range m.store {
		out[rec.Status]++
	}
	return out, nil
}

func (m *mockConfirmationRepo) SumVerifiedByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, rec := range m.store {
		if rec.Status == model.ConfirmationStatusVerified {
			sum += rec.TotalAmount
		}
	}
	return sum, nil
}

// get returns a copy of the stored record; nil when absent.
func (m *mockConfirmationRepo) get(id string) *model.ConfirmationRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.store[id]
	if !ok {
		return nil
	}
	cp := *rec
	return &cp
}

// ---- Mock PaymentGateway ----

type mockGateway struct {
	mu            sync.Mutex
	Customers     []adapter.CustomerParams
	Plans         []adapter.PlanParams
	Subscriptions []adapter.SubscriptionParams

	CreateCustomerFunc     func(ctx context.Context, p adapter.CustomerParams) (string, error)
	CreatePlanFunc         func(ctx context.Context, p adapter.PlanParams) (string, error)
	CreateSubscriptionFunc func(ctx context.Context, p adapter.SubscriptionParams) (string, error)
}

var _ adapter.PaymentGateway = (*mockGateway)(nil)

func (m *mockGateway) Name() string { return "mock" }

func (m *mockGateway) CreateCustomer(ctx context.Context, p adapter.CustomerParams) (string, error) {
	if m.CreateCustomerFunc != nil {
		return m.CreateCustomerFunc(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Customers = append(m.Customers, p)
	return "cust_mock_1", nil
}

func (m *mockGateway) CreatePlan(ctx context.Context, p adapter.PlanParams) (string, error) {
	if m.CreatePlanFunc != nil {
		return m.CreatePlanFunc(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Plans = append(m.Plans, p)
	return "plan_mock_1", nil
}

func (m *mockGateway) CreateSubscription(ctx context.Context, p adapter.SubscriptionParams) (string, error) {
	if m.CreateSubscriptionFunc != nil {
		return m.CreateSubscriptionFunc(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Subscriptions = append(m.Subscriptions, p)
	return "sub_mock_1", nil
}

// ---- Mock LedgerNotifier ----

type mockNotifier struct {
	mu         sync.Mutex
	configured bool
	Sent       []model.LedgerRecord

	SendFunc func(ctx context.Context, rec model.LedgerRecord) error
}

var _ adapter.LedgerNotifier = (*mockNotifier)(nil)

func (m *mockNotifier) Configured() bool { return m.configured }

func (m *mockNotifier) Send(ctx context.Context, rec model.LedgerRecord) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, rec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, rec)
	return nil
}

// ---- Synchronous TaskRunner ----

// syncRunner executes submitted tasks inline so tests observe the side
// effects deterministically.
type syncRunner struct {
	submitted int
}

var _ TaskRunner = (*syncRunner)(nil)

func (r *syncRunner) Submit(task func(ctx context.Context) error) error {
	r.submitted++
	return task(context.Background())
}

// failRunner rejects every submission, as a saturated or stopped pool would.
type failRunner struct{}

var _ TaskRunner = (*failRunner)(nil)

func (r *failRunner) Submit(task func(ctx context.Context) error) error {
	return errors.New("worker queue full")
}
