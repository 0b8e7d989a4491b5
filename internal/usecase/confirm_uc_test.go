//go:build !integration

// File: internal/usecase/confirm_uc_test.go
package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"course-payment-service/internal/domain"
	"course-payment-service/internal/domain/model"
	"course-payment-service/internal/domain/ports/adapter"
	"course-payment-service/internal/domain/ports/repository"
	"course-payment-service/internal/infra/metrics"
)

const testSecret = "test_key_secret"

func signedConfirmation(paymentType model.PaymentType) *model.PaymentConfirmation {
	conf := &model.PaymentConfirmation{
		OrderID:     "order_MNq1vPcdFQlyup",
		PaymentID:   "pay_MNq2AZ8ZYsvvJE",
		TotalAmount: 1325,
		Student:     testStudent(),
	}
	conf.Student.PaymentType = paymentType
	conf.Signature = signFor(conf.OrderID, conf.PaymentID, testSecret)
	return conf
}

func newConfirmFixture(t *testing.T, notifierConfigured bool) (*confirmUC, *mockConfirmationRepo, *mockGateway, *mockNotifier, *syncRunner) {
	t.Helper()
	logger := newTestLogger()
	repo := newMockConfirmationRepo()
	gw := &mockGateway{}
	notifier := &mockNotifier{configured: notifierConfigured}
	runner := &syncRunner{}

	notify := NewNotifyUseCase(notifier, logger)
	provision := NewProvisionUseCase(fixedTestConfig(), gw, logger)
	uc := NewConfirmUseCase(testSecret, repo, notify, provision, runner, model.PolicyFixedTest, false, logger)
	return uc, repo, gw, notifier, runner
}

func TestConfirmUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("should reject a bad signature and record it", func(t *testing.T) {
		uc, repo, gw, notifier, _ := newConfirmFixture(t, true)
		conf := signedConfirmation(model.PaymentTypeInstallment)
		conf.Signature = "deadbeef"

		rec, err := uc.Confirm(ctx, conf)
		if !errors.Is(err, domain.ErrInvalidSignature) {
			t.Fatalf("err = %v, want ErrInvalidSignature", err)
		}
		if rec.Status != model.ConfirmationStatusRejected {
			t.Fatalf("status = %q, want rejected", rec.Status)
		}
		stored := repo.get(rec.ID)
		if stored == nil || stored.Status != model.ConfirmationStatusRejected {
			t.Fatal("expected the rejection to be persisted")
		}
		if len(notifier.Sent) != 0 || len(gw.Customers) != 0 {
			t.Fatal("expected no side effects on rejection")
		}
	})

	t.Run("should notify and provision an installment payment", func(t *testing.T) {
		uc, repo, gw, notifier, runner := newConfirmFixture(t, true)

		rec, err := uc.Confirm(ctx, signedConfirmation(model.PaymentTypeInstallment))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Status != model.ConfirmationStatusVerified {
			t.Fatalf("status = %q, want verified", rec.Status)
		}
		if runner.submitted != 2 {
			t.Fatalf("submitted tasks = %d, want 2", runner.submitted)
		}
		if len(notifier.Sent) != 1 {
			t.Fatalf("ledger sends = %d, want 1", len(notifier.Sent))
		}
		if len(gw.Subscriptions) != 1 {
			t.Fatalf("subscriptions = %d, want 1", len(gw.Subscriptions))
		}
		stored := repo.get(rec.ID)
		if stored.NotifyState != model.SideEffectSucceeded {
			t.Fatalf("notify state = %q, want succeeded", stored.NotifyState)
		}
		if stored.ProvisionState != model.SideEffectSucceeded {
			t.Fatalf("provision state = %q, want succeeded", stored.ProvisionState)
		}
		if stored.SubscriptionID == nil || *stored.SubscriptionID != "sub_mock_1" {
			t.Fatal("expected the subscription id on the audit row")
		}
	})

	t.Run("should skip provisioning for a full payment", func(t *testing.T) {
		uc, repo, gw, _, _ := newConfirmFixture(t, true)

		rec, err := uc.Confirm(ctx, signedConfirmation(model.PaymentTypeFull))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(gw.Customers) != 0 {
			t.Fatal("expected no gateway calls for a full payment")
		}
		if got := repo.get(rec.ID).ProvisionState; got != model.SideEffectSkipped {
			t.Fatalf("provision state = %q, want skipped", got)
		}
	})

	t.Run("should skip notification when no ledger endpoint is configured", func(t *testing.T) {
		uc, repo, _, notifier, _ := newConfirmFixture(t, false)

		rec, err := uc.Confirm(ctx, signedConfirmation(model.PaymentTypeFull))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(notifier.Sent) != 0 {
			t.Fatal("expected no ledger send")
		}
		if got := repo.get(rec.ID).NotifyState; got != model.SideEffectSkipped {
			t.Fatalf("notify state = %q, want skipped", got)
		}
	})

	t.Run("should still acknowledge when provisioning fails", func(t *testing.T) {
		uc, repo, gw, _, _ := newConfirmFixture(t, false)
		gw.CreateSubscriptionFunc = func(ctx context.Context, p adapter.SubscriptionParams) (string, error) {
			return "", errors.New("gateway down")
		}

		rec, err := uc.Confirm(ctx, signedConfirmation(model.PaymentTypeInstallment))
		if err != nil {
			t.Fatalf("confirmation must not fail on provisioning: %v", err)
		}
		if rec.Status != model.ConfirmationStatusVerified {
			t.Fatalf("status = %q, want verified", rec.Status)
		}
		stored := repo.get(rec.ID)
		if stored.ProvisionState != model.SideEffectFailed {
			t.Fatalf("provision state = %q, want failed", stored.ProvisionState)
		}
		// The ids produced before the failure still land on the audit row.
		if stored.CustomerID == nil || stored.GatewayPlanID == nil {
			t.Fatal("expected partial gateway ids on the audit row")
		}
		if stored.SubscriptionID != nil {
			t.Fatal("expected no subscription id after the failed step")
		}
	})

	t.Run("should still acknowledge when the ledger send fails", func(t *testing.T) {
		uc, repo, _, notifier, _ := newConfirmFixture(t, true)
		notifier.SendFunc = func(ctx context.Context, rec model.LedgerRecord) error {
			return errors.New("webhook 500")
		}

		rec, err := uc.Confirm(ctx, signedConfirmation(model.PaymentTypeFull))
		if err != nil {
			t.Fatalf("confirmation must not fail on the ledger: %v", err)
		}
		if got := repo.get(rec.ID).NotifyState; got != model.SideEffectFailed {
			t.Fatalf("notify state = %q, want failed", got)
		}
	})

	t.Run("should still acknowledge when the audit save fails", func(t *testing.T) {
		uc, repo, _, _, _ := newConfirmFixture(t, false)
		repo.SaveFunc = func(ctx context.Context, tx repository.Tx, rec *model.ConfirmationRecord) error {
			return errors.New("db down")
		}

		rec, err := uc.Confirm(ctx, signedConfirmation(model.PaymentTypeFull))
		if err != nil {
			t.Fatalf("confirmation must not fail on storage: %v", err)
		}
		if rec.Status != model.ConfirmationStatusVerified {
			t.Fatalf("status = %q, want verified", rec.Status)
		}
	})

	t.Run("should skip a replay when idempotent provisioning is on", func(t *testing.T) {
		logger := newTestLogger()
		repo := newMockConfirmationRepo()
		gw := &mockGateway{}
		notifier := &mockNotifier{}
		runner := &syncRunner{}
		notify := NewNotifyUseCase(notifier, logger)
		provision := NewProvisionUseCase(fixedTestConfig(), gw, logger)
		uc := NewConfirmUseCase(testSecret, repo, notify, provision, runner, model.PolicyFixedTest, true, logger)

		skippedBefore := testutil.ToFloat64(metrics.ProvisioningTotal.WithLabelValues("fixed_test", "skipped"))

		first, err := uc.Confirm(ctx, signedConfirmation(model.PaymentTypeInstallment))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := uc.Confirm(ctx, signedConfirmation(model.PaymentTypeInstallment))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(gw.Subscriptions) != 1 {
			t.Fatalf("subscriptions = %d, want 1 (replay must not re-provision)", len(gw.Subscriptions))
		}
		if got := repo.get(second.ID).ProvisionState; got != model.SideEffectSkipped {
			t.Fatalf("replay provision state = %q, want skipped", got)
		}
		if got := repo.get(first.ID).ProvisionState; got != model.SideEffectSucceeded {
			t.Fatalf("first provision state = %q, want succeeded", got)
		}
		skippedAfter := testutil.ToFloat64(metrics.ProvisioningTotal.WithLabelValues("fixed_test", "skipped"))
		if skippedAfter != skippedBefore+1 {
			t.Fatalf("skipped counter delta = %v, want 1", skippedAfter-skippedBefore)
		}
	})

	t.Run("should mark side effects failed when the pool rejects the task", func(t *testing.T) {
		logger := newTestLogger()
		repo := newMockConfirmationRepo()
		gw := &mockGateway{}
		notifier := &mockNotifier{configured: true}
		notify := NewNotifyUseCase(notifier, logger)
		provision := NewProvisionUseCase(fixedTestConfig(), gw, logger)
		uc := NewConfirmUseCase(testSecret, repo, notify, provision, &failRunner{}, model.PolicyFixedTest, false, logger)

		rec, err := uc.Confirm(ctx, signedConfirmation(model.PaymentTypeInstallment))
		if err != nil {
			t.Fatalf("confirmation must not fail on a saturated pool: %v", err)
		}
		if rec.Status != model.ConfirmationStatusVerified {
			t.Fatalf("status = %q, want verified", rec.Status)
		}
		stored := repo.get(rec.ID)
		// Neither state may stay pending: nothing will ever pick the work up.
		if stored.NotifyState != model.SideEffectFailed {
			t.Fatalf("notify state = %q, want failed", stored.NotifyState)
		}
		if stored.ProvisionState != model.SideEffectFailed {
			t.Fatalf("provision state = %q, want failed", stored.ProvisionState)
		}
	})

	t.Run("should re-provision a replay when idempotency is off", func(t *testing.T) {
		uc, _, gw, _, _ := newConfirmFixture(t, false)

		if _, err := uc.Confirm(ctx, signedConfirmation(model.PaymentTypeInstallment)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := uc.Confirm(ctx, signedConfirmation(model.PaymentTypeInstallment)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(gw.Subscriptions) != 2 {
			t.Fatalf("subscriptions = %d, want 2 (default behavior re-provisions)", len(gw.Subscriptions))
		}
	})
}

func TestNotifyUseCase(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()

	t.Run("should project the confirmation into a ledger record", func(t *testing.T) {
		notifier := &mockNotifier{configured: true}
		uc := NewNotifyUseCase(notifier, logger)
		conf := signedConfirmation(model.PaymentTypeInstallment)
		paymentDate := time.Date(2026, time.March, 17, 10, 30, 0, 0, time.UTC)

		if err := uc.Notify(ctx, conf, paymentDate); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(notifier.Sent) != 1 {
			t.Fatalf("sends = %d, want 1", len(notifier.Sent))
		}
		rec := notifier.Sent[0]
		if rec.OrderID != conf.OrderID || rec.PaymentID != conf.PaymentID {
			t.Fatalf("ids not carried: %+v", rec)
		}
		if rec.TotalCourseAmount != 1325 {
			t.Fatalf("amount = %d, want 1325", rec.TotalCourseAmount)
		}
		if !rec.PaymentDate.Equal(paymentDate) {
			t.Fatalf("payment date = %v, want %v", rec.PaymentDate, paymentDate)
		}
	})

	t.Run("should surface the notifier error for logging", func(t *testing.T) {
		notifier := &mockNotifier{configured: true, SendFunc: func(ctx context.Context, rec model.LedgerRecord) error {
			return errors.New("timeout")
		}}
		uc := NewNotifyUseCase(notifier, logger)

		if err := uc.Notify(ctx, signedConfirmation(model.PaymentTypeFull), time.Now()); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("Enabled follows the notifier configuration", func(t *testing.T) {
		if NewNotifyUseCase(&mockNotifier{configured: false}, logger).Enabled() {
			t.Fatal("expected disabled")
		}
		if !NewNotifyUseCase(&mockNotifier{configured: true}, logger).Enabled() {
			t.Fatal("expected enabled")
		}
	})
}
