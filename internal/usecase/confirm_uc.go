// File: internal/usecase/confirm_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"course-payment-service/internal/domain"
	"course-payment-service/internal/domain/model"
	"course-payment-service/internal/domain/ports/repository"
	"course-payment-service/internal/infra/metrics"
)

// TaskRunner detaches side-effect work from the request. Submitted tasks run
// on their own context; their failure is logged by the pool and never joined
// with the caller.
type TaskRunner interface {
	Submit(task func(ctx context.Context) error) error
}

// Compile-time check
var _ ConfirmUseCase = (*confirmUC)(nil)

// ConfirmUseCase finalizes one payment confirmation:
//
//	RECEIVED -> VERIFIED -> {NOTIFIED?, PROVISIONED?} -> ACKNOWLEDGED
//
// Verification is the only hard gate. The ledger notification and installment
// provisioning are detached best-effort steps; each may independently skip,
// succeed or fail without affecting the acknowledgment.
type ConfirmUseCase interface {
	// Confirm verifies the signature and kicks off the side effects. It
	// returns domain.ErrInvalidSignature on mismatch; any other failure is
	// recovered internally and the record is still returned.
	Confirm(ctx context.Context, conf *model.PaymentConfirmation) (*model.ConfirmationRecord, error)
}

type confirmUC struct {
	secret      string
	records     repository.ConfirmationRepository
	notify      NotifyUseCase
	provision   ProvisionUseCase
	tasks       TaskRunner
	policy      model.InstallmentPolicy
	idempotent  bool
	sideEffects time.Duration // budget for one detached task
	log         *zerolog.Logger
}

func NewConfirmUseCase(
	secret string,
	records repository.ConfirmationRepository,
	notify NotifyUseCase,
	provision ProvisionUseCase,
	tasks TaskRunner,
	policy model.InstallmentPolicy,
	idempotent bool,
	logger *zerolog.Logger,
) *confirmUC {
	compLog := logger.With().Str("component", "ConfirmUC").Logger()
	return &confirmUC{
		secret:      secret,
		records:     records,
		notify:      notify,
		provision:   provision,
		tasks:       tasks,
		policy:      policy,
		idempotent:  idempotent,
		sideEffects: 30 * time.Second,
		log:         &compLog,
	}
}

func (u *confirmUC) Confirm(ctx context.Context, conf *model.PaymentConfirmation) (*model.ConfirmationRecord, error) {
	now := time.Now()
	rec := &model.ConfirmationRecord{
		ID:             uuid.NewString(),
		OrderID:        conf.OrderID,
		PaymentID:      conf.PaymentID,
		StudentName:    conf.Student.Name,
		StudentEmail:   conf.Student.Email,
		StudentPhone:   conf.Student.Phone,
		CourseName:     conf.Student.CourseName,
		PaymentType:    conf.Student.PaymentType,
		TotalAmount:    conf.TotalAmount,
		Status:         model.ConfirmationStatusReceived,
		NotifyState:    model.SideEffectSkipped,
		ProvisionState: model.SideEffectSkipped,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if !VerifySignature(conf.OrderID, conf.PaymentID, conf.Signature, u.secret) {
		rec.Status = model.ConfirmationStatusRejected
		u.save(ctx, rec)
		u.log.Warn().Str("order_id", conf.OrderID).Str("payment_id", conf.PaymentID).Msg("signature mismatch")
		return rec, domain.ErrInvalidSignature
	}
	rec.Status = model.ConfirmationStatusVerified

	if u.notify.Enabled() {
		rec.NotifyState = model.SideEffectPending
	}
	if conf.Student.PaymentType == model.PaymentTypeInstallment {
		rec.ProvisionState = model.SideEffectPending
	}
	u.save(ctx, rec)

	if rec.NotifyState == model.SideEffectPending {
		u.detachNotify(conf, rec.ID, now)
	}
	if rec.ProvisionState == model.SideEffectPending {
		u.detachProvision(conf, rec.ID)
	}
	return rec, nil
}

// detachNotify runs the ledger forwarding in the background. The buyer's
// response never waits on it.
func (u *confirmUC) detachNotify(conf *model.PaymentConfirmation, recID string, paymentDate time.Time) {
	orderID := conf.OrderID
	err := u.tasks.Submit(func(context.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), u.sideEffects)
		defer cancel()

		state := model.SideEffectSucceeded
		if err := u.notify.Notify(ctx, conf, paymentDate); err != nil {
			state = model.SideEffectFailed
		}
		if err := u.records.UpdateNotifyState(ctx, nil, recID, state); err != nil {
			u.log.Error().Err(err).Str("order_id", orderID).Msg("record notify state")
		}
		return nil
	})
	if err != nil {
		u.log.Error().Err(err).Str("order_id", orderID).Msg("submit notify task")
		ctx, cancel := context.WithTimeout(context.Background(), u.sideEffects)
		defer cancel()
		if err := u.records.UpdateNotifyState(ctx, nil, recID, model.SideEffectFailed); err != nil {
			u.log.Error().Err(err).Str("order_id", orderID).Msg("record notify state")
		}
	}
}

// detachProvision creates the gateway customer/plan/subscription in the
// background. Provisioning failure never reverts or hides the captured
// payment.
func (u *confirmUC) detachProvision(conf *model.PaymentConfirmation, recID string) {
	orderID, paymentID := conf.OrderID, conf.PaymentID
	student, total := conf.Student, conf.TotalAmount
	err := u.tasks.Submit(func(context.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), u.sideEffects)
		defer cancel()

		if u.idempotent {
			done, err := u.records.WasProvisioned(ctx, nil, orderID, paymentID)
			if err != nil {
				u.log.Error().Err(err).Str("order_id", orderID).Msg("replay check")
			} else if done {
				u.log.Info().Str("order_id", orderID).Msg("already provisioned; skipping")
				metrics.IncProvisioning(string(u.policy), "skipped")
				u.updateProvision(ctx, recID, orderID, model.SideEffectSkipped, model.ProvisioningResult{})
				return nil
			}
		}

		res, err := u.provision.Provision(ctx, student, total)
		if err != nil {
			u.log.Error().Err(err).Str("order_id", orderID).Msg("installment provisioning failed")
		}
		u.updateProvision(ctx, recID, orderID, res.State, res)
		return nil
	})
	if err != nil {
		u.log.Error().Err(err).Str("order_id", orderID).Msg("submit provision task")
		ctx, cancel := context.WithTimeout(context.Background(), u.sideEffects)
		defer cancel()
		u.updateProvision(ctx, recID, orderID, model.SideEffectFailed, model.ProvisioningResult{})
	}
}

func (u *confirmUC) updateProvision(ctx context.Context, recID, orderID string, state model.SideEffectState, res model.ProvisioningResult) {
	err := u.records.UpdateProvisionState(ctx, nil, recID, state,
		nonEmpty(res.CustomerID), nonEmpty(res.PlanID), nonEmpty(res.SubscriptionID))
	if err != nil {
		u.log.Error().Err(err).Str("order_id", orderID).Msg("record provision state")
	}
}

// save is best-effort: the audit trail must never fail a verified payment.
func (u *confirmUC) save(ctx context.Context, rec *model.ConfirmationRecord) {
	if err := u.records.Save(ctx, nil, rec); err != nil {
		u.log.Error().Err(err).Str("order_id", rec.OrderID).Msg("save confirmation record")
	}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
