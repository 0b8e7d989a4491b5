// File: internal/usecase/notify_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"course-payment-service/internal/domain/model"
	"course-payment-service/internal/domain/ports/adapter"
)

// Compile-time check
var _ NotifyUseCase = (*notifyUC)(nil)

// NotifyUseCase forwards a verified confirmation to the record-keeping sheet.
// At-most-once: no retry, no delivery persistence beyond the audit trail.
type NotifyUseCase interface {
	// Enabled reports whether a ledger endpoint is configured at all.
	Enabled() bool
	// Notify builds the ledger projection and posts it. The error is for
	// logging only; it never reaches the buyer.
	Notify(ctx context.Context, conf *model.PaymentConfirmation, paymentDate time.Time) error
}

type notifyUC struct {
	notifier adapter.LedgerNotifier
	log      *zerolog.Logger
}

func NewNotifyUseCase(notifier adapter.LedgerNotifier, logger *zerolog.Logger) *notifyUC {
	compLog := logger.With().Str("component", "NotifyUC").Logger()
	return &notifyUC{notifier: notifier, log: &compLog}
}

func (u *notifyUC) Enabled() bool { return u.notifier.Configured() }

func (u *notifyUC) Notify(ctx context.Context, conf *model.PaymentConfirmation, paymentDate time.Time) error {
	rec := model.LedgerRecord{
		Student:           conf.Student,
		PaymentID:         conf.PaymentID,
		OrderID:           conf.OrderID,
		TotalCourseAmount: conf.TotalAmount,
		PaymentDate:       paymentDate,
	}
	if err := u.notifier.Send(ctx, rec); err != nil {
		u.log.Error().Err(err).Str("order_id", conf.OrderID).Msg("ledger notification failed")
		return err
	}
	u.log.Info().Str("order_id", conf.OrderID).Msg("ledger notified")
	return nil
}
