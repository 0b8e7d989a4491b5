package repository

import (
	"context"

	"course-payment-service/internal/domain/model"
)

// ConfirmationRepository is the port for the confirmation audit trail.
//
// Writes here are best-effort from the request handler's point of view: a
// storage failure is logged and never fails the confirmation itself.
type ConfirmationRepository interface {
	// Save creates or updates a confirmation record (upsert by id).
	Save(ctx context.Context, tx Tx, rec *model.ConfirmationRecord) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.ConfirmationRecord, error)
	UpdateNotifyState(ctx context.Context, tx Tx, id string, state model.SideEffectState) error
	// UpdateProvisionState also records the gateway ids returned during
	// provisioning; nil pointers leave the stored value untouched.
	UpdateProvisionState(ctx context.Context, tx Tx, id string, state model.SideEffectState, customerID, planID, subscriptionID *string) error
	// WasProvisioned reports whether an earlier confirmation with the same
	// (orderID, paymentID) already provisioned successfully.
	WasProvisioned(ctx context.Context, tx Tx, orderID, paymentID string) (bool, error)

	// Admin read surface.
	ListRecent(ctx context.Context, tx Tx, offset, limit int) ([]*model.ConfirmationRecord, error)
	CountByStatus(ctx context.Context, tx Tx) (map[model.ConfirmationStatus]int, error)
	// SumVerifiedByPeriod sums TotalAmount of verified confirmations since the
	// start of the given period ("week" | "month" | "year").
	SumVerifiedByPeriod(ctx context.Context, tx Tx, period string) (int64, error)
}
