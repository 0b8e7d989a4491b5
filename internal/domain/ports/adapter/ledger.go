package adapter

import (
	"context"

	"course-payment-service/internal/domain/model"
)

// LedgerNotifier forwards finalized transactions to the external
// record-keeping system. Best-effort: callers never retry.
type LedgerNotifier interface {
	// Configured reports whether an endpoint is set; when false the caller
	// skips notification entirely (not an error).
	Configured() bool
	// Send posts the record. A non-2xx response is an error.
	Send(ctx context.Context, rec model.LedgerRecord) error
}
