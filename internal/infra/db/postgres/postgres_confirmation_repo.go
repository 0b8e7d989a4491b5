package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"course-payment-service/internal/domain"
	"course-payment-service/internal/domain/model"
	"course-payment-service/internal/domain/ports/repository"
)

var _ repository.ConfirmationRepository = (*confirmationRepo)(nil)

type confirmationRepo struct{ pool *pgxpool.Pool }

func NewConfirmationRepo(pool *pgxpool.Pool) *confirmationRepo {
	return &confirmationRepo{pool: pool}
}

const confirmationColumns = `id, order_id, payment_id, student_name, student_email, student_phone, course_name, payment_type, total_amount, status, notify_state, provision_state, customer_id, gateway_plan_id, subscription_id, created_at, updated_at`

func (r *confirmationRepo) Save(ctx context.Context, tx repository.Tx, rec *model.ConfirmationRecord) error {
	const q = `
INSERT INTO confirmations (
  id, order_id, payment_id, student_name, student_email, student_phone, course_name, payment_type, total_amount, status, notify_state, provision_state, customer_id, gateway_plan_id, subscription_id, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17
) ON CONFLICT (id) DO UPDATE SET
  status=$10, notify_state=$11, provision_state=$12, customer_id=$13, gateway_plan_id=$14, subscription_id=$15, updated_at=$17;`

	_, err := execSQL(ctx, r.pool, tx, q,
		rec.ID, rec.OrderID, rec.PaymentID,
		rec.StudentName, rec.StudentEmail, rec.StudentPhone,
		rec.CourseName, rec.PaymentType, rec.TotalAmount,
		rec.Status, rec.NotifyState, rec.ProvisionState,
		rec.CustomerID, rec.GatewayPlanID, rec.SubscriptionID,
		rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *confirmationRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ConfirmationRecord, error) {
	q := `SELECT ` + confirmationColumns + ` FROM confirmations WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	rec, err := scanConfirmation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return rec, nil
}

func (r *confirmationRepo) UpdateNotifyState(ctx context.Context, tx repository.Tx, id string, state model.SideEffectState) error {
	const q = `UPDATE confirmations SET notify_state=$2, updated_at=NOW() WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, state)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *confirmationRepo) UpdateProvisionState(ctx context.Context, tx repository.Tx, id string, state model.SideEffectState, customerID, planID, subscriptionID *string) error {
	const q = `
UPDATE confirmations SET
  provision_state=$2,
  customer_id=COALESCE($3, customer_id),
  gateway_plan_id=COALESCE($4, gateway_plan_id),
  subscription_id=COALESCE($5, subscription_id),
  updated_at=NOW()
WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, state, customerID, planID, subscriptionID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *confirmationRepo) WasProvisioned(ctx context.Context, tx repository.Tx, orderID, paymentID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM confirmations WHERE order_id=$1 AND payment_id=$2 AND provision_state='succeeded');`
	row, err := pickRow(ctx, r.pool, tx, q, orderID, paymentID)
	if err != nil {
		return false, err
	}
	var done bool
	if err := row.Scan(&done); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return done, nil
}

func (r *confirmationRepo) ListRecent(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.ConfirmationRecord, error) {
	q := `SELECT ` + confirmationColumns + ` FROM confirmations ORDER BY created_at DESC OFFSET $1 LIMIT $2;`
	rows, err := pickRows(ctx, r.pool, tx, q, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ConfirmationRecord
	for rows.Next() {
		rec, err := scanConfirmation(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *confirmationRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.ConfirmationStatus]int, error) {
	const q = `SELECT status, COUNT(*) FROM confirmations GROUP BY status;`
	rows, err := pickRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.ConfirmationStatus]int)
	for rows.Next() {
		var status model.ConfirmationStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[status] = count
	}
	return out, rows.Err()
}

func (r *confirmationRepo) SumVerifiedByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	const q = `SELECT COALESCE(SUM(total_amount),0) FROM confirmations WHERE status='verified' AND created_at >= DATE_TRUNC($1, NOW());`
	row, err := pickRow(ctx, r.pool, tx, q, period)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}

func scanConfirmation(row pgx.Row) (*model.ConfirmationRecord, error) {
	rec := &model.ConfirmationRecord{}
	err := row.Scan(
		&rec.ID, &rec.OrderID, &rec.PaymentID,
		&rec.StudentName, &rec.StudentEmail, &rec.StudentPhone,
		&rec.CourseName, &rec.PaymentType, &rec.TotalAmount,
		&rec.Status, &rec.NotifyState, &rec.ProvisionState,
		&rec.CustomerID, &rec.GatewayPlanID, &rec.SubscriptionID,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
