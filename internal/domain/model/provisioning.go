package model

// InstallmentPolicy decides how the recurring-charge amount and plan are
// resolved. Exactly one policy is selected at startup.
type InstallmentPolicy string

const (
	// PolicyFixedTest charges a hardcoded minor-unit amount regardless of the
	// course total.
	PolicyFixedTest InstallmentPolicy = "fixed_test"
	// PolicyDerivedRemainder splits the balance after the upfront payment
	// evenly across the installments.
	PolicyDerivedRemainder InstallmentPolicy = "derived_remainder"
	// PolicyPreProvisioned reuses a plan already created at the gateway; no
	// amount is computed locally and no plan is created.
	PolicyPreProvisioned InstallmentPolicy = "pre_provisioned"
)

// SchedulePolicy decides when the subscription's first charge happens.
type SchedulePolicy string

const (
	ScheduleDaysAhead SchedulePolicy = "days_ahead"
	ScheduleNextMonth SchedulePolicy = "next_month"
)

// ProvisioningResult reports what the installment provisioner did for one
// confirmation. The gateway-side ids are kept only for the audit trail.
type ProvisioningResult struct {
	State          SideEffectState
	CustomerID     string
	PlanID         string
	SubscriptionID string
}
