package model

import "time"

// PaymentType selects the fulfillment path after verification.
type PaymentType string

const (
	PaymentTypeFull        PaymentType = "full"
	PaymentTypeInstallment PaymentType = "installment"
)

// StudentData carries the enrollment attributes submitted with the checkout.
// Only name/email/phone/payment_type drive behavior; the rest is forwarded
// verbatim to the ledger.
type StudentData struct {
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	CourseName   string      `json:"course_name"`
	PaymentType  PaymentType `json:"payment_type"`
	CollegeName  string      `json:"college_name,omitempty"`
	Branch       string      `json:"branch,omitempty"`
	CourseMonth  string      `json:"course_month,omitempty"`
	State        string      `json:"state,omitempty"`
	City         string      `json:"city,omitempty"`
	CounselorID  string      `json:"counselor_id,omitempty"`
	Coupon       string      `json:"coupon,omitempty"`
	Experience   string      `json:"experience,omitempty"`
	CollegeEmail string      `json:"college_email,omitempty"`
}

// PaymentConfirmation is the client-submitted proof that a checkout payment
// completed at the gateway. Field names match the gateway's checkout callback.
type PaymentConfirmation struct {
	OrderID     string      `json:"razorpay_order_id"`
	PaymentID   string      `json:"razorpay_payment_id"`
	Signature   string      `json:"razorpay_signature"`
	Student     StudentData `json:"studentData"`
	TotalAmount int64       `json:"totalAmount"` // rupees (major unit), integer to avoid float errors
}

type ConfirmationStatus string

const (
	ConfirmationStatusReceived ConfirmationStatus = "received"
	ConfirmationStatusVerified ConfirmationStatus = "verified"
	ConfirmationStatusRejected ConfirmationStatus = "rejected" // signature mismatch
)

// SideEffectState tracks the best-effort steps that follow verification.
// Neither state affects the acknowledgment sent to the buyer.
type SideEffectState string

const (
	SideEffectPending   SideEffectState = "pending"
	SideEffectSkipped   SideEffectState = "skipped"
	SideEffectSucceeded SideEffectState = "succeeded"
	SideEffectFailed    SideEffectState = "failed"
)

// ConfirmationRecord is the audit trail row for one received confirmation.
type ConfirmationRecord struct {
	ID             string // UUID
	OrderID        string
	PaymentID      string
	StudentName    string
	StudentEmail   string
	StudentPhone   string
	CourseName     string
	PaymentType    PaymentType
	TotalAmount    int64 // rupees
	Status         ConfirmationStatus
	NotifyState    SideEffectState
	ProvisionState SideEffectState
	// Gateway-side ids returned during installment provisioning (if any).
	CustomerID     *string
	GatewayPlanID  *string
	SubscriptionID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
