package model

import "time"

// LedgerRecord is the projection of a verified confirmation sent to the
// external record-keeping webhook. Delivery is at-most-once.
type LedgerRecord struct {
	Student           StudentData
	PaymentID         string
	OrderID           string
	TotalCourseAmount int64 // rupees
	PaymentDate       time.Time
}

// Payload flattens the record into the wire shape the sheet webhook expects:
// all student fields at the top level plus the payment metadata.
func (r LedgerRecord) Payload() map[string]interface{} {
	p := map[string]interface{}{
		"name":         r.Student.Name,
		"email":        r.Student.Email,
		"phone":        r.Student.Phone,
		"course_name":  r.Student.CourseName,
		"payment_type": string(r.Student.PaymentType),

		"paymentId":         r.PaymentID,
		"orderId":           r.OrderID,
		"totalCourseAmount": r.TotalCourseAmount,
		"paymentDate":       r.PaymentDate.UTC().Format(time.RFC3339),
	}
	optional := map[string]string{
		"college_name":  r.Student.CollegeName,
		"branch":        r.Student.Branch,
		"course_month":  r.Student.CourseMonth,
		"state":         r.Student.State,
		"city":          r.Student.City,
		"counselor_id":  r.Student.CounselorID,
		"coupon":        r.Student.Coupon,
		"experience":    r.Student.Experience,
		"college_email": r.Student.CollegeEmail,
	}
	for k, v := range optional {
		if v != "" {
			p[k] = v
		}
	}
	return p
}
