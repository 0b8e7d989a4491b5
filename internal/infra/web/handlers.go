package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"course-payment-service/internal/domain"
	"course-payment-service/internal/domain/model"
	"course-payment-service/internal/domain/ports/repository"
	"course-payment-service/internal/infra/logging"
	"course-payment-service/internal/infra/metrics"
)

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// verifyHandler finalizes one payment confirmation. The response depends only
// on the signature check; ledger forwarding and installment provisioning are
// detached and never delay or fail the acknowledgment.
func (s *Server) verifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		result, reason := "ok", ""
		defer func() {
			metrics.PaymentVerifyRequests.WithLabelValues(result, reason).Inc()
			metrics.PaymentVerifyDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
		}()

		var conf model.PaymentConfirmation
		if err := json.NewDecoder(r.Body).Decode(&conf); err != nil {
			result, reason = "fail", "bad_json"
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
			return
		}

		ctx := logging.WithTraceID(r.Context(), middleware.GetReqID(r.Context()))
		ctx = logging.WithOrderID(ctx, conf.OrderID)

		rec, err := s.confirmUC.Confirm(ctx, &conf)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidSignature) {
				result, reason = "fail", "invalid_signature"
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid signature"})
				return
			}
			result, reason = "fail", "unknown"
			logging.With(ctx, s.log).Error().Err(err).Msg("confirm failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal error"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "success",
			"orderId": rec.OrderID,
		})
	}
}

// loginHandler exchanges the configured admin API key for a session JWT.
func (s *Server) loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			APIKey string `json:"api_key"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
			return
		}
		if s.auth == nil || !s.auth.CheckAPIKey(req.APIKey) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		token, err := s.auth.Mint(w)
		if err != nil {
			http.Error(w, "Failed to mint session", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

// confirmationsListHandler returns recent confirmations.
// It accepts 'offset' and 'limit' query parameters.
func confirmationsListHandler(records repository.ConfirmationRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil || limit <= 0 || limit > 200 {
			limit = 50
		}
		if offset < 0 {
			offset = 0
		}

		recs, err := records.ListRecent(ctx, nil, offset, limit)
		if err != nil {
			http.Error(w, "Failed to list confirmations", http.StatusInternalServerError)
			return
		}
		if recs == nil {
			recs = []*model.ConfirmationRecord{}
		}

		type confirmationView struct {
			ID             string `json:"id"`
			OrderID        string `json:"order_id"`
			PaymentID      string `json:"payment_id"`
			StudentName    string `json:"student_name"`
			CourseName     string `json:"course_name"`
			PaymentType    string `json:"payment_type"`
			TotalAmount    int64  `json:"total_amount"`
			Status         string `json:"status"`
			NotifyState    string `json:"notify_state"`
			ProvisionState string `json:"provision_state"`
			CreatedAt      string `json:"created_at"`
		}
		out := make([]confirmationView, 0, len(recs))
		for _, rec := range recs {
			out = append(out, confirmationView{
				ID:             rec.ID,
				OrderID:        rec.OrderID,
				PaymentID:      rec.PaymentID,
				StudentName:    rec.StudentName,
				CourseName:     rec.CourseName,
				PaymentType:    string(rec.PaymentType),
				TotalAmount:    rec.TotalAmount,
				Status:         string(rec.Status),
				NotifyState:    string(rec.NotifyState),
				ProvisionState: string(rec.ProvisionState),
				CreatedAt:      rec.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// statsHandler serves aggregate confirmation counts and verified revenue.
func statsHandler(records repository.ConfirmationRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		counts, err := records.CountByStatus(ctx, nil)
		if err != nil {
			http.Error(w, "Failed to get totals", http.StatusInternalServerError)
			return
		}

		var revenue struct {
			Week  int64 `json:"week"`
			Month int64 `json:"month"`
			Year  int64 `json:"year"`
		}
		for period, dst := range map[string]*int64{
			"week":  &revenue.Week,
			"month": &revenue.Month,
			"year":  &revenue.Year,
		} {
			sum, err := records.SumVerifiedByPeriod(ctx, nil, period)
			if err != nil {
				http.Error(w, "Failed to get revenue", http.StatusInternalServerError)
				return
			}
			*dst = sum
		}

		response := struct {
			CountsByStatus map[model.ConfirmationStatus]int `json:"counts_by_status"`
			Revenue        interface{}                      `json:"revenue_inr"`
		}{
			CountsByStatus: counts,
			Revenue:        revenue,
		}
		writeJSON(w, http.StatusOK, response)
	}
}
