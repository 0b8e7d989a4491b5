package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(LedgerNotifyTotal)
}

var (
	// Ledger webhook deliveries by outcome.
	// status: sent|error
	LedgerNotifyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_notify_total",
			Help: "Ledger webhook delivery attempts by outcome.",
		},
		[]string{"status"},
	)
)

func IncLedgerNotify(status string) {
	LedgerNotifyTotal.WithLabelValues(status).Inc()
}
