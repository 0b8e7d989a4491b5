package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		ProvisioningTotal,
		ProvisioningStepErrors,
	)
}

var (
	// Installment provisioning runs by policy and final result.
	// result: succeeded|failed|skipped
	ProvisioningTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provisioning_total",
			Help: "Installment provisioning runs by policy and result.",
		},
		[]string{"policy", "result"},
	)

	// Individual gateway step failures.
	// step: customer|plan|subscription
	ProvisioningStepErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provisioning_step_errors_total",
			Help: "Failed gateway calls during installment provisioning by step.",
		},
		[]string{"step"},
	)
)

func IncProvisioning(policy, result string) {
	ProvisioningTotal.WithLabelValues(policy, result).Inc()
}

func ProvisioningStepError(step string) {
	ProvisioningStepErrors.WithLabelValues(step).Inc()
}
