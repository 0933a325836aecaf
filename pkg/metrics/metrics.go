package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Template metrics
	TemplatesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "burrow_templates_total",
			Help: "Total number of stored agent templates",
		},
	)

	TemplateCapacity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "burrow_template_instance_cap",
			Help: "Instance cap per template (-1 when unbounded)",
		},
		[]string{"template"},
	)

	TemplateErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_template_errors_total",
			Help: "Total number of rejected template definitions by error kind",
		},
		[]string{"kind"},
	)

	CredentialsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "burrow_credentials_total",
			Help: "Total number of stored credentials",
		},
	)

	CredentialLookupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "burrow_credential_lookup_duration_seconds",
			Help:    "Time taken to enumerate credential candidates in seconds by result",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"},
	)

	// Provisioning metrics
	LaunchPlansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_launch_plans_total",
			Help: "Total number of launch plans by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(TemplatesTotal)
	prometheus.MustRegister(TemplateCapacity)
	prometheus.MustRegister(TemplateErrorsTotal)
	prometheus.MustRegister(CredentialsTotal)
	prometheus.MustRegister(CredentialLookupDuration)
	prometheus.MustRegister(LaunchPlansTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
