package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels shared by the OTP counters.
const (
	ResultSent           = "sent"
	ResultDispatchFailed = "dispatch_failed"
	ResultNotConfigured  = "not_configured"
	ResultInvalid        = "invalid"
	ResultSuccess        = "success"
	ResultMismatch       = "mismatch"
	ResultExpired        = "expired"
	ResultNotFound       = "not_found"
	ResultError          = "error"
)

var (
	CodeRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "otp_code_requests_total",
		Help: "Code requests by outcome",
	}, []string{"result"})

	Verifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "otp_verifications_total",
		Help: "Code verifications by outcome",
	}, []string{"result"})

	DispatchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "otp_dispatch_duration_seconds",
		Help:    "Time spent handing a message to the SMTP server",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"result"})
)

// Register registers the OTP metrics on the given registry (or default if nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{CodeRequests, Verifications, DispatchDuration} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
