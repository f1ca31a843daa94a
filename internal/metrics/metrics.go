// Package metrics holds the gateway's Prometheus collectors. promauto
// registers them with the default registry at init time.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedirectsTotal counts signed-link requests by terminal outcome.
	RedirectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_redirects_total",
			Help: "Signed-link requests by outcome",
		},
		[]string{"outcome"},
	)

	// BotBlockedTotal counts requests dropped by the bot classifier.
	BotBlockedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_bot_blocked_total",
			Help: "Requests blocked by bot classification",
		},
	)

	// RateLimitedTotal counts requests rejected by the rate limiter.
	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)

	// TokensIssuedTotal counts signed access grants issued.
	TokensIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_tokens_issued_total",
			Help: "Signed access tokens issued",
		},
	)

	// DestinationRequestsTotal counts multi-destination requests by branch.
	DestinationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_destination_requests_total",
			Help: "Multi-destination requests by resolution branch",
		},
		[]string{"branch"},
	)
)
