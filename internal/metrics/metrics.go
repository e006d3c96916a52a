package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamline_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "teamline_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamline_messages_sent_total",
			Help: "Total chat messages accepted and persisted",
		},
		[]string{"origin"}, // "http" or "socket"
	)

	PushesDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "teamline_pushes_delivered_total",
			Help: "Total push frames enqueued to live endpoints",
		},
	)

	PushesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "teamline_pushes_dropped_total",
			Help: "Total push frames dropped on full or closed endpoints",
		},
	)

	SignalsRelayed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "teamline_signals_relayed_total",
			Help: "Total signal frames relayed to chat participants",
		},
	)

	SignalsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamline_signals_rejected_total",
			Help: "Total signal frames rejected before relay",
		},
		[]string{"reason"}, // "no_chat" or "not_member"
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "teamline_sessions_active",
			Help: "Currently registered socket sessions",
		},
	)

	UsersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "teamline_users_registered_total",
			Help: "Total users registered",
		},
	)

	ChatsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "teamline_chats_created_total",
			Help: "Total chats created",
		},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamline_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)

	BlockedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamline_blocked_requests_total",
			Help: "Total blocked requests",
		},
		[]string{"reason"},
	)

	// Infrastructure metrics
	MongoLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "teamline_mongo_latency_seconds",
			Help:    "MongoDB operation latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1},
		},
	)
)
