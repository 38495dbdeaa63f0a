// Package metrics holds the Prometheus collectors exported by the API and
// the side server that exposes them.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tandem",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "The total number of handled HTTP requests",
	}, []string{"method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tandem",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	SprintTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tandem",
		Subsystem: "sprint",
		Name:      "transitions_total",
		Help:      "Sprint lifecycle transitions by action",
	}, []string{"action"})

	RolledOverTickets = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tandem",
		Subsystem: "sprint",
		Name:      "rolled_over_tickets_total",
		Help:      "Unfinished tickets moved forward when a sprint closed",
	})

	Invites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tandem",
		Subsystem: "invite",
		Name:      "sent_total",
		Help:      "Invites created, by delivery result",
	}, []string{"result"})

	EventClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tandem",
		Subsystem: "events",
		Name:      "clients",
		Help:      "Connected board event streams",
	})

	DroppedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tandem",
		Subsystem: "events",
		Name:      "dropped_total",
		Help:      "Board events dropped because a client buffer was full",
	})

	CleanedSessions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tandem",
		Subsystem: "sessions",
		Name:      "cleaned_total",
		Help:      "Expired or revoked sessions purged by the cleanup job",
	})
)

// Sprint transition labels.
const (
	ActionStart  = "start"
	ActionClose  = "close"
	ActionCreate = "create"
)

// Invite delivery labels.
const (
	InviteDelivered = "delivered"
	InviteFailed    = "failed"
	InviteSkipped   = "skipped"
)

// Server serves /metrics on its own listener.
type Server struct {
	server *http.Server
}

func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
		},
	}
}

// Handler exposes the mux, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
