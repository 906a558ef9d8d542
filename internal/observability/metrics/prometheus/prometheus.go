package prometheus

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	pm "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	ot "github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uber/jaeger-client-go"
	"go.uber.org/zap"
)

var Registry = prometheus.NewRegistry()

var SrvMetrics = pm.NewServerMetrics(
	pm.WithServerHandlingTimeHistogram(
		pm.WithHistogramBuckets([]float64{0.001, 0.01, 0.1, 0.3, 0.6, 1, 3, 6, 9, 20, 30, 60, 90, 120}),
	),
)

var requestMetrics = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "session_keeper_request_duration_seconds",
		Help:    "Duration of handled requests by operation and status code.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"op", "code"},
)

var sessionsIssued = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "session_keeper_sessions_issued_total",
		Help: "Number of session tokens issued.",
	},
)

var validations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "session_keeper_token_validations_total",
		Help: "Token validations by outcome.",
	},
	[]string{"live"},
)

func init() {
	Registry.MustRegister(SrvMetrics, requestMetrics, sessionsIssued, validations)
}

// Exemplar attaches the current jaeger trace ID to histogram observations.
func Exemplar(ctx context.Context) prometheus.Labels {
	span := ot.SpanFromContext(ctx)
	if span == nil {
		return nil
	}

	if sc, ok := span.Context().(jaeger.SpanContext); ok {
		return prometheus.Labels{"traceID": sc.TraceID().String()}
	}
	return nil
}

func ObserveRequest(d time.Duration, status int, op string) {
	requestMetrics.WithLabelValues(op, strconv.Itoa(status)).Observe(d.Seconds())
}

func SessionIssued() {
	sessionsIssued.Inc()
}

func TokenValidated(live bool) {
	validations.WithLabelValues(strconv.FormatBool(live)).Inc()
}

type Server struct {
	srv *http.Server
}

func New(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle(
		"/metrics", promhttp.HandlerFor(
			Registry, promhttp.HandlerOpts{EnableOpenMetrics: true},
		),
	)

	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%v", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start serves /metrics until ctx is cancelled.
func (s *Server) Start(ctx context.Context) {
	go func() {
		zap.L().Info("Starting metrics server", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Error("Metrics server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Debug("Error shutting down metrics server", zap.Error(err))
	}
	zap.L().Info("Metrics server has been stopped")
}
