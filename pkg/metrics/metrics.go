// Package metrics exposes the coordinator's Prometheus surface: one gauge
// family for the dead man's switch (build info, up, last invocation/success/
// failure timestamps) plus counters for what each invocation actually did
// (pipelines resolved, triggered, skipped, and failures by error kind).
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/datapipeline/trigger-coordinator/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves /metrics for a coordinator process. Each Server owns a
// private registry, so a single binary can run more than one without the
// usual default-registry double-registration panic.
type Server struct {
	server *http.Server
	log    logger.Logger
	addr   string

	upGauge            prometheus.Gauge
	buildInfo          *prometheus.GaugeVec
	lastInvokedGauge   prometheus.Gauge
	lastSuccessGauge   prometheus.Gauge
	lastFailureGauge   prometheus.Gauge
	invocationsTotal   prometheus.Counter
	pipelinesResolved  prometheus.Counter
	pipelinesTriggered prometheus.Counter
	pipelinesSkipped   prometheus.Counter
	failuresByKind     *prometheus.CounterVec
}

// Config names the build this process was compiled from, for build_info.
type Config struct {
	Component string
	Version   string
	Commit    string
}

// NewServer builds a metrics Server and registers every metric with its own
// registry. Metrics are zero-valued until the orchestrator records activity.
func NewServer(log logger.Logger, addr string, cfg Config) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	buildInfo := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trigger_coordinator_build_info",
			Help: "Build information for the trigger coordinator",
		},
		[]string{"component", "version", "commit"},
	)

	upGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "trigger_coordinator_up",
		Help: "Whether the coordinator process is up",
	})

	lastInvokedGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "trigger_coordinator_last_invocation_timestamp",
		Help: "Unix timestamp of the last invocation, regardless of outcome",
	})

	lastSuccessGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "trigger_coordinator_last_success_timestamp",
		Help: "Unix timestamp of the last invocation that completed without error",
	})

	lastFailureGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "trigger_coordinator_last_failure_timestamp",
		Help: "Unix timestamp of the last invocation that returned an error",
	})

	invocationsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trigger_coordinator_invocations_total",
		Help: "Total number of events handled",
	})

	pipelinesResolved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trigger_coordinator_pipelines_resolved_total",
		Help: "Total number of candidate pipelines produced by the resolver",
	})

	pipelinesTriggered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trigger_coordinator_pipelines_triggered_total",
		Help: "Total number of pipelines whose parked task was woken up",
	})

	pipelinesSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trigger_coordinator_pipelines_skipped_total",
		Help: "Total number of pipelines evaluated but not triggered",
	})

	failuresByKind := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trigger_coordinator_failures_total",
			Help: "Total number of failures, labeled by error kind",
		},
		[]string{"kind"},
	)

	registry.MustRegister(
		buildInfo,
		upGauge,
		lastInvokedGauge,
		lastSuccessGauge,
		lastFailureGauge,
		invocationsTotal,
		pipelinesResolved,
		pipelinesTriggered,
		pipelinesSkipped,
		failuresByKind,
	)

	buildInfo.WithLabelValues(cfg.Component, cfg.Version, cfg.Commit).Set(1)
	upGauge.Set(1)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &Server{
		log:                log,
		addr:               addr,
		upGauge:            upGauge,
		buildInfo:          buildInfo,
		lastInvokedGauge:   lastInvokedGauge,
		lastSuccessGauge:   lastSuccessGauge,
		lastFailureGauge:   lastFailureGauge,
		invocationsTotal:   invocationsTotal,
		pipelinesResolved:  pipelinesResolved,
		pipelinesTriggered: pipelinesTriggered,
		pipelinesSkipped:   pipelinesSkipped,
		failuresByKind:     failuresByKind,
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start runs the HTTP listener in a goroutine.
func (s *Server) Start(ctx context.Context) {
	s.log.Infof(ctx, "starting metrics server on %s", s.addr)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCtx := logger.WithErrorField(ctx, err)
			s.log.Errorf(errCtx, "metrics server error")
		}
	}()
}

// Shutdown gracefully stops the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info(ctx, "shutting down metrics server")
	s.upGauge.Set(0)
	return s.server.Shutdown(ctx)
}

// RecordInvocation marks that an invocation happened, regardless of outcome.
func (s *Server) RecordInvocation() {
	s.invocationsTotal.Inc()
	s.lastInvokedGauge.SetToCurrentTime()
}

// RecordSuccess marks an invocation that completed without error.
func (s *Server) RecordSuccess() {
	s.lastSuccessGauge.SetToCurrentTime()
}

// RecordFailure marks an invocation that returned an error, labeled by kind
// (the orchestrator passes "Unknown" for an error that carries no kind).
func (s *Server) RecordFailure(kind string) {
	s.lastFailureGauge.SetToCurrentTime()
	s.failuresByKind.WithLabelValues(kind).Inc()
}

// RecordPipelinesResolved adds n to the resolved-pipelines counter.
func (s *Server) RecordPipelinesResolved(n int) {
	s.pipelinesResolved.Add(float64(n))
}

// RecordPipelineTriggered increments the triggered-pipelines counter.
func (s *Server) RecordPipelineTriggered() {
	s.pipelinesTriggered.Inc()
}

// RecordPipelineSkipped increments the skipped-pipelines counter.
func (s *Server) RecordPipelineSkipped() {
	s.pipelinesSkipped.Inc()
}
