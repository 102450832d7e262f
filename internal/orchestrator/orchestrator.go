// Package orchestrator is the single entry point invoked for every inbound
// event: resolve the pipelines it might affect, then sequentially decide
// whether each one is ready to fire and relay it to the workflow engine.
package orchestrator

import (
	"context"

	"github.com/datapipeline/trigger-coordinator/internal/catalogclient"
	"github.com/datapipeline/trigger-coordinator/internal/entities"
	"github.com/datapipeline/trigger-coordinator/internal/readiness"
	"github.com/datapipeline/trigger-coordinator/internal/relay"
	"github.com/datapipeline/trigger-coordinator/internal/resolver"
	apperrors "github.com/datapipeline/trigger-coordinator/pkg/errors"
	"github.com/datapipeline/trigger-coordinator/pkg/logger"
	"github.com/datapipeline/trigger-coordinator/pkg/metrics"
)

// Orchestrator wires the resolver, readiness evaluator, and relay together
// for one invocation's worth of work.
type Orchestrator struct {
	gateway catalogclient.Gateway
	relay   relay.Relay
	log     logger.Logger
	metrics *metrics.Server
}

// New builds an Orchestrator. metrics may be nil, in which case recording
// calls are no-ops.
func New(gateway catalogclient.Gateway, r relay.Relay, log logger.Logger, m *metrics.Server) *Orchestrator {
	return &Orchestrator{gateway: gateway, relay: r, log: log, metrics: m}
}

// Handle resolves event's affected pipelines and attempts to trigger each
// one in turn. A failure resolving the event aborts immediately; a failure
// triggering one pipeline is collected and the rest still run, matching
// the fan-out's at-most-one-event-per-pipeline contract.
func (o *Orchestrator) Handle(ctx context.Context, event entities.Event) error {
	o.recordInvocation()
	ctx = logger.WithEventID(ctx, event.ID)

	pipelines, err := resolver.Resolve(ctx, event.Payload, o.gateway)
	if err != nil {
		o.logFailure(ctx, err, "failed to resolve pipelines for event")
		o.recordFailure(err)
		return err
	}
	o.recordPipelinesResolved(len(pipelines))

	var failures []string
	for _, pipeline := range pipelines {
		pipelineCtx := logger.WithPipelineID(ctx, pipeline.ID)
		if err := o.maybeTriggerPipeline(pipelineCtx, pipeline); err != nil {
			o.logFailure(pipelineCtx, err, "pipeline trigger attempt failed")
			o.recordFailure(err)
			failures = append(failures, err.Error())
		}
	}

	if len(failures) > 0 {
		return apperrors.Aggregate(failures)
	}
	o.recordSuccess()
	return nil
}

// maybeTriggerPipeline evaluates readiness and, if ready, relays the
// pipeline's parked task to success. A pipeline that isn't ready is logged
// at info level and counted as skipped, not as a failure.
func (o *Orchestrator) maybeTriggerPipeline(ctx context.Context, pipeline entities.DataPipeline) error {
	ready, err := readiness.CanTrigger(ctx, pipeline, o.gateway, o.relay)
	if err != nil {
		return err
	}
	if !ready {
		o.log.Infof(ctx, "pipeline with id %s was not triggered", pipeline.ID)
		o.recordPipelineSkipped()
		return nil
	}

	taskToken, ok := pipeline.TaskToken()
	if !ok {
		return apperrors.MissingPipelinePermit("missing pipeline trigger permit for " + pipeline.ID)
	}
	if err := o.relay.Heartbeat(ctx, taskToken); err != nil {
		return err
	}
	if err := o.relay.Succeed(ctx, taskToken); err != nil {
		return err
	}
	o.recordPipelineTriggered()
	return nil
}

func (o *Orchestrator) logFailure(ctx context.Context, err error, msg string) {
	ctx = logger.WithErrorField(ctx, err)
	if logger.ShouldCaptureStackTrace(err) {
		ctx = logger.WithStackTraceField(ctx, logger.CaptureStackTrace(0))
	}
	o.log.Error(ctx, msg)
}

func (o *Orchestrator) recordInvocation() {
	if o.metrics != nil {
		o.metrics.RecordInvocation()
	}
}

func (o *Orchestrator) recordSuccess() {
	if o.metrics != nil {
		o.metrics.RecordSuccess()
	}
}

func (o *Orchestrator) recordFailure(err error) {
	if o.metrics == nil {
		return
	}
	kind, ok := apperrors.KindOf(err)
	if !ok {
		kind = "Unknown"
	}
	o.metrics.RecordFailure(string(kind))
}

func (o *Orchestrator) recordPipelinesResolved(n int) {
	if o.metrics != nil {
		o.metrics.RecordPipelinesResolved(n)
	}
}

func (o *Orchestrator) recordPipelineTriggered() {
	if o.metrics != nil {
		o.metrics.RecordPipelineTriggered()
	}
}

func (o *Orchestrator) recordPipelineSkipped() {
	if o.metrics != nil {
		o.metrics.RecordPipelineSkipped()
	}
}
