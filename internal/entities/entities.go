// Package entities holds the core in-memory model of the trigger coordinator:
// the inbound Event, the permit/trigger-rule algebra, and the DataPipeline
// descriptor the resolver produces. Every type here is immutable once built
// and lives for the duration of a single invocation.
package entities

import (
	"net/url"
	"time"
)

// Event is the validated input to the coordinator. It is never constructed
// directly from raw transport bytes; internal/catalogmodel owns that step.
type Event struct {
	ID        string
	EventTime time.Time
	Payload   EventPayload
}

// EventPayload is a tagged union over the two things that can trigger this
// system: a data source receiving new data, or a pipeline finishing a run.
// Exactly one of DataSource/DataPipeline is non-nil.
type EventPayload struct {
	DataSource   *DataSourcePayload
	DataPipeline *DataPipelinePayload
}

// DataSourcePayload means "data source received data".
type DataSourcePayload struct {
	ID string
}

// DataPipelinePayload means "pipeline finished successfully" and carries the
// state the pipeline had been parked on.
type DataPipelinePayload struct {
	ID            string
	SuccessTime   time.Time
	CallbackToken string
}

// NewDataSourceEvent builds an EventPayload for the data-source case.
func NewDataSourceEvent(id string) EventPayload {
	return EventPayload{DataSource: &DataSourcePayload{ID: id}}
}

// NewDataPipelineEvent builds an EventPayload for the pipeline-completion case.
func NewDataPipelineEvent(id string, successTime time.Time, callbackToken string) EventPayload {
	return EventPayload{DataPipeline: &DataPipelinePayload{
		ID:            id,
		SuccessTime:   successTime,
		CallbackToken: callbackToken,
	}}
}

// Permit is the workflow-engine task token a pipeline is parked on.
// IsExpired is reserved: nothing in this system ever sets it true, the
// readiness evaluator's task-timed-out path is the de-facto expiration
// signal (see readiness.CanTrigger).
type Permit struct {
	Content   string
	IsExpired bool
}

// TriggerRule names how a pipeline's dependency set must look before it may
// fire.
type TriggerRule int

const (
	// TriggerRuleLenient fires when any upstream source has fresh data.
	TriggerRuleLenient TriggerRule = iota
	// TriggerRuleStrict fires only when every upstream source has fresh data.
	TriggerRuleStrict
)

// TriggerPermit pairs a TriggerRule with the optional permit the catalog had
// on file for the pipeline. Permit is nil when the catalog stored no
// callback_token.
type TriggerPermit struct {
	Rule   TriggerRule
	Permit *Permit
}

// DataPipeline is the resolved, ready-to-evaluate runtime descriptor for a
// single downstream pipeline.
type DataPipeline struct {
	ID              string
	Description     string
	LastSuccessTime *time.Time
	Permit          TriggerPermit
	DependencyURLs  []*url.URL
}

// TaskToken returns the pipeline's workflow-engine task token, or false if
// the pipeline carries no permit content (callers that need a typed error
// build one themselves; this package stays dependency-free).
func (d *DataPipeline) TaskToken() (string, bool) {
	if d.Permit.Permit == nil || d.Permit.Permit.Content == "" {
		return "", false
	}
	return d.Permit.Permit.Content, true
}
