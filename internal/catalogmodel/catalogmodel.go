// Package catalogmodel holds the wire shapes exchanged with the catalog
// HTTP API and the inbound event envelope, plus the conversions from those
// wire shapes into internal/entities types.
package catalogmodel

// PipelineDescriptor is the catalog's wire representation of a pipeline,
// returned from GET /pipelines/{id}.
type PipelineDescriptor struct {
	ID                 string   `json:"id"`
	Description        string   `json:"description"`
	LastSuccessTime    *string  `json:"last_success_time"`
	SourceDependencies []string `json:"source_dependencies"`
	TriggerRule        string   `json:"trigger_rule"`
	CallbackToken      *string  `json:"callback_token"`
}

// DataSourceDescriptor is the catalog's wire representation of a data
// source, returned from GET /data-sources/{id}.
type DataSourceDescriptor struct {
	ID                 string   `json:"id"`
	Description        string   `json:"description"`
	DependentPipelines []string `json:"dependent_pipelines"`
}

// EventType discriminates the two kinds of records the events endpoint
// returns. Only EventTime is consumed by this system.
type EventType string

const (
	EventTypeDataSource   EventType = "data_source"
	EventTypeDataPipeline EventType = "data_pipeline"
)

// EventRecord is one entry from GET {dataSourceUrl}/events?descending_order=true.
type EventRecord struct {
	ID          string    `json:"id"`
	Description *string   `json:"description,omitempty"`
	EventTime   string    `json:"event_time"`
	EventType   EventType `json:"event_type"`
	RaisedBy    string    `json:"raised_by"`
}
