// Package readiness decides whether a resolved pipeline has both a fresh
// upstream event and a workflow engine still willing to accept a trigger.
package readiness

import (
	"context"
	"net/url"
	"time"

	"github.com/datapipeline/trigger-coordinator/internal/entities"
	apperrors "github.com/datapipeline/trigger-coordinator/pkg/errors"
)

// EventsFetcher fetches a data source's recorded event timestamps.
type EventsFetcher interface {
	FetchLatestDataSourceEvents(ctx context.Context, dataSourceURL *url.URL) ([]time.Time, error)
}

// ReadinessProbe reports whether the workflow engine still has the
// pipeline parked on its task token.
type ReadinessProbe interface {
	IsTaskReady(ctx context.Context, taskToken string) (bool, error)
}

// CanTrigger reports whether pipeline should fire: it needs a recorded
// last success time, at least one upstream dependency with an event at or
// after that time (the trigger rule decides how many), and a workflow
// engine that still has it parked.
func CanTrigger(ctx context.Context, pipeline entities.DataPipeline, fetcher EventsFetcher, probe ReadinessProbe) (bool, error) {
	if pipeline.LastSuccessTime == nil {
		return false, apperrors.MissingSuccessTime("last success time missing for pipeline with id " + pipeline.ID)
	}

	hasNewEvent, err := hasNewSourceEvent(ctx, pipeline, fetcher)
	if err != nil {
		return false, err
	}
	if !hasNewEvent {
		return false, nil
	}

	taskToken, ok := pipeline.TaskToken()
	if !ok {
		return false, apperrors.MissingPipelinePermit("missing pipeline trigger permit for " + pipeline.ID)
	}
	return probe.IsTaskReady(ctx, taskToken)
}

// hasNewSourceEvent asks whether any/all (per trigger rule) of a
// pipeline's upstream data sources have an event at or after its last
// success time.
func hasNewSourceEvent(ctx context.Context, pipeline entities.DataPipeline, fetcher EventsFetcher) (bool, error) {
	threshold := *pipeline.LastSuccessTime

	switch pipeline.Permit.Rule {
	case entities.TriggerRuleLenient:
		for _, dsURL := range pipeline.DependencyURLs {
			times, err := fetcher.FetchLatestDataSourceEvents(ctx, dsURL)
			if err != nil {
				return false, err
			}
			if anyAtOrAfter(times, threshold) {
				// Early break saves a few extra calls for fetching event times.
				return true, nil
			}
		}
		return false, nil

	case entities.TriggerRuleStrict:
		if len(pipeline.DependencyURLs) == 0 {
			// Pipelines with no data source events will not be triggered for now.
			return false, nil
		}
		allFresh := true
		for _, dsURL := range pipeline.DependencyURLs {
			times, err := fetcher.FetchLatestDataSourceEvents(ctx, dsURL)
			if err != nil {
				return false, err
			}
			if !anyAtOrAfter(times, threshold) {
				allFresh = false
			}
		}
		return allFresh, nil

	default:
		return false, apperrors.UnrecognizedTriggerType("unrecognized trigger rule on resolved pipeline " + pipeline.ID)
	}
}

func anyAtOrAfter(times []time.Time, threshold time.Time) bool {
	for _, t := range times {
		if !t.Before(threshold) {
			return true
		}
	}
	return false
}
