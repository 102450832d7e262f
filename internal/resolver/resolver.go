// Package resolver turns a validated inbound event into the set of
// pipeline descriptors that might need to fire as a result, fetching
// catalog state through a catalogclient.Gateway.
package resolver

import (
	"context"
	"net/url"
	"time"

	"github.com/datapipeline/trigger-coordinator/internal/catalogclient"
	"github.com/datapipeline/trigger-coordinator/internal/catalogmodel"
	"github.com/datapipeline/trigger-coordinator/internal/entities"
	apperrors "github.com/datapipeline/trigger-coordinator/pkg/errors"
)

// Resolve dispatches on the event payload's tag. A data source event fans
// out to every dependent pipeline; a pipeline event resolves (and gates) a
// single pipeline. Any failure, including one pipeline in a data source
// fan-out, aborts the whole call: there is no partial result.
func Resolve(ctx context.Context, payload entities.EventPayload, gw catalogclient.Gateway) ([]entities.DataPipeline, error) {
	switch {
	case payload.DataSource != nil:
		return resolveDataSourceEvent(ctx, *payload.DataSource, gw)
	case payload.DataPipeline != nil:
		pipeline, err := resolveDataPipelineEvent(ctx, *payload.DataPipeline, gw)
		if err != nil {
			return nil, err
		}
		return []entities.DataPipeline{*pipeline}, nil
	default:
		return nil, apperrors.EventValidation("event payload carries neither a data source nor a pipeline")
	}
}

func resolveDataSourceEvent(ctx context.Context, source entities.DataSourcePayload, gw catalogclient.Gateway) ([]entities.DataPipeline, error) {
	descriptor, err := gw.FetchDataSource(ctx, source.ID)
	if err != nil {
		return nil, err
	}

	pipelines := make([]entities.DataPipeline, 0, len(descriptor.DependentPipelines))
	for _, pipelineID := range descriptor.DependentPipelines {
		pipelineDescriptor, err := gw.FetchPipeline(ctx, pipelineID)
		if err != nil {
			return nil, err
		}
		pipeline, err := buildDataPipeline(pipelineDescriptor)
		if err != nil {
			return nil, err
		}
		pipelines = append(pipelines, *pipeline)
	}
	return pipelines, nil
}

func resolveDataPipelineEvent(ctx context.Context, event entities.DataPipelinePayload, gw catalogclient.Gateway) (*entities.DataPipeline, error) {
	descriptor, err := gw.FetchPipeline(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	lastSuccessTime, err := parseOptionalTime(descriptor.LastSuccessTime)
	if err != nil {
		return nil, err
	}
	if lastSuccessTime == nil {
		return nil, apperrors.MissingSuccessTime("last success time should have been stored; found nothing")
	}
	if !lastSuccessTime.Equal(event.SuccessTime) {
		return nil, apperrors.SuccessTimeConflict("conflict between provided success time and stored success time")
	}

	permit, err := triggerPermit(descriptor)
	if err != nil {
		return nil, err
	}
	if permit.Permit == nil {
		return nil, apperrors.MissingPermitContent("permit content should have been stored; found nothing")
	}
	if permit.Permit.Content != event.CallbackToken {
		return nil, apperrors.PermitContentConflict("conflict between provided permit content and stored permit content")
	}

	dependencyURLs, err := parseDependencyURLs(descriptor.SourceDependencies)
	if err != nil {
		return nil, err
	}

	return &entities.DataPipeline{
		ID:              descriptor.ID,
		Description:     descriptor.Description,
		LastSuccessTime: lastSuccessTime,
		Permit:          permit,
		DependencyURLs:  dependencyURLs,
	}, nil
}

func buildDataPipeline(descriptor *catalogmodel.PipelineDescriptor) (*entities.DataPipeline, error) {
	lastSuccessTime, err := parseOptionalTime(descriptor.LastSuccessTime)
	if err != nil {
		return nil, err
	}
	permit, err := triggerPermit(descriptor)
	if err != nil {
		return nil, err
	}
	dependencyURLs, err := parseDependencyURLs(descriptor.SourceDependencies)
	if err != nil {
		return nil, err
	}
	return &entities.DataPipeline{
		ID:              descriptor.ID,
		Description:     descriptor.Description,
		LastSuccessTime: lastSuccessTime,
		Permit:          permit,
		DependencyURLs:  dependencyURLs,
	}, nil
}

// triggerPermit derives a pipeline's trigger rule and stored permit from
// its catalog descriptor. A callback token on file always yields a permit;
// an unrecognized trigger_rule value is a hard failure.
func triggerPermit(descriptor *catalogmodel.PipelineDescriptor) (entities.TriggerPermit, error) {
	var permit *entities.Permit
	if descriptor.CallbackToken != nil {
		permit = &entities.Permit{Content: *descriptor.CallbackToken, IsExpired: false}
	}

	switch descriptor.TriggerRule {
	case "LENIENT":
		return entities.TriggerPermit{Rule: entities.TriggerRuleLenient, Permit: permit}, nil
	case "STRICT":
		return entities.TriggerPermit{Rule: entities.TriggerRuleStrict, Permit: permit}, nil
	default:
		return entities.TriggerPermit{}, apperrors.UnrecognizedTriggerType("unrecognized trigger permit type: " + descriptor.TriggerRule)
	}
}

func parseOptionalTime(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, apperrors.DatetimeParseFailure("failed to parse stored datetime", err)
	}
	return &t, nil
}

func parseDependencyURLs(raw []string) ([]*url.URL, error) {
	urls := make([]*url.URL, 0, len(raw))
	for _, s := range raw {
		u, err := url.Parse(s)
		if err != nil {
			return nil, apperrors.URLParseFailure("failed to convert stored source dependency to a url", err)
		}
		urls = append(urls, u)
	}
	return urls, nil
}
