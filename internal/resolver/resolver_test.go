package resolver

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/datapipeline/trigger-coordinator/internal/catalogmodel"
	"github.com/datapipeline/trigger-coordinator/internal/entities"
	apperrors "github.com/datapipeline/trigger-coordinator/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	dataSources map[string]*catalogmodel.DataSourceDescriptor
	pipelines   map[string]*catalogmodel.PipelineDescriptor
	fetchErr    map[string]error
}

func (f *fakeGateway) FetchDataSource(ctx context.Context, id string) (*catalogmodel.DataSourceDescriptor, error) {
	if err, ok := f.fetchErr[id]; ok {
		return nil, err
	}
	return f.dataSources[id], nil
}

func (f *fakeGateway) FetchPipeline(ctx context.Context, id string) (*catalogmodel.PipelineDescriptor, error) {
	if err, ok := f.fetchErr[id]; ok {
		return nil, err
	}
	return f.pipelines[id], nil
}

func (f *fakeGateway) FetchLatestDataSourceEvents(ctx context.Context, dataSourceURL *url.URL) ([]time.Time, error) {
	return nil, nil
}

func strPtr(s string) *string { return &s }

func TestResolve_DataSourceEvent_FansOutToDependentPipelines(t *testing.T) {
	gw := &fakeGateway{
		dataSources: map[string]*catalogmodel.DataSourceDescriptor{
			"srcA": {ID: "srcA", DependentPipelines: []string{"pipA", "pipB"}},
		},
		pipelines: map[string]*catalogmodel.PipelineDescriptor{
			"pipA": {ID: "pipA", Description: "A", TriggerRule: "LENIENT", SourceDependencies: []string{"https://catalog.example.com/data-sources/srcA"}},
			"pipB": {ID: "pipB", Description: "B", TriggerRule: "STRICT", CallbackToken: strPtr("tok-b")},
		},
	}

	pipelines, err := Resolve(context.Background(), entities.NewDataSourceEvent("srcA"), gw)
	require.NoError(t, err)
	require.Len(t, pipelines, 2)
	assert.Equal(t, "pipA", pipelines[0].ID)
	assert.Equal(t, entities.TriggerRuleLenient, pipelines[0].Permit.Rule)
	assert.Nil(t, pipelines[0].Permit.Permit)
	assert.Equal(t, "pipB", pipelines[1].ID)
	assert.Equal(t, entities.TriggerRuleStrict, pipelines[1].Permit.Rule)
	require.NotNil(t, pipelines[1].Permit.Permit)
	assert.Equal(t, "tok-b", pipelines[1].Permit.Permit.Content)
}

func TestResolve_DataSourceEvent_PropagatesFetchFailure(t *testing.T) {
	gw := &fakeGateway{
		fetchErr: map[string]error{"srcA": apperrors.ModelFetchFailure("boom", nil)},
	}

	_, err := Resolve(context.Background(), entities.NewDataSourceEvent("srcA"), gw)
	kind, ok := apperrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindModelFetchFailure, kind)
}

func TestResolve_DataSourceEvent_UnrecognizedTriggerRuleAbortsWholeFanOut(t *testing.T) {
	gw := &fakeGateway{
		dataSources: map[string]*catalogmodel.DataSourceDescriptor{
			"srcA": {ID: "srcA", DependentPipelines: []string{"pipA"}},
		},
		pipelines: map[string]*catalogmodel.PipelineDescriptor{
			"pipA": {ID: "pipA", TriggerRule: "WEIRD"},
		},
	}

	_, err := Resolve(context.Background(), entities.NewDataSourceEvent("srcA"), gw)
	kind, ok := apperrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindUnrecognizedTriggerType, kind)
}

func TestResolve_DataPipelineEvent_HappyPath(t *testing.T) {
	successTime := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	gw := &fakeGateway{
		pipelines: map[string]*catalogmodel.PipelineDescriptor{
			"pipA": {
				ID:                 "pipA",
				Description:        "d",
				TriggerRule:        "LENIENT",
				CallbackToken:      strPtr("tok1"),
				LastSuccessTime:    strPtr("2023-01-01T00:00:00Z"),
				SourceDependencies: []string{"https://catalog.example.com/data-sources/srcA"},
			},
		},
	}

	pipelines, err := Resolve(context.Background(), entities.NewDataPipelineEvent("pipA", successTime, "tok1"), gw)
	require.NoError(t, err)
	require.Len(t, pipelines, 1)
	assert.Equal(t, "pipA", pipelines[0].ID)
	require.Len(t, pipelines[0].DependencyURLs, 1)
	assert.Equal(t, "https://catalog.example.com/data-sources/srcA", pipelines[0].DependencyURLs[0].String())
}

func TestResolve_DataPipelineEvent_MissingSuccessTime(t *testing.T) {
	gw := &fakeGateway{
		pipelines: map[string]*catalogmodel.PipelineDescriptor{
			"pipA": {ID: "pipA", TriggerRule: "LENIENT", CallbackToken: strPtr("tok1")},
		},
	}

	_, err := Resolve(context.Background(), entities.NewDataPipelineEvent("pipA", time.Now(), "tok1"), gw)
	kind, ok := apperrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindMissingSuccessTime, kind)
}

func TestResolve_DataPipelineEvent_SuccessTimeConflict(t *testing.T) {
	gw := &fakeGateway{
		pipelines: map[string]*catalogmodel.PipelineDescriptor{
			"pipA": {ID: "pipA", TriggerRule: "LENIENT", CallbackToken: strPtr("tok1"), LastSuccessTime: strPtr("2023-01-01T00:00:00Z")},
		},
	}

	_, err := Resolve(context.Background(), entities.NewDataPipelineEvent("pipA", time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), "tok1"), gw)
	kind, ok := apperrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindSuccessTimeConflict, kind)
}

func TestResolve_DataPipelineEvent_MissingPermitContent(t *testing.T) {
	successTime := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	gw := &fakeGateway{
		pipelines: map[string]*catalogmodel.PipelineDescriptor{
			"pipA": {ID: "pipA", TriggerRule: "LENIENT", LastSuccessTime: strPtr("2023-01-01T00:00:00Z")},
		},
	}

	_, err := Resolve(context.Background(), entities.NewDataPipelineEvent("pipA", successTime, "tok1"), gw)
	kind, ok := apperrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindMissingPermitContent, kind)
}

func TestResolve_DataPipelineEvent_PermitContentConflict(t *testing.T) {
	successTime := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	gw := &fakeGateway{
		pipelines: map[string]*catalogmodel.PipelineDescriptor{
			"pipA": {ID: "pipA", TriggerRule: "LENIENT", CallbackToken: strPtr("stored-tok"), LastSuccessTime: strPtr("2023-01-01T00:00:00Z")},
		},
	}

	_, err := Resolve(context.Background(), entities.NewDataPipelineEvent("pipA", successTime, "different-tok"), gw)
	kind, ok := apperrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindPermitContentConflict, kind)
}

func TestResolve_EmptyPayload(t *testing.T) {
	_, err := Resolve(context.Background(), entities.EventPayload{}, &fakeGateway{})
	kind, ok := apperrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindEventValidation, kind)
}
