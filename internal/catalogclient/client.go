package catalogclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/datapipeline/trigger-coordinator/internal/catalogmodel"
	"github.com/datapipeline/trigger-coordinator/internal/signing"
	apperrors "github.com/datapipeline/trigger-coordinator/pkg/errors"
)

// FetchRestModel signs, executes, and decodes a single catalog request.
// A transport failure that IsNetworkError classifies as network-level
// (connection refused/reset, timeout, EOF) is reported as a NetworkFailure,
// not a ModelFetchFailure; every other signing, transport, reading, or
// decoding failure is reported as a ModelFetchFailure.
func FetchRestModel[T any](ctx context.Context, signer signing.Signer, httpClient *http.Client, endpointURL, region string, body []byte, headers map[string]string, method string) (T, error) {
	var zero T

	req, err := signer.Sign(ctx, method, endpointURL, headers, body, region, "execute-api")
	if err != nil {
		return zero, apperrors.ModelFetchFailure("failed to sign request to remote api", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		if apperrors.IsNetworkError(err) {
			return zero, apperrors.NetworkFailure("failed to reach remote api", err)
		}
		return zero, apperrors.ModelFetchFailure("failed to complete request to fetch remote model", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, apperrors.ModelFetchFailure("failed to read response from remote api", err)
	}

	var out T
	if err := json.Unmarshal(responseBody, &out); err != nil {
		return zero, apperrors.ModelFetchFailure("failed to deserialize response from remote api", err)
	}
	return out, nil
}

// Gateway is everything the resolver and readiness evaluator need from the
// catalog API. It exists so both can be unit tested against fakes instead
// of a real HTTP endpoint.
type Gateway interface {
	FetchDataSource(ctx context.Context, id string) (*catalogmodel.DataSourceDescriptor, error)
	FetchPipeline(ctx context.Context, id string) (*catalogmodel.PipelineDescriptor, error)
	FetchLatestDataSourceEvents(ctx context.Context, dataSourceURL *url.URL) ([]time.Time, error)
}

// HTTPGateway is the Gateway backed by the real catalog REST API, signed
// with SigV4 for API Gateway's IAM authorizer.
type HTTPGateway struct {
	signer         signing.Signer
	httpClient     *http.Client
	endpointPrefix string
	region         string
}

// NewHTTPGateway builds a Gateway that signs requests for region and
// resolves paths against endpointPrefix.
func NewHTTPGateway(signer signing.Signer, httpClient *http.Client, endpointPrefix, region string) *HTTPGateway {
	return &HTTPGateway{
		signer:         signer,
		httpClient:     httpClient,
		endpointPrefix: endpointPrefix,
		region:         region,
	}
}

// FetchDataSource fetches a data source's catalog record and reduces its
// dependent pipeline identifiers from full paths to bare ids.
func (g *HTTPGateway) FetchDataSource(ctx context.Context, id string) (*catalogmodel.DataSourceDescriptor, error) {
	endpoint, err := ConstructEndpointURL(g.endpointPrefix, []string{"data-sources", id})
	if err != nil {
		return nil, err
	}

	model, err := FetchRestModel[catalogmodel.DataSourceDescriptor](ctx, g.signer, g.httpClient, endpoint, g.region, nil, nil, http.MethodGet)
	if err != nil {
		return nil, err
	}
	model.DependentPipelines = Basenames(model.DependentPipelines)
	return &model, nil
}

// FetchPipeline fetches a pipeline's catalog record.
func (g *HTTPGateway) FetchPipeline(ctx context.Context, id string) (*catalogmodel.PipelineDescriptor, error) {
	endpoint, err := ConstructEndpointURL(g.endpointPrefix, []string{"pipelines", id})
	if err != nil {
		return nil, err
	}

	model, err := FetchRestModel[catalogmodel.PipelineDescriptor](ctx, g.signer, g.httpClient, endpoint, g.region, nil, nil, http.MethodGet)
	if err != nil {
		return nil, err
	}
	return &model, nil
}

// FetchLatestDataSourceEvents fetches a data source's event history, newest
// first, and returns just the timestamps the readiness evaluator compares
// against a pipeline's last success time.
func (g *HTTPGateway) FetchLatestDataSourceEvents(ctx context.Context, dataSourceURL *url.URL) ([]time.Time, error) {
	eventsURL, err := ConstructEndpointURL(dataSourceURL.String(), []string{"events"})
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(eventsURL)
	if err != nil {
		return nil, apperrors.URLParseFailure("failed to parse constructed events url", err)
	}
	u.RawQuery = "descending_order=true"

	records, err := FetchRestModel[[]catalogmodel.EventRecord](ctx, g.signer, g.httpClient, u.String(), g.region, nil, nil, http.MethodGet)
	if err != nil {
		return nil, err
	}

	times := make([]time.Time, 0, len(records))
	for _, record := range records {
		t, err := time.Parse(time.RFC3339, record.EventTime)
		if err != nil {
			return nil, apperrors.DatetimeParseFailure("failed to parse event_time from data source events", err)
		}
		times = append(times, t)
	}
	return times, nil
}
