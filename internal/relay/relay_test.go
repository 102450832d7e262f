package relay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	apperrors "github.com/datapipeline/trigger-coordinator/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRelay(t *testing.T, server *httptest.Server) *SFNRelay {
	t.Helper()
	client := sfn.New(sfn.Options{
		Region:       "us-east-1",
		Credentials:  credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
		BaseEndpoint: aws.String(server.URL),
		HTTPClient:   server.Client(),
	})
	return &SFNRelay{client: client}
}

func TestHeartbeat_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-amz-json-1.0")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	relay := newTestRelay(t, server)
	err := relay.Heartbeat(context.Background(), "tok")
	require.NoError(t, err)
}

func TestIsTaskReady_TaskTimedOutIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-amz-json-1.0")
		w.Header().Set("X-Amzn-Errortype", "TaskTimedOut")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"__type":"TaskTimedOut","message":"task no longer parked"}`))
	}))
	defer server.Close()

	relay := newTestRelay(t, server)
	ready, err := relay.IsTaskReady(context.Background(), "tok")
	require.NoError(t, err)
	assert.False(t, ready)
}

func TestIsTaskReady_OtherServiceErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-amz-json-1.0")
		w.Header().Set("X-Amzn-Errortype", "InvalidToken")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"__type":"InvalidToken","message":"bad token"}`))
	}))
	defer server.Close()

	relay := newTestRelay(t, server)
	_, err := relay.IsTaskReady(context.Background(), "tok")
	kind, ok := apperrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindRelayTaskHeartbeat, kind)
}

func TestSucceed_RelayFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-amz-json-1.0")
		w.Header().Set("X-Amzn-Errortype", "TaskDoesNotExist")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"__type":"TaskDoesNotExist","message":"no such task"}`))
	}))
	defer server.Close()

	relay := newTestRelay(t, server)
	err := relay.Succeed(context.Background(), "tok")
	kind, ok := apperrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindRelayTaskSuccess, kind)
}

func TestListStateMachines_MissingNameUsesSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-amz-json-1.0")
		_, _ = w.Write([]byte(`{"stateMachines":[{"stateMachineArn":"arn:aws:states:us-east-1:1:stateMachine:x","creationDate":1700000000}]}`))
	}))
	defer server.Close()

	relay := newTestRelay(t, server)
	names, err := relay.ListStateMachines(context.Background())
	require.NoError(t, err)
	require.Len(t, names, 1)
	assert.Equal(t, "dontmatchc706c64c6a794a87890ae0aa46b17d4c", names[0])
}
