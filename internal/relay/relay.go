// Package relay wakes up the workflow engine a pipeline is parked on: it
// probes whether the parked task is still alive and, when a pipeline is
// ready to fire, signals it to resume.
package relay

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	sfntypes "github.com/aws/aws-sdk-go-v2/service/sfn/types"
	apperrors "github.com/datapipeline/trigger-coordinator/pkg/errors"
)

// Relay is everything the orchestrator needs from the workflow engine.
// ListStateMachines is kept for a state-machine-existence check that isn't
// wired into the trigger path yet but is useful for diagnostics tooling.
type Relay interface {
	Heartbeat(ctx context.Context, taskToken string) error
	Succeed(ctx context.Context, taskToken string) error
	IsTaskReady(ctx context.Context, taskToken string) (bool, error)
	ListStateMachines(ctx context.Context) ([]string, error)
}

// SFNRelay is the Relay backed by AWS Step Functions.
type SFNRelay struct {
	client *sfn.Client
}

// NewSFNRelay builds a Relay from an AWS config.
func NewSFNRelay(cfg aws.Config) *SFNRelay {
	return &SFNRelay{client: sfn.NewFromConfig(cfg)}
}

// Heartbeat sends a bare heartbeat for a parked task, failing if the
// workflow engine no longer recognizes the token.
func (r *SFNRelay) Heartbeat(ctx context.Context, taskToken string) error {
	_, err := r.client.SendTaskHeartbeat(ctx, &sfn.SendTaskHeartbeatInput{TaskToken: aws.String(taskToken)})
	if err != nil {
		return apperrors.RelayTaskHeartbeat("state machine heartbeat relay failed; perhaps state machine down or busy", err)
	}
	return nil
}

// Succeed reports the pipeline's underlying task as complete, waking the
// workflow engine up from the step it was parked on.
func (r *SFNRelay) Succeed(ctx context.Context, taskToken string) error {
	_, err := r.client.SendTaskSuccess(ctx, &sfn.SendTaskSuccessInput{TaskToken: aws.String(taskToken), Output: aws.String("{}")})
	if err != nil {
		return apperrors.RelayTaskSuccess("relaying task success to state machine failed", err)
	}
	return nil
}

// IsTaskReady probes task readiness with a heartbeat: a TaskTimedOut
// service error means the engine has moved on from this token, which isn't
// a failure, just a "not ready" answer. Any other error is surfaced.
func (r *SFNRelay) IsTaskReady(ctx context.Context, taskToken string) (bool, error) {
	err := r.Heartbeat(ctx, taskToken)
	if err == nil {
		return true, nil
	}

	var timedOut *sfntypes.TaskTimedOut
	if errors.As(err, &timedOut) {
		return false, nil
	}
	return false, err
}

// ListStateMachines returns the names of every state machine the relay's
// credentials can see.
func (r *SFNRelay) ListStateMachines(ctx context.Context) ([]string, error) {
	resp, err := r.client.ListStateMachines(ctx, &sfn.ListStateMachinesInput{})
	if err != nil {
		return nil, apperrors.StateMachineFetching("failed to fetch state machine names", err)
	}

	names := make([]string, 0, len(resp.StateMachines))
	for _, sm := range resp.StateMachines {
		if sm.Name != nil {
			names = append(names, *sm.Name)
		} else {
			names = append(names, "dontmatchc706c64c6a794a87890ae0aa46b17d4c")
		}
	}
	return names, nil
}
