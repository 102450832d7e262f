package catalogmodel

import (
	"time"

	"github.com/datapipeline/trigger-coordinator/internal/entities"
	apperrors "github.com/datapipeline/trigger-coordinator/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// CreatorType discriminates the two things that can raise an input event.
type CreatorType string

const (
	CreatorTypeDataSource CreatorType = "DataSource"
	CreatorTypePipeline   CreatorType = "Pipeline"
)

// InputEvent is the raw envelope the host runtime hands the coordinator,
// before it is validated and projected into an entities.Event.
type InputEvent struct {
	Source  string           `json:"source" validate:"required"`
	EventID string           `json:"event_id" validate:"required"`
	Detail  InputEventDetail `json:"detail" validate:"required"`
}

type InputEventDetail struct {
	CreatorType CreatorType       `json:"creator_type" validate:"required,oneof=DataSource Pipeline"`
	CreatorID   string            `json:"creator_id" validate:"required"`
	Payload     InputEventPayload `json:"payload" validate:"required"`
}

type InputEventPayload struct {
	CallbackToken *string `json:"callback_token,omitempty"`
	SuccessTime   *string `json:"success_time,omitempty"`
	EventTime     string  `json:"event_time" validate:"required"`
}

// validate runs the struct-tag-level checks common to every envelope shape
// (required fields, the creator_type enum). The conditional rules that
// differ by creator_type (success_time/callback_token required only for a
// Pipeline event) are cross-field and stay in ValidateAndConvert below.
var validate = validator.New()

// ValidateAndConvert projects a raw InputEvent into the internal Event the
// core operates on. CreatorType == Pipeline requires both success_time and
// callback_token; a DataSource event requires neither.
func ValidateAndConvert(in InputEvent) (entities.Event, error) {
	if err := validate.Struct(in); err != nil {
		return entities.Event{}, apperrors.EventValidation(err.Error())
	}

	eventTime, err := time.Parse(time.RFC3339, in.Detail.Payload.EventTime)
	if err != nil {
		return entities.Event{}, apperrors.DatetimeParseFailure("failed to parse event_time", err)
	}

	var payload entities.EventPayload
	switch in.Detail.CreatorType {
	case CreatorTypeDataSource:
		payload = entities.NewDataSourceEvent(in.Detail.CreatorID)

	case CreatorTypePipeline:
		if in.Detail.Payload.SuccessTime == nil {
			return entities.Event{}, apperrors.EventValidation("pipeline event missing success_time")
		}
		if in.Detail.Payload.CallbackToken == nil {
			return entities.Event{}, apperrors.EventValidation("pipeline event missing callback_token")
		}
		successTime, err := time.Parse(time.RFC3339, *in.Detail.Payload.SuccessTime)
		if err != nil {
			return entities.Event{}, apperrors.EventTimeConversion("failed to parse success_time", err)
		}
		payload = entities.NewDataPipelineEvent(in.Detail.CreatorID, successTime, *in.Detail.Payload.CallbackToken)
	}

	return entities.Event{
		ID:        in.EventID,
		EventTime: eventTime,
		Payload:   payload,
	}, nil
}
