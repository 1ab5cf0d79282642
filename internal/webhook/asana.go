package webhook

import (
	"encoding/json"
	"errors"
	"fmt"

	"asana-ticket-numbering/internal/model"
)

// ErrInvalidPayload is returned when a delivery body is not an event batch.
var ErrInvalidPayload = errors.New("invalid webhook payload")

// asanaEventBatch matches the Asana webhook delivery body.
type asanaEventBatch struct {
	Events []struct {
		Action   string `json:"action"`
		Resource struct {
			GID          string `json:"gid"`
			ResourceType string `json:"resource_type"`
		} `json:"resource"`
		Change *struct {
			Field  string `json:"field"`
			Action string `json:"action"`
		} `json:"change"`
	} `json:"events"`
}

// ParseEventBatch parses an Asana event delivery into model events, keeping
// the order in which they were sent.
func ParseEventBatch(payload []byte) ([]model.Event, error) {
	var batch asanaEventBatch
	if err := json.Unmarshal(payload, &batch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	events := make([]model.Event, 0, len(batch.Events))
	for _, e := range batch.Events {
		ev := model.Event{
			ResourceType: model.ResourceType(e.Resource.ResourceType),
			ResourceID:   e.Resource.GID,
			Action:       e.Action,
		}
		if e.Change != nil {
			ev.ChangedField = e.Change.Field
		}
		events = append(events, ev)
	}
	return events, nil
}
