package amqp

import (
	"encoding/json"
	"time"
)

// Event names published after a committed engine mutation.
const (
	EventTemplateCreated      = "template.created"
	EventTemplateUpdated      = "template.updated"
	EventTemplatePaused       = "template.paused"
	EventTemplateResumed      = "template.resumed"
	EventTemplateDeleted      = "template.deleted"
	EventOccurrencesGenerated = "occurrences.generated"
	EventOccurrencesDeleted   = "occurrences.deleted"
	EventOccurrenceUpdated    = "occurrence.updated"
	EventOccurrenceStatus     = "occurrence.status_changed"
)

// OccurrenceEvent is a lightweight notification. Consumers fetch the rows they need
// through the API; the event only says what changed.
type OccurrenceEvent struct {
	Event         string    `json:"event"`
	TemplateID    string    `json:"templateId,omitempty"`
	TransactionID string    `json:"transactionId,omitempty"`
	Status        string    `json:"status,omitempty"`
	Count         int       `json:"count"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewOccurrenceEvent(event, templateID string, count int, now time.Time) *OccurrenceEvent {
	return &OccurrenceEvent{
		Event:      event,
		TemplateID: templateID,
		Count:      count,
		Timestamp:  now.UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *OccurrenceEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// OccurrenceEventFromJSON decodes an event body.
func OccurrenceEventFromJSON(data []byte) (*OccurrenceEvent, error) {
	var e OccurrenceEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
