package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// EnvelopeVersion is bumped when the Event layout changes incompatibly.
const EnvelopeVersion = 1

// Event is the envelope every message on a somstore topic is wrapped in.
// AggregateID doubles as the message key, so events of one aggregate stay
// ordered on a single partition.
type Event struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	AggregateID   string            `json:"aggregate_id"`
	AggregateType string            `json:"aggregate_type"`
	Version       int               `json:"version"`
	Timestamp     time.Time         `json:"timestamp"`
	Source        string            `json:"source"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEvent wraps data for aggregateID with a fresh event id.
func NewEvent(eventType, aggregateID, aggregateType, source string, data any) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Event{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		Version:       EnvelopeVersion,
		Timestamp:     time.Now().UTC(),
		Source:        source,
		Data:          payload,
	}, nil
}

func (e *Event) WithCorrelationID(id string) *Event {
	e.CorrelationID = id
	return e
}

func (e *Event) WithMetadata(key, value string) *Event {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string, 1)
	}
	e.Metadata[key] = value
	return e
}

// Message renders the event for topic. Event type, source, correlation id
// and metadata are copied into headers so consumers can route without
// decoding the body.
func (e *Event) Message(topic string) (kafka.Message, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal %s event: %w", e.EventType, err)
	}

	headers := []kafka.Header{
		{Key: "event_type", Value: []byte(e.EventType)},
		{Key: "source", Value: []byte(e.Source)},
	}
	if e.CorrelationID != "" {
		headers = append(headers, kafka.Header{Key: "correlation_id", Value: []byte(e.CorrelationID)})
	}
	for k, v := range e.Metadata {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	return kafka.Message{
		Topic:   topic,
		Key:     []byte(e.AggregateID),
		Value:   body,
		Headers: headers,
	}, nil
}
