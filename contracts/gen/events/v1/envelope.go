package v1

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	ErrMissingEventID   = errors.New("envelope event_id is required")
	ErrMissingEventType = errors.New("envelope event_type is required")
)

// Envelope wraps every marketplace program event that leaves the outbox.
// Fields are append-only; consumers key on event_type and schema_version.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

// Validate reports whether the envelope can be routed.
func (e Envelope) Validate() error {
	if strings.TrimSpace(e.EventID) == "" {
		return ErrMissingEventID
	}
	if strings.TrimSpace(e.EventType) == "" {
		return ErrMissingEventType
	}
	return nil
}
