// Package eventing carries the consume-side contract for platform
// events. Merchant Pulse never publishes; the ingestion collaborator
// owns the producing end of this envelope.
package eventing

import (
	"encoding/json"
	"time"
)

// Event types this service consumes.
const (
	EventIngestionBatchCompleted = "ingestion.batch.completed"
)

// ActorRef identifies the system or operator that produced the event.
type ActorRef struct {
	System string `json:"system,omitempty"`
	UserID string `json:"userId,omitempty"`
}

// PayloadEnvelope is the stable payload structure published with every
// platform event.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	EventType  string          `json:"eventType,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// BatchCompletedData is the payload of ingestion.batch.completed.
type BatchCompletedData struct {
	BatchID        string `json:"batchId"`
	Opportunities  int    `json:"opportunities"`
	WeeklyActuals  int    `json:"weeklyActuals"`
	CurvePoints    int    `json:"curvePoints"`
	ReplacedTables int    `json:"replacedTables"`
}
