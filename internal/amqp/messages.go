package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds published on the expense event trail.
const (
	EventCreated  = "transaction.created"
	EventDeleted  = "transaction.deleted"
	EventApproved = "transaction.approved"
	EventRejected = "transaction.rejected"
	EventImported = "batch.imported"
)

// MutationEvent is the audit record published after every state mutation.
// It carries identifiers only; consumers that need details query the API.
type MutationEvent struct {
	Kind          string    `json:"kind"`
	TransactionID string    `json:"transaction_id,omitempty"`
	SourceFile    string    `json:"source_file,omitempty"`
	Rows          int       `json:"rows,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewMutationEvent(kind, transactionID string) *MutationEvent {
	return &MutationEvent{
		Kind:          kind,
		TransactionID: transactionID,
		OccurredAt:    time.Now().UTC(),
	}
}

func NewImportEvent(sourceFile string, rows int) *MutationEvent {
	return &MutationEvent{
		Kind:       EventImported,
		SourceFile: sourceFile,
		Rows:       rows,
		OccurredAt: time.Now().UTC(),
	}
}

func (m *MutationEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MutationEventFromJSON(data []byte) (*MutationEvent, error) {
	var m MutationEvent
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
