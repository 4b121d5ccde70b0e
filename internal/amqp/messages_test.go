package amqp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutationEventRoundTrip(t *testing.T) {
	event := NewMutationEvent(EventApproved, "EXP-123")

	data, err := event.ToJSON()
	require.NoError(t, err)

	got, err := MutationEventFromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, EventApproved, got.Kind)
	assert.Equal(t, "EXP-123", got.TransactionID)
	assert.False(t, got.OccurredAt.IsZero())
}

func TestImportEventCarriesBatchFields(t *testing.T) {
	event := NewImportEvent("despesas_marco.csv", 25)

	assert.Equal(t, EventImported, event.Kind)
	assert.Equal(t, "despesas_marco.csv", event.SourceFile)
	assert.Equal(t, 25, event.Rows)
	assert.Empty(t, event.TransactionID)
}

func TestMutationEventFromJSONRejectsGarbage(t *testing.T) {
	_, err := MutationEventFromJSON([]byte("{not json"))
	assert.Error(t, err)
}
