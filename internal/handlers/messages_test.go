// internal/handlers/messages_test.go
package handlers

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientMessageCardIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	msg := ClientMessage{CardIDs: []string{a.String(), b.String()}}

	ids, err := msg.cardIDs()
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)

	msg = ClientMessage{CardIDs: []string{"not-a-uuid"}}
	_, err = msg.cardIDs()
	assert.Error(t, err)

	msg = ClientMessage{}
	_, err = msg.cardIDs()
	assert.Error(t, err, "an empty throw is rejected at the boundary")
}

func TestClientMessageDrawSource(t *testing.T) {
	msg := ClientMessage{}
	assert.False(t, msg.drawSource().FromPile, "missing draw block means a blind deck draw")

	raw := `{"type":"throw_cards","draw":{"fromPile":true,"pileIndex":1}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))
	src := msg.drawSource()
	assert.True(t, src.FromPile)
	assert.Equal(t, 1, src.PileIndex)
}

func TestClientMessageEnvelopeDecoding(t *testing.T) {
	raw := `{"type":"create_room","name":"ana","settings":{"scoreLimit":100,"allowSticking":false}}`
	var msg ClientMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))
	assert.Equal(t, msgCreateRoom, msg.Type)
	assert.Equal(t, "ana", msg.Name)
	require.NotNil(t, msg.Settings)
	assert.Equal(t, 100, msg.Settings.ScoreLimit)
	assert.False(t, msg.Settings.AllowSticking)
}
