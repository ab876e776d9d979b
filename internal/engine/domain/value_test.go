package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueAccessors(t *testing.T) {
	t.Run("number", func(t *testing.T) {
		n, err := Number(12.5).AsNumber()
		require.NoError(t, err)
		assert.Equal(t, 12.5, n)
	})

	t.Run("protocol reference", func(t *testing.T) {
		id := uuid.New()
		got, err := ProtocolReference(id).AsProtocolReference()
		require.NoError(t, err)
		assert.Equal(t, id, got)
	})

	t.Run("struct with nested values", func(t *testing.T) {
		v := Struct("/seed/Event", map[string]Value{
			"type":   Enum("/seed/EventType", "Payment"),
			"amount": Number(10),
		})

		s, err := v.AsStruct()
		require.NoError(t, err)
		assert.Equal(t, "/seed/Event", s.TypeName)

		e, err := s.Fields["type"].AsEnum()
		require.NoError(t, err)
		assert.Equal(t, "Payment", e.Variant)
	})

	t.Run("party", func(t *testing.T) {
		p := Party{Entity: map[string][]string{"party": {"payee"}}, Access: map[string][]string{}}
		got, err := PartyValue(p).AsParty()
		require.NoError(t, err)
		assert.Equal(t, p, got)
	})

	t.Run("type mismatch", func(t *testing.T) {
		_, err := Text("ten").AsNumber()
		assert.Error(t, err)
	})
}

func TestValueWireFormat(t *testing.T) {
	raw, err := json.Marshal(Number(3))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"number","value":3}`, string(raw))

	var n Notification
	require.NoError(t, json.Unmarshal(
		[]byte(`{"id":4,"payload":{"name":"/seed/IouComplete","arguments":[{"type":"text","value":"x"}]}}`),
		&n,
	))
	assert.Equal(t, int64(4), n.ID)
	assert.Equal(t, "/seed/IouComplete", n.Payload.Name)
	text, err := n.Payload.Arguments[0].AsText()
	require.NoError(t, err)
	assert.Equal(t, "x", text)
}
