package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/iou/internal/errors"
)

func TestUserParty(t *testing.T) {
	p := UserParty("payee", "bob")

	username, ok := p.Username()
	require.True(t, ok)
	assert.Equal(t, "bob", username)
	assert.Equal(t, []string{"payee"}, p.Entity[PartyClaim].Values())
	assert.Empty(t, p.Access)
}

func TestPartyEqual(t *testing.T) {
	a := Party{
		Entity: map[string]StringSet{"party": NewStringSet("issuer", "admin")},
		Access: map[string]StringSet{},
	}
	b := Party{
		Entity: map[string]StringSet{"party": NewStringSet("admin", "issuer", "issuer")},
		Access: map[string]StringSet{},
	}
	c := Party{
		Entity: map[string]StringSet{"party": NewStringSet("admin")},
		Access: map[string]StringSet{},
	}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, UserParty("payee", "bob").Equal(UserParty("payee", "alice")))
}

func TestPartyJSON(t *testing.T) {
	p := Party{
		Entity: map[string]StringSet{"party": NewStringSet("b", "a")},
		Access: map[string]StringSet{"team": NewStringSet()},
	}

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"entity":{"party":["a","b"]},"access":{"team":[]}}`, string(raw))

	var decoded Party
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.True(t, p.Equal(decoded))
}

func TestPartyEngineRoundTrip(t *testing.T) {
	p := UserParty("issuer", "alice")
	assert.True(t, p.Equal(PartyFromEngine(p.ToEngine())))
}

func TestCapability(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		_, err := NewCapability("  ")
		assert.ErrorIs(t, err, ErrInvalidBearerToken)
	})

	t.Run("bearer header", func(t *testing.T) {
		c, err := NewCapability("Bearer abc.def")
		require.NoError(t, err)

		scheme, credential, err := c.Authorization()
		require.NoError(t, err)
		assert.Equal(t, "Bearer", scheme)
		assert.Equal(t, "abc.def", credential)
		assert.Equal(t, "Bearer abc.def", c.Header())
	})

	t.Run("malformed header fails when presented", func(t *testing.T) {
		c, err := NewCapability("abc.def")
		require.NoError(t, err)

		_, _, err = c.Authorization()
		assert.ErrorIs(t, err, ErrInvalidBearerToken)
		code, ok := errors.CodeOf(err)
		assert.True(t, ok)
		assert.Equal(t, errors.CodeInvalidBearerToken, code)
	})
}
