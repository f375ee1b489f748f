package realtime

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeKnownTypes(t *testing.T) {
	env, err := Decode([]byte(`{"type":"campaign_update","action":"created","id":"c1","data":{"name":"Q1"}}`))
	require.NoError(t, err)
	cu, ok := env.(CampaignUpdate)
	require.True(t, ok)
	assert.Equal(t, ActionCreated, cu.Action)
	assert.Equal(t, "c1", cu.ID)
	assert.JSONEq(t, `{"name":"Q1"}`, string(cu.Data))

	env, err = Decode([]byte(`{"type":"unsubscribe","channel":"campaigns"}`))
	require.NoError(t, err)
	assert.Equal(t, Unsubscribe{Channel: "campaigns"}, env)
}

func TestDecodeUnknownTagIsKept(t *testing.T) {
	env, err := Decode([]byte(`{"type":"budget_alert","level":3}`))
	require.NoError(t, err)
	u, ok := env.(Unknown)
	require.True(t, ok)
	assert.Equal(t, EventType("budget_alert"), u.Type())
	assert.Equal(t, "", Channel(u))
}

func TestDecodeKnownTagWithMistypedBodyIsUnknown(t *testing.T) {
	for _, payload := range []string{
		`{"type":"campaign_update","id":42}`,
		`{"type":"subscribe","channel":7}`,
	} {
		env, err := Decode([]byte(payload))
		require.NoError(t, err, payload)
		u, ok := env.(Unknown)
		require.True(t, ok, payload)
		assert.JSONEq(t, payload, string(u.Raw))

		back, err := Encode(u)
		require.NoError(t, err)
		assert.JSONEq(t, payload, string(back))
	}
}

func TestDecodeRejects(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	assert.Error(t, err)

	_, err = Decode([]byte(`[1,2]`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"action":"created"}`))
	assert.True(t, errors.Is(err, ErrMissingType))
}

func TestEncodeRoundTripsEveryVariant(t *testing.T) {
	upd, err := NewUpdate(TypeAnalyticsUpdate, ActionUpdated, "a1", map[string]int{"clicks": 4})
	require.NoError(t, err)

	for _, env := range []Envelope{
		upd,
		Subscribe{Channel: ChannelCampaigns},
		Unsubscribe{Channel: ChannelCampaigns},
	} {
		data, err := Encode(env)
		require.NoError(t, err)
		back, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, env.Type(), back.Type())
		assert.Equal(t, Channel(env), Channel(back))
	}
}

func TestNewUpdateRejectsNonUpdateType(t *testing.T) {
	_, err := NewUpdate(TypeSubscribe, ActionCreated, "x", nil)
	assert.Error(t, err)
}

func TestChannelMapping(t *testing.T) {
	assert.Equal(t, "campaigns", Channel(CampaignUpdate{}))
	assert.Equal(t, "analytics", Channel(AnalyticsUpdate{}))
	assert.Equal(t, "clients", Channel(ClientUpdate{}))
	assert.Equal(t, "", Channel(Subscribe{}))
}
