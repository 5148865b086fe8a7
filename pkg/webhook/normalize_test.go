package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const innerPayload = `{
	"user": {"userId": "u-1", "locale": "de-DE", "userStorage": "{\"data\":{\"name\":\"ada\"}}"},
	"device": {"location": {"city": "Berlin"}},
	"surface": {"capabilities": [{"name": "actions.capability.AUDIO_OUTPUT"}]},
	"availableSurfaces": [{"capabilities": [{"name": "actions.capability.SCREEN_OUTPUT"}]}],
	"conversation": {"conversationId": "conv-1", "type": "ACTIVE"},
	"inputs": [{
		"intent": "actions.intent.TEXT",
		"rawInputs": [{"inputType": "VOICE", "query": "turn it up"}],
		"arguments": [{"name": "OPTION", "textValue": "red"}]
	}],
	"isInSandbox": true
}`

func TestNormalizeActionsSDK(t *testing.T) {
	conv, err := Normalize([]byte(innerPayload), nil)
	require.NoError(t, err)

	assert.Equal(t, ProtocolActionsSDK, conv.Protocol)
	assert.Equal(t, VersionV2, conv.Version)
	assert.Equal(t, "conv-1", conv.ID)
	assert.Empty(t, conv.CorrelationID)
	assert.Equal(t, "actions.intent.TEXT", conv.Intent)
	assert.Equal(t, "turn it up", conv.Query)
	assert.Equal(t, "VOICE", conv.InputType)
	assert.Equal(t, "de-DE", conv.Locale)
	assert.True(t, conv.Sandbox)
	assert.False(t, conv.Simulator())

	assert.True(t, conv.Surface.Has("actions.capability.AUDIO_OUTPUT"))
	assert.True(t, conv.Available.Has("actions.capability.SCREEN_OUTPUT"))
	require.NotNil(t, conv.Device)
	assert.Equal(t, "Berlin", conv.Device.Location.City)

	v, ok := conv.Arguments.Get("OPTION")
	require.True(t, ok)
	assert.Equal(t, "red", v)

	assert.Equal(t, "ada", conv.Storage["name"])
	assert.Empty(t, conv.Data)
}

func TestNormalizeActionsSDKLegacyVersionHeader(t *testing.T) {
	headers := map[string]string{"Google-Assistant-API-Version": "v1"}
	conv, err := Normalize([]byte(innerPayload), headers)
	require.NoError(t, err)
	assert.Equal(t, ProtocolActionsSDK, conv.Protocol)
	assert.Equal(t, VersionV1, conv.Version)

	// Header match is case-insensitive.
	conv, err = Normalize([]byte(innerPayload), map[string]string{"google-assistant-api-version": "v1"})
	require.NoError(t, err)
	assert.Equal(t, VersionV1, conv.Version)
}

func TestNormalizeDialogflowV2(t *testing.T) {
	body := `{
		"responseId": "resp-1",
		"session": "projects/demo/agent/sessions/sess-1",
		"queryResult": {
			"queryText": "turn it up",
			"action": "volume.up",
			"parameters": {"amount": 2},
			"languageCode": "en",
			"intent": {"displayName": "VolumeUp"},
			"outputContexts": [{
				"name": "projects/demo/agent/sessions/sess-1/contexts/_cricket_conv",
				"lifespanCount": 99,
				"parameters": {"data": "{\"data\":{\"count\":4}}"}
			}]
		},
		"originalDetectIntentRequest": {"source": "google", "version": "2", "payload": ` + innerPayload + `}
	}`
	conv, err := Normalize([]byte(body), nil)
	require.NoError(t, err)

	assert.Equal(t, ProtocolDialogflow, conv.Protocol)
	assert.Equal(t, VersionV2, conv.Version)
	assert.Equal(t, "projects/demo/agent/sessions/sess-1", conv.ID)
	assert.Equal(t, "resp-1", conv.CorrelationID)
	assert.Equal(t, "turn it up", conv.Query)
	assert.Equal(t, "volume.up", conv.Action)
	assert.Equal(t, float64(2), conv.Parameters["amount"])
	assert.False(t, conv.Simulator())

	// Platform payload is still normalized underneath the NLU wrapper.
	assert.Equal(t, "actions.intent.TEXT", conv.Intent)
	assert.True(t, conv.Sandbox)
	assert.Equal(t, "ada", conv.Storage["name"])

	// Conversation data comes from the named context.
	assert.Equal(t, float64(4), conv.Data["count"])
	require.Len(t, conv.Contexts, 1)
	assert.Equal(t, "_cricket_conv", conv.Contexts[0].Name)
}

func TestNormalizeDialogflowV2SimulatorDetection(t *testing.T) {
	body := `{
		"responseId": "resp-1",
		"session": "projects/demo/agent/sessions/sess-1",
		"queryResult": {"queryText": "hi"},
		"originalDetectIntentRequest": {"source": "google", "payload": {}}
	}`
	conv, err := Normalize([]byte(body), nil)
	require.NoError(t, err)
	assert.True(t, conv.Simulator())
	// The correlation id is still captured even for simulator calls.
	assert.Equal(t, "resp-1", conv.CorrelationID)
}

func TestNormalizeDialogflowV1(t *testing.T) {
	body := `{
		"id": "req-1",
		"sessionId": "sess-1",
		"lang": "en",
		"result": {
			"resolvedQuery": "turn it up",
			"action": "volume.up",
			"parameters": {"amount": "2"},
			"contexts": [{"name": "_cricket_conv", "lifespan": 99, "parameters": {"data": "{\"data\":{\"count\":4}}"}}]
		},
		"originalRequest": {"source": "google", "version": "2", "data": ` + innerPayload + `}
	}`
	conv, err := Normalize([]byte(body), nil)
	require.NoError(t, err)

	assert.Equal(t, ProtocolDialogflow, conv.Protocol)
	assert.Equal(t, VersionV1, conv.Version)
	assert.Equal(t, "sess-1", conv.ID)
	assert.Equal(t, "req-1", conv.CorrelationID)
	assert.Equal(t, "turn it up", conv.Query)
	assert.Equal(t, float64(4), conv.Data["count"])
	assert.False(t, conv.Simulator())
}

func TestNormalizeDialogflowV1SimulatorWithoutOriginalRequest(t *testing.T) {
	body := `{
		"id": "req-1",
		"sessionId": "sess-1",
		"result": {"resolvedQuery": "hi"}
	}`
	conv, err := Normalize([]byte(body), nil)
	require.NoError(t, err)
	assert.True(t, conv.Simulator())
	// Missing optional payload fields default to empty collections.
	assert.NotNil(t, conv.Arguments)
	assert.Empty(t, conv.Storage)
	assert.False(t, conv.Surface.Has("actions.capability.AUDIO_OUTPUT"))
}

func TestNormalizeRejectsUnrecognizedShapes(t *testing.T) {
	var normErr *NormalizationError

	_, err := Normalize([]byte("not json"), nil)
	require.ErrorAs(t, err, &normErr)

	_, err = Normalize([]byte(`{"something":"else"}`), nil)
	require.ErrorAs(t, err, &normErr)

	_, err = Normalize(nil, nil)
	require.ErrorAs(t, err, &normErr)
}

func TestNormalizeTolerantDefaults(t *testing.T) {
	// A minimal body with just a conversation id: everything else defaults.
	conv, err := Normalize([]byte(`{"conversation":{"conversationId":"conv-1"}}`), nil)
	require.NoError(t, err)
	assert.Equal(t, "conv-1", conv.ID)
	assert.Empty(t, conv.Query)
	assert.NotNil(t, conv.Data)
	assert.NotNil(t, conv.Storage)
	assert.NotNil(t, conv.Arguments)
}
