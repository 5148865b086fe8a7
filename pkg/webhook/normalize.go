package webhook

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/go-go-golems/cricket/pkg/webhook/statetoken"
	"github.com/go-go-golems/cricket/pkg/webhook/wire"
)

// legacyVersionHeader marks a caller still speaking the legacy Actions SDK
// response envelope.
const legacyVersionHeader = "google-assistant-api-version"

// ConvDataContext is the Dialogflow context that carries the conversation
// state token between turns.
const ConvDataContext = "_cricket_conv"

// ConvDataLifespan keeps the state context alive across follow-up intents that
// do not pass through the webhook.
const ConvDataLifespan = 99

// Normalize detects which protocol and schema version produced the raw body,
// extracts the inner platform payload, and builds the Conversation for this
// turn. Headers are matched case-insensitively.
//
// Missing optional fields default to empty collections; a missing correlation
// id is tolerated since simulator-originated calls omit it. Only a body that
// matches no supported shape at all fails, with a NormalizationError.
func Normalize(body []byte, headers map[string]string, opts ...Option) (*Conversation, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &NormalizationError{Reason: "request body is not a JSON object"}
	}

	conv := &Conversation{
		RawRequest: append(json.RawMessage(nil), trimmed...),
		Data:       map[string]any{},
		Storage:    map[string]any{},
		Parameters: map[string]any{},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(conv)
	}

	var probe struct {
		QueryResult json.RawMessage `json:"queryResult"`
		Result      json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, &NormalizationError{Reason: "malformed JSON body: " + err.Error()}
	}

	var err error
	switch {
	case len(probe.QueryResult) > 0:
		err = conv.normalizeDialogflowV2(trimmed)
	case len(probe.Result) > 0:
		err = conv.normalizeDialogflowV1(trimmed)
	default:
		err = conv.normalizeActionsSDK(trimmed, headers)
	}
	if err != nil {
		return nil, err
	}

	conv.logger.Debug().
		Str("conv_id", conv.ID).
		Str("protocol", string(conv.Protocol)).
		Str("version", string(conv.Version)).
		Bool("simulator", conv.simulator).
		Msg("normalized webhook request")
	return conv, nil
}

func (c *Conversation) normalizeActionsSDK(body []byte, headers map[string]string) error {
	var payload wire.AppRequest
	if err := json.Unmarshal(body, &payload); err != nil {
		return &NormalizationError{Reason: "malformed platform payload: " + err.Error()}
	}
	if payload.Conversation == nil && payload.User == nil && len(payload.Inputs) == 0 {
		return &NormalizationError{Reason: "body matches no supported protocol shape"}
	}

	c.Protocol = ProtocolActionsSDK
	c.Version = VersionV2
	if headerValue(headers, legacyVersionHeader) != "" {
		c.Version = VersionV1
	}
	if payload.Conversation != nil {
		c.ID = payload.Conversation.ConversationID
		c.inboundDataPresent = payload.Conversation.ConversationToken != ""
		if err := c.decodeData(payload.Conversation.ConversationToken); err != nil {
			return err
		}
	}
	return c.adoptPayload(payload)
}

func (c *Conversation) normalizeDialogflowV1(body []byte) error {
	var req wire.DialogflowV1Request
	if err := json.Unmarshal(body, &req); err != nil {
		return &NormalizationError{Reason: "malformed dialogflow v1 body: " + err.Error()}
	}

	c.Protocol = ProtocolDialogflow
	c.Version = VersionV1
	c.ID = req.SessionID
	c.CorrelationID = req.ID
	// Calls replayed from the NLU console carry no original request wrapper.
	c.simulator = req.OriginalRequest == nil

	if req.Result != nil {
		c.Query = req.Result.ResolvedQuery
		c.Action = req.Result.Action
		if req.Result.Parameters != nil {
			c.Parameters = req.Result.Parameters
		}
		c.Contexts = req.Result.Contexts
		if err := c.decodeDataContext(); err != nil {
			return err
		}
	}
	if c.Locale == "" {
		c.Locale = req.Lang
	}

	var inner json.RawMessage
	if req.OriginalRequest != nil {
		inner = req.OriginalRequest.Data
	}
	payload, err := decodeInnerPayload(inner)
	if err != nil {
		return err
	}
	return c.adoptPayload(payload)
}

func (c *Conversation) normalizeDialogflowV2(body []byte) error {
	var req wire.DialogflowV2Request
	if err := json.Unmarshal(body, &req); err != nil {
		return &NormalizationError{Reason: "malformed dialogflow v2 body: " + err.Error()}
	}

	c.Protocol = ProtocolDialogflow
	c.Version = VersionV2
	c.ID = req.Session
	c.CorrelationID = req.ResponseID

	var inner json.RawMessage
	if req.OriginalDetectIntentRequest != nil {
		inner = req.OriginalDetectIntentRequest.Payload
	}
	// The NLU console simulator sends an empty payload object but still
	// assigns a response id.
	c.simulator = emptyJSONObject(inner) && req.ResponseID != ""

	if req.QueryResult != nil {
		c.Query = req.QueryResult.QueryText
		c.Action = req.QueryResult.Action
		if req.QueryResult.Parameters != nil {
			c.Parameters = req.QueryResult.Parameters
		}
		for _, ctx := range req.QueryResult.OutputContexts {
			c.Contexts = append(c.Contexts, wire.DialogflowContext{
				Name:       contextShortName(ctx.Name),
				Lifespan:   ctx.LifespanCount,
				Parameters: ctx.Parameters,
			})
		}
		if req.QueryResult.Intent != nil && c.Intent == "" {
			c.Intent = req.QueryResult.Intent.DisplayName
		}
		if c.Locale == "" {
			c.Locale = req.QueryResult.LanguageCode
		}
		if err := c.decodeDataContext(); err != nil {
			return err
		}
	}

	payload, err := decodeInnerPayload(inner)
	if err != nil {
		return err
	}
	return c.adoptPayload(payload)
}

// adoptPayload fills the Conversation from the inner platform payload,
// defaulting every missing field to an empty value.
func (c *Conversation) adoptPayload(payload wire.AppRequest) error {
	c.Payload = payload
	if payload.User != nil {
		c.User = *payload.User
		c.inboundStoragePresent = payload.User.UserStorage != ""
		storage, err := statetoken.Decode(payload.User.UserStorage)
		if err != nil {
			return errors.Wrap(err, "decode user storage token")
		}
		c.Storage = storage
		snapshot, err := statetoken.Encode(storage)
		if err != nil {
			return err
		}
		c.inboundStorage = snapshot
		if c.Locale == "" {
			c.Locale = payload.User.Locale
		}
	} else {
		c.inboundStorage = mustEmptyToken()
	}

	c.Device = payload.Device
	c.Surface = newSurfaceCapabilities(payload.Surface)
	c.Available = newAvailableSurfaces(payload.AvailableSurfaces)
	c.Sandbox = payload.IsInSandbox

	var args []wire.Argument
	if len(payload.Inputs) > 0 {
		input := payload.Inputs[0]
		if input.Intent != "" {
			c.Intent = input.Intent
		}
		if c.Query == "" && len(input.RawInputs) > 0 {
			c.Query = input.RawInputs[0].Query
			c.InputType = input.RawInputs[0].InputType
		}
		args = input.Arguments
	}
	c.Arguments = NewArguments(args)

	if c.inboundData == "" {
		c.inboundData = mustEmptyToken()
	}
	return nil
}

// decodeData decodes the per-turn opaque token into Data and snapshots its
// canonical form for the emission rule.
func (c *Conversation) decodeData(token string) error {
	data, err := statetoken.Decode(token)
	if err != nil {
		return errors.Wrap(err, "decode conversation token")
	}
	c.Data = data
	snapshot, err := statetoken.Encode(data)
	if err != nil {
		return err
	}
	c.inboundData = snapshot
	return nil
}

// decodeDataContext pulls the state token out of the named Dialogflow context.
func (c *Conversation) decodeDataContext() error {
	for _, ctx := range c.Contexts {
		if contextShortName(ctx.Name) != ConvDataContext {
			continue
		}
		token, _ := ctx.Parameters["data"].(string)
		c.inboundDataPresent = token != ""
		return c.decodeData(token)
	}
	return nil
}

func decodeInnerPayload(raw json.RawMessage) (wire.AppRequest, error) {
	var payload wire.AppRequest
	if len(raw) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, &NormalizationError{Reason: "malformed inner platform payload: " + err.Error()}
	}
	return payload, nil
}

// contextShortName strips the projects/.../contexts/ prefix that Dialogflow v2
// puts on context names.
func contextShortName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

func headerValue(headers map[string]string, key string) string {
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func emptyJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return true
	}
	compact := strings.Join(strings.Fields(string(trimmed)), "")
	return compact == "{}"
}

func mustEmptyToken() string {
	token, err := statetoken.Encode(nil)
	if err != nil {
		// Encoding an empty map cannot fail.
		panic(err)
	}
	return token
}
