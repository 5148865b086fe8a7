package webhook

import (
	"github.com/go-go-golems/cricket/pkg/webhook/wire"
)

// simulatorWarning is the plain-text mirror used when the response cannot be
// rendered by an interactive simulator.
const simulatorWarning = "Cannot display response in the simulator. Test on a device instead."

// Serialize renders the composed result into the wire envelope of the
// protocol/version that produced the request. The returned value is one of the
// envelope structs from the wire package, ready for JSON marshalling by the
// host adapter.
func Serialize(conv *Conversation, composed *Composed) (any, error) {
	if composed == nil {
		return nil, illegalStatef("serialize called before finalization")
	}
	switch {
	case conv.Protocol == ProtocolActionsSDK && conv.Version == VersionV1:
		return serializeLegacyAppResponse(composed), nil
	case conv.Protocol == ProtocolActionsSDK:
		return serializeAppResponse(conv, composed), nil
	case conv.Protocol == ProtocolDialogflow && conv.Version == VersionV1:
		return serializeDialogflowV1(conv, composed), nil
	case conv.Protocol == ProtocolDialogflow:
		return serializeDialogflowV2(conv, composed), nil
	}
	return nil, &NormalizationError{Reason: "unknown protocol " + string(conv.Protocol)}
}

func serializeAppResponse(conv *Conversation, composed *Composed) *wire.AppResponse {
	resp := &wire.AppResponse{
		ExpectUserResponse: composed.ExpectUserResponse,
		IsInSandbox:        conv.Sandbox,
	}
	if composed.ConversationToken != nil {
		resp.ConversationToken = *composed.ConversationToken
	}
	if composed.UserStorage != nil {
		resp.UserStorage = *composed.UserStorage
	}
	if composed.ExpectUserResponse {
		resp.ExpectedInputs = []wire.ExpectedInput{{
			InputPrompt:     &wire.InputPrompt{RichInitialPrompt: composed.RichResponse},
			PossibleIntents: []wire.ExpectedIntent{possibleIntent(composed)},
		}}
	} else {
		resp.FinalResponse = &wire.FinalResponse{RichResponse: composed.RichResponse}
	}
	return resp
}

func serializeLegacyAppResponse(composed *Composed) *wire.LegacyAppResponse {
	resp := &wire.LegacyAppResponse{ExpectUserResponse: composed.ExpectUserResponse}
	if composed.ConversationToken != nil {
		resp.ConversationToken = *composed.ConversationToken
	}
	prompts := speechPrompts(composed.RichResponse)
	if composed.ExpectUserResponse {
		resp.ExpectedInputs = []wire.LegacyExpectedInput{{
			InputPrompt:     &wire.LegacyInputPrompt{InitialPrompts: prompts},
			PossibleIntents: []wire.ExpectedIntent{possibleIntent(composed)},
		}}
	} else {
		final := &wire.LegacyFinalResponse{}
		if len(prompts) > 0 {
			final.SpeechResponse = &prompts[0]
		}
		resp.FinalResponse = final
	}
	return resp
}

func serializeDialogflowV1(conv *Conversation, composed *Composed) *wire.DialogflowV1Response {
	resp := &wire.DialogflowV1Response{
		Data: &wire.DialogflowPayload{Google: googlePayload(composed)},
	}
	if composed.ConversationToken != nil {
		resp.ContextOut = []wire.DialogflowContext{{
			Name:       ConvDataContext,
			Lifespan:   contextLifespan(*composed.ConversationToken),
			Parameters: map[string]any{"data": *composed.ConversationToken},
		}}
	}
	if conv.Simulator() {
		mirror := simulatorMirror(composed)
		resp.Speech = mirror
		resp.DisplayText = mirror
	}
	return resp
}

func serializeDialogflowV2(conv *Conversation, composed *Composed) *wire.DialogflowV2Response {
	resp := &wire.DialogflowV2Response{
		Payload: &wire.DialogflowPayload{Google: googlePayload(composed)},
	}
	if composed.ConversationToken != nil {
		name := ConvDataContext
		if conv.ID != "" {
			name = conv.ID + "/contexts/" + ConvDataContext
		}
		resp.OutputContexts = []wire.DialogflowV2Context{{
			Name:          name,
			LifespanCount: contextLifespan(*composed.ConversationToken),
			Parameters:    map[string]any{"data": *composed.ConversationToken},
		}}
	}
	if conv.Simulator() {
		resp.FulfillmentText = simulatorMirror(composed)
	}
	return resp
}

func googlePayload(composed *Composed) *wire.DialogflowGooglePayload {
	payload := &wire.DialogflowGooglePayload{
		ExpectUserResponse: composed.ExpectUserResponse,
		RichResponse:       composed.RichResponse,
	}
	if composed.UserStorage != nil {
		payload.UserStorage = *composed.UserStorage
	}
	if composed.ExpectedIntent != nil {
		payload.SystemIntent = &wire.DialogflowSystemIntent{
			Intent: composed.ExpectedIntent.Intent,
			Data:   composed.ExpectedIntent.InputValueData,
		}
	}
	return payload
}

func possibleIntent(composed *Composed) wire.ExpectedIntent {
	if composed.ExpectedIntent != nil {
		return *composed.ExpectedIntent
	}
	return wire.ExpectedIntent{Intent: IntentText}
}

// contextLifespan clears the state context when the token is empty instead of
// keeping an empty envelope alive.
func contextLifespan(token string) int {
	if token == mustEmptyToken() {
		return 0
	}
	return ConvDataLifespan
}

func speechPrompts(rich *wire.RichResponse) []wire.SpeechResponse {
	var prompts []wire.SpeechResponse
	if rich == nil {
		return prompts
	}
	for _, item := range rich.Items {
		if item.SimpleResponse == nil {
			continue
		}
		prompts = append(prompts, wire.SpeechResponse{
			TextToSpeech: item.SimpleResponse.TextToSpeech,
			SSML:         item.SimpleResponse.SSML,
		})
	}
	return prompts
}

// simulatorMirror returns the plain-text mirror of the single spoken item, or
// the fixed warning when the simulator cannot render the response (more than
// one spoken item, or a pending question).
func simulatorMirror(composed *Composed) string {
	if composed.ExpectedIntent != nil {
		return simulatorWarning
	}
	prompts := speechPrompts(composed.RichResponse)
	if len(prompts) != 1 {
		return simulatorWarning
	}
	first := composed.firstSimple()
	if first == nil {
		return simulatorWarning
	}
	if first.DisplayText != "" {
		return first.DisplayText
	}
	if first.TextToSpeech != "" {
		return first.TextToSpeech
	}
	return first.SSML
}

func (c *Composed) firstSimple() *wire.SimpleResponse {
	if c.RichResponse == nil {
		return nil
	}
	for _, item := range c.RichResponse.Items {
		if item.SimpleResponse != nil {
			return item.SimpleResponse
		}
	}
	return nil
}
