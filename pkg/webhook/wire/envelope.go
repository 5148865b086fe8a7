package wire

import "encoding/json"

// --- Actions SDK response envelopes ---

// AppResponse is the current (v2) Actions SDK response envelope.
type AppResponse struct {
	ConversationToken  string          `json:"conversationToken,omitempty"`
	UserStorage        string          `json:"userStorage,omitempty"`
	ExpectUserResponse bool            `json:"expectUserResponse"`
	ExpectedInputs     []ExpectedInput `json:"expectedInputs,omitempty"`
	FinalResponse      *FinalResponse  `json:"finalResponse,omitempty"`
	IsInSandbox        bool            `json:"isInSandbox,omitempty"`
}

type ExpectedInput struct {
	InputPrompt     *InputPrompt     `json:"inputPrompt,omitempty"`
	PossibleIntents []ExpectedIntent `json:"possibleIntents,omitempty"`
}

type InputPrompt struct {
	RichInitialPrompt *RichResponse `json:"richInitialPrompt,omitempty"`
}

type FinalResponse struct {
	RichResponse *RichResponse `json:"richResponse,omitempty"`
}

// LegacyAppResponse is the legacy (v1) Actions SDK envelope, selected by the
// version request header. It predates rich responses: spoken content collapses
// to plain speech prompts.
type LegacyAppResponse struct {
	ConversationToken  string                `json:"conversation_token,omitempty"`
	ExpectUserResponse bool                  `json:"expect_user_response"`
	ExpectedInputs     []LegacyExpectedInput `json:"expected_inputs,omitempty"`
	FinalResponse      *LegacyFinalResponse  `json:"final_response,omitempty"`
}

type LegacyExpectedInput struct {
	InputPrompt     *LegacyInputPrompt `json:"input_prompt,omitempty"`
	PossibleIntents []ExpectedIntent   `json:"possible_intents,omitempty"`
}

type LegacyInputPrompt struct {
	InitialPrompts []SpeechResponse `json:"initial_prompts,omitempty"`
}

type LegacyFinalResponse struct {
	SpeechResponse *SpeechResponse `json:"speech_response,omitempty"`
}

type SpeechResponse struct {
	TextToSpeech string `json:"text_to_speech,omitempty"`
	SSML         string `json:"ssml,omitempty"`
}

// --- Dialogflow envelopes ---

// DialogflowV1Request is the legacy Dialogflow webhook body, recognized by the
// presence of the "result" field.
type DialogflowV1Request struct {
	ID              string              `json:"id,omitempty"`
	SessionID       string              `json:"sessionId,omitempty"`
	Timestamp       string              `json:"timestamp,omitempty"`
	Lang            string              `json:"lang,omitempty"`
	Result          *DialogflowV1Result `json:"result,omitempty"`
	OriginalRequest *OriginalRequest    `json:"originalRequest,omitempty"`
	Status          *Status             `json:"status,omitempty"`
}

type DialogflowV1Result struct {
	Source        string              `json:"source,omitempty"`
	ResolvedQuery string              `json:"resolvedQuery,omitempty"`
	Action        string              `json:"action,omitempty"`
	Parameters    map[string]any      `json:"parameters,omitempty"`
	Contexts      []DialogflowContext `json:"contexts,omitempty"`
	Metadata      map[string]any      `json:"metadata,omitempty"`
	Fulfillment   map[string]any      `json:"fulfillment,omitempty"`
}

type OriginalRequest struct {
	Source  string          `json:"source,omitempty"`
	Version string          `json:"version,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// DialogflowContext is a named context with an explicit lifespan; Dialogflow
// retains it for that many turns unless rewritten.
type DialogflowContext struct {
	Name       string         `json:"name"`
	Lifespan   int            `json:"lifespan,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type DialogflowV1Response struct {
	Speech      string              `json:"speech,omitempty"`
	DisplayText string              `json:"displayText,omitempty"`
	Data        *DialogflowPayload  `json:"data,omitempty"`
	ContextOut  []DialogflowContext `json:"contextOut,omitempty"`
}

// DialogflowV2Request is the current Dialogflow webhook body, recognized by the
// presence of the "queryResult" field.
type DialogflowV2Request struct {
	ResponseID                  string                `json:"responseId,omitempty"`
	Session                     string                `json:"session,omitempty"`
	QueryResult                 *DialogflowV2Query    `json:"queryResult,omitempty"`
	OriginalDetectIntentRequest *OriginalDetectIntent `json:"originalDetectIntentRequest,omitempty"`
}

type DialogflowV2Query struct {
	QueryText      string                `json:"queryText,omitempty"`
	Action         string                `json:"action,omitempty"`
	Parameters     map[string]any        `json:"parameters,omitempty"`
	OutputContexts []DialogflowV2Context `json:"outputContexts,omitempty"`
	Intent         *DialogflowIntent     `json:"intent,omitempty"`
	LanguageCode   string                `json:"languageCode,omitempty"`
}

type DialogflowIntent struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

type OriginalDetectIntent struct {
	Source  string          `json:"source,omitempty"`
	Version string          `json:"version,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// DialogflowV2Context mirrors DialogflowContext with the v2 field spelling.
type DialogflowV2Context struct {
	Name          string         `json:"name"`
	LifespanCount int            `json:"lifespanCount,omitempty"`
	Parameters    map[string]any `json:"parameters,omitempty"`
}

type DialogflowV2Response struct {
	FulfillmentText string                `json:"fulfillmentText,omitempty"`
	Payload         *DialogflowPayload    `json:"payload,omitempty"`
	OutputContexts  []DialogflowV2Context `json:"outputContexts,omitempty"`
}

// DialogflowPayload nests the platform response under the "google" key of the
// Dialogflow data/payload field.
type DialogflowPayload struct {
	Google *DialogflowGooglePayload `json:"google,omitempty"`
}

type DialogflowGooglePayload struct {
	ExpectUserResponse bool                    `json:"expectUserResponse"`
	RichResponse       *RichResponse           `json:"richResponse,omitempty"`
	UserStorage        string                  `json:"userStorage,omitempty"`
	SystemIntent       *DialogflowSystemIntent `json:"systemIntent,omitempty"`
	IsSSML             bool                    `json:"isSsml,omitempty"`
}

// DialogflowSystemIntent mirrors ExpectedIntent with the field spelling the
// Dialogflow payload uses.
type DialogflowSystemIntent struct {
	Intent string         `json:"intent"`
	Data   map[string]any `json:"data,omitempty"`
}
