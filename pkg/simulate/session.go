// Package simulate drives a fulfillment endpoint the way the platform would:
// it fabricates webhook requests, posts them, and round-trips the conversation
// token and user storage between turns. It is a development tool; nothing in
// the engine depends on it.
package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/go-go-golems/cricket/pkg/webhook"
	"github.com/go-go-golems/cricket/pkg/webhook/wire"
)

// Session is one simulated conversation against a fulfillment URL.
type Session struct {
	url      string
	client   *http.Client
	protocol webhook.Protocol
	store    StorageStore
	logger   zerolog.Logger

	convID    string
	userID    string
	convToken string
	storage   string
	sandbox   bool
	turn      int
	done      bool
}

type SessionOption func(*Session)

func WithProtocol(p webhook.Protocol) SessionOption {
	return func(s *Session) { s.protocol = p }
}

func WithStore(store StorageStore) SessionOption {
	return func(s *Session) { s.store = store }
}

func WithHTTPClient(client *http.Client) SessionOption {
	return func(s *Session) { s.client = client }
}

func WithUserID(userID string) SessionOption {
	return func(s *Session) { s.userID = userID }
}

func WithSandbox(sandbox bool) SessionOption {
	return func(s *Session) { s.sandbox = sandbox }
}

func WithLogger(logger zerolog.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

// NewSession starts a fresh simulated conversation. User storage for userID is
// loaded from the store so it survives across sessions like on the real
// platform.
func NewSession(ctx context.Context, url string, opts ...SessionOption) (*Session, error) {
	s := &Session{
		url:      url,
		client:   http.DefaultClient,
		protocol: webhook.ProtocolActionsSDK,
		store:    NewMemoryStore(),
		logger:   zerolog.Nop(),
		convID:   uuid.NewString(),
		userID:   "simulated-user",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.protocol != webhook.ProtocolActionsSDK && s.protocol != webhook.ProtocolDialogflow {
		return nil, errors.Errorf("unsupported simulator protocol %q", s.protocol)
	}
	storage, err := s.store.LoadUserStorage(ctx, s.userID)
	if err != nil {
		return nil, err
	}
	s.storage = storage
	return s, nil
}

// StepResult is what the simulated user perceives from one turn.
type StepResult struct {
	Spoken             []string
	Displayed          []string
	Suggestions        []string
	Question           string
	ExpectUserResponse bool
	Raw                json.RawMessage
}

// Step sends one user utterance and parses the fulfillment response.
func (s *Session) Step(ctx context.Context, query string) (*StepResult, error) {
	if s.done {
		return nil, errors.New("conversation already closed by the fulfillment")
	}

	body, err := s.buildRequest(query)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build simulator request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "post to fulfillment")
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read fulfillment response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fulfillment returned %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	result, err := s.parseResponse(ctx, raw)
	if err != nil {
		return nil, err
	}
	s.turn++
	if !result.ExpectUserResponse {
		s.done = true
	}
	s.logger.Debug().
		Str("conv_id", s.convID).
		Int("turn", s.turn).
		Bool("expect_user_response", result.ExpectUserResponse).
		Msg("simulated turn complete")
	return result, nil
}

func (s *Session) buildRequest(query string) ([]byte, error) {
	intent := "actions.intent.TEXT"
	convType := "ACTIVE"
	if s.turn == 0 {
		intent = "actions.intent.MAIN"
		convType = "NEW"
	}
	payload := wire.AppRequest{
		User: &wire.User{
			UserID:      s.userID,
			Locale:      "en-US",
			UserStorage: s.storage,
		},
		Surface: &wire.Surface{Capabilities: []wire.Capability{
			{Name: wire.CapabilityAudioOutput},
			{Name: wire.CapabilityScreenOutput},
			{Name: wire.CapabilityWebBrowser},
		}},
		Conversation: &wire.Conversation{
			ConversationID:    s.convID,
			Type:              convType,
			ConversationToken: s.convToken,
		},
		Inputs: []wire.Input{{
			Intent:    intent,
			RawInputs: []wire.RawInput{{InputType: "KEYBOARD", Query: query}},
		}},
		IsInSandbox: s.sandbox,
	}

	if s.protocol == webhook.ProtocolActionsSDK {
		return json.Marshal(payload)
	}

	inner, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal inner payload")
	}
	req := wire.DialogflowV2Request{
		ResponseID: uuid.NewString(),
		Session:    "projects/cricket-sim/agent/sessions/" + s.convID,
		QueryResult: &wire.DialogflowV2Query{
			QueryText:    query,
			LanguageCode: "en",
		},
		OriginalDetectIntentRequest: &wire.OriginalDetectIntent{
			Source:  "google",
			Version: "2",
			Payload: inner,
		},
	}
	if s.convToken != "" {
		req.QueryResult.OutputContexts = []wire.DialogflowV2Context{{
			Name:          req.Session + "/contexts/" + webhook.ConvDataContext,
			LifespanCount: webhook.ConvDataLifespan,
			Parameters:    map[string]any{"data": s.convToken},
		}}
	}
	return json.Marshal(req)
}

func (s *Session) parseResponse(ctx context.Context, raw []byte) (*StepResult, error) {
	result := &StepResult{Raw: append(json.RawMessage(nil), raw...)}

	var rich *wire.RichResponse
	var userStorage string

	switch s.protocol {
	case webhook.ProtocolActionsSDK:
		var resp wire.AppResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, errors.Wrap(err, "parse app response")
		}
		result.ExpectUserResponse = resp.ExpectUserResponse
		if resp.ConversationToken != "" {
			s.convToken = resp.ConversationToken
		}
		userStorage = resp.UserStorage
		if len(resp.ExpectedInputs) > 0 {
			if prompt := resp.ExpectedInputs[0].InputPrompt; prompt != nil {
				rich = prompt.RichInitialPrompt
			}
			for _, intent := range resp.ExpectedInputs[0].PossibleIntents {
				if intent.Intent != webhook.IntentText {
					result.Question = intent.Intent
				}
			}
		} else if resp.FinalResponse != nil {
			rich = resp.FinalResponse.RichResponse
		}
	case webhook.ProtocolDialogflow:
		var resp wire.DialogflowV2Response
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, errors.Wrap(err, "parse dialogflow response")
		}
		for _, ctxOut := range resp.OutputContexts {
			if token, ok := ctxOut.Parameters["data"].(string); ok {
				s.convToken = token
			}
		}
		if resp.Payload != nil && resp.Payload.Google != nil {
			google := resp.Payload.Google
			result.ExpectUserResponse = google.ExpectUserResponse
			rich = google.RichResponse
			userStorage = google.UserStorage
			if google.SystemIntent != nil {
				result.Question = google.SystemIntent.Intent
			}
		}
	}

	if rich != nil {
		for _, item := range rich.Items {
			if item.SimpleResponse == nil {
				continue
			}
			if speech := item.SimpleResponse.TextToSpeech; speech != "" {
				result.Spoken = append(result.Spoken, speech)
			} else if item.SimpleResponse.SSML != "" {
				result.Spoken = append(result.Spoken, item.SimpleResponse.SSML)
			}
			if item.SimpleResponse.DisplayText != "" {
				result.Displayed = append(result.Displayed, item.SimpleResponse.DisplayText)
			}
		}
		for _, suggestion := range rich.Suggestions {
			result.Suggestions = append(result.Suggestions, suggestion.Title)
		}
	}

	// Absent userStorage means unchanged, mirroring the platform's retention
	// rule.
	if userStorage != "" && userStorage != s.storage {
		s.storage = userStorage
		if err := s.store.SaveUserStorage(ctx, s.userID, userStorage); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ConversationID returns the fabricated conversation id for this session.
func (s *Session) ConversationID() string { return s.convID }

// Done reports whether the fulfillment has closed the conversation.
func (s *Session) Done() bool { return s.done }
