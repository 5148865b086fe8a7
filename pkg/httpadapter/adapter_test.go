package httpadapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/cricket/pkg/webhook"
)

const askBody = `{
	"user": {"userId": "u-1"},
	"conversation": {"conversationId": "conv-1", "type": "ACTIVE"},
	"inputs": [{"intent": "actions.intent.TEXT", "rawInputs": [{"query": "hello"}]}]
}`

func echoFulfillment(_ context.Context, conv *webhook.Conversation) error {
	return conv.Ask(webhook.Text(conv.Query))
}

func TestAdapterEndToEnd(t *testing.T) {
	srv := httptest.NewServer(New(echoFulfillment))
	defer srv.Close()

	resp, err := http.Post(srv.URL, "application/json", strings.NewReader(askBody))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	var envelope struct {
		ExpectUserResponse bool `json:"expectUserResponse"`
		ExpectedInputs     []struct {
			InputPrompt struct {
				RichInitialPrompt struct {
					Items []struct {
						SimpleResponse struct {
							TextToSpeech string `json:"textToSpeech"`
						} `json:"simpleResponse"`
					} `json:"items"`
				} `json:"richInitialPrompt"`
			} `json:"inputPrompt"`
		} `json:"expectedInputs"`
	}
	require.NoError(t, decodeJSON(resp, &envelope))
	assert.True(t, envelope.ExpectUserResponse)
	require.Len(t, envelope.ExpectedInputs, 1)
	items := envelope.ExpectedInputs[0].InputPrompt.RichInitialPrompt.Items
	require.Len(t, items, 1)
	assert.Equal(t, "hello", items[0].SimpleResponse.TextToSpeech)
}

func TestAdapterRejectsNonPost(t *testing.T) {
	srv := httptest.NewServer(New(echoFulfillment))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestAdapterBadBodyIsBadRequest(t *testing.T) {
	srv := httptest.NewServer(New(echoFulfillment))
	defer srv.Close()

	resp, err := http.Post(srv.URL, "application/json", strings.NewReader("not json"))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

type denyAll struct{}

func (denyAll) Verify(context.Context, map[string]string) error {
	return errors.New("bad token")
}

func TestAdapterVerifierRejection(t *testing.T) {
	srv := httptest.NewServer(New(echoFulfillment, WithVerifier(denyAll{})))
	defer srv.Close()

	resp, err := http.Post(srv.URL, "application/json", strings.NewReader(askBody))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdapterValidationErrorIsInternal(t *testing.T) {
	lonely := func(_ context.Context, conv *webhook.Conversation) error {
		return conv.Ask(webhook.Card{Title: "no speech"})
	}
	srv := httptest.NewServer(New(lonely))
	defer srv.Close()

	resp, err := http.Post(srv.URL, "application/json", strings.NewReader(askBody))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestAdapterNoFragmentsIsInternal(t *testing.T) {
	silent := func(context.Context, *webhook.Conversation) error { return nil }
	srv := httptest.NewServer(New(silent))
	defer srv.Close()

	resp, err := http.Post(srv.URL, "application/json", strings.NewReader(askBody))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestAdapterErrorHookOverride(t *testing.T) {
	hook := func(w http.ResponseWriter, _ *http.Request, _ error) bool {
		w.WriteHeader(http.StatusTeapot)
		return true
	}
	srv := httptest.NewServer(New(echoFulfillment, WithErrorHook(hook)))
	defer srv.Close()

	resp, err := http.Post(srv.URL, "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}

func TestAdapterPreFinalizedConversation(t *testing.T) {
	finalizing := func(_ context.Context, conv *webhook.Conversation) error {
		if err := conv.Close(webhook.Text("done")); err != nil {
			return err
		}
		_, err := conv.Finalize()
		return err
	}
	srv := httptest.NewServer(New(finalizing))
	defer srv.Close()

	resp, err := http.Post(srv.URL, "application/json", strings.NewReader(askBody))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
