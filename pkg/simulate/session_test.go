package simulate

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/cricket/pkg/httpadapter"
	"github.com/go-go-golems/cricket/pkg/webhook"
)

// countingFulfillment counts turns in conversation data, remembers a name in
// user storage, and closes on "bye".
func countingFulfillment(_ context.Context, conv *webhook.Conversation) error {
	count, _ := conv.Data["count"].(float64)
	conv.Data["count"] = count + 1

	query := strings.TrimSpace(conv.Query)
	switch {
	case strings.HasPrefix(query, "call me "):
		conv.Storage["name"] = strings.TrimPrefix(query, "call me ")
		return conv.Ask(webhook.Text("noted"), webhook.Suggestions{"bye"})
	case query == "bye":
		name, _ := conv.Storage["name"].(string)
		return conv.Close(webhook.Text(fmt.Sprintf("bye %s after %d turns", name, int(count)+1)))
	default:
		return conv.Ask(webhook.Text(fmt.Sprintf("turn %d", int(count)+1)))
	}
}

func newFulfillmentServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(httpadapter.New(countingFulfillment))
	t.Cleanup(srv.Close)
	return srv
}

func TestSessionRoundTripsConversationToken(t *testing.T) {
	srv := newFulfillmentServer(t)
	ctx := context.Background()

	session, err := NewSession(ctx, srv.URL)
	require.NoError(t, err)

	first, err := session.Step(ctx, "hello")
	require.NoError(t, err)
	require.Equal(t, []string{"turn 1"}, first.Spoken)
	assert.True(t, first.ExpectUserResponse)

	// The conversation token carried the counter into the second turn.
	second, err := session.Step(ctx, "again")
	require.NoError(t, err)
	assert.Equal(t, []string{"turn 2"}, second.Spoken)
}

func TestSessionPersistsUserStorageAcrossSessions(t *testing.T) {
	srv := newFulfillmentServer(t)
	ctx := context.Background()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sim.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	session, err := NewSession(ctx, srv.URL, WithStore(store), WithUserID("u-1"))
	require.NoError(t, err)
	result, err := session.Step(ctx, "call me ada")
	require.NoError(t, err)
	assert.Equal(t, []string{"noted"}, result.Spoken)
	assert.Equal(t, []string{"bye"}, result.Suggestions)

	// A brand new conversation for the same user still knows the name.
	fresh, err := NewSession(ctx, srv.URL, WithStore(store), WithUserID("u-1"))
	require.NoError(t, err)
	closing, err := fresh.Step(ctx, "bye")
	require.NoError(t, err)
	require.Len(t, closing.Spoken, 1)
	assert.Contains(t, closing.Spoken[0], "bye ada")
	assert.False(t, closing.ExpectUserResponse)
	assert.True(t, fresh.Done())

	_, err = fresh.Step(ctx, "anyone there?")
	require.Error(t, err)
}

func TestSessionDialogflowProtocol(t *testing.T) {
	srv := newFulfillmentServer(t)
	ctx := context.Background()

	session, err := NewSession(ctx, srv.URL, WithProtocol(webhook.ProtocolDialogflow))
	require.NoError(t, err)

	first, err := session.Step(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, []string{"turn 1"}, first.Spoken)

	second, err := session.Step(ctx, "again")
	require.NoError(t, err)
	assert.Equal(t, []string{"turn 2"}, second.Spoken)
}

func TestSessionReportsQuestion(t *testing.T) {
	asking := func(_ context.Context, conv *webhook.Conversation) error {
		return conv.Ask(webhook.NewPermission("to greet you", "NAME"))
	}
	srv := httptest.NewServer(httpadapter.New(asking))
	defer srv.Close()
	ctx := context.Background()

	session, err := NewSession(ctx, srv.URL)
	require.NoError(t, err)
	result, err := session.Step(ctx, "hi")
	require.NoError(t, err)
	assert.Equal(t, webhook.IntentPermission, result.Question)
}

func TestSessionRejectsUnknownProtocol(t *testing.T) {
	_, err := NewSession(context.Background(), "http://localhost", WithProtocol("smoke-signals"))
	require.Error(t, err)
}

func TestScriptReplay(t *testing.T) {
	srv := newFulfillmentServer(t)
	ctx := context.Background()

	scriptPath := filepath.Join(t.TempDir(), "script.yaml")
	script := `name: smoke
protocol: actionssdk
turns:
  - say: hello
    expect_spoken_contains: turn 1
  - say: bye
    expect_close: true
`
	require.NoError(t, os.WriteFile(scriptPath, []byte(script), 0o644))

	loaded, err := LoadScript(scriptPath)
	require.NoError(t, err)
	assert.Equal(t, "smoke", loaded.Name)
	require.Len(t, loaded.Turns, 2)

	session, err := NewSession(ctx, srv.URL)
	require.NoError(t, err)

	var transcript strings.Builder
	require.NoError(t, Run(ctx, session, loaded, &transcript))
	assert.Contains(t, transcript.String(), "> hello")
	assert.Contains(t, transcript.String(), "turn 1")
}

func TestScriptAssertionFailure(t *testing.T) {
	srv := newFulfillmentServer(t)
	ctx := context.Background()

	script := &Script{Turns: []ScriptTurn{{Say: "hello", ExpectSpokenContains: "nope"}}}
	session, err := NewSession(ctx, srv.URL)
	require.NoError(t, err)

	err = Run(ctx, session, script, &strings.Builder{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not contain")
}
