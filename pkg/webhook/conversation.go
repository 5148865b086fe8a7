package webhook

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/go-go-golems/cricket/pkg/webhook/wire"
)

// Protocol identifies which webhook protocol produced a request.
type Protocol string

const (
	// ProtocolActionsSDK is the platform-native webhook protocol.
	ProtocolActionsSDK Protocol = "actionssdk"
	// ProtocolDialogflow is the NLU-middleman webhook protocol.
	ProtocolDialogflow Protocol = "dialogflow"
)

// Version identifies the schema version within a protocol.
type Version string

const (
	VersionV1 Version = "v1"
	VersionV2 Version = "v2"
)

// Conversation is the central aggregate for one turn. It is created per call
// by Normalize, owned exclusively by the handling of that call, and discarded
// after serialization; no cross-call shared mutable state exists here.
//
// The normalized inputs (identity, user, device, surface, input, arguments)
// are immutable after normalization. Data and Storage are the mutable turn
// state, round-tripped through opaque tokens across stateless calls.
type Conversation struct {
	// ID is the conversation/session id. CorrelationID is the per-request id;
	// simulator-originated calls may omit it.
	ID            string
	CorrelationID string
	Protocol      Protocol
	Version       Version

	RawRequest json.RawMessage
	Payload    wire.AppRequest

	Intent    string
	Query     string
	InputType string
	Locale    string
	Sandbox   bool

	// Action and Parameters carry the NLU match on the Dialogflow protocol;
	// empty otherwise.
	Action     string
	Parameters map[string]any
	Contexts   []wire.DialogflowContext

	User      wire.User
	Device    *wire.Device
	Surface   SurfaceCapabilities
	Available AvailableSurfaces
	Arguments *Arguments

	// Data is conversation-scoped state; Storage is user-scoped state.
	Data    map[string]any
	Storage map[string]any

	// Inbound token snapshots, used for the only-if-changed emission rule.
	inboundData           string
	inboundDataPresent    bool
	inboundStorage        string
	inboundStoragePresent bool

	simulator bool

	fragments          []Fragment
	question           *Question
	expectUserResponse bool
	responded          bool
	finalized          bool
	composed           *Composed

	logger zerolog.Logger
}

// Option configures a Conversation at normalization time.
type Option func(*Conversation)

// WithLogger injects the logger handle used by the engine. The default is a
// no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Conversation) { c.logger = logger }
}

// Simulator reports whether the request was detected as originating from the
// protocol's interactive simulator rather than the real platform.
func (c *Conversation) Simulator() bool { return c.simulator }

// HasResponded reports whether at least one fragment has been accumulated.
func (c *Conversation) HasResponded() bool { return c.responded }

// Finalized reports whether the response has been composed.
func (c *Conversation) Finalized() bool { return c.finalized }

// Ask accumulates fragments and marks the turn as expecting further user
// input. It fails with an IllegalStateError after finalization.
func (c *Conversation) Ask(fragments ...Fragment) error {
	return c.add(true, fragments)
}

// Close accumulates fragments and marks the turn as ending the conversation.
// It is identical to Ask but for the expect-further-input flag.
func (c *Conversation) Close(fragments ...Fragment) error {
	return c.add(false, fragments)
}

func (c *Conversation) add(expectUserResponse bool, fragments []Fragment) error {
	if c.finalized {
		return illegalStatef("cannot accumulate fragments after finalization")
	}
	// An empty call accumulates nothing and leaves the turn state alone, so
	// HasResponded stays honest about whether anything will be composed.
	if len(fragments) == 0 {
		return nil
	}
	for _, f := range fragments {
		if q, ok := f.(Question); ok {
			if c.question != nil {
				return illegalStatef("at most one question may be accumulated per turn (already have %s)", c.question.Intent)
			}
			c.question = &q
		}
		c.fragments = append(c.fragments, f)
		c.logger.Debug().
			Str("conv_id", c.ID).
			Str("fragment", f.fragmentKind()).
			Bool("expect_user_response", expectUserResponse).
			Msg("accumulated response fragment")
	}
	c.expectUserResponse = expectUserResponse
	c.responded = true
	return nil
}

// Response returns the memoized composed result, or nil before finalization.
func (c *Conversation) Response() *Composed {
	return c.composed
}
