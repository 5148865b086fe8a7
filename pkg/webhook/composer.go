package webhook

import (
	"github.com/go-go-golems/cricket/pkg/webhook/statetoken"
	"github.com/go-go-golems/cricket/pkg/webhook/wire"
)

// placeholderSpeech satisfies the platform's at-least-one-spoken-item rule for
// solo questions; the platform swallows it instead of rendering it to the
// user.
const placeholderSpeech = "PLACEHOLDER"

// Composed is the protocol-independent result of composing all accumulated
// fragments: the merged rich response, at most one expected next input, and
// the state tokens to carry forward. Nil tokens are omitted from the wire.
type Composed struct {
	ExpectUserResponse bool
	RichResponse       *wire.RichResponse
	ExpectedIntent     *wire.ExpectedIntent

	ConversationToken *string
	UserStorage       *string

	// handAuthored records that a raw rich response replaced the composed one,
	// opting out of the structured-without-speech validation.
	handAuthored bool
}

// Finalize composes the accumulated fragments exactly once. Calling it twice,
// or with zero accumulated fragments, fails with an IllegalStateError. The
// result is memoized; use Response for repeated reads.
func (c *Conversation) Finalize() (*Composed, error) {
	if c.finalized {
		return nil, illegalStatef("finalize called twice")
	}
	if len(c.fragments) == 0 {
		return nil, illegalStatef("finalize called with no accumulated fragments")
	}

	composed, err := c.compose()
	if err != nil {
		return nil, err
	}
	if err := c.attachState(composed); err != nil {
		return nil, err
	}

	c.finalized = true
	c.composed = composed
	c.logger.Debug().
		Str("conv_id", c.ID).
		Int("fragments", len(c.fragments)).
		Bool("expect_user_response", composed.ExpectUserResponse).
		Msg("composed response")
	return composed, nil
}

func (c *Conversation) compose() (*Composed, error) {
	rich := &wire.RichResponse{}
	composed := &Composed{ExpectUserResponse: c.expectUserResponse}
	firstStructured := ""

	for _, f := range c.fragments {
		switch f := f.(type) {
		case Text:
			rich.Items = append(rich.Items, simpleResponseItem(string(f), ""))
		case Simple:
			rich.Items = append(rich.Items, simpleResponseItem(f.Speech, f.Text))
		case Question:
			composed.ExpectedIntent = f.expectedIntent()
		case Suggestions:
			for _, title := range f {
				rich.Suggestions = append(rich.Suggestions, wire.Suggestion{Title: title})
			}
		case LinkOut:
			rich.LinkOutSuggestion = &wire.LinkOutSuggestion{
				DestinationName: f.Name,
				OpenURLAction:   &wire.OpenURLAction{URL: f.URL},
			}
		case ImageCard:
			img := wire.Image(f)
			rich.Items = append(rich.Items, wire.Item{BasicCard: &wire.BasicCard{Image: &img}})
			firstStructured = pick(firstStructured, f.fragmentKind())
		case Media:
			rich.Items = append(rich.Items, wire.Item{MediaResponse: &wire.MediaResponse{
				MediaType:    "AUDIO",
				MediaObjects: []wire.MediaObject(f),
			}})
			firstStructured = pick(firstStructured, f.fragmentKind())
		case Card:
			card := wire.BasicCard(f)
			rich.Items = append(rich.Items, wire.Item{BasicCard: &card})
			firstStructured = pick(firstStructured, f.fragmentKind())
		case Table:
			table := wire.TableCard(f)
			rich.Items = append(rich.Items, wire.Item{TableCard: &table})
			firstStructured = pick(firstStructured, f.fragmentKind())
		case Browse:
			browse := wire.CarouselBrowse(f)
			rich.Items = append(rich.Items, wire.Item{CarouselBrowse: &browse})
			firstStructured = pick(firstStructured, f.fragmentKind())
		case OrderUpdate:
			order := wire.StructuredResponse(f)
			rich.Items = append(rich.Items, wire.Item{StructuredResponse: &order})
			firstStructured = pick(firstStructured, f.fragmentKind())
		case RawItem:
			item := wire.Item(f)
			rich.Items = append(rich.Items, item)
			if item.SimpleResponse == nil {
				firstStructured = pick(firstStructured, f.fragmentKind())
			}
		case RawRichResponse:
			// A hand-authored rich response replaces everything accumulated so
			// far, last wins.
			replacement := wire.RichResponse(f)
			rich = &replacement
			composed.handAuthored = true
			firstStructured = ""
		}
	}

	if c.question != nil && c.question.solo && !hasSpokenItem(rich) {
		rich.Items = append(rich.Items, simpleResponseItem(placeholderSpeech, ""))
	}

	if !composed.handAuthored && !hasSpokenItem(rich) {
		if firstStructured != "" {
			return nil, &ValidationError{
				Fragment: firstStructured,
				Reason:   "a spoken or displayed item is required alongside structured content",
			}
		}
		if c.question != nil && !c.question.solo {
			return nil, &ValidationError{
				Fragment: "question",
				Reason:   "an option select requires an accompanying spoken fragment",
			}
		}
	}

	composed.RichResponse = rich
	return composed, nil
}

func pick(current, kind string) string {
	if current != "" {
		return current
	}
	return kind
}

func hasSpokenItem(rich *wire.RichResponse) bool {
	for _, item := range rich.Items {
		if item.SimpleResponse != nil {
			return true
		}
	}
	return false
}

// attachState serializes Data and Storage and attaches each token only when it
// is empty-but-present or differs from the decoded inbound form, so unchanged
// caller-side state never has its lifespan or retention reset.
func (c *Conversation) attachState(composed *Composed) error {
	dataToken, emit, err := emitToken(c.Data, c.inboundData, c.inboundDataPresent)
	if err != nil {
		return err
	}
	if emit {
		composed.ConversationToken = &dataToken
	}

	storageToken, emit, err := emitToken(c.Storage, c.inboundStorage, c.inboundStoragePresent)
	if err != nil {
		return err
	}
	if emit {
		composed.UserStorage = &storageToken
	}
	return nil
}

func emitToken(data map[string]any, inbound string, inboundPresent bool) (string, bool, error) {
	token, err := statetoken.Encode(data)
	if err != nil {
		return "", false, err
	}
	if token != inbound {
		return token, true, nil
	}
	if len(data) == 0 && inboundPresent {
		return token, true, nil
	}
	return token, false, nil
}
