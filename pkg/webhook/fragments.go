package webhook

import (
	"strings"

	"github.com/go-go-golems/cricket/pkg/webhook/wire"
)

// Fragment is one unit of response content accumulated by application code
// before composition. The set of variants is closed: composition runs a single
// exhaustive type switch over it.
type Fragment interface {
	fragmentKind() string
}

// Text is a plain spoken/displayed response. Strings wrapped in <speak> tags
// are treated as SSML.
type Text string

func (Text) fragmentKind() string { return "text" }

// Simple is a spoken response with a separate display rendering.
type Simple struct {
	Speech string
	Text   string
}

func (Simple) fragmentKind() string { return "simple response" }

// Suggestions are suggestion chips. They merge additively across fragments, in
// insertion order.
type Suggestions []string

func (Suggestions) fragmentKind() string { return "suggestions" }

// LinkOut is a link-out suggestion chip to an external destination.
type LinkOut struct {
	Name string
	URL  string
}

func (LinkOut) fragmentKind() string { return "link out suggestion" }

// ImageCard is a standalone image; composition promotes it to a basic card
// holding only that image.
type ImageCard wire.Image

func (ImageCard) fragmentKind() string { return "image" }

// Media is a set of audio media objects; composition promotes it to a media
// response.
type Media []wire.MediaObject

func (Media) fragmentKind() string { return "media response" }

// Card is a basic card item.
type Card wire.BasicCard

func (Card) fragmentKind() string { return "basic card" }

// Table is a table card item.
type Table wire.TableCard

func (Table) fragmentKind() string { return "table card" }

// Browse is a browse carousel item.
type Browse wire.CarouselBrowse

func (Browse) fragmentKind() string { return "browse carousel" }

// OrderUpdate is a transaction order update, appended as a structured response
// item.
type OrderUpdate wire.StructuredResponse

func (OrderUpdate) fragmentKind() string { return "order update" }

// RawItem is an already-assembled platform item, appended verbatim.
type RawItem wire.Item

func (RawItem) fragmentKind() string { return "raw item" }

// RawRichResponse is a fully hand-authored rich response. Unlike every other
// variant it replaces the entire accumulated rich response (last wins) and
// opts out of the structured-without-speech validation.
type RawRichResponse wire.RichResponse

func (RawRichResponse) fragmentKind() string { return "raw rich response" }

func isSSML(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "<speak")
}

func simpleResponseItem(speech, display string) wire.Item {
	sr := &wire.SimpleResponse{DisplayText: display}
	if isSSML(speech) {
		sr.SSML = speech
	} else {
		sr.TextToSpeech = speech
	}
	return wire.Item{SimpleResponse: sr}
}
