package wire

import "encoding/json"

// RichResponse is the single merged response structure the platform renders:
// an ordered item list, optional suggestion chips and an optional link-out.
type RichResponse struct {
	Items             []Item             `json:"items,omitempty"`
	Suggestions       []Suggestion       `json:"suggestions,omitempty"`
	LinkOutSuggestion *LinkOutSuggestion `json:"linkOutSuggestion,omitempty"`
}

// Item is a oneof: exactly one member is set.
type Item struct {
	SimpleResponse     *SimpleResponse     `json:"simpleResponse,omitempty"`
	BasicCard          *BasicCard          `json:"basicCard,omitempty"`
	MediaResponse      *MediaResponse      `json:"mediaResponse,omitempty"`
	TableCard          *TableCard          `json:"tableCard,omitempty"`
	CarouselBrowse     *CarouselBrowse     `json:"carouselBrowse,omitempty"`
	StructuredResponse *StructuredResponse `json:"structuredResponse,omitempty"`
}

type SimpleResponse struct {
	TextToSpeech string `json:"textToSpeech,omitempty"`
	SSML         string `json:"ssml,omitempty"`
	DisplayText  string `json:"displayText,omitempty"`
}

type BasicCard struct {
	Title               string   `json:"title,omitempty"`
	Subtitle            string   `json:"subtitle,omitempty"`
	FormattedText       string   `json:"formattedText,omitempty"`
	Image               *Image   `json:"image,omitempty"`
	Buttons             []Button `json:"buttons,omitempty"`
	ImageDisplayOptions string   `json:"imageDisplayOptions,omitempty"`
}

type Image struct {
	URL               string `json:"url,omitempty"`
	AccessibilityText string `json:"accessibilityText,omitempty"`
	Height            int    `json:"height,omitempty"`
	Width             int    `json:"width,omitempty"`
}

type Button struct {
	Title         string         `json:"title,omitempty"`
	OpenURLAction *OpenURLAction `json:"openUrlAction,omitempty"`
}

type OpenURLAction struct {
	URL string `json:"url,omitempty"`
}

type MediaResponse struct {
	MediaType    string        `json:"mediaType,omitempty"`
	MediaObjects []MediaObject `json:"mediaObjects,omitempty"`
}

type MediaObject struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	ContentURL  string `json:"contentUrl,omitempty"`
	LargeImage  *Image `json:"largeImage,omitempty"`
	Icon        *Image `json:"icon,omitempty"`
}

type TableCard struct {
	Title            string           `json:"title,omitempty"`
	Subtitle         string           `json:"subtitle,omitempty"`
	Image            *Image           `json:"image,omitempty"`
	ColumnProperties []ColumnProperty `json:"columnProperties,omitempty"`
	Rows             []TableRow       `json:"rows,omitempty"`
	Buttons          []Button         `json:"buttons,omitempty"`
}

type ColumnProperty struct {
	Header              string `json:"header,omitempty"`
	HorizontalAlignment string `json:"horizontalAlignment,omitempty"`
}

type TableRow struct {
	Cells        []TableCell `json:"cells,omitempty"`
	DividerAfter bool        `json:"dividerAfter,omitempty"`
}

type TableCell struct {
	Text string `json:"text,omitempty"`
}

type CarouselBrowse struct {
	Items []BrowseItem `json:"items,omitempty"`
}

type BrowseItem struct {
	Title         string         `json:"title,omitempty"`
	Description   string         `json:"description,omitempty"`
	Footer        string         `json:"footer,omitempty"`
	Image         *Image         `json:"image,omitempty"`
	OpenURLAction *OpenURLAction `json:"openUrlAction,omitempty"`
}

// StructuredResponse carries transaction order updates; the platform schema is
// large and application-assembled, so it stays an opaque JSON object.
type StructuredResponse struct {
	OrderUpdate json.RawMessage `json:"orderUpdate,omitempty"`
}

type Suggestion struct {
	Title string `json:"title"`
}

type LinkOutSuggestion struct {
	DestinationName string         `json:"destinationName,omitempty"`
	OpenURLAction   *OpenURLAction `json:"openUrlAction,omitempty"`
}

// ExpectedIntent is the single "expected next input" descriptor: the follow-up
// intent the platform should collect, plus a typed value spec tagged with its
// type identifier under "@type".
type ExpectedIntent struct {
	Intent         string         `json:"intent"`
	InputValueData map[string]any `json:"inputValueData,omitempty"`
}
