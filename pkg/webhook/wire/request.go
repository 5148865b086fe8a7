package wire

import "encoding/json"

// AppRequest is the platform-native payload. For the Actions SDK protocol it is
// the request body itself; for Dialogflow it sits inside the originalRequest /
// originalDetectIntentRequest wrapper.
type AppRequest struct {
	User              *User         `json:"user,omitempty"`
	Device            *Device       `json:"device,omitempty"`
	Surface           *Surface      `json:"surface,omitempty"`
	AvailableSurfaces []Surface     `json:"availableSurfaces,omitempty"`
	Conversation      *Conversation `json:"conversation,omitempty"`
	Inputs            []Input       `json:"inputs,omitempty"`
	IsInSandbox       bool          `json:"isInSandbox,omitempty"`
}

type User struct {
	UserID      string       `json:"userId,omitempty"`
	IDToken     string       `json:"idToken,omitempty"`
	AccessToken string       `json:"accessToken,omitempty"`
	Locale      string       `json:"locale,omitempty"`
	LastSeen    string       `json:"lastSeen,omitempty"`
	UserStorage string       `json:"userStorage,omitempty"`
	Profile     *UserProfile `json:"profile,omitempty"`
}

type UserProfile struct {
	DisplayName string `json:"displayName,omitempty"`
	GivenName   string `json:"givenName,omitempty"`
	FamilyName  string `json:"familyName,omitempty"`
}

type Device struct {
	Location *Location `json:"location,omitempty"`
}

type Location struct {
	Coordinates      *LatLng `json:"coordinates,omitempty"`
	FormattedAddress string  `json:"formattedAddress,omitempty"`
	ZipCode          string  `json:"zipCode,omitempty"`
	City             string  `json:"city,omitempty"`
	Name             string  `json:"name,omitempty"`
	PlaceID          string  `json:"placeId,omitempty"`
}

type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Surface is a capability set describing either the device the user is talking
// to or one of the alternate surfaces available to them.
type Surface struct {
	Capabilities []Capability `json:"capabilities,omitempty"`
}

type Capability struct {
	Name string `json:"name"`
}

// Well-known capability identifiers.
const (
	CapabilityAudioOutput        = "actions.capability.AUDIO_OUTPUT"
	CapabilityScreenOutput       = "actions.capability.SCREEN_OUTPUT"
	CapabilityMediaResponseAudio = "actions.capability.MEDIA_RESPONSE_AUDIO"
	CapabilityWebBrowser         = "actions.capability.WEB_BROWSER"
)

type Conversation struct {
	ConversationID    string `json:"conversationId,omitempty"`
	Type              string `json:"type,omitempty"`
	ConversationToken string `json:"conversationToken,omitempty"`
}

type Input struct {
	Intent    string     `json:"intent,omitempty"`
	RawInputs []RawInput `json:"rawInputs,omitempty"`
	Arguments []Argument `json:"arguments,omitempty"`
}

type RawInput struct {
	InputType string `json:"inputType,omitempty"`
	Query     string `json:"query,omitempty"`
}

// Argument is a discriminated record: exactly one of the typed value slots is
// populated per record, keyed by Name.
type Argument struct {
	Name            string          `json:"name,omitempty"`
	RawText         string          `json:"rawText,omitempty"`
	TextValue       string          `json:"textValue,omitempty"`
	BoolValue       *bool           `json:"boolValue,omitempty"`
	IntValue        *int64          `json:"intValue,string,omitempty"`
	FloatValue      *float64        `json:"floatValue,omitempty"`
	DatetimeValue   *DateTime       `json:"datetimeValue,omitempty"`
	PlaceValue      *Location       `json:"placeValue,omitempty"`
	StructuredValue json.RawMessage `json:"structuredValue,omitempty"`
	Extension       json.RawMessage `json:"extension,omitempty"`
	Status          *Status         `json:"status,omitempty"`
}

type DateTime struct {
	Date *Date      `json:"date,omitempty"`
	Time *TimeOfDay `json:"time,omitempty"`
}

type Date struct {
	Year  int `json:"year,omitempty"`
	Month int `json:"month,omitempty"`
	Day   int `json:"day,omitempty"`
}

type TimeOfDay struct {
	Hours   int `json:"hours,omitempty"`
	Minutes int `json:"minutes,omitempty"`
	Seconds int `json:"seconds,omitempty"`
}

// Status is the platform-reported error status attached to an argument.
type Status struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
