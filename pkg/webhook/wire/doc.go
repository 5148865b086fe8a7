// Package wire defines the JSON wire types exchanged with the conversational
// platform: the platform-native request payload, the rich-response item
// vocabulary, and the Dialogflow v1/v2 envelopes that wrap the platform payload
// when an NLU middleman sits in front of the webhook.
//
// These types are hand-maintained mirrors of the platform schema; they carry no
// behavior beyond JSON mapping. Engine logic lives in the parent webhook package.
package wire
