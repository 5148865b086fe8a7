// Package statetoken encodes and decodes the opaque state tokens that carry
// conversation-scoped and user-scoped data across stateless webhook calls.
//
// A token is a JSON envelope of the form {"data":<value>}. The platform treats
// it as an opaque string and echoes it back on the next turn; nothing outside
// this package depends on the envelope layout.
package statetoken

import (
	"encoding/json"

	"github.com/pkg/errors"
)

type envelope struct {
	Data map[string]any `json:"data"`
}

// Decode parses a token and returns the inner data value. An absent or empty
// token yields a fresh empty map rather than an error; a present but
// unparseable token is an error.
func Decode(token string) (map[string]any, error) {
	if token == "" {
		return map[string]any{}, nil
	}
	var env envelope
	if err := json.Unmarshal([]byte(token), &env); err != nil {
		return nil, errors.Wrap(err, "decode state token")
	}
	if env.Data == nil {
		return map[string]any{}, nil
	}
	return env.Data, nil
}

// Encode wraps data in the token envelope and serializes it. An empty map
// encodes to {"data":{}}, which is distinct from the absent token: emitting it
// overwrites previously stored state.
func Encode(data map[string]any) (string, error) {
	if data == nil {
		data = map[string]any{}
	}
	b, err := json.Marshal(envelope{Data: data})
	if err != nil {
		return "", errors.Wrap(err, "encode state token")
	}
	return string(b), nil
}
