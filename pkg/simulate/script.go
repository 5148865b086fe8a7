package simulate

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Script is a scripted conversation replay: a sequence of user utterances with
// optional assertions on the spoken reply.
type Script struct {
	Name     string       `yaml:"name"`
	Protocol string       `yaml:"protocol"`
	Turns    []ScriptTurn `yaml:"turns"`
}

type ScriptTurn struct {
	Say string `yaml:"say"`
	// ExpectSpokenContains fails the replay when no spoken item contains the
	// substring.
	ExpectSpokenContains string `yaml:"expect_spoken_contains"`
	// ExpectClose fails the replay when the fulfillment keeps the
	// conversation open.
	ExpectClose bool `yaml:"expect_close"`
}

func LoadScript(path string) (*Script, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read script")
	}
	var script Script
	if err := yaml.Unmarshal(raw, &script); err != nil {
		return nil, errors.Wrap(err, "parse script yaml")
	}
	if len(script.Turns) == 0 {
		return nil, errors.New("script has no turns")
	}
	return &script, nil
}

// Run replays the script against the session, writing a transcript to w.
func Run(ctx context.Context, session *Session, script *Script, w io.Writer) error {
	for i, turn := range script.Turns {
		result, err := session.Step(ctx, turn.Say)
		if err != nil {
			return errors.Wrapf(err, "turn %d (%q)", i+1, turn.Say)
		}
		fmt.Fprintf(w, "> %s\n", turn.Say)
		for _, spoken := range result.Spoken {
			fmt.Fprintf(w, "  %s\n", spoken)
		}
		if len(result.Suggestions) > 0 {
			fmt.Fprintf(w, "  [%s]\n", strings.Join(result.Suggestions, " | "))
		}
		if result.Question != "" {
			fmt.Fprintf(w, "  (awaiting %s)\n", result.Question)
		}

		if turn.ExpectSpokenContains != "" && !spokenContains(result.Spoken, turn.ExpectSpokenContains) {
			return errors.Errorf("turn %d: spoken output %q does not contain %q",
				i+1, strings.Join(result.Spoken, " / "), turn.ExpectSpokenContains)
		}
		if turn.ExpectClose && result.ExpectUserResponse {
			return errors.Errorf("turn %d: expected the conversation to close", i+1)
		}
		if session.Done() && i < len(script.Turns)-1 {
			return errors.Errorf("turn %d: conversation closed with %d scripted turns remaining",
				i+1, len(script.Turns)-1-i)
		}
	}
	return nil
}

func spokenContains(spoken []string, substr string) bool {
	for _, s := range spoken {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
