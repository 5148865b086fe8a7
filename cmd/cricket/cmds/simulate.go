package cmds

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	input "github.com/tcnksm/go-input"

	"github.com/go-go-golems/cricket/pkg/simulate"
	"github.com/go-go-golems/cricket/pkg/webhook"
)

func NewSimulateCmd() *cobra.Command {
	var (
		url      string
		protocol string
		storeDSN string
		script   string
		userID   string
		sandbox  bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Drive a fulfillment endpoint like the platform would",
		Long: `Fabricates webhook requests against a fulfillment URL and round-trips the
conversation token and user storage between turns. Runs an interactive prompt
by default, or replays a YAML script with --script.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulate(cmd.Context(), simulateSettings{
				url:      url,
				protocol: protocol,
				storeDSN: storeDSN,
				script:   script,
				userID:   userID,
				sandbox:  sandbox,
			})
		},
	}
	cmd.Flags().StringVar(&url, "url", "http://localhost:8080/webhook", "Fulfillment URL")
	cmd.Flags().StringVar(&protocol, "protocol", "actionssdk", "Webhook protocol (actionssdk, dialogflow)")
	cmd.Flags().StringVar(&storeDSN, "store", "", "SQLite file for persistent user storage (default in-memory)")
	cmd.Flags().StringVar(&script, "script", "", "YAML script to replay instead of the interactive prompt")
	cmd.Flags().StringVar(&userID, "user", "simulated-user", "Simulated user id")
	cmd.Flags().BoolVar(&sandbox, "sandbox", false, "Mark requests as sandboxed")
	return cmd
}

type simulateSettings struct {
	url      string
	protocol string
	storeDSN string
	script   string
	userID   string
	sandbox  bool
}

func runSimulate(ctx context.Context, s simulateSettings) error {
	var store simulate.StorageStore = simulate.NewMemoryStore()
	if s.storeDSN != "" {
		sqlStore, err := simulate.NewSQLiteStore(s.storeDSN)
		if err != nil {
			return err
		}
		store = sqlStore
	}
	defer func() { _ = store.Close() }()

	var scriptFile *simulate.Script
	protocol := webhook.Protocol(s.protocol)
	if s.script != "" {
		loaded, err := simulate.LoadScript(s.script)
		if err != nil {
			return err
		}
		scriptFile = loaded
		if loaded.Protocol != "" {
			protocol = webhook.Protocol(loaded.Protocol)
		}
	}

	session, err := simulate.NewSession(ctx, s.url,
		simulate.WithProtocol(protocol),
		simulate.WithStore(store),
		simulate.WithUserID(s.userID),
		simulate.WithSandbox(s.sandbox),
		simulate.WithLogger(log.Logger),
	)
	if err != nil {
		return err
	}
	log.Info().Str("conv_id", session.ConversationID()).Str("url", s.url).Msg("simulated conversation started")

	if scriptFile != nil {
		return simulate.Run(ctx, session, scriptFile, os.Stdout)
	}
	return runInteractive(ctx, session)
}

func runInteractive(ctx context.Context, session *simulate.Session) error {
	ui := &input.UI{Writer: os.Stdout, Reader: os.Stdin}
	for !session.Done() {
		query, err := ui.Ask("you", &input.Options{Required: true, HideOrder: true})
		if err != nil {
			if errors.Is(err, input.ErrInterrupted) {
				return nil
			}
			return errors.Wrap(err, "read input")
		}
		result, err := session.Step(ctx, query)
		if err != nil {
			return err
		}
		for _, spoken := range result.Spoken {
			fmt.Println(spoken)
		}
		if len(result.Suggestions) > 0 {
			fmt.Printf("[%s]\n", strings.Join(result.Suggestions, " | "))
		}
		if result.Question != "" {
			fmt.Printf("(awaiting %s)\n", result.Question)
		}
	}
	fmt.Println("conversation closed")
	return nil
}
