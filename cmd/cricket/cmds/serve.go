package cmds

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/go-go-golems/cricket/pkg/httpadapter"
	"github.com/go-go-golems/cricket/pkg/webhook"
)

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo fulfillment over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), viper.GetString("addr"))
		},
	}
	cmd.Flags().String("addr", ":8080", "HTTP listen address")
	return cmd
}

func runServe(ctx context.Context, addr string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	adapter := httpadapter.New(demoFulfillment, httpadapter.WithLogger(log.Logger))
	mux := http.NewServeMux()
	mux.Handle("/webhook", adapter)

	srv := &http.Server{Addr: addr, Handler: mux}
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		log.Info().Str("addr", addr).Msg("serving demo fulfillment on /webhook")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}

// demoFulfillment is a small example app: it greets on the main invocation,
// remembers a name in user storage, counts turns in conversation data, and
// closes on "bye".
func demoFulfillment(_ context.Context, conv *webhook.Conversation) error {
	turns, _ := conv.Data["turns"].(float64)
	conv.Data["turns"] = turns + 1

	query := strings.ToLower(strings.TrimSpace(conv.Query))
	switch {
	case strings.HasPrefix(query, "call me "):
		name := strings.TrimSpace(conv.Query[len("call me "):])
		conv.Storage["name"] = name
		return conv.Ask(webhook.Text(fmt.Sprintf("Nice to meet you, %s.", name)))
	case query == "bye":
		return conv.Close(webhook.Text(fmt.Sprintf("Goodbye! That was %d turns.", int(turns)+1)))
	case conv.Intent == "actions.intent.MAIN" || turns == 0:
		greeting := "Hi there! Tell me your name, or say bye to leave."
		if name, ok := conv.Storage["name"].(string); ok {
			greeting = fmt.Sprintf("Welcome back, %s!", name)
		}
		return conv.Ask(
			webhook.Text(greeting),
			webhook.Suggestions{"call me Ada", "bye"},
		)
	default:
		return conv.Ask(webhook.Text(fmt.Sprintf("You said: %s", conv.Query)))
	}
}
