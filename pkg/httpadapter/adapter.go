// Package httpadapter is the net/http host glue for the webhook engine: it
// delivers already-parsed JSON bodies and a normalized header map to the
// engine, invokes the application handler, and writes the serialized protocol
// envelope back. Transport policy (timeouts, auth failures, status codes for
// engine errors) lives here, not in the engine.
package httpadapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/go-go-golems/cricket/pkg/webhook"
)

// HandlerFunc is the application fulfillment: accumulate fragments on conv,
// return an error to abort the turn.
type HandlerFunc func(ctx context.Context, conv *webhook.Conversation) error

// Verifier checks the identity token of an inbound call before normalization.
// The default accepts everything; production deployments plug in their
// platform verifier.
type Verifier interface {
	Verify(ctx context.Context, headers map[string]string) error
}

// ErrorHook decides the transport-level response for an error. Returning true
// marks the error as handled.
type ErrorHook func(w http.ResponseWriter, r *http.Request, err error) bool

type Adapter struct {
	handle    HandlerFunc
	verifier  Verifier
	errorHook ErrorHook
	logger    zerolog.Logger

	maxBodyBytes int64
}

type Option func(*Adapter)

func WithLogger(logger zerolog.Logger) Option {
	return func(a *Adapter) { a.logger = logger }
}

func WithVerifier(v Verifier) Option {
	return func(a *Adapter) { a.verifier = v }
}

func WithErrorHook(hook ErrorHook) Option {
	return func(a *Adapter) { a.errorHook = hook }
}

func WithMaxBodyBytes(n int64) Option {
	return func(a *Adapter) { a.maxBodyBytes = n }
}

func New(handle HandlerFunc, opts ...Option) *Adapter {
	a := &Adapter{
		handle:       handle,
		logger:       zerolog.Nop(),
		maxBodyBytes: 1 << 20,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var _ http.Handler = &Adapter{}

func (a *Adapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if a.handle == nil {
		http.Error(w, "fulfillment not initialized", http.StatusServiceUnavailable)
		return
	}

	headers := flattenHeaders(r.Header)
	if a.verifier != nil {
		if err := a.verifier.Verify(r.Context(), headers); err != nil {
			a.logger.Warn().Err(err).Msg("identity verification failed")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, a.maxBodyBytes))
	if err != nil {
		a.fail(w, r, errors.Wrap(err, "read request body"))
		return
	}

	conv, err := webhook.Normalize(body, headers, webhook.WithLogger(a.logger))
	if err != nil {
		a.fail(w, r, err)
		return
	}

	if err := a.handle(r.Context(), conv); err != nil {
		a.fail(w, r, errors.Wrap(err, "fulfillment handler"))
		return
	}
	if !conv.HasResponded() {
		a.fail(w, r, errors.New("fulfillment handler produced no response fragments"))
		return
	}

	composed := conv.Response()
	if composed == nil {
		if composed, err = conv.Finalize(); err != nil {
			a.fail(w, r, err)
			return
		}
	}
	envelope, err := webhook.Serialize(conv, composed)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		a.logger.Warn().Err(err).Str("conv_id", conv.ID).Msg("failed to write response envelope")
	}
}

func (a *Adapter) fail(w http.ResponseWriter, r *http.Request, err error) {
	if a.errorHook != nil && a.errorHook(w, r, err) {
		return
	}
	a.logger.Error().Err(err).Str("path", r.URL.Path).Msg("webhook call failed")

	var normErr *webhook.NormalizationError
	if errors.As(err, &normErr) {
		http.Error(w, normErr.Reason, http.StatusBadRequest)
		return
	}
	var valErr *webhook.ValidationError
	if errors.As(err, &valErr) {
		http.Error(w, valErr.Error(), http.StatusInternalServerError)
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// flattenHeaders collapses the multi-value header map; repeated headers keep
// their first value. The engine matches names case-insensitively.
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}
