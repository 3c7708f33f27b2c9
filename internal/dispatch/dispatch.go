// Package dispatch delivers the outbound effects of committed operations.
// Delivery is strictly outside the atomic apply: the state machine only
// describes effects, a Dispatcher carries them.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tzoracle/oracled/internal/core/effect"
)

// Dispatcher consumes the effect list of one committed operation.
type Dispatcher interface {
	Dispatch(ctx context.Context, effects []effect.Effect) error
}

// LogDispatcher records effects without delivering them anywhere. Used in
// standalone mode and in tests.
type LogDispatcher struct {
	log zerolog.Logger
}

func NewLogDispatcher(logger zerolog.Logger) *LogDispatcher {
	return &LogDispatcher{log: logger.With().Str("component", "dispatch").Logger()}
}

func (d *LogDispatcher) Dispatch(_ context.Context, effects []effect.Effect) error {
	for _, e := range effects {
		d.log.Info().
			Str("target", e.Target()).
			Uint64("amount", e.Amount).
			Bool("payload", e.Payload != nil).
			Msg("effect")
	}
	return nil
}

// HTTPDispatcher posts each effect's payload to the webhook registered for
// its target address. Targets without a registered webhook are logged and
// skipped; the operation has already committed and must not fail on delivery.
type HTTPDispatcher struct {
	client   *http.Client
	webhooks map[string]string
	log      zerolog.Logger
}

func NewHTTPDispatcher(webhooks map[string]string, logger zerolog.Logger) *HTTPDispatcher {
	return &HTTPDispatcher{
		client:   &http.Client{Timeout: 10 * time.Second},
		webhooks: webhooks,
		log:      logger.With().Str("component", "dispatch").Logger(),
	}
}

func (d *HTTPDispatcher) Dispatch(ctx context.Context, effects []effect.Effect) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, e := range effects {
		url, ok := d.webhooks[e.TargetAddress]
		if !ok {
			d.log.Warn().Str("target", e.Target()).Msg("no webhook for target, effect dropped")
			continue
		}
		g.Go(func() error {
			return d.deliver(ctx, url, e)
		})
	}
	return g.Wait()
}

func (d *HTTPDispatcher) deliver(ctx context.Context, url string, e effect.Effect) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode effect: %w", err)
	}

	if e.TargetEntrypoint != "" {
		url = url + "/" + e.TargetEntrypoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build effect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver effect to %s: %w", e.Target(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("deliver effect to %s: status %d", e.Target(), resp.StatusCode)
	}
	d.log.Debug().Str("target", e.Target()).Uint64("amount", e.Amount).Msg("delivered")
	return nil
}
