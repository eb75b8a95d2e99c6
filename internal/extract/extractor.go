// Package extract turns a rendered prompt into a validated ExtractionResult
// via the external model.
package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/invite-sh/server/internal/model"
)

// Extractor wraps an Invoker with the output-schema contract. Every returned
// error wraps model.ErrExtraction; the detailed cause stays in internal logs.
type Extractor struct {
	invoker Invoker
	timeout time.Duration
}

func NewExtractor(invoker Invoker, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Extractor{invoker: invoker, timeout: timeout}
}

// Extract invokes the model and validates the response. Validation is
// fail-fast across the event list: one bad event fails the whole call.
func (e *Extractor) Extract(ctx context.Context, prompt string) (*model.ExtractionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.invoker.Complete(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Msg("model invocation failed")
		return nil, fmt.Errorf("%w: %v", model.ErrExtraction, err)
	}

	rawEvents, err := decodeEvents(raw)
	if err != nil {
		log.Error().Err(err).Str("raw", raw).Msg("model output failed contract decode")
		return nil, fmt.Errorf("%w: %v", model.ErrExtraction, err)
	}

	result := &model.ExtractionResult{Events: make([]model.Event, 0, len(rawEvents))}
	for i, r := range rawEvents {
		ev, vs := validateEvent(i, r)
		if len(vs) > 0 {
			log.Error().Str("violations", vs.Error()).Msg("model output failed schema validation")
			return nil, fmt.Errorf("%w: %v", model.ErrExtraction, vs)
		}
		result.Events = append(result.Events, ev)
	}
	return result, nil
}
