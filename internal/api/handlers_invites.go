package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/invite-sh/server/internal/api/respond"
	"github.com/invite-sh/server/internal/model"
	"github.com/invite-sh/server/internal/prompt"
)

// rateLimitScope prefixes every counter key for this endpoint.
const rateLimitScope = "invite_ratelimit"

// The caller-visible messages. Configuration and extraction failures must not
// be distinguishable beyond these categories.
const (
	msgMissingDetails = "You must provide event details to create an invite!"
	msgMisconfigured  = "The server is configured incorrectly."
	msgUnknown        = "An unknown server error occurred."
	msgThrottled      = "Slow down, you are making too many requests. " +
		"If you want to increase your rate limit please email contact@invite.sh."
)

// RateLimitChecker gates a keyed caller. Implemented by ratelimit.Limiter.
type RateLimitChecker interface {
	Check(ctx context.Context, scope, clientKey string) model.RateLimitDecision
}

// EventExtractor runs the model call. Implemented by extract.Extractor.
type EventExtractor interface {
	Extract(ctx context.Context, prompt string) (*model.ExtractionResult, error)
}

// InviteHandler runs the invite pipeline: config guard, rate-limit check,
// input validation, prompt build, extraction, response. Any stage failure
// short-circuits to its mapped response.
type InviteHandler struct {
	limiter   RateLimitChecker
	extractor EventExtractor
	cfgErr    error
}

func NewInviteHandler(limiter RateLimitChecker, extractor EventExtractor, cfgErr error) *InviteHandler {
	return &InviteHandler{limiter: limiter, extractor: extractor, cfgErr: cfgErr}
}

// CreateInvites handles POST /api/invites.
func (h *InviteHandler) CreateInvites(w http.ResponseWriter, r *http.Request) {
	if h.cfgErr != nil {
		log.Error().Err(h.cfgErr).Msg("request rejected: service misconfigured")
		respond.WriteInternalError(w, msgMisconfigured)
		return
	}

	decision := h.limiter.Check(r.Context(), rateLimitScope, clientKey(r))
	writeRateLimitHeaders(w, decision)
	if !decision.Allowed {
		log.Info().Err(model.ErrRateLimited).Str("client", clientKey(r)).Msg("request throttled")
		respond.WriteError(w, http.StatusTooManyRequests, msgThrottled)
		return
	}

	req, err := decodeRequest(r)
	if err != nil {
		respond.WriteBadRequest(w, msgMissingDetails)
		return
	}

	result, err := h.extractor.Extract(r.Context(), prompt.Render(req.LocalTime, req.Details))
	if err != nil {
		if errors.Is(err, model.ErrConfiguration) {
			log.Error().Err(err).Msg("extraction misconfigured")
			respond.WriteInternalError(w, msgMisconfigured)
			return
		}
		log.Error().Err(err).Msg("extraction failed")
		respond.WriteInternalError(w, msgUnknown)
		return
	}

	respond.WriteJSON(w, http.StatusOK, result)
}

// decodeRequest parses the invite payload. Malformed JSON and empty details
// collapse into the same validation failure.
func decodeRequest(r *http.Request) (model.ExtractionRequest, error) {
	var req model.ExtractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("%w: %v", model.ErrValidation, err)
	}
	if req.Details == "" {
		return req, fmt.Errorf("%w: details missing", model.ErrValidation)
	}
	return req, nil
}

// clientKey derives the rate-limit identity from the forwarded client address
// when present, falling back to the transport peer. An unresolvable identity
// yields the empty string, which the limiter coarsens deterministically.
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func writeRateLimitHeaders(w http.ResponseWriter, d model.RateLimitDecision) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
}
