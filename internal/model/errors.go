package model

import "errors"

var (
	// ErrConfiguration marks missing or unusable required configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation marks caller input that failed shape checks.
	ErrValidation = errors.New("validation error")
	// ErrRateLimited marks a rejected rate-limit decision.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrExtraction marks a failed or non-conformant model call.
	ErrExtraction = errors.New("extraction error")
)
