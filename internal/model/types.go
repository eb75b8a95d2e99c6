package model

import "time"

// Event is the canonical calendar event extracted from free-form text.
// Start and End are kept as the ISO-8601 text the model produced; the link
// encoders own parsing. For all-day events they are bare calendar dates.
type Event struct {
	Title       string  `json:"title"`
	Start       string  `json:"start"`
	End         string  `json:"end"`
	AllDay      bool    `json:"allDay"`
	RRule       *string `json:"rRule,omitempty"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	Busy        bool    `json:"busy"`
}

// ExtractionRequest carries the caller-supplied inputs to the prompt builder.
type ExtractionRequest struct {
	LocalTime string `json:"localTime"`
	Details   string `json:"details"`
}

// ExtractionResult is the validated model output, in model output order.
type ExtractionResult struct {
	Events []Event `json:"events"`
}

// RateLimitDecision is computed per request and never persisted.
type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}
