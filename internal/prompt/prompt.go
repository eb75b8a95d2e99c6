// Package prompt renders the fixed extraction instruction for the model.
package prompt

import "fmt"

// template is the full instruction block. Exactly two values are interpolated:
// the caller's local time and the verbatim event details.
const template = `You are an assistant that turns free-form event descriptions into structured calendar events.

Produce a list of events described by the text below. Follow these rules:
- Respect explicit timezones stated in the text.
- When no timezone is given, infer one from location context (city, venue, airport codes).
- Default to the user's local time for local-sounding events.
- Every event needs a title and concrete start and end times. When no end is given, choose a sensible duration.
- When the event is a plain calendar day, mark it all-day and use bare dates.
- When the text describes a repeating event, express the repetition as an iCal RRULE.

The user's current local time is: %s

Event details:
%s`

// Render produces the prompt text. It is pure: the same inputs always yield
// the same output, and details are inserted verbatim so multi-line pasted
// content survives untouched.
func Render(localTime, details string) string {
	return fmt.Sprintf(template, localTime, details)
}
