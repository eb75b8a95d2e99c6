// Package links encodes a structured event into provider-specific
// calendar-invite URLs. Every encoder is a pure function of the event.
package links

import (
	"fmt"

	"github.com/invite-sh/server/internal/model"
)

// Provider is the closed set of supported invite targets. Dispatch goes
// through the Encoders table so adding a provider is a one-table change.
type Provider string

const (
	Google    Provider = "google"
	Outlook   Provider = "outlook"
	Office365 Provider = "office365"
	Yahoo     Provider = "yahoo"
	ICS       Provider = "ics"
)

// EncodeFunc maps an event to an invite URL. It fails only on malformed
// event timestamps or recurrence rules; it never performs I/O.
type EncodeFunc func(model.Event) (string, error)

// Encoders is the provider dispatch table.
var Encoders = map[Provider]EncodeFunc{
	Google:    EncodeGoogle,
	Outlook:   EncodeOutlook,
	Office365: EncodeOffice365,
	Yahoo:     EncodeYahoo,
	ICS:       EncodeICS,
}

// All returns the providers in stable presentation order.
func All() []Provider {
	return []Provider{Google, Outlook, Office365, Yahoo, ICS}
}

// ParseProvider maps a caller-supplied name onto the closed set.
func ParseProvider(name string) (Provider, error) {
	p := Provider(name)
	if _, ok := Encoders[p]; !ok {
		return "", fmt.Errorf("unknown provider %q", name)
	}
	return p, nil
}

// Encode dispatches through the table.
func Encode(p Provider, ev model.Event) (string, error) {
	enc, ok := Encoders[p]
	if !ok {
		return "", fmt.Errorf("unknown provider %q", p)
	}
	return enc(ev)
}

// EncodeAll encodes ev for the given providers (all of them when empty).
func EncodeAll(ev model.Event, providers []Provider) (map[Provider]string, error) {
	if len(providers) == 0 {
		providers = All()
	}
	out := make(map[Provider]string, len(providers))
	for _, p := range providers {
		u, err := Encode(p, ev)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		out[p] = u
	}
	return out, nil
}
