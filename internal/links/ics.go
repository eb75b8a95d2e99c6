package links

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"strings"

	ical "github.com/arran4/golang-ical"

	"github.com/invite-sh/server/internal/model"
)

// EncodeICS renders the event as a VCALENDAR wrapped in a data: URL, so the
// result has the same shape as the web providers and can be offered as a
// download link. The UID and DTSTAMP are derived from the event itself to
// keep encoding idempotent.
func EncodeICS(ev model.Event) (string, error) {
	sp, err := parseSpan(ev)
	if err != nil {
		return "", err
	}
	rule, err := validRRule(ev)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256([]byte(ev.Title + "|" + ev.Start + "|" + ev.End))
	uid := fmt.Sprintf("%x@invite.sh", sum[:8])

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)

	e := cal.AddEvent(uid)
	e.SetDtStampTime(sp.start)
	e.SetSummary(ev.Title)
	e.SetDescription(describedBy(ev))
	if sp.allDay {
		e.SetAllDayStartAt(sp.start)
		e.SetAllDayEndAt(sp.end)
	} else {
		e.SetStartAt(sp.start.UTC())
		e.SetEndAt(sp.end.UTC())
	}
	if ev.Location != nil && *ev.Location != "" {
		e.SetLocation(*ev.Location)
	}
	if rule != "" {
		e.AddRrule(rule)
	}
	if ev.Busy {
		e.SetTimeTransparency(ical.TransparencyOpaque)
	} else {
		e.SetTimeTransparency(ical.TransparencyTransparent)
	}

	body := cal.Serialize()
	return "data:text/calendar;charset=utf8," + escapeDataURL(body), nil
}

// escapeDataURL percent-encodes for a data: URL payload, where '+' must stay
// literal and spaces must become %20.
func escapeDataURL(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
