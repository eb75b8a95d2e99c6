package links

import (
	"fmt"
	"net/url"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/invite-sh/server/internal/model"
)

// descriptionFooter is appended to every generated invite, after any
// existing description content.
const descriptionFooter = "This invite was generated by invite.sh"

// stampLayouts are the accepted shapes for extracted timestamps: full
// date-times with an offset, naive date-times (treated as UTC), and bare
// calendar dates.
var stampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

const dateLayout = "2006-01-02"

type span struct {
	start, end time.Time
	allDay     bool
}

// parseSpan turns the event's opaque start/end text into concrete instants.
// AllDay events must carry bare dates; timed events any accepted layout.
func parseSpan(ev model.Event) (span, error) {
	parse := func(field, s string) (time.Time, bool, error) {
		if t, err := time.Parse(dateLayout, s); err == nil {
			return t, true, nil
		}
		for _, layout := range stampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, false, nil
			}
		}
		return time.Time{}, false, fmt.Errorf("unrecognized %s timestamp %q", field, s)
	}

	start, startDateOnly, err := parse("start", ev.Start)
	if err != nil {
		return span{}, err
	}
	end, endDateOnly, err := parse("end", ev.End)
	if err != nil {
		return span{}, err
	}
	if ev.AllDay && (!startDateOnly || !endDateOnly) {
		return span{}, fmt.Errorf("all-day event carries a time-of-day component")
	}
	return span{start: start, end: end, allDay: ev.AllDay || (startDateOnly && endDateOnly)}, nil
}

// Timed values are normalized to UTC basic format so a given event produces
// temporally equivalent links on every provider.
func (s span) basic(t time.Time) string {
	if s.allDay {
		return t.Format("20060102")
	}
	return t.UTC().Format("20060102T150405Z")
}

// Outlook's compose endpoint takes extended ISO-8601 instead of basic.
func (s span) iso(t time.Time) string {
	if s.allDay {
		return t.Format(dateLayout)
	}
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

func describedBy(ev model.Event) string {
	if ev.Description != nil && *ev.Description != "" {
		return *ev.Description + "\n\n" + descriptionFooter
	}
	return descriptionFooter
}

// validRRule checks the recurrence rule against the iCal grammar before it is
// embedded, so a malformed rule fails encoding instead of shipping a broken
// link.
func validRRule(ev model.Event) (string, error) {
	if ev.RRule == nil || *ev.RRule == "" {
		return "", nil
	}
	if _, err := rrule.StrToRRule(*ev.RRule); err != nil {
		return "", fmt.Errorf("invalid recurrence rule %q: %v", *ev.RRule, err)
	}
	return *ev.RRule, nil
}

// EncodeGoogle builds a calendar.google.com render URL. Recurrence goes in
// the recur parameter wrapped with the RRULE: prefix.
func EncodeGoogle(ev model.Event) (string, error) {
	sp, err := parseSpan(ev)
	if err != nil {
		return "", err
	}
	rule, err := validRRule(ev)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", ev.Title)
	q.Set("dates", sp.basic(sp.start)+"/"+sp.basic(sp.end))
	q.Set("details", describedBy(ev))
	if ev.Location != nil && *ev.Location != "" {
		q.Set("location", *ev.Location)
	}
	if rule != "" {
		q.Set("recur", "RRULE:"+rule)
	}
	if ev.Busy {
		q.Set("trp", "true")
	} else {
		q.Set("trp", "false")
	}
	return "https://calendar.google.com/calendar/render?" + q.Encode(), nil
}

func encodeOutlookFamily(host string, ev model.Event) (string, error) {
	sp, err := parseSpan(ev)
	if err != nil {
		return "", err
	}
	rule, err := validRRule(ev)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("rru", "addevent")
	q.Set("path", "/calendar/action/compose")
	q.Set("subject", ev.Title)
	q.Set("startdt", sp.iso(sp.start))
	q.Set("enddt", sp.iso(sp.end))
	q.Set("body", describedBy(ev))
	if sp.allDay {
		q.Set("allday", "true")
	} else {
		q.Set("allday", "false")
	}
	if ev.Location != nil && *ev.Location != "" {
		q.Set("location", *ev.Location)
	}
	if rule != "" {
		q.Set("rrule", rule)
	}
	return "https://" + host + "/calendar/0/action/compose?" + q.Encode(), nil
}

// EncodeOutlook builds an outlook.live.com compose URL. The recurrence rule
// is passed raw in the rrule parameter.
func EncodeOutlook(ev model.Event) (string, error) {
	return encodeOutlookFamily("outlook.live.com", ev)
}

// EncodeOffice365 builds an outlook.office.com compose URL with the same
// parameter set as the consumer Outlook endpoint.
func EncodeOffice365(ev model.Event) (string, error) {
	return encodeOutlookFamily("outlook.office.com", ev)
}

// EncodeYahoo builds a calendar.yahoo.com v=60 URL. All-day events use the
// dur=allday flag; the recurrence rule rides in RPAT.
func EncodeYahoo(ev model.Event) (string, error) {
	sp, err := parseSpan(ev)
	if err != nil {
		return "", err
	}
	rule, err := validRRule(ev)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("v", "60")
	q.Set("title", ev.Title)
	q.Set("st", sp.basic(sp.start))
	q.Set("et", sp.basic(sp.end))
	q.Set("desc", describedBy(ev))
	if sp.allDay {
		q.Set("dur", "allday")
	}
	if ev.Location != nil && *ev.Location != "" {
		q.Set("in_loc", *ev.Location)
	}
	if rule != "" {
		q.Set("RPAT", rule)
	}
	return "https://calendar.yahoo.com/?" + q.Encode(), nil
}
