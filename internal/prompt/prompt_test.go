package prompt

import (
	"strings"
	"testing"
)

func TestRender_Deterministic(t *testing.T) {
	a := Render("Mon Mar 16 2026 09:30 GMT-0400", "lunch tomorrow at noon")
	b := Render("Mon Mar 16 2026 09:30 GMT-0400", "lunch tomorrow at noon")
	if a != b {
		t.Fatal("same inputs produced different prompts")
	}
}

func TestRender_InsertsDetailsVerbatim(t *testing.T) {
	details := "Flight UA 123\n  SFO -> JFK\n\tDeparts 8:05am PT, lands 4:40pm ET\r\nSeat 14C"
	out := Render("now", details)
	if !strings.Contains(out, details) {
		t.Fatal("multi-line details were altered by rendering")
	}
}

func TestRender_InterpolatesLocalTime(t *testing.T) {
	out := Render("Fri Jan 02 2026 23:59 GMT+0900", "dinner")
	if !strings.Contains(out, "local time is: Fri Jan 02 2026 23:59 GMT+0900") {
		t.Fatal("local time missing from prompt")
	}
}

func TestRender_KeepsInstructionText(t *testing.T) {
	out := Render("now", "details")
	for _, want := range []string{
		"Respect explicit timezones",
		"infer one from location context",
		"Default to the user's local time",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("instruction text missing: %q", want)
		}
	}
}
