package eventscript

import (
	"strings"
	"testing"
)

func TestParsePressRelease(t *testing.T) {
	script := "@100 button:PRESS\n@250 button:RELEASE\n"
	events, errs := Parse(strings.NewReader(script))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Cycle != 100 || events[0].Target != "button" || events[0].Kind != PayloadPress {
		t.Fatalf("event[0] = %+v, unexpected", events[0])
	}
	if events[1].Cycle != 250 || events[1].Kind != PayloadRelease {
		t.Fatalf("event[1] = %+v, unexpected", events[1])
	}
}

func TestParseFractionPayload(t *testing.T) {
	events, errs := Parse(strings.NewReader("@10 pot:0.75\n"))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(events) != 1 || events[0].Kind != PayloadFraction || events[0].Fraction != 0.75 {
		t.Fatalf("event = %+v, want fraction 0.75", events[0])
	}
}

func TestParseQuotedBytesPayload(t *testing.T) {
	events, errs := Parse(strings.NewReader(`@5 usart:"Hi\n"` + "\n"))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(events) != 1 || events[0].Kind != PayloadBytes {
		t.Fatalf("event = %+v, want bytes payload", events[0])
	}
	if string(events[0].Bytes) != "Hi\n" {
		t.Fatalf("bytes = %q, want %q", events[0].Bytes, "Hi\n")
	}
}

func TestParseBareBytesPayload(t *testing.T) {
	events, errs := Parse(strings.NewReader("@5 usart:AB\n"))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if string(events[0].Bytes) != "AB" {
		t.Fatalf("bytes = %q, want %q", events[0].Bytes, "AB")
	}
}

func TestParseSortsByCycleThenFileOrder(t *testing.T) {
	script := "@50 b:PRESS\n@10 a:PRESS\n@10 c:PRESS\n"
	events, errs := Parse(strings.NewReader(script))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	wantOrder := []string{"a", "c", "b"}
	for i, name := range wantOrder {
		if events[i].Target != name {
			t.Fatalf("events[%d].Target = %q, want %q (order: %+v)", i, events[i].Target, name, events)
		}
	}
}

func TestParseCollectsNonFatalErrorsAndContinues(t *testing.T) {
	script := "not an event\n@20 button:PRESS\n@bad target:PRESS\n"
	events, errs := Parse(strings.NewReader(script))
	if len(events) != 1 {
		t.Fatalf("got %d valid events, want 1 (malformed lines should not block later valid ones)", len(events))
	}
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2", len(errs))
	}
	for _, err := range errs {
		if _, ok := err.(ParseError); !ok {
			t.Fatalf("err = %v (%T), want ParseError", err, err)
		}
	}
}

func TestParseSkipsBlankAndCommentLines(t *testing.T) {
	script := "\n# a comment\n@1 button:PRESS\n  \n"
	events, errs := Parse(strings.NewReader(script))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
}

func TestParseRejectsEmptyTarget(t *testing.T) {
	_, errs := Parse(strings.NewReader("@1 :PRESS\n"))
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
}

func TestParseRejectsMissingColon(t *testing.T) {
	_, errs := Parse(strings.NewReader("@1 buttonPRESS\n"))
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
}
