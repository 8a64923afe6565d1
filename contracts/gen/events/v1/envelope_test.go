package v1

import (
	"errors"
	"testing"
)

func TestEnvelopeValidate(t *testing.T) {
	if err := (Envelope{EventID: "evt-1", EventType: "module.listed"}).Validate(); err != nil {
		t.Fatalf("expected valid envelope, got %v", err)
	}
	if err := (Envelope{EventType: "module.listed"}).Validate(); !errors.Is(err, ErrMissingEventID) {
		t.Fatalf("expected ErrMissingEventID, got %v", err)
	}
	if err := (Envelope{EventID: "evt-1", EventType: "  "}).Validate(); !errors.Is(err, ErrMissingEventType) {
		t.Fatalf("expected ErrMissingEventType, got %v", err)
	}
}
