package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewBaseEvent(t *testing.T) {
	aggregateID := uuid.New()
	occurred := time.Date(2026, 3, 1, 14, 0, 0, 0, time.FixedZone("CET", 3600))

	event := NewBaseEvent("hids.threat.detected", aggregateID, "ThreatVerdict", occurred, []byte(`{"risk_score":54}`))

	if event.EventID() == uuid.Nil {
		t.Error("expected non-nil event ID")
	}
	if event.EventType() != "hids.threat.detected" {
		t.Errorf("expected event type %q, got %q", "hids.threat.detected", event.EventType())
	}
	if event.AggregateID() != aggregateID {
		t.Errorf("expected aggregate ID %v, got %v", aggregateID, event.AggregateID())
	}
	if event.AggregateType() != "ThreatVerdict" {
		t.Errorf("expected aggregate type %q, got %q", "ThreatVerdict", event.AggregateType())
	}
	if event.OccurredAt().Location() != time.UTC || !event.OccurredAt().Equal(occurred) {
		t.Errorf("expected %v in UTC, got %v", occurred, event.OccurredAt())
	}
	if string(event.Payload()) != `{"risk_score":54}` {
		t.Errorf("unexpected payload %s", event.Payload())
	}
}

func TestBaseEventImplementsDomainEvent(t *testing.T) {
	var _ DomainEvent = BaseEvent{}
}

func TestNewBaseEvent_UniqueIDs(t *testing.T) {
	a := NewBaseEvent("x", uuid.New(), "y", time.Now(), nil)
	b := NewBaseEvent("x", uuid.New(), "y", time.Now(), nil)
	if a.EventID() == b.EventID() {
		t.Error("expected distinct event IDs")
	}
}

func TestHeaders(t *testing.T) {
	occurred := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	event := NewBaseEvent("hids.threat.detected", uuid.New(), "ThreatVerdict", occurred, nil)

	h := Headers(event)
	want := map[string]string{
		HeaderEventID:       event.EventID().String(),
		HeaderEventType:     "hids.threat.detected",
		HeaderAggregateType: "ThreatVerdict",
		HeaderOccurredAt:    "2026-03-01T13:00:00Z",
	}
	for k, v := range want {
		if h[k] != v {
			t.Errorf("header %s: expected %q, got %q", k, v, h[k])
		}
	}
}
