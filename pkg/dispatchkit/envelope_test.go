package dispatchkit_test

import (
	"testing"
	"time"

	"github.com/randalmurphal/dispatchkit/pkg/dispatchkit"
)

func TestNewEnvelopeGeneratesCorrelationID(t *testing.T) {
	a := dispatchkit.NewEnvelope("user.create", nil)
	b := dispatchkit.NewEnvelope("user.create", nil)

	if a.CorrelationID == "" {
		t.Fatal("expected generated correlation id")
	}
	if a.CorrelationID == b.CorrelationID {
		t.Error("generated correlation ids must be unique")
	}
	if a.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestNewEnvelopeOptions(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env := dispatchkit.NewEnvelope("payment.process",
		map[string]any{"amount": 9.99},
		dispatchkit.WithCorrelationID("pay-7"),
		dispatchkit.WithSource("kafka"),
		dispatchkit.WithTimestamp(ts),
		dispatchkit.WithMetadata("attempt", "2"),
	)

	if env.CorrelationID != "pay-7" {
		t.Errorf("CorrelationID = %q", env.CorrelationID)
	}
	if env.Source != "kafka" {
		t.Errorf("Source = %q", env.Source)
	}
	if !env.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v", env.Timestamp)
	}
	if env.Metadata["attempt"] != "2" {
		t.Errorf("Metadata = %v", env.Metadata)
	}
}

func TestEnvelopeValidate(t *testing.T) {
	cases := []struct {
		name    string
		env     *dispatchkit.Envelope
		wantErr bool
	}{
		{"valid", &dispatchkit.Envelope{EventType: "user.create", CorrelationID: "c1"}, false},
		{"nil envelope", nil, true},
		{"missing event type", &dispatchkit.Envelope{CorrelationID: "c1"}, true},
		{"missing correlation id", &dispatchkit.Envelope{EventType: "user.create"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.env.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestEnvelopeClone(t *testing.T) {
	env := dispatchkit.NewEnvelope("user.create",
		map[string]any{"name": "Ada"},
		dispatchkit.WithMetadata("attempt", "1"),
	)

	cp := env.Clone()
	cp.Payload["name"] = "Grace"
	cp.Metadata["attempt"] = "2"

	if env.Payload["name"] != "Ada" {
		t.Error("Clone shares payload with original")
	}
	if env.Metadata["attempt"] != "1" {
		t.Error("Clone shares metadata with original")
	}
}
