package dispatchkit

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// Source describes how one adapter's raw JSON messages map onto Envelopes.
// Adapters that receive heterogeneous traffic declare one Source per
// upstream format and pick the first whose Match succeeds; Match only probes
// field presence, which is cheap compared to a full parse.
type Source struct {
	// Name identifies the adapter ("http", "kafka", "worker"). Stamped onto
	// every parsed envelope.
	Name string

	// TypePath is the gjson path to the event type. Required.
	TypePath string

	// CorrelationPath is the gjson path to the correlation id. When the
	// path is empty or the field is absent, a correlation id is generated:
	// producing one is the adapter's responsibility, and this is where that
	// responsibility is discharged.
	CorrelationPath string

	// PayloadPath is the gjson path to the payload object. Empty means the
	// whole document is the payload.
	PayloadPath string

	// TimestampPath optionally locates an RFC 3339 timestamp.
	TimestampPath string

	// Require lists gjson paths that must exist for Match to succeed, in
	// addition to TypePath.
	Require []string
}

// Match reports whether the raw message looks like this source's format.
func (s Source) Match(raw []byte) bool {
	if !gjson.ValidBytes(raw) {
		return false
	}
	if !gjson.GetBytes(raw, s.TypePath).Exists() {
		return false
	}
	for _, path := range s.Require {
		if !gjson.GetBytes(raw, path).Exists() {
			return false
		}
	}
	return true
}

// Parse converts one raw message into an Envelope.
func (s Source) Parse(raw []byte) (*Envelope, error) {
	if !gjson.ValidBytes(raw) {
		return nil, Invalid("message is not valid JSON")
	}

	eventType := gjson.GetBytes(raw, s.TypePath).String()
	if eventType == "" {
		return nil, Invalid(fmt.Sprintf("missing event type at %q", s.TypePath))
	}

	payload := map[string]any{}
	payloadDoc := gjson.ParseBytes(raw)
	if s.PayloadPath != "" {
		payloadDoc = gjson.GetBytes(raw, s.PayloadPath)
	}
	if payloadDoc.Exists() {
		if m, ok := payloadDoc.Value().(map[string]any); ok {
			payload = m
		} else {
			return nil, Invalid(fmt.Sprintf("payload at %q is not an object", s.PayloadPath))
		}
	}

	opts := []EnvelopeOption{WithSource(s.Name)}
	if s.CorrelationPath != "" {
		if id := gjson.GetBytes(raw, s.CorrelationPath).String(); id != "" {
			opts = append(opts, WithCorrelationID(id))
		}
	}
	if s.TimestampPath != "" {
		if v := gjson.GetBytes(raw, s.TimestampPath).String(); v != "" {
			ts, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return nil, Invalid(fmt.Sprintf("bad timestamp at %q: %v", s.TimestampPath, err))
			}
			opts = append(opts, WithTimestamp(ts))
		}
	}

	return NewEnvelope(eventType, payload, opts...), nil
}

// ParseAny tries each source in order and parses with the first that
// matches. Returns an invalid-envelope error when none match.
func ParseAny(raw []byte, sources ...Source) (*Envelope, error) {
	for _, s := range sources {
		if s.Match(raw) {
			return s.Parse(raw)
		}
	}
	return nil, Invalid("message matches no known source format")
}
