package whatsapp

import (
	"encoding/json"
	"time"
)

// Inbound webhook envelope. The Cloud API nests messages and status updates
// several levels deep; every inner field is optional and missing pieces must
// not break parsing of the rest.
type WebhookEnvelope struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []InboundMessage `json:"messages"`
				Statuses []StatusUpdate   `json:"statuses"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type InboundMessage struct {
	From string `json:"from"` // digits-only sender id
	ID   string `json:"id"`
	Text *struct {
		Body string `json:"body"`
	} `json:"text"`
}

// Body returns the text body, empty for non-text messages.
func (m InboundMessage) Body() string {
	if m.Text == nil {
		return ""
	}
	return m.Text.Body
}

type StatusUpdate struct {
	RecipientID string `json:"recipient_id"`
	Status      string `json:"status"` // sent | delivered | read | failed
	Timestamp   string `json:"timestamp"`
}

// Delivered reports whether the update means the message reached the user.
func (s StatusUpdate) Delivered() bool {
	return s.Status == "delivered" || s.Status == "read"
}

// Time converts the unix-seconds timestamp; zero time when absent or invalid.
func (s StatusUpdate) Time() time.Time {
	if s.Timestamp == "" {
		return time.Time{}
	}
	var secs int64
	if err := json.Unmarshal([]byte(s.Timestamp), &secs); err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}

// ParseWebhook flattens the envelope into the messages and status updates it
// carries. An envelope with neither is valid and yields two empty slices.
func ParseWebhook(raw []byte) ([]InboundMessage, []StatusUpdate, error) {
	var env WebhookEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, nil, err
	}

	var msgs []InboundMessage
	var statuses []StatusUpdate
	for _, e := range env.Entry {
		for _, ch := range e.Changes {
			msgs = append(msgs, ch.Value.Messages...)
			statuses = append(statuses, ch.Value.Statuses...)
		}
	}
	return msgs, statuses, nil
}
