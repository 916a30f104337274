package chat

import (
	"time"

	"github.com/campgen/campgen/internal/campaign"
)

// EventType constants
const (
	EventMessageCreated  = "message_created"
	EventMessageSettled  = "message_settled"
	EventCampaignUpdated = "campaign_updated"
)

// Event is a structured notification emitted by a session as a turn
// progresses. The gateway broadcasts these to connected clients.
type Event struct {
	Type       string             `json:"type"`
	SessionKey string             `json:"sessionKey"`
	Seq        int                `json:"seq"`
	Timestamp  time.Time          `json:"timestamp"`
	Message    *Message           `json:"message,omitempty"`
	Campaign   *campaign.Campaign `json:"campaign,omitempty"`
	Fallback   bool               `json:"fallback,omitempty"`
}

// EventSink receives session events.
type EventSink func(Event)

// emitter provides sequential event emission for one session.
type emitter struct {
	sessionKey string
	sink       EventSink
	seq        int
}

func (e *emitter) emit(eventType string, mutators ...func(*Event)) {
	if e.sink == nil {
		return
	}
	e.seq++
	evt := Event{
		Type:       eventType,
		SessionKey: e.sessionKey,
		Seq:        e.seq,
		Timestamp:  time.Now(),
	}
	for _, m := range mutators {
		m(&evt)
	}
	e.sink(evt)
}
