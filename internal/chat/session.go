package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/campgen/campgen/internal/campaign"
	"github.com/campgen/campgen/internal/catalog"
	"github.com/campgen/campgen/internal/pipeline"
)

// ErrGenerationInFlight is returned when a prompt arrives while the previous
// turn has not settled. There is no queueing; the caller retries after the
// turn completes.
var ErrGenerationInFlight = errors.New("a generation is already in flight")

// ErrEmptyPrompt is returned for blank submissions.
var ErrEmptyPrompt = errors.New("prompt is empty")

// Session owns all mutable conversation state: the ordered message list, the
// most recent campaign, and the single-turn busy flag. Entities are snapshot
// from the registry at submission time; connect/disconnect during a turn only
// affects the next one.
type Session struct {
	mu       sync.Mutex
	key      string
	gen      *pipeline.Generator
	registry *catalog.Registry
	emitter  emitter

	messages []Message
	current  *campaign.Campaign
	busy     bool
	inflight sync.WaitGroup

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewSession(key string, gen *pipeline.Generator, registry *catalog.Registry, sink EventSink) *Session {
	now := time.Now()
	return &Session{
		key:       key,
		gen:       gen,
		registry:  registry,
		emitter:   emitter{sessionKey: key, sink: sink},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Key returns the session identifier.
func (s *Session) Key() string { return s.key }

// Busy reports whether a generation is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Submit starts one conversation turn: append the user message and a
// streaming assistant placeholder, then run the pipeline asynchronously.
// Returns the placeholder's id, which is settled in place on completion.
func (s *Session) Submit(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return "", ErrGenerationInFlight
	}
	s.busy = true

	userMsg := newMessage(RoleUser, prompt, false)
	placeholder := newMessage(RoleAssistant, "", true)
	s.messages = append(s.messages, userMsg, placeholder)
	s.UpdatedAt = time.Now()

	// Snapshot the connected entities for this turn.
	sources := s.registry.DataSources()
	channels := s.registry.Channels()

	s.emitter.emit(EventMessageCreated, func(e *Event) { m := userMsg; e.Message = &m })
	s.emitter.emit(EventMessageCreated, func(e *Event) { m := placeholder; e.Message = &m })
	s.mu.Unlock()

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		result := s.gen.Generate(ctx, prompt, sources, channels)
		s.settle(placeholder.ID, result, channels)
	}()

	return placeholder.ID, nil
}

// Wait blocks until the in-flight turn (if any) has settled.
func (s *Session) Wait() {
	s.inflight.Wait()
}

// settle mutates the placeholder message to its final content, stores the
// campaign as current, and clears the busy flag.
func (s *Session) settle(placeholderID string, result pipeline.Result, channels []catalog.Channel) {
	body := formatResponse(result, channels)

	s.mu.Lock()
	defer s.mu.Unlock()

	var settled *Message
	for i := range s.messages {
		if s.messages[i].ID == placeholderID {
			s.messages[i].Content = body
			s.messages[i].IsStreaming = false
			settled = &s.messages[i]
			break
		}
	}

	c := result.Campaign
	s.current = &c
	s.busy = false
	s.UpdatedAt = time.Now()

	if settled != nil {
		s.emitter.emit(EventMessageSettled, func(e *Event) { m := *settled; e.Message = &m })
	}
	s.emitter.emit(EventCampaignUpdated, func(e *Event) {
		e.Campaign = &c
		e.Fallback = result.Fallback
	})
}

// History returns a snapshot copy of the ordered message list.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// CurrentCampaign returns the most recent campaign, or nil before the first
// settled turn.
func (s *Session) CurrentCampaign() *campaign.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	c := *s.current
	return &c
}

// formatResponse renders the assistant turn body: the campaign JSON in a
// fenced block, the pipeline explanation, and the delivery channel summary.
func formatResponse(result pipeline.Result, channels []catalog.Channel) string {
	data, err := json.MarshalIndent(result.Campaign, "", "  ")
	if err != nil {
		data = []byte("{}")
	}

	var sb strings.Builder
	sb.WriteString("Here's your AI-generated marketing campaign:\n\n")
	sb.WriteString("```json\n")
	sb.Write(data)
	sb.WriteString("\n```\n\n")
	sb.WriteString(result.Explanation)

	if len(channels) > 0 {
		names := make([]string, len(channels))
		for i, ch := range channels {
			names[i] = ch.Name
		}
		fmt.Fprintf(&sb, "\n\nThis campaign is ready to be executed across your selected channels: %s.", strings.Join(names, ", "))
	}
	return sb.String()
}
