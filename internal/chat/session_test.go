package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campgen/campgen/internal/catalog"
	"github.com/campgen/campgen/internal/llm"
	"github.com/campgen/campgen/internal/pipeline"
)

// blockingClient holds every Complete call until released, so tests can
// observe a turn while it is in flight.
type blockingClient struct {
	release chan struct{}
	resp    string
}

func (b *blockingClient) Complete(ctx context.Context, _ llm.Request) (string, error) {
	select {
	case <-b.release:
	case <-ctx.Done():
		return "", &llm.Error{Kind: llm.FailTimeout, Msg: ctx.Err().Error()}
	}
	return b.resp, nil
}

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) sink() EventSink {
	return func(e Event) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, e)
	}
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func testSession(client llm.Client, sink EventSink) (*Session, *catalog.Registry) {
	registry := catalog.NewRegistry()
	registry.AddChannel(catalog.Channel{ID: "c1", Name: "Email Marketing", Type: catalog.ChannelEmail, Status: catalog.ChannelActive})
	gen := &pipeline.Generator{Client: client, Model: "gpt-4"}
	return NewSession("test:session", gen, registry, sink), registry
}

func TestSubmitRejectsWhileBusy(t *testing.T) {
	client := &blockingClient{release: make(chan struct{}), resp: `{"name":"N","content":{"message":"m"}}`}
	sess, _ := testSession(client, nil)

	first, err := sess.Submit(context.Background(), "first prompt")
	require.NoError(t, err)
	assert.True(t, sess.Busy())

	// Second prompt while the turn is in flight: rejected, no new messages.
	_, err = sess.Submit(context.Background(), "second prompt")
	assert.ErrorIs(t, err, ErrGenerationInFlight)
	assert.Len(t, sess.History(), 2)

	close(client.release)
	sess.Wait()
	assert.False(t, sess.Busy())

	// After settling, a new prompt is accepted and appends a new pair.
	client.release = make(chan struct{})
	close(client.release)
	second, err := sess.Submit(context.Background(), "third prompt")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	sess.Wait()
	assert.Len(t, sess.History(), 4)
}

func TestPlaceholderSettledInPlace(t *testing.T) {
	client := &blockingClient{release: make(chan struct{}), resp: `{"name":"N","content":{"message":"m"}}`}
	sess, _ := testSession(client, nil)

	placeholderID, err := sess.Submit(context.Background(), "launch promo")
	require.NoError(t, err)

	msgs := sess.History()
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, "launch promo", msgs[0].Content)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Equal(t, placeholderID, msgs[1].ID)
	assert.Empty(t, msgs[1].Content)
	assert.True(t, msgs[1].IsStreaming)

	close(client.release)
	sess.Wait()

	msgs = sess.History()
	require.Len(t, msgs, 2, "the placeholder is mutated, never duplicated")
	assert.Equal(t, placeholderID, msgs[1].ID)
	assert.False(t, msgs[1].IsStreaming)
	assert.Contains(t, msgs[1].Content, "```json")
	assert.Contains(t, msgs[1].Content, `"name": "N"`)
	assert.Contains(t, msgs[1].Content, "Email Marketing")

	campaign := sess.CurrentCampaign()
	require.NotNil(t, campaign)
	assert.Equal(t, "N", campaign.Name)
}

func TestTurnEvents(t *testing.T) {
	rec := &eventRecorder{}
	client := &blockingClient{release: make(chan struct{}), resp: `{"name":"N","content":{"message":"m"}}`}
	sess, _ := testSession(client, rec.sink())

	close(client.release)
	_, err := sess.Submit(context.Background(), "p")
	require.NoError(t, err)
	sess.Wait()

	assert.Equal(t, []string{
		EventMessageCreated,
		EventMessageCreated,
		EventMessageSettled,
		EventCampaignUpdated,
	}, rec.types())
}

func TestFallbackTurnStillSettles(t *testing.T) {
	rec := &eventRecorder{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // the adapter call fails immediately with a timeout
	client := &blockingClient{release: make(chan struct{})}
	sess, _ := testSession(client, rec.sink())

	_, err := sess.Submit(ctx, "p")
	require.NoError(t, err)
	sess.Wait()

	msgs := sess.History()
	require.Len(t, msgs, 2)
	assert.False(t, msgs[1].IsStreaming)
	assert.Contains(t, msgs[1].Content, "fallback campaign generation")

	c := sess.CurrentCampaign()
	require.NotNil(t, c)
	assert.NotEmpty(t, c.Content.Message)

	last := rec.types()[len(rec.types())-1]
	assert.Equal(t, EventCampaignUpdated, last)
}

func TestSubmitSnapshotsEntities(t *testing.T) {
	client := &blockingClient{release: make(chan struct{}), resp: `{"channels":[{"type":"email"},{"type":"sms"}],"content":{"message":"m"}}`}
	sess, registry := testSession(client, nil)

	_, err := sess.Submit(context.Background(), "p")
	require.NoError(t, err)

	// Connected mid-flight: visible only to the next invocation.
	registry.AddChannel(catalog.Channel{ID: "c2", Name: "SMS Campaigns", Type: catalog.ChannelSMS, Status: catalog.ChannelActive})

	close(client.release)
	sess.Wait()

	c := sess.CurrentCampaign()
	require.NotNil(t, c)
	require.Len(t, c.Channels, 1)
	assert.Equal(t, "c1", c.Channels[0].ID)
}

func TestSubmitEmptyPrompt(t *testing.T) {
	sess, _ := testSession(&blockingClient{release: make(chan struct{})}, nil)
	_, err := sess.Submit(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Empty(t, sess.History())
}

func TestStoreGetOrCreate(t *testing.T) {
	registry := catalog.NewRegistry()
	gen := &pipeline.Generator{Client: &blockingClient{release: make(chan struct{})}}
	store := NewStore(gen, registry, nil)

	assert.Nil(t, store.Get("a"))
	a := store.GetOrCreate("a")
	assert.Same(t, a, store.GetOrCreate("a"))
	assert.Same(t, a, store.Get("a"))
	store.GetOrCreate("b")
	assert.Len(t, store.List(), 2)

	assert.WithinDuration(t, time.Now(), a.CreatedAt, time.Second)
}
