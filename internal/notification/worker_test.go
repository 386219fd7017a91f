package notification

import (
	"context"
	"encoding/json"
	"testing"

	authdomain "cafely-backend/internal/auth/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOutbox struct {
	pending   []OutboxEvent
	processed []string
	attempts  map[string]int
}

func newFakeOutbox(events ...OutboxEvent) *fakeOutbox {
	return &fakeOutbox{pending: events, attempts: make(map[string]int)}
}

func (f *fakeOutbox) FetchUnprocessed(limit int) ([]OutboxEvent, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeOutbox) MarkProcessed(id string) error {
	f.processed = append(f.processed, id)
	remaining := make([]OutboxEvent, 0, len(f.pending))
	for _, e := range f.pending {
		if e.ID != id {
			remaining = append(remaining, e)
		}
	}
	f.pending = remaining
	return nil
}

func (f *fakeOutbox) IncrementAttempts(id string) error {
	f.attempts[id]++
	return nil
}

func event(t *testing.T, id, eventType string, payload interface{}) OutboxEvent {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return OutboxEvent{ID: id, Type: eventType, Payload: string(data)}
}

func TestWorkerDrainsAllPendingEvents(t *testing.T) {
	users := &fakeUsers{users: map[string]*authdomain.User{
		"alice": enabledUser("alice", "alice"),
		"bob":   enabledUser("bob", "bob"),
	}}
	registry := newFakeRegistry()
	registry.tokens["bob"] = tokenRows("bob", "tok-1")
	pusher := &fakePusher{}

	outbox := newFakeOutbox(
		event(t, "e1", EventMessageCreated, MessageCreatedPayload{SenderID: "alice", ReceiverID: "bob", Text: "first"}),
		event(t, "e2", EventMessageCreated, MessageCreatedPayload{SenderID: "alice", ReceiverID: "bob", Text: "second"}),
	)

	w := NewWorker(outbox, newTestDispatcher(users, registry, pusher), 0)
	w.drain(context.Background())

	assert.Equal(t, []string{"e1", "e2"}, outbox.processed)
	assert.Equal(t, 2, pusher.calls)
	assert.Equal(t, 1, outbox.attempts["e1"])
	assert.Equal(t, 1, outbox.attempts["e2"])
}

func TestWorkerMarksProcessedWhenPushFails(t *testing.T) {
	users := &fakeUsers{users: map[string]*authdomain.User{
		"alice": enabledUser("alice", "alice"),
		"bob":   enabledUser("bob", "bob"),
	}}
	registry := newFakeRegistry()
	registry.tokens["bob"] = tokenRows("bob", "tok-1")
	pusher := &fakePusher{err: assert.AnError}

	outbox := newFakeOutbox(
		event(t, "e1", EventMessageCreated, MessageCreatedPayload{SenderID: "alice", ReceiverID: "bob", Text: "hi"}),
	)

	w := NewWorker(outbox, newTestDispatcher(users, registry, pusher), 0)
	w.drain(context.Background())

	// Push is best-effort: a failed send never blocks the queue
	assert.Equal(t, []string{"e1"}, outbox.processed)
}

func TestWorkerSkipsUnknownEventTypes(t *testing.T) {
	pusher := &fakePusher{}
	outbox := newFakeOutbox(OutboxEvent{ID: "e1", Type: "legacy_event", Payload: "{}"})

	w := NewWorker(outbox, newTestDispatcher(&fakeUsers{}, newFakeRegistry(), pusher), 0)
	w.drain(context.Background())

	assert.Equal(t, []string{"e1"}, outbox.processed)
	assert.Zero(t, pusher.calls)
}

func TestWorkerSkipsMalformedPayload(t *testing.T) {
	pusher := &fakePusher{}
	outbox := newFakeOutbox(OutboxEvent{ID: "e1", Type: EventMessageCreated, Payload: "not json"})

	w := NewWorker(outbox, newTestDispatcher(&fakeUsers{}, newFakeRegistry(), pusher), 0)
	w.drain(context.Background())

	assert.Equal(t, []string{"e1"}, outbox.processed)
	assert.Zero(t, pusher.calls)
}
