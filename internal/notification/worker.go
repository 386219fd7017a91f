package notification

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

const fetchBatchSize = 50

// Worker drains the outbox and feeds the dispatcher. It is the self-hosted
// stand-in for a hosted document-trigger: a single goroutine polling for
// unprocessed events, delivering each at-least-once.
//
// Events are marked processed even when push delivery fails — notification is
// best-effort, and transient failures are not retried (the next event retries
// the recipient naturally). A crash between handling and marking re-delivers
// the event; the dispatcher's idempotent operations make that harmless.
type Worker struct {
	outbox     OutboxRepository
	dispatcher *Dispatcher
	interval   time.Duration
}

// NewWorker creates a new outbox worker
func NewWorker(outbox OutboxRepository, dispatcher *Dispatcher, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Worker{
		outbox:     outbox,
		dispatcher: dispatcher,
		interval:   interval,
	}
}

// Start polls until the context is cancelled
func (w *Worker) Start(ctx context.Context) {
	log.Printf("[Outbox] Worker started, polling every %s", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[Outbox] Worker stopped")
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	for {
		events, err := w.outbox.FetchUnprocessed(fetchBatchSize)
		if err != nil {
			log.Printf("[Outbox] Fetch failed: %v", err)
			return
		}
		if len(events) == 0 {
			return
		}

		for _, event := range events {
			if ctx.Err() != nil {
				return
			}
			w.process(ctx, event)
		}

		if len(events) < fetchBatchSize {
			return
		}
	}
}

func (w *Worker) process(ctx context.Context, event OutboxEvent) {
	if err := w.outbox.IncrementAttempts(event.ID); err != nil {
		log.Printf("[Outbox] Failed to bump attempts for %s: %v", event.ID, err)
	}

	outcome := w.handle(ctx, event)
	log.Printf("[Outbox] %s %s: sent=%v skip=%q pruned=%d", event.Type, event.ID, outcome.Sent, outcome.SkipReason, outcome.Pruned)

	if err := w.outbox.MarkProcessed(event.ID); err != nil {
		// Left unprocessed; it will be re-delivered, which the idempotent
		// handlers tolerate
		log.Printf("[Outbox] Failed to mark %s processed: %v", event.ID, err)
	}
}

func (w *Worker) handle(ctx context.Context, event OutboxEvent) DeliveryOutcome {
	switch event.Type {
	case EventMessageCreated:
		var p MessageCreatedPayload
		if err := json.Unmarshal([]byte(event.Payload), &p); err != nil {
			log.Printf("[Outbox] Bad payload for %s: %v", event.ID, err)
			return skipped("bad_payload")
		}
		return w.dispatcher.HandleMessageCreated(ctx, p)

	case EventFriendshipCreated:
		var p FriendshipCreatedPayload
		if err := json.Unmarshal([]byte(event.Payload), &p); err != nil {
			log.Printf("[Outbox] Bad payload for %s: %v", event.ID, err)
			return skipped("bad_payload")
		}
		return w.dispatcher.HandleFriendshipCreated(ctx, p)

	case EventFriendshipUpdated:
		var p FriendshipUpdatedPayload
		if err := json.Unmarshal([]byte(event.Payload), &p); err != nil {
			log.Printf("[Outbox] Bad payload for %s: %v", event.ID, err)
			return skipped("bad_payload")
		}
		return w.dispatcher.HandleFriendshipUpdated(ctx, p)

	default:
		log.Printf("[Outbox] Unknown event type %q for %s", event.Type, event.ID)
		return skipped("unknown_type")
	}
}
