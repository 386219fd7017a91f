package notification

import (
	"context"
	"log"
	"time"
	"unicode/utf8"

	authdomain "cafely-backend/internal/auth/domain"
	chatdomain "cafely-backend/internal/chat/domain"
	"cafely-backend/pkg/fcm"
)

// Notification payload types, consumed by the client for click routing
const (
	TypeMessage        = "message"
	TypeFriendRequest  = "friend_request"
	TypeFriendAccepted = "friend_accepted"
)

// Push bodies are capped for UX/cost; the stored message keeps its full text
const maxPushBodyRunes = 100

// Pusher sends one multicast push and reports per-token results
type Pusher interface {
	SendToDevices(ctx context.Context, tokens []string, notification fcm.NotificationData) ([]fcm.SendResult, error)
}

// UserLookup resolves recipients and display names
type UserLookup interface {
	FindByID(id string) (*authdomain.User, error)
}

// TokenRegistry is the dispatcher's view of the device token store
type TokenRegistry interface {
	GetTokensByUserID(userID string) ([]authdomain.FCMToken, error)
	DeleteTokens(userID string, tokens []string) error
}

// DeliveryOutcome records what the dispatcher did with one event. The original
// design treated "no tokens" and "disabled" as silent successes; the skip
// reason makes them at least visible in logs.
type DeliveryOutcome struct {
	Sent       bool
	SkipReason string
	Pruned     int
}

func skipped(reason string) DeliveryOutcome {
	return DeliveryOutcome{SkipReason: reason}
}

// Dispatcher turns domain events into at most one outbound multicast push
// each, pruning dead tokens as a side effect. It holds no cross-event state:
// every invocation is independent and safe to repeat, which is what makes
// at-least-once event delivery tolerable.
type Dispatcher struct {
	users       UserLookup
	registry    TokenRegistry
	pusher      Pusher
	sendTimeout time.Duration
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(users UserLookup, registry TokenRegistry, pusher Pusher, sendTimeout time.Duration) *Dispatcher {
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}
	return &Dispatcher{
		users:       users,
		registry:    registry,
		pusher:      pusher,
		sendTimeout: sendTimeout,
	}
}

// HandleMessageCreated notifies the receiver of a new message
func (d *Dispatcher) HandleMessageCreated(ctx context.Context, p MessageCreatedPayload) DeliveryOutcome {
	// Self-addressed messages never page anyone
	if p.SenderID == p.ReceiverID {
		return skipped("self_message")
	}

	data := map[string]string{
		"type":           TypeMessage,
		"senderId":       p.SenderID,
		"conversationId": chatdomain.PairKey(p.SenderID, p.ReceiverID),
	}
	data["click_action"] = ClickAction(data)

	return d.deliver(ctx, p.ReceiverID, fcm.NotificationData{
		Title:       d.displayName(p.SenderID),
		Body:        truncateBody(p.Text),
		Data:        data,
		ClickAction: data["click_action"],
	})
}

// HandleFriendshipCreated notifies the addressee of a new friend request
func (d *Dispatcher) HandleFriendshipCreated(ctx context.Context, p FriendshipCreatedPayload) DeliveryOutcome {
	// A record born accepted is not a new request; defensively skip
	if p.Status == "accepted" {
		return skipped("created_accepted")
	}

	recipient := ""
	for _, id := range p.Users {
		if id != p.RequestedBy {
			recipient = id
		}
	}
	if len(p.Users) != 2 || recipient == "" || recipient == p.RequestedBy {
		return skipped("malformed_record")
	}

	data := map[string]string{
		"type":     TypeFriendRequest,
		"senderId": p.RequestedBy,
	}
	data["click_action"] = ClickAction(data)

	return d.deliver(ctx, recipient, fcm.NotificationData{
		Title:       "New friend request",
		Body:        d.displayName(p.RequestedBy) + " wants to be your friend",
		Data:        data,
		ClickAction: data["click_action"],
	})
}

// HandleFriendshipUpdated notifies the original requester when their request
// is accepted. It fires only on the pending→accepted edge; any other write,
// including accepted→accepted no-ops, is ignored.
func (d *Dispatcher) HandleFriendshipUpdated(ctx context.Context, p FriendshipUpdatedPayload) DeliveryOutcome {
	if p.BeforeStatus == "accepted" || p.AfterStatus != "accepted" {
		return skipped("not_accept_edge")
	}

	accepter := ""
	for _, id := range p.Users {
		if id != p.RequestedBy {
			accepter = id
		}
	}

	data := map[string]string{
		"type":     TypeFriendAccepted,
		"senderId": accepter,
	}
	data["click_action"] = ClickAction(data)

	return d.deliver(ctx, p.RequestedBy, fcm.NotificationData{
		Title:       "Friend request accepted",
		Body:        d.displayName(accepter) + " accepted your friend request",
		Data:        data,
		ClickAction: data["click_action"],
	})
}

// deliver looks up the recipient's tokens, sends one multicast push and prunes
// exactly the permanently-invalid tokens. Failures are logged and swallowed:
// notification is best-effort and must never reach back into the write that
// produced the event.
func (d *Dispatcher) deliver(ctx context.Context, recipientID string, note fcm.NotificationData) DeliveryOutcome {
	recipient, err := d.users.FindByID(recipientID)
	if err != nil {
		log.Printf("[Dispatch] Failed to load recipient %s: %v", recipientID, err)
		return skipped("lookup_failed")
	}
	if recipient == nil {
		log.Printf("[Dispatch] Recipient %s not found", recipientID)
		return skipped("recipient_missing")
	}
	if !recipient.NotificationsEnabled {
		return skipped("notifications_disabled")
	}

	tokenRows, err := d.registry.GetTokensByUserID(recipientID)
	if err != nil {
		log.Printf("[Dispatch] Failed to load tokens for %s: %v", recipientID, err)
		return skipped("lookup_failed")
	}
	if len(tokenRows) == 0 {
		return skipped("no_tokens")
	}

	tokens := make([]string, len(tokenRows))
	for i, row := range tokenRows {
		tokens[i] = row.Token
	}

	// One multicast call per event regardless of device count
	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	results, err := d.pusher.SendToDevices(sendCtx, tokens, note)
	if err != nil {
		// Whole-call failure (including timeout) is transient: no pruning,
		// no retry; the next event tries again naturally
		log.Printf("[Dispatch] Push send failed for %s: %v", recipientID, err)
		return skipped("send_failed")
	}

	var invalid []string
	for _, res := range results {
		if res.Invalid {
			invalid = append(invalid, res.Token)
		}
	}

	if len(invalid) > 0 {
		// Set-difference delete: idempotent, and commutes with a concurrent
		// register of a different token
		if err := d.registry.DeleteTokens(recipientID, invalid); err != nil {
			log.Printf("[Dispatch] Failed to prune %d tokens for %s: %v", len(invalid), recipientID, err)
		} else {
			log.Printf("[Dispatch] Pruned %d invalid tokens for %s", len(invalid), recipientID)
		}
	}

	return DeliveryOutcome{Sent: true, Pruned: len(invalid)}
}

func (d *Dispatcher) displayName(userID string) string {
	user, err := d.users.FindByID(userID)
	if err != nil || user == nil {
		return "Someone"
	}
	if user.Username != "" {
		return user.Username
	}
	if user.DisplayName != "" {
		return user.DisplayName
	}
	return "Someone"
}

// truncateBody caps the push body at maxPushBodyRunes characters, marking the
// cut with an ellipsis. Counts runes, not bytes, so multi-byte text is not
// split mid-character.
func truncateBody(text string) string {
	if utf8.RuneCountInString(text) <= maxPushBodyRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxPushBodyRunes]) + "..."
}
