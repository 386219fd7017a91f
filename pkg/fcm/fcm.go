package fcm

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Client wraps Firebase Cloud Messaging functionality
type Client struct {
	messagingClient *messaging.Client
}

// NewClient creates a new FCM client using the provided credentials file
func NewClient(credentialsFile string) (*Client, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	log.Println("[FCM] Client initialized successfully")
	return &Client{
		messagingClient: messagingClient,
	}, nil
}

// NotificationData contains the data to send in a push notification
type NotificationData struct {
	Title string
	Body  string
	Icon  string
	Data  map[string]string // Custom data payload
	// Click action
	ClickAction string // URL to open when notification is clicked
}

// SendResult is the per-token outcome of a multicast send. Invalid is set only
// for the two provider error codes that mean the token is permanently dead
// (UNREGISTERED, INVALID_ARGUMENT); every other failure is transient.
type SendResult struct {
	Token   string
	Success bool
	Invalid bool
}

// SendToDevices sends one multicast push to all given device tokens and returns
// a result per token.
func (c *Client) SendToDevices(ctx context.Context, tokens []string, notification NotificationData) ([]SendResult, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: notification.Title,
			Body:  notification.Body,
		},
		Data: notification.Data,
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: notification.Title,
				Body:  notification.Body,
				Icon:  notification.Icon,
			},
			FCMOptions: &messaging.WebpushFCMOptions{
				Link: notification.ClickAction,
			},
		},
	}

	response, err := c.messagingClient.SendEachForMulticast(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("failed to send FCM multicast message: %w", err)
	}

	log.Printf("[FCM] Multicast sent: %d success, %d failures", response.SuccessCount, response.FailureCount)

	results := make([]SendResult, len(tokens))
	for i, resp := range response.Responses {
		results[i] = SendResult{Token: tokens[i], Success: resp.Success}
		if resp.Success {
			continue
		}
		if messaging.IsUnregistered(resp.Error) || errorutils.IsInvalidArgument(resp.Error) {
			results[i].Invalid = true
		}
		log.Printf("[FCM] Failed to send to token %s: %v", truncateToken(tokens[i]), resp.Error)
	}

	return results, nil
}

func truncateToken(token string) string {
	if len(token) <= 20 {
		return token
	}
	return token[:20] + "..."
}
