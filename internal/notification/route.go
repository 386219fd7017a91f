package notification

// ClickAction maps a notification data payload to the in-app path to open.
// The same function serves both the background OS notification click and the
// foreground in-app toast, so routing cannot drift between the two paths.
// Unknown or missing types fail open to the home view.
func ClickAction(data map[string]string) string {
	switch data["type"] {
	case TypeMessage:
		if id := data["conversationId"]; id != "" {
			return "/chat/" + id
		}
		if sender := data["senderId"]; sender != "" {
			return "/chat/peer/" + sender
		}
		return "/"
	case TypeFriendRequest:
		return "/friends/requests"
	case TypeFriendAccepted:
		return "/friends"
	default:
		return "/"
	}
}
