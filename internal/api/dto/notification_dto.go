package dto

// NotificationSendRequest triggers one notification email directly over REST,
// bypassing the message channel.
type NotificationSendRequest struct {
	Operation string `json:"operation"`
	Email     string `json:"email"`
}
