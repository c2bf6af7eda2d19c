package models

// NotificationRequest is the payload handed to the external notification
// sender: a template name plus the parameters to render it with. Delivery is
// best-effort; the sender owns templates and transport.
type NotificationRequest struct {
	Template  string            `json:"template"`
	Recipient string            `json:"recipient"`
	Params    map[string]string `json:"params"`
}
