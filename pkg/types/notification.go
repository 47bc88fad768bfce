package types

// Notification is one outbound escalation message for a single recipient.
type Notification struct {
	ID          string `json:"id"`
	AlertID     int64  `json:"alert_id"`
	To          string `json:"to"`
	ToName      string `json:"to_name"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	VerifyURL   string `json:"verify_url"`
	DownloadURL string `json:"download_url"`
}
