// Package notify composes escalation messages and delivers them by email,
// through a RabbitMQ queue, or to the log.
package notify

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"alertsmis/internal/utils"
	"alertsmis/pkg/types"

	"github.com/google/uuid"
)

// VerifyURL is the link a responder follows to approve the escalation.
func VerifyURL(baseURL string, alertID int64, token string) string {
	q := url.Values{}
	q.Set("id", strconv.FormatInt(alertID, 10))
	q.Set("token", token)
	return strings.TrimRight(baseURL, "/") + "/alert_verification?" + q.Encode()
}

func DownloadURL(baseURL string, alertID int64) string {
	return strings.TrimRight(baseURL, "/") + "/download_alert?id=" + strconv.FormatInt(alertID, 10)
}

// Compose builds the escalation message for one recipient.
func Compose(baseURL string, alertID int64, contact *types.ContactSummary, recipient *types.Responder, token string) *types.Notification {
	verifyURL := VerifyURL(baseURL, alertID, token)
	downloadURL := DownloadURL(baseURL, alertID)

	var person, number string
	if contact != nil {
		person = utils.PtrString(contact.PersonReporting)
		number = utils.PtrString(contact.ContactNumber)
	}
	if person == "" {
		person = "the reporter"
	}
	if number == "" {
		number = "the number on file"
	}

	var b strings.Builder
	b.WriteString("Dear EMS Team,\n\n")
	fmt.Fprintf(&b, "After verification, alert #%d needs your attention.\n", alertID)
	fmt.Fprintf(&b, "Please contact %s at %s for more details.\n\n", person, number)
	fmt.Fprintf(&b, "Verify the alert by clicking here: %s\n\n", verifyURL)
	fmt.Fprintf(&b, "Download alert details here: %s\n\n", downloadURL)
	b.WriteString("Best Regards,\nAlerts System")

	return &types.Notification{
		ID:          uuid.NewString(),
		AlertID:     alertID,
		To:          recipient.Email,
		ToName:      recipient.DisplayName(),
		Subject:     fmt.Sprintf("Action needed for alert #%d", alertID),
		Body:        b.String(),
		VerifyURL:   verifyURL,
		DownloadURL: downloadURL,
	}
}
