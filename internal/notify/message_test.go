package notify

import (
	"testing"

	"alertsmis/internal/utils"
	"alertsmis/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyURL(t *testing.T) {
	assert.Equal(t,
		"https://alerts.example.org/alert_verification?id=42&token=abc123",
		VerifyURL("https://alerts.example.org/", 42, "abc123"),
	)
}

func TestDownloadURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/download_alert?id=7", DownloadURL("http://localhost:8080", 7))
}

func TestCompose(t *testing.T) {
	contact := &types.ContactSummary{
		ContactNumber:   utils.StringPtr("0772000000"),
		PersonReporting: utils.StringPtr("Jane Okello"),
	}
	recipient := &types.Responder{
		Username:   "ems.desk",
		Email:      "ems@example.org",
		GivenName:  utils.StringPtr("Emma"),
		FamilyName: utils.StringPtr("Achieng"),
	}

	n := Compose("https://alerts.example.org", 42, contact, recipient, "abc123")

	require.NotNil(t, n)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, int64(42), n.AlertID)
	assert.Equal(t, "ems@example.org", n.To)
	assert.Equal(t, "Emma Achieng", n.ToName)
	assert.Equal(t, "Action needed for alert #42", n.Subject)
	assert.Equal(t, "https://alerts.example.org/alert_verification?id=42&token=abc123", n.VerifyURL)
	assert.Equal(t, "https://alerts.example.org/download_alert?id=42", n.DownloadURL)

	assert.Contains(t, n.Body, "Jane Okello")
	assert.Contains(t, n.Body, "0772000000")
	assert.Contains(t, n.Body, n.VerifyURL)
	assert.Contains(t, n.Body, n.DownloadURL)
}

func TestComposeWithoutContact(t *testing.T) {
	n := Compose("https://alerts.example.org", 3, nil, &types.Responder{Username: "reoc", Email: "reoc@example.org"}, "ff")

	assert.Equal(t, "reoc", n.ToName)
	assert.Contains(t, n.Body, "the reporter")
	assert.Contains(t, n.Body, "the number on file")
}

func TestComposeIDsAreUnique(t *testing.T) {
	r := &types.Responder{Email: "a@example.org"}
	assert.NotEqual(t, Compose("", 1, nil, r, "t").ID, Compose("", 1, nil, r, "t").ID)
}
