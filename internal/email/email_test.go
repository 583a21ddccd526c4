package email

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderInvitationEscapesUserInput(t *testing.T) {
	html, err := RenderInvitation(InvitationData{
		ClientName: "Ana <script>",
		CoachName:  "Coach Kai",
		Message:    "See you Monday",
		Link:       "https://app.example.com/auth/signup?invite=abc",
	})
	require.NoError(t, err)
	require.Contains(t, html, "Coach Kai has invited you")
	require.Contains(t, html, "See you Monday")
	require.Contains(t, html, "invite=abc")
	require.False(t, strings.Contains(html, "<script>"))
}

func TestRenderInvitationFallsBackWithoutCoachName(t *testing.T) {
	html, err := RenderInvitation(InvitationData{ClientName: "Ana", Link: "https://x"})
	require.NoError(t, err)
	require.Contains(t, html, "Your coach has invited you")
	require.NotContains(t, html, "blockquote")
}

func TestLogSenderNeverFails(t *testing.T) {
	result, err := LogSender{}.Send(context.Background(), SendRequest{To: []string{"a@example.com"}, Subject: "hi"})
	require.NoError(t, err)
	require.False(t, result.SentAt.IsZero())
}
