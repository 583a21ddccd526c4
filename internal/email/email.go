package email

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"time"
)

type SendRequest struct {
	From    string
	To      []string
	Subject string
	HTML    string
	ReplyTo string
}

type SendResult struct {
	MessageID string
	SentAt    time.Time
}

type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}

// LogSender stands in for a real provider when no API key is configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	slog.InfoContext(ctx, "email_not_sent_provider_disabled", "to", req.To, "subject", req.Subject)
	return SendResult{SentAt: time.Now()}, nil
}

type InvitationData struct {
	ClientName string
	CoachName  string
	Message    string
	Link       string
}

var invitationTemplate = template.Must(template.New("invitation").Parse(`<!doctype html>
<html>
  <body style="font-family: sans-serif; color: #111">
    <h1>Hi {{.ClientName}},</h1>
    <p>{{if .CoachName}}{{.CoachName}}{{else}}Your coach{{end}} has invited you to join their coaching practice on Kahunas.</p>
    {{if .Message}}<blockquote style="border-left: 3px solid #ddd; padding-left: 12px">{{.Message}}</blockquote>{{end}}
    <p><a href="{{.Link}}">Accept your invitation</a></p>
    <p style="color: #666; font-size: 12px">If the button does not work, paste this link into your browser: {{.Link}}</p>
  </body>
</html>`))

func RenderInvitation(data InvitationData) (string, error) {
	var buf bytes.Buffer
	if err := invitationTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
