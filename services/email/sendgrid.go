package email

import (
	"context"
	"fmt"
	"net/http"

	"darisni/config"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendgridService delivers emails through the SendGrid API.
type SendgridService struct {
	key  string
	from *sgmail.Email
}

var _ EmailService = (*SendgridService)(nil)

// NewSendgridService creates a SendgridService from the app configuration.
func NewSendgridService() *SendgridService {
	return &SendgridService{
		key:  config.AppConfig.SendgridAPIKey,
		from: sgmail.NewEmail("Darisni", config.AppConfig.DefaultFromEmail),
	}
}

// Send delivers a single message. HTML content falls back to the text body.
func (s *SendgridService) Send(ctx context.Context, msg Message) error {
	html := msg.HTMLContent
	if html == "" {
		html = msg.TextContent
	}
	m := sgmail.NewSingleEmail(s.from, msg.Subject, sgmail.NewEmail("", msg.To), msg.TextContent, html)

	client := sendgrid.NewSendClient(s.key)
	resp, err := client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid: failed to send email: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sendgrid: unexpected status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
