package email

import "context"

// Message is a plain outbound email.
type Message struct {
	To          string
	Subject     string
	TextContent string
	HTMLContent string
}

// EmailService is any service that can deliver transactional emails.
type EmailService interface {
	Send(ctx context.Context, msg Message) error
}
