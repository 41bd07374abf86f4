package email

import (
	"context"
	"sync"

	"darisni/utils"

	"go.uber.org/zap"
)

// ConsoleService logs outbound emails instead of sending them. Used in
// development and tests; sent messages are recorded for inspection.
type ConsoleService struct {
	mu   sync.Mutex
	sent []Message
}

var _ EmailService = (*ConsoleService)(nil)

// NewConsoleService creates a ConsoleService.
func NewConsoleService() *ConsoleService {
	return &ConsoleService{}
}

// Send logs the message and records it.
func (s *ConsoleService) Send(_ context.Context, msg Message) error {
	utils.GetLogger().Info("outbound email",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.TextContent),
	)
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	return nil
}

// SentMessages returns a copy of all messages sent so far.
func (s *ConsoleService) SentMessages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
