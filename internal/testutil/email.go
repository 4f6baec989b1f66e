package testutil

import (
	"context"
	"sync"

	"github.com/codr1/golfleague/internal/email"
)

// RecordingSender captures sent messages. A non-nil Err is returned from
// every Send after the message is recorded.
type RecordingSender struct {
	mu       sync.Mutex
	messages []email.Message
	Err      error
	Sent     chan email.Message
}

func NewRecordingSender() *RecordingSender {
	return &RecordingSender{Sent: make(chan email.Message, 16)}
}

func (s *RecordingSender) Send(ctx context.Context, msg email.Message) error {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	err := s.Err
	s.mu.Unlock()

	select {
	case s.Sent <- msg:
	default:
	}
	return err
}

func (s *RecordingSender) Messages() []email.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]email.Message, len(s.messages))
	copy(out, s.messages)
	return out
}
