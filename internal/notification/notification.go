// Package notification dispatches templated messages for the approval
// workflow. Rendering and delivery are a downstream concern; this service only
// publishes which template to send, to whom, in which language, with which
// context values.
package notification

import (
	"context"
	"sync"

	"jassari/internal/membership"
)

// TemplateKey selects a notification template on the delivery side.
type TemplateKey string

const (
	// TemplateConfirmationNeeded asks the guardian to approve a membership.
	// Context carries the approval token and, for minors, the temporary
	// profile access token embedded in the approval link.
	TemplateConfirmationNeeded TemplateKey = "youth_profile_confirmation_needed"
	// TemplateConfirmed tells the youth their membership was approved.
	TemplateConfirmed TemplateKey = "youth_profile_confirmed"
)

// Message is a single notification to deliver.
type Message struct {
	Recipient string              `json:"recipient"`
	Template  TemplateKey         `json:"template"`
	Language  membership.Language `json:"language"`
	Context   map[string]string   `json:"context"`
}

// Sender delivers or enqueues a message. A Send error aborts the enclosing
// operation: the caller runs inside a store transaction, so a membership
// mutation whose notification cannot be dispatched is rolled back.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// MemorySender records messages for tests.
type MemorySender struct {
	mu   sync.Mutex
	sent []Message
}

func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

func (s *MemorySender) Send(ctx context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

// Sent returns a copy of everything sent so far.
func (s *MemorySender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}
