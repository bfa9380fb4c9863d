package audit

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"jassari/pkg/requestcontext"
)

type AuditSuite struct {
	suite.Suite
	logger *slog.Logger
}

func TestAuditSuite(t *testing.T) {
	suite.Run(t, new(AuditSuite))
}

func (s *AuditSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func (s *AuditSuite) TestRecordStampsFromContext() {
	svc := NewService(s.logger)

	now := time.Date(2020, time.June, 15, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithRequestID(ctx, "req-1")

	svc.Record(ctx, Event{ProfileID: "p-1", Action: ActionCreated})

	event := <-svc.Inbox()
	s.Equal(now, event.Timestamp)
	s.Equal("req-1", event.RequestID)
	s.Equal(ActionCreated, event.Action)
}

func (s *AuditSuite) TestRecordDropsWhenFull() {
	svc := NewService(s.logger)
	for i := 0; i < defaultBuffer+10; i++ {
		svc.Record(context.Background(), Event{ProfileID: "p-1", Action: ActionViewed})
	}
	s.Len(svc.Inbox(), defaultBuffer)
}

func (s *AuditSuite) TestWorkerDrainsOnShutdown() {
	svc := NewService(s.logger)
	store := NewMemoryStore()
	worker := NewWorker(store, svc.Inbox(), s.logger)

	for i := 0; i < 5; i++ {
		svc.Record(context.Background(), Event{ProfileID: "p-1", Action: ActionUpdated})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Require().NoError(worker.Run(ctx))

	events, err := store.ListByProfile(context.Background(), "p-1")
	s.Require().NoError(err)
	s.Len(events, 5)
}
