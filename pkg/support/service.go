package support

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/optihealth/platform/pkg/common/logger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultTicketLimit = 50
	ticketIDAttempts   = 3
)

type TicketStore interface {
	Create(ctx context.Context, t *Ticket) error
	Recent(ctx context.Context, limit int) ([]Ticket, error)
}

type Service struct {
	kb      KnowledgeBase
	board   *StatusBoard
	tickets TicketStore
	newID   func() string
	now     func() time.Time
}

func NewService(kb KnowledgeBase, board *StatusBoard, tickets TicketStore) *Service {
	if board == nil {
		board = NewStatusBoard()
	}
	return &Service{kb: kb, board: board, tickets: tickets, newID: NewTicketID, now: time.Now}
}

func (s *Service) Chat(message string) string {
	return s.kb.Reply(message)
}

func (s *Service) Status() []SystemService {
	return s.board.Services()
}

// OpenTicket stores a new incident. A colliding incident number is retried
// with a fresh one.
func (s *Service) OpenTicket(ctx context.Context, req TicketRequest) (Ticket, error) {
	if err := req.Validate(); err != nil {
		return Ticket{}, err
	}

	t := req.ToModel()
	t.CreatedAt = s.now().UTC()

	var err error
	for attempt := 0; attempt < ticketIDAttempts; attempt++ {
		t.ID = s.newID()
		err = s.tickets.Create(ctx, &t)
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	if err != nil {
		return Ticket{}, fmt.Errorf("create ticket: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"ticket_id": t.ID,
		"priority":  t.Priority,
		"asset":     t.Asset,
	}).Info("Support ticket opened")
	return t, nil
}

func (s *Service) RecentTickets(ctx context.Context, limit int) ([]Ticket, error) {
	if limit <= 0 || limit > defaultTicketLimit {
		limit = defaultTicketLimit
	}
	out, err := s.tickets.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Ticket{}
	}
	return out, nil
}
