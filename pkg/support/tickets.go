package support

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	TicketOpen       = "Open"
	TicketInProgress = "In Progress"
	TicketResolved   = "Resolved"

	defaultPriority = "Medium"
)

var (
	errMissingSubject     = errors.New("subject is required")
	errMissingDescription = errors.New("description is required")
	errUnknownPriority    = errors.New("priority must be Low, Medium, High or Critical")
)

var priorities = map[string]string{
	"low":      "Low",
	"medium":   "Medium",
	"high":     "High",
	"critical": "Critical",
}

type ValidationError struct {
	reason error
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

type Ticket struct {
	ID          string    `gorm:"primaryKey;type:varchar(16)" json:"id"`
	Subject     string    `gorm:"not null" json:"subject"`
	Status      string    `gorm:"type:varchar(20);index" json:"status"`
	Priority    string    `gorm:"type:varchar(20)" json:"priority"`
	Asset       string    `json:"asset"`
	Description string    `json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (Ticket) TableName() string {
	return "tickets"
}

type TicketRequest struct {
	Subject     string `json:"subject"`
	Priority    string `json:"priority"`
	Asset       string `json:"asset"`
	Description string `json:"description"`
}

func (r TicketRequest) Validate() error {
	if strings.TrimSpace(r.Subject) == "" {
		return ValidationError{reason: errMissingSubject}
	}
	if strings.TrimSpace(r.Description) == "" {
		return ValidationError{reason: errMissingDescription}
	}
	if r.Priority != "" {
		if _, ok := priorities[strings.ToLower(r.Priority)]; !ok {
			return ValidationError{reason: errUnknownPriority}
		}
	}
	return nil
}

func (r TicketRequest) ToModel() Ticket {
	priority := defaultPriority
	if p, ok := priorities[strings.ToLower(r.Priority)]; ok {
		priority = p
	}
	return Ticket{
		Subject:     strings.TrimSpace(r.Subject),
		Status:      TicketOpen,
		Priority:    priority,
		Asset:       strings.TrimSpace(r.Asset),
		Description: strings.TrimSpace(r.Description),
	}
}

// NewTicketID returns an incident number in the INC-1000..INC-9999 range.
func NewTicketID() string {
	return fmt.Sprintf("INC-%d", 1000+rand.IntN(9000))
}

type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&Ticket{})
}

func (r *TicketRepository) Create(ctx context.Context, t *Ticket) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// Recent returns the newest tickets first.
func (r *TicketRepository) Recent(ctx context.Context, limit int) ([]Ticket, error) {
	var out []Ticket
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}
