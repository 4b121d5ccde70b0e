// Package services orchestrates store mutations with the event trail and
// the external boundaries. Mutations succeed or fail on store state alone;
// event publishing is best-effort and never fails a request.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"vexpenses/internal/amqp"
	"vexpenses/internal/core"
	"vexpenses/internal/log"
	"vexpenses/internal/store"
)

// manualSourceFile tags transactions entered through the form rather than an
// import.
const manualSourceFile = "Inserção Manual"

// EventPublisher is the outbound event trail boundary.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event *amqp.MutationEvent) error
}

type ExpenseService struct {
	store  *store.Store
	events EventPublisher
	logger *log.Logger
	now    func() time.Time
}

func NewExpenseService(st *store.Store, events EventPublisher, logger *log.Logger) *ExpenseService {
	return &ExpenseService{
		store:  st,
		events: events,
		logger: logger.WithComponent(log.ComponentStore),
		now:    time.Now,
	}
}

// CreateTransactionInput carries raw manual-entry form values. Value stays a
// string until core.ParseValue accepts it; anything unparseable refuses the
// whole transaction.
type CreateTransactionInput struct {
	CollaboratorID string
	Date           string
	CostCenter     string
	Category       string
	Value          string
	PaymentMethod  string
	Unit           string
}

// CreateTransaction validates the input, snapshots the collaborator, and
// prepends the new pending transaction.
func (s *ExpenseService) CreateTransaction(ctx context.Context, in CreateTransactionInput) (core.Transaction, error) {
	value, err := core.ParseValue(in.Value)
	if err != nil {
		return core.Transaction{}, err
	}
	collab, err := s.store.Collaborator(in.CollaboratorID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("collaborator %s: %w", in.CollaboratorID, err)
	}

	tx := core.Transaction{
		ID:            "EXP-" + strings.ToUpper(uuid.NewString()[:8]),
		Date:          in.Date,
		ImportDate:    s.now().Format(core.DateLayout),
		SourceFile:    manualSourceFile,
		Collaborator:  collab,
		CostCenter:    in.CostCenter,
		Category:      in.Category,
		Value:         value,
		Status:        core.StatusPending,
		PaymentMethod: in.PaymentMethod,
		Unit:          in.Unit,
		SLA:           core.SLA{Text: "Manual", State: core.SLAToday},
	}
	if err := s.store.AddTransaction(tx); err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}

	s.publish(ctx, amqp.NewMutationEvent(amqp.EventCreated, tx.ID))
	return tx, nil
}

func (s *ExpenseService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(id); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewMutationEvent(amqp.EventDeleted, id))
	return nil
}

// Approve moves a pending transaction to approved. The transition is
// one-way; approved and rejected transactions admit no further change.
func (s *ExpenseService) Approve(ctx context.Context, id string) error {
	if err := s.store.SetStatus(id, core.StatusApproved); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewMutationEvent(amqp.EventApproved, id))
	return nil
}

// Reject moves a pending transaction to rejected.
func (s *ExpenseService) Reject(ctx context.Context, id string) error {
	if err := s.store.SetStatus(id, core.StatusRejected); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewMutationEvent(amqp.EventRejected, id))
	return nil
}

// NotifyImported records a completed import batch on the event trail.
func (s *ExpenseService) NotifyImported(ctx context.Context, sourceFile string, rows int) {
	s.publish(ctx, amqp.NewImportEvent(sourceFile, rows))
}

// CreateCollaboratorInput carries the collaborator form values. AvatarRef is
// optional; a placeholder derived from the name is used when absent.
type CreateCollaboratorInput struct {
	Name       string
	Department string
	AvatarRef  string
}

func (s *ExpenseService) CreateCollaborator(_ context.Context, in CreateCollaboratorInput) (core.Collaborator, error) {
	avatar := in.AvatarRef
	if avatar == "" {
		avatar = "https://i.pravatar.cc/150?u=" + strings.ReplaceAll(in.Name, " ", "")
	}
	collab := core.Collaborator{
		ID:         "collab-" + uuid.NewString(),
		Name:       strings.TrimSpace(in.Name),
		AvatarRef:  avatar,
		Department: in.Department,
	}
	if err := s.store.AddCollaborator(collab); err != nil {
		return core.Collaborator{}, fmt.Errorf("add collaborator: %w", err)
	}
	return collab, nil
}

// DeleteCollaborator removes a collaborator from the registry. Transactions
// attributed to them keep their embedded snapshots.
func (s *ExpenseService) DeleteCollaborator(_ context.Context, id string) error {
	return s.store.DeleteCollaborator(id)
}

// UpdateAvatar decodes the uploaded image into a data URI and propagates it
// to the collaborator and every transaction snapshot referencing them. A
// decode failure mutates nothing.
func (s *ExpenseService) UpdateAvatar(ctx context.Context, id string, image []byte) error {
	ref, err := EncodeAvatarRef(image)
	if err != nil {
		s.logger.WarnContext(ctx, "Avatar decode failed",
			log.FieldCollaborator, id, log.FieldError, err)
		return err
	}
	return s.store.UpdateCollaboratorAvatar(id, ref)
}

func (s *ExpenseService) publish(ctx context.Context, event *amqp.MutationEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(ctx, event); err != nil {
		// The mutation already succeeded; a lost event only degrades the
		// audit trail.
		s.logger.ErrorContext(ctx, "Failed to publish mutation event",
			log.FieldEventKind, event.Kind, log.FieldError, err)
	}
}
