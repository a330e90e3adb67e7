package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/award-support/crm-service/internal/domain"
	"github.com/award-support/crm-service/internal/events"
	"github.com/award-support/crm-service/internal/repository"
)

// AuditTrail persists one audit row per ticket change by listening to
// the ticket events. A failed write is logged, never surfaced: the
// trail must not break the operation it describes.
type AuditTrail struct {
	dispatcher events.Dispatcher
	repo       repository.TicketAuditRepository
	logger     *zap.Logger
}

// NewAuditTrail creates the service.
func NewAuditTrail(dispatcher events.Dispatcher, repo repository.TicketAuditRepository, logger *zap.Logger) *AuditTrail {
	return &AuditTrail{dispatcher: dispatcher, repo: repo, logger: logger}
}

// RegisterHandlers subscribes to ticket events.
func (a *AuditTrail) RegisterHandlers() {
	if a.dispatcher == nil || a.repo == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventTicketCreated, a.handleTicketCreated)
	a.dispatcher.Subscribe(events.EventTicketUpdated, a.handleTicketUpdated)
}

func (a *AuditTrail) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	status := string(domain.TicketStatusNew)
	a.record(ctx, &domain.TicketAuditEntry{
		TicketID: payload.TicketID,
		Field:    "status",
		Value:    &status,
	})
	return nil
}

func (a *AuditTrail) handleTicketUpdated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketUpdatedPayload)
	if !ok {
		return nil
	}
	if payload.Status != nil {
		value := string(*payload.Status)
		a.record(ctx, &domain.TicketAuditEntry{TicketID: payload.TicketID, Field: "status", Value: &value})
	}
	if payload.Priority != nil {
		value := string(*payload.Priority)
		a.record(ctx, &domain.TicketAuditEntry{TicketID: payload.TicketID, Field: "priority", Value: &value})
	}
	if payload.AssignedToSet {
		entry := &domain.TicketAuditEntry{TicketID: payload.TicketID, Field: "assigned_to"}
		if payload.AssignedTo != nil {
			value := strconv.FormatInt(*payload.AssignedTo, 10)
			entry.Value = &value
		}
		a.record(ctx, entry)
	}
	return nil
}

func (a *AuditTrail) record(ctx context.Context, entry *domain.TicketAuditEntry) {
	if err := a.repo.Record(ctx, entry); err != nil {
		a.logger.Warn("audit entry write failed",
			zap.Int64("ticket_id", entry.TicketID),
			zap.String("field", entry.Field),
			zap.Error(err))
	}
}
