package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/award-support/crm-service/internal/domain"
	"github.com/award-support/crm-service/internal/events"
	"github.com/award-support/crm-service/internal/repository"
	apperrors "github.com/award-support/crm-service/pkg/errorutil"
)

func newTicketFixture() (*TicketService, *fakeTicketRepo, *fakeUserRepo, *recordingDispatcher) {
	users := newFakeUserRepo()
	tickets := newFakeTicketRepo(users)
	dispatcher := &recordingDispatcher{}
	svc := NewTicketService(TicketDependencies{
		TicketRepo: tickets,
		UserRepo:   users,
		Dispatcher: dispatcher,
	})
	return svc, tickets, users, dispatcher
}

func validCreateInput() CreateTicketInput {
	return CreateTicketInput{
		FirstName:   "Amina",
		LastName:    "Odhiambo",
		Email:       "amina@example.com",
		Subject:     "Cannot log hours",
		Description: "The activity log rejects my entries since Monday.",
		Type:        domain.TicketTypeTechnicalSupport,
		Department:  domain.DepartmentICT,
	}
}

func TestCreateTicketForcesNewStatusAndDefaultPriority(t *testing.T) {
	svc, _, _, _ := newTicketFixture()

	ticket, err := svc.CreateTicket(context.Background(), validCreateInput())
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, "#000001", ticket.Key())
	require.NotNil(t, ticket.RequesterID)
}

func TestCreateTicketKeepsSuppliedPriority(t *testing.T) {
	svc, _, _, _ := newTicketFixture()

	input := validCreateInput()
	input.Priority = domain.TicketPriorityUrgent
	ticket, err := svc.CreateTicket(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityUrgent, ticket.Priority)
	// Submitted priority never overrides the forced initial status.
	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
}

func TestCreateTicketMissingFields(t *testing.T) {
	svc, tickets, _, dispatcher := newTicketFixture()

	input := validCreateInput()
	input.Subject = "   "
	input.Email = ""
	_, err := svc.CreateTicket(context.Background(), input)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 400, domainErr.HTTPStatus)
	assert.ElementsMatch(t, []string{"email", "subject"}, domainErr.Details["missing"])

	// Nothing persisted, nothing published.
	assert.Empty(t, tickets.tickets)
	assert.Empty(t, dispatcher.published())
}

func TestCreateTicketRejectsUnknownEnums(t *testing.T) {
	svc, tickets, _, _ := newTicketFixture()

	input := validCreateInput()
	input.Type = "Hardware Return"
	_, err := svc.CreateTicket(context.Background(), input)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 400, domainErr.HTTPStatus)

	input = validCreateInput()
	input.Department = "Legal"
	_, err = svc.CreateTicket(context.Background(), input)
	require.ErrorAs(t, err, &domainErr)

	input = validCreateInput()
	input.Priority = "critical"
	_, err = svc.CreateTicket(context.Background(), input)
	require.ErrorAs(t, err, &domainErr)

	assert.Empty(t, tickets.tickets)
}

func TestCreateTicketCreatesPlaceholderRequester(t *testing.T) {
	svc, _, users, dispatcher := newTicketFixture()

	input := validCreateInput()
	input.Email = "New.Requester@Example.COM"
	ticket, err := svc.CreateTicket(context.Background(), input)
	require.NoError(t, err)

	// Email is normalized before lookup and storage.
	user, err := users.GetByEmail(context.Background(), "new.requester@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, *ticket.RequesterID)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.False(t, user.CanLogin())

	published := dispatcher.published()
	require.Len(t, published, 2)
	assert.Equal(t, events.EventUserCreated, published[0].Type)
	assert.Equal(t, events.EventTicketCreated, published[1].Type)
	payload, ok := published[0].Payload.(events.UserCreatedPayload)
	require.True(t, ok)
	assert.True(t, payload.Implicit)
}

func TestCreateTicketReusesExistingRequester(t *testing.T) {
	svc, _, users, dispatcher := newTicketFixture()

	existing := &domain.User{FirstName: "Amina", LastName: "Odhiambo", Email: "amina@example.com", PasswordHash: "$2a$10$hash", Role: domain.RoleUser}
	require.NoError(t, users.Create(context.Background(), existing))

	ticket, err := svc.CreateTicket(context.Background(), validCreateInput())
	require.NoError(t, err)
	assert.Equal(t, existing.ID, *ticket.RequesterID)

	// Repeat submissions reuse the same account rather than minting
	// duplicates.
	second, err := svc.CreateTicket(context.Background(), validCreateInput())
	require.NoError(t, err)
	assert.Equal(t, existing.ID, *second.RequesterID)

	for _, event := range dispatcher.published() {
		assert.NotEqual(t, events.EventUserCreated, event.Type)
	}
}

func TestGetTicketNotFound(t *testing.T) {
	svc, _, _, _ := newTicketFixture()

	_, err := svc.GetTicket(context.Background(), 999)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 404, domainErr.HTTPStatus)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestListTicketsAppliesDefaultsAndFilters(t *testing.T) {
	svc, _, _, _ := newTicketFixture()

	for i := 0; i < 3; i++ {
		input := validCreateInput()
		if i == 2 {
			input.Department = domain.DepartmentFinance
			input.Subject = "Invoice mismatch"
		}
		_, err := svc.CreateTicket(context.Background(), input)
		require.NoError(t, err)
	}

	rows, total, err := svc.ListTickets(context.Background(), repository.TicketQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, rows, 3)

	dept := domain.DepartmentFinance
	rows, total, err = svc.ListTickets(context.Background(), repository.TicketQuery{Department: &dept})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Invoice mismatch", rows[0].Subject)
}

func TestListTicketsPaginationTotalIgnoresPage(t *testing.T) {
	svc, _, _, _ := newTicketFixture()

	for i := 0; i < 5; i++ {
		_, err := svc.CreateTicket(context.Background(), validCreateInput())
		require.NoError(t, err)
	}

	rows, total, err := svc.ListTickets(context.Background(), repository.TicketQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, rows, 2)

	// Past the last page comes back empty with the same total.
	rows, total, err = svc.ListTickets(context.Background(), repository.TicketQuery{Page: 9, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Empty(t, rows)
}

func TestListTicketsRejectsBadPagination(t *testing.T) {
	svc, _, _, _ := newTicketFixture()

	_, _, err := svc.ListTickets(context.Background(), repository.TicketQuery{Page: -1})
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 400, domainErr.HTTPStatus)

	_, _, err = svc.ListTickets(context.Background(), repository.TicketQuery{Limit: repository.MaxPageSize + 1})
	require.ErrorAs(t, err, &domainErr)
}

func TestUpdateTicketPartialFieldsOnly(t *testing.T) {
	svc, tickets, _, _ := newTicketFixture()

	input := validCreateInput()
	input.Priority = domain.TicketPriorityHigh
	ticket, err := svc.CreateTicket(context.Background(), input)
	require.NoError(t, err)

	status := domain.TicketStatusInProgress
	err = svc.UpdateTicket(context.Background(), ticket.ID, UpdateTicketInput{Status: &status})
	require.NoError(t, err)

	stored := tickets.tickets[ticket.ID]
	assert.Equal(t, domain.TicketStatusInProgress, stored.Status)
	// Untouched fields keep their values.
	assert.Equal(t, domain.TicketPriorityHigh, stored.Priority)
	assert.Nil(t, stored.AssigneeID)
}

func TestUpdateTicketAssignAndUnassign(t *testing.T) {
	svc, tickets, users, _ := newTicketFixture()

	staff := &domain.User{FirstName: "Brian", LastName: "Mutua", Email: "brian@example.com", Role: domain.RoleStaff}
	require.NoError(t, users.Create(context.Background(), staff))

	ticket, err := svc.CreateTicket(context.Background(), validCreateInput())
	require.NoError(t, err)

	err = svc.UpdateTicket(context.Background(), ticket.ID, UpdateTicketInput{AssignedTo: &staff.ID, AssignedToSet: true})
	require.NoError(t, err)
	require.NotNil(t, tickets.tickets[ticket.ID].AssigneeID)
	assert.Equal(t, staff.ID, *tickets.tickets[ticket.ID].AssigneeID)

	err = svc.UpdateTicket(context.Background(), ticket.ID, UpdateTicketInput{AssignedTo: nil, AssignedToSet: true})
	require.NoError(t, err)
	assert.Nil(t, tickets.tickets[ticket.ID].AssigneeID)
}

func TestUpdateTicketUnknownAssignee(t *testing.T) {
	svc, _, _, _ := newTicketFixture()

	ticket, err := svc.CreateTicket(context.Background(), validCreateInput())
	require.NoError(t, err)

	missing := int64(404)
	err = svc.UpdateTicket(context.Background(), ticket.ID, UpdateTicketInput{AssignedTo: &missing, AssignedToSet: true})
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 404, domainErr.HTTPStatus)
}

func TestUpdateTicketEmptyPatch(t *testing.T) {
	svc, _, _, _ := newTicketFixture()

	ticket, err := svc.CreateTicket(context.Background(), validCreateInput())
	require.NoError(t, err)

	err = svc.UpdateTicket(context.Background(), ticket.ID, UpdateTicketInput{})
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 400, domainErr.HTTPStatus)
}

func TestUpdateTicketAnyTransitionAllowed(t *testing.T) {
	svc, tickets, _, _ := newTicketFixture()

	ticket, err := svc.CreateTicket(context.Background(), validCreateInput())
	require.NoError(t, err)

	// closed back to open is legal; there is no transition graph.
	for _, status := range []domain.TicketStatus{domain.TicketStatusClosed, domain.TicketStatusOpen} {
		s := status
		require.NoError(t, svc.UpdateTicket(context.Background(), ticket.ID, UpdateTicketInput{Status: &s}))
	}
	assert.Equal(t, domain.TicketStatusOpen, tickets.tickets[ticket.ID].Status)
}

func TestUpdateTicketUnknownID(t *testing.T) {
	svc, _, _, _ := newTicketFixture()

	status := domain.TicketStatusClosed
	err := svc.UpdateTicket(context.Background(), 12345, UpdateTicketInput{Status: &status})
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 404, domainErr.HTTPStatus)
}

func TestAuditTrailRecordsChanges(t *testing.T) {
	users := newFakeUserRepo()
	tickets := newFakeTicketRepo(users)
	audit := &fakeAuditRepo{}
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditTrail(dispatcher, audit, zap.NewNop()).RegisterHandlers()

	svc := NewTicketService(TicketDependencies{
		TicketRepo: tickets,
		UserRepo:   users,
		AuditRepo:  audit,
		Dispatcher: dispatcher,
	})

	staff := &domain.User{FirstName: "Brian", LastName: "Mutua", Email: "brian@example.com", Role: domain.RoleStaff}
	require.NoError(t, users.Create(context.Background(), staff))

	ticket, err := svc.CreateTicket(context.Background(), validCreateInput())
	require.NoError(t, err)

	status := domain.TicketStatusOpen
	require.NoError(t, svc.UpdateTicket(context.Background(), ticket.ID, UpdateTicketInput{
		Status:        &status,
		AssignedTo:    &staff.ID,
		AssignedToSet: true,
	}))
	require.NoError(t, svc.UpdateTicket(context.Background(), ticket.ID, UpdateTicketInput{
		AssignedTo:    nil,
		AssignedToSet: true,
	}))

	entries, err := svc.History(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, "status", entries[0].Field)
	require.NotNil(t, entries[0].Value)
	assert.Equal(t, "new", *entries[0].Value)

	assert.Equal(t, "status", entries[1].Field)
	assert.Equal(t, "open", *entries[1].Value)

	assert.Equal(t, "assigned_to", entries[2].Field)
	require.NotNil(t, entries[2].Value)

	// Unassignment is recorded with a nil value.
	assert.Equal(t, "assigned_to", entries[3].Field)
	assert.Nil(t, entries[3].Value)
}

func TestHistoryUnknownTicket(t *testing.T) {
	svc, _, _, _ := newTicketFixture()

	_, err := svc.History(context.Background(), 42)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 404, domainErr.HTTPStatus)
}

func TestStatsBuckets(t *testing.T) {
	svc, tickets, _, _ := newTicketFixture()

	statuses := []domain.TicketStatus{
		domain.TicketStatusNew,
		domain.TicketStatusNew,
		domain.TicketStatusOpen,
		domain.TicketStatusInProgress,
		domain.TicketStatusResolved,
		domain.TicketStatusClosed,
	}
	for _, status := range statuses {
		ticket, err := svc.CreateTicket(context.Background(), validCreateInput())
		require.NoError(t, err)
		tickets.tickets[ticket.ID].Status = status
	}

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 6, stats.Total)
	assert.EqualValues(t, 2, stats.Pending)
	assert.EqualValues(t, 2, stats.Open)
	assert.EqualValues(t, 2, stats.Closed)
	assert.Equal(t, stats.Total, stats.Pending+stats.Open+stats.Closed)
}
