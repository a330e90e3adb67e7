package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/award-support/crm-service/internal/domain"
	apperrors "github.com/award-support/crm-service/pkg/errorutil"
)

func statusPtr(s domain.TicketStatus) *domain.TicketStatus       { return &s }
func priorityPtr(p domain.TicketPriority) *domain.TicketPriority { return &p }
func deptPtr(d domain.TicketDepartment) *domain.TicketDepartment { return &d }
func strPtr(s string) *string                                    { return &s }

func TestWhereClauseNoFilters(t *testing.T) {
	where, args := TicketQuery{}.whereClause()
	assert.Equal(t, "1=1", where)
	assert.Empty(t, args)
}

func TestWhereClauseSingleFilter(t *testing.T) {
	query := TicketQuery{Status: statusPtr(domain.TicketStatusOpen)}
	where, args := query.whereClause()
	assert.Equal(t, "1=1 AND t.status=$1", where)
	require.Len(t, args, 1)
	assert.Equal(t, domain.TicketStatusOpen, args[0])
}

func TestWhereClauseAllFiltersCombined(t *testing.T) {
	query := TicketQuery{
		Status:     statusPtr(domain.TicketStatusInProgress),
		Priority:   priorityPtr(domain.TicketPriorityUrgent),
		Department: deptPtr(domain.DepartmentICT),
		Search:     strPtr("Login"),
	}
	where, args := query.whereClause()
	assert.Equal(t,
		"1=1 AND t.status=$1 AND t.priority=$2 AND t.department=$3 AND (LOWER(t.subject) LIKE $4 OR LOWER(t.description) LIKE $4)",
		where)
	require.Len(t, args, 4)
	assert.Equal(t, domain.TicketPriorityUrgent, args[1])
	// Search terms are lowercased and wrapped for substring matching.
	assert.Equal(t, "%login%", args[3])
}

func TestWhereClauseBlankSearchIgnored(t *testing.T) {
	query := TicketQuery{Search: strPtr("   ")}
	where, args := query.whereClause()
	assert.Equal(t, "1=1", where)
	assert.Empty(t, args)
}

func TestWhereClauseSearchNeverInlined(t *testing.T) {
	// Hostile input stays in the argument list; the query text only
	// ever contains placeholders.
	query := TicketQuery{Search: strPtr("'; DROP TABLE tickets; --")}
	where, args := query.whereClause()
	assert.NotContains(t, where, "DROP TABLE")
	require.Len(t, args, 1)
	assert.Contains(t, args[0], "drop table tickets")
}

func TestNormalizeDefaults(t *testing.T) {
	query := TicketQuery{}
	query.Normalize()
	assert.Equal(t, 1, query.Page)
	assert.Equal(t, DefaultPageSize, query.Limit)

	// Explicit values survive normalization.
	query = TicketQuery{Page: 3, Limit: 50}
	query.Normalize()
	assert.Equal(t, 3, query.Page)
	assert.Equal(t, 50, query.Limit)
}

func TestValidateBounds(t *testing.T) {
	assert.NoError(t, TicketQuery{Page: 1, Limit: 1}.Validate())
	assert.NoError(t, TicketQuery{Page: 1, Limit: MaxPageSize}.Validate())

	for _, query := range []TicketQuery{
		{Page: 0, Limit: 20},
		{Page: -1, Limit: 20},
		{Page: 1, Limit: 0},
		{Page: 1, Limit: MaxPageSize + 1},
	} {
		err := query.Validate()
		require.Error(t, err)
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, 400, domainErr.HTTPStatus)
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, TicketQuery{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 20, TicketQuery{Page: 2, Limit: 20}.Offset())
	assert.Equal(t, 90, TicketQuery{Page: 10, Limit: 10}.Offset())
}

func TestTicketPatchEmpty(t *testing.T) {
	assert.True(t, TicketPatch{}.Empty())
	assert.False(t, TicketPatch{Status: statusPtr(domain.TicketStatusClosed)}.Empty())
	// Explicitly clearing the assignee counts as a change even though
	// the pointer is nil.
	assert.False(t, TicketPatch{AssignedToSet: true}.Empty())
}
