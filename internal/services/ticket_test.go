package services

import (
	"context"
	"testing"
	"time"

	"github.com/dimitrije/tandem-api/internal/database"
	"github.com/dimitrije/tandem-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTicketService(t *testing.T) (*TicketService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewTicketService(&database.DB{Pool: mock}), mock
}

func ticketRow(id, teamID uuid.UUID, sprintID *uuid.UUID, title, status string, reporter uuid.UUID) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(ticketRowColumns).
		AddRow(id, teamID, sprintID, title, "", status, models.TicketPriorityNone, (*uuid.UUID)(nil), reporter, now, now)
}

func TestTicketService_Create_Defaults(t *testing.T) {
	svc, mock := setupTicketService(t)
	teamID := uuid.New()
	reporter := uuid.New()
	ticketID := uuid.New()

	mock.ExpectQuery(`INSERT INTO tickets`).
		WithArgs(teamID, (*uuid.UUID)(nil), "Fix login", "", models.TicketStatusOpen, models.TicketPriorityNone, (*uuid.UUID)(nil), reporter).
		WillReturnRows(ticketRow(ticketID, teamID, nil, "Fix login", models.TicketStatusOpen, reporter))

	ticket, err := svc.Create(context.Background(), teamID, reporter, TicketInput{Title: "Fix login"})

	require.NoError(t, err)
	assert.Equal(t, ticketID, ticket.ID)
	assert.True(t, ticket.InBacklog())
	assert.Equal(t, reporter, ticket.ReporterID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketService_Create_InvalidStatus(t *testing.T) {
	svc, mock := setupTicketService(t)

	_, err := svc.Create(context.Background(), uuid.New(), uuid.New(), TicketInput{Title: "x", Status: "DONE"})

	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketService_Create_SprintOfOtherTeam(t *testing.T) {
	svc, mock := setupTicketService(t)
	teamID := uuid.New()
	sprintID := uuid.New()

	mock.ExpectQuery(`SELECT team_id, completed FROM sprints`).
		WithArgs(sprintID).
		WillReturnRows(pgxmock.NewRows([]string{"team_id", "completed"}).AddRow(uuid.New(), false))

	_, err := svc.Create(context.Background(), teamID, uuid.New(), TicketInput{Title: "x", SprintID: &sprintID})

	assert.ErrorIs(t, err, ErrSprintOtherTeam)
	assert.ErrorIs(t, err, ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketService_Create_AssigneeNotMember(t *testing.T) {
	svc, mock := setupTicketService(t)
	teamID := uuid.New()
	assignee := uuid.New()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM user_to_team`).
		WithArgs(teamID, assignee).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := svc.Create(context.Background(), teamID, uuid.New(), TicketInput{Title: "x", AssigneeID: &assignee})

	assert.ErrorIs(t, err, ErrAssigneeNotMember)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketService_Move_ToSprint(t *testing.T) {
	svc, mock := setupTicketService(t)
	teamID := uuid.New()
	ticketID := uuid.New()
	sprintID := uuid.New()
	reporter := uuid.New()

	mock.ExpectQuery(`SELECT team_id, completed FROM sprints`).
		WithArgs(sprintID).
		WillReturnRows(pgxmock.NewRows([]string{"team_id", "completed"}).AddRow(teamID, false))
	mock.ExpectQuery(`UPDATE tickets SET sprint_id`).
		WithArgs(&sprintID, ticketID, teamID).
		WillReturnRows(ticketRow(ticketID, teamID, &sprintID, "A", models.TicketStatusOpen, reporter))

	ticket, err := svc.Move(context.Background(), teamID, ticketID, &sprintID)

	require.NoError(t, err)
	assert.Equal(t, &sprintID, ticket.SprintID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketService_Move_ToBacklog(t *testing.T) {
	svc, mock := setupTicketService(t)
	teamID := uuid.New()
	ticketID := uuid.New()
	reporter := uuid.New()

	mock.ExpectQuery(`UPDATE tickets SET sprint_id`).
		WithArgs((*uuid.UUID)(nil), ticketID, teamID).
		WillReturnRows(ticketRow(ticketID, teamID, nil, "A", models.TicketStatusOpen, reporter))

	ticket, err := svc.Move(context.Background(), teamID, ticketID, nil)

	require.NoError(t, err)
	assert.True(t, ticket.InBacklog())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketService_Move_OtherTeamSprint(t *testing.T) {
	svc, mock := setupTicketService(t)
	teamID := uuid.New()
	sprintID := uuid.New()

	mock.ExpectQuery(`SELECT team_id, completed FROM sprints`).
		WithArgs(sprintID).
		WillReturnRows(pgxmock.NewRows([]string{"team_id", "completed"}).AddRow(uuid.New(), false))

	_, err := svc.Move(context.Background(), teamID, uuid.New(), &sprintID)

	assert.ErrorIs(t, err, ErrSprintOtherTeam)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketService_Move_CompletedSprint(t *testing.T) {
	svc, mock := setupTicketService(t)
	teamID := uuid.New()
	sprintID := uuid.New()

	mock.ExpectQuery(`SELECT team_id, completed FROM sprints`).
		WithArgs(sprintID).
		WillReturnRows(pgxmock.NewRows([]string{"team_id", "completed"}).AddRow(teamID, true))

	_, err := svc.Move(context.Background(), teamID, uuid.New(), &sprintID)

	assert.ErrorIs(t, err, ErrSprintCompleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketService_Move_TicketNotFound(t *testing.T) {
	svc, mock := setupTicketService(t)
	teamID := uuid.New()
	ticketID := uuid.New()

	mock.ExpectQuery(`UPDATE tickets SET sprint_id`).
		WithArgs((*uuid.UUID)(nil), ticketID, teamID).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.Move(context.Background(), teamID, ticketID, nil)

	assert.ErrorIs(t, err, ErrTicketNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketService_SetStatus(t *testing.T) {
	svc, mock := setupTicketService(t)
	teamID := uuid.New()
	ticketID := uuid.New()

	mock.ExpectQuery(`UPDATE tickets SET status`).
		WithArgs(models.TicketStatusBlocked, ticketID, teamID).
		WillReturnRows(ticketRow(ticketID, teamID, nil, "A", models.TicketStatusBlocked, uuid.New()))

	ticket, err := svc.SetStatus(context.Background(), teamID, ticketID, models.TicketStatusBlocked)

	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusBlocked, ticket.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketService_SetStatus_Invalid(t *testing.T) {
	svc, mock := setupTicketService(t)

	_, err := svc.SetStatus(context.Background(), uuid.New(), uuid.New(), "in progress")

	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketService_Update(t *testing.T) {
	svc, mock := setupTicketService(t)
	teamID := uuid.New()
	ticketID := uuid.New()
	reporter := uuid.New()
	title := "Renamed"
	priority := models.TicketPriorityHigh

	mock.ExpectQuery(`SELECT .+ FROM tickets WHERE id = \$1 AND team_id = \$2`).
		WithArgs(ticketID, teamID).
		WillReturnRows(ticketRow(ticketID, teamID, nil, "Old", models.TicketStatusOpen, reporter))
	mock.ExpectQuery(`UPDATE tickets SET title`).
		WithArgs(title, "", models.TicketStatusOpen, priority, (*uuid.UUID)(nil), ticketID, teamID).
		WillReturnRows(ticketRow(ticketID, teamID, nil, title, models.TicketStatusOpen, reporter))

	ticket, err := svc.Update(context.Background(), teamID, ticketID, TicketUpdate{Title: &title, Priority: &priority})

	require.NoError(t, err)
	assert.Equal(t, title, ticket.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketService_Update_NoFields(t *testing.T) {
	svc, mock := setupTicketService(t)

	_, err := svc.Update(context.Background(), uuid.New(), uuid.New(), TicketUpdate{})

	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketService_List_Backlog(t *testing.T) {
	svc, mock := setupTicketService(t)
	teamID := uuid.New()

	mock.ExpectQuery(`FROM tickets WHERE team_id = \$1 AND sprint_id IS NULL AND status = \$2 ORDER BY created_at`).
		WithArgs(teamID, models.TicketStatusOpen).
		WillReturnRows(ticketRow(uuid.New(), teamID, nil, "A", models.TicketStatusOpen, uuid.New()))

	tickets, err := svc.List(context.Background(), teamID, TicketFilter{Backlog: true, Status: models.TicketStatusOpen})

	require.NoError(t, err)
	assert.Len(t, tickets, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketService_List_BySprint(t *testing.T) {
	svc, mock := setupTicketService(t)
	teamID := uuid.New()
	sprintID := uuid.New()

	mock.ExpectQuery(`FROM tickets WHERE team_id = \$1 AND sprint_id = \$2 ORDER BY created_at`).
		WithArgs(teamID, sprintID).
		WillReturnRows(pgxmock.NewRows(ticketRowColumns))

	tickets, err := svc.List(context.Background(), teamID, TicketFilter{SprintID: &sprintID})

	require.NoError(t, err)
	assert.Empty(t, tickets)
	assert.NotNil(t, tickets)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketService_Delete_NotFound(t *testing.T) {
	svc, mock := setupTicketService(t)
	teamID := uuid.New()
	ticketID := uuid.New()

	mock.ExpectExec(`DELETE FROM tickets`).
		WithArgs(ticketID, teamID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := svc.Delete(context.Background(), teamID, ticketID)

	assert.ErrorIs(t, err, ErrTicketNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
