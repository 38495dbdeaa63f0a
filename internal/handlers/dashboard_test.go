package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/dimitrije/tandem-api/internal/logger"
	"github.com/dimitrije/tandem-api/internal/models"
	"github.com/dimitrije/tandem-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDashboardHandler_Get(t *testing.T) {
	dashboards := new(testutil.MockDashboardService)
	teams := new(testutil.MockTeamService)
	userID := uuid.New()
	teamID := uuid.New()
	expectRole(teams, teamID, userID, models.RoleViewer)

	summary := &models.Dashboard{
		TeamID:       teamID,
		StatusCounts: map[string]int{models.TicketStatusOpen: 2, models.TicketStatusClosed: 1},
		BacklogSize:  4,
	}
	dashboards.On("Summary", mock.Anything, teamID, userID).Return(summary, nil)

	app := drift.New()
	app.Use(authMiddleware())
	app.Get("/dashboard/:teamId", NewDashboardHandler(dashboards, teams, logger.NewNop()).Get)
	client := testutil.NewHTTPTestClient(t, app)

	rec := client.GET("/dashboard/"+teamID.String(), authed(t, userID))

	testutil.AssertStatus(t, rec, http.StatusOK)
	var resp models.Dashboard
	testutil.ParseJSON(t, rec, &resp)
	assert.Equal(t, 4, resp.BacklogSize)
	assert.Equal(t, 2, resp.StatusCounts[models.TicketStatusOpen])
}

func TestDashboardHandler_Get_InternalErrorIsLogged(t *testing.T) {
	dashboards := new(testutil.MockDashboardService)
	teams := new(testutil.MockTeamService)
	userID := uuid.New()
	teamID := uuid.New()
	expectRole(teams, teamID, userID, models.RoleViewer)
	dashboards.On("Summary", mock.Anything, teamID, userID).Return(nil, errors.New("canceling statement"))

	core, logs := observer.New(zap.ErrorLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	app := drift.New()
	app.Use(authMiddleware())
	app.Get("/dashboard/:teamId", NewDashboardHandler(dashboards, teams, log).Get)
	client := testutil.NewHTTPTestClient(t, app)

	rec := client.GET("/dashboard/"+teamID.String(), authed(t, userID))

	testutil.AssertStatus(t, rec, http.StatusInternalServerError)
	assert.Contains(t, rec.Body.String(), "failed to load dashboard")
	assert.NotContains(t, rec.Body.String(), "canceling statement")
	if assert.Equal(t, 1, logs.Len()) {
		assert.Equal(t, "failed to load dashboard", logs.All()[0].Message)
	}
}
