package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/dimitrije/tandem-api/internal/logger"
	"github.com/dimitrije/tandem-api/internal/models"
	"github.com/dimitrije/tandem-api/internal/services"
	"github.com/dimitrije/tandem-api/internal/sse"
	"github.com/dimitrije/tandem-api/pkg/dto"
	"github.com/dimitrije/tandem-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupTeamTest(t *testing.T) (*testutil.MockTeamService, *testutil.RecordingHub, *testutil.HTTPTestClient) {
	t.Helper()
	teams := new(testutil.MockTeamService)
	hub := &testutil.RecordingHub{}
	handler := NewTeamHandler(teams, hub, logger.NewNop())

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(authMiddleware())
	app.Post("/team", handler.Create)
	app.Get("/team", handler.List)
	app.Get("/team/:teamId", handler.Get)
	app.Put("/team/:teamId", handler.Update)
	app.Delete("/team/:teamId", handler.Delete)
	app.Get("/team/:teamId/members", handler.GetMembers)
	app.Delete("/team/:teamId/members/:userId", handler.RemoveMember)
	app.Post("/team/:teamId/leave", handler.Leave)

	return teams, hub, testutil.NewHTTPTestClient(t, app)
}

func TestTeamHandler_Create_Success(t *testing.T) {
	teams, _, client := setupTeamTest(t)

	userID := uuid.New()
	orgID := uuid.New()
	team := &models.Team{ID: uuid.New(), OrganizationID: orgID, Name: "Platform"}
	input := services.TeamInput{Name: "Platform", Icon: "rocket"}

	teams.On("Create", mock.Anything, orgID, userID, input).Return(team, nil)

	rec := client.POST("/team", dto.CreateTeamRequest{OrganizationID: orgID, Name: "Platform", Icon: "rocket"}, authed(t, userID))

	testutil.AssertStatus(t, rec, http.StatusCreated)
	var resp dto.TeamResponse
	testutil.ParseJSON(t, rec, &resp)
	assert.Equal(t, team.ID, resp.ID)
	assert.Equal(t, "admin", resp.RoleName)
	teams.AssertExpectations(t)
}

func TestTeamHandler_Create_MissingOrganization(t *testing.T) {
	teams, _, client := setupTeamTest(t)

	rec := client.POST("/team", dto.CreateTeamRequest{Name: "Platform"}, authed(t, uuid.New()))

	testutil.AssertStatus(t, rec, http.StatusBadRequest)
	assert.Contains(t, rec.Body.String(), "organization_id is required")
	teams.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTeamHandler_Create_NotOrganizationOwner(t *testing.T) {
	teams, _, client := setupTeamTest(t)

	userID := uuid.New()
	orgID := uuid.New()
	teams.On("Create", mock.Anything, orgID, userID, mock.Anything).Return(nil, services.ErrNotOrganizationOwner)

	rec := client.POST("/team", dto.CreateTeamRequest{OrganizationID: orgID, Name: "Platform"}, authed(t, userID))

	testutil.AssertStatus(t, rec, http.StatusForbidden)
}

func TestTeamHandler_Unauthenticated(t *testing.T) {
	_, _, client := setupTeamTest(t)

	rec := client.GET("/team", nil)

	testutil.AssertStatus(t, rec, http.StatusUnauthorized)
}

func TestTeamHandler_List_Success(t *testing.T) {
	teams, _, client := setupTeamTest(t)

	userID := uuid.New()
	list := []models.Team{{ID: uuid.New(), Name: "A"}, {ID: uuid.New(), Name: "B"}}
	teams.On("GetUserTeams", mock.Anything, userID).Return(list, []int{models.RoleAdmin, models.RoleViewer}, nil)

	rec := client.GET("/team", authed(t, userID))

	testutil.AssertStatus(t, rec, http.StatusOK)
	var resp []dto.TeamResponse
	testutil.ParseJSON(t, rec, &resp)
	if assert.Len(t, resp, 2) {
		assert.Equal(t, "admin", resp[0].RoleName)
		assert.Equal(t, "viewer", resp[1].RoleName)
	}
}

func TestTeamHandler_Get_NonMemberIsNotFound(t *testing.T) {
	teams, _, client := setupTeamTest(t)

	userID := uuid.New()
	teamID := uuid.New()
	teams.On("GetRole", mock.Anything, teamID, userID).Return(0, services.ErrNotTeamMember)

	rec := client.GET("/team/"+teamID.String(), authed(t, userID))

	testutil.AssertStatus(t, rec, http.StatusNotFound)
	assert.Contains(t, rec.Body.String(), "team not found")
}

func TestTeamHandler_Get_InvalidID(t *testing.T) {
	_, _, client := setupTeamTest(t)

	rec := client.GET("/team/not-a-uuid", authed(t, uuid.New()))

	testutil.AssertStatus(t, rec, http.StatusBadRequest)
}

func TestTeamHandler_Get_RoleLookupFailure(t *testing.T) {
	teams, _, client := setupTeamTest(t)

	userID := uuid.New()
	teamID := uuid.New()
	teams.On("GetRole", mock.Anything, teamID, userID).Return(0, errors.New("connection reset"))

	rec := client.GET("/team/"+teamID.String(), authed(t, userID))

	testutil.AssertStatus(t, rec, http.StatusInternalServerError)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestTeamHandler_Update_RequiresManager(t *testing.T) {
	teams, _, client := setupTeamTest(t)

	userID := uuid.New()
	teamID := uuid.New()
	expectRole(teams, teamID, userID, models.RoleMember)

	rec := client.PUT("/team/"+teamID.String(), dto.UpdateTeamRequest{Name: "Renamed"}, authed(t, userID))

	testutil.AssertStatus(t, rec, http.StatusForbidden)
	assert.Contains(t, rec.Body.String(), services.ErrInsufficientRole.Error())
	teams.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestTeamHandler_Update_Success(t *testing.T) {
	teams, _, client := setupTeamTest(t)

	userID := uuid.New()
	teamID := uuid.New()
	expectRole(teams, teamID, userID, models.RoleManager)
	teams.On("Update", mock.Anything, teamID, services.TeamInput{Name: "Renamed"}).
		Return(&models.Team{ID: teamID, Name: "Renamed"}, nil)

	rec := client.PUT("/team/"+teamID.String(), dto.UpdateTeamRequest{Name: "Renamed"}, authed(t, userID))

	testutil.AssertStatus(t, rec, http.StatusOK)
	testutil.AssertJSON(t, rec, map[string]interface{}{"name": "Renamed", "role_name": "manager"})
}

func TestTeamHandler_Delete_RequiresAdmin(t *testing.T) {
	teams, _, client := setupTeamTest(t)

	userID := uuid.New()
	teamID := uuid.New()
	expectRole(teams, teamID, userID, models.RoleManager)

	rec := client.DELETE("/team/"+teamID.String(), authed(t, userID))

	testutil.AssertStatus(t, rec, http.StatusForbidden)
}

func TestTeamHandler_Delete_Success(t *testing.T) {
	teams, _, client := setupTeamTest(t)

	userID := uuid.New()
	teamID := uuid.New()
	expectRole(teams, teamID, userID, models.RoleAdmin)
	teams.On("Delete", mock.Anything, teamID).Return(nil)

	rec := client.DELETE("/team/"+teamID.String(), authed(t, userID))

	testutil.AssertStatus(t, rec, http.StatusOK)
	assert.Contains(t, rec.Body.String(), "team deleted")
}

func TestTeamHandler_GetMembers_Success(t *testing.T) {
	teams, _, client := setupTeamTest(t)

	userID := uuid.New()
	teamID := uuid.New()
	expectRole(teams, teamID, userID, models.RoleViewer)
	teams.On("GetMembers", mock.Anything, teamID).Return([]models.UserToTeam{
		{UserID: userID, TeamID: teamID, Role: models.RoleViewer, User: &models.User{ID: userID, Name: "Ann", Email: testEmail}},
	}, nil)

	rec := client.GET("/team/"+teamID.String()+"/members", authed(t, userID))

	testutil.AssertStatus(t, rec, http.StatusOK)
	var resp []dto.TeamMemberResponse
	testutil.ParseJSON(t, rec, &resp)
	assert.Len(t, resp, 1)
}

func TestTeamHandler_RemoveMember_PublishesEvent(t *testing.T) {
	teams, hub, client := setupTeamTest(t)

	adminID := uuid.New()
	memberID := uuid.New()
	teamID := uuid.New()
	expectRole(teams, teamID, adminID, models.RoleAdmin)
	teams.On("RemoveMember", mock.Anything, teamID, memberID).Return(nil)

	rec := client.DELETE("/team/"+teamID.String()+"/members/"+memberID.String(), authed(t, adminID))

	testutil.AssertStatus(t, rec, http.StatusOK)
	assert.Equal(t, []string{sse.EventMemberLeft}, hub.Types())
}

func TestTeamHandler_Leave_LastAdmin(t *testing.T) {
	teams, hub, client := setupTeamTest(t)

	userID := uuid.New()
	teamID := uuid.New()
	expectRole(teams, teamID, userID, models.RoleAdmin)
	teams.On("RemoveMember", mock.Anything, teamID, userID).Return(services.ErrLastAdmin)

	rec := client.POST("/team/"+teamID.String()+"/leave", nil, authed(t, userID))

	testutil.AssertStatus(t, rec, http.StatusConflict)
	assert.Contains(t, rec.Body.String(), "at least one admin")
	assert.Empty(t, hub.Types())
}
