package integration

import (
	"context"
	"testing"
	"time"

	"github.com/dimitrije/tandem-api/internal/models"
	"github.com/dimitrije/tandem-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamService_Integration_CreateMakesCreatorAdmin(t *testing.T) {
	tdb, fixtures := setupTest(t)
	teams := services.NewTeamService(tdb.DB)
	ctx := context.Background()

	owner := fixtures.CreateUser(t)
	org := fixtures.CreateOrganization(t, owner)

	team, err := teams.Create(ctx, org.ID, owner.ID, services.TeamInput{Name: "Platform"})
	require.NoError(t, err)
	assert.Equal(t, org.ID, team.OrganizationID)

	role, err := teams.GetRole(ctx, team.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)

	list, roles, err := teams.GetUserTeams(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []int{models.RoleAdmin}, roles)
}

func TestTeamService_Integration_LastAdminStays(t *testing.T) {
	tdb, fixtures := setupTest(t)
	teams := services.NewTeamService(tdb.DB)
	ctx := context.Background()

	admin := fixtures.CreateUser(t)
	member := fixtures.CreateUser(t)
	team := fixtures.CreateTeam(t, fixtures.CreateOrganization(t, admin), admin)
	fixtures.AddTeamMember(t, team, member, models.RoleMember)

	err := teams.RemoveMember(ctx, team.ID, admin.ID)
	require.ErrorIs(t, err, services.ErrLastAdmin)

	require.NoError(t, teams.RemoveMember(ctx, team.ID, member.ID))
	_, err = teams.GetRole(ctx, team.ID, member.ID)
	require.ErrorIs(t, err, services.ErrNotTeamMember)
}

func TestSessionService_Integration_RevokeAndCleanup(t *testing.T) {
	tdb, fixtures := setupTest(t)
	sessions := services.NewSessionService(tdb.DB)
	ctx := context.Background()

	user := fixtures.CreateUser(t)

	live, err := sessions.Create(ctx, user.ID, "test-agent", time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, sessions.Validate(ctx, live.ID, user.ID))

	expired, err := sessions.Create(ctx, user.ID, "", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.ErrorIs(t, sessions.Validate(ctx, expired.ID, user.ID), services.ErrSessionNotFound)

	removed, err := sessions.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	require.NoError(t, sessions.Revoke(ctx, live.ID))
	require.ErrorIs(t, sessions.Validate(ctx, live.ID, user.ID), services.ErrSessionNotFound)
}
