package handlers

import (
	"testing"

	"github.com/dimitrije/tandem-api/internal/middleware"
	"github.com/dimitrije/tandem-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/mock"
)

const (
	testEmail  = "test@example.com"
	testCookie = "tandem_session"
)

func authMiddleware() drift.HandlerFunc {
	return middleware.Auth(testutil.TestTokens(), testutil.AllowSessions{}, testCookie)
}

func authed(t *testing.T, userID uuid.UUID) map[string]string {
	return testutil.AuthHeader(t, userID, testEmail)
}

func expectRole(teams *testutil.MockTeamService, teamID, userID uuid.UUID, role int) {
	teams.On("GetRole", mock.Anything, teamID, userID).Return(role, nil)
}
