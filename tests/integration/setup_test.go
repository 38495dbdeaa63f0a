package integration

import (
	"os"
	"testing"

	"github.com/dimitrije/tandem-api/internal/services"
	"github.com/dimitrije/tandem-api/tests/testutil"
)

// TestMain runs before all tests in this package
func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

// setupTest creates a test database. It skips under -short.
func setupTest(t *testing.T) (*testutil.TestDB, *testutil.Fixtures) {
	t.Helper()
	tdb := testutil.SetupTestDB(t)
	return tdb, testutil.NewFixtures(tdb.DB)
}

// recordingMailer captures invite emails instead of sending them.
type recordingMailer struct {
	sent []string
	err  error
}

func (m *recordingMailer) IsConfigured() bool {
	return true
}

func (m *recordingMailer) SendTeamInvite(to string, _ services.InviteEmail) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}
