package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/dimitrije/tandem-api/internal/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// ExternalDatabaseEnv names a Postgres URL to test against instead of
// starting a container. Tables are truncated before each test that uses it.
const ExternalDatabaseEnv = "TANDEM_TEST_DATABASE_URL"

// tables in truncation order, children first
var tables = []string{
	"wiki_pages",
	"team_invites",
	"tickets",
	"user_to_team",
	"sprints",
	"teams",
	"organizations",
	"sessions",
	"users",
}

// TestDB is a migrated database owned by one test
type TestDB struct {
	DB        *database.DB
	Container testcontainers.Container
}

// SetupTestDB returns a migrated, empty database. It starts a throwaway
// PostgreSQL container unless ExternalDatabaseEnv is set, and skips under
// -short.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	ctx := context.Background()

	tdb := &TestDB{}
	dsn := os.Getenv(ExternalDatabaseEnv)
	if dsn == "" {
		tdb.Container, dsn = startPostgres(ctx, t)
	}

	db, err := database.New(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(db.Close)
	tdb.DB = db

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	if tdb.Container == nil {
		tdb.CleanTables(t)
	}
	return tdb
}

func startPostgres(ctx context.Context, t *testing.T) (testcontainers.Container, string) {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "tandem",
				"POSTGRES_PASSWORD": "tandem",
				"POSTGRES_DB":       "tandem_test",
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForListeningPort("5432/tcp"),
			).WithDeadline(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	return container, fmt.Sprintf("postgres://tandem:tandem@%s:%s/tandem_test?sslmode=disable", host, port.Port())
}

// CleanTables empties every application table
func (tdb *TestDB) CleanTables(t *testing.T) {
	t.Helper()
	for _, table := range tables {
		if _, err := tdb.DB.Pool.Exec(context.Background(), "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			t.Fatalf("failed to truncate table %s: %v", table, err)
		}
	}
}
