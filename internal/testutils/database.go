package testutils

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"todo-app/db"
	"todo-app/internal/config"
	"todo-app/internal/logging"
)

// SetupTestDatabase creates an isolated SQLite database with the schema
// applied. It is closed when the test ends.
func SetupTestDatabase(t *testing.T) *db.Database {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	testDB, err := db.Connect("sqlite:///" + dbPath)
	require.NoError(t, err)

	err = db.InitializeSchema(context.Background(), testDB)
	require.NoError(t, err)

	t.Cleanup(func() { testDB.Close() })
	return testDB
}

// SetupTestRepositoryFactory returns a factory over a fresh database and a
// running DBManager.
func SetupTestRepositoryFactory(t *testing.T) (*db.RepositoryFactory, *db.DBManager) {
	t.Helper()

	factory := db.NewRepositoryFactory(SetupTestDatabase(t))
	manager := db.NewDBManager(logging.Discard())
	t.Cleanup(manager.Stop)
	return factory, manager
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, database *db.Database, table string) int {
	t.Helper()

	var n int
	err := database.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
	require.NoError(t, err)
	return n
}

func GetTestConfig() *config.Config {
	return &config.Config{
		SecretKey:   []byte("test_session_secret_key_for_testing_only"),
		DatabaseURL: "sqlite:///:memory:",
		Port:        "0",
		LogLevel:    "error",
		LogFormat:   "text",
		SessionName: "todo-test-session",
	}
}
