package postgres

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	testcontainers "github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/noobLue/fullstack5pw/internal/domain/account"
)

// setupPostgres connects to a PostgreSQL database for testing.
// Uses TEST_POSTGRES_URL when set, otherwise starts a disposable container.
// The test is skipped when neither is available. Migrations are applied and
// tables truncated before returning.
func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()
	connStr := os.Getenv("TEST_POSTGRES_URL")
	if connStr == "" {
		container, err := tcpostgres.RunContainer(ctx,
			testcontainers.WithImage("postgres:16"),
			tcpostgres.WithDatabase("test"),
			tcpostgres.WithUsername("test"),
			tcpostgres.WithPassword("test"),
		)
		if err != nil {
			t.Skipf("skipping postgres integration test: %v", err)
		}
		t.Cleanup(func() {
			_ = container.Terminate(context.Background())
		})
		connStr, err = container.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Skipf("failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	// Container might still be starting
	for i := 0; i < 30; i++ {
		if err = pool.Ping(ctx); err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if err != nil {
		t.Skipf("failed to ping test database after retries: %v", err)
	}

	require.NoError(t, applyTestMigrations(ctx, pool))
	require.NoError(t, NewResetter(pool).Reset(ctx))
	return pool
}

// applyTestMigrations runs the up migrations unless the schema already exists.
func applyTestMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	err := pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = 'blogs'
	`).Scan(&count)
	if err == nil && count > 0 {
		return nil
	}

	migrationsDir, err := findMigrationsDir()
	if err != nil {
		return err
	}
	files := []string{
		filepath.Join(migrationsDir, "000001_create_users.up.sql"),
		filepath.Join(migrationsDir, "000002_create_blogs.up.sql"),
	}
	for _, file := range files {
		if err := executeSQLFile(ctx, pool, file); err != nil {
			return err
		}
	}
	return nil
}

func findMigrationsDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	for i := 0; i < 5; i++ {
		dir := filepath.Join(cwd, "migrations")
		if _, err := os.Stat(dir); err == nil {
			return dir, nil
		}
		cwd = filepath.Dir(cwd)
	}
	return "", fmt.Errorf("migrations directory not found")
}

// executeSQLFile reads and executes a SQL file.
func executeSQLFile(ctx context.Context, pool *pgxpool.Pool, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	for _, stmt := range splitStatements(string(content)) {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec %s: %w", path, err)
		}
	}
	return nil
}

// splitStatements splits SQL content into individual statements.
func splitStatements(sql string) []string {
	var statements []string
	for _, stmt := range strings.Split(sql, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}

// insertAccount stores an account through the repository under test.
func insertAccount(t *testing.T, pool *pgxpool.Pool, username string) *account.Account {
	t.Helper()

	a, err := account.New(account.Params{
		Username:     username,
		Name:         "Rooty",
		PasswordHash: "$2a$04$hash",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	})
	require.NoError(t, err)
	require.NoError(t, NewAccountRepository(pool).Create(context.Background(), a))
	return a
}
