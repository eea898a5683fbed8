package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuj-jha-1/Expense-Tracker/internal/service"
)

// setupEnv points the commands at a fresh SQLite file.
func setupEnv(t *testing.T) *cmdEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "ledger.db"))
	t.Setenv("REDIS_URL", "")
	t.Setenv("JWT_SECRET", "test-secret-test-secret-test-secret")
	t.Setenv("LOG_LEVEL", "error")

	return &cmdEnv{
		globals: &globals{EnvFile: filepath.Join(dir, "missing.env")},
		stdout:  &bytes.Buffer{},
	}
}

func output(g *cmdEnv) string {
	return g.stdout.(*bytes.Buffer).String()
}

func TestMigrate(t *testing.T) {
	g := setupEnv(t)

	require.NoError(t, (&migrateCmd{}).Run(g))
	assert.Contains(t, output(g), "migrated sqlite up")

	// Re-running is a no-op.
	require.NoError(t, (&migrateCmd{}).Run(g))
}

func TestCreateUserIssueTokenAndSummary(t *testing.T) {
	g := setupEnv(t)
	g.stdin = strings.NewReader("long-enough-password\n")

	require.NoError(t, (&createUserCmd{Email: "Ops@Example.com", PasswordStdin: true}).Run(g))
	assert.Contains(t, output(g), "(ops@example.com)")

	g.stdout = &bytes.Buffer{}
	require.NoError(t, (&issueTokenCmd{Email: "ops@example.com"}).Run(g))
	token := strings.TrimSpace(output(g))
	assert.Equal(t, 3, len(strings.Split(token, ".")), "expected a JWT, got %q", token)

	g.stdout = &bytes.Buffer{}
	require.NoError(t, (&summaryCmd{Email: "ops@example.com"}).Run(g))

	var report summaryReport
	require.NoError(t, json.Unmarshal([]byte(output(g)), &report))
	assert.Equal(t, "ops@example.com", report.Email)
	assert.Equal(t, "0.00", report.Summary.TotalIncome)
	assert.Equal(t, "0.00", report.Summary.TotalExpenses)
	assert.Equal(t, "0.00", report.Summary.NetIncome)
	assert.Empty(t, report.Stats.ExpenseByCategory)
	assert.Empty(t, report.Stats.IncomeByCategory)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	g := setupEnv(t)

	g.stdin = strings.NewReader("long-enough-password\n")
	require.NoError(t, (&createUserCmd{Email: "dup@example.com", PasswordStdin: true}).Run(g))

	g.stdin = strings.NewReader("another-password\n")
	err := (&createUserCmd{Email: "dup@example.com", PasswordStdin: true}).Run(g)
	assert.ErrorIs(t, err, service.ErrEmailTaken)
}

func TestIssueToken_UnknownUser(t *testing.T) {
	g := setupEnv(t)

	err := (&issueTokenCmd{Email: "nobody@example.com"}).Run(g)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestPassword_Prompt(t *testing.T) {
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })

	g := &cmdEnv{globals: &globals{}, stdout: &bytes.Buffer{}}

	readPassword = func(int) ([]byte, error) { return []byte("typed-secret"), nil }
	pw, err := g.password(false)
	require.NoError(t, err)
	assert.Equal(t, "typed-secret", pw)
	assert.Contains(t, output(g), "Password: ")

	readPassword = func(int) ([]byte, error) { return nil, errors.New("not a terminal") }
	_, err = g.password(false)
	assert.ErrorContains(t, err, "not a terminal")
}

func TestPassword_Stdin(t *testing.T) {
	g := &cmdEnv{globals: &globals{}, stdin: strings.NewReader("from-pipe\r\nignored\n")}
	pw, err := g.password(true)
	require.NoError(t, err)
	assert.Equal(t, "from-pipe", pw)

	g.stdin = strings.NewReader("")
	_, err = g.password(true)
	assert.Error(t, err)
}
