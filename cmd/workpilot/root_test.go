package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/workpilot/internal/auth"
	"github.com/mmynk/workpilot/internal/ledger"
	"github.com/mmynk/workpilot/internal/models"
	"github.com/mmynk/workpilot/internal/period"
	"github.com/mmynk/workpilot/internal/roster"
	"github.com/mmynk/workpilot/internal/storage/sqlite"
)

// isolate clears the environment the config layer reads.
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"WORKPILOT_CONFIG", "TELEGRAM_BOT_TOKEN", "DB_PATH", "WORKPILOT_TIMEZONE",
		"ADMIN_ADDR", "JWT_SECRET", "EXPORT_DIR", "S3_BUCKET", "LOG_LEVEL",
		"REPORT_MIN_LENGTH", "REPORT_KEYWORDS",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHashPassword(t *testing.T) {
	isolate(t)

	t.Run("prints a bcrypt hash of the argument", func(t *testing.T) {
		out, err := run(t, "hash-password", "correct-horse")
		require.NoError(t, err)

		hash := strings.TrimSpace(out)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct-horse")))
	})

	t.Run("reads the password from stdin", func(t *testing.T) {
		cmd := newRootCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetIn(strings.NewReader("battery-staple\n"))
		cmd.SetArgs([]string{"hash-password"})
		require.NoError(t, cmd.Execute())

		hash := strings.TrimSpace(out.String())
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("battery-staple")))
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		_, err := run(t, "hash-password", "short")
		assert.ErrorIs(t, err, auth.ErrWeakPassword)
	})
}

func TestExportCommand(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "workpilot.db")
	t.Setenv("DB_PATH", dbPath)
	t.Setenv("EXPORT_DIR", filepath.Join(dir, "groups"))

	loc, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)

	// Seed a group and one report in 2024-W10.
	store, err := sqlite.New(dbPath)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()
	rs := roster.New(store, logger, nil)
	_, err = rs.RegisterGroup(ctx, 42, "Platform")
	require.NoError(t, err)
	l := ledger.New(store, period.NewResolver(loc), logger)
	_, err = l.AddReport(ctx, 42, 1, "Alice", "周报: shipped the scheduler", time.Date(2024, 3, 6, 10, 0, 0, 0, loc))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	t.Run("prints the document", func(t *testing.T) {
		out, err := run(t, "export", "42", "2024-W10", "--stdout")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "# Platform - 2024-W10 周报汇总\n"))
		assert.Contains(t, out, "## Alice")
		assert.Contains(t, out, "周报: shipped the scheduler")
	})

	t.Run("prints the file location", func(t *testing.T) {
		out, err := run(t, "export", "42", "2024-W10")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "groups", "42", "exports", "2024-W10_summary.md"), strings.TrimSpace(out))
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := run(t, "export", "7", "2024-W10")
		assert.ErrorIs(t, err, models.ErrUnknownGroup)
	})

	t.Run("malformed period", func(t *testing.T) {
		_, err := run(t, "export", "42", "2024-10")
		assert.ErrorIs(t, err, models.ErrInvalidPeriod)
	})

	t.Run("malformed group id", func(t *testing.T) {
		_, err := run(t, "export", "platform")
		assert.Error(t, err)
	})
}

func TestServeRequiresToken(t *testing.T) {
	isolate(t)
	t.Setenv("DB_PATH", memoryPath)

	_, err := run(t, "serve")
	assert.ErrorContains(t, err, "telegram token is required")
}
