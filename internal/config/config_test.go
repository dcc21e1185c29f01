package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/debate-platform/backend/internal/models"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 120, cfg.VoteRatePerMinute)

	policy, err := cfg.Score.Policy()
	require.NoError(t, err)
	assert.Equal(t, []models.Status{models.StatusApproved}, policy.EvidenceStatuses)
	assert.Equal(t, 1, policy.PerspectiveWeight)

	opts := cfg.Notify.Options()
	assert.Equal(t, 1000, opts.QueueSize)
	assert.Equal(t, uint64(3), opts.MaxRetries)
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("SCORE_EVIDENCE_STATUSES", "approved, flagged")
	t.Setenv("SCORE_EVIDENCE_WEIGHT", "2")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/debate")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, "postgres://u:p@db:5432/debate", cfg.Database.Database().DSN)

	policy, err := cfg.Score.Policy()
	require.NoError(t, err)
	assert.Equal(t, []models.Status{models.StatusApproved, models.StatusFlagged}, policy.EvidenceStatuses)
	assert.Equal(t, 2, policy.EvidenceWeight)
}

func TestParse_Invalid(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := Parse()
		assert.ErrorContains(t, err, "JWT_SECRET")
	})
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("STORE_DRIVER", "mongo")
		_, err := Parse()
		assert.ErrorContains(t, err, "STORE_DRIVER")
	})
	t.Run("unknown status", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("SCORE_PERSPECTIVE_STATUSES", "approved,archived")
		_, err := Parse()
		assert.ErrorContains(t, err, "archived")
	})
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=from-file\nPORT=9999\n"), 0o600))
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "9999", cfg.Port)
}
