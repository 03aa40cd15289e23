package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("WORKFLOW_POLICY", "")
	t.Setenv("NOTIFICATION_RETENTION", "")
	t.Setenv("REDIS_ENABLED", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, domain.WorkflowStrict, cfg.Workflow.Policy)
	assert.Equal(t, 72*time.Hour, cfg.Workflow.CloseDue())
	assert.Zero(t, cfg.Notification.Retention)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "helpdesk.notifications", cfg.Redis.Channel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("WORKFLOW_POLICY", "permissive")
	t.Setenv("WORKFLOW_CLOSE_DUE_DAYS", "5")
	t.Setenv("NOTIFICATION_RETENTION", "50")
	t.Setenv("APP_HOST", "127.0.0.1")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, domain.WorkflowPermissive, cfg.Workflow.Policy)
	assert.Equal(t, 5*24*time.Hour, cfg.Workflow.CloseDue())
	assert.Equal(t, 50, cfg.Notification.Retention)
	assert.Equal(t, "127.0.0.1:9000", cfg.App.Addr())
	assert.Zero(t, cfg.App.RequestTimeout())
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoad_Errors(t *testing.T) {
	tests := map[string]map[string]string{
		"bad policy":         {"WORKFLOW_POLICY": "lenient"},
		"negative retention": {"NOTIFICATION_RETENTION": "-1"},
		"bad redis db":       {"REDIS_DB": "zero"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	t.Setenv("SOME_BOOL", "maybe")
	assert.Equal(t, 7, getEnvAsInt("SOME_INT", 7))
	assert.True(t, getEnvAsBool("SOME_BOOL", true))
}
