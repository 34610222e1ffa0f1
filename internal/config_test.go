package internal

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://api.test/api")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 8081, cfg.ReaderPort)
	assert.Equal(t, 10*time.Second, cfg.APITimeout)
	assert.Equal(t, 2, cfg.PaginationLimitTop)
	assert.Equal(t, 2, cfg.PaginationLimitEnd)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 1000, cfg.MaxSessions)
	assert.Equal(t, "local", cfg.StorageProvider)
	assert.Equal(t, 15*time.Minute, cfg.PictureURLTTL)
}

func TestNewConfig_Overrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://api.test/api")
	t.Setenv("ENV", "production")
	t.Setenv("API_RATE_LIMIT", "2.5")
	t.Setenv("PAGINATION_LIMIT_TOP", "3")
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("PORT", "not-a-number")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 2.5, cfg.APIRateLimit)
	assert.Equal(t, 3, cfg.PaginationLimitTop)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 8080, cfg.Port, "malformed values fall back to the default")
}

func TestNewConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "zero limit",
			env:     map[string]string{"PAGINATION_LIMIT_END": "0"},
			wantErr: "PAGINATION_LIMIT",
		},
		{
			name:    "zero session cap",
			env:     map[string]string{"SESSION_MAX": "0"},
			wantErr: "SESSION_MAX",
		},
		{
			name:    "unknown storage provider",
			env:     map[string]string{"STORAGE_PROVIDER": "gcs"},
			wantErr: "STORAGE_PROVIDER",
		},
		{
			name:    "r2 without account",
			env:     map[string]string{"STORAGE_PROVIDER": "r2"},
			wantErr: "R2_ACCOUNT_ID",
		},
		{
			name: "r2 without bucket",
			env: map[string]string{
				"STORAGE_PROVIDER":     "r2",
				"R2_ACCOUNT_ID":        "acc",
				"R2_ACCESS_KEY_ID":     "key",
				"R2_SECRET_ACCESS_KEY": "secret",
			},
			wantErr: "R2_BUCKET_NAME",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("API_BASE_URL", "http://api.test")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := NewConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRequireStoryAPI(t *testing.T) {
	t.Setenv("API_BASE_URL", "")

	cfg, err := NewConfig()
	require.NoError(t, err, "the reader site runs without the story API")

	err = cfg.RequireStoryAPI()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_BASE_URL")

	cfg.APIBaseURL = "http://api.test"
	assert.NoError(t, cfg.RequireStoryAPI())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "production", "warn")

	logger.Info("hidden")
	logger.Warn("shown", "page", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"page":2`)

	buf.Reset()
	dev := NewLogger(&buf, "development", "debug")
	dev.Debug("dev line", "story_id", 7)
	assert.True(t, strings.Contains(buf.String(), "dev line"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
