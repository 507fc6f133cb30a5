package config

import (
	"os"
	"path/filepath"
	"testing"

	"telebook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

const minimalConfig = `{
	"queue": {"path": "queue.json"},
	"media": {"scratch_dir": "scratch"},
	"schedule": {"post_times": ["09:00", "18:00"]}
}`

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Schedule.PostsPerDay)
	assert.Equal(t, "UTC", cfg.Schedule.Timezone)
	assert.Equal(t, "#postnow", cfg.Queue.PostNowTag)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, "https://graph.facebook.com", cfg.Facebook.APIBaseURL)
	assert.Equal(t, "v19.0", cfg.Facebook.GraphVersion)
	assert.False(t, cfg.DryRun)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	path := writeConfig(t, "{not json")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "missing queue path",
			content: `{"media": {"scratch_dir": "s"}, "schedule": {"post_times": ["09:00"]}}`,
			wantErr: ErrMissingQueuePath,
		},
		{
			name:    "missing scratch dir",
			content: `{"queue": {"path": "q.json"}, "schedule": {"post_times": ["09:00"]}}`,
			wantErr: ErrMissingScratchDir,
		},
		{
			name:    "missing post times",
			content: `{"queue": {"path": "q.json"}, "media": {"scratch_dir": "s"}}`,
			wantErr: ErrMissingPostTimes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := LoadConfig(path)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadConfigBadSlot(t *testing.T) {
	path := writeConfig(t, `{
		"queue": {"path": "q.json"},
		"media": {"scratch_dir": "s"},
		"schedule": {"post_times": ["25:00"]}
	}`)
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("FACEBOOK_PAGE_ID", "page-from-env")
	t.Setenv("FACEBOOK_ACCESS_TOKEN", "token-from-env")
	t.Setenv("TELEBOOK_DRY_RUN", "true")

	path := writeConfig(t, minimalConfig)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "page-from-env", cfg.Facebook.PageID)
	assert.Equal(t, "token-from-env", cfg.Facebook.AccessToken)
	assert.True(t, cfg.DryRun)
}

func TestIsFacebookConfigured(t *testing.T) {
	tests := []struct {
		name  string
		cfg   models.FacebookConfig
		valid bool
	}{
		{name: "real credentials", cfg: models.FacebookConfig{PageID: "123", AccessToken: "EAAB..."}, valid: true},
		{name: "empty", cfg: models.FacebookConfig{}, valid: false},
		{name: "placeholder page", cfg: models.FacebookConfig{PageID: "YOUR_PAGE_ID", AccessToken: "tok"}, valid: false},
		{name: "placeholder token", cfg: models.FacebookConfig{PageID: "123", AccessToken: "changeme"}, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &models.Config{Facebook: tt.cfg}
			assert.Equal(t, tt.valid, IsFacebookConfigured(c))
		})
	}
}

func TestParseSlot(t *testing.T) {
	h, m, err := ParseSlot("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, h)
	assert.Equal(t, 30, m)

	for _, bad := range []string{"", "9", "24:00", "12:60", "ab:cd", "12:34:56"} {
		_, _, err := ParseSlot(bad)
		assert.Error(t, err, bad)
	}
}
