package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"telebook/internal/constants"
	"telebook/internal/models"
	"telebook/internal/security"
)

var (
	ErrMissingQueuePath  = models.ConfigError{Message: "missing queue store path"}
	ErrMissingScratchDir = models.ConfigError{Message: "missing media scratch directory"}
	ErrMissingPostTimes  = models.ConfigError{Message: "post_times must contain at least one HH:MM slot"}
)

// LoadConfig reads the JSON config file, applies environment overrides and
// fills in defaults. Missing or placeholder Facebook credentials do not fail
// the load: delivery refuses to post (and status reports configValid=false)
// but dry-run and ingestion keep working.
func LoadConfig(path string) (*models.Config, error) {
	if err := security.ValidateFilePath(path); err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	file, err := os.ReadFile(path) // #nosec G304 - Path validated above
	if err != nil {
		return nil, err
	}

	var config models.Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	applyEnvironmentOverrides(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validate(c *models.Config) error {
	if c.Queue.Path == "" {
		return ErrMissingQueuePath
	}
	if c.Media.ScratchDir == "" {
		return ErrMissingScratchDir
	}

	if c.Schedule.PostsPerDay <= 0 {
		c.Schedule.PostsPerDay = constants.DefaultPostsPerDay
	}
	if len(c.Schedule.PostTimes) == 0 {
		return ErrMissingPostTimes
	}
	for _, slot := range c.Schedule.PostTimes {
		if _, _, err := ParseSlot(slot); err != nil {
			return models.ConfigError{Message: fmt.Sprintf("invalid post time %q: %v", slot, err)}
		}
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = constants.DefaultTimezone
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return models.ConfigError{Message: fmt.Sprintf("invalid timezone %q: %v", c.Schedule.Timezone, err)}
	}
	if c.Schedule.ProcessIntervalMin <= 0 {
		c.Schedule.ProcessIntervalMin = constants.DefaultProcessIntervalMin
	}
	if c.Schedule.AssignIntervalMin <= 0 {
		c.Schedule.AssignIntervalMin = constants.DefaultScheduleIntervalMin
	}

	if c.Queue.PostNowTag == "" {
		c.Queue.PostNowTag = constants.DefaultPostNowTag
	}
	if c.Media.VideoChunkSizeMB <= 0 {
		c.Media.VideoChunkSizeMB = constants.DefaultVideoChunkSizeMB
	}

	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = constants.DefaultMaxAttempts
	}
	if c.Retry.InitialBackoffMin <= 0 {
		c.Retry.InitialBackoffMin = constants.DefaultRetryInitialMin
	}
	if c.Retry.MaxBackoffHours <= 0 {
		c.Retry.MaxBackoffHours = constants.DefaultRetryMaxHours
	}

	if c.Server.Port <= 0 {
		c.Server.Port = constants.DefaultServerPort
	}

	if c.Facebook.GraphVersion == "" {
		c.Facebook.GraphVersion = "v19.0"
	}
	if c.Facebook.APIBaseURL == "" {
		c.Facebook.APIBaseURL = "https://graph.facebook.com"
	}
	if c.Telegram.APIBaseURL == "" {
		c.Telegram.APIBaseURL = "https://api.telegram.org"
	}

	return nil
}

func applyEnvironmentOverrides(c *models.Config) {
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		c.Telegram.BotToken = token
	}
	if secret := os.Getenv("TELEBOOK_WEBHOOK_SECRET"); secret != "" {
		c.Telegram.WebhookSecret = secret
	}
	if pageID := os.Getenv("FACEBOOK_PAGE_ID"); pageID != "" {
		c.Facebook.PageID = pageID
	}
	if token := os.Getenv("FACEBOOK_ACCESS_TOKEN"); token != "" {
		c.Facebook.AccessToken = token
	}
	if path := os.Getenv("QUEUE_PATH"); path != "" {
		c.Queue.Path = path
	}
	if dir := os.Getenv("SCRATCH_DIR"); dir != "" {
		c.Media.ScratchDir = dir
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if dry := os.Getenv("TELEBOOK_DRY_RUN"); dry != "" {
		c.DryRun = dry == "1" || strings.EqualFold(dry, "true")
	}
}

// IsFacebookConfigured reports whether real page credentials are present.
// Placeholder values left over from config templates ("YOUR_PAGE_ID" etc.)
// count as unconfigured so a template deployment fails closed instead of
// spraying requests at the Graph API.
func IsFacebookConfigured(c *models.Config) bool {
	return isCredential(c.Facebook.PageID) && isCredential(c.Facebook.AccessToken)
}

// IsTelegramConfigured reports whether a usable bot token is present.
func IsTelegramConfigured(c *models.Config) bool {
	return isCredential(c.Telegram.BotToken)
}

func isCredential(v string) bool {
	if v == "" {
		return false
	}
	upper := strings.ToUpper(v)
	return !strings.HasPrefix(upper, "YOUR_") && !strings.Contains(upper, "CHANGEME")
}

// ParseSlot parses an HH:MM time-of-day slot.
func ParseSlot(slot string) (hour, minute int, err error) {
	parts := strings.Split(slot, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM")
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour")
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute")
	}
	return hour, minute, nil
}
