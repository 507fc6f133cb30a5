package constants

// Queue and ingestion limits
const (
	MaxTextLength       = 2200
	PostedHashCapacity  = 1000
	ContentHashLength   = 16
	DefaultPostsPerDay  = 2
	DefaultPostNowTag   = "#postnow"
	DefaultTimezone     = "UTC"
)

// Delivery configuration
const (
	MinPostIntervalSec         = 60
	DefaultProcessIntervalMin  = 5
	DefaultScheduleIntervalMin = 60
	DefaultMaxAttempts         = 5
	DefaultRetryInitialMin     = 5
	DefaultRetryMaxHours       = 6
	DryRunIDPrefix             = "dry-run-"
)

// Video upload
const (
	DefaultVideoChunkSizeMB = 4
	BytesPerMegabyte        = 1024 * 1024
)

// HTTP server defaults
const (
	DefaultServerPort            = 8084
	DefaultServerReadTimeoutSec  = 15
	DefaultServerWriteTimeoutSec = 15
	DefaultServerIdleTimeoutSec  = 60
	DefaultGracefulShutdownSec   = 30
	MaxWebhookBodyBytes          = 1 << 20
)

// Outbound HTTP defaults
const (
	DefaultHTTPTimeoutSec     = 30
	DefaultUploadTimeoutSec   = 300
	DefaultDownloadTimeoutSec = 120
)
