package properties

import (
	"os"
	"strconv"
)

func RootPath() string {
	return os.Getenv("ROOT_PATH")
}

// AdvisoryServiceURL points at the qualitative-assessment service.
// Empty means the engine runs without external enrichment.
func AdvisoryServiceURL() string {
	return os.Getenv("ADVISORY_SERVICE_URL")
}

func AdvisoryClientID() string {
	return os.Getenv("ADVISORY_CLIENT_ID")
}

func AdvisoryClientSecret() string {
	return os.Getenv("ADVISORY_CLIENT_SECRET")
}

func AdvisoryTokenURL() string {
	return os.Getenv("ADVISORY_TOKEN_URL")
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}

func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}

// DefaultZoneCount controls the analysis grid: <=4 gives 2x2, anything
// larger gives 3x3.
func DefaultZoneCount() int {
	v := os.Getenv("DEFAULT_ZONE_COUNT")
	if v == "" {
		return 4
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 4
	}
	return n
}
