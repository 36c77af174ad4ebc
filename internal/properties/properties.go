package properties

import (
	"os"
	"strconv"
)

func RootPath() string {
	return os.Getenv("ROOT_PATH")
}

func CopernicusClientID() string {
	return os.Getenv("COPERNICUS_CLIENT_ID")
}

func CopernicusClientSecret() string {
	return os.Getenv("COPERNICUS_CLIENT_SECRET")
}

func CopernicusTokenURL() string {
	if url := os.Getenv("COPERNICUS_TOKEN_URL"); url != "" {
		return url
	}
	return "https://identity.dataspace.copernicus.eu/auth/realms/CDSE/protocol/openid-connect/token"
}

func CopernicusProcessURL() string {
	if url := os.Getenv("COPERNICUS_PROCESS_URL"); url != "" {
		return url
	}
	return "https://sh.dataspace.copernicus.eu/api/v1/process"
}

// MaxReductionPixels caps how many pixels a single regional reduction may
// touch before it is rejected.
func MaxReductionPixels() int {
	if raw := os.Getenv("MAX_REDUCTION_PIXELS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return 10_000_000
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}
func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}

type Color struct {
	R, G, B uint8
}

// VegetationRamp runs bare soil brown to dense canopy green.
var VegetationRamp = []Color{
	{140, 90, 40},
	{190, 170, 90},
	{160, 190, 90},
	{80, 150, 60},
	{20, 100, 35},
}

// WaterRamp runs dry white to open water blue.
var WaterRamp = []Color{
	{245, 245, 245},
	{170, 200, 230},
	{90, 140, 210},
	{20, 70, 160},
}
