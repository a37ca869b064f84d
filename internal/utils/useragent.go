package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// DeviceInfo is the parsed client description stored with activity entries
type DeviceInfo struct {
	DeviceType string `json:"deviceType"` // mobile, tablet, desktop, bot, unknown
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	IsBot      bool   `json:"isBot"`
}

var tabletMarkers = []string{"ipad", "tablet", "kindle", "sm-t", "nexus 7", "nexus 9", "nexus 10"}

// ParseUserAgent extracts device information from a User-Agent header
func ParseUserAgent(userAgent string) DeviceInfo {
	if userAgent == "" || userAgent == "Unknown" {
		return DeviceInfo{DeviceType: "unknown", OS: "Unknown", Browser: "Unknown"}
	}

	parser := ua.New(userAgent)
	info := DeviceInfo{
		OS:      osLabel(parser),
		Browser: browserLabel(parser),
		IsBot:   parser.Bot(),
	}

	switch {
	case info.IsBot:
		info.DeviceType = "bot"
	case isTablet(userAgent):
		info.DeviceType = "tablet"
	case parser.Mobile():
		info.DeviceType = "mobile"
	default:
		info.DeviceType = "desktop"
	}
	return info
}

// Map flattens the device info for JSONB activity details
func (d DeviceInfo) Map() map[string]interface{} {
	return map[string]interface{}{
		"deviceType": d.DeviceType,
		"os":         d.OS,
		"browser":    d.Browser,
		"isBot":      d.IsBot,
	}
}

func isTablet(userAgent string) bool {
	lower := strings.ToLower(userAgent)
	for _, marker := range tabletMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func osLabel(parser *ua.UserAgent) string {
	info := parser.OSInfo()
	if info.Name == "" {
		return "Unknown"
	}
	if info.Version != "" {
		return info.Name + " " + info.Version
	}
	return info.Name
}

func browserLabel(parser *ua.UserAgent) string {
	name, version := parser.Browser()
	if name == "" {
		return "Unknown"
	}
	if version != "" {
		// Major version only; full build strings add nothing to the dashboard.
		if i := strings.IndexByte(version, '.'); i > 0 {
			version = version[:i]
		}
		return name + " " + version
	}
	return name
}
