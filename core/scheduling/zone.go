package scheduling

import (
	"os"
	"strings"
	"time"
)

const localtimePath = "/etc/localtime"

// LocalZone resolves the IANA name of the host zone from TZ, then from the
// /etc/localtime link, and falls back to UTC. Calendar services reject the
// "Local" name time.Local reports.
func LocalZone() (string, *time.Location) {
	name, set := os.LookupEnv("TZ")
	if set {
		name = strings.TrimPrefix(name, ":")
		if strings.HasPrefix(name, "/") {
			name = zoneFromLink(name)
		}
	} else if target, err := os.Readlink(localtimePath); err == nil {
		name = zoneFromLink(target)
	}
	if name == "" {
		return "UTC", time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn("unknown host time zone, using UTC", "time_zone", name, "error", err)
		return "UTC", time.UTC
	}
	return name, loc
}

// zoneFromLink extracts the zone name from a path inside a zoneinfo tree.
func zoneFromLink(target string) string {
	const marker = "zoneinfo/"
	i := strings.LastIndex(target, marker)
	if i < 0 {
		return ""
	}
	name := target[i+len(marker):]
	for _, prefix := range []string{"posix/", "right/"} {
		name = strings.TrimPrefix(name, prefix)
	}
	return name
}
