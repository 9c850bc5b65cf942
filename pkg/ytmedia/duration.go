package ytmedia

import (
	"regexp"
	"strconv"
)

var iso8601DurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISO8601Duration converts the Data API's PT#H#M#S format to seconds.
// Unparseable input yields 0, an accepted degradation for unknown durations.
func parseISO8601Duration(duration string) int {
	matches := iso8601DurationRe.FindStringSubmatch(duration)
	if matches == nil {
		return 0
	}

	hours, _ := strconv.Atoi(matches[1])
	minutes, _ := strconv.Atoi(matches[2])
	seconds, _ := strconv.Atoi(matches[3])

	return hours*3600 + minutes*60 + seconds
}
