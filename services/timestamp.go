package services

import "regexp"

var timestampPattern = regexp.MustCompile(`[0-9]{8}_[0-9]{6}`)

// ExtractTimestamp returns the first YYYYMMDD_HHMMSS token in path, or ""
// when there is none.
func ExtractTimestamp(path string) string {
	return timestampPattern.FindString(path)
}
