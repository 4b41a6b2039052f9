package filters

import (
	"strconv"
	"strings"
	"time"
)

// Metadata holds descriptive fields parsed from a filter list's comment
// header (lines of the form "! Key: value").
type Metadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version,omitempty"`
	Homepage    string `json:"homepage,omitempty"`
	ExpiresSec  int64  `json:"expires_sec,omitempty"`
	TimeUpdated string `json:"time_updated,omitempty"`
	RuleCount   int    `json:"rule_count"`
}

// ParseMetadata extracts header metadata and the rule count from a filter
// list body. Header fields are only honoured in the leading comment block;
// rules are counted over the whole body. Rule lines themselves are not
// interpreted here.
func ParseMetadata(body string) Metadata {
	var meta Metadata
	inHeader := true

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}

		// "[Adblock Plus 2.0]" style shebang.
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			continue
		}

		if strings.HasPrefix(line, "!") {
			if inHeader {
				parseHeaderLine(&meta, line)
			}
			continue
		}

		inHeader = false
		meta.RuleCount++
	}
	return meta
}

func parseHeaderLine(meta *Metadata, line string) {
	body := strings.TrimSpace(strings.TrimLeft(line, "!"))
	key, value, ok := strings.Cut(body, ":")
	if !ok {
		return
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}

	switch strings.ToLower(strings.TrimSpace(key)) {
	case "title":
		meta.Title = value
	case "description":
		meta.Description = value
	case "version":
		meta.Version = value
	case "homepage":
		meta.Homepage = value
	case "expires":
		meta.ExpiresSec = parseExpires(value)
	case "last modified", "timeupdated", "last updated":
		meta.TimeUpdated = value
	}
}

// parseExpires converts values like "4 days (update frequency)" or
// "12 hours" into seconds. Returns 0 when the value is unrecognised.
func parseExpires(value string) int64 {
	fields := strings.Fields(value)
	if len(fields) < 1 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return 0
	}

	unit := "days"
	if len(fields) > 1 {
		unit = strings.ToLower(fields[1])
	}
	switch {
	case strings.HasPrefix(unit, "hour"):
		return int64(time.Duration(n) * time.Hour / time.Second)
	case strings.HasPrefix(unit, "day"):
		return int64(time.Duration(n) * 24 * time.Hour / time.Second)
	}
	return 0
}
