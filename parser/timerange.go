package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	secondsPerHour = 3600
	secondsPerDay  = 86400
	secondsPerWeek = 604800
)

var (
	durationPattern    = regexp.MustCompile(`^(\d+)([hdw])$`)
	messageLinkPattern = regexp.MustCompile(`/archives/([A-Z0-9]+)/p(\d+)`)
)

// ParseDuration converts a relative duration token ("3d", "12h", "1w")
// to seconds. Returns false when the token is not a duration.
func ParseDuration(token string) (int64, bool) {
	match := durationPattern.FindStringSubmatch(strings.ToLower(token))
	if match == nil {
		return 0, false
	}
	value, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, false
	}
	switch match[2] {
	case "h":
		return value * secondsPerHour, true
	case "d":
		return value * secondsPerDay, true
	default:
		return value * secondsPerWeek, true
	}
}

// ParseMessageLink extracts the channel id and message timestamp from a
// Slack permalink (/archives/<CHANNEL>/p<digits>). The digits are the
// 10-digit seconds followed by 6 microsecond digits, reassembled with a
// decimal point.
func ParseMessageLink(link string) (channelID, ts string, ok bool) {
	match := messageLinkPattern.FindStringSubmatch(link)
	if match == nil {
		return "", "", false
	}
	raw := match[2]
	if len(raw) >= 16 {
		ts = raw[:10] + "." + raw[10:16]
	} else {
		ts = raw
	}
	return match[1], ts, true
}

// ParseDateTS converts a YYYY-MM-DD date to an epoch-second timestamp at
// local midnight.
func ParseDateTS(value string) (string, bool) {
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return "", false
	}
	return strconv.FormatInt(t.Unix(), 10), true
}

// ResolveLinkOrDate accepts either a permalink or a calendar date and
// returns the resolved timestamp, plus the channel id when the value was
// a link.
func ResolveLinkOrDate(value string) (ts, channelID string, ok bool) {
	if linkChannel, linkTS, isLink := ParseMessageLink(value); isLink {
		return linkTS, linkChannel, true
	}
	if dateTS, isDate := ParseDateTS(value); isDate {
		return dateTS, "", true
	}
	return "", "", false
}

// tsFloat parses a resolved timestamp for range comparison only; exact
// ordering of collected messages uses decimal keys instead.
func tsFloat(ts string) float64 {
	f, _ := strconv.ParseFloat(ts, 64)
	return f
}
