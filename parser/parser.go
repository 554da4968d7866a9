package parser

import (
	"strings"

	"catchup/models"
)

// Parse tokenizes raw slash-command text into a validated request. An
// unrecognized token is a hard parse error that short-circuits the
// remaining tokens. A bare or flags-only invocation degrades to help.
func Parse(userID, text string) *models.CatchupRequest {
	req := &models.CatchupRequest{
		UserID:  userID,
		RawText: strings.TrimSpace(text),
		Mode:    models.ModeCollect,
	}
	if req.RawText == "" {
		req.Mode = models.ModeHelp
		return req
	}

	for _, token := range strings.Fields(req.RawText) {
		switch {
		case token == "--threads":
			req.IncludeThreads = true
		case token == "--include-bots":
			req.IncludeBots = true
		case token == "--exclude-bots":
			req.IncludeBots = false
		case strings.HasPrefix(token, "--channels:"):
			req.Channels = parseChannelList(strings.TrimPrefix(token, "--channels:"))
		case strings.HasPrefix(token, "from:"):
			ts, channelID, ok := ResolveLinkOrDate(strings.TrimPrefix(token, "from:"))
			if !ok {
				return parseError(req, "invalid from: value - expected a Slack message link or a YYYY-MM-DD date")
			}
			req.FromTS = ts
			req.FromChannel = channelID
		case strings.HasPrefix(token, "to:"):
			ts, _, ok := ResolveLinkOrDate(strings.TrimPrefix(token, "to:"))
			if !ok {
				return parseError(req, "invalid to: value - expected a Slack message link or a YYYY-MM-DD date")
			}
			req.ToTS = ts
		case strings.HasPrefix(token, "in:"):
			channelID, ts, ok := ParseMessageLink(strings.TrimPrefix(token, "in:"))
			if !ok {
				return parseError(req, "invalid in: value - expected a Slack message link")
			}
			req.ThreadChannel = channelID
			req.ThreadTS = ts
		default:
			if seconds, ok := ParseDuration(token); ok {
				req.HasDuration = true
				req.DurationSeconds = seconds
				continue
			}
			return parseError(req, "unknown option: "+token)
		}
	}

	return validate(req)
}

// validate applies the cross-token rules in order; the first failure
// wins, regardless of the order the tokens appeared in.
func validate(req *models.CatchupRequest) *models.CatchupRequest {
	if req.ThreadTS != "" {
		if req.FromTS != "" || req.ToTS != "" || req.HasDuration {
			return parseError(req, "in: cannot be combined with from:, to: or a duration")
		}
		return req
	}
	if req.ToTS != "" && req.FromTS == "" && !req.HasDuration {
		return parseError(req, "to: requires from: or a duration")
	}
	if req.FromTS != "" && req.ToTS != "" && tsFloat(req.FromTS) >= tsFloat(req.ToTS) {
		return parseError(req, "from: must be earlier than to:")
	}
	if !req.HasDuration && req.FromTS == "" {
		req.Mode = models.ModeHelp
	}
	return req
}

func parseError(req *models.CatchupRequest, reason string) *models.CatchupRequest {
	req.Mode = models.ModeError
	req.ErrorReason = reason
	return req
}

func parseChannelList(value string) []string {
	var channels []string
	for _, name := range strings.Split(value, ",") {
		name = strings.TrimPrefix(strings.TrimSpace(name), "#")
		if name != "" {
			channels = append(channels, name)
		}
	}
	return channels
}
