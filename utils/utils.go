package utils

import (
	"regexp"
)

var (
	markdownLinkRegex = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	headingRegex      = regexp.MustCompile(`(?m)^#+\s*(.+)$`)
	boldRegex         = regexp.MustCompile(`\*\*(.+?)\*\*`)
)

// ConvertMarkdownToSlack rewrites common markdown produced by the model
// into Slack mrkdwn before the summary is posted.
func ConvertMarkdownToSlack(message string) string {
	// Links first, so other rules never touch the URL part:
	// [text](url) -> <url|text>
	result := markdownLinkRegex.ReplaceAllString(message, "<$2|$1>")

	// Headings become bold lines, unwrapping any bold already inside.
	result = headingRegex.ReplaceAllStringFunc(result, func(match string) string {
		content := headingRegex.ReplaceAllString(match, "$1")
		content = boldRegex.ReplaceAllString(content, "$1")
		return "*" + content + "*"
	})

	// Remaining **bold** becomes *bold*.
	return boldRegex.ReplaceAllString(result, "*$1*")
}
