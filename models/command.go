package models

// SlashCommand is the subset of the Slack slash-command payload the
// dispatcher needs.
type SlashCommand struct {
	UserID    string
	ChannelID string
	Text      string
}
