package clients

// SlackAPIError carries the raw error code returned by the Slack Web API,
// for example "not_in_channel" or "channel_not_found".
type SlackAPIError struct {
	Code string
}

func (e *SlackAPIError) Error() string {
	return e.Code
}

type SlackAuthTestResponse struct {
	UserID string
	TeamID string
}

type SlackReaction struct {
	Name  string
	Count int
}

// SlackFile describes a file attachment visible in conversation history.
type SlackFile struct {
	ID                 string
	Name               string
	Title              string
	URLPrivateDownload string
}

// SlackMessage is one raw history entry before filtering and conversion.
type SlackMessage struct {
	TS         string
	ThreadTS   string
	User       string
	Username   string
	BotID      string
	SubType    string
	Text       string
	ReplyCount int
	Reactions  []SlackReaction
	Files      []SlackFile
}

type SlackChannel struct {
	ID        string
	Name      string
	IsChannel bool
	IsPrivate bool
	IsIM      bool
	IsMember  bool
}

type SlackUser struct {
	ID          string
	Name        string
	RealName    string
	DisplayName string
	IsBot       bool
}

// HistoryParameters selects a window of channel history. Oldest and
// Latest are Slack timestamps; both bounds are inclusive when Inclusive
// is set.
type HistoryParameters struct {
	ChannelID string
	Oldest    string
	Latest    string
	Limit     int
	Cursor    string
	Inclusive bool
}

type RepliesParameters struct {
	ChannelID string
	Timestamp string
	Limit     int
	Cursor    string
}

// HistoryPage is one page of a paginated history or replies call.
type HistoryPage struct {
	Messages   []SlackMessage
	HasMore    bool
	NextCursor string
}

type UploadFileParameters struct {
	ChannelID string
	Path      string
	Filename  string
	Title     string
	FileSize  int
}
