package models

type RequestMode string

const (
	ModeHelp    RequestMode = "help"
	ModeError   RequestMode = "error"
	ModeCollect RequestMode = "collect"
)

// CatchupRequest is a fully parsed /catchup invocation. Exactly one of
// the three collect shapes is populated: a relative duration, an explicit
// from/to pair, or a thread target.
type CatchupRequest struct {
	UserID      string
	RawText     string
	Mode        RequestMode
	ErrorReason string

	HasDuration     bool
	DurationSeconds int64

	FromTS      string
	FromChannel string // set when from: was a permalink
	ToTS        string

	ThreadChannel string
	ThreadTS      string

	Channels       []string
	IncludeThreads bool
	IncludeBots    bool
}

// IsThreadRequest reports whether the request targets a single thread.
func (r *CatchupRequest) IsThreadRequest() bool {
	return r.ThreadTS != ""
}
