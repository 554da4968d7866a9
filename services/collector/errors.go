package collector

import (
	"errors"
	"fmt"

	"catchup/clients"
)

type CollectorErrorKind string

const (
	// ErrKindUpstream is a transient platform failure, surfaced with the
	// raw Slack error code and never retried by the collector.
	ErrKindUpstream CollectorErrorKind = "upstream"
	// ErrKindNotAMember means the collector identity cannot read the
	// target channel and auto-join is not possible.
	ErrKindNotAMember CollectorErrorKind = "not_a_member"
	// ErrKindThreadNotFound means the referenced thread root does not
	// exist or is not accessible.
	ErrKindThreadNotFound CollectorErrorKind = "thread_not_found"
)

// CollectorError is the tagged failure variant returned by collection
// calls. Kind is exhaustively matchable; Detail carries the raw error
// code, or the channel name for membership failures.
type CollectorError struct {
	Kind   CollectorErrorKind
	Detail string
}

func (e *CollectorError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// UserMessage renders the failure for a Slack reply.
func (e *CollectorError) UserMessage() string {
	switch e.Kind {
	case ErrKindNotAMember:
		return fmt.Sprintf("cannot read #%s - it is private, invite the bot with `/invite @catchup`", e.Detail)
	case ErrKindThreadNotFound:
		return "the referenced thread could not be found"
	default:
		return fmt.Sprintf("Slack API error: %s", e.Detail)
	}
}

// asCollectorError converts any failure into the tagged variant.
func asCollectorError(err error) *CollectorError {
	var collErr *CollectorError
	if errors.As(err, &collErr) {
		return collErr
	}
	var apiErr *clients.SlackAPIError
	if errors.As(err, &apiErr) {
		return &CollectorError{Kind: ErrKindUpstream, Detail: apiErr.Code}
	}
	return &CollectorError{Kind: ErrKindUpstream, Detail: err.Error()}
}

// asThreadError maps missing-target codes onto the thread taxonomy.
func asThreadError(err error) *CollectorError {
	var apiErr *clients.SlackAPIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case "thread_not_found", "message_not_found", "channel_not_found":
			return &CollectorError{Kind: ErrKindThreadNotFound, Detail: apiErr.Code}
		}
	}
	return asCollectorError(err)
}

// isNotInChannel detects the membership failure that triggers the
// auto-join path.
func isNotInChannel(err error) bool {
	var apiErr *clients.SlackAPIError
	return errors.As(err, &apiErr) && apiErr.Code == "not_in_channel"
}
