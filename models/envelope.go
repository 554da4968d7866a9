package models

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	EnvelopeVersion = "1.0"
	EnvelopeTypeJob = "job"
)

// EnvelopeRequest carries the metadata of the originating command.
type EnvelopeRequest struct {
	UserID      string `json:"user_id"`
	CommandText string `json:"command_text"`
	RequestedAt string `json:"requested_at"`
}

// JobEnvelope is the versioned document exchanged between the bot and the
// worker through the mailbox DM. It is identified by the Slack file id
// assigned at upload time, never by a self-assigned id.
type JobEnvelope struct {
	Version  string              `json:"version"`
	Type     string              `json:"type"`
	Request  EnvelopeRequest     `json:"request"`
	Channels []*CollectionResult `json:"channels"`
}

func NewJobEnvelope(userID, commandText string, results []*CollectionResult) *JobEnvelope {
	return &JobEnvelope{
		Version: EnvelopeVersion,
		Type:    EnvelopeTypeJob,
		Request: EnvelopeRequest{
			UserID:      userID,
			CommandText: commandText,
			RequestedAt: time.Now().UTC().Format(time.RFC3339),
		},
		Channels: results,
	}
}

func (e *JobEnvelope) Marshal() ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}

// ParseJobEnvelope decodes an envelope document. Envelopes of an unknown
// type are rejected; importance scores are recomputed from the raw counts
// rather than trusted from the wire.
func ParseJobEnvelope(data []byte) (*JobEnvelope, error) {
	var env JobEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode job envelope: %w", err)
	}
	if env.Type != EnvelopeTypeJob {
		return nil, fmt.Errorf("unknown envelope type: %q", env.Type)
	}
	for _, ch := range env.Channels {
		for _, msg := range ch.Messages {
			rescore(msg)
		}
	}
	return &env, nil
}

func rescore(m *Message) {
	m.ImportanceScore = ComputeImportanceScore(m.ReplyCount, m.ReactionCount)
	if m.ThreadMessages == nil {
		m.ThreadMessages = []*Message{}
	}
	for _, reply := range m.ThreadMessages {
		rescore(reply)
	}
}
