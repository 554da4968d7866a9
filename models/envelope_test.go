package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobEnvelope_RoundTrip(t *testing.T) {
	results := []*CollectionResult{
		{
			ChannelName: "general",
			StartTime:   "2025-01-15 00:00",
			EndTime:     "2025-01-18 00:00",
			TotalCount:  2,
			Messages: []*Message{
				NewMessage(Message{TS: "1726053600.000100", Text: "hello", ReplyCount: 1}),
				NewMessage(Message{TS: "1726053601.000100", Text: "world", ReactionCount: 3}),
			},
		},
	}
	env := NewJobEnvelope("U123", "3d --threads", results)
	assert.Equal(t, EnvelopeVersion, env.Version)
	assert.Equal(t, EnvelopeTypeJob, env.Type)
	assert.NotEmpty(t, env.Request.RequestedAt)

	data, err := env.Marshal()
	require.NoError(t, err)

	parsed, err := ParseJobEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, "U123", parsed.Request.UserID)
	assert.Equal(t, "3d --threads", parsed.Request.CommandText)
	require.Len(t, parsed.Channels, 1)
	require.Len(t, parsed.Channels[0].Messages, 2)
	assert.Equal(t, "hello", parsed.Channels[0].Messages[0].Text)
	assert.Equal(t, 2, parsed.Channels[0].Messages[0].ImportanceScore)
	assert.Equal(t, 3, parsed.Channels[0].Messages[1].ImportanceScore)
}

func TestParseJobEnvelope_RecomputesScores(t *testing.T) {
	// A doctored score on the wire must be ignored, thread replies
	// included.
	data := []byte(`{
		"version": "1.0",
		"type": "job",
		"request": {"user_id": "U123", "command_text": "1d", "requested_at": "2025-01-15T10:00:00Z"},
		"channels": [{
			"channel_name": "general",
			"start_time": "", "end_time": "", "total_count": 1,
			"messages": [{
				"ts": "1726053600.000100",
				"reply_count": 2,
				"reaction_count": 1,
				"importance_score": 9999,
				"thread_messages": [{
					"ts": "1726053601.000100",
					"reply_count": 0,
					"reaction_count": 4,
					"importance_score": -5
				}]
			}]
		}]
	}`)
	env, err := ParseJobEnvelope(data)
	require.NoError(t, err)
	msg := env.Channels[0].Messages[0]
	assert.Equal(t, 5, msg.ImportanceScore)
	require.Len(t, msg.ThreadMessages, 1)
	assert.Equal(t, 4, msg.ThreadMessages[0].ImportanceScore)
	assert.NotNil(t, msg.ThreadMessages[0].ThreadMessages)
}

func TestParseJobEnvelope_Rejections(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: `{"version": "1.0"`},
		{name: "wrong type", data: `{"version": "1.0", "type": "note", "channels": []}`},
		{name: "missing type", data: `{"version": "1.0", "channels": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJobEnvelope([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestParseJobEnvelope_ErrorResult(t *testing.T) {
	data := []byte(`{
		"version": "1.0",
		"type": "job",
		"request": {"user_id": "U123", "command_text": "1d", "requested_at": "2025-01-15T10:00:00Z"},
		"channels": [{
			"channel_name": "private-stuff",
			"start_time": "", "end_time": "", "total_count": 0,
			"error": "not a member of the channel",
			"messages": []
		}]
	}`)
	env, err := ParseJobEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, "not a member of the channel", env.Channels[0].Error)
	assert.Empty(t, env.Channels[0].Messages)
}
