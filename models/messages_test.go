package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeImportanceScore(t *testing.T) {
	tests := []struct {
		name      string
		replies   int
		reactions int
		score     int
	}{
		{name: "zero activity", replies: 0, reactions: 0, score: 0},
		{name: "replies weigh double", replies: 3, reactions: 0, score: 6},
		{name: "reactions weigh single", replies: 0, reactions: 5, score: 5},
		{name: "mixed", replies: 2, reactions: 3, score: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.score, ComputeImportanceScore(tt.replies, tt.reactions))
		})
	}
}

func TestNewMessage_DerivesScore(t *testing.T) {
	msg := NewMessage(Message{
		TS:              "1726053600.000100",
		ReplyCount:      4,
		ReactionCount:   1,
		ImportanceScore: 999,
	})
	assert.Equal(t, 9, msg.ImportanceScore)
	require.NotNil(t, msg.ThreadMessages)
	assert.Empty(t, msg.ThreadMessages)
}

func TestTSDecimal(t *testing.T) {
	msg := &Message{TS: "1726053600.000100"}
	assert.Equal(t, "1726053600.0001", msg.TSDecimal().String())

	malformed := &Message{TS: "not-a-ts"}
	assert.True(t, malformed.TSDecimal().IsZero())
}

func TestSortChronologically(t *testing.T) {
	messages := []*Message{
		{TS: "1726053600.000200", Text: "third"},
		{TS: "1726053600.000100", Text: "second"},
		{TS: "1726053599.999999", Text: "first"},
	}
	SortChronologically(messages)
	assert.Equal(t, "first", messages[0].Text)
	assert.Equal(t, "second", messages[1].Text)
	assert.Equal(t, "third", messages[2].Text)
}

func TestSortChronologically_MicrosecondPrecision(t *testing.T) {
	// float64 rounds these two apart incorrectly; decimal keys must not.
	messages := []*Message{
		{TS: "1726053600.123457", Text: "late"},
		{TS: "1726053600.123456", Text: "early"},
	}
	SortChronologically(messages)
	assert.Equal(t, "early", messages[0].Text)
	assert.Equal(t, "late", messages[1].Text)
}

func TestSortChronologically_StableForEqualKeys(t *testing.T) {
	messages := []*Message{
		{TS: "1726053600.000100", Text: "a"},
		{TS: "1726053600.000100", Text: "b"},
	}
	SortChronologically(messages)
	assert.Equal(t, "a", messages[0].Text)
	assert.Equal(t, "b", messages[1].Text)
}
