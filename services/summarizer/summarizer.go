package summarizer

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"catchup/clients"
	"catchup/models"
)

const summarySystemPrompt = `You are an expert at summarizing Slack channel messages.
Analyze the given messages and produce a structured summary in the format below.

Rules:
1. Keep every item short and to the point.
2. Include the original message link for every item, formatted as [source↗](link).
3. Prioritize messages with high importance (many replies or reactions).
4. Omit any section with no content.
5. If there are no messages or nothing worth summarizing, reply "No notable updates."

Output format:
🔴 *Action needed*
• item [source↗](link)

📌 *Decisions*
• item [source↗](link)

📢 *Announcements*
• item [source↗](link)

💬 *Discussions*
• item [source↗](link)`

const (
	// maxContextChars bounds the serialized per-channel context handed
	// to the model. Over budget, the channel's messages are re-ranked by
	// importance and truncated to the configured limit.
	maxContextChars = 50000

	// DefaultTruncateLimit applies on the interactive summarization path.
	DefaultTruncateLimit = 200
	// AsyncTruncateLimit applies on the worker path.
	AsyncTruncateLimit = 100

	// summaryTimeout is the hard bound on one external summarizer call.
	summaryTimeout = 2 * time.Minute

	importanceHighWater = 5
	channelSeparator    = "\n────────────────────────────────────────\n"
)

// Summarizer turns collection results into a digest via the external
// summarization dependency.
type Summarizer struct {
	client        clients.SummarizerClient
	truncateLimit int
}

func NewSummarizer(client clients.SummarizerClient, truncateLimit int) *Summarizer {
	if truncateLimit <= 0 {
		truncateLimit = DefaultTruncateLimit
	}
	return &Summarizer{
		client:        client,
		truncateLimit: truncateLimit,
	}
}

// Summarize produces the digest for one channel. Collection errors and
// empty windows short-circuit without calling the model.
func (s *Summarizer) Summarize(ctx context.Context, result *models.CollectionResult) (string, error) {
	if result.Error != "" {
		return fmt.Sprintf("❌ Collection failed for #%s: %s", result.ChannelName, result.Error), nil
	}
	if len(result.Messages) == 0 {
		return fmt.Sprintf("📭 No new messages in #%s for the requested window.", result.ChannelName), nil
	}

	messages := result.Messages
	promptContext := BuildContext(messages)
	truncationNotice := ""
	if len(promptContext) > maxContextChars {
		messages = TruncateByImportance(result.Messages, s.truncateLimit)
		promptContext = BuildContext(messages)
		truncationNotice = fmt.Sprintf(
			"\n\n⚠️ Too many messages - only the top %d by importance were summarized (%d total).",
			len(messages), result.TotalCount)
		log.Printf("⚠️ Context for #%s over budget, truncated %d -> %d messages",
			result.ChannelName, result.TotalCount, len(messages))
	}

	userPrompt := fmt.Sprintf(
		"Messages from the #%s channel.\nWindow: %s ~ %s\n%d message(s) in total.\n\n%s\n\nSummarize the messages above using the structured format.",
		result.ChannelName, result.StartTime, result.EndTime, len(messages), promptContext)

	callCtx, cancel := context.WithTimeout(ctx, summaryTimeout)
	defer cancel()
	summary, err := s.client.CreateSummary(callCtx, summarySystemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("summarization failed for #%s: %w", result.ChannelName, err)
	}

	header := fmt.Sprintf("📬 *#%s* summary (%s ~ %s)\n\n", result.ChannelName, result.StartTime, result.EndTime)
	return header + summary + truncationNotice, nil
}

// SummarizeAll renders the consolidated reply for a multi-channel job,
// one section per channel.
func (s *Summarizer) SummarizeAll(ctx context.Context, results []*models.CollectionResult) (string, error) {
	if len(results) == 1 {
		return s.Summarize(ctx, results[0])
	}
	sections := make([]string, 0, len(results))
	for _, result := range results {
		section, err := s.Summarize(ctx, result)
		if err != nil {
			return "", err
		}
		sections = append(sections, section)
	}
	return strings.Join(sections, channelSeparator), nil
}

// TruncateByImportance keeps the top limit messages ranked by importance
// score descending. The retained subset keeps importance order; it is
// deliberately not re-sorted chronologically before being fed to the
// model.
func TruncateByImportance(messages []*models.Message, limit int) []*models.Message {
	ranked := make([]*models.Message, len(messages))
	copy(ranked, messages)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ImportanceScore > ranked[j].ImportanceScore
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// BuildContext serializes messages into the model prompt.
func BuildContext(messages []*models.Message) string {
	var b strings.Builder
	for _, msg := range messages {
		if msg.ImportanceScore >= importanceHighWater {
			b.WriteString("★")
		}
		fmt.Fprintf(&b, "[%s] (replies: %d, reactions: %d)\n", msg.UserName, msg.ReplyCount, msg.ReactionCount)
		fmt.Fprintf(&b, "Text: %s\n", msg.Text)
		fmt.Fprintf(&b, "Link: %s\n", msg.Permalink)
		if len(msg.ThreadMessages) > 0 {
			b.WriteString("Thread:\n")
			for _, reply := range msg.ThreadMessages {
				fmt.Fprintf(&b, "  └─ [%s]: %s\n", reply.UserName, reply.Text)
			}
		}
		b.WriteString("---\n")
	}
	return b.String()
}
