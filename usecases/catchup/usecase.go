package catchup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"catchup/clients"
	"catchup/core"
	"catchup/models"
	"catchup/parser"
	"catchup/services/collector"
	"catchup/services/mailbox"
)

// CatchupUseCase is the interactive dispatcher: it parses a slash
// command, collects the requested channels sequentially, and hands the
// result to the worker through the mailbox.
type CatchupUseCase struct {
	slackClient clients.SlackClient
	mailbox     *mailbox.MailboxService

	// collectorFactory builds a fresh collector per invocation so the
	// identity caches never outlive one command.
	collectorFactory func() *collector.MessageCollector
}

func NewCatchupUseCase(slackClient clients.SlackClient, mailboxService *mailbox.MailboxService) *CatchupUseCase {
	return &CatchupUseCase{
		slackClient: slackClient,
		mailbox:     mailboxService,
		collectorFactory: func() *collector.MessageCollector {
			return collector.NewMessageCollector(slackClient)
		},
	}
}

// HandleCommand processes one /catchup invocation end to end.
func (u *CatchupUseCase) HandleCommand(ctx context.Context, cmd models.SlashCommand) error {
	reqID := core.NewID("req")
	text := strings.TrimSpace(cmd.Text)
	log.Printf("⚡ [%s] /catchup from %s in %s: %q", reqID, cmd.UserID, cmd.ChannelID, text)

	if strings.EqualFold(text, "clear") {
		msgs, files, err := u.mailbox.Clear(ctx, cmd.UserID)
		if err != nil {
			log.Printf("❌ [%s] Failed to clear mailbox: %v", reqID, err)
			return err
		}
		log.Printf("✅ [%s] Mailbox cleared: %d message(s), %d file(s)", reqID, msgs, files)
		return nil
	}

	req := parser.Parse(cmd.UserID, text)
	switch req.Mode {
	case models.ModeHelp:
		_, err := u.mailbox.SendDM(ctx, cmd.UserID, parser.HelpMessage())
		return err
	case models.ModeError:
		_, err := u.mailbox.SendDM(ctx, cmd.UserID, "❌ "+req.ErrorReason+"\n\n"+parser.HelpMessage())
		return err
	}

	statusTS, err := u.mailbox.SendDM(ctx, cmd.UserID, mailbox.StatusCollecting)
	if err != nil {
		log.Printf("⚠️ [%s] Failed to post status message: %v", reqID, err)
	}

	results := u.collect(ctx, u.collectorFactory(), req, cmd)
	u.mailbox.DeleteDM(ctx, cmd.UserID, statusTS)
	if len(results) == 0 {
		log.Printf("⚠️ [%s] No channels collected, nothing to hand off", reqID)
		return nil
	}

	env := models.NewJobEnvelope(cmd.UserID, text, results)
	filename, err := u.mailbox.UploadEnvelope(ctx, cmd.UserID, env)
	if err != nil {
		log.Printf("❌ [%s] Failed to upload job envelope: %v", reqID, err)
		u.mailbox.SendDM(ctx, cmd.UserID, mailbox.StatusUploadFailed)
		return err
	}
	u.mailbox.SendDM(ctx, cmd.UserID, mailbox.StatusCollected)
	log.Printf("✅ [%s] Job envelope %s uploaded for %s", reqID, filename, cmd.UserID)
	return nil
}

// collect runs the collection phase. A failing channel is reported
// immediately and never aborts its siblings.
func (u *CatchupUseCase) collect(
	ctx context.Context,
	coll *collector.MessageCollector,
	req *models.CatchupRequest,
	cmd models.SlashCommand,
) []*models.CollectionResult {
	if req.IsThreadRequest() {
		result, err := coll.CollectThread(ctx, req.ThreadChannel, req.ThreadTS, req.IncludeBots)
		if err != nil {
			u.reportCollectionError(ctx, cmd.UserID, err)
			return nil
		}
		return []*models.CollectionResult{result}
	}

	targets := u.resolveTargets(ctx, coll, req, cmd)
	if len(targets) == 0 {
		return nil
	}

	oldest, latest := resolveWindow(req, time.Now())
	var results []*models.CollectionResult
	for _, channelID := range targets {
		result, err := coll.CollectChannel(ctx, channelID, oldest, latest, req.IncludeThreads, req.IncludeBots)
		if err != nil {
			u.reportCollectionError(ctx, cmd.UserID, err)
			continue
		}
		results = append(results, result)
	}
	return results
}

// resolveTargets determines which channels to collect: the override
// list, else the invoking channel; a from: permalink pins collection to
// its own channel.
func (u *CatchupUseCase) resolveTargets(
	ctx context.Context,
	coll *collector.MessageCollector,
	req *models.CatchupRequest,
	cmd models.SlashCommand,
) []string {
	targets := []string{cmd.ChannelID}
	if len(req.Channels) > 0 {
		targets = nil
		for _, name := range req.Channels {
			if channelID, ok := coll.LookupChannelID(ctx, name).Get(); ok {
				targets = append(targets, channelID)
			} else {
				u.mailbox.SendDM(ctx, cmd.UserID, fmt.Sprintf("⚠️ Channel not found: #%s", name))
			}
		}
		if len(targets) == 0 {
			return nil
		}
	}
	if req.FromChannel != "" {
		targets = []string{req.FromChannel}
	}
	return targets
}

func (u *CatchupUseCase) reportCollectionError(ctx context.Context, userID string, err error) {
	var collErr *collector.CollectorError
	if errors.As(err, &collErr) {
		u.mailbox.SendDM(ctx, userID, "⚠️ "+collErr.UserMessage())
		return
	}
	u.mailbox.SendDM(ctx, userID, "⚠️ "+err.Error())
}

// resolveWindow derives the [oldest, latest] Slack timestamp bounds. A
// duration is anchored at to: when present, otherwise at now.
func resolveWindow(req *models.CatchupRequest, now time.Time) (oldest, latest string) {
	latestF := float64(now.Unix())
	latest = strconv.FormatInt(now.Unix(), 10)
	if req.ToTS != "" {
		latest = req.ToTS
		latestF = tsFloat(req.ToTS)
	}
	if req.FromTS != "" {
		oldest = req.FromTS
	} else {
		oldest = strconv.FormatFloat(latestF-float64(req.DurationSeconds), 'f', 6, 64)
	}
	return oldest, latest
}

func tsFloat(ts string) float64 {
	f, _ := strconv.ParseFloat(ts, 64)
	return f
}
