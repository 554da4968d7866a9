package parser

// HelpMessage is the usage text sent back for bare, flags-only, or
// malformed invocations.
func HelpMessage() string {
	return `📖 *Catchup Bot usage*

*Basic commands*
• ` + "`/catchup 3d`" + ` - summarize the last 3 days
• ` + "`/catchup 12h`" + ` - summarize the last 12 hours
• ` + "`/catchup 1w`" + ` - summarize the last week

*Explicit time ranges*
• ` + "`/catchup from:<link>`" + ` - from that message until now
• ` + "`/catchup from:<YYYY-MM-DD>`" + ` - from that date until now
• ` + "`/catchup from:<start> to:<end>`" + ` - a bounded range (links or dates)
• ` + "`/catchup 3d to:<YYYY-MM-DD>`" + ` - the 3 days leading up to that date

*Thread digest*
• ` + "`/catchup in:<link>`" + ` - summarize only that message's thread

*Options*
• ` + "`--threads`" + ` - include thread replies
• ` + "`--include-bots`" + ` - include bot messages (excluded by default)
• ` + "`--channels:#ch1,#ch2`" + ` - target multiple channels

*Examples*
` + "```" + `
/catchup 3d
/catchup 1w --threads
/catchup 3d --channels:#backend,#frontend
/catchup from:https://example.slack.com/archives/C0123/p1234567890123456
/catchup from:2026-01-20 to:2026-01-25
` + "```"
}
