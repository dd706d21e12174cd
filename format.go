package mabot

import "regexp"

// FollowUpPrompt is appended when a reply ends in a question, inviting
// the user to ask for more detail.
const FollowUpPrompt = "¿Te gustaría que profundice en algún aspecto específico?"

var (
	numberedListRe     = regexp.MustCompile(`(\d+\.)\s*`)
	boldColonRe        = regexp.MustCompile(`\*\*(.*?)\*\*:`)
	sentenceSpacingRe  = regexp.MustCompile(`\.(\w)`)
	trailingQuestionRe = regexp.MustCompile(`\?\s*$`)
)

// formatStage is one pure transform of the normalization pipeline.
type formatStage struct {
	name  string
	apply func(string) string
}

// formatPipeline normalizes bot replies for rendering. Order matters:
// list and label fixes run before sentence spacing, and the follow-up
// prompt is appended last so earlier stages never see it.
var formatPipeline = []formatStage{
	{"numbered-list spacing", func(s string) string {
		return numberedListRe.ReplaceAllString(s, "${1} ")
	}},
	{"bold-label colon", func(s string) string {
		return boldColonRe.ReplaceAllString(s, "**${1}:**")
	}},
	{"sentence spacing", func(s string) string {
		return sentenceSpacingRe.ReplaceAllString(s, ". ${1}")
	}},
	{"trailing-question follow-up", appendFollowUp},
}

// FormatBotResponse applies the normalization pipeline to a bot reply.
func FormatBotResponse(text string) string {
	for _, stage := range formatPipeline {
		text = stage.apply(text)
	}
	return text
}

func appendFollowUp(s string) string {
	if !trailingQuestionRe.MatchString(s) {
		return s
	}
	return trailingQuestionRe.ReplaceAllString(s, "?\n\n"+FollowUpPrompt)
}

// StripBotPrefix removes a leading "*username*: " marker the backend
// prepends when prefix_with_bot_name is set. Case-insensitive.
func StripBotPrefix(text, username string) string {
	re := regexp.MustCompile(`(?i)^\*` + regexp.QuoteMeta(username) + `\*:\s*`)
	return re.ReplaceAllString(text, "")
}
