package mabot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBotResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "numbered list markers get one space",
			input:    "1.item one\n2.item two",
			expected: "1. item one\n2. item two",
		},
		{
			name:     "numbered list markers with excess space collapse",
			input:    "1.   item one",
			expected: "1. item one",
		},
		{
			name:     "bold label colon moves inside the span",
			input:    "**Label**:",
			expected: "**Label:**",
		},
		{
			name:     "sentence period gets a following space",
			input:    "First.Second",
			expected: "First. Second",
		},
		{
			name:     "plain text unchanged",
			input:    "Hola, soy Ave Europa",
			expected: "Hola, soy Ave Europa",
		},
		{
			name:     "trailing whitespace after question is folded",
			input:    "¿Seguimos?  ",
			expected: "¿Seguimos?\n\n" + FollowUpPrompt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatBotResponse(tt.input))
		})
	}
}

func TestFormatBotResponseTrailingQuestion(t *testing.T) {
	out := FormatBotResponse("Would you like me to continue?")
	assert.True(t, strings.HasSuffix(out, "continue?\n\n¿Te gustaría que profundice en algún aspecto específico?"))
}

func TestFormatBotResponseNoQuestionNoPrompt(t *testing.T) {
	out := FormatBotResponse("A statement.")
	assert.NotContains(t, out, FollowUpPrompt)
}

func TestFormatPipelineStages(t *testing.T) {
	// Each stage is pure and independently testable.
	stages := map[string]struct {
		input    string
		expected string
	}{
		"numbered-list spacing":       {"3.tres", "3. tres"},
		"bold-label colon":            {"**Meta**: datos", "**Meta:** datos"},
		"sentence spacing":            {"fin.Y", "fin. Y"},
		"trailing-question follow-up": {"¿Por qué?", "¿Por qué?\n\n" + FollowUpPrompt},
	}

	for _, stage := range formatPipeline {
		tc, ok := stages[stage.name]
		if !ok {
			t.Fatalf("no test case for stage %q", stage.name)
		}
		assert.Equal(t, tc.expected, stage.apply(tc.input), "stage %q", stage.name)
	}
}

func TestStripBotPrefix(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		username string
		expected string
	}{
		{"exact prefix", "*aveeuropa*: hola", "aveeuropa", "hola"},
		{"case insensitive", "*AveEuropa*:  hola", "aveeuropa", "hola"},
		{"no prefix", "hola", "aveeuropa", "hola"},
		{"prefix mid-string kept", "dice *aveeuropa*: hola", "aveeuropa", "dice *aveeuropa*: hola"},
		{"other bot kept", "*otherbot*: hola", "aveeuropa", "*otherbot*: hola"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripBotPrefix(tt.input, tt.username))
		})
	}
}
