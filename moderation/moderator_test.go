package moderation

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const replacementChar = '*'

// TestModerator_Censor
// The dictionary uses specific words to avoid partial collisions (e.g., "he" inside "The")
func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	dictionary := []string{"badger", "snake", "mushroom"}
	mod, err := NewModerator(dictionary, replacementChar, log)
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
		words    []string
	}{
		{
			name:     "Simple word and space preservation",
			input:    "The badger is here",
			expected: "The ****** is here",
			words:    []string{"badger"},
		},
		{
			name:     "Multiple occurrences and preserved spacing",
			input:    "badger badger badger",
			expected: "****** ****** ******",
			words:    []string{"badger", "badger", "badger"},
		},
		{
			name: "Leet speak and internal punctuation",
			// B (index 9) . 4 . d . g . € r (index 20) -> 10 characters
			input:    "Look at B.4.d.g.€r !",
			expected: "Look at ********** !",
			words:    []string{"badger"},
		},
		{
			name:     "Uppercase and extreme noise",
			input:    "S-N-A-K-E is a B.A.D.G.E.R",
			expected: "********* is a ***********",
			words:    []string{"snake", "badger"},
		},
		{
			name:     "Accents and special characters (UTF-8)",
			input:    "Un été avec un badger",
			expected: "Un été avec un ******",
			words:    []string{"badger"},
		},
		{
			name:     "Word adjacent to trailing punctuation",
			input:    "I love badger!",
			expected: "I love ******!",
			words:    []string{"badger"},
		},
		{
			name:     "Nothing to censor",
			input:    "The relay is amazing",
			expected: "The relay is amazing",
			words:    nil,
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
			words:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, words := mod.Censor(tt.input)
			req.Equal(tt.expected, content, "test=%s,", tt.name)
			req.Equal(tt.words, words, "expected=%s,words=%s", tt.expected, words)
		})
	}
}

func TestModerator_CornerCases(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given real noise and not Leet Speak associated
	dictionary := []string{"...", ",,,", "", "badger"}

	mod, err := NewModerator(dictionary, replacementChar, log)
	req.NoError(err)

	// Then the sentence is censored
	input := "The badger is safe"
	expected := "The ****** is safe"
	content, words := mod.Censor(input)
	req.Equal(expected, content)
	req.Equal([]string{"badger"}, words)

	// Then real noise is uncensored
	input = "Hello ..."
	expected = "Hello ..."
	content, words = mod.Censor(input)
	req.Equal(expected, content)
	req.Nil(words)
}

func TestModerator_NoWords(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given an empty or pure noise dictionary
	for _, dictionary := range [][]string{nil, {}, {"", "..."}} {
		mod, err := NewModerator(dictionary, replacementChar, log)
		req.NoError(err)

		// Then every text passes through
		content, words := mod.Censor("The badger is here")
		req.Equal("The badger is here", content)
		req.Nil(words)
	}

	// And a nil moderator is a pass-through too
	var mod *Moderator
	content, words := mod.Censor("hello")
	req.Equal("hello", content)
	req.Nil(words)
}

func TestModerator_DelimiterIsLeet(t *testing.T) {
	req := require.New(t)
	mod, err := NewModerator([]string{"snail"}, '#', slog.Default())
	req.NoError(err)

	content, words := mod.Censor("a sna|l crawls")
	req.Equal("a ##### crawls", content)
	req.Equal([]string{"snail"}, words)
}

func TestNewModerator_LogsSetupOnly(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	log := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// Given a moderator built with two words, one of which is pure noise
	mod, err := NewModerator([]string{"badger", "--"}, replacementChar, log)
	req.NoError(err)
	req.Contains(out.String(), "Moderation enabled")
	req.Contains(out.String(), "words=1")
	out.Reset()

	// When a text is censored
	censored, words := mod.Censor("a badger")

	// Then the match is reported to the caller and nothing more is logged
	req.Equal("a ******", censored)
	req.Equal([]string{"badger"}, words)
	req.Empty(out.String())

	// And an empty dictionary says so once at construction
	_, err = NewModerator(nil, replacementChar, log)
	req.NoError(err)
	req.Contains(out.String(), "Moderation disabled")
}
