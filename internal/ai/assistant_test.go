package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain json", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced no language", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripFences(tc.in))
		})
	}
}

func TestParseSuggestionsBareArray(t *testing.T) {
	drafts, err := ParseSuggestions(`[{"type":"task_reminder","title":"t","description":"d","priority":3}]`)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "task_reminder", drafts[0].Type)
	assert.Equal(t, 3, drafts[0].Priority)
}

func TestParseSuggestionsWrappedObject(t *testing.T) {
	drafts, err := ParseSuggestions(`{"suggestions":[{"type":"email_follow_up","title":"t","description":"d","actionData":{"messageId":"m1"}}]}`)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "m1", drafts[0].ActionData["messageId"])
}

func TestParseSuggestionsFencedWrapper(t *testing.T) {
	drafts, err := ParseSuggestions("```json\n{\"suggestions\":[]}\n```")
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestParseSuggestionsGarbage(t *testing.T) {
	_, err := ParseSuggestions("the model had a bad day")
	assert.Error(t, err)
}
