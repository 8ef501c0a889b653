package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionsJSONDirect(t *testing.T) {
	actions, err := parseActionsJSON(`[{"action":"click","selector":"#apply","highlightIndex":3,"checkpoint":true}]`)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "click", actions[0].Type)
	assert.Equal(t, "#apply", actions[0].Selector)
	assert.Equal(t, 3, actions[0].HighlightIndex)
	assert.True(t, actions[0].Checkpoint)
}

func TestParseActionsJSONWithSurroundingText(t *testing.T) {
	response := "Here is the plan:\n```json\n[{\"action\":\"type\",\"selector\":\"#username\",\"text\":\"me@example.com\"}]\n```\nDone."
	actions, err := parseActionsJSON(response)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "type", actions[0].Type)
	assert.Equal(t, "me@example.com", actions[0].Text)
}

func TestParseActionsJSONEmptyArray(t *testing.T) {
	actions, err := parseActionsJSON("The task is complete. []")
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestParseActionsJSONNoArray(t *testing.T) {
	_, err := parseActionsJSON("I cannot help with that.")
	assert.Error(t, err)
}

func TestParseActionsJSONUnbalanced(t *testing.T) {
	_, err := parseActionsJSON(`[{"action":"click"`)
	assert.Error(t, err)
}

func TestParseCVJSON(t *testing.T) {
	response := `Sure, here it is:
{
  "fullName": "Jordan Lee",
  "email": "jordan@example.com",
  "phone": "+1 555 0100",
  "skills": ["Go", "SQL"],
  "experience": [{"title": "Engineer", "company": "Acme", "startDate": "2021", "endDate": "2024"}]
}`
	cv, err := parseCVJSON(response)
	require.NoError(t, err)
	assert.Equal(t, "Jordan Lee", cv.FullName)
	assert.Equal(t, []string{"Go", "SQL"}, cv.Skills)
	require.Len(t, cv.Experience, 1)
	assert.Equal(t, "Acme", cv.Experience[0].Company)
}

func TestParseCVJSONNested(t *testing.T) {
	// Nested braces inside the object must not confuse extraction.
	response := `prefix {"fullName":"A","customIgnored":{"x":"{y}"}} suffix`
	cv, err := parseCVJSON(response)
	require.NoError(t, err)
	assert.Equal(t, "A", cv.FullName)
}
