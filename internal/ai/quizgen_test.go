package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validQuiz = `[
	{"prompt": "What is 2+2?", "choices": ["3", "4", "5", "6"], "answer": 1},
	{"prompt": "Capital of France?", "choices": ["Paris", "Lyon"], "answer": 0}
]`

func TestParseQuizJSONPlain(t *testing.T) {
	questions, err := parseQuizJSON(validQuiz)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "What is 2+2?", questions[0].Prompt)
	assert.Equal(t, 1, questions[0].Answer)
}

func TestParseQuizJSONFenced(t *testing.T) {
	questions, err := parseQuizJSON("```json\n" + validQuiz + "\n```")
	require.NoError(t, err)
	assert.Len(t, questions, 2)

	questions, err = parseQuizJSON("```\n" + validQuiz + "\n```")
	require.NoError(t, err)
	assert.Len(t, questions, 2)
}

func TestParseQuizJSONInvalid(t *testing.T) {
	_, err := parseQuizJSON("the model decided to chat instead")
	assert.Error(t, err)
}

func TestParseQuizJSONMissingPrompt(t *testing.T) {
	_, err := parseQuizJSON(`[{"prompt": "", "choices": ["a", "b"], "answer": 0}]`)
	assert.ErrorContains(t, err, "malformed")
}

func TestParseQuizJSONTooFewChoices(t *testing.T) {
	_, err := parseQuizJSON(`[{"prompt": "Only one?", "choices": ["a"], "answer": 0}]`)
	assert.ErrorContains(t, err, "malformed")
}

func TestParseQuizJSONAnswerOutOfRange(t *testing.T) {
	_, err := parseQuizJSON(`[{"prompt": "Pick", "choices": ["a", "b"], "answer": 2}]`)
	assert.ErrorContains(t, err, "out of range")
}
