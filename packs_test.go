package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePack(t *testing.T, dir, name, content string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadPack(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "capitals.json", `{
		"title": "Capitals",
		"items": [
			{"prompt": "Capital of France?", "choices": ["Paris", "Lyon", "Nice"], "answerIndex": 0},
			{"front": "Capital of Japan?", "back": "Tokyo"}
		]
	}`)

	title, questions, err := loadPack(dir, "capitals.json")
	require.NoError(t, err)
	assert.Equal(t, "Capitals", title)
	require.Len(t, questions, 2)

	assert.Equal(t, "Capital of France?", questions[0].Prompt)
	assert.Equal(t, 0, questions[0].AnswerIndex)

	// Flashcard items get synthesized choices with the answer at index 0.
	assert.Equal(t, "Capital of Japan?", questions[1].Prompt)
	require.Len(t, questions[1].Choices, 4)
	assert.Equal(t, "Tokyo", questions[1].Choices[0])
	assert.Equal(t, 0, questions[1].AnswerIndex)
}

func TestLoadPackTitleFallsBackToFilename(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "untitled.json", `{"items": [{"front": "Q?", "back": "A"}]}`)

	title, _, err := loadPack(dir, "untitled.json")
	require.NoError(t, err)
	assert.Equal(t, "untitled.json", title)
}

func TestLoadPackMissing(t *testing.T) {
	_, _, err := loadPack(t.TempDir(), "nope.json")
	require.ErrorIs(t, err, ErrPackNotFound)
}

func TestLoadPackIgnoresPathTraversal(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "safe.json", `{"items": [{"front": "Q?", "back": "A"}]}`)

	_, _, err := loadPack(dir, "../../../etc/passwd")
	require.ErrorIs(t, err, ErrPackNotFound)

	_, questions, err := loadPack(dir, "nested/../safe.json")
	require.NoError(t, err)
	assert.Len(t, questions, 1)
}

func TestLoadPackEmpty(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "empty.json", `{"title": "Empty", "items": []}`)

	_, _, err := loadPack(dir, "empty.json")
	require.ErrorIs(t, err, ErrEmptyPack)
}

func TestLoadPackRejectsBadItems(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "badindex.json", `{"items": [{"prompt": "Q?", "choices": ["a", "b"], "answerIndex": 5}]}`)
	writePack(t, dir, "noanswer.json", `{"items": [{"prompt": "Q?"}]}`)

	_, _, err := loadPack(dir, "badindex.json")
	require.Error(t, err)

	_, _, err = loadPack(dir, "noanswer.json")
	require.Error(t, err)
}

func TestSelectQuestions(t *testing.T) {
	source := testQuestions(10)

	for _, tc := range []struct {
		name  string
		count int
		want  int
	}{
		{"zero means all", 0, 10},
		{"negative clamps to all", -3, 10},
		{"subset", 4, 4},
		{"exact", 10, 10},
		{"beyond available clamps", 99, 10},
	} {
		t.Run(tc.name, func(t *testing.T) {
			picked := selectQuestions(source, tc.count)
			assert.Len(t, picked, tc.want)

			// Drawn without repetition.
			seen := make(map[string]bool)
			for _, q := range picked {
				assert.False(t, seen[q.Prompt], "question %q drawn twice", q.Prompt)
				seen[q.Prompt] = true
			}
		})
	}
}
