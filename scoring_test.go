package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreAnswer(t *testing.T) {
	q := Question{Prompt: "Q?", Choices: []string{"a", "b", "c"}, AnswerIndex: 2}

	points, streak, correct := scoreAnswer(q, 2, 0)
	assert.True(t, correct)
	assert.Equal(t, 10, points)
	assert.Equal(t, 1, streak)

	points, streak, correct = scoreAnswer(q, 2, 4)
	assert.True(t, correct)
	assert.Equal(t, 10, points)
	assert.Equal(t, 5, streak, "streak keeps building on consecutive correct answers")

	points, streak, correct = scoreAnswer(q, 0, 4)
	assert.False(t, correct)
	assert.Equal(t, -1, points)
	assert.Equal(t, 0, streak, "a wrong answer resets the streak")
}

func TestClampSeconds(t *testing.T) {
	for _, tc := range []struct {
		name      string
		requested int
		fallback  int
		want      int
	}{
		{"unset uses fallback", 0, 30, 30},
		{"within bounds", 45, 30, 45},
		{"below minimum", 2, 30, minQuestionSeconds},
		{"above maximum", 600, 30, maxQuestionSeconds},
		{"fallback also clamped", 0, 500, maxQuestionSeconds},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, clampSeconds(tc.requested, tc.fallback))
		})
	}
}
