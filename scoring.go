package main

const (
	correctPoints  = 10
	wrongPenalty   = 1
	maxNameRunes   = 24
	maxAvatarRunes = 2
)

// scoreAnswer computes the score delta and resulting streak for a submitted
// choice. It never touches room or player state; the state machine applies
// the result while holding the room lock, so "first correct wins" falls out
// of its serialization rather than anything here.
func scoreAnswer(q Question, choiceIndex int, streak int) (points int, newStreak int, correct bool) {
	if choiceIndex == q.AnswerIndex {
		return correctPoints, streak + 1, true
	}
	return -wrongPenalty, 0, false
}

// clampSeconds bounds a requested per-question duration, falling back to
// the configured default when the request leaves it unset.
func clampSeconds(requested, fallback int) int {
	if requested == 0 {
		requested = fallback
	}
	if requested < minQuestionSeconds {
		return minQuestionSeconds
	}
	if requested > maxQuestionSeconds {
		return maxQuestionSeconds
	}
	return requested
}
