package service

import "github.com/proctorly/proctorly-backend/internal/model"

// Score counts the positions where the submitted answer matches the answer
// key. It is total: a short, missing, or out-of-range submitted entry simply
// fails to match and contributes zero. The result is always in
// [0, len(correct)].
func Score(correct, submitted []int) int {
	score := 0
	for i, want := range correct {
		if i < len(submitted) && submitted[i] == want {
			score++
		}
	}
	return score
}

// AnswerKey extracts the ordered correct-answer indices from a question set.
func AnswerKey(questions []model.Question) []int {
	key := make([]int, len(questions))
	for i, q := range questions {
		key[i] = q.CorrectAnswer
	}
	return key
}
