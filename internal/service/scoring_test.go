package service

import (
	"testing"

	"github.com/proctorly/proctorly-backend/internal/model"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		correct   []int
		submitted []int
		want      int
	}{
		{name: "all correct", correct: []int{1, 0}, submitted: []int{1, 0}, want: 2},
		{name: "one correct", correct: []int{1, 0}, submitted: []int{0, 0}, want: 1},
		{name: "none correct", correct: []int{1, 0}, submitted: []int{0, 1}, want: 0},
		{name: "short submission", correct: []int{1, 0, 2}, submitted: []int{1}, want: 1},
		{name: "empty submission", correct: []int{1, 0}, submitted: []int{}, want: 0},
		{name: "nil submission", correct: []int{1, 0}, submitted: nil, want: 0},
		{name: "unanswered markers", correct: []int{1, 0}, submitted: []int{-1, -1}, want: 0},
		{name: "out of range answers", correct: []int{1, 0}, submitted: []int{9, 7}, want: 0},
		{name: "extra answers ignored", correct: []int{1}, submitted: []int{1, 1, 1}, want: 1},
		{name: "empty key", correct: []int{}, submitted: []int{1, 2}, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(tc.correct, tc.submitted)
			if got != tc.want {
				t.Fatalf("Score(%v, %v) = %d, want %d", tc.correct, tc.submitted, got, tc.want)
			}
			if got < 0 || got > len(tc.correct) {
				t.Fatalf("score %d outside [0, %d]", got, len(tc.correct))
			}
		})
	}
}

func TestAnswerKey(t *testing.T) {
	questions := []model.Question{
		{Question: "q1", Options: []string{"a", "b"}, CorrectAnswer: 1},
		{Question: "q2", Options: []string{"a", "b", "c"}, CorrectAnswer: 0},
	}

	key := AnswerKey(questions)
	if len(key) != 2 || key[0] != 1 || key[1] != 0 {
		t.Fatalf("AnswerKey = %v, want [1 0]", key)
	}
}
