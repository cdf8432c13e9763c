package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLetterIndex(t *testing.T) {
	testCases := []struct {
		letter   string
		expected int
	}{
		{"A", 0},
		{"b", 1},
		{" C ", 2},
		{"D", 3},
		{"E", -1},
		{"", -1},
	}

	for _, tc := range testCases {
		t.Run(tc.letter, func(t *testing.T) {
			assert.Equal(t, tc.expected, LetterIndex(tc.letter))
		})
	}
}

func TestQuestion_CorrectText(t *testing.T) {
	q := &Question{OptionA: "3", OptionB: "4", OptionC: "5", OptionD: "6", CorrectAnswer: "C"}

	assert.Equal(t, 2, q.CorrectIndex())
	assert.Equal(t, "5", q.CorrectText())
	assert.Equal(t, [4]string{"3", "4", "5", "6"}, q.Options())
}

func TestQuestion_CorrectText_InvalidLetter(t *testing.T) {
	q := &Question{OptionA: "3", CorrectAnswer: "X"}

	assert.Equal(t, -1, q.CorrectIndex())
	assert.Empty(t, q.CorrectText(), "Для неизвестной буквы текст должен быть пустым")
}

func TestValidDifficulty(t *testing.T) {
	assert.True(t, ValidDifficulty(DifficultyEasy))
	assert.True(t, ValidDifficulty(DifficultyMedium))
	assert.True(t, ValidDifficulty(DifficultyHard))
	assert.False(t, ValidDifficulty("expert"))
}

func TestQuestion_TableName(t *testing.T) {
	assert.Equal(t, "questions", Question{}.TableName())
}
