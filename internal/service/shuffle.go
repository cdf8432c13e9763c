package service

import (
	"math/rand"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
)

// ShuffledQuestion — вопрос с переставленными вариантами
type ShuffledQuestion struct {
	Question      entity.Question
	Options       [4]string
	CorrectAnswer string
}

// OptionsMap возвращает варианты в виде {"A": ..., "B": ...}
func (s ShuffledQuestion) OptionsMap() map[string]string {
	m := make(map[string]string, len(s.Options))
	for i, letter := range entity.OptionLetters {
		m[letter] = s.Options[i]
	}
	return m
}

// ShuffleOptions переставляет варианты ответа и пересчитывает букву правильного ответа.
// Набор текстов вариантов сохраняется.
func ShuffleOptions(q entity.Question, rng *rand.Rand) ShuffledQuestion {
	original := q.Options()
	perm := rng.Perm(len(original))

	var shuffled [4]string
	correct := q.CorrectAnswer
	oldIdx := q.CorrectIndex()
	for newIdx, srcIdx := range perm {
		shuffled[newIdx] = original[srcIdx]
		if srcIdx == oldIdx {
			correct = entity.OptionLetters[newIdx]
		}
	}

	return ShuffledQuestion{
		Question:      q,
		Options:       shuffled,
		CorrectAnswer: correct,
	}
}
