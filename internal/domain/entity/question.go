package entity

import (
	"strings"
	"time"
)

// Уровни сложности вопросов
const (
	DifficultyEasy   = "kolay"
	DifficultyMedium = "orta"
	DifficultyHard   = "zor"
)

// OptionLetters — буквы вариантов ответа в порядке колонок option_a..option_d
var OptionLetters = [4]string{"A", "B", "C", "D"}

// Question представляет вопрос по математике для конкретного класса
type Question struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Grade         int       `gorm:"not null;index:idx_questions_grade_topic" json:"grade"`
	Topic         string    `gorm:"size:100;not null;index:idx_questions_grade_topic" json:"topic"`
	QuestionText  string    `gorm:"type:text;not null" json:"question_text"`
	OptionA       string    `gorm:"size:255;not null" json:"option_a"`
	OptionB       string    `gorm:"size:255;not null" json:"option_b"`
	OptionC       string    `gorm:"size:255;not null" json:"option_c"`
	OptionD       string    `gorm:"size:255;not null" json:"option_d"`
	CorrectAnswer string    `gorm:"size:1;not null" json:"correct_answer"`
	Difficulty    string    `gorm:"column:difficulty_level;size:10;not null;default:'orta'" json:"difficulty_level"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// Options возвращает варианты ответа в порядке A, B, C, D
func (q *Question) Options() [4]string {
	return [4]string{q.OptionA, q.OptionB, q.OptionC, q.OptionD}
}

// CorrectIndex возвращает индекс правильного варианта (0..3) или -1
func (q *Question) CorrectIndex() int {
	return LetterIndex(q.CorrectAnswer)
}

// CorrectText возвращает текст правильного варианта
func (q *Question) CorrectText() string {
	idx := q.CorrectIndex()
	if idx < 0 {
		return ""
	}
	return q.Options()[idx]
}

// LetterIndex переводит букву варианта в индекс 0..3, -1 для неизвестной буквы
func LetterIndex(letter string) int {
	switch strings.ToUpper(strings.TrimSpace(letter)) {
	case "A":
		return 0
	case "B":
		return 1
	case "C":
		return 2
	case "D":
		return 3
	default:
		return -1
	}
}

// ValidDifficulty проверяет уровень сложности
func ValidDifficulty(d string) bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}
