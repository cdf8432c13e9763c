package entity

import (
	"sort"
	"time"
)

// Achievement — заработанный пользователем значок.
// Пара (user_id, achievement_type) уникальна.
type Achievement struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	UserID                 uint      `gorm:"not null;uniqueIndex:uq_achievements_user_type" json:"user_id"`
	AchievementType        string    `gorm:"size:50;not null;uniqueIndex:uq_achievements_user_type" json:"achievement_type"`
	AchievementName        string    `gorm:"size:100;not null" json:"achievement_name"`
	AchievementDescription string    `gorm:"type:text" json:"achievement_description"`
	EarnedAt               time.Time `gorm:"not null" json:"earned_at"`
}

// TableName определяет имя таблицы для GORM
func (Achievement) TableName() string {
	return "achievements"
}

// ActivityStats — агрегаты по истории пользователя, на которых строятся правила достижений
type ActivityStats struct {
	TotalAnswered    int64   `json:"total_answered"`
	TotalCorrect     int64   `json:"total_correct"`
	CompletedQuizzes int64   `json:"completed_quizzes"`
	MaxScore         float64 `json:"max_score"`
	DistinctTopics   int64   `json:"distinct_topics"`
	LongestStreak    int     `json:"longest_streak"`
	AnsweredToday    int64   `json:"answered_today"`
	WeekendAnswers   int64   `json:"weekend_answers"`
}

// PointsPerCorrect — очки за один правильный ответ
const PointsPerCorrect = 10

// TotalPoints возвращает сумму очков (10 за правильный ответ)
func (s ActivityStats) TotalPoints() int64 {
	return s.TotalCorrect * PointsPerCorrect
}

// LongestStreak возвращает длину самой длинной серии подряд идущих календарных дней.
// Порядок и дубликаты во входных датах не важны.
func LongestStreak(dates []time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	days := make([]time.Time, 0, len(dates))
	seen := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		key := day.Format("2006-01-02")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, current := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
	}
	return longest
}
