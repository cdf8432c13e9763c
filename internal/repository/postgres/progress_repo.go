package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
	"github.com/yourusername/mathquiz-api/internal/domain/repository"
)

// ProgressRepo реализует repository.ProgressRepository
type ProgressRepo struct {
	db *gorm.DB
}

// NewProgressRepo создает новый репозиторий прогресса
func NewProgressRepo(db *gorm.DB) *ProgressRepo {
	return &ProgressRepo{db: db}
}

// Create сохраняет ответ пользователя
func (r *ProgressRepo) Create(ctx context.Context, progress *entity.UserProgress) error {
	return mapError(r.db.WithContext(ctx).Create(progress).Error)
}

// Exists проверяет, отвечал ли пользователь на вопрос в этой сессии
func (r *ProgressRepo) Exists(ctx context.Context, userID uint, sessionID string, questionID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.UserProgress{}).
		Where("user_id = ? AND quiz_session_id = ? AND question_id = ?", userID, sessionID, questionID).
		Count(&count).Error
	return count > 0, err
}

// CorrectQuestionIDs возвращает ID вопросов, на которые пользователь хотя бы раз ответил верно
func (r *ProgressRepo) CorrectQuestionIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entity.UserProgress{}).
		Where("user_id = ? AND is_correct = ?", userID, true).
		Distinct("question_id").
		Pluck("question_id", &ids).Error
	return ids, err
}

// ActivityStats собирает агрегаты для правил достижений
func (r *ProgressRepo) ActivityStats(ctx context.Context, tx *gorm.DB, userID uint, now time.Time) (entity.ActivityStats, error) {
	db := conn(ctx, r.db, tx)
	var stats entity.ActivityStats

	var answers struct {
		Total   int64
		Correct int64
		Topics  int64
		Today   int64
		Weekend int64
	}
	today := now.Format("2006-01-02")
	err := db.Table("user_progress AS up").
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN up.is_correct THEN 1 ELSE 0 END), 0) AS correct,
			COUNT(DISTINCT q.topic) AS topics,
			COALESCE(SUM(CASE WHEN DATE(up.answered_at) = ? THEN 1 ELSE 0 END), 0) AS today,
			COALESCE(SUM(CASE WHEN EXTRACT(DOW FROM up.answered_at) IN (0, 6) THEN 1 ELSE 0 END), 0) AS weekend`, today).
		Joins("LEFT JOIN questions q ON q.id = up.question_id").
		Where("up.user_id = ?", userID).
		Scan(&answers).Error
	if err != nil {
		return stats, err
	}
	stats.TotalAnswered = answers.Total
	stats.TotalCorrect = answers.Correct
	stats.DistinctTopics = answers.Topics
	stats.AnsweredToday = answers.Today
	stats.WeekendAnswers = answers.Weekend

	var sessions struct {
		Completed int64
		MaxScore  float64
	}
	err = db.Model(&entity.QuizSession{}).
		Select("COUNT(*) AS completed, COALESCE(MAX(score_percentage), 0) AS max_score").
		Where("user_id = ? AND completed_at IS NOT NULL", userID).
		Scan(&sessions).Error
	if err != nil {
		return stats, err
	}
	stats.CompletedQuizzes = sessions.Completed
	stats.MaxScore = sessions.MaxScore

	var days []time.Time
	err = db.Model(&entity.UserProgress{}).
		Where("user_id = ?", userID).
		Distinct("DATE(answered_at)").
		Pluck("DATE(answered_at)", &days).Error
	if err != nil {
		return stats, err
	}
	stats.LongestStreak = entity.LongestStreak(days)

	return stats, nil
}

// DailyCounts возвращает количество ответов по дням начиная с since
func (r *ProgressRepo) DailyCounts(ctx context.Context, userID uint, since time.Time) ([]repository.DailyCount, error) {
	var rows []repository.DailyCount
	err := r.db.WithContext(ctx).Model(&entity.UserProgress{}).
		Select(`DATE(answered_at) AS date,
			COUNT(*) AS solved,
			COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0) AS correct`).
		Where("user_id = ? AND answered_at >= ?", userID, since).
		Group("DATE(answered_at)").
		Order("date ASC").
		Scan(&rows).Error
	return rows, err
}

// RecentDays возвращает последние limit дней с ответами
func (r *ProgressRepo) RecentDays(ctx context.Context, userID uint, limit int) ([]repository.DailyCount, error) {
	var rows []repository.DailyCount
	err := r.db.WithContext(ctx).Model(&entity.UserProgress{}).
		Select(`DATE(answered_at) AS date,
			COUNT(*) AS solved,
			COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0) AS correct`).
		Where("user_id = ?", userID).
		Group("DATE(answered_at)").
		Order("date DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// TopicCounts возвращает статистику ответов по темам
func (r *ProgressRepo) TopicCounts(ctx context.Context, userID uint) ([]repository.TopicCount, error) {
	var rows []repository.TopicCount
	err := r.db.WithContext(ctx).Table("user_progress AS up").
		Select(`q.topic AS topic,
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN up.is_correct THEN 1 ELSE 0 END), 0) AS correct`).
		Joins("JOIN questions q ON q.id = up.question_id").
		Where("up.user_id = ?", userID).
		Group("q.topic").
		Order("total DESC, q.topic ASC").
		Scan(&rows).Error
	return rows, err
}

// WrongAnswers возвращает последние неверные ответы с вопросами
func (r *ProgressRepo) WrongAnswers(ctx context.Context, userID uint, limit int) ([]entity.UserProgress, error) {
	var rows []entity.UserProgress
	err := r.db.WithContext(ctx).
		Preload("Question").
		Where("user_id = ? AND is_correct = ?", userID, false).
		Order("answered_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// History возвращает последние ответы с вопросами
func (r *ProgressRepo) History(ctx context.Context, userID uint, limit int) ([]entity.UserProgress, error) {
	var rows []entity.UserProgress
	err := r.db.WithContext(ctx).
		Preload("Question").
		Where("user_id = ?", userID).
		Order("answered_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ActiveUserIDsSince возвращает пользователей с ответами после since
func (r *ProgressRepo) ActiveUserIDsSince(ctx context.Context, since time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entity.UserProgress{}).
		Where("answered_at >= ?", since).
		Distinct("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}
