package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
	"github.com/yourusername/mathquiz-api/internal/domain/repository"
	"github.com/yourusername/mathquiz-api/internal/handler/dto"
	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
)

const (
	dateLayout = "2006-01-02"

	// minutesPerQuestion — условное время решения одного вопроса
	minutesPerQuestion = 2

	defaultDailyPeriod = 30
	maxDailyPeriod     = 365
	weeklyWeeks        = 4
	detailedDaysLimit  = 50
	wrongAnswersLimit  = 50
	historyExportLimit = 10000
)

// statsCacheKey — ключ кеша сводной статистики пользователя
func statsCacheKey(userID uint) string {
	return fmt.Sprintf("user:stats:%d", userID)
}

// invalidateUserStats удаляет кеш статистики после изменений, влияющих на сводку
func invalidateUserStats(ctx context.Context, cacheRepo repository.CacheRepository, userID uint, op string) {
	if cacheRepo == nil {
		return
	}
	if err := cacheRepo.Delete(ctx, statsCacheKey(userID)); err != nil {
		log.Printf("[%s] Не удалось сбросить кеш статистики пользователя ID=%d: %v", op, userID, err)
	}
}

// ProgressService отдает статистику и историю ответов
type ProgressService struct {
	progressRepo    repository.ProgressRepository
	achievementRepo repository.AchievementRepository
	cacheRepo       repository.CacheRepository
	statsTTL        time.Duration
	now             func() time.Time
}

// NewProgressService создает новый сервис прогресса
func NewProgressService(
	progressRepo repository.ProgressRepository,
	achievementRepo repository.AchievementRepository,
	cacheRepo repository.CacheRepository,
	statsTTL time.Duration,
) *ProgressService {
	return &ProgressService{
		progressRepo:    progressRepo,
		achievementRepo: achievementRepo,
		cacheRepo:       cacheRepo,
		statsTTL:        statsTTL,
		now:             time.Now,
	}
}

// UserStats возвращает сводную статистику, используя кеш Redis
func (s *ProgressService) UserStats(ctx context.Context, userID uint) (*dto.UserStats, error) {
	key := statsCacheKey(userID)
	if s.cacheRepo != nil && s.statsTTL > 0 {
		var cached dto.UserStats
		err := s.cacheRepo.GetJSON(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[ProgressService.UserStats] Ошибка чтения кеша %s: %v", key, err)
		}
	}

	activity, err := s.progressRepo.ActivityStats(ctx, nil, userID, s.now())
	if err != nil {
		return nil, err
	}
	achievements, err := s.achievementRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &dto.UserStats{
		TotalQuestions:    activity.TotalAnswered,
		CorrectAnswers:    activity.TotalCorrect,
		IncorrectAnswers:  activity.TotalAnswered - activity.TotalCorrect,
		TotalPoints:       activity.TotalPoints(),
		TotalAchievements: achievements,
		CompletedQuizzes:  activity.CompletedQuizzes,
		SuccessPercentage: percentage(activity.TotalCorrect, activity.TotalAnswered),
	}

	if s.cacheRepo != nil && s.statsTTL > 0 {
		if err := s.cacheRepo.SetJSON(ctx, key, stats, s.statsTTL); err != nil {
			log.Printf("[ProgressService.UserStats] Ошибка записи кеша %s: %v", key, err)
		}
	}
	return stats, nil
}

// percentage возвращает долю в процентах с одним знаком после запятой
func percentage(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)*1000/float64(total)) / 10
}

// ClampPeriod приводит период в днях к диапазону 1..365
func ClampPeriod(period int) int {
	switch {
	case period == 0:
		return defaultDailyPeriod
	case period < 1:
		return 1
	case period > maxDailyPeriod:
		return maxDailyPeriod
	default:
		return period
	}
}

// startOfDay возвращает полночь дня t в его часовом поясе
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Daily возвращает статистику по дням за period дней, новые дни первыми
func (s *ProgressService) Daily(ctx context.Context, userID uint, period int) (*dto.DailyProgressResponse, error) {
	period = ClampPeriod(period)
	since := startOfDay(s.now()).AddDate(0, 0, -(period - 1))

	rows, err := s.progressRepo.DailyCounts(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	resp := &dto.DailyProgressResponse{
		Period:    period,
		DailyData: make([]dto.DailyPoint, 0, len(rows)),
	}

	var total, best int64
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		day := row.Date.Format(dateLayout)
		resp.DailyData = append(resp.DailyData, dto.DailyPoint{Date: day, Solved: row.Solved, Correct: row.Correct})
		total += row.Solved
		if row.Solved > best || (row.Solved == best && resp.Summary.MostActiveDay == "") {
			best = row.Solved
			resp.Summary.MostActiveDay = day
		}
	}

	resp.Summary.StudyDays = len(rows)
	if len(rows) > 0 {
		resp.Summary.AverageDaily = math.Round(float64(total)*10/float64(len(rows))) / 10
	}
	resp.Summary.TotalStudyTime = total * minutesPerQuestion
	return resp, nil
}

// Topics возвращает статистику по темам
func (s *ProgressService) Topics(ctx context.Context, userID uint) ([]dto.TopicProgress, error) {
	rows, err := s.progressRepo.TopicCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TopicProgress, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.TopicProgress{Topic: row.Topic, Total: row.Total, Correct: row.Correct})
	}
	return out, nil
}

// Weekly возвращает статистику по неделям (понедельник-воскресенье) за последние 4 недели,
// новые недели первыми. Недели без ответов не возвращаются.
func (s *ProgressService) Weekly(ctx context.Context, userID uint) ([]dto.WeeklyProgress, error) {
	since := startOfDay(s.now()).AddDate(0, 0, -(weeklyWeeks*7 - 1))
	rows, err := s.progressRepo.DailyCounts(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		start, end     time.Time
		total, correct int64
	}
	buckets := map[string]*bucket{}
	for _, row := range rows {
		year, week := row.Date.ISOWeek()
		key := fmt.Sprintf("%04d-%02d", year, week)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{start: row.Date, end: row.Date}
			buckets[key] = b
		}
		if row.Date.Before(b.start) {
			b.start = row.Date
		}
		if row.Date.After(b.end) {
			b.end = row.Date
		}
		b.total += row.Solved
		b.correct += row.Correct
	}

	out := make([]dto.WeeklyProgress, 0, len(buckets))
	for _, b := range buckets {
		start, end := b.start.Format(dateLayout), b.end.Format(dateLayout)
		out = append(out, dto.WeeklyProgress{
			WeekStart:    start,
			WeekEnd:      end,
			Total:        b.total,
			Correct:      b.correct,
			PointsEarned: b.correct * entity.PointsPerCorrect,
			WeekTitle:    start + " - " + end,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart > out[j].WeekStart })
	return out, nil
}

// Detailed возвращает последние 50 дней с ответами
func (s *ProgressService) Detailed(ctx context.Context, userID uint) ([]dto.DetailedDay, error) {
	rows, err := s.progressRepo.RecentDays(ctx, userID, detailedDaysLimit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DetailedDay, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.DetailedDay{
			Date:      row.Date.Format(dateLayout),
			Total:     row.Solved,
			Correct:   row.Correct,
			Incorrect: row.Solved - row.Correct,
			Points:    row.Correct * entity.PointsPerCorrect,
		})
	}
	return out, nil
}

// WrongAnswers возвращает последние неверные ответы и сводку по ним
func (s *ProgressService) WrongAnswers(ctx context.Context, userID uint) (*dto.WrongAnswersResponse, error) {
	rows, err := s.progressRepo.WrongAnswers(ctx, userID, wrongAnswersLimit)
	if err != nil {
		return nil, err
	}

	topics := map[string]struct{}{}
	days := map[string]struct{}{}
	items := make([]dto.WrongAnswer, 0, len(rows))
	for _, row := range rows {
		item := dto.WrongAnswer{
			QuestionID: row.QuestionID,
			UserAnswer: row.UserAnswer,
			AnsweredAt: row.AnsweredAt,
		}
		if q := row.Question; q != nil {
			item.QuestionText = q.QuestionText
			item.Topic = q.Topic
			item.CorrectAnswer = q.CorrectAnswer
			item.Options = map[string]string{"A": q.OptionA, "B": q.OptionB, "C": q.OptionC, "D": q.OptionD}
			topics[q.Topic] = struct{}{}
		}
		days[row.AnsweredAt.Format(dateLayout)] = struct{}{}
		items = append(items, item)
	}

	return &dto.WrongAnswersResponse{
		WrongAnswers: items,
		Stats: dto.WrongAnswerStats{
			TotalWrong: len(items),
			TopicCount: len(topics),
			DayCount:   len(days),
		},
	}, nil
}

// History возвращает историю ответов для экспорта
func (s *ProgressService) History(ctx context.Context, userID uint) ([]dto.HistoryRow, error) {
	rows, err := s.progressRepo.History(ctx, userID, historyExportLimit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.HistoryRow, 0, len(rows))
	for _, row := range rows {
		h := dto.HistoryRow{
			AnsweredAt: row.AnsweredAt,
			UserAnswer: row.UserAnswer,
			IsCorrect:  row.IsCorrect,
			SessionID:  row.QuizSessionID,
		}
		if q := row.Question; q != nil {
			h.Grade = q.Grade
			h.Topic = q.Topic
			h.QuestionText = q.QuestionText
			h.CorrectAnswer = q.CorrectAnswer
		}
		out = append(out, h)
	}
	return out, nil
}
