package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
	"github.com/yourusername/mathquiz-api/internal/domain/repository"
	"github.com/yourusername/mathquiz-api/internal/handler/dto"
)

// ============================================================================
// Моки репозиториев для тестов сервисов
// ============================================================================

// fakeTx выполняет функцию без настоящей транзакции
type fakeTx struct {
	calls int
}

func (f *fakeTx) Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	f.calls++
	return fc(nil)
}

// MockUserRepository реализует repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, userID uint, updates map[string]interface{}) error {
	args := m.Called(ctx, userID, updates)
	return args.Error(0)
}

// MockQuestionRepository реализует repository.QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*entity.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) Topics(ctx context.Context, grade int) ([]string, error) {
	args := m.Called(ctx, grade)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockQuestionRepository) RandomByGradeAndTopic(ctx context.Context, grade int, topic string, limit int) ([]entity.Question, error) {
	args := m.Called(ctx, grade, topic, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) RandomByGrade(ctx context.Context, grade int, limit int) ([]entity.Question, error) {
	args := m.Called(ctx, grade, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) CreateBatch(ctx context.Context, questions []entity.Question) (int, error) {
	args := m.Called(ctx, questions)
	return args.Int(0), args.Error(1)
}

func (m *MockQuestionRepository) CountByGrade(ctx context.Context) (map[int]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]int64), args.Error(1)
}

// MockQuizSessionRepository реализует repository.QuizSessionRepository
type MockQuizSessionRepository struct {
	mock.Mock
}

func (m *MockQuizSessionRepository) Create(ctx context.Context, session *entity.QuizSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockQuizSessionRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id string) (*entity.QuizSession, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizSession), args.Error(1)
}

func (m *MockQuizSessionRepository) GetByID(ctx context.Context, id string) (*entity.QuizSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizSession), args.Error(1)
}

func (m *MockQuizSessionRepository) Complete(ctx context.Context, tx *gorm.DB, id string, correct, total int, score decimal.Decimal, completedAt time.Time) error {
	args := m.Called(ctx, tx, id, correct, total, score, completedAt)
	return args.Error(0)
}

// MockProgressRepository реализует repository.ProgressRepository
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) Create(ctx context.Context, progress *entity.UserProgress) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}

func (m *MockProgressRepository) Exists(ctx context.Context, userID uint, sessionID string, questionID uint) (bool, error) {
	args := m.Called(ctx, userID, sessionID, questionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProgressRepository) CorrectQuestionIDs(ctx context.Context, userID uint) ([]uint, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockProgressRepository) ActivityStats(ctx context.Context, tx *gorm.DB, userID uint, now time.Time) (entity.ActivityStats, error) {
	args := m.Called(ctx, tx, userID, now)
	return args.Get(0).(entity.ActivityStats), args.Error(1)
}

func (m *MockProgressRepository) DailyCounts(ctx context.Context, userID uint, since time.Time) ([]repository.DailyCount, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.DailyCount), args.Error(1)
}

func (m *MockProgressRepository) RecentDays(ctx context.Context, userID uint, limit int) ([]repository.DailyCount, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.DailyCount), args.Error(1)
}

func (m *MockProgressRepository) TopicCounts(ctx context.Context, userID uint) ([]repository.TopicCount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.TopicCount), args.Error(1)
}

func (m *MockProgressRepository) WrongAnswers(ctx context.Context, userID uint, limit int) ([]entity.UserProgress, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.UserProgress), args.Error(1)
}

func (m *MockProgressRepository) History(ctx context.Context, userID uint, limit int) ([]entity.UserProgress, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.UserProgress), args.Error(1)
}

func (m *MockProgressRepository) ActiveUserIDsSince(ctx context.Context, since time.Time) ([]uint, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

// MockAchievementRepository реализует repository.AchievementRepository
type MockAchievementRepository struct {
	mock.Mock
}

func (m *MockAchievementRepository) ListByUser(ctx context.Context, userID uint) ([]entity.Achievement, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Achievement), args.Error(1)
}

func (m *MockAchievementRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAchievementRepository) EarnedTypes(ctx context.Context, tx *gorm.DB, userID uint) (map[string]struct{}, error) {
	args := m.Called(ctx, tx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

func (m *MockAchievementRepository) InsertIfAbsent(ctx context.Context, tx *gorm.DB, achievement *entity.Achievement) (bool, error) {
	args := m.Called(ctx, tx, achievement)
	return args.Bool(0), args.Error(1)
}

func (m *MockAchievementRepository) Cleanup(ctx context.Context, userID uint, typeByName map[string]string) (repository.CleanupResult, error) {
	args := m.Called(ctx, userID, typeByName)
	return args.Get(0).(repository.CleanupResult), args.Error(1)
}

// MockCacheRepository реализует repository.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepository) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *MockCacheRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, expiration)
	return args.Bool(0), args.Error(1)
}

// MockNotifier реализует Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) AchievementsEarned(ctx context.Context, userID uint, achievements []dto.AchievementDTO) {
	m.Called(ctx, userID, achievements)
}
