package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
	"github.com/yourusername/mathquiz-api/internal/handler/dto"
	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
)

type quizTestDeps struct {
	tx           *fakeTx
	questions    *MockQuestionRepository
	sessions     *MockQuizSessionRepository
	progress     *MockProgressRepository
	achievements *MockAchievementRepository
	cache        *MockCacheRepository
	notifier     *MockNotifier
}

func createTestQuizService() (*QuizService, *quizTestDeps) {
	d := &quizTestDeps{
		tx:           &fakeTx{},
		questions:    new(MockQuestionRepository),
		sessions:     new(MockQuizSessionRepository),
		progress:     new(MockProgressRepository),
		achievements: new(MockAchievementRepository),
		cache:        new(MockCacheRepository),
		notifier:     new(MockNotifier),
	}
	achSvc := NewAchievementService(d.tx, d.progress, d.achievements, d.cache, d.notifier)
	svc := NewQuizService(d.tx, d.questions, d.sessions, d.progress, achSvc, d.cache, d.notifier, QuizOptions{DefaultQuestions: 20, MaxQuestions: 50})
	return svc, d
}

func makeQuestions(grade int, topic string, from, n int) []entity.Question {
	out := make([]entity.Question, 0, n)
	for i := 0; i < n; i++ {
		id := uint(from + i)
		out = append(out, entity.Question{
			ID:            id,
			Grade:         grade,
			Topic:         topic,
			QuestionText:  fmt.Sprintf("%d + 1 = ?", id),
			OptionA:       "1",
			OptionB:       "2",
			OptionC:       "3",
			OptionD:       "4",
			CorrectAnswer: "B",
			Difficulty:    entity.DifficultyEasy,
		})
	}
	return out
}

func boolPtr(v bool) *bool { return &v }

// decimalEq сравнивает decimal по значению, а не по представлению
func decimalEq(v int64) interface{} {
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(v)) })
}
func intPtr(v int) *int    { return &v }

// ============================================================================
// GetQuestions
// ============================================================================

func TestQuizService_GetQuestions_TopicDistributionAndExclusion(t *testing.T) {
	// Arrange
	svc, d := createTestQuizService()
	ctx := context.Background()
	d.questions.On("Topics", ctx, 2).Return([]string{"Toplama", "Çıkarma"}, nil)
	// limit=4 -> pool=12 -> 6 на тему
	d.questions.On("RandomByGradeAndTopic", ctx, 2, "Toplama", 6).Return(makeQuestions(2, "Toplama", 1, 3), nil)
	d.questions.On("RandomByGradeAndTopic", ctx, 2, "Çıkarma", 6).Return(makeQuestions(2, "Çıkarma", 101, 3), nil)
	// Добор содержит дубликат (ID=1), который должен быть отброшен
	d.questions.On("RandomByGrade", ctx, 2, 12).Return(append(makeQuestions(2, "Toplama", 1, 1), makeQuestions(2, "Toplama", 201, 2)...), nil)
	d.progress.On("CorrectQuestionIDs", ctx, uint(7)).Return([]uint{1, 2, 101}, nil)

	// Act
	resp, err := svc.GetQuestions(ctx, 7, 2, 4)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Total)
	assert.Equal(t, 3, resp.ExcludedQuestions)
	seen := map[uint]bool{}
	for i, q := range resp.Questions {
		assert.Equal(t, i+1, q.Number, "Нумерация должна начинаться с 1")
		assert.NotContains(t, []uint{1, 2, 101}, q.ID, "Верно отвеченные вопросы должны исключаться")
		assert.False(t, seen[q.ID], "Вопросы не должны повторяться")
		seen[q.ID] = true
		assert.Equal(t, "2", q.Options[q.CorrectAnswer], "Буква ответа должна указывать на правильный текст")
	}
}

func TestQuizService_GetQuestions_LimitClamping(t *testing.T) {
	testCases := []struct {
		name     string
		limit    int
		wantPool int
	}{
		{"по умолчанию", 0, 60},
		{"больше максимума", 500, 150},
		{"один вопрос", 1, 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, d := createTestQuizService()
			ctx := context.Background()
			d.questions.On("Topics", ctx, 1).Return([]string{"Sayılar"}, nil)
			d.questions.On("RandomByGradeAndTopic", ctx, 1, "Sayılar", tc.wantPool).Return(makeQuestions(1, "Sayılar", 1, 2), nil)
			d.questions.On("RandomByGrade", ctx, 1, tc.wantPool).Return([]entity.Question{}, nil)
			d.progress.On("CorrectQuestionIDs", ctx, uint(1)).Return([]uint{}, nil)

			_, err := svc.GetQuestions(ctx, 1, 1, tc.limit)

			require.NoError(t, err)
			d.questions.AssertExpectations(t)
		})
	}
}

func TestQuizService_GetQuestions_NoQuestions(t *testing.T) {
	svc, d := createTestQuizService()
	ctx := context.Background()
	d.questions.On("Topics", ctx, 3).Return([]string{}, nil)

	_, err := svc.GetQuestions(ctx, 1, 3, 10)

	assert.ErrorIs(t, err, ErrNoQuestions)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestQuizService_GetQuestions_AllAnswered(t *testing.T) {
	svc, d := createTestQuizService()
	ctx := context.Background()
	d.questions.On("Topics", ctx, 1).Return([]string{"Sayılar"}, nil)
	d.questions.On("RandomByGradeAndTopic", ctx, 1, "Sayılar", 30).Return(makeQuestions(1, "Sayılar", 1, 2), nil)
	d.questions.On("RandomByGrade", ctx, 1, 30).Return(makeQuestions(1, "Sayılar", 1, 2), nil)
	d.progress.On("CorrectQuestionIDs", ctx, uint(1)).Return([]uint{1, 2}, nil)

	_, err := svc.GetQuestions(ctx, 1, 1, 10)

	assert.ErrorIs(t, err, ErrAllAnswered)
}

func TestQuizService_GetQuestions_InvalidGrade(t *testing.T) {
	svc, _ := createTestQuizService()

	_, err := svc.GetQuestions(context.Background(), 1, 9, 10)

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

// ============================================================================
// StartSession / SubmitAnswer
// ============================================================================

func TestQuizService_StartSession(t *testing.T) {
	svc, d := createTestQuizService()
	ctx := context.Background()
	d.sessions.On("Create", ctx, mock.MatchedBy(func(s *entity.QuizSession) bool {
		return s.UserID == 4 && s.Grade == 3 && s.TotalQuestions == 20 && len(s.ID) == 36
	})).Return(nil)

	resp, err := svc.StartSession(ctx, 4, 3)

	require.NoError(t, err)
	assert.Equal(t, 3, resp.Grade)
	assert.Len(t, resp.SessionID, 36, "ID сессии должен быть UUID")
	d.sessions.AssertExpectations(t)
}

func submitRequest() dto.SubmitAnswerRequest {
	return dto.SubmitAnswerRequest{QuestionID: 10, UserAnswer: "b", IsCorrect: boolPtr(true), SessionID: "sess-1"}
}

func TestQuizService_SubmitAnswer_Success(t *testing.T) {
	svc, d := createTestQuizService()
	ctx := context.Background()
	d.sessions.On("GetByID", ctx, "sess-1").Return(&entity.QuizSession{ID: "sess-1", UserID: 4}, nil)
	d.questions.On("GetByID", ctx, uint(10)).Return(&entity.Question{ID: 10}, nil)
	d.progress.On("Exists", ctx, uint(4), "sess-1", uint(10)).Return(false, nil)
	d.progress.On("Create", ctx, mock.MatchedBy(func(p *entity.UserProgress) bool {
		return p.UserAnswer == "B" && p.IsCorrect && p.QuizSessionID == "sess-1"
	})).Return(nil)
	d.cache.On("Delete", ctx, []string{"user:stats:4"}).Return(nil)

	err := svc.SubmitAnswer(ctx, 4, submitRequest())

	require.NoError(t, err)
	d.progress.AssertExpectations(t)
	d.cache.AssertExpectations(t)
}

func TestQuizService_SubmitAnswer_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(d *quizTestDeps)
		err   error
	}{
		{
			name: "неизвестная сессия",
			setup: func(d *quizTestDeps) {
				d.sessions.On("GetByID", mock.Anything, "sess-1").Return(nil, apperrors.ErrNotFound)
			},
			err: apperrors.ErrNotFound,
		},
		{
			name: "чужая сессия",
			setup: func(d *quizTestDeps) {
				d.sessions.On("GetByID", mock.Anything, "sess-1").Return(&entity.QuizSession{ID: "sess-1", UserID: 99}, nil)
			},
			err: apperrors.ErrForbidden,
		},
		{
			name: "повторный ответ",
			setup: func(d *quizTestDeps) {
				d.sessions.On("GetByID", mock.Anything, "sess-1").Return(&entity.QuizSession{ID: "sess-1", UserID: 4}, nil)
				d.questions.On("GetByID", mock.Anything, uint(10)).Return(&entity.Question{ID: 10}, nil)
				d.progress.On("Exists", mock.Anything, uint(4), "sess-1", uint(10)).Return(true, nil)
			},
			err: apperrors.ErrConflict,
		},
		{
			name: "гонка на уникальном индексе",
			setup: func(d *quizTestDeps) {
				d.sessions.On("GetByID", mock.Anything, "sess-1").Return(&entity.QuizSession{ID: "sess-1", UserID: 4}, nil)
				d.questions.On("GetByID", mock.Anything, uint(10)).Return(&entity.Question{ID: 10}, nil)
				d.progress.On("Exists", mock.Anything, uint(4), "sess-1", uint(10)).Return(false, nil)
				d.progress.On("Create", mock.Anything, mock.Anything).Return(apperrors.ErrConflict)
			},
			err: apperrors.ErrConflict,
		},
		{
			name: "неизвестный вопрос",
			setup: func(d *quizTestDeps) {
				d.sessions.On("GetByID", mock.Anything, "sess-1").Return(&entity.QuizSession{ID: "sess-1", UserID: 4}, nil)
				d.questions.On("GetByID", mock.Anything, uint(10)).Return(nil, apperrors.ErrNotFound)
			},
			err: apperrors.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, d := createTestQuizService()
			tc.setup(d)

			err := svc.SubmitAnswer(context.Background(), 4, submitRequest())

			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestQuizService_SubmitAnswer_InvalidLetter(t *testing.T) {
	svc, d := createTestQuizService()
	req := submitRequest()
	req.UserAnswer = "E"

	err := svc.SubmitAnswer(context.Background(), 4, req)

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	d.sessions.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

// ============================================================================
// CompleteSession
// ============================================================================

func TestQuizService_CompleteSession_PerfectScore(t *testing.T) {
	// Arrange
	svc, d := createTestQuizService()
	ctx := context.Background()
	d.sessions.On("GetForUpdate", ctx, mock.Anything, "sess-1").Return(&entity.QuizSession{ID: "sess-1", UserID: 4}, nil)
	d.sessions.On("Complete", ctx, mock.Anything, "sess-1", 10, 10, decimalEq(100), mock.AnythingOfType("time.Time")).Return(nil)
	d.progress.On("ActivityStats", ctx, mock.Anything, uint(4), mock.AnythingOfType("time.Time")).
		Return(entity.ActivityStats{TotalAnswered: 10, TotalCorrect: 10, CompletedQuizzes: 1, MaxScore: 100, LongestStreak: 1}, nil)
	d.achievements.On("EarnedTypes", ctx, mock.Anything, uint(4)).Return(map[string]struct{}{"first_quiz": {}}, nil)
	d.achievements.On("InsertIfAbsent", ctx, mock.Anything, mock.AnythingOfType("*entity.Achievement")).Return(true, nil)
	d.cache.On("Delete", ctx, []string{"user:stats:4"}).Return(nil)
	d.notifier.On("AchievementsEarned", ctx, uint(4), mock.Anything).Return()

	// Act
	resp, err := svc.CompleteSession(ctx, 4, dto.CompleteSessionRequest{SessionID: "sess-1", CorrectAnswers: intPtr(10), TotalQuestions: 10})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "100", resp.ScorePercentage.String())
	require.NotNil(t, resp.AchievementEarned)
	awardedTypes := make([]string, 0, len(resp.NewAchievements))
	for _, a := range resp.NewAchievements {
		awardedTypes = append(awardedTypes, a.Type)
	}
	assert.Equal(t, []string{"questions_10", "score_100", "perfect_score", "high_score_80", "high_score_90"}, awardedTypes)
	assert.Equal(t, 1, d.tx.calls, "Завершение должно выполняться в одной транзакции")
	d.notifier.AssertExpectations(t)
}

func TestQuizService_CompleteSession_PerfectScoreOnlyOnce(t *testing.T) {
	svc, d := createTestQuizService()
	ctx := context.Background()
	d.sessions.On("GetForUpdate", ctx, mock.Anything, "sess-2").Return(&entity.QuizSession{ID: "sess-2", UserID: 4}, nil)
	d.sessions.On("Complete", ctx, mock.Anything, "sess-2", 5, 5, decimalEq(100), mock.Anything).Return(nil)
	d.progress.On("ActivityStats", ctx, mock.Anything, uint(4), mock.Anything).
		Return(entity.ActivityStats{TotalAnswered: 5, TotalCorrect: 5, CompletedQuizzes: 2, MaxScore: 100}, nil)
	d.achievements.On("EarnedTypes", ctx, mock.Anything, uint(4)).Return(map[string]struct{}{
		"first_quiz": {}, "perfect_score": {}, "high_score_80": {}, "high_score_90": {},
	}, nil)
	d.cache.On("Delete", ctx, mock.Anything).Return(nil)

	resp, err := svc.CompleteSession(ctx, 4, dto.CompleteSessionRequest{SessionID: "sess-2", CorrectAnswers: intPtr(5), TotalQuestions: 5})

	require.NoError(t, err)
	assert.Empty(t, resp.NewAchievements)
	assert.Nil(t, resp.AchievementEarned)
	d.achievements.AssertNotCalled(t, "InsertIfAbsent", mock.Anything, mock.Anything, mock.Anything)
	d.notifier.AssertNotCalled(t, "AchievementsEarned", mock.Anything, mock.Anything, mock.Anything)
}

func TestQuizService_CompleteSession_ConcurrentInsertSkipped(t *testing.T) {
	svc, d := createTestQuizService()
	ctx := context.Background()
	d.sessions.On("GetForUpdate", ctx, mock.Anything, "sess-3").Return(&entity.QuizSession{ID: "sess-3", UserID: 4}, nil)
	d.sessions.On("Complete", ctx, mock.Anything, "sess-3", 1, 20, mock.Anything, mock.Anything).Return(nil)
	d.progress.On("ActivityStats", ctx, mock.Anything, uint(4), mock.Anything).
		Return(entity.ActivityStats{TotalAnswered: 20, TotalCorrect: 1, CompletedQuizzes: 1, MaxScore: 5}, nil)
	d.achievements.On("EarnedTypes", ctx, mock.Anything, uint(4)).Return(map[string]struct{}{}, nil)
	// Параллельная транзакция успела вставить first_quiz
	d.achievements.On("InsertIfAbsent", ctx, mock.Anything, mock.MatchedBy(func(a *entity.Achievement) bool {
		return a.AchievementType == "first_quiz"
	})).Return(false, nil)
	d.achievements.On("InsertIfAbsent", ctx, mock.Anything, mock.Anything).Return(true, nil)
	d.cache.On("Delete", ctx, mock.Anything).Return(nil)
	d.notifier.On("AchievementsEarned", ctx, uint(4), mock.Anything).Return()

	resp, err := svc.CompleteSession(ctx, 4, dto.CompleteSessionRequest{SessionID: "sess-3", CorrectAnswers: intPtr(1)})

	require.NoError(t, err)
	assert.Equal(t, 20, resp.TotalQuestions, "По умолчанию в сессии 20 вопросов")
	assert.Equal(t, "5", resp.ScorePercentage.String())
	require.Len(t, resp.NewAchievements, 1)
	assert.Equal(t, "questions_10", resp.NewAchievements[0].Type)
}

func TestQuizService_CompleteSession_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		req   dto.CompleteSessionRequest
		setup func(d *quizTestDeps)
		err   error
	}{
		{
			name: "правильных больше, чем вопросов",
			req:  dto.CompleteSessionRequest{SessionID: "s", CorrectAnswers: intPtr(11), TotalQuestions: 10},
			err:  apperrors.ErrValidation,
		},
		{
			name: "отрицательное число правильных",
			req:  dto.CompleteSessionRequest{SessionID: "s", CorrectAnswers: intPtr(-1), TotalQuestions: 10},
			err:  apperrors.ErrValidation,
		},
		{
			name: "неизвестная сессия",
			req:  dto.CompleteSessionRequest{SessionID: "s", CorrectAnswers: intPtr(1), TotalQuestions: 10},
			setup: func(d *quizTestDeps) {
				d.sessions.On("GetForUpdate", mock.Anything, mock.Anything, "s").Return(nil, apperrors.ErrNotFound)
			},
			err: apperrors.ErrNotFound,
		},
		{
			name: "чужая сессия",
			req:  dto.CompleteSessionRequest{SessionID: "s", CorrectAnswers: intPtr(1), TotalQuestions: 10},
			setup: func(d *quizTestDeps) {
				d.sessions.On("GetForUpdate", mock.Anything, mock.Anything, "s").Return(&entity.QuizSession{ID: "s", UserID: 99}, nil)
			},
			err: apperrors.ErrForbidden,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, d := createTestQuizService()
			if tc.setup != nil {
				tc.setup(d)
			}

			_, err := svc.CompleteSession(context.Background(), 4, tc.req)

			assert.ErrorIs(t, err, tc.err)
			d.sessions.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
