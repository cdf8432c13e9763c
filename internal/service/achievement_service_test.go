package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
	"github.com/yourusername/mathquiz-api/internal/domain/repository"
	"github.com/yourusername/mathquiz-api/internal/service/achievement"
)

func createTestAchievementService() (*AchievementService, *MockProgressRepository, *MockAchievementRepository, *MockNotifier) {
	svc, progressRepo, achievementRepo, notifier, _ := createTestAchievementServiceWithCache()
	svc.cacheRepo = nil
	return svc, progressRepo, achievementRepo, notifier
}

func createTestAchievementServiceWithCache() (*AchievementService, *MockProgressRepository, *MockAchievementRepository, *MockNotifier, *MockCacheRepository) {
	progressRepo := new(MockProgressRepository)
	achievementRepo := new(MockAchievementRepository)
	cacheRepo := new(MockCacheRepository)
	notifier := new(MockNotifier)
	svc := NewAchievementService(&fakeTx{}, progressRepo, achievementRepo, cacheRepo, notifier)
	return svc, progressRepo, achievementRepo, notifier, cacheRepo
}

func TestAchievementService_Check(t *testing.T) {
	// Arrange
	svc, progressRepo, achievementRepo, notifier := createTestAchievementService()
	ctx := context.Background()
	progressRepo.On("ActivityStats", ctx, mock.Anything, uint(1), mock.Anything).
		Return(entity.ActivityStats{TotalAnswered: 3, WeekendAnswers: 3}, nil)
	achievementRepo.On("EarnedTypes", ctx, mock.Anything, uint(1)).Return(map[string]struct{}{}, nil)
	achievementRepo.On("InsertIfAbsent", ctx, mock.Anything, mock.Anything).Return(true, nil)
	notifier.On("AchievementsEarned", ctx, uint(1), mock.Anything).Return()

	// Act
	resp, err := svc.Check(ctx, 1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalNew)
	assert.Equal(t, "first_quiz", resp.NewAchievements[0].Type)
	assert.Equal(t, "weekend_warrior", resp.NewAchievements[1].Type)
	notifier.AssertExpectations(t)
}

func TestAchievementService_Check_StatsError(t *testing.T) {
	svc, progressRepo, _, notifier := createTestAchievementService()
	progressRepo.On("ActivityStats", mock.Anything, mock.Anything, uint(1), mock.Anything).
		Return(entity.ActivityStats{}, errors.New("db down"))

	_, err := svc.Check(context.Background(), 1)

	assert.Error(t, err)
	notifier.AssertNotCalled(t, "AchievementsEarned", mock.Anything, mock.Anything, mock.Anything)
}

func TestAchievementService_CatalogAndUnearned(t *testing.T) {
	svc, _, achievementRepo, _ := createTestAchievementService()
	ctx := context.Background()
	earnedAt := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	achievementRepo.On("ListByUser", ctx, uint(2)).Return([]entity.Achievement{
		{UserID: 2, AchievementType: "first_quiz", AchievementName: "İlk Sınavım", EarnedAt: earnedAt},
		{UserID: 2, AchievementType: "questions_10", AchievementName: "Başlangıç", EarnedAt: earnedAt},
	}, nil)

	catalog, err := svc.Catalog(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, len(achievement.Catalog()), catalog.TotalCount)
	assert.Equal(t, 2, catalog.EarnedCount)
	assert.True(t, catalog.Achievements[0].Earned)
	require.NotNil(t, catalog.Achievements[0].EarnedAt)
	assert.True(t, earnedAt.Equal(*catalog.Achievements[0].EarnedAt))

	unearned, err := svc.Unearned(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, catalog.TotalCount-2, unearned.Total)
	for _, a := range unearned.Achievements {
		assert.NotEqual(t, "first_quiz", a.Type)
		assert.NotEmpty(t, a.Requirement, "У неполученного достижения должно быть требование")
	}
}

func TestAchievementService_List(t *testing.T) {
	svc, _, achievementRepo, _ := createTestAchievementService()
	achievementRepo.On("ListByUser", mock.Anything, uint(3)).Return([]entity.Achievement{
		{AchievementType: "quiz_5", AchievementName: "Quiz Sever", EarnedAt: time.Now()},
	}, nil)

	resp, err := svc.List(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "📊", resp.Achievements[0].Icon)
}

func TestAchievementService_Cleanup(t *testing.T) {
	svc, _, achievementRepo, _ := createTestAchievementService()
	achievementRepo.On("Cleanup", mock.Anything, uint(5), mock.MatchedBy(func(m map[string]string) bool {
		return m["Mükemmel Skor"] == "perfect_score"
	})).Return(repository.CleanupResult{DuplicatesRemoved: 2, TypesRepaired: 1}, nil)

	resp, err := svc.Cleanup(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.DuplicatesRemoved)
	assert.Equal(t, int64(1), resp.TypesRepaired)
}

func TestAchievementService_Reconcile(t *testing.T) {
	svc, progressRepo, achievementRepo, notifier := createTestAchievementService()
	since := time.Now().Add(-time.Hour)
	progressRepo.On("ActiveUserIDsSince", mock.Anything, since).Return([]uint{1, 2}, nil)
	progressRepo.On("ActivityStats", mock.Anything, mock.Anything, uint(1), mock.Anything).Return(entity.ActivityStats{TotalAnswered: 1}, nil)
	progressRepo.On("ActivityStats", mock.Anything, mock.Anything, uint(2), mock.Anything).Return(entity.ActivityStats{}, errors.New("boom"))
	achievementRepo.On("EarnedTypes", mock.Anything, mock.Anything, uint(1)).Return(map[string]struct{}{}, nil)
	achievementRepo.On("InsertIfAbsent", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	notifier.On("AchievementsEarned", mock.Anything, uint(1), mock.Anything).Return()

	users, awarded, err := svc.Reconcile(context.Background(), since)

	require.NoError(t, err)
	assert.Equal(t, 2, users)
	assert.Equal(t, 1, awarded, "Ошибка одного пользователя не должна прерывать сверку")
}

func TestAchievementService_InvalidatesStatsCache(t *testing.T) {
	t.Run("check с новыми достижениями", func(t *testing.T) {
		// Arrange
		svc, progressRepo, achievementRepo, notifier, cacheRepo := createTestAchievementServiceWithCache()
		ctx := context.Background()
		progressRepo.On("ActivityStats", ctx, mock.Anything, uint(1), mock.Anything).Return(entity.ActivityStats{TotalAnswered: 1}, nil)
		achievementRepo.On("EarnedTypes", ctx, mock.Anything, uint(1)).Return(map[string]struct{}{}, nil)
		achievementRepo.On("InsertIfAbsent", ctx, mock.Anything, mock.Anything).Return(true, nil)
		notifier.On("AchievementsEarned", ctx, uint(1), mock.Anything).Return()
		cacheRepo.On("Delete", ctx, []string{"user:stats:1"}).Return(nil)

		// Act
		_, err := svc.Check(ctx, 1)

		// Assert
		require.NoError(t, err)
		cacheRepo.AssertExpectations(t)
	})

	t.Run("check без новых достижений не трогает кеш", func(t *testing.T) {
		svc, progressRepo, achievementRepo, _, cacheRepo := createTestAchievementServiceWithCache()
		progressRepo.On("ActivityStats", mock.Anything, mock.Anything, uint(1), mock.Anything).Return(entity.ActivityStats{}, nil)
		achievementRepo.On("EarnedTypes", mock.Anything, mock.Anything, uint(1)).Return(map[string]struct{}{}, nil)

		_, err := svc.Check(context.Background(), 1)

		require.NoError(t, err)
		cacheRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("cleanup с изменениями", func(t *testing.T) {
		svc, _, achievementRepo, _, cacheRepo := createTestAchievementServiceWithCache()
		ctx := context.Background()
		achievementRepo.On("Cleanup", ctx, uint(5), mock.Anything).Return(repository.CleanupResult{DuplicatesRemoved: 1}, nil)
		cacheRepo.On("Delete", ctx, []string{"user:stats:5"}).Return(nil)

		_, err := svc.Cleanup(ctx, 5)

		require.NoError(t, err)
		cacheRepo.AssertExpectations(t)
	})

	t.Run("reconcile сбрасывает кеш награжденных", func(t *testing.T) {
		svc, progressRepo, achievementRepo, notifier, cacheRepo := createTestAchievementServiceWithCache()
		since := time.Now().Add(-time.Hour)
		progressRepo.On("ActiveUserIDsSince", mock.Anything, since).Return([]uint{3}, nil)
		progressRepo.On("ActivityStats", mock.Anything, mock.Anything, uint(3), mock.Anything).Return(entity.ActivityStats{TotalAnswered: 1}, nil)
		achievementRepo.On("EarnedTypes", mock.Anything, mock.Anything, uint(3)).Return(map[string]struct{}{}, nil)
		achievementRepo.On("InsertIfAbsent", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		notifier.On("AchievementsEarned", mock.Anything, uint(3), mock.Anything).Return()
		cacheRepo.On("Delete", mock.Anything, []string{"user:stats:3"}).Return(errors.New("redis down"))

		_, awarded, err := svc.Reconcile(context.Background(), since)

		require.NoError(t, err, "Ошибка Redis не должна ломать сверку")
		assert.Equal(t, 1, awarded)
		cacheRepo.AssertExpectations(t)
	})
}
