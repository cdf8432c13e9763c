package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/mathquiz-api/internal/domain/repository"
	"github.com/yourusername/mathquiz-api/internal/handler/dto"
	"github.com/yourusername/mathquiz-api/internal/service/achievement"
)

// AchievementService выдает достижения и отдает каталог
type AchievementService struct {
	tx              TxRunner
	progressRepo    repository.ProgressRepository
	achievementRepo repository.AchievementRepository
	cacheRepo       repository.CacheRepository
	notifier        Notifier
	now             func() time.Time
}

// NewAchievementService создает новый сервис достижений
func NewAchievementService(
	tx TxRunner,
	progressRepo repository.ProgressRepository,
	achievementRepo repository.AchievementRepository,
	cacheRepo repository.CacheRepository,
	notifier Notifier,
) *AchievementService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &AchievementService{
		tx:              tx,
		progressRepo:    progressRepo,
		achievementRepo: achievementRepo,
		cacheRepo:       cacheRepo,
		notifier:        notifier,
		now:             time.Now,
	}
}

// ruleDTO переводит правило каталога в DTO
func ruleDTO(r achievement.Rule, earnedAt *time.Time) dto.AchievementDTO {
	return dto.AchievementDTO{
		Type:        r.Type,
		Name:        r.Name,
		Description: r.Description,
		Icon:        r.Icon,
		Category:    r.Category,
		Requirement: r.Requirement,
		Earned:      earnedAt != nil,
		EarnedAt:    earnedAt,
	}
}

// awardTx оценивает правила внутри переданной транзакции и вставляет новые достижения.
// perfect принудительно выдает perfect_score, если он еще не получен.
func (s *AchievementService) awardTx(ctx context.Context, tx *gorm.DB, userID uint, perfect bool) ([]dto.AchievementDTO, error) {
	now := s.now()

	stats, err := s.progressRepo.ActivityStats(ctx, tx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("activity stats: %w", err)
	}
	earned, err := s.achievementRepo.EarnedTypes(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("earned types: %w", err)
	}

	rules := achievement.Evaluate(stats, earned)
	if perfect {
		if _, ok := earned[achievement.TypePerfectScore]; !ok && !containsRule(rules, achievement.TypePerfectScore) {
			if r, ok := achievement.Lookup(achievement.TypePerfectScore); ok {
				rules = append([]achievement.Rule{r}, rules...)
			}
		}
	}

	awarded := make([]dto.AchievementDTO, 0, len(rules))
	for _, r := range rules {
		a := r.ToEntity(userID)
		a.EarnedAt = now
		inserted, err := s.achievementRepo.InsertIfAbsent(ctx, tx, a)
		if err != nil {
			return nil, fmt.Errorf("insert achievement %s: %w", r.Type, err)
		}
		if !inserted {
			continue
		}
		earnedAt := now
		awarded = append(awarded, ruleDTO(r, &earnedAt))
	}
	return awarded, nil
}

func containsRule(rules []achievement.Rule, achType string) bool {
	for _, r := range rules {
		if r.Type == achType {
			return true
		}
	}
	return false
}

// Check оценивает правила по запросу пользователя
func (s *AchievementService) Check(ctx context.Context, userID uint) (*dto.AchievementCheckResponse, error) {
	var awarded []dto.AchievementDTO
	err := s.tx.Transaction(func(tx *gorm.DB) error {
		var err error
		awarded, err = s.awardTx(ctx, tx, userID, false)
		return err
	})
	if err != nil {
		log.Printf("[AchievementService.Check] Ошибка проверки достижений пользователя ID=%d: %v", userID, err)
		return nil, err
	}

	if len(awarded) > 0 {
		log.Printf("[AchievementService.Check] Пользователь ID=%d получил %d достижений", userID, len(awarded))
		invalidateUserStats(ctx, s.cacheRepo, userID, "AchievementService.Check")
		s.notifier.AchievementsEarned(ctx, userID, awarded)
	}
	return &dto.AchievementCheckResponse{NewAchievements: awarded, TotalNew: len(awarded)}, nil
}

// List возвращает полученные достижения пользователя
func (s *AchievementService) List(ctx context.Context, userID uint) (*dto.AchievementListResponse, error) {
	rows, err := s.achievementRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.AchievementDTO, 0, len(rows))
	for i := range rows {
		row := rows[i]
		item := dto.AchievementDTO{
			Type:        row.AchievementType,
			Name:        row.AchievementName,
			Description: row.AchievementDescription,
			Earned:      true,
			EarnedAt:    &row.EarnedAt,
		}
		if r, ok := achievement.Lookup(row.AchievementType); ok {
			item.Icon = r.Icon
			item.Category = r.Category
			item.Requirement = r.Requirement
		}
		items = append(items, item)
	}
	return &dto.AchievementListResponse{Achievements: items, Total: len(items)}, nil
}

// earnedAtByType возвращает время получения по типу
func (s *AchievementService) earnedAtByType(ctx context.Context, userID uint) (map[string]time.Time, error) {
	rows, err := s.achievementRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	m := make(map[string]time.Time, len(rows))
	for _, row := range rows {
		if prev, ok := m[row.AchievementType]; !ok || row.EarnedAt.Before(prev) {
			m[row.AchievementType] = row.EarnedAt
		}
	}
	return m, nil
}

// Catalog возвращает весь каталог с отметками о получении
func (s *AchievementService) Catalog(ctx context.Context, userID uint) (*dto.AchievementCatalogResponse, error) {
	earned, err := s.earnedAtByType(ctx, userID)
	if err != nil {
		return nil, err
	}

	rules := achievement.Catalog()
	items := make([]dto.AchievementDTO, 0, len(rules))
	earnedCount := 0
	for _, r := range rules {
		var earnedAt *time.Time
		if t, ok := earned[r.Type]; ok {
			t := t
			earnedAt = &t
			earnedCount++
		}
		items = append(items, ruleDTO(r, earnedAt))
	}
	return &dto.AchievementCatalogResponse{
		Achievements: items,
		TotalCount:   len(items),
		EarnedCount:  earnedCount,
	}, nil
}

// Unearned возвращает еще не полученные достижения
func (s *AchievementService) Unearned(ctx context.Context, userID uint) (*dto.AchievementListResponse, error) {
	earned, err := s.earnedAtByType(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.AchievementDTO, 0)
	for _, r := range achievement.Catalog() {
		if _, ok := earned[r.Type]; ok {
			continue
		}
		items = append(items, ruleDTO(r, nil))
	}
	return &dto.AchievementListResponse{Achievements: items, Total: len(items)}, nil
}

// Cleanup удаляет дубликаты и чинит пустые типы
func (s *AchievementService) Cleanup(ctx context.Context, userID uint) (*dto.AchievementCleanupResponse, error) {
	res, err := s.achievementRepo.Cleanup(ctx, userID, achievement.TypeByName())
	if err != nil {
		log.Printf("[AchievementService.Cleanup] Ошибка очистки достижений пользователя ID=%d: %v", userID, err)
		return nil, err
	}
	log.Printf("[AchievementService.Cleanup] Пользователь ID=%d: удалено дубликатов=%d, исправлено=%d, удалено некорректных=%d",
		userID, res.DuplicatesRemoved, res.TypesRepaired, res.InvalidRemoved)
	if res.DuplicatesRemoved+res.TypesRepaired+res.InvalidRemoved > 0 {
		invalidateUserStats(ctx, s.cacheRepo, userID, "AchievementService.Cleanup")
	}
	return &dto.AchievementCleanupResponse{
		DuplicatesRemoved: res.DuplicatesRemoved,
		TypesRepaired:     res.TypesRepaired,
		InvalidRemoved:    res.InvalidRemoved,
	}, nil
}

// Reconcile проверяет достижения всех пользователей, активных после since.
// Возвращает число проверенных пользователей и выданных достижений.
func (s *AchievementService) Reconcile(ctx context.Context, since time.Time) (int, int, error) {
	userIDs, err := s.progressRepo.ActiveUserIDsSince(ctx, since)
	if err != nil {
		return 0, 0, err
	}

	awardedTotal := 0
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return 0, awardedTotal, err
		}
		resp, err := s.Check(ctx, userID)
		if err != nil {
			// Ошибка одного пользователя не останавливает сверку
			continue
		}
		awardedTotal += resp.TotalNew
	}
	return len(userIDs), awardedTotal, nil
}
