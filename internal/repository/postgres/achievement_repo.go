package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
	"github.com/yourusername/mathquiz-api/internal/domain/repository"
)

// AchievementRepo реализует repository.AchievementRepository
type AchievementRepo struct {
	db *gorm.DB
}

// NewAchievementRepo создает новый репозиторий достижений
func NewAchievementRepo(db *gorm.DB) *AchievementRepo {
	return &AchievementRepo{db: db}
}

// ListByUser возвращает достижения пользователя, новые первыми
func (r *AchievementRepo) ListByUser(ctx context.Context, userID uint) ([]entity.Achievement, error) {
	var achievements []entity.Achievement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("earned_at DESC, id DESC").
		Find(&achievements).Error
	return achievements, err
}

// CountByUser возвращает количество достижений пользователя
func (r *AchievementRepo) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Achievement{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// EarnedTypes возвращает множество полученных типов
func (r *AchievementRepo) EarnedTypes(ctx context.Context, tx *gorm.DB, userID uint) (map[string]struct{}, error) {
	var types []string
	err := conn(ctx, r.db, tx).Model(&entity.Achievement{}).
		Where("user_id = ? AND achievement_type <> ''", userID).
		Pluck("achievement_type", &types).Error
	if err != nil {
		return nil, err
	}

	earned := make(map[string]struct{}, len(types))
	for _, t := range types {
		earned[t] = struct{}{}
	}
	return earned, nil
}

// InsertIfAbsent вставляет достижение через ON CONFLICT DO NOTHING
func (r *AchievementRepo) InsertIfAbsent(ctx context.Context, tx *gorm.DB, achievement *entity.Achievement) (bool, error) {
	result := conn(ctx, r.db, tx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_type"}},
			DoNothing: true,
		}).
		Create(achievement)
	if result.Error != nil {
		return false, mapError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Cleanup чинит пустые типы по имени и удаляет дубликаты одной транзакцией.
// Записи с пустым типом и неизвестным именем удаляются.
func (r *AchievementRepo) Cleanup(ctx context.Context, userID uint, typeByName map[string]string) (repository.CleanupResult, error) {
	var res repository.CleanupResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var broken []entity.Achievement
		if err := tx.Where("user_id = ? AND (achievement_type IS NULL OR achievement_type = '')", userID).
			Find(&broken).Error; err != nil {
			return err
		}

		for _, a := range broken {
			achType, ok := typeByName[a.AchievementName]
			if !ok {
				if err := tx.Delete(&entity.Achievement{}, a.ID).Error; err != nil {
					return err
				}
				res.InvalidRemoved++
				continue
			}

			var exists int64
			if err := tx.Model(&entity.Achievement{}).
				Where("user_id = ? AND achievement_type = ?", userID, achType).
				Count(&exists).Error; err != nil {
				return err
			}
			if exists > 0 {
				if err := tx.Delete(&entity.Achievement{}, a.ID).Error; err != nil {
					return err
				}
				res.DuplicatesRemoved++
				continue
			}

			if err := tx.Model(&entity.Achievement{}).Where("id = ?", a.ID).
				Update("achievement_type", achType).Error; err != nil {
				return err
			}
			res.TypesRepaired++
		}

		// Оставляем самую раннюю запись каждого типа
		dup := tx.Exec(`DELETE FROM achievements a
			USING achievements b
			WHERE a.user_id = ? AND b.user_id = a.user_id
			  AND a.achievement_type = b.achievement_type
			  AND (a.earned_at > b.earned_at OR (a.earned_at = b.earned_at AND a.id > b.id))`, userID)
		if dup.Error != nil {
			return dup.Error
		}
		res.DuplicatesRemoved += dup.RowsAffected
		return nil
	})
	if err != nil {
		return repository.CleanupResult{}, err
	}
	return res, nil
}
