package dto

import "time"

// AchievementDTO — достижение для клиента
type AchievementDTO struct {
	Type        string     `json:"achievement_type"`
	Name        string     `json:"achievement_name"`
	Description string     `json:"achievement_description"`
	Icon        string     `json:"icon,omitempty"`
	Category    string     `json:"category,omitempty"`
	Requirement string     `json:"requirement,omitempty"`
	Earned      bool       `json:"earned"`
	EarnedAt    *time.Time `json:"earned_at,omitempty"`
}

// AchievementListResponse — полученные достижения пользователя
type AchievementListResponse struct {
	Achievements []AchievementDTO `json:"achievements"`
	Total        int              `json:"total"`
}

// AchievementCheckResponse — результат ручной проверки правил
type AchievementCheckResponse struct {
	NewAchievements []AchievementDTO `json:"new_achievements"`
	TotalNew        int              `json:"total_new"`
}

// AchievementCatalogResponse — каталог с отметками о получении
type AchievementCatalogResponse struct {
	Achievements []AchievementDTO `json:"achievements"`
	TotalCount   int              `json:"total_count"`
	EarnedCount  int              `json:"earned_count"`
}

// AchievementCleanupResponse — результат очистки
type AchievementCleanupResponse struct {
	DuplicatesRemoved int64 `json:"duplicates_removed"`
	TypesRepaired     int64 `json:"types_repaired"`
	InvalidRemoved    int64 `json:"invalid_removed"`
}
