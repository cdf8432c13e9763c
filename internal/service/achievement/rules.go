// Package achievement содержит каталог достижений и правила их выдачи.
package achievement

import "github.com/yourusername/mathquiz-api/internal/domain/entity"

// Категории достижений
const (
	CategoryQuestions = "questions"
	CategoryQuizzes   = "quizzes"
	CategoryPoints    = "points"
	CategoryScore     = "score"
	CategoryTopics    = "topics"
	CategoryStreak    = "streak"
	CategorySpecial   = "special"
)

// TypePerfectScore выдается при 100% правильных ответов в сессии
const TypePerfectScore = "perfect_score"

// Rule описывает одно достижение и условие его получения
type Rule struct {
	Type        string
	Name        string
	Description string
	Icon        string
	Requirement string
	Category    string
	Met         func(entity.ActivityStats) bool
}

func answered(n int64) func(entity.ActivityStats) bool {
	return func(s entity.ActivityStats) bool { return s.TotalAnswered >= n }
}

func completed(n int64) func(entity.ActivityStats) bool {
	return func(s entity.ActivityStats) bool { return s.CompletedQuizzes >= n }
}

func points(n int64) func(entity.ActivityStats) bool {
	return func(s entity.ActivityStats) bool { return s.TotalPoints() >= n }
}

func maxScore(n float64) func(entity.ActivityStats) bool {
	return func(s entity.ActivityStats) bool { return s.MaxScore >= n }
}

func topics(n int64) func(entity.ActivityStats) bool {
	return func(s entity.ActivityStats) bool { return s.DistinctTopics >= n }
}

func streak(n int) func(entity.ActivityStats) bool {
	return func(s entity.ActivityStats) bool { return s.LongestStreak >= n }
}

// catalog — все достижения в порядке отображения
var catalog = []Rule{
	{"first_quiz", "İlk Sınavım", "İlk quiz'inizi tamamladınız! 🎉", "🎉", "İlk quiz'inizi tamamlayın", CategoryQuizzes,
		func(s entity.ActivityStats) bool { return s.TotalAnswered >= 1 || s.CompletedQuizzes >= 1 }},
	{"questions_10", "Başlangıç", "10 soru çözdünüz! 📝", "📝", "10 soru çözün", CategoryQuestions, answered(10)},
	{"questions_25", "Öğrenci", "25 soru çözdünüz! 📚", "📚", "25 soru çözün", CategoryQuestions, answered(25)},
	{"questions_50", "Çalışkan", "50 soru çözdünüz! 🎯", "🎯", "50 soru çözün", CategoryQuestions, answered(50)},
	{"questions_100", "Aktif Öğrenci", "100 soru çözdünüz! ⭐", "⭐", "100 soru çözün", CategoryQuestions, answered(100)},
	{"questions_200", "Matematik Sever", "200 soru çözdünüz! 🧮", "🧮", "200 soru çözün", CategoryQuestions, answered(200)},
	{"questions_500", "Matematik Ustası", "500 soru çözdünüz! 👑", "👑", "500 soru çözün", CategoryQuestions, answered(500)},
	{"quiz_5", "Quiz Sever", "5 quiz tamamladınız! 📊", "📊", "5 quiz tamamlayın", CategoryQuizzes, completed(5)},
	{"quiz_10", "Quiz Ustası", "10 quiz tamamladınız! 🏅", "🏅", "10 quiz tamamlayın", CategoryQuizzes, completed(10)},
	{"quiz_20", "Quiz Şampiyonu", "20 quiz tamamladınız! 🏆", "🏆", "20 quiz tamamlayın", CategoryQuizzes, completed(20)},
	{"quiz_50", "Quiz Uzmanı", "50 quiz tamamladınız! 🎓", "🎓", "50 quiz tamamlayın", CategoryQuizzes, completed(50)},
	{"score_100", "Puan Toplayıcı", "100 puan topladınız! 💰", "💰", "100 puan toplayın", CategoryPoints, points(100)},
	{"score_250", "Puan Avcısı", "250 puan topladınız! 🎯", "🎯", "250 puan toplayın", CategoryPoints, points(250)},
	{"score_500", "Puan Ustası", "500 puan topladınız! 🏆", "🏆", "500 puan toplayın", CategoryPoints, points(500)},
	{"score_1000", "Puan Şampiyonu", "1000 puan topladınız! 👑", "👑", "1000 puan toplayın", CategoryPoints, points(1000)},
	{TypePerfectScore, "Mükemmel Skor", "Tüm soruları doğru cevapladınız! 🏆", "🏆", "Bir quiz'de tüm soruları doğru cevaplayın", CategoryScore, maxScore(100)},
	{"high_score_80", "İyi Başarı", "%80 başarı oranına ulaştınız! 🎯", "🎯", "%80 başarı oranına ulaşın", CategoryScore, maxScore(80)},
	{"high_score_90", "Yüksek Başarı", "%90 başarı oranına ulaştınız! 🌟", "🌟", "%90 başarı oranına ulaşın", CategoryScore, maxScore(90)},
	{"topic_master", "Konu Ustası", "3 farklı konuda çalıştınız! 📖", "📖", "3 farklı konuda çalışın", CategoryTopics, topics(3)},
	{"topic_expert", "Konu Uzmanı", "5 farklı konuda çalıştınız! 🎓", "🎓", "5 farklı konuda çalışın", CategoryTopics, topics(5)},
	{"daily_streak_3", "Düzenli Öğrenci", "3 gün üst üste çalıştınız! 📅", "📅", "3 gün üst üste çalışın", CategoryStreak, streak(3)},
	{"daily_streak_7", "Haftalık Çalışkan", "7 gün üst üste çalıştınız! 📆", "📆", "7 gün üst üste çalışın", CategoryStreak, streak(7)},
	{"daily_streak_14", "Kararlı Öğrenci", "14 gün üst üste çalıştınız! 💪", "💪", "14 gün üst üste çalışın", CategoryStreak, streak(14)},
	{"speed_learner", "Hızlı Öğrenci", "Bir günde 20 soru çözdünüz! ⚡", "⚡", "Bir günde 20 soru çözün", CategorySpecial,
		func(s entity.ActivityStats) bool { return s.AnsweredToday >= 20 }},
	{"weekend_warrior", "Hafta Sonu Savaşçısı", "Hafta sonu çalıştınız! 🌅", "🌅", "Hafta sonu çalışın", CategorySpecial,
		func(s entity.ActivityStats) bool { return s.WeekendAnswers >= 1 }},
}

// extraNames — старые названия, встречавшиеся в данных до унификации каталога
var extraNames = map[string]string{
	"İyi Başarı (%80)":    "high_score_80",
	"Yüksek Başarı (%90)": "high_score_90",
}

// Catalog возвращает копию каталога
func Catalog() []Rule {
	out := make([]Rule, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup ищет правило по типу
func Lookup(achType string) (Rule, bool) {
	for _, r := range catalog {
		if r.Type == achType {
			return r, true
		}
	}
	return Rule{}, false
}

// TypeByName возвращает соответствие "название -> тип" для восстановления пустых типов
func TypeByName() map[string]string {
	m := make(map[string]string, len(catalog)+len(extraNames))
	for _, r := range catalog {
		m[r.Name] = r.Type
	}
	for name, t := range extraNames {
		m[name] = t
	}
	return m
}

// Evaluate возвращает выполненные, но еще не полученные правила в порядке каталога
func Evaluate(stats entity.ActivityStats, earned map[string]struct{}) []Rule {
	var out []Rule
	for _, r := range catalog {
		if _, ok := earned[r.Type]; ok {
			continue
		}
		if r.Met(stats) {
			out = append(out, r)
		}
	}
	return out
}

// ToEntity строит запись достижения для пользователя
func (r Rule) ToEntity(userID uint) *entity.Achievement {
	return &entity.Achievement{
		UserID:                 userID,
		AchievementType:        r.Type,
		AchievementName:        r.Name,
		AchievementDescription: r.Description,
	}
}
