package dto

import "time"

// DailyPoint — статистика за день
type DailyPoint struct {
	Date    string `json:"date"`
	Solved  int64  `json:"solved"`
	Correct int64  `json:"correct"`
}

// DailySummary — сводка по дневной статистике
type DailySummary struct {
	StudyDays      int     `json:"study_days"`
	AverageDaily   float64 `json:"average_daily"`
	MostActiveDay  string  `json:"most_active_day"`
	TotalStudyTime int64   `json:"total_study_time"`
}

// DailyProgressResponse — ответ /progress/daily
type DailyProgressResponse struct {
	Period    int          `json:"period"`
	DailyData []DailyPoint `json:"daily_data"`
	Summary   DailySummary `json:"summary"`
}

// TopicProgress — статистика по теме
type TopicProgress struct {
	Topic   string `json:"topic"`
	Total   int64  `json:"total"`
	Correct int64  `json:"correct"`
}

// WeeklyProgress — статистика за неделю
type WeeklyProgress struct {
	WeekStart    string `json:"week_start"`
	WeekEnd      string `json:"week_end"`
	Total        int64  `json:"total"`
	Correct      int64  `json:"correct"`
	PointsEarned int64  `json:"points_earned"`
	WeekTitle    string `json:"week_title"`
}

// DetailedDay — подробная запись за день
type DetailedDay struct {
	Date      string `json:"date"`
	Total     int64  `json:"total"`
	Correct   int64  `json:"correct"`
	Incorrect int64  `json:"incorrect"`
	Points    int64  `json:"points"`
}

// WrongAnswer — неверный ответ вместе с вопросом
type WrongAnswer struct {
	QuestionID    uint              `json:"question_id"`
	QuestionText  string            `json:"question_text"`
	Topic         string            `json:"topic"`
	Options       map[string]string `json:"options"`
	UserAnswer    string            `json:"user_answer"`
	CorrectAnswer string            `json:"correct_answer"`
	AnsweredAt    time.Time         `json:"answered_at"`
}

// WrongAnswerStats — сводка по неверным ответам
type WrongAnswerStats struct {
	TotalWrong int `json:"total_wrong"`
	TopicCount int `json:"topic_count"`
	DayCount   int `json:"day_count"`
}

// WrongAnswersResponse — ответ /progress/wrong-answers
type WrongAnswersResponse struct {
	WrongAnswers []WrongAnswer    `json:"wrong_answers"`
	Stats        WrongAnswerStats `json:"stats"`
}

// HistoryRow — строка экспорта истории ответов
type HistoryRow struct {
	AnsweredAt    time.Time
	Grade         int
	Topic         string
	QuestionText  string
	UserAnswer    string
	CorrectAnswer string
	IsCorrect     bool
	SessionID     string
}
