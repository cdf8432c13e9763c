package dto

// ChatMessage — сообщение из истории диалога.
// В истории есть и ответы помощника, поэтому предел выше, чем у вопроса.
type ChatMessage struct {
	Role    string `json:"role" binding:"max=20"`
	Content string `json:"content" binding:"max=6000"`
}

// AIChatRequest — свободный вопрос помощнику
type AIChatRequest struct {
	Message             string        `json:"message" binding:"max=2000"`
	Context             string        `json:"context" binding:"max=2000"`
	ConversationHistory []ChatMessage `json:"conversation_history" binding:"max=50,dive"`
}

// AIQuizHelpRequest — помощь по конкретному вопросу
type AIQuizHelpRequest struct {
	QuestionText        string            `json:"question_text" binding:"max=1000"`
	UserAnswer          string            `json:"user_answer" binding:"max=500"`
	IsCorrect           *bool             `json:"is_correct"`
	Options             map[string]string `json:"options" binding:"max=4,dive,max=500"`
	ConversationHistory []ChatMessage     `json:"conversation_history" binding:"max=50,dive"`
}

// AIGeneralHelpRequest — общая помощь по теме
type AIGeneralHelpRequest struct {
	Topic               string        `json:"topic" binding:"max=200"`
	ConversationHistory []ChatMessage `json:"conversation_history" binding:"max=50,dive"`
}

// Performance — результаты ученика для мотивационного сообщения
type Performance struct {
	TotalQuestions int     `json:"total_questions"`
	CorrectAnswers int     `json:"correct_answers"`
	SuccessRate    float64 `json:"success_rate"`
	TotalPoints    int     `json:"total_points"`
	Streak         int     `json:"streak"`
}

// AIMotivationRequest — запрос мотивационного сообщения
type AIMotivationRequest struct {
	Performance         Performance   `json:"performance"`
	ConversationHistory []ChatMessage `json:"conversation_history" binding:"max=50,dive"`
}

// AIResponse — ответ помощника
type AIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
