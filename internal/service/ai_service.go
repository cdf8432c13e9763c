package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/yourusername/mathquiz-api/internal/handler/dto"
	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
)

// historyWindow — сколько последних сообщений диалога попадает в промпт
const historyWindow = 5

// ContentGenerator генерирует текст по промпту (реализуется pkg/gemini.Client)
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// AIService формирует промпты для помощника MatchCatAI
type AIService struct {
	generator ContentGenerator
}

// NewAIService создает сервис. nil generator означает, что помощник выключен.
func NewAIService(generator ContentGenerator) *AIService {
	return &AIService{generator: generator}
}

// Enabled сообщает, настроен ли помощник
func (s *AIService) Enabled() bool {
	return s != nil && s.generator != nil
}

// formatHistory оставляет последние сообщения диалога
func formatHistory(history []dto.ChatMessage) string {
	if len(history) == 0 {
		return ""
	}
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	var b strings.Builder
	b.WriteString("\n\nSohbet Geçmişi:\n")
	for _, msg := range history {
		switch msg.Role {
		case "user":
			fmt.Fprintf(&b, "Kullanıcı: %s\n", msg.Content)
		case "assistant":
			fmt.Fprintf(&b, "AI: %s\n", msg.Content)
		}
	}
	return b.String()
}

// buildPrompt оборачивает сообщение пользователя системной инструкцией
func buildPrompt(message, background string, history []dto.ChatMessage) string {
	return fmt.Sprintf(`Sen MatchCatAI, ilkokul çocuklarına matematik öğreten bir AI asistanısın.
Çok basit ve kısa cevaplar ver. İlkokul çocuğu anlasın.

Bağlam: %s
%s
Kullanıcı mesajı: %s

Yanıtını Türkçe olarak ver, emoji kullan ve ÇOK KISA YAZ.
Sohbet geçmişini dikkate al ve bağlamı koru.`, background, formatHistory(history), message)
}

// formatOptions печатает варианты ответа в порядке букв
func formatOptions(options map[string]string) string {
	if len(options) == 0 {
		return ""
	}
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("\nŞıklar:\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "%s) %s\n", k, options[k])
	}
	return b.String()
}

func (s *AIService) generate(ctx context.Context, op, message, background string, history []dto.ChatMessage) (*dto.AIResponse, error) {
	if !s.Enabled() {
		return nil, ErrAIDisabled
	}

	text, err := s.generator.GenerateContent(ctx, buildPrompt(message, background, history))
	if err != nil {
		log.Printf("[AIService.%s] Ошибка Gemini: %v", op, err)
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstream, err)
	}
	return &dto.AIResponse{Success: true, Message: text}, nil
}

// Chat отвечает на свободный вопрос
func (s *AIService) Chat(ctx context.Context, req dto.AIChatRequest) (*dto.AIResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", apperrors.ErrValidation)
	}
	return s.generate(ctx, "Chat", message, req.Context, req.ConversationHistory)
}

// QuizHelp объясняет вопрос викторины; для неверного ответа используется подробный разбор
func (s *AIService) QuizHelp(ctx context.Context, req dto.AIQuizHelpRequest) (*dto.AIResponse, error) {
	question := strings.TrimSpace(req.QuestionText)
	if question == "" {
		return nil, fmt.Errorf("%w: question_text is required", apperrors.ErrValidation)
	}
	options := formatOptions(req.Options)

	correctness := "bilinmiyor"
	if req.IsCorrect != nil {
		correctness = "Hayır"
		if *req.IsCorrect {
			correctness = "Evet"
		}
	}
	background := fmt.Sprintf("Soru: %s\n%sKullanıcı cevabı: %s\nDoğru mu: %s", question, options, req.UserAnswer, correctness)

	var message string
	if req.IsCorrect != nil && !*req.IsCorrect {
		message = fmt.Sprintf(`Bu matematik sorusu için basit yardım et:

Soru: %s
%s
Kullanıcının yanlış cevabı: %s

Lütfen şunları yap (İLKOKUL ÇOCUĞU İÇİN):
1. Soruyu çok basit kelimelerle açıkla
2. Doğru cevabı söyle ve neden doğru olduğunu basitçe anlat
3. Neden yanlış yapmış olabileceğini basitçe söyle
4. Bir sonraki sefere nasıl yapacağını basitçe anlat
5. Kullanıcıyı cesaretlendir

Yanıtını şu formatta ver (ÇOK BASİT VE KISA):
🔍 Bu soru ne diyor: [çok basit açıklama]
✅ Doğru cevap: [cevabı söyle]
❌ Neden yanlış yaptın: [basit açıklama]
💡 Bir dahaki sefere: [basit ipucu]
🌟 Sen yapabilirsin! [cesaretlendir]`, question, options, req.UserAnswer)
	} else {
		var extra strings.Builder
		if req.UserAnswer != "" {
			fmt.Fprintf(&extra, "Kullanıcı cevabı: %s\n", req.UserAnswer)
		}
		if req.IsCorrect != nil {
			fmt.Fprintf(&extra, "Cevap doğru mu: %s\n", correctness)
		}
		message = fmt.Sprintf(`Bu matematik sorusu için basit yardım et (İLKOKUL ÇOCUĞU İÇİN):
Soru: %s
%s%s
Lütfen (ÇOK BASİT VE KISA):
1. Soruyu basit kelimelerle açıkla
2. Doğru cevabı söyle
3. Kullanıcıyı cesaretlendir`, question, options, extra.String())
	}
	return s.generate(ctx, "QuizHelp", message, background, req.ConversationHistory)
}

// GeneralHelp рассказывает о теме; пустая тема означает математику в целом
func (s *AIService) GeneralHelp(ctx context.Context, req dto.AIGeneralHelpRequest) (*dto.AIResponse, error) {
	topic := strings.TrimSpace(req.Topic)
	subject := "Matematik"
	if topic != "" {
		subject = topic + " konusu hakkında"
	}
	message := fmt.Sprintf("%s basit bilgi ver.\nİlkokul çocuğu anlasın. Çok kısa yaz.", subject)
	return s.generate(ctx, "GeneralHelp", message, "Topic: "+topic, req.ConversationHistory)
}

// Motivation пишет мотивационное сообщение по результатам ученика
func (s *AIService) Motivation(ctx context.Context, req dto.AIMotivationRequest) (*dto.AIResponse, error) {
	p := req.Performance
	rate := p.SuccessRate
	if rate == 0 && p.TotalQuestions > 0 {
		rate = percentage(int64(p.CorrectAnswers), int64(p.TotalQuestions))
	}
	points := p.TotalPoints
	if points == 0 {
		points = p.CorrectAnswers * 10
	}

	message := fmt.Sprintf(`Öğrencinin performansı:
- Toplam soru: %d
- Doğru cevap: %d
- Başarı oranı: %.1f%%
- Toplam puan: %d
- Seri: %d gün

Bu performansa göre basit motivasyon mesajı yaz.
İlkokul çocuğu anlasın. Çok kısa yaz.`, p.TotalQuestions, p.CorrectAnswers, rate, points, p.Streak)

	background := fmt.Sprintf("Performance: total=%d correct=%d rate=%.1f", p.TotalQuestions, p.CorrectAnswers, rate)
	return s.generate(ctx, "Motivation", message, background, req.ConversationHistory)
}
