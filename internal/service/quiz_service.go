package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
	"github.com/yourusername/mathquiz-api/internal/domain/repository"
	"github.com/yourusername/mathquiz-api/internal/handler/dto"
	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
)

// poolMultiplier — во сколько раз пул кандидатов больше запрошенного количества
const poolMultiplier = 3

// QuizOptions — параметры подбора вопросов
type QuizOptions struct {
	DefaultQuestions int
	MaxQuestions     int
}

// QuizService управляет подбором вопросов и сессиями викторин
type QuizService struct {
	tx           TxRunner
	questionRepo repository.QuestionRepository
	sessionRepo  repository.QuizSessionRepository
	progressRepo repository.ProgressRepository
	achievements *AchievementService
	cacheRepo    repository.CacheRepository
	notifier     Notifier
	options      QuizOptions

	rngMu sync.Mutex
	rng   *rand.Rand
	now   func() time.Time
}

// NewQuizService создает новый сервис викторин
func NewQuizService(
	tx TxRunner,
	questionRepo repository.QuestionRepository,
	sessionRepo repository.QuizSessionRepository,
	progressRepo repository.ProgressRepository,
	achievements *AchievementService,
	cacheRepo repository.CacheRepository,
	notifier Notifier,
	options QuizOptions,
) *QuizService {
	if options.DefaultQuestions <= 0 {
		options.DefaultQuestions = entity.DefaultSessionQuestions
	}
	if options.MaxQuestions < options.DefaultQuestions {
		options.MaxQuestions = options.DefaultQuestions
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &QuizService{
		tx:           tx,
		questionRepo: questionRepo,
		sessionRepo:  sessionRepo,
		progressRepo: progressRepo,
		achievements: achievements,
		cacheRepo:    cacheRepo,
		notifier:     notifier,
		options:      options,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		now:          time.Now,
	}
}

// clampLimit приводит количество вопросов к диапазону 1..MaxQuestions
func (s *QuizService) clampLimit(limit int) int {
	if limit <= 0 {
		return s.options.DefaultQuestions
	}
	if limit > s.options.MaxQuestions {
		return s.options.MaxQuestions
	}
	return limit
}

// GetQuestions подбирает вопросы для класса: пул с распределением по темам,
// без вопросов, на которые пользователь уже ответил верно.
func (s *QuizService) GetQuestions(ctx context.Context, userID uint, grade int, limit int) (*dto.QuestionsResponse, error) {
	if !entity.ValidGrade(grade) {
		return nil, ErrInvalidGrade
	}
	limit = s.clampLimit(limit)
	pool := limit * poolMultiplier

	topics, err := s.questionRepo.Topics(ctx, grade)
	if err != nil {
		return nil, err
	}
	if len(topics) == 0 {
		return nil, ErrNoQuestions
	}

	perTopic := pool / len(topics)
	if perTopic < 1 {
		perTopic = 1
	}

	seen := make(map[uint]struct{}, pool)
	candidates := make([]entity.Question, 0, pool)
	add := func(qs []entity.Question) {
		for _, q := range qs {
			if _, dup := seen[q.ID]; dup {
				continue
			}
			seen[q.ID] = struct{}{}
			candidates = append(candidates, q)
		}
	}

	for _, topic := range topics {
		qs, err := s.questionRepo.RandomByGradeAndTopic(ctx, grade, topic, perTopic)
		if err != nil {
			return nil, err
		}
		add(qs)
	}
	if len(candidates) < pool {
		qs, err := s.questionRepo.RandomByGrade(ctx, grade, pool)
		if err != nil {
			return nil, err
		}
		add(qs)
	}
	if len(candidates) == 0 {
		return nil, ErrNoQuestions
	}

	correctIDs, err := s.progressRepo.CorrectQuestionIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	excluded := make(map[uint]struct{}, len(correctIDs))
	for _, id := range correctIDs {
		excluded[id] = struct{}{}
	}

	available := candidates[:0]
	for _, q := range candidates {
		if _, ok := excluded[q.ID]; !ok {
			available = append(available, q)
		}
	}
	if len(available) == 0 {
		return nil, ErrAllAnswered
	}

	s.rngMu.Lock()
	s.rng.Shuffle(len(available), func(i, j int) { available[i], available[j] = available[j], available[i] })
	if len(available) > limit {
		available = available[:limit]
	}
	questions := make([]dto.QuestionDTO, 0, len(available))
	for i, q := range available {
		shuffled := ShuffleOptions(q, s.rng)
		questions = append(questions, dto.QuestionDTO{
			ID:            q.ID,
			Number:        i + 1,
			Grade:         q.Grade,
			Topic:         q.Topic,
			QuestionText:  q.QuestionText,
			Options:       shuffled.OptionsMap(),
			CorrectAnswer: shuffled.CorrectAnswer,
			Difficulty:    q.Difficulty,
		})
	}
	s.rngMu.Unlock()

	return &dto.QuestionsResponse{
		Questions:         questions,
		Total:             len(questions),
		Grade:             grade,
		Topics:            topics,
		ExcludedQuestions: len(correctIDs),
	}, nil
}

// StartSession создает новую сессию викторины
func (s *QuizService) StartSession(ctx context.Context, userID uint, grade int) (*dto.StartSessionResponse, error) {
	if !entity.ValidGrade(grade) {
		return nil, ErrInvalidGrade
	}

	session := &entity.QuizSession{
		ID:             uuid.NewString(),
		UserID:         userID,
		Grade:          grade,
		TotalQuestions: s.options.DefaultQuestions,
		StartedAt:      s.now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		log.Printf("[QuizService.StartSession] Ошибка создания сессии для пользователя ID=%d: %v", userID, err)
		return nil, err
	}

	log.Printf("[QuizService.StartSession] Пользователь ID=%d начал сессию %s (grade=%d)", userID, session.ID, grade)
	return &dto.StartSessionResponse{
		SessionID:      session.ID,
		Grade:          session.Grade,
		TotalQuestions: session.TotalQuestions,
		StartedAt:      session.StartedAt,
	}, nil
}

// ownedSession возвращает сессию, если она принадлежит пользователю
func (s *QuizService) ownedSession(session *entity.QuizSession, err error, userID uint) (*entity.QuizSession, error) {
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrSessionForbidden
	}
	return session, nil
}

// SubmitAnswer сохраняет ответ пользователя. is_correct передается клиентом.
func (s *QuizService) SubmitAnswer(ctx context.Context, userID uint, req dto.SubmitAnswerRequest) error {
	answer := strings.ToUpper(strings.TrimSpace(req.UserAnswer))
	if entity.LetterIndex(answer) < 0 {
		return fmt.Errorf("%w: user_answer must be one of A, B, C, D", apperrors.ErrValidation)
	}
	if req.IsCorrect == nil {
		return fmt.Errorf("%w: is_correct is required", apperrors.ErrValidation)
	}

	session, err := s.sessionRepo.GetByID(ctx, req.SessionID)
	if _, err := s.ownedSession(session, err, userID); err != nil {
		return err
	}

	if _, err := s.questionRepo.GetByID(ctx, req.QuestionID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: question not found", apperrors.ErrNotFound)
		}
		return err
	}

	exists, err := s.progressRepo.Exists(ctx, userID, req.SessionID, req.QuestionID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyAnswered
	}

	progress := &entity.UserProgress{
		UserID:        userID,
		QuestionID:    req.QuestionID,
		UserAnswer:    answer,
		IsCorrect:     *req.IsCorrect,
		QuizSessionID: req.SessionID,
		AnsweredAt:    s.now(),
	}
	if err := s.progressRepo.Create(ctx, progress); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return ErrAlreadyAnswered
		}
		log.Printf("[QuizService.SubmitAnswer] Ошибка сохранения ответа user=%d session=%s question=%d: %v",
			userID, req.SessionID, req.QuestionID, err)
		return err
	}

	s.invalidateStats(ctx, userID)
	return nil
}

// CompleteSession фиксирует итог сессии и выдает достижения в одной транзакции
func (s *QuizService) CompleteSession(ctx context.Context, userID uint, req dto.CompleteSessionRequest) (*dto.CompleteSessionResponse, error) {
	if req.CorrectAnswers == nil {
		return nil, fmt.Errorf("%w: correct_answers is required", apperrors.ErrValidation)
	}
	correct := *req.CorrectAnswers
	total := req.TotalQuestions
	if total == 0 {
		total = entity.DefaultSessionQuestions
	}
	if total < 0 || correct < 0 || correct > total {
		return nil, fmt.Errorf("%w: correct_answers must be between 0 and total_questions", apperrors.ErrValidation)
	}

	score := entity.ScorePercentage(correct, total)
	perfect := total > 0 && correct == total

	var awarded []dto.AchievementDTO
	err := s.tx.Transaction(func(tx *gorm.DB) error {
		session, err := s.sessionRepo.GetForUpdate(ctx, tx, req.SessionID)
		if _, err := s.ownedSession(session, err, userID); err != nil {
			return err
		}

		if err := s.sessionRepo.Complete(ctx, tx, req.SessionID, correct, total, score, s.now()); err != nil {
			return err
		}

		awarded, err = s.achievements.awardTx(ctx, tx, userID, perfect)
		return err
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrForbidden) {
			log.Printf("[QuizService.CompleteSession] Ошибка завершения сессии %s пользователя ID=%d: %v", req.SessionID, userID, err)
		}
		return nil, err
	}

	s.invalidateStats(ctx, userID)
	if len(awarded) > 0 {
		s.notifier.AchievementsEarned(ctx, userID, awarded)
	}

	resp := &dto.CompleteSessionResponse{
		SessionID:       req.SessionID,
		ScorePercentage: score,
		CorrectAnswers:  correct,
		TotalQuestions:  total,
		NewAchievements: awarded,
	}
	if len(awarded) > 0 {
		first := awarded[0]
		resp.AchievementEarned = &first
	}
	log.Printf("[QuizService.CompleteSession] Сессия %s завершена: %d/%d (%s%%), новых достижений: %d",
		req.SessionID, correct, total, score.String(), len(awarded))
	return resp, nil
}

// invalidateStats сбрасывает кеш статистики пользователя
func (s *QuizService) invalidateStats(ctx context.Context, userID uint) {
	invalidateUserStats(ctx, s.cacheRepo, userID, "QuizService")
}
