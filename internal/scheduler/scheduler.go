package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// reconcileLockKey — ключ блокировки, чтобы сверку выполнял один экземпляр
const reconcileLockKey = "mathquiz:lock:achievement_reconcile"

// Reconciler сверяет достижения активных пользователей (реализуется service.AchievementService)
type Reconciler interface {
	Reconcile(ctx context.Context, since time.Time) (int, int, error)
}

// Locker выдает распределенную блокировку (реализуется CacheRepository.SetNX)
type Locker interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
}

// Scheduler запускает фоновые задачи приложения
type Scheduler struct {
	scheduler  *gocron.Scheduler
	reconciler Reconciler
	locker     Locker
	interval   time.Duration

	mu      sync.Mutex
	lastRun time.Time
	ctx     context.Context
	now     func() time.Time
}

// New создает планировщик. locker может быть nil, тогда блокировка не берется.
func New(reconciler Reconciler, locker Locker, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler:  s,
		reconciler: reconciler,
		locker:     locker,
		interval:   interval,
		ctx:        context.Background(),
		now:        time.Now,
	}
}

// Start регистрирует задачи и запускает их без блокировки вызывающего
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", s.interval)
	}
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	if _, err := s.scheduler.Every(s.interval).Do(s.reconcileAchievements); err != nil {
		return fmt.Errorf("schedule achievement reconcile: %w", err)
	}
	s.scheduler.StartAsync()
	log.Printf("[Scheduler] Сверка достижений запущена, интервал %s", s.interval)
	return nil
}

// Stop останавливает все задачи
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	log.Println("[Scheduler] Остановлен")
}

// reconcileAchievements проверяет достижения пользователей, активных с прошлого запуска.
// Первый запуск смотрит на два интервала назад.
func (s *Scheduler) reconcileAchievements() {
	s.mu.Lock()
	ctx := s.ctx
	now := s.now()
	since := s.lastRun
	if since.IsZero() {
		since = now.Add(-2 * s.interval)
	}
	s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	if s.locker != nil {
		acquired, err := s.locker.SetNX(ctx, reconcileLockKey, now.Unix(), s.interval/2)
		if err != nil {
			log.Printf("[Scheduler] Ошибка получения блокировки, сверка выполняется без нее: %v", err)
		} else if !acquired {
			log.Printf("[Scheduler] Сверка уже выполняется другим экземпляром")
			return
		}
	}

	users, awarded, err := s.reconciler.Reconcile(ctx, since)
	if err != nil {
		log.Printf("[Scheduler] Ошибка сверки достижений: %v", err)
		return
	}

	s.mu.Lock()
	s.lastRun = now
	s.mu.Unlock()
	log.Printf("[Scheduler] Сверка достижений: пользователей=%d, выдано=%d", users, awarded)
}
