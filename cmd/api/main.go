package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/mathquiz-api/internal/config"
	"github.com/yourusername/mathquiz-api/internal/handler"
	"github.com/yourusername/mathquiz-api/internal/middleware"
	pgRepo "github.com/yourusername/mathquiz-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/mathquiz-api/internal/repository/redis"
	"github.com/yourusername/mathquiz-api/internal/scheduler"
	"github.com/yourusername/mathquiz-api/internal/service"
	ws "github.com/yourusername/mathquiz-api/internal/websocket"
	"github.com/yourusername/mathquiz-api/pkg/auth"
	"github.com/yourusername/mathquiz-api/pkg/database"
	"github.com/yourusername/mathquiz-api/pkg/gemini"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	isProduction := gin.Mode() == gin.ReleaseMode

	// Создаем контекст с отменой для корректного завершения работы горутин
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), !isProduction)
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db, cfg.Database.MigrationsPath); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	redisClient, err := database.NewUniversalRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	sessionRepo := pgRepo.NewQuizSessionRepo(db)
	progressRepo := pgRepo.NewProgressRepo(db)
	achievementRepo := pgRepo.NewAchievementRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	sessions, err := auth.NewSessionManager(
		cfg.Session.Secret,
		cfg.Session.Issuer,
		cfg.Session.CookieName,
		cfg.Session.SessionTTL(),
		isProduction,
	)
	if err != nil {
		log.Printf("Failed to initialize SessionManager: %v", err)
		os.Exit(1)
	}

	// --- WebSocket: хаб и доставка уведомлений между экземплярами ---
	hub := ws.NewHub()
	go hub.Run(ctx)

	var pubSubProvider ws.PubSubProvider = &ws.NoOpPubSub{}
	redisProvider, err := ws.NewRedisPubSub(redisClient)
	if err != nil {
		log.Printf("Ошибка при создании Redis PubSub провайдера: %v. Уведомления будут только локальными.", err)
	} else {
		pubSubProvider = redisProvider
	}
	notifier := ws.NewNotifier(hub, pubSubProvider, ws.DefaultNotificationChannel)
	go func() {
		if err := notifier.Run(ctx); err != nil {
			log.Printf("Notifier остановлен с ошибкой: %v", err)
		}
	}()

	// Инициализируем сервисы
	authService, err := service.NewAuthService(userRepo, cacheRepo, sessions)
	if err != nil {
		log.Printf("Failed to initialize AuthService: %v", err)
		os.Exit(1)
	}
	achievementService := service.NewAchievementService(db, progressRepo, achievementRepo, cacheRepo, notifier)
	quizService := service.NewQuizService(db, questionRepo, sessionRepo, progressRepo, achievementService, cacheRepo, notifier, service.QuizOptions{
		DefaultQuestions: cfg.Quiz.DefaultQuestions,
		MaxQuestions:     cfg.Quiz.MaxQuestions,
	})
	progressService := service.NewProgressService(progressRepo, achievementRepo, cacheRepo, time.Duration(cfg.Quiz.StatsCacheSec)*time.Second)

	// Gemini подключается только при наличии ключа
	var aiService *service.AIService
	if cfg.Gemini.Enabled() {
		geminiClient, err := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.BaseURL, cfg.Gemini.Model, cfg.Gemini.GeminiTimeout())
		if err != nil {
			log.Printf("Failed to initialize Gemini client: %v", err)
			os.Exit(1)
		}
		aiService = service.NewAIService(geminiClient)
	} else {
		log.Println("GEMINI_API_KEY не задан, AI-помощник отключен")
		aiService = service.NewAIService(nil)
	}

	var emailService service.EmailService = &service.NoopEmailService{}
	if cfg.Email.ResendAPIKey != "" {
		resendService, err := service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From, cfg.Email.ContactTo)
		if err != nil {
			log.Printf("Failed to initialize Resend email service: %v", err)
			os.Exit(1)
		}
		emailService = resendService
	}
	contactService := service.NewContactService(emailService)

	// Фоновая сверка достижений
	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs = scheduler.New(achievementService, cacheRepo, time.Duration(cfg.Scheduler.ReconcileIntervalMin)*time.Minute)
		if err := jobs.Start(ctx); err != nil {
			log.Printf("Failed to start scheduler: %v", err)
			os.Exit(1)
		}
	}

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService, sessions)
	quizHandler := handler.NewQuizHandler(quizService)
	achievementHandler := handler.NewAchievementHandler(achievementService)
	progressHandler := handler.NewProgressHandler(progressService)
	aiHandler := handler.NewAIHandler(aiService)
	contactHandler := handler.NewContactHandler(contactService)
	pageHandler := handler.NewPageHandler(authService, sessions)
	wsHandler := handler.NewWSHandler(hub, cfg.Server.AllowedOrigins)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(authService, sessions)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	router := gin.Default()

	if isProduction {
		// Production: не доверять прокси-заголовкам
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.LoadHTMLGlob(cfg.Server.TemplatesGlob)
	router.Static("/static", cfg.Server.StaticDir)

	// HTML-страницы
	router.GET("/", authMiddleware.OptionalSession(), pageHandler.Index())
	router.GET("/about", authMiddleware.OptionalSession(), pageHandler.About())
	router.GET("/contact", authMiddleware.OptionalSession(), pageHandler.Contact())
	router.GET("/login", authMiddleware.OptionalSession(), pageHandler.Login)
	router.GET("/register", authMiddleware.OptionalSession(), pageHandler.Register)
	router.GET("/logout", authMiddleware.OptionalSession(), pageHandler.Logout)

	pages := router.Group("", authMiddleware.RequirePage())
	{
		pages.GET("/quiz", pageHandler.Quiz())
		pages.GET("/profile", pageHandler.Profile())
		pages.GET("/progress", pageHandler.Progress())
		pages.GET("/lesson_notes", pageHandler.LessonNotes())
	}

	api := router.Group("/api")
	{
		authLimit := rateLimiter.Limit(middleware.PerMinute("auth", cfg.RateLimit.AuthPerMinute))
		api.POST("/register", authLimit, authHandler.Register)
		api.POST("/login", authLimit, authHandler.Login)
		api.POST("/contact", rateLimiter.Limit(middleware.PerMinute("contact", cfg.RateLimit.ContactPerMinute)), contactHandler.Submit)

		authed := api.Group("", authMiddleware.RequireSession())
		{
			authed.POST("/logout", authHandler.Logout)
			authed.POST("/profile/update", authHandler.UpdateProfile)
			authed.GET("/session/user", authHandler.SessionUser)

			quiz := authed.Group("/quiz")
			{
				quiz.GET("/questions", middleware.ExtractIntQuery("limit", handler.LimitContextKey, cfg.Quiz.DefaultQuestions), quizHandler.GetQuestions)
				quiz.POST("/start", quizHandler.Start)
				quiz.POST("/submit", quizHandler.Submit)
				quiz.POST("/complete", quizHandler.Complete)
			}

			achievements := authed.Group("/achievements")
			{
				achievements.GET("", achievementHandler.List)
				achievements.POST("/check", achievementHandler.Check)
				achievements.GET("/all", achievementHandler.Catalog)
				achievements.GET("/unearned", achievementHandler.Unearned)
				achievements.POST("/cleanup", achievementHandler.Cleanup)
			}

			authed.GET("/user/stats", progressHandler.UserStats)
			progress := authed.Group("/progress")
			{
				progress.GET("/daily", middleware.ExtractIntQuery("period", handler.PeriodContextKey, handler.DefaultPeriodDays), progressHandler.Daily)
				progress.GET("/topics", progressHandler.Topics)
				progress.GET("/weekly", progressHandler.Weekly)
				progress.GET("/detailed", progressHandler.Detailed)
				progress.GET("/wrong-answers", progressHandler.WrongAnswers)
				progress.GET("/export", progressHandler.Export)
			}

			ai := authed.Group("/ai", rateLimiter.LimitByUser(middleware.PerMinute("ai", cfg.RateLimit.AIPerMinute)))
			{
				ai.POST("/chat", aiHandler.Chat)
				ai.POST("/quiz-help", aiHandler.QuizHelp)
				ai.POST("/general-help", aiHandler.GeneralHelp)
				ai.POST("/motivation", aiHandler.Motivation)
			}

			authed.GET("/ws", wsHandler.HandleConnection)
		}
	}

	// Служебные эндпоинты WebSocket
	router.GET("/health/ws", gin.WrapF(ws.HealthCheckHandler(hub)))
	router.GET("/metrics/ws", gin.WrapF(ws.MetricsHandler(hub)))

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	log.Println("Shutting down server...")

	if jobs != nil {
		jobs.Stop()
	}

	// Отправляем сигнал завершения для всех горутин
	cancel()

	if err := pubSubProvider.Close(); err != nil {
		log.Printf("Error closing PubSub provider: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
