package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	Gemini    GeminiConfig
	Email     EmailConfig
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Scheduler SchedulerConfig
	Quiz      QuizConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port           string
	ReadTimeout    int      `mapstructure:"read_timeout"`
	WriteTimeout   int      `mapstructure:"write_timeout"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	TemplatesGlob  string   `mapstructure:"templates_glob"`
	StaticDir      string   `mapstructure:"static_dir"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string `mapstructure:"migrations_path"`
}

// RedisConfig содержит настройки подключения к Redis.
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: "single", "sentinel" или "cluster". По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: список адресов (хост:порт) для всех режимов.
	Addrs []string `mapstructure:"addrs"`

	// Addr: адрес для режима single, если Addrs пуст.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName нужен только для режима sentinel
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"` // мс
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"` // мс
}

// SessionConfig содержит настройки подписанной сессии (JWT в HttpOnly cookie)
type SessionConfig struct {
	Secret     string `mapstructure:"secret"`
	TTLHours   int    `mapstructure:"ttl_hours"`
	CookieName string `mapstructure:"cookie_name"`
	Issuer     string `mapstructure:"issuer"`
}

// GeminiConfig содержит настройки AI-помощника
type GeminiConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Model      string `mapstructure:"model"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
}

// Enabled сообщает, настроен ли AI-помощник
func (g GeminiConfig) Enabled() bool {
	return g.APIKey != ""
}

// EmailConfig содержит настройки отправки писем с формы обратной связи
type EmailConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
	ContactTo    string `mapstructure:"contact_to"`
}

// RateLimitConfig содержит лимиты для чувствительных эндпоинтов
type RateLimitConfig struct {
	AuthPerMinute    int `mapstructure:"auth_per_minute"`
	AIPerMinute      int `mapstructure:"ai_per_minute"`
	ContactPerMinute int `mapstructure:"contact_per_minute"`
}

// SchedulerConfig содержит настройки фоновых задач
type SchedulerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// ReconcileIntervalMin — период сверки достижений в минутах
	ReconcileIntervalMin int `mapstructure:"reconcile_interval_min"`
}

// QuizConfig содержит параметры викторин
type QuizConfig struct {
	DefaultQuestions int `mapstructure:"default_questions"`
	MaxQuestions     int `mapstructure:"max_questions"`
	StatsCacheSec    int `mapstructure:"stats_cache_sec"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// SessionTTL возвращает время жизни сессии
func (s SessionConfig) SessionTTL() time.Duration {
	return time.Duration(s.TTLHours) * time.Hour
}

// GeminiTimeout возвращает тайм-аут запроса к Gemini
func (g GeminiConfig) GeminiTimeout() time.Duration {
	return time.Duration(g.TimeoutSec) * time.Second
}

// Load загружает конфигурацию из .env, файла и переменных окружения и проверяет ее целиком
func Load(configPath string) (*Config, error) {
	cfg, err := read(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabase загружает конфигурацию для утилит, которым нужна только база данных
// (миграции, импорт вопросов). Параметры сессии, Redis и Gemini не проверяются.
func LoadDatabase(configPath string) (*DatabaseConfig, error) {
	cfg, err := read(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Database.Validate(); err != nil {
		return nil, err
	}
	return &cfg.Database, nil
}

func read(configPath string) (*Config, error) {
	// .env необязателен: в контейнере переменные приходят из окружения
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Предупреждение: не удалось прочитать .env: %v", err)
	}

	vip := viper.New()

	setDefaults(vip)

	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")
	vip.BindEnv("database.migrations_path", "DATABASE_MIGRATIONS_PATH")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("session.secret", "SESSION_SECRET")
	vip.BindEnv("session.ttl_hours", "SESSION_TTL_HOURS")
	vip.BindEnv("session.cookie_name", "SESSION_COOKIE_NAME")

	vip.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	vip.BindEnv("gemini.base_url", "GEMINI_BASE_URL")
	vip.BindEnv("gemini.model", "GEMINI_MODEL")
	vip.BindEnv("gemini.timeout_sec", "GEMINI_TIMEOUT_SEC")

	vip.BindEnv("email.resend_api_key", "RESEND_API_KEY")
	vip.BindEnv("email.from", "EMAIL_FROM")
	vip.BindEnv("email.contact_to", "EMAIL_CONTACT_TO")

	vip.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
	vip.BindEnv("scheduler.reconcile_interval_min", "SCHEDULER_RECONCILE_INTERVAL_MIN")

	vip.BindEnv("server.port", "SERVER_PORT")
	vip.BindEnv("server.templates_glob", "SERVER_TEMPLATES_GLOB")

	if configPath != "" {
		vip.SetConfigFile(configPath)
		// Файл необязателен, т.к. все ключи привязаны к env
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Addr: %s (mode %s)", cfg.Redis.Addr, cfg.Redis.Mode)
		log.Printf("Session TTL Hours: %d", cfg.Session.TTLHours)
		log.Printf("Gemini Enabled: %t (model %s)", cfg.Gemini.Enabled(), cfg.Gemini.Model)
		log.Printf("Resend Enabled: %t", cfg.Email.ResendAPIKey != "")
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("-----------------------------------------")
	}

	return &cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if len(c.Session.Secret) < 32 {
		return fmt.Errorf("session secret must be at least 32 bytes (check SESSION_SECRET env var)")
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if c.Quiz.MaxQuestions < c.Quiz.DefaultQuestions {
		return fmt.Errorf("quiz.max_questions (%d) must not be less than quiz.default_questions (%d)", c.Quiz.MaxQuestions, c.Quiz.DefaultQuestions)
	}
	return nil
}

// Validate проверяет параметры подключения к базе данных
func (d *DatabaseConfig) Validate() error {
	if d.Host == "" || d.DBName == "" || d.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if os.Getenv("GIN_MODE") == "release" && d.Password == "" {
		return fmt.Errorf("database password is required in release mode (check DATABASE_PASSWORD env var)")
	}
	return nil
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.read_timeout", 15)
	vip.SetDefault("server.write_timeout", 45)
	vip.SetDefault("server.allowed_origins", []string{"http://localhost:8080", "http://localhost:3000"})
	vip.SetDefault("server.templates_glob", "web/templates/*.html")
	vip.SetDefault("server.static_dir", "web/static")

	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("database.migrations_path", "file://migrations")

	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("redis.addr", "localhost:6379")

	vip.SetDefault("session.ttl_hours", 24)
	vip.SetDefault("session.cookie_name", "mq_session")
	vip.SetDefault("session.issuer", "mathquiz-api")

	vip.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	vip.SetDefault("gemini.model", "gemini-2.0-flash")
	vip.SetDefault("gemini.timeout_sec", 30)

	vip.SetDefault("rate_limit.auth_per_minute", 10)
	vip.SetDefault("rate_limit.ai_per_minute", 15)
	vip.SetDefault("rate_limit.contact_per_minute", 3)

	vip.SetDefault("scheduler.enabled", true)
	vip.SetDefault("scheduler.reconcile_interval_min", 60)

	vip.SetDefault("quiz.default_questions", 20)
	vip.SetDefault("quiz.max_questions", 50)
	vip.SetDefault("quiz.stats_cache_sec", 60)
}
