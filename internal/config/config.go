// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	AdminIDsRaw      string  `envconfig:"ADMIN_IDS" required:"true"`
	AdminIDs         []int64 `envconfig:"-"` // заполним вручную
	TelegramBotToken string  `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// ID чата, в котором бот работает (единственный разрешённый групповой чат)
	FloodChatID int64 `envconfig:"FLOOD_CHAT_ID" required:"true"`

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"wallet_bot"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно. Иначе "go на каждый апдейт" = утечка памяти при флуде.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Admin ---
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH" required:"true"`

	// --- Wheel ---
	WheelDailySpins    int           `envconfig:"WHEEL_DAILY_SPINS" default:"3"`
	WheelExtraTurns    int           `envconfig:"WHEEL_EXTRA_TURNS" default:"5"`
	WheelSpinDuration  time.Duration `envconfig:"WHEEL_SPIN_DURATION" default:"3s"`
	WheelRevealSlack   time.Duration `envconfig:"WHEEL_REVEAL_SLACK" default:"200ms"`
	WheelFrameInterval time.Duration `envconfig:"WHEEL_FRAME_INTERVAL" default:"16ms"`
	// Как часто перерисовываем сообщение с колесом в чате. Telegram не любит частые правки.
	WheelRenderInterval time.Duration `envconfig:"WHEEL_RENDER_INTERVAL" default:"1s"`
	// Через сколько простоя закрываем сессию колеса в памяти
	WheelSessionTTL time.Duration `envconfig:"WHEEL_SESSION_TTL" default:"10m"`
	// Файл с таблицей призов (yaml/json/toml). Пусто — встроенная таблица.
	WheelPrizesFile string  `envconfig:"WHEEL_PRIZES_FILE" default:""`
	WheelCenterX    float64 `envconfig:"WHEEL_CENTER_X" default:"144"`
	WheelCenterY    float64 `envconfig:"WHEEL_CENTER_Y" default:"144"`

	// --- Particles ---
	ParticlesMax   int `envconfig:"PARTICLES_MAX" default:"400"`
	ParticlesBurst int `envconfig:"PARTICLES_BURST" default:"120"`

	// --- HTTP (mini-app) ---
	HTTPEnabled       bool          `envconfig:"HTTP_ENABLED" default:"false"`
	HTTPAddr          string        `envconfig:"HTTP_ADDR" default:":8080"`
	HTTPFrameInterval time.Duration `envconfig:"HTTP_FRAME_INTERVAL" default:"50ms"`
	JWTSecret         string        `envconfig:"JWT_SECRET" default:""`
	JWTTTL            time.Duration `envconfig:"JWT_TTL" default:"24h"`
	MiniAppURL        string        `envconfig:"MINIAPP_URL" default:""`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Feature Flags ---
	FeatureWheelEnabled bool `envconfig:"FEATURE_WHEEL_ENABLED" default:"true"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Location возвращает часовой пояс приложения.
// Если tzdata нет в контейнере — фиксированный UTC+3.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

// IsAdmin проверяет, входит ли пользователь в ADMIN_IDS.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (c *Config) Validate() error {
	if c.FloodChatID == 0 {
		return fmt.Errorf("FLOOD_CHAT_ID не задан или равен 0")
	}
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.WheelDailySpins < 0 {
		return fmt.Errorf("WHEEL_DAILY_SPINS должен быть >= 0")
	}
	if c.WheelExtraTurns < 0 {
		return fmt.Errorf("WHEEL_EXTRA_TURNS должен быть >= 0")
	}
	if c.WheelSpinDuration <= 0 || c.WheelFrameInterval <= 0 || c.WheelRenderInterval <= 0 {
		return fmt.Errorf("WHEEL_SPIN_DURATION, WHEEL_FRAME_INTERVAL и WHEEL_RENDER_INTERVAL должны быть > 0")
	}
	if c.WheelRevealSlack <= 0 {
		return fmt.Errorf("WHEEL_REVEAL_SLACK должен быть > 0")
	}
	if c.ParticlesMax <= 0 || c.ParticlesBurst < 0 {
		return fmt.Errorf("некорректные PARTICLES_MAX/PARTICLES_BURST")
	}
	if c.HTTPEnabled && len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET обязателен при HTTP_ENABLED и должен быть не короче 16 символов")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	ids, err := parseInt64CSV(cfg.AdminIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS parse: %w", err)
	}
	cfg.AdminIDs = ids

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseInt64CSV(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
