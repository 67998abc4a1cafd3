// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики,
// HTTP API мини-приложения и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/wallet-bot/internal/bot"
	"serotonyl.ru/wallet-bot/internal/bot/filters"
	"serotonyl.ru/wallet-bot/internal/config"
	"serotonyl.ru/wallet-bot/internal/db/postgres"
	"serotonyl.ru/wallet-bot/internal/features/admin"
	"serotonyl.ru/wallet-bot/internal/features/members"
	"serotonyl.ru/wallet-bot/internal/features/wheel"
	"serotonyl.ru/wallet-bot/internal/httpapi"
	"serotonyl.ru/wallet-bot/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	Wheel     *wheel.Service
	HTTP      *httpapi.Server // nil, если HTTP_ENABLED=false
	DB        *pgxpool.Pool
	BotAPI    *tgbotapi.BotAPI
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. Таблица призов (до БД: ошибка конфигурации не должна ждать базу) ===
	catalog, err := wheel.LoadCatalog(cfg.WheelPrizesFile)
	if err != nil {
		return nil, fmt.Errorf("ошибка таблицы призов: %w", err)
	}

	// === 2. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := postgres.Migrate(ctx, pool, migrations); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 3. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	// === 4. Репозитории ===
	memberRepo := members.NewRepository(pool)
	quotaRepo := wheel.NewRepository(pool)
	adminRepo := admin.NewRepository(pool)

	// === 5. Сервисы ===
	memberService := members.NewService(memberRepo, cfg.IsAdmin)
	wheelService := wheel.NewService(quotaRepo, catalog, wheel.SettingsFromConfig(cfg))
	memberService.OnJoin(wheelService.EnsureQuota)
	adminService := admin.NewService(adminRepo, memberService, wheelService, cfg.AdminPasswordHash)

	// === 6. Обработчики ===
	memberHandler := members.NewHandler(memberService)
	wheelHandler := wheel.NewHandler(wheelService, botAPI, cfg.WheelRenderInterval)
	adminHandler := admin.NewHandler(adminService, botAPI)
	wheelService.OnResult(wheelHandler.AnnounceResult)

	// === 7. HTTP API мини-приложения ===
	var server *httpapi.Server
	if cfg.HTTPEnabled {
		issuer := httpapi.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
		if cfg.MiniAppURL != "" {
			wheelHandler.WithMiniApp(cfg.MiniAppURL, issuer)
		}
		server = httpapi.NewServer(cfg.HTTPAddr, httpapi.NewRouter(wheelService, issuer, cfg.HTTPFrameInterval))
	}

	// === 8. Фильтры ===
	chatFilter := filters.NewChatFilter(cfg.FloodChatID, memberService, botAPI)

	// === 9. Собираем бота ===
	b := bot.New(botAPI, cfg, bot.Deps{
		Members:       memberService,
		MemberHandler: memberHandler,
		WheelHandler:  wheelHandler,
		AdminHandler:  adminHandler,
		ChatFilter:    chatFilter,
	})

	// === 10. Планировщик задач ===
	scheduler := jobs.NewScheduler(wheelService, cfg.Location())

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		Wheel:     wheelService,
		HTTP:      server,
		DB:        pool,
		BotAPI:    botAPI,
	}, nil
}
