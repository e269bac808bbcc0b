package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pill_control_bot/internal/app"
	"pill_control_bot/internal/infra/config"
	idb "pill_control_bot/internal/infra/database"
	"pill_control_bot/internal/infra/logger"
	"pill_control_bot/internal/infra/scheduler"
	"pill_control_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	mainLogger := logger.Get().WithField("component", "main")
	mainLogger.Infof("Configuration loaded. LogLevel: %s, Environment: %s", cfg.LogLevel, cfg.Environment)

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		mainLogger.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()
	mainLogger.Info("Database connection established and schema applied.")

	// Initialize Repositories
	userRepo := idb.NewPostgresUserRepository(db)
	cycleRepo := idb.NewPostgresCycleRepository(db)
	doseRepo := idb.NewPostgresDoseRepository(db)
	friendRepo := idb.NewPostgresFriendRepository(db)
	reminderLogRepo := idb.NewPostgresReminderLogRepository(db)
	mainLogger.Info("Repositories initialized.")

	// Initialize Telegram Bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := logger.Get().WithField("component", "telebot").WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
			}
			entry.Error("Telegram handler error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.Fatalf("Could not create Telegram bot: %v", err)
	}

	// Initialize Services
	mascot := telegram.NewMascot()
	telegramClient := telegram.NewTelebotAdapter(bot)
	cycleService := app.NewCycleService(cycleRepo, cfg.BleedingWindowDays)
	doseService := app.NewDoseService(cycleRepo, doseRepo, cfg.BleedingWindowDays, time.Now)
	reminderService := app.NewReminderService(
		userRepo, cycleRepo, doseRepo, friendRepo, reminderLogRepo,
		telegramClient, mascot,
		logger.Get().WithField("component", "reminder_service"),
		cfg.ReminderWindowMinutes, cfg.BleedingWindowDays, time.Now,
	)
	mainLogger.Info("Services initialized.")

	// Initialize ReminderScheduler
	reminderScheduler := scheduler.NewReminderScheduler(
		reminderService,
		logger.Get().WithField("component", "scheduler"),
		cfg.CronSpecDoseCheck,
	)
	reminderScheduler.Start()

	// Register Handlers
	ctx := context.Background()
	handlerLogger := logger.Get().WithField("component", "telegram")
	telegram.RegisterBotCommands(ctx, bot, userRepo, handlerLogger)
	telegram.RegisterCycleHandlers(ctx, bot, userRepo, cycleService, doseService, reminderService, mascot, handlerLogger)
	telegram.RegisterDoseHandlers(ctx, bot, userRepo, doseService, handlerLogger)
	telegram.RegisterFriendHandlers(ctx, bot, userRepo, reminderService, handlerLogger)
	mainLogger.Info("Command handlers registered.")

	mainLogger.Info("Application setup complete. Bot and Scheduler are starting...")

	// Start bot in a goroutine so it doesn't block graceful shutdown handling
	go bot.Start()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	mainLogger.Info("Shutting down application...")
	reminderScheduler.Stop()
	bot.Stop()
	mainLogger.Info("Application shut down gracefully.")
}
