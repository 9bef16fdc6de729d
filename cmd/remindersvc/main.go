package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/limaudio/taskman/internal/infra/config"
	"github.com/limaudio/taskman/internal/infra/logging"
	"github.com/limaudio/taskman/internal/notify"
	"github.com/limaudio/taskman/internal/repo/db"
	"github.com/limaudio/taskman/internal/repo/task"
	"github.com/limaudio/taskman/internal/svc/remindersvc"
)

const (
	appName = "taskman"
	svcName = "remindersvc"
)

type Config struct {
	config.EnvConfig

	Log      logging.LoggerConfig  `envPrefix:"LOG_"`
	DB       db.Config             `envPrefix:"DB_"`
	Telegram notify.TelegramConfig `envPrefix:"TELEGRAM_"`

	// Schedule is the cron expression driving the deadline sweep
	Schedule string `env:"SCHEDULE" default:"*/5 * * * *"`
	// Once runs a single sweep and exits instead of scheduling
	Once bool `env:"ONCE" default:"false"`
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	if err := config.LoadDotEnv(".env"); err != nil {
		panic(err)
	}

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	if err := run(ctx, cfg); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	log := logging.GetLogger("cmd.remindersvc")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
			panic(err)
		}

		log.InfoContext(ctx, "shutdown")
	}()

	store, err := db.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	tasks := task.NewSQLiteTaskRepository(store)
	notifier := notify.NewTelegram(cfg.Telegram)
	reminders := remindersvc.NewReminderService(tasks, notifier)

	sweep := func() {
		if err := reminders.Sweep(ctx, time.Now().UTC()); err != nil {
			log.ErrorContext(ctx, "sweep failed", "error", err)
		}
	}

	if cfg.Once {
		sweep()

		return nil
	}

	scheduler := cron.New()

	if _, err := scheduler.AddFunc(cfg.Schedule, sweep); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}

	scheduler.Start()
	log.InfoContext(ctx, "scheduler started", "schedule", cfg.Schedule)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	<-scheduler.Stop().Done()

	return nil
}
