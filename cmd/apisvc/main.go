package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/limaudio/taskman/internal/infra/config"
	"github.com/limaudio/taskman/internal/infra/logging"
	http_ "github.com/limaudio/taskman/internal/infra/transport/http"
	"github.com/limaudio/taskman/internal/notify"
	"github.com/limaudio/taskman/internal/repo/db"
	"github.com/limaudio/taskman/internal/repo/direction"
	"github.com/limaudio/taskman/internal/repo/permission"
	"github.com/limaudio/taskman/internal/repo/refreshtoken"
	"github.com/limaudio/taskman/internal/repo/role"
	"github.com/limaudio/taskman/internal/repo/task"
	"github.com/limaudio/taskman/internal/repo/user"
	"github.com/limaudio/taskman/internal/svc/authsvc"
	"github.com/limaudio/taskman/internal/svc/directionsvc"
	"github.com/limaudio/taskman/internal/svc/hooksvc"
	"github.com/limaudio/taskman/internal/svc/permissionsvc"
	"github.com/limaudio/taskman/internal/svc/rolesvc"
	"github.com/limaudio/taskman/internal/svc/tasksvc"
	"github.com/limaudio/taskman/internal/svc/uploadsvc"
	"github.com/limaudio/taskman/internal/svc/usersvc"
	"github.com/limaudio/taskman/internal/validation"
)

const (
	appName = "taskman"
	svcName = "apisvc"

	serviceID = "limaudio-task-manager-api"
)

type Config struct {
	config.EnvConfig

	Log      logging.LoggerConfig          `envPrefix:"LOG_"`
	HTTP     http_.HTTPTransportConfig     `envPrefix:"HTTP_"`
	DB       db.Config                     `envPrefix:"DB_"`
	Auth     authsvc.TokenServiceConfig    `envPrefix:"AUTH_"`
	Upload   uploadsvc.UploadServiceConfig `envPrefix:"UPLOAD_"`
	Telegram notify.TelegramConfig         `envPrefix:"TELEGRAM_"`
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
	defer func() {
		log := logging.GetLogger("cmd.apisvc")

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

	users := user.NewSQLiteUserRepository(store)
	roles := role.NewSQLiteRoleRepository(store)
	permissions := permission.NewSQLitePermissionRepository(store)
	directions := direction.NewSQLiteDirectionRepository(store)
	tasks := task.NewSQLiteTaskRepository(store)
	refreshTokens := refreshtoken.NewSQLiteRefreshTokenRepository(store)

	validator := validation.NewEngine(store)
	notifier := notify.NewTelegram(cfg.Telegram)

	tokenSvc, err := authsvc.NewTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("new token service: %w", err)
	}

	authSvc := authsvc.NewAuthService(users, refreshTokens, tokenSvc)
	userSvc := usersvc.NewUserService(users, roles)
	taskSvc := tasksvc.NewTaskService(tasks, users, notifier)

	uploadSvc, err := uploadsvc.NewUploadService(cfg.Upload)
	if err != nil {
		return fmt.Errorf("new upload service: %w", err)
	}

	router := http_.NewRouter()

	log := logging.GetLogger("cmd.apisvc")
	router.Gate(http_.BearerGate(authSvc, log), "/auth/login", "/auth/refresh", "/webhook/telegram")

	router.Handle(http.MethodGet, "/", handleStatus)

	authsvc.NewHTTPTransport(authSvc, validator).RegisterRoutes(router)
	usersvc.NewHTTPTransport(userSvc, validator).RegisterRoutes(router)
	rolesvc.NewHTTPTransport(roles, validator).RegisterRoutes(router)
	permissionsvc.NewHTTPTransport(permissions, validator).RegisterRoutes(router)
	directionsvc.NewHTTPTransport(directions).RegisterRoutes(router)
	tasksvc.NewHTTPTransport(taskSvc, validator).RegisterRoutes(router)
	uploadsvc.NewHTTPTransport(uploadSvc).RegisterRoutes(router)
	hooksvc.NewHTTPTransport(notifier).RegisterRoutes(router)

	if err := http_.ListenAndServe(ctx, router, cfg.HTTP); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

func handleStatus(w http.ResponseWriter, _ *http.Request, _ http_.Params) {
	http_.JSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": serviceID,
	})
}
