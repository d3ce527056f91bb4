package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/storage/memory/v2"
	"github.com/gofiber/storage/redis/v3"
	"github.com/khanghh/phishsoc/internal/audit"
	"github.com/khanghh/phishsoc/internal/auth"
	"github.com/khanghh/phishsoc/internal/common"
	"github.com/khanghh/phishsoc/internal/config"
	"github.com/khanghh/phishsoc/internal/eventlog"
	"github.com/khanghh/phishsoc/internal/handlers/api"
	"github.com/khanghh/phishsoc/internal/mail"
	"github.com/khanghh/phishsoc/internal/metrics"
	"github.com/khanghh/phishsoc/internal/middlewares"
	"github.com/khanghh/phishsoc/internal/phishing"
	"github.com/khanghh/phishsoc/internal/revocation"
	"github.com/khanghh/phishsoc/internal/store"
	"github.com/khanghh/phishsoc/internal/token"
	"github.com/khanghh/phishsoc/model"
	"github.com/khanghh/phishsoc/params"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var (
	app       *cli.App
	gitCommit string
	gitDate   string
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "YAML config file",
		Value: "config.yaml",
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug logging",
	}
)

func init() {
	app = cli.NewApp()
	app.EnableBashCompletion = true
	app.Usage = "phishsoc - phishing security operations center backend"
	app.Flags = []cli.Flag{
		configFileFlag,
		debugFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name: "version",
			Action: func(ctx *cli.Context) error {
				fmt.Println(params.VersionWithCommit(gitCommit, gitDate))
				return nil
			},
		},
		logsCommand,
	}
	app.Action = run
}

func mustInitLogger(debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

func mustInitDatabase(dbConfig config.MySQLConfig) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dbConfig.Dsn), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   dbConfig.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Failed to get database handle", "error", err)
		os.Exit(1)
	}
	if dbConfig.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	}
	if dbConfig.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	}
	sqlDB.SetConnMaxIdleTime(dbConfig.ConnMaxIdleTime)
	sqlDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	if err := model.AutoMigrate(db); err != nil {
		slog.Error("Database migration failed", "error", err)
		os.Exit(1)
	}

	return db
}

func mustInitRedisStorage(redisCfg config.RedisConfig) *redis.Storage {
	return redis.New(redis.Config{
		URL:           redisCfg.URL,
		PoolSize:      redisCfg.PoolSize,
		IsClusterMode: redisCfg.ClusterMode,
	})
}

func mustInitAlertNotifier(alertsCfg config.AlertsConfig) *mail.AlertNotifier {
	smtpCfg := alertsCfg.SMTP
	sender, err := mail.NewSMTPMailSender(mail.SMTPConfig{
		Host:     smtpCfg.Host,
		Port:     smtpCfg.Port,
		Username: smtpCfg.Username,
		Password: smtpCfg.Password,
		From:     smtpCfg.From,
		TLS:      smtpCfg.TLS,
		CertFile: smtpCfg.CertFile,
		KeyFile:  smtpCfg.KeyFile,
		CAFile:   smtpCfg.CAFile,
	})
	if err != nil {
		slog.Error("Failed to initialize alert mail sender", "error", err)
		os.Exit(1)
	}
	return mail.NewAlertNotifier(sender, alertsCfg.Recipients, phishing.RiskLevel(alertsCfg.MinRiskLevel))
}

func mustInitRevocationRegistry(cfg *config.Config, redisStorage *redis.Storage) revocation.Registry {
	if cfg.Revocation.Backend != config.RevocationBackendRedis {
		return revocation.NewMemoryRegistry()
	}
	hashKey := common.MustDeriveKey(cfg.MasterKey, common.RevocationKeyInfo)
	backend := store.NewRedisStorage(redisStorage.Conn())
	return revocation.NewStoreRegistry(backend, hashKey, revocation.WithEntryTTL(cfg.Token.Lifetime))
}

func setupAPIRoutes(
	router fiber.Router,
	cfg *config.Config,
	limiterStorage fiber.Storage,
	tokenService *token.TokenService,
	registry revocation.Registry,
	logStore *eventlog.Store,
	activity *eventlog.ActivityLogger) {

	// services
	var (
		gate     = auth.NewGate(tokenService, registry)
		analyzer = phishing.NewAnalyzer(activity, phishing.WithSuspiciousDomains(cfg.Phishing.SuspiciousDomains))
	)

	// handlers
	var (
		authHandler  = api.NewAuthHandler(tokenService, registry, activity)
		emailHandler = api.NewEmailHandler(analyzer, activity)
		logsHandler  = api.NewLogsHandler(logStore, activity)
	)

	api.SetupRoutes(router, api.Routes{
		Auth:  authHandler,
		Email: emailHandler,
		Logs:  logsHandler,
	}, api.Guards{
		Gate:         gate,
		FailureLog:   activity,
		IsAdmin:      cfg.IsAdmin,
		LoginLimiter: middlewares.RateLimit(limiterStorage, cfg.RateLimit.LoginMax, cfg.RateLimit.Window),
	})
}

func run(ctx *cli.Context) error {
	config, err := config.LoadConfig(ctx.String(configFileFlag.Name))
	if err != nil {
		slog.Error("Could not load config file.", "error", err)
		return err
	}

	mustInitLogger(config.Debug || ctx.IsSet(debugFlag.Name))
	metrics.Init()

	var (
		redisStorage   *redis.Storage
		limiterStorage fiber.Storage
		readiness      = []common.ReadinessCheck{common.LogDirCheck(config.Logs.Dir)}
		storeOpts      []eventlog.Option
	)
	if config.RedisEnabled() {
		redisStorage = mustInitRedisStorage(config.Redis)
		limiterStorage = redisStorage
		readiness = append(readiness, common.RedisCheck(redisStorage.Conn()))
	} else {
		limiterStorage = memory.New()
	}
	if config.AuditEnabled() {
		db := mustInitDatabase(config.MySQL)
		recorder := audit.NewRecorder(audit.NewAuditEventRepository(db))
		storeOpts = append(storeOpts, eventlog.WithMirror(recorder))
		readiness = append(readiness, common.DatabaseCheck(db))
	}
	if config.AlertsEnabled() {
		notifier := mustInitAlertNotifier(config.Alerts)
		defer notifier.Close()
		storeOpts = append(storeOpts, eventlog.WithMirror(notifier))
	}
	if config.Logs.Async {
		storeOpts = append(storeOpts, eventlog.WithAsyncWrites(config.Logs.QueueSize))
	}

	logStore := eventlog.NewStore(config.Logs.Dir, storeOpts...)
	defer logStore.Close()
	activity := eventlog.NewActivityLogger(logStore)

	signingKey := common.MustDeriveKey(config.MasterKey, common.TokenSigningKeyInfo)
	tokenService := token.NewTokenService(signingKey,
		token.WithLifetime(config.Token.Lifetime),
		token.WithIssuer(config.Token.Issuer),
	)
	registry := mustInitRevocationRegistry(config, redisStorage)

	router := fiber.New(middlewares.TrustProxies(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		BodyLimit:     params.ServerBodyLimit,
		IdleTimeout:   params.ServerIdleTimeout,
		ReadTimeout:   params.ServerReadTimeout,
		WriteTimeout:  params.ServerWriteTimeout,
		ErrorHandler:  middlewares.NewErrorHandler(activity),
	}, config.TrustedProxies))

	router.Use(recover.New())
	router.Use(logger.New())
	router.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(config.AllowOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	setupAPIRoutes(router, config, limiterStorage, tokenService, registry, logStore, activity)

	sigCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	healthCheckCtx, term := context.WithCancel(sigCtx)
	done := make(chan struct{})
	go common.StartHealthCheckServer(healthCheckCtx, done, config.HealthCheckAddr, common.NewHealthCheckHandler(readiness...))
	defer func() {
		term()
		<-done
	}()

	ln, err := net.Listen("tcp", config.ListenAddr)
	if err != nil {
		slog.Error("Failed to listen", "addr", config.ListenAddr, "error", err)
		return err
	}
	return serveAPI(sigCtx, router, ln)
}

// serveAPI serves router on ln until ctx is done, then shuts it down and
// waits for in-flight requests, so deferred cleanup runs after the last
// handler returns.
func serveAPI(ctx context.Context, router *fiber.App, ln net.Listener) error {
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- router.Listener(ln)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), params.ServerShutdownTimeout)
	defer cancel()
	if err := router.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("API server shutdown failed", "error", err)
		return err
	}
	return <-serverErr
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
