package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/subosito/gotenv"

	_ "github.com/lib/pq"

	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/bot"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/cache"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/config"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/catalog"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/messages"
	paymentsdb "github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/payments"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/progress"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/schedule"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/subscriptions"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/domain/users"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/infra/db"
	httpx "github.com/lishyamuchiri/skillboost-kenya-coach/internal/infra/http"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/infra/logger"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/infra/payments"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/mpesa"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/progression"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/report"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/scheduler"
	"github.com/lishyamuchiri/skillboost-kenya-coach/internal/whatsapp"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("config/example.yaml")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		log.Error("invalid timezone", "tz", cfg.App.Timezone, "err", err)
		return
	}

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer func() { _ = rdb.Close() }()

	userRepo := users.NewRepo(pool)
	catalogRepo := catalog.NewRepo(pool)
	progressRepo := progress.NewRepo(pool)
	scheduleRepo := schedule.NewRepo(pool)
	subsRepo := subscriptions.NewRepo(pool)
	paymentRepo := paymentsdb.NewRepo(pool)
	messageRepo := messages.NewRepo(pool)

	sender := whatsapp.NewClient(cfg.WhatsApp.APIBase, cfg.WhatsApp.AccessToken, cfg.WhatsApp.PhoneNumberID)
	selector := progression.NewSelector(catalogRepo, progressRepo)

	sched := scheduler.New(userRepo, selector, scheduleRepo, progressRepo, messageRepo, sender, loc, log)
	coachBot := bot.New(userRepo, selector, progressRepo, catalogRepo, messageRepo, sender, log)

	mpesaClient := mpesa.NewClient(mpesa.Config{
		ConsumerKey:    cfg.Mpesa.ConsumerKey,
		ConsumerSecret: cfg.Mpesa.ConsumerSecret,
		Shortcode:      cfg.Mpesa.Shortcode,
		Passkey:        cfg.Mpesa.Passkey,
		Environment:    cfg.Mpesa.Environment,
	}, cache.NewRedisCache(rdb))
	chargeSvc := payments.NewService(mpesaClient, paymentRepo, cfg.Mpesa.CallbackURL, log)
	reconciler := payments.NewReconciler(paymentRepo, subsRepo, userRepo, messageRepo, sender, log)
	reportBuilder := report.NewBuilder(userRepo, progressRepo, catalogRepo, subsRepo)

	srv := httpx.New(cfg.HTTP.Addr, httpx.Options{
		ExposeMetrics:   cfg.Metrics.Enabled,
		VerifyToken:     cfg.WhatsApp.VerifyToken,
		WhatsAppWebhook: httpx.NewWebhookHandler(coachBot, log),
		MpesaCallback:   payments.NewHandler(reconciler, log),
		Charge:          payments.NewChargeHandler(chargeSvc, log),
		SchedulerRun: httpx.NewRunHandler(func(ctx context.Context) any {
			return sched.Run(ctx, time.Now())
		}),
		ProgressReport: httpx.NewReportHandler(reportBuilder, log),
		Enroll:         httpx.NewEnrollHandler(userRepo, catalogRepo, coachBot, log),
	}, log)

	c := cron.New()
	if _, err := c.AddFunc(cfg.Scheduler.Cron, func() {
		stats := sched.Run(ctx, time.Now())
		log.Info("scheduler pass complete",
			"scheduled", stats.Scheduled, "sent", stats.Sent, "failed", stats.Failed)
	}); err != nil {
		log.Error("invalid cron spec", "spec", cfg.Scheduler.Cron, "err", err)
		return
	}
	c.Start()
	defer c.Stop()
	log.Info("scheduler cron started", "spec", cfg.Scheduler.Cron)

	go func() {
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
