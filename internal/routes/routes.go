package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/workpay/workpay/internal/account"
	"github.com/workpay/workpay/internal/compliance"
	"github.com/workpay/workpay/internal/config"
	"github.com/workpay/workpay/internal/event"
	"github.com/workpay/workpay/internal/job"
	"github.com/workpay/workpay/internal/lock"
	"github.com/workpay/workpay/internal/middleware"
	"github.com/workpay/workpay/internal/notification"
	"github.com/workpay/workpay/internal/party"
	"github.com/workpay/workpay/internal/payout"
	"github.com/workpay/workpay/internal/rates"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.Dev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Stores fall back to in-memory implementations in dev.
	var accounts account.Store
	var jobs job.Store
	var events event.Store
	var parties party.Repository
	if d.DB != nil {
		accounts = account.NewPostgresStore(d.DB)
		jobs = job.NewPostgresStore(d.DB)
		events = event.NewPostgresStore(d.DB)
		parties = party.NewPostgresRepository(d.DB)
	} else {
		accounts = account.NewMemoryStore()
		jobs = job.NewMemoryStore()
		events = event.NewMemoryStore()
		parties = party.NewMemoryRepository()
	}

	var locks lock.Locker
	if d.Cache != nil {
		locks = lock.NewRedisLocker(d.Cache)
	} else {
		locks = lock.NewMemoryLocker()
	}

	// Services and handlers
	mutator := account.NewMutator(accounts, d.Cfg.PayoutMaxAttempts, d.Cfg.PayoutRetryBaseDelay)
	notifier := notification.NewLoggerNotifier(d.Logger)
	coordinator := payout.NewCoordinator(
		accounts,
		mutator,
		jobs,
		locks,
		events,
		rates.StaticConverter{},
		compliance.AllowAll{},
		notifier,
		d.Logger,
		d.Cfg.LockTTL,
	)

	partySvc := party.NewService(parties, accounts)
	partyHandler := party.NewHandler(partySvc)
	jobHandler := job.NewHandler(jobs)
	payoutHandler := payout.NewHandler(coordinator, events)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.RegisterRateLimit(d.Cache, 5)
	RegisterPartyRoutes(api, partyHandler, rateLimiter)

	// Protected routes
	authmw := middleware.PartyAuth(partySvc)
	protected := api.Group("", authmw)
	RegisterJobRoutes(protected, jobHandler)
	RegisterPayoutRoutes(protected, payoutHandler)
	RegisterAccountRoutes(protected, accounts)

	return nil
}
