package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/photoproos/platform/clerk"
	"github.com/photoproos/platform/config"
	"github.com/photoproos/platform/handlers"
	"github.com/photoproos/platform/internal/observability"
	"github.com/photoproos/platform/middleware"
	"github.com/photoproos/platform/repositories"
	"github.com/photoproos/platform/repositories/postgres"
	"github.com/photoproos/platform/services/analytics"
	"github.com/photoproos/platform/services/apikeys"
	"github.com/photoproos/platform/services/audit"
	"github.com/photoproos/platform/services/bookings"
	"github.com/photoproos/platform/services/clients"
	"github.com/photoproos/platform/services/cms"
	"github.com/photoproos/platform/services/earnings"
	"github.com/photoproos/platform/services/featureflags"
	"github.com/photoproos/platform/services/galleries"
	"github.com/photoproos/platform/services/invoices"
	"github.com/photoproos/platform/services/organizations"
	"github.com/photoproos/platform/services/payments"
	"github.com/photoproos/platform/services/payouts"
	"github.com/photoproos/platform/services/ratelimit"
	"github.com/photoproos/platform/services/rates"
	"github.com/photoproos/platform/services/scheduler"
	"github.com/photoproos/platform/services/social"
	"github.com/photoproos/platform/services/support"
	"github.com/photoproos/platform/services/workflows"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	limiterIdleTTL       = 30 * time.Minute
	limiterSweepSchedule = "*/10 * * * *"
	jobTimeout           = 5 * time.Minute
	webhookPostTimeout   = 10 * time.Second
	flagCacheSize        = 1000
	flagCacheTTL         = 30 * time.Second
	auditStopTimeout     = 5 * time.Second
)

// Scheduled job names, also used by the admin run-now endpoint
const (
	JobPayouts         = "payouts"
	JobOverdueInvoices = "overdue-invoices"
	JobSocialPublish   = "social-publish"
	JobLimiterSweep    = "limiter-sweep"
)

// Services groups the domain services
type Services struct {
	Audit         *audit.AuditService
	Organizations *organizations.OrganizationService
	Clients       *clients.ClientService
	Galleries     *galleries.GalleryService
	Invoices      *invoices.InvoiceService
	Payments      *payments.PaymentService
	Bookings      *bookings.BookingService
	Rates         *rates.RateService
	Earnings      *earnings.EarningService
	Payouts       *payouts.PayoutService
	Analytics     *analytics.AnalyticsService
	Workflows     *workflows.WorkflowService
	Support       *support.SupportService
	Content       *cms.ContentService
	Social        *social.SocialService
	APIKeys       *apikeys.APIKeyService
	FeatureFlags  *featureflags.FeatureFlagService
}

// Handlers groups the HTTP handlers mounted by routes
type Handlers struct {
	Health        *handlers.HealthHandler
	Organizations *handlers.OrganizationHandler
	Clients       *handlers.ClientHandler
	Galleries     *handlers.GalleryHandler
	Invoices      *handlers.InvoiceHandler
	Payments      *handlers.PaymentHandler
	Bookings      *handlers.BookingHandler
	Rates         *handlers.RateHandler
	Earnings      *handlers.EarningHandler
	Payouts       *handlers.PayoutHandler
	Analytics     *handlers.AnalyticsHandler
	Workflows     *handlers.WorkflowHandler
	Support       *handlers.SupportHandler
	Content       *handlers.ContentHandler
	Social        *handlers.SocialHandler
	APIKeys       *handlers.APIKeyHandler
	FeatureFlags  *handlers.FeatureFlagHandler
	Audit         *handlers.AuditHandler
	Jobs          *handlers.JobHandler
	External      *handlers.ExternalHandler
}

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	DB      *postgres.DB
	Redis   *redis.Client
	Logger  *zap.Logger
	Metrics *observability.Metrics

	// Repositories
	RepoFactory *postgres.RepositoryFactory
	Repos       *repositories.Repositories
	TxManager   repositories.TransactionManager

	// External providers
	Stripe *payments.StripeClient

	Services  Services
	Scheduler *scheduler.Scheduler

	// Middleware
	AuthMiddleware   *middleware.AuthMiddleware
	APIKeyMiddleware *middleware.APIKeyMiddleware
	Guard            *middleware.GuardMiddleware

	Handlers Handlers

	requestLimiter *ratelimit.Limiter
	supportLimiter *ratelimit.Limiter
}

// NewDependencies opens the database and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.IsDevelopment() {
		if err := factory.InitSchema(ctx); err != nil {
			_ = factory.Close()
			return nil, err
		}
	}

	deps, err := NewDependenciesFromFactory(ctx, cfg, factory, logger)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	return deps, nil
}

// NewDependenciesFromFactory wires everything around an already opened database
func NewDependenciesFromFactory(ctx context.Context, cfg *config.Config, factory *postgres.RepositoryFactory, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		RepoFactory: factory,
		DB:          factory.GetDB(),
		Repos:       factory.NewRepositories(),
		TxManager:   factory.GetTransactionManager(),
	}

	if cfg.Observability.MetricsEnabled {
		deps.Metrics = observability.NewMetrics()
	}

	if err := deps.init(ctx); err != nil {
		deps.release()
		return nil, err
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func (d *Dependencies) init(ctx context.Context) error {
	if err := d.initRedis(ctx); err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}

	if err := d.initServices(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	d.initMiddleware()

	if err := d.initScheduler(); err != nil {
		return fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	d.initHandlers()
	return nil
}

// release undoes a partial init. The repository factory belongs to the caller.
func (d *Dependencies) release() {
	if d.Services.Audit != nil {
		if err := d.Services.Audit.Stop(auditStopTimeout); err != nil {
			d.Logger.Warn("failed to stop audit service", zap.Error(err))
		}
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
}

// initRedis connects the analytics cache when REDIS_ADDR is set
func (d *Dependencies) initRedis(ctx context.Context) error {
	if !d.Config.Redis.Enabled() {
		d.Logger.Info("redis not configured, analytics cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     d.Config.Redis.Addr,
		Password: d.Config.Redis.Password,
		DB:       d.Config.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	d.Redis = client
	d.Logger.Info("redis connection established", zap.String("addr", d.Config.Redis.Addr))
	return nil
}

func (d *Dependencies) initServices() error {
	cfg := d.Config
	repos := d.Repos
	logger := d.Logger

	auditSvc := audit.NewAuditService(repos.AuditLogs, logger.Named("audit"), audit.DefaultConfig())
	if err := auditSvc.Start(); err != nil {
		return fmt.Errorf("failed to start audit service: %w", err)
	}
	d.Services.Audit = auditSvc

	d.Stripe = payments.NewStripeClient(cfg.Stripe, logger.Named("stripe"))
	if cfg.Stripe.SecretKey == "" {
		d.Logger.Warn("stripe not configured, checkout, refunds and payouts will fail")
	}

	d.requestLimiter = ratelimit.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, limiterIdleTTL)
	d.supportLimiter = ratelimit.PerMinute(cfg.RateLimit.SupportPerMinute, limiterIdleTTL)

	// Workflows first: every service that emits events dispatches through it
	wf := workflows.NewWorkflowService(
		repos.Workflows,
		repos.Clients,
		workflows.NewLogNotifier(logger.Named("notifier")),
		workflows.NewWebhookPoster(webhookPostTimeout),
		auditSvc,
		logger,
	)

	rateSvc := rates.NewRateService(repos.Rates, auditSvc, logger)
	earningSvc := earnings.NewEarningService(repos.Earnings, d.TxManager, rateSvc, auditSvc, logger)
	invoiceSvc := invoices.NewInvoiceService(repos, d.TxManager, d.Stripe, wf, auditSvc, logger)

	var cache analytics.Cache
	if d.Redis != nil {
		cache = analytics.NewRedisCache(d.Redis)
	}

	d.Services = Services{
		Audit:         auditSvc,
		Organizations: organizations.NewOrganizationService(repos.Organizations, repos.Users, d.TxManager, auditSvc, logger),
		Clients:       clients.NewClientService(repos.Clients, wf, auditSvc, logger),
		Galleries:     galleries.NewGalleryService(repos.Galleries, repos.Clients, wf, auditSvc, logger),
		Invoices:      invoiceSvc,
		Payments: payments.NewPaymentService(
			repos.Payments,
			repos.Invoices,
			d.TxManager,
			invoiceSvc,
			d.Stripe,
			cfg.Stripe.WebhookSecret,
			auditSvc,
			logger,
		),
		Bookings: bookings.NewBookingService(repos, d.TxManager, earningSvc, wf, auditSvc, logger),
		Rates:    rateSvc,
		Earnings: earningSvc,
		Payouts: payouts.NewPayoutService(
			repos.Earnings,
			repos.Payouts,
			repos.Users,
			d.TxManager,
			d.Stripe,
			auditSvc,
			cfg.Payouts,
			logger,
		),
		Analytics:    analytics.NewAnalyticsService(repos, cache, cfg.Redis.AnalyticsCacheTTL, logger),
		Workflows:    wf,
		Support:      support.NewSupportService(repos.Support, d.TxManager, d.supportLimiter, auditSvc, logger),
		Content:      cms.NewContentService(repos.Content, auditSvc, logger),
		Social:       social.NewSocialService(repos.SocialPosts, social.NewLogPublisher(logger.Named("social")), auditSvc, logger),
		APIKeys:      apikeys.NewAPIKeyService(repos.APIKeys, auditSvc, logger),
		FeatureFlags: featureflags.NewFeatureFlagService(repos.FeatureFlags, featureflags.NewFlagCache(flagCacheSize, flagCacheTTL), auditSvc, logger),
	}

	d.Logger.Info("services initialized")
	return nil
}

func (d *Dependencies) initMiddleware() {
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.tokenValidator(), d.Services.Organizations, d.Logger)
	d.APIKeyMiddleware = middleware.NewAPIKeyMiddleware(d.Services.APIKeys, d.Logger)

	var counter middleware.RejectionCounter
	if d.Metrics != nil {
		counter = d.Metrics
	}
	d.Guard = middleware.NewGuardMiddleware(d.Services.FeatureFlags, d.requestLimiter, counter, d.Logger)
}

func (d *Dependencies) tokenValidator() middleware.TokenValidator {
	if d.Config.Clerk.JWKSURL == "" {
		d.Logger.Warn("clerk not configured, authenticated routes will reject every request")
		return rejectAllValidator{}
	}
	return clerk.NewValidator(d.Config.Clerk)
}

// rejectAllValidator rejects all tokens (used when Clerk is not configured)
type rejectAllValidator struct{}

func (rejectAllValidator) ValidateToken(context.Context, string) (*clerk.Session, error) {
	return nil, fmt.Errorf("authentication not configured")
}

// initScheduler registers the housekeeping jobs. Jobs are always registered so
// admins can run them on demand; the cron loop only starts when enabled.
func (d *Dependencies) initScheduler() error {
	var reg prometheus.Registerer
	if d.Metrics != nil {
		reg = d.Metrics.Registry
	}
	s, err := scheduler.New(d.Logger, jobTimeout, reg)
	if err != nil {
		return err
	}

	sc := d.Config.Scheduler
	jobs := []struct {
		name string
		spec string
		fn   scheduler.JobFunc
	}{
		{JobPayouts, sc.PayoutSchedule, func(ctx context.Context) error {
			n, err := d.Services.Payouts.RunScheduled(ctx)
			if err != nil {
				return err
			}
			d.Logger.Info("scheduled payouts created", zap.Int("batches", n))
			return nil
		}},
		{JobOverdueInvoices, sc.OverdueSchedule, func(ctx context.Context) error {
			n, err := d.Services.Invoices.MarkOverdue(ctx, time.Now())
			if err != nil {
				return err
			}
			if n > 0 {
				d.Logger.Info("invoices marked overdue", zap.Int64("count", n))
			}
			return nil
		}},
		{JobSocialPublish, sc.SocialSchedule, func(ctx context.Context) error {
			res, err := d.Services.Social.PublishDue(ctx)
			if err != nil {
				return err
			}
			if res.Published+res.Failed > 0 {
				d.Logger.Info("social posts published", zap.Int("published", res.Published), zap.Int("failed", res.Failed))
			}
			return nil
		}},
		{JobLimiterSweep, limiterSweepSchedule, func(context.Context) error {
			dropped := d.requestLimiter.Sweep() + d.supportLimiter.Sweep()
			d.Logger.Debug("rate limiter buckets swept", zap.Int("dropped", dropped))
			return nil
		}},
	}

	for _, j := range jobs {
		if err := s.Register(j.name, j.spec, j.fn); err != nil {
			return err
		}
	}

	d.Scheduler = s
	return nil
}

func (d *Dependencies) initHandlers() {
	s := d.Services
	logger := d.Logger

	var webhookCounter handlers.WebhookCounter
	if d.Metrics != nil {
		webhookCounter = d.Metrics
	}

	health := handlers.NewHealthHandler(d.DB.DB, logger)
	if d.Redis != nil {
		health = health.WithCheck("redis", func(ctx context.Context) error {
			return d.Redis.Ping(ctx).Err()
		})
	}

	d.Handlers = Handlers{
		Health:        health,
		Organizations: handlers.NewOrganizationHandler(s.Organizations, logger),
		Clients:       handlers.NewClientHandler(s.Clients, logger),
		Galleries:     handlers.NewGalleryHandler(s.Galleries, logger),
		Invoices:      handlers.NewInvoiceHandler(s.Invoices, s.Payments, logger),
		Payments:      handlers.NewPaymentHandler(s.Payments, webhookCounter, logger),
		Bookings:      handlers.NewBookingHandler(s.Bookings, logger),
		Rates:         handlers.NewRateHandler(s.Rates, logger),
		Earnings:      handlers.NewEarningHandler(s.Earnings, logger),
		Payouts:       handlers.NewPayoutHandler(s.Payouts, logger),
		Analytics:     handlers.NewAnalyticsHandler(s.Analytics, logger),
		Workflows:     handlers.NewWorkflowHandler(s.Workflows, logger),
		Support:       handlers.NewSupportHandler(s.Support, logger),
		Content:       handlers.NewContentHandler(s.Content, logger),
		Social:        handlers.NewSocialHandler(s.Social, logger),
		APIKeys:       handlers.NewAPIKeyHandler(s.APIKeys, logger),
		FeatureFlags:  handlers.NewFeatureFlagHandler(s.FeatureFlags, logger),
		Audit:         handlers.NewAuditHandler(s.Audit, logger),
		Jobs:          handlers.NewJobHandler(d.Scheduler, logger),
		External:      handlers.NewExternalHandler(s.Clients, s.Bookings, s.Invoices, s.Galleries, logger),
	}
}

// Start launches background loops
func (d *Dependencies) Start() {
	if d.Config.Scheduler.Enabled {
		d.Scheduler.Start()
	}
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.Scheduler != nil {
		if err := d.Scheduler.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop scheduler: %w", err))
		}
	}

	// Drain audit events before the database goes away
	if d.Services.Audit != nil {
		if err := d.Services.Audit.Stop(auditStopTimeout); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop audit service: %w", err))
		}
	}

	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
