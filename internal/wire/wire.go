// Package wire provides dependency injection for the bellhop application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"io"
	"log"
	"os"
	"sync"

	"go.uber.org/zap"

	cliadapter "github.com/example/bellhop/internal/adapters/cli"
	"github.com/example/bellhop/internal/adapters/httpapi"
	"github.com/example/bellhop/internal/adapters/memlock"
	"github.com/example/bellhop/internal/adapters/notify"
	"github.com/example/bellhop/internal/adapters/redislock"
	"github.com/example/bellhop/internal/adapters/sqlite"
	"github.com/example/bellhop/internal/app"
	"github.com/example/bellhop/internal/config"
	"github.com/example/bellhop/internal/db"
	"github.com/example/bellhop/internal/ports/primary"
	"github.com/example/bellhop/internal/ports/secondary"
)

var (
	cfg    = config.Default()
	logger = zap.NewNop()

	settingsService  primary.SettingsService
	requestService   primary.RequestService
	analyticsService primary.AnalyticsService
	staffService     primary.StaffService
	engine           *app.EscalationEngineImpl
	dispatcher       *notify.Dispatcher
	locker           secondary.Locker
	redisLocker      *redislock.Locker
	once             sync.Once
)

// Configure sets the configuration and logger used to build services.
// Must be called before the first service accessor.
func Configure(c *config.Config, l *zap.Logger) {
	if c != nil {
		cfg = c
	}
	if l != nil {
		logger = l
	}
	db.SetPath(cfg.Database.Path)
}

// Config returns the active configuration.
func Config() *config.Config {
	return cfg
}

// SettingsService returns the singleton SettingsService instance.
func SettingsService() primary.SettingsService {
	once.Do(initServices)
	return settingsService
}

// RequestService returns the singleton RequestService instance.
func RequestService() primary.RequestService {
	once.Do(initServices)
	return requestService
}

// AnalyticsService returns the singleton AnalyticsService instance.
func AnalyticsService() primary.AnalyticsService {
	once.Do(initServices)
	return analyticsService
}

// StaffService returns the singleton StaffService instance.
func StaffService() primary.StaffService {
	once.Do(initServices)
	return staffService
}

// EscalationEngine returns the singleton escalation engine.
func EscalationEngine() *app.EscalationEngineImpl {
	once.Do(initServices)
	return engine
}

// Poller returns a new poller driving the engine at the configured interval.
func Poller() *app.Poller {
	once.Do(initServices)
	return app.NewPoller(engine, cfg.Engine.PollInterval, logger)
}

// HTTPServer returns a new API server over the singleton services.
func HTTPServer() *httpapi.Server {
	once.Do(initServices)
	return httpapi.NewServer(httpapi.Services{
		Settings:  settingsService,
		Requests:  requestService,
		Analytics: analyticsService,
	}, cfg.Analytics.Window, logger)
}

// Shutdown drains in-flight notifications and releases external connections.
func Shutdown(ctx context.Context) {
	if dispatcher != nil {
		if err := dispatcher.Close(ctx); err != nil {
			logger.Warn("notification drain incomplete", zap.Error(err))
		}
	}
	if redisLocker != nil {
		if err := redisLocker.Close(); err != nil {
			logger.Warn("failed to close redis client", zap.Error(err))
		}
	}
	if err := db.Close(); err != nil {
		logger.Warn("failed to close database", zap.Error(err))
	}
	_ = logger.Sync()
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	// Get database connection
	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	policyRepo := sqlite.NewPolicyRepository(database)
	requestRepo := sqlite.NewRequestRepository(database)
	transitionRepo := sqlite.NewTransitionRepository(database)
	staffRepo := sqlite.NewStaffRepository(database)

	// Evaluation lease: shared through Redis when configured, in-process otherwise
	locker = memlock.New()
	if cfg.Redis.Addr != "" {
		redisLocker = redislock.NewFromAddr(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := redisLocker.Ping(context.Background()); err != nil {
			log.Fatalf("failed to connect to redis at %s: %v", cfg.Redis.Addr, err)
		}
		locker = redisLocker
	}

	// Create effect executor with injected notifier and repositories
	dispatcher = notify.FromConfig(cfg.Dispatch, logger)
	executor := app.NewEffectExecutor(dispatcher, requestRepo, logger)

	// Create services (primary ports implementation)
	preset := cfg.DefaultPreset()
	settingsService = app.NewSettingsService(policyRepo, preset, logger)
	requestService = app.NewRequestService(requestRepo, transitionRepo, settingsService, executor, logger)
	analyticsService = app.NewAnalyticsService(transitionRepo)
	staffService = app.NewStaffService(staffRepo)
	engine = app.NewEscalationEngine(policyRepo, requestRepo, transitionRepo, staffRepo, locker, executor, logger, app.EngineOptions{
		DefaultPreset: preset,
		LeaseTTL:      cfg.Engine.LeaseTTL,
	})
}

// PolicyAdapter returns a new PolicyAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func PolicyAdapter() *cliadapter.PolicyAdapter {
	return PolicyAdapterWithOutput(os.Stdout)
}

// PolicyAdapterWithOutput returns a new PolicyAdapter writing to the given output.
func PolicyAdapterWithOutput(out io.Writer) *cliadapter.PolicyAdapter {
	once.Do(initServices)
	return cliadapter.NewPolicyAdapter(settingsService, analyticsService, out)
}

// RequestAdapter returns a new RequestAdapter writing to stdout.
func RequestAdapter() *cliadapter.RequestAdapter {
	return RequestAdapterWithOutput(os.Stdout)
}

// RequestAdapterWithOutput returns a new RequestAdapter writing to the given output.
func RequestAdapterWithOutput(out io.Writer) *cliadapter.RequestAdapter {
	once.Do(initServices)
	return cliadapter.NewRequestAdapter(requestService, out)
}

// StaffAdapter returns a new StaffAdapter writing to stdout.
func StaffAdapter() *cliadapter.StaffAdapter {
	return StaffAdapterWithOutput(os.Stdout)
}

// StaffAdapterWithOutput returns a new StaffAdapter writing to the given output.
func StaffAdapterWithOutput(out io.Writer) *cliadapter.StaffAdapter {
	once.Do(initServices)
	return cliadapter.NewStaffAdapter(staffService, out)
}
