// Package kernel wires configuration, stores, collaborators and services
// into one application and owns their lifecycle.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/propelyu/app/models"
	"github.com/shashiranjanraj/propelyu/app/repositories"
	"github.com/shashiranjanraj/propelyu/app/services"
	"github.com/shashiranjanraj/propelyu/config"
	"github.com/shashiranjanraj/propelyu/pkg/auth"
	"github.com/shashiranjanraj/propelyu/pkg/cache"
	"github.com/shashiranjanraj/propelyu/pkg/database"
	"github.com/shashiranjanraj/propelyu/pkg/event"
	"github.com/shashiranjanraj/propelyu/pkg/genai"
	"github.com/shashiranjanraj/propelyu/pkg/http"
	"github.com/shashiranjanraj/propelyu/pkg/logger"
	"github.com/shashiranjanraj/propelyu/pkg/schedule"
	"github.com/shashiranjanraj/propelyu/pkg/storage"
	"github.com/shashiranjanraj/propelyu/pkg/suggest"
	"github.com/shashiranjanraj/propelyu/pkg/workerpool"
)

// RetrainJob is the id of the scheduled and queued retrain task.
const RetrainJob = "model:retrain"

type Kernel struct {
	Issuer      *auth.Issuer
	Users       *services.UserService
	Adverts     *services.AdvertService
	Suggestions *services.SuggestionService
	GenAI       *services.GenAIService
	Events      *event.Bus
	Pool        *workerpool.Pool
	Scheduler   *schedule.Scheduler
	Disk        storage.Disk
	Cache       cache.Cache

	ctx     context.Context
	cancel  context.CancelFunc
	closers []func(context.Context) error
}

// Boot builds the application from config. DB_DRIVER=memory skips MongoDB,
// CACHE_DRIVER=memory skips Redis. An unreachable Redis degrades to the
// in-process cache; an unreachable MongoDB is fatal.
func Boot(ctx context.Context) (*Kernel, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	k := &Kernel{
		Issuer: auth.NewIssuer(config.JWTSecret()),
		Events: event.NewBus(),
	}
	k.ctx, k.cancel = context.WithCancel(context.Background())

	users, adverts, err := k.openRepositories(ctx)
	if err != nil {
		_ = k.Shutdown(ctx)
		return nil, err
	}
	k.Cache = k.openCache(ctx)

	disk, err := storage.NewManager(ctx).Default()
	if err != nil {
		_ = k.Shutdown(ctx)
		return nil, err
	}
	k.Disk = disk

	gen := genai.New(http.NewClient(nil), genai.OptionsFromConfig())

	k.Users = services.NewUserService(users, k.Issuer)
	k.Adverts = services.NewAdvertService(
		adverts,
		storage.NewMediaStore(disk, "adverts"),
		gen,
		k.Cache,
		config.CacheTTL(),
		k.Events,
	)
	k.Suggestions = services.NewSuggestionService(adverts)
	k.GenAI = services.NewGenAIService(gen)

	k.Pool = workerpool.New(config.Int("WORKER_POOL_SIZE", 4))
	k.closers = append(k.closers, k.Pool.Shutdown)

	k.Scheduler = schedule.New()
	if spec := config.ModelRetrainCron(); spec != "" {
		if err := k.Scheduler.Add(RetrainJob, spec, k.retrain); err != nil {
			_ = k.Shutdown(ctx)
			return nil, err
		}
	}

	k.listen()
	return k, nil
}

func (k *Kernel) openRepositories(ctx context.Context) (repositories.UserRepository, repositories.AdvertRepository, error) {
	if config.DatabaseDriver() == "memory" {
		logger.Warn("using in-memory store, data is lost on exit")
		return repositories.NewMemoryUserRepository(), repositories.NewMemoryAdvertRepository(), nil
	}

	if err := database.Connect(ctx); err != nil {
		return nil, nil, err
	}
	k.closers = append(k.closers, database.Disconnect)

	if err := database.EnsureIndexes(ctx, database.DB); err != nil {
		return nil, nil, err
	}
	if config.Bool("LOG_MONGO", false) {
		k.useMongoLogs(ctx)
	}
	return repositories.NewMongoUserRepository(database.DB), repositories.NewMongoAdvertRepository(database.DB), nil
}

// useMongoLogs fans log records out to the logs collection as well.
func (k *Kernel) useMongoLogs(ctx context.Context) {
	h, err := logger.NewMongoHandler(ctx, database.Client, config.MongoDatabase(), "logs", slog.LevelInfo)
	if err != nil {
		logger.Warn("mongo log sink disabled", "error", err)
		return
	}
	base := logger.New(os.Stdout, config.IsProduction())
	logger.Use(slog.New(logger.NewMultiHandler(base.Handler(), h)))
	k.closers = append(k.closers, func(context.Context) error {
		h.Close()
		return nil
	})
}

func (k *Kernel) openCache(ctx context.Context) cache.Cache {
	if config.Get("CACHE_DRIVER", "redis") == "memory" {
		return cache.NewMemory()
	}
	r, err := cache.Connect(ctx, config.RedisAddr(), config.RedisPassword(), "propelyu:")
	if err != nil {
		logger.Warn("redis unavailable, using in-process cache", "error", err)
		return cache.NewMemory()
	}
	k.closers = append(k.closers, func(context.Context) error { return r.Close() })
	return r
}

// listen logs the advert lifecycle and, with MODEL_AUTO_RETRAIN, queues a
// retrain after every write.
func (k *Kernel) listen() {
	for _, name := range []string{event.AdvertCreated, event.AdvertUpdated, event.AdvertDeleted} {
		k.Events.Listen(name, func(payload interface{}) {
			if a, ok := payload.(models.Advert); ok {
				logger.Info("advert event", "event", name, "advert_id", a.ID.Hex(), "owner", a.Owner)
			}
		})
		if config.ModelAutoRetrain() {
			k.Events.Listen(name, func(interface{}) {
				if err := k.Suggestions.RetrainInBackground(k.Pool); err != nil {
					logger.Warn("auto retrain skipped", "event", name, "error", err)
				}
			})
		}
	}
}

func (k *Kernel) retrain(ctx context.Context) {
	state, err := k.Suggestions.Retrain(ctx)
	switch {
	case errors.Is(err, suggest.ErrInsufficientData):
		logger.Info("price model left untrained", "reason", err)
	case err != nil:
		logger.Error("price model retrain failed", "error", err)
	default:
		logger.Info("price model trained", "version", state.Version, "samples", state.Samples)
	}
}

// Start trains the first model in the background and starts the scheduler.
func (k *Kernel) Start() {
	if err := k.Suggestions.RetrainInBackground(k.Pool); err != nil {
		logger.Warn("boot retrain not queued", "error", err)
	}
	k.Scheduler.Start(k.ctx)
}

// Shutdown stops background work and closes connections in reverse order.
func (k *Kernel) Shutdown(ctx context.Context) error {
	k.cancel()
	if k.Scheduler != nil {
		select {
		case <-k.Scheduler.Stop().Done():
		case <-ctx.Done():
		}
	}

	var errs []error
	for i := len(k.closers) - 1; i >= 0; i-- {
		if err := k.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	k.closers = nil
	return errors.Join(errs...)
}
