package container

import (
	"support-be/internal/config"
	"support-be/internal/ratelimit"
	"support-be/internal/service"
	"support-be/internal/service/auth"
	"support-be/pkg/logger"
	"support-be/pkg/redis"
)

// Container holds the cross-cutting application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	RedisClient *redis.Client
	AuthService service.AuthService
	Limiter     *ratelimit.SlidingWindowLimiter
}

// New creates a new dependency injection container
func New(cfg *config.Config, log *logger.Logger) (*Container, error) {
	// Redis is optional: without it the limiter state is process-local and
	// the escalation status mirror is skipped
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, proceeding with process-local limiter state")
		} else {
			redisClient = client
			log.Info("Redis client initialized successfully")
		}
	} else {
		log.Info("Redis URL not configured, limiter state is process-local")
	}

	var store ratelimit.Store
	if redisClient != nil {
		store = ratelimit.NewRedisStore(redisClient)
	} else {
		store = ratelimit.NewMemoryStore()
	}

	return &Container{
		Config:      cfg,
		Logger:      log,
		RedisClient: redisClient,
		AuthService: auth.NewService(cfg.JWTSecret, cfg.AdminEmails, log),
		Limiter:     ratelimit.NewSlidingWindowLimiter(store),
	}, nil
}

// NewGate builds a rate gate for a route over the shared limiter
func (c *Container) NewGate(route string, policy config.LimiterPolicy) *ratelimit.Gate {
	return ratelimit.NewGate(route, ratelimit.Policy{
		MaxAttempts: policy.MaxAttempts,
		Window:      policy.Window,
		Lockout:     policy.Lockout,
	}, c.Limiter)
}

// HasRedis returns true if the Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}
