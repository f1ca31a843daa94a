// Package container wires the application's dependency graph. Each
// *Package function registers one concern's providers; binaries compose
// the packages they need.
package container

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"

	"github.com/itstimwhite/jovie-gateway/internal/analytics"
	analyticsstore "github.com/itstimwhite/jovie-gateway/internal/analytics/store"
	"github.com/itstimwhite/jovie-gateway/internal/artists"
	"github.com/itstimwhite/jovie-gateway/internal/gateway"
	"github.com/itstimwhite/jovie-gateway/internal/health"
	"github.com/itstimwhite/jovie-gateway/internal/links"
	"github.com/itstimwhite/jovie-gateway/internal/messaging"
	"github.com/itstimwhite/jovie-gateway/internal/middleware"
	"github.com/itstimwhite/jovie-gateway/internal/ratelimit"
	"github.com/itstimwhite/jovie-gateway/internal/store"
	"github.com/itstimwhite/jovie-gateway/internal/token"
)

type Options struct {
	Port        int    `default:"8888"    help:"Port to listen on"                                              short:"p"`
	RedisAddr   string `default:""        help:"Redis address; empty keeps rate limiting and events in-process" short:"r"`
	DatabaseURL string `default:""        help:"Postgres connection string; empty uses in-memory stores"        short:"d"`
	LogFormat   string `default:"console" help:"Log format: console or json"`
}

// LoggerPackage provides the zap logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		options := do.MustInvoke[*Options](i)
		if options.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the redis client, or nil when no address is
// configured.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		options := do.MustInvoke[*Options](i)
		if options.RedisAddr == "" {
			return nil, nil
		}

		return redis.NewClient(&redis.Options{
			Addr: options.RedisAddr,
		}), nil
	})
}

// PostgresPackage provides the pgx pool, or nil when no database is
// configured.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*pgxpool.Pool, error) {
		options := do.MustInvoke[*Options](i)
		if options.DatabaseURL == "" {
			return nil, nil
		}

		return pgxpool.New(context.Background(), options.DatabaseURL)
	})
}

// RepositoryPackage provides the link, access, artist and analytics
// stores, backed by Postgres when configured and by memory otherwise.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (links.Repository, error) {
		if pool := do.MustInvoke[*pgxpool.Pool](i); pool != nil {
			return store.NewPostgresLinkStore(pool), nil
		}

		return store.NewMemoryLinkStore(), nil
	})

	do.Provide(injector, func(i *do.Injector) (links.AccessStore, error) {
		if pool := do.MustInvoke[*pgxpool.Pool](i); pool != nil {
			return store.NewPostgresAccessStore(pool), nil
		}

		return store.NewMemoryAccessStore(), nil
	})

	do.Provide(injector, func(i *do.Injector) (artists.Repository, error) {
		if pool := do.MustInvoke[*pgxpool.Pool](i); pool != nil {
			return store.NewPostgresArtistStore(pool), nil
		}

		return store.NewMemoryArtistStore(), nil
	})

	do.Provide(injector, func(i *do.Injector) (analytics.Store, error) {
		if pool := do.MustInvoke[*pgxpool.Pool](i); pool != nil {
			return analyticsstore.NewPostgres(pool), nil
		}

		return analyticsstore.NewNoop(do.MustInvoke[*zap.Logger](i)), nil
	})
}

// RateLimitPackage provides the fixed-window limiter, counting in Redis
// when available so limits hold across instances.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*ratelimit.FixedWindowLimiter, error) {
		var counters ratelimit.Store
		if client := do.MustInvoke[*redis.Client](i); client != nil {
			counters = store.NewRateLimitRedisStore(client)
		} else {
			counters = store.NewRateLimitMemoryStore()
		}

		return ratelimit.NewFixedWindowLimiter(counters, ratelimit.DefaultPolicy()), nil
	})
}

// PublisherGroupPackage provides the event publisher: Redis streams when
// Redis is configured, an in-process channel otherwise. The channel is
// also registered so ConsumerGroupPackage can subscribe to it.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*gochannel.GoChannel, error) {
		return gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{}), nil
	})

	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*redis.Client](i)
		if client == nil {
			return messaging.NewPublisherGroup(do.MustInvoke[*gochannel.GoChannel](i)), nil
		}

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: client,
		}, watermill.NopLogger{})
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})
}

// ConsumerGroupPackage provides the consumer group that persists click
// and bot audit events.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		var subscriber message.Subscriber
		if client := do.MustInvoke[*redis.Client](i); client != nil {
			sub, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
				Client:        client,
				ConsumerGroup: "analytics",
			}, watermill.NopLogger{})
			if err != nil {
				return nil, err
			}

			subscriber = sub
		} else {
			subscriber = do.MustInvoke[*gochannel.GoChannel](i)
		}

		events := do.MustInvoke[analytics.Store](i)
		linkRepo := do.MustInvoke[links.Repository](i)

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(
			subscriber,
			analytics.TopicLinkClicked,
			analytics.NewClickHandler(events, linkRepo, logger),
			logger,
		))
		group.Add(messaging.NewConsumer(
			subscriber,
			analytics.TopicBotDetected,
			analytics.NewBotAuditHandler(events),
			logger,
		))

		return group, nil
	})
}

// HTTPPackage provides the chi router with the public gateway routes and
// the huma API carrying health and the Prometheus endpoint.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)
		limiter := do.MustInvoke[*ratelimit.FixedWindowLimiter](i)

		issuer, err := token.NewIssuer()
		if err != nil {
			return nil, err
		}

		publisher := do.MustInvoke[*messaging.PublisherGroup](i).Publisher()

		gw := gateway.New(gateway.Config{
			Links:        do.MustInvoke[links.Repository](i),
			Access:       do.MustInvoke[links.AccessStore](i),
			Artists:      do.MustInvoke[artists.Repository](i),
			Issuer:       issuer,
			Limiter:      limiter,
			PublishClick: messaging.NewPublishFunc[analytics.ClickEvent](publisher, analytics.TopicLinkClicked),
			PublishAudit: messaging.NewPublishFunc[analytics.BotAuditEvent](publisher, analytics.TopicBotDetected),
			Logger:       logger,
		})

		router.Use(middleware.RequestMeta)
		gw.RegisterRoutes(router)
		router.Handle("/metrics", promhttp.Handler())

		api := humachi.New(router, huma.DefaultConfig("Jovie Link Gateway", "1.0.0"))
		api.UseMiddleware(middleware.RateLimit(api, limiter, ratelimit.ScopeStrict, logger))

		var redisChecker, databaseChecker health.Checker
		if client := do.MustInvoke[*redis.Client](i); client != nil {
			redisChecker = health.NewRedisChecker(client)
		}

		if pool := do.MustInvoke[*pgxpool.Pool](i); pool != nil {
			databaseChecker = health.NewPostgresChecker(pool)
		}

		health.RegisterRoutes(api, health.NewHandler(redisChecker, databaseChecker))

		return api, nil
	})
}
