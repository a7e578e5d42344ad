// Package app wires configuration, storage and controllers into a server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klass-lk/blogboot/internal/auth"
	"github.com/klass-lk/blogboot/internal/cache"
	"github.com/klass-lk/blogboot/internal/config"
	"github.com/klass-lk/blogboot/internal/controller"
	"github.com/klass-lk/blogboot/internal/middleware"
	"github.com/klass-lk/blogboot/internal/observability"
	"github.com/klass-lk/blogboot/internal/repository"
	"github.com/klass-lk/blogboot/internal/security"
	"github.com/klass-lk/blogboot/internal/server"
	"github.com/klass-lk/blogboot/internal/service"
	"github.com/klass-lk/blogboot/internal/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "blogboot"

type App struct {
	Server   *server.Server
	Posts    *service.PostService
	Comments *service.CommentService
	Users    *service.UserService
	Cache    cache.Service

	closers []func(context.Context) error
}

// New connects to MongoDB and builds the application.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := repository.NewMongoConfig().
		WithURI(cfg.MongoURI).
		WithHost(cfg.MongoHost, cfg.MongoPort).
		WithCredentials(cfg.MongoUser, cfg.MongoPassword).
		WithDatabase(cfg.MongoDatabase).
		Connect(ctx)
	if err != nil {
		return nil, err
	}

	a, err := NewWithDatabase(ctx, cfg, db)
	if err != nil {
		_ = db.Client().Disconnect(context.Background())
		return nil, err
	}
	a.closers = append(a.closers, func(ctx context.Context) error {
		return db.Client().Disconnect(ctx)
	})
	return a, nil
}

// NewWithDatabase builds the application on an open database. Close does
// not disconnect db.
func NewWithDatabase(ctx context.Context, cfg *config.Config, db *mongo.Database) (*App, error) {
	a := &App{}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close(context.Background())
		}
	}()

	posts := repository.NewPostRepository(db)
	comments := repository.NewCommentRepository(db)
	users := repository.NewUserRepository(db)
	for name, ensure := range map[string]func(context.Context) error{
		"posts":    posts.EnsureIndexes,
		"comments": comments.EnsureIndexes,
		"users":    users.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return nil, fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}

	encoder, err := security.NewPasswordEncoder(security.Options{
		Encoder:         cfg.PasswordEncoder,
		PBKDF2Secret:    cfg.PBKDF2Secret,
		PBKDF2Iteration: cfg.PBKDF2Iteration,
		PBKDF2KeyLength: cfg.PBKDF2KeyLength,
	})
	if err != nil {
		return nil, err
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	a.Posts = service.NewPostService(posts, comments, users)
	a.Comments = service.NewCommentService(comments, posts)
	a.Users = service.NewUserService(users, encoder, tokens)

	redisClient, err := a.connectRedis(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if a.Cache, err = a.newCache(ctx, cfg, db, redisClient); err != nil {
		return nil, err
	}

	var limiter middleware.Limiter = middleware.NewLocalLimiter(cfg.RateLimitPerMinute)
	if redisClient != nil && cfg.RateLimitPerMinute > 0 {
		limiter = middleware.NewRedisLimiter(redisClient, cfg.RateLimitPerMinute, time.Minute)
	}

	var files storage.FileService
	if cfg.S3Bucket != "" {
		s3Files, err := storage.NewS3FileService(ctx, storage.S3Options{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.AWSRegion,
			Endpoint: cfg.S3Endpoint,
			Expiry:   cfg.S3URLExpiry,
		})
		if err != nil {
			return nil, err
		}
		files = s3Files
	}

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if _, err := a.Users.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			return nil, fmt.Errorf("ensure admin account: %w", err)
		}
	}

	srv := server.New()
	srv.SetRuntime(server.Runtime(cfg.Runtime))

	logger := slog.Default()
	srv.Use(middleware.RequestID(), middleware.Recovery(logger))
	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracer(serviceName, os.Stdout)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(ctx context.Context) error {
			shutdown(ctx)
			return nil
		})
		srv.Use(otelgin.Middleware(serviceName))
	}
	srv.Use(middleware.RequestLogger(logger))
	srv.CustomCORS(
		cfg.Origins(),
		[]string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		[]string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		12*time.Hour,
	)

	srv.Engine().GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	srv.Engine().GET("/metrics", gin.WrapH(promhttp.Handler()))

	authenticate := middleware.VerifyToken(tokens)
	srv.SetBasePath("/api")
	srv.RegisterController("/blogs", controller.NewPostController(a.Posts, a.Cache, cfg.CacheTTL, files, authenticate))
	srv.RegisterController("/comments", controller.NewCommentController(a.Comments, a.Cache, authenticate,
		middleware.RateLimit(limiter, "comments")))
	srv.RegisterController("/auth", controller.NewAuthController(a.Users, tokens.TTL(), cfg.IsProduction(),
		middleware.RateLimit(limiter, "auth")))
	srv.RegisterController("/cache", controller.NewCacheController(a.Cache, authenticate))
	if files != nil {
		srv.RegisterController("/uploads", controller.NewUploadController(files, authenticate))
	}

	a.Server = srv
	ok = true
	return a, nil
}

func (a *App) connectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.CacheBackend != config.CacheRedis {
		return nil, nil
	}
	client, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	return client, nil
}

func (a *App) newCache(ctx context.Context, cfg *config.Config, db *mongo.Database, redisClient *redis.Client) (cache.Service, error) {
	switch cfg.CacheBackend {
	case config.CacheMongo:
		svc := cache.NewMongoService(db)
		if err := svc.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("ensure cache indexes: %w", err)
		}
		return svc, nil
	case config.CacheRedis:
		return cache.NewRedisService(redisClient), nil
	case config.CacheDynamoDB:
		client, err := cache.NewDynamoDBClient(ctx, cfg.AWSRegion, cfg.DynamoEndpoint)
		if err != nil {
			return nil, err
		}
		svc := cache.NewDynamoDBService(client, cfg.DynamoDBTable)
		if err := svc.EnsureTable(ctx); err != nil {
			return nil, fmt.Errorf("ensure cache table: %w", err)
		}
		return svc, nil
	case config.CacheBadger:
		badgerDB, err := cache.OpenBadger(cfg.BadgerPath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return badgerDB.Close() })
		return cache.NewBadgerService(badgerDB), nil
	default:
		return cache.Noop{}, nil
	}
}

// Start serves until ctx is cancelled.
func (a *App) Start(ctx context.Context, port int) error {
	return a.Server.Start(ctx, port)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
