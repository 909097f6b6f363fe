// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/twmb/franz-go/pkg/kgo"

	auditRepository "github.com/medmarket/phiguard/internal/audit/repository"
	"github.com/medmarket/phiguard/internal/config"
	cryptoDomain "github.com/medmarket/phiguard/internal/crypto/domain"
	"github.com/medmarket/phiguard/internal/database"
	"github.com/medmarket/phiguard/internal/http"
	"github.com/medmarket/phiguard/internal/metrics"
)

// Container holds all application dependencies and provides methods to access them.
// Components are created on first access; a failed initialization is remembered
// and returned on every later call.
type Container struct {
	config *config.Config

	// Infrastructure
	logger      *slog.Logger
	db          *sql.DB
	txManager   database.TxManager
	redis       *redis.Client
	kafka       *kgo.Client
	masterKey   *cryptoDomain.MasterKey
	metrics     *metrics.Provider
	compliance  metrics.ComplianceMetrics
	closers     []func(ctx context.Context) error
	components  components
	initErrors  map[string]error
	mu          sync.Mutex
	loggerInit  sync.Once
	dbInit      sync.Once
	txInit      sync.Once
	redisInit   sync.Once
	kafkaInit   sync.Once
	keyInit     sync.Once
	metricsInit sync.Once

	// Servers
	httpServer        *http.Server
	metricsServer     *http.MetricsServer
	httpServerInit    sync.Once
	metricsServerInit sync.Once
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// resolve runs init once under name and returns the cached value or the
// remembered error on later calls.
func resolve[T any](c *Container, once *sync.Once, name string, slot *T, init func() (T, error)) (T, error) {
	once.Do(func() {
		v, err := init()
		if err != nil {
			c.mu.Lock()
			c.initErrors[name] = err
			c.mu.Unlock()
			return
		}
		*slot = v
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err, ok := c.initErrors[name]; ok {
		var zero T
		return zero, err
	}
	return *slot, nil
}

// onShutdown registers a cleanup run by Shutdown in reverse order.
func (c *Container) onShutdown(fn func(ctx context.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closers = append(c.closers, fn)
}

// Logger returns the configured logger instance.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
func (c *Container) DB() (*sql.DB, error) {
	return resolve(c, &c.dbInit, "db", &c.db, c.initDB)
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	return resolve(c, &c.txInit, "txManager", &c.txManager, c.initTxManager)
}

// Redis returns the Redis client, or nil when REDIS_URL is empty.
func (c *Container) Redis() (*redis.Client, error) {
	return resolve(c, &c.redisInit, "redis", &c.redis, c.initRedis)
}

// KafkaClient returns the shared franz-go client.
func (c *Container) KafkaClient() (*kgo.Client, error) {
	return resolve(c, &c.kafkaInit, "kafka", &c.kafka, c.initKafkaClient)
}

// MasterKey returns the master key, unwrapped through KMS when KMS_KEY_URI is set.
func (c *Container) MasterKey() (*cryptoDomain.MasterKey, error) {
	return resolve(c, &c.keyInit, "masterKey", &c.masterKey, c.initMasterKey)
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	return resolve(c, &c.metricsInit, "metrics", &c.metrics, c.initMetricsProvider)
}

// ComplianceMetrics returns the business metrics recorder.
func (c *Container) ComplianceMetrics() (metrics.ComplianceMetrics, error) {
	return resolve(c, &c.components.complianceInit, "complianceMetrics", &c.compliance, c.initComplianceMetrics)
}

// HTTPServer returns the API server with every route wired.
func (c *Container) HTTPServer() (*http.Server, error) {
	return resolve(c, &c.httpServerInit, "httpServer", &c.httpServer, c.initHTTPServer)
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	return resolve(c, &c.metricsServerInit, "metricsServer", &c.metricsServer, c.initMetricsServer)
}

// Shutdown releases every resource the container opened, newest first. The
// audit queue is drained before the sinks it writes to are closed.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	closers := c.closers
	c.closers = nil
	c.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(context.Background(), database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.onShutdown(func(context.Context) error {
		if err := db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		return nil
	})
	return db, nil
}

func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

func (c *Container) initRedis() (*redis.Client, error) {
	if c.config.RedisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(c.config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	c.onShutdown(func(context.Context) error {
		return client.Close()
	})
	return client, nil
}

func (c *Container) initKafkaClient() (*kgo.Client, error) {
	brokers := c.config.KafkaSeedBrokers()
	if len(brokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required for kafka producers")
	}
	client, err := auditRepository.NewKafkaClient(brokers, c.config.KafkaAuditTopic)
	if err != nil {
		return nil, err
	}
	c.onShutdown(func(ctx context.Context) error {
		if err := client.Flush(ctx); err != nil {
			client.Close()
			return fmt.Errorf("failed to flush kafka client: %w", err)
		}
		client.Close()
		return nil
	})
	return client, nil
}

func (c *Container) initMasterKey() (*cryptoDomain.MasterKey, error) {
	var (
		mk  *cryptoDomain.MasterKey
		err error
	)
	if c.config.KMSKeyURI != "" {
		var key []byte
		key, err = c.KMSService().UnwrapKey(context.Background(), c.config.KMSKeyURI, c.config.EncryptionKey)
		if err == nil {
			mk = &cryptoDomain.MasterKey{Key: key}
		}
	} else {
		mk, err = cryptoDomain.ParseMasterKey(c.config.EncryptionKey)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load master key: %w", err)
	}
	c.onShutdown(func(context.Context) error {
		mk.Close()
		return nil
	})
	return mk, nil
}

func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	c.onShutdown(provider.Shutdown)
	return provider, nil
}

func (c *Container) initComplianceMetrics() (metrics.ComplianceMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return metrics.NewNoOpComplianceMetrics(), nil
	}
	m, err := metrics.NewComplianceMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create compliance metrics: %w", err)
	}
	return m, nil
}

func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, nil
	}
	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}
