package app

import (
	"context"
	"fmt"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	accessHttp "github.com/medmarket/phiguard/internal/access/http"
	auditHttp "github.com/medmarket/phiguard/internal/audit/http"
	auditRepository "github.com/medmarket/phiguard/internal/audit/repository"
	auditService "github.com/medmarket/phiguard/internal/audit/service"
	auditUseCase "github.com/medmarket/phiguard/internal/audit/usecase"
	"github.com/medmarket/phiguard/internal/config"
	"github.com/medmarket/phiguard/internal/sanitizer"
)

// AuditReader returns the SQL repository the audit trail is read from.
func (c *Container) AuditReader() (auditUseCase.Reader, error) {
	return resolve(c, &c.components.auditReaderInit, "auditReader",
		&c.components.auditReader, c.initAuditReader)
}

// AuditSink returns the primary sink selected by AUDIT_SINK.
func (c *Container) AuditSink() (auditUseCase.Sink, error) {
	return resolve(c, &c.components.auditSinkInit, "auditSink",
		&c.components.auditSink, c.initAuditSink)
}

// AuditSigner returns the HMAC signer keyed from the master key.
func (c *Container) AuditSigner() (*auditService.Signer, error) {
	return resolve(c, &c.components.auditSignerInit, "auditSigner",
		&c.components.auditSigner, c.initAuditSigner)
}

// AuditFallbackStore returns the local SQLite store, or nil when
// AUDIT_FALLBACK_PATH is empty.
func (c *Container) AuditFallbackStore() (auditUseCase.FallbackStore, error) {
	return resolve(c, &c.components.auditFallbackInit, "auditFallback",
		&c.components.auditFallback, c.initAuditFallbackStore)
}

// AuditArchiveStore returns the S3 archive store, or nil when
// AUDIT_ARCHIVE_BUCKET is empty.
func (c *Container) AuditArchiveStore() (auditUseCase.ArchiveStore, error) {
	return resolve(c, &c.components.auditArchiveInit, "auditArchive",
		&c.components.auditArchive, c.initAuditArchiveStore)
}

// AuditCoreLogger returns the synchronous audit logger.
func (c *Container) AuditCoreLogger() (*auditUseCase.Logger, error) {
	return resolve(c, &c.components.auditCoreInit, "auditCoreLogger",
		&c.components.auditCore, c.initAuditCoreLogger)
}

// AuditLogger returns the logger every component writes through. With a
// positive AUDIT_ASYNC_BUFFER entries are queued and drained on Shutdown.
func (c *Container) AuditLogger() (auditUseCase.AuditLogger, error) {
	return resolve(c, &c.components.auditLoggerInit, "auditLogger",
		&c.components.auditLogger, c.initAuditLogger)
}

// AuditLogUseCase returns the read and maintenance side of the audit trail.
func (c *Container) AuditLogUseCase() (auditUseCase.AuditLogUseCase, error) {
	return resolve(c, &c.components.auditLogUseCaseInit, "auditLogUseCase",
		&c.components.auditLogUseCase, c.initAuditLogUseCase)
}

// Sanitizer returns the response sanitizer backed by the PHI detector.
func (c *Container) Sanitizer() (*sanitizer.Sanitizer, error) {
	return resolve(c, &c.components.sanitizerInit, "sanitizer",
		&c.components.sanitizer, c.initSanitizer)
}

// Auditor returns the handler decorator that audits and sanitizes responses.
func (c *Container) Auditor() (*auditHttp.Auditor, error) {
	auditLogger, err := c.AuditLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit logger for auditor: %w", err)
	}
	s, err := c.Sanitizer()
	if err != nil {
		return nil, fmt.Errorf("failed to get sanitizer for auditor: %w", err)
	}
	return auditHttp.NewAuditor(auditLogger, s, accessHttp.AuditActor, c.Logger()), nil
}

// AuditLogHandler returns the audit log HTTP handler.
func (c *Container) AuditLogHandler() (*auditHttp.AuditLogHandler, error) {
	useCase, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for audit log handler: %w", err)
	}
	return auditHttp.NewAuditLogHandler(useCase, accessHttp.AuditActor, c.Logger()), nil
}

func (c *Container) initAuditReader() (auditUseCase.Reader, error) {
	repo, err := c.auditRepository()
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// auditRepository is the SQL repository for the configured driver. It serves
// as both reader and database sink.
func (c *Container) auditRepository() (interface {
	auditUseCase.Reader
	auditUseCase.Sink
}, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return auditRepository.NewMySQLAuditLogRepository(db), nil
	case "postgres":
		return auditRepository.NewPostgreSQLAuditLogRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initAuditSink() (auditUseCase.Sink, error) {
	switch c.config.AuditSink {
	case config.AuditSinkConsole:
		return auditRepository.NewConsoleSink(c.Logger()), nil
	case config.AuditSinkKafka:
		client, err := c.KafkaClient()
		if err != nil {
			return nil, fmt.Errorf("failed to get kafka client for audit sink: %w", err)
		}
		return auditRepository.NewKafkaSink(client, c.config.KafkaAuditTopic), nil
	case config.AuditSinkDatabase, "":
		repo, err := c.auditRepository()
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported audit sink: %s", c.config.AuditSink)
	}
}

func (c *Container) initAuditSigner() (*auditService.Signer, error) {
	masterKey, err := c.MasterKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get master key for audit signer: %w", err)
	}
	signer, err := auditService.NewSigner(masterKey.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit signer: %w", err)
	}
	c.onShutdown(func(context.Context) error {
		signer.Close()
		return nil
	})
	return signer, nil
}

func (c *Container) initAuditFallbackStore() (auditUseCase.FallbackStore, error) {
	if c.config.AuditFallbackPath == "" {
		return nil, nil
	}
	store, err := auditRepository.OpenSQLiteFallbackStore(context.Background(), c.config.AuditFallbackPath)
	if err != nil {
		return nil, err
	}
	c.onShutdown(func(context.Context) error {
		return store.Close()
	})
	return store, nil
}

func (c *Container) initAuditArchiveStore() (auditUseCase.ArchiveStore, error) {
	if c.config.AuditArchiveBucket == "" {
		return nil, nil
	}
	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load aws configuration: %w", err)
	}
	return auditRepository.NewS3ArchiveStore(s3.NewFromConfig(awsCfg), c.config.AuditArchiveBucket), nil
}

func (c *Container) initAuditCoreLogger() (*auditUseCase.Logger, error) {
	sink, err := c.AuditSink()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit sink: %w", err)
	}
	signer, err := c.AuditSigner()
	if err != nil {
		return nil, err
	}
	fallback, err := c.AuditFallbackStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit fallback store: %w", err)
	}
	compliance, err := c.ComplianceMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics for audit logger: %w", err)
	}

	opts := []auditUseCase.LoggerOption{
		auditUseCase.WithRetention(c.config.AuditRetention),
		auditUseCase.WithMetrics(compliance),
	}
	if fallback != nil {
		opts = append(opts, auditUseCase.WithFallback(fallback))
	}
	return auditUseCase.NewLogger(sink, signer, c.Logger(), opts...), nil
}

func (c *Container) initAuditLogger() (auditUseCase.AuditLogger, error) {
	core, err := c.AuditCoreLogger()
	if err != nil {
		return nil, err
	}
	if c.config.AuditAsyncBuffer <= 0 {
		return core, nil
	}

	async := auditUseCase.NewAsyncLogger(core, c.config.AuditAsyncBuffer)
	c.onShutdown(async.Close)
	return async, nil
}

func (c *Container) initAuditLogUseCase() (auditUseCase.AuditLogUseCase, error) {
	core, err := c.AuditCoreLogger()
	if err != nil {
		return nil, err
	}
	reader, err := c.AuditReader()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit reader: %w", err)
	}
	sink, err := c.AuditSink()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit sink: %w", err)
	}
	signer, err := c.AuditSigner()
	if err != nil {
		return nil, err
	}
	fallback, err := c.AuditFallbackStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit fallback store: %w", err)
	}
	archive, err := c.AuditArchiveStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit archive store: %w", err)
	}

	return auditUseCase.NewAuditLogUseCase(core, reader, sink, signer, fallback, archive), nil
}

func (c *Container) initSanitizer() (*sanitizer.Sanitizer, error) {
	detector, err := c.PHIDetector()
	if err != nil {
		return nil, fmt.Errorf("failed to get phi detector for sanitizer: %w", err)
	}
	return sanitizer.NewSanitizer(detector), nil
}
