package app

import (
	"sync"

	accessService "github.com/medmarket/phiguard/internal/access/service"
	accessUseCase "github.com/medmarket/phiguard/internal/access/usecase"
	auditService "github.com/medmarket/phiguard/internal/audit/service"
	auditUseCase "github.com/medmarket/phiguard/internal/audit/usecase"
	consentUseCase "github.com/medmarket/phiguard/internal/consent/usecase"
	cryptoService "github.com/medmarket/phiguard/internal/crypto/service"
	cryptoUseCase "github.com/medmarket/phiguard/internal/crypto/usecase"
	emergencyUseCase "github.com/medmarket/phiguard/internal/emergency/usecase"
	phiService "github.com/medmarket/phiguard/internal/phi/service"
	recordsUseCase "github.com/medmarket/phiguard/internal/records/usecase"
	"github.com/medmarket/phiguard/internal/sanitizer"
)

// components holds the domain services of the container, grouped by context.
type components struct {
	complianceInit sync.Once

	// Crypto
	kmsService        cryptoService.KMSService
	kmsServiceInit    sync.Once
	cryptoUseCase     cryptoUseCase.CryptoUseCase
	cryptoUseCaseInit sync.Once

	// PHI
	detector     *phiService.Detector
	detectorInit sync.Once

	// Audit
	auditReader         auditUseCase.Reader
	auditReaderInit     sync.Once
	auditSink           auditUseCase.Sink
	auditSinkInit       sync.Once
	auditSigner         *auditService.Signer
	auditSignerInit     sync.Once
	auditFallback       auditUseCase.FallbackStore
	auditFallbackInit   sync.Once
	auditArchive        auditUseCase.ArchiveStore
	auditArchiveInit    sync.Once
	auditCore           *auditUseCase.Logger
	auditCoreInit       sync.Once
	auditLogger         auditUseCase.AuditLogger
	auditLoggerInit     sync.Once
	auditLogUseCase     auditUseCase.AuditLogUseCase
	auditLogUseCaseInit sync.Once
	sanitizer           *sanitizer.Sanitizer
	sanitizerInit       sync.Once

	// Access
	tokenVerifier     accessService.TokenVerifier
	tokenVerifierInit sync.Once
	rateLimiter       accessUseCase.RateLimiter
	rateLimiterInit   sync.Once
	lockout           accessUseCase.LockoutStore
	lockoutInit       sync.Once
	guard             accessUseCase.AccessGuard
	guardInit         sync.Once

	// Consent
	consentRepo        consentUseCase.ConsentRepository
	consentRepoInit    sync.Once
	consentUseCase     consentUseCase.ConsentUseCase
	consentUseCaseInit sync.Once

	// Emergency
	grantStore     emergencyUseCase.GrantStore
	grantStoreInit sync.Once
	notifier       emergencyUseCase.Notifier
	notifierInit   sync.Once
	emergency      emergencyUseCase.EmergencyAccessHandler
	emergencyInit  sync.Once

	// Records
	recordRepo        recordsUseCase.RecordRepository
	recordRepoInit    sync.Once
	recordUseCase     recordsUseCase.RecordUseCase
	recordUseCaseInit sync.Once
}
