// Package domain defines encrypted PHI records and their errors.
//
// A record's clinical content is never stored in clear: it is encrypted by the
// crypto engine before persistence and only the payload, a SHA-512 content hash
// and the PHI categories found at creation time are kept alongside it.
package domain

import (
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/medmarket/phiguard/internal/crypto/domain"
	"github.com/medmarket/phiguard/internal/errors"
)

// StoragePurpose is the purpose every record payload is encrypted for.
const StoragePurpose = "phi-storage"

// Audit actions of the records API.
const (
	ActionCreate    = "PHI_RECORD_CREATE"
	ActionList      = "PHI_RECORD_LIST"
	ActionRead      = "PHI_RECORD_READ"
	ActionDownload  = "PHI_RECORD_DOWNLOAD"
	ActionDelete    = "PHI_RECORD_DELETE"
	ActionDeleteAll = "PHI_RECORD_DELETE_ALL"
)

// Record errors.
var (
	// ErrRecordNotFound indicates the record does not exist or was deleted.
	ErrRecordNotFound = errors.Wrap(errors.ErrNotFound, "record not found")

	// ErrPurposeRequired indicates a read without an access purpose or emergency grant.
	ErrPurposeRequired = errors.Wrap(errors.ErrConsentRequired, "access purpose required")

	// ErrDeleteNotConfirmed indicates a delete without the confirmation header.
	ErrDeleteNotConfirmed = errors.Wrap(errors.ErrInvalidInput, "delete confirmation required")

	// ErrIntegrity indicates the decrypted content does not match the stored hash.
	ErrIntegrity = errors.New("record integrity check failed")
)

// Record is an encrypted PHI record owned by a data subject.
type Record struct {
	ID          uuid.UUID
	SubjectID   string
	Category    string
	Payload     cryptoDomain.EncryptedPayload
	ContentHash string
	PHITypes    []string
	CreatedBy   string
	CreatedAt   time.Time
	DeletedAt   *time.Time

	// Data holds the decrypted content in memory only.
	Data any `json:"-"`
}

// Access describes who reads a record and on what basis.
type Access struct {
	ActorID   string
	SubjectID string
	// Purpose is the declared access purpose checked against consent.
	Purpose string
	// Emergency marks a request whose emergency grant was already validated.
	Emergency bool
}

// DeclaredPurpose is the purpose the caller stated, or the basis when none was given.
func (a Access) DeclaredPurpose() string {
	if a.Purpose != "" {
		return a.Purpose
	}
	return a.Basis()
}

// Basis names what authorized a read: the subject itself, an emergency grant
// or the declared purpose.
func (a Access) Basis() string {
	switch {
	case a.ActorID != "" && a.ActorID == a.SubjectID:
		return "subject"
	case a.Emergency:
		return "emergency"
	default:
		return a.Purpose
	}
}
