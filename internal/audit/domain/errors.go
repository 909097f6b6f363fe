package domain

import (
	"github.com/medmarket/phiguard/internal/errors"
)

var (
	// ErrSignatureInvalid indicates an entry was modified after it was signed.
	ErrSignatureInvalid = errors.New("audit log signature invalid")

	// ErrAuditWrite indicates a sink rejected an entry. It never reaches business callers.
	ErrAuditWrite = errors.New("audit write failed")

	// ErrOriginalEntryNotFound indicates a correction references an unknown request.
	ErrOriginalEntryNotFound = errors.Wrap(errors.ErrNotFound, "original audit entry not found")
)
