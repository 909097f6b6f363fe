// Package http provides the purpose-bound encryption API.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	auditHttp "github.com/medmarket/phiguard/internal/audit/http"
	"github.com/medmarket/phiguard/internal/crypto/http/dto"
	cryptoUseCase "github.com/medmarket/phiguard/internal/crypto/usecase"
	apperrors "github.com/medmarket/phiguard/internal/errors"
	customValidation "github.com/medmarket/phiguard/internal/validation"
)

// Audit actions of the crypto API.
const (
	ActionEncrypt = "PHI_ENCRYPT"
	ActionDecrypt = "PHI_DECRYPT"
)

// CryptoHandler handles encryption and decryption requests.
type CryptoHandler struct {
	cryptoUseCase cryptoUseCase.CryptoUseCase
	logger        *slog.Logger
}

// NewCryptoHandler creates a new crypto handler.
func NewCryptoHandler(cryptoUseCase cryptoUseCase.CryptoUseCase, logger *slog.Logger) *CryptoHandler {
	return &CryptoHandler{
		cryptoUseCase: cryptoUseCase,
		logger:        logger,
	}
}

// Resource names the audited resource of the crypto routes.
func Resource(*gin.Context) string {
	return "crypto"
}

// Encrypt encrypts data for a purpose.
// POST /v1/crypto/encrypt
//
// The payload is written raw: its iv, salt and auth tag are required for
// decryption and would otherwise be stripped by the response sanitizer.
func (h *CryptoHandler) Encrypt(c *gin.Context) (*auditHttp.Response, error) {
	var req dto.EncryptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "malformed request body")
	}
	if err := req.Validate(); err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	payload, err := h.cryptoUseCase.Encrypt(c.Request.Context(), req.Data, req.Purpose)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal payload")
	}

	return &auditHttp.Response{
		Status:      http.StatusCreated,
		Raw:         body,
		ContentType: "application/json; charset=utf-8",
		Details:     map[string]any{"purpose": req.Purpose, "version": payload.Version},
	}, nil
}

// Decrypt opens a payload and returns the sanitized value.
// POST /v1/crypto/decrypt
func (h *CryptoHandler) Decrypt(c *gin.Context) (*auditHttp.Response, error) {
	var req dto.DecryptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "malformed request body")
	}
	if err := req.Validate(); err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	value, err := h.cryptoUseCase.Decrypt(c.Request.Context(), req.Payload)
	if err != nil {
		return nil, err
	}

	return &auditHttp.Response{
		Status:  http.StatusOK,
		Body:    dto.DecryptResponse{Data: value, Purpose: req.Payload.Purpose},
		Details: map[string]any{"purpose": req.Payload.Purpose, "version": req.Payload.Version},
	}, nil
}
