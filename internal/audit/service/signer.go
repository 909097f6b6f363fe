// Package service provides tamper evidence for audit entries.
package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
	cryptoDomain "github.com/medmarket/phiguard/internal/crypto/domain"
)

// signingKeyInfo is the HKDF info label. Bump the version if the canonical form changes.
const signingKeyInfo = "phiguard-audit-signing-v1"

// Signer computes and checks HMAC-SHA256 signatures over audit entries.
//
// The signing key is derived from the master key with HKDF-SHA256 so the
// encryption key itself is never used as a MAC key.
type Signer struct {
	key []byte
}

// NewSigner derives the signing key from masterKey.
func NewSigner(masterKey []byte) (*Signer, error) {
	if len(masterKey) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidMasterKey
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, nil, []byte(signingKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}
	return &Signer{key: key}, nil
}

// Sign returns the 32-byte signature of entry. The Signature field itself is not covered.
func (s *Signer) Sign(entry *auditDomain.Entry) ([]byte, error) {
	canonical, err := canonicalize(entry)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, s.key)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify returns ErrSignatureInvalid if entry was modified after signing.
func (s *Signer) Verify(entry *auditDomain.Entry) error {
	expected, err := s.Sign(entry)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}
	if !hmac.Equal(entry.Signature, expected) {
		return auditDomain.ErrSignatureInvalid
	}
	return nil
}

// Close zeroes the signing key.
func (s *Signer) Close() {
	cryptoDomain.Zero(s.key)
}

// canonicalize encodes every signed field with a length prefix so that no two
// distinct entries share an encoding. Details are JSON encoded, which sorts map keys.
func canonicalize(entry *auditDomain.Entry) ([]byte, error) {
	buf := make([]byte, 0, 512)

	buf = append(buf, entry.ID[:]...)
	buf = appendString(buf, entry.RequestID)
	buf = appendInt(buf, entry.Timestamp.UnixMicro())
	buf = appendString(buf, string(entry.Level))
	buf = appendString(buf, entry.Actor.ID)
	buf = appendString(buf, entry.Actor.Role)
	buf = appendString(buf, entry.Actor.IP)
	buf = appendString(buf, entry.Actor.UserAgent)
	buf = appendString(buf, entry.Action)
	buf = appendString(buf, entry.Resource)
	buf = appendString(buf, string(entry.Outcome))
	buf = appendInt(buf, entry.DurationMs)

	var details []byte
	if len(entry.Details) > 0 {
		var err error
		details, err = json.Marshal(entry.Details)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal details: %w", err)
		}
	}
	buf = appendBytes(buf, details)

	buf = appendString(buf, entry.CorrectsRequestID)
	buf = appendInt(buf, entry.RetainUntil.UnixMicro())

	return buf, nil
}

func appendString(buf []byte, s string) []byte {
	return appendBytes(buf, []byte(s))
}

func appendBytes(buf, data []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}

func appendInt(buf []byte, v int64) []byte {
	return binary.BigEndian.AppendUint64(buf, uint64(v))
}
