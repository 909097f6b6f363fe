package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"time"

	cryptoDomain "github.com/medmarket/phiguard/internal/crypto/domain"
	cryptoService "github.com/medmarket/phiguard/internal/crypto/service"
	apperrors "github.com/medmarket/phiguard/internal/errors"
)

// Option configures a cryptoUseCase.
type Option func(*cryptoUseCase)

// WithLegacyDecrypter registers a decrypter for payloads of the given version.
func WithLegacyDecrypter(version string, d LegacyDecrypter) Option {
	return func(uc *cryptoUseCase) {
		uc.legacy[version] = d
	}
}

// WithKeyDeriver replaces the default PBKDF2 deriver.
func WithKeyDeriver(d cryptoService.KeyDeriver) Option {
	return func(uc *cryptoUseCase) {
		uc.deriver = d
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(uc *cryptoUseCase) {
		uc.now = now
	}
}

type cryptoUseCase struct {
	masterKey *cryptoDomain.MasterKey
	deriver   cryptoService.KeyDeriver
	legacy    map[string]LegacyDecrypter
	now       func() time.Time
}

// NewCryptoUseCase creates the engine. With a nil or invalid master key every
// Encrypt returns ErrEncryption and every Decrypt returns ErrDecryption.
func NewCryptoUseCase(masterKey *cryptoDomain.MasterKey, opts ...Option) CryptoUseCase {
	uc := &cryptoUseCase{
		masterKey: masterKey,
		deriver:   cryptoService.NewPBKDF2Deriver(),
		legacy:    map[string]LegacyDecrypter{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *cryptoUseCase) Encrypt(
	ctx context.Context,
	plaintext any,
	purpose string,
) (*cryptoDomain.EncryptedPayload, error) {
	if !uc.masterKey.Valid() {
		return nil, cryptoDomain.ErrInvalidMasterKey
	}

	data, err := serialize(plaintext)
	if err != nil {
		return nil, apperrors.Wrap(cryptoDomain.ErrEncryption, "plaintext is not serializable")
	}

	salt := make([]byte, cryptoDomain.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, apperrors.Wrap(cryptoDomain.ErrEncryption, "failed to generate salt")
	}

	key := uc.deriver.DeriveKey(uc.masterKey.Key, salt, purpose)
	defer cryptoDomain.Zero(key)

	cipher, err := cryptoService.NewAESGCM(key)
	if err != nil {
		return nil, apperrors.Wrap(cryptoDomain.ErrEncryption, "failed to create cipher")
	}

	ciphertext, iv, tag, err := cipher.Encrypt(data, nil)
	if err != nil {
		return nil, apperrors.Wrap(cryptoDomain.ErrEncryption, "failed to seal plaintext")
	}

	return &cryptoDomain.EncryptedPayload{
		Version:    cryptoDomain.PayloadVersion,
		IV:         hex.EncodeToString(iv),
		Salt:       hex.EncodeToString(salt),
		Ciphertext: hex.EncodeToString(ciphertext),
		AuthTag:    hex.EncodeToString(tag),
		Purpose:    purpose,
		Timestamp:  uc.now().UTC(),
	}, nil
}

func (uc *cryptoUseCase) Decrypt(ctx context.Context, payload *cryptoDomain.EncryptedPayload) (any, error) {
	data, err := uc.DecryptBytes(ctx, payload)
	if err != nil {
		return nil, err
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return string(data), nil
	}
	return value, nil
}

func (uc *cryptoUseCase) DecryptBytes(
	ctx context.Context,
	payload *cryptoDomain.EncryptedPayload,
) ([]byte, error) {
	if payload == nil {
		return nil, apperrors.Wrap(cryptoDomain.ErrDecryption, "payload is required")
	}

	if payload.Version != cryptoDomain.PayloadVersion {
		legacy, ok := uc.legacy[payload.Version]
		if !ok {
			return nil, cryptoDomain.ErrUnsupportedPayloadVersion
		}
		return legacy.Decrypt(ctx, payload)
	}

	if !uc.masterKey.Valid() {
		return nil, apperrors.Wrap(cryptoDomain.ErrDecryption, "master key unavailable")
	}

	iv, errIV := hex.DecodeString(payload.IV)
	salt, errSalt := hex.DecodeString(payload.Salt)
	ciphertext, errCT := hex.DecodeString(payload.Ciphertext)
	tag, errTag := hex.DecodeString(payload.AuthTag)
	if err := apperrors.Join(errIV, errSalt, errCT, errTag); err != nil {
		return nil, apperrors.Wrap(cryptoDomain.ErrDecryption, "payload is not valid hex")
	}

	key := uc.deriver.DeriveKey(uc.masterKey.Key, salt, payload.Purpose)
	defer cryptoDomain.Zero(key)

	cipher, err := cryptoService.NewAESGCM(key)
	if err != nil {
		return nil, cryptoDomain.ErrDecryption
	}

	plaintext, err := cipher.Decrypt(ciphertext, iv, tag, nil)
	if err != nil {
		return nil, cryptoDomain.ErrDecryption
	}
	return plaintext, nil
}

func (uc *cryptoUseCase) Hash(data []byte) string {
	sum := sha512.Sum512(data)
	return hex.EncodeToString(sum[:])
}

func serialize(plaintext any) ([]byte, error) {
	switch v := plaintext.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return json.Marshal(v)
	}
}
